// Package walker builds the flat MIME part tree described by §4.7: given a
// raw message buffer it walks headers, multipart boundaries and nested
// message/rfc822 bodies in one recursive pass, producing a message.Message
// whose parts are all borrows (offsets) into the original buffer.
package walker

import (
	"strings"

	"github.com/oakmail/mailcore/charset"
	"github.com/oakmail/mailcore/decoders"
	"github.com/oakmail/mailcore/header"
	"github.com/oakmail/mailcore/message"
	"github.com/oakmail/mailcore/stream"
)

// Walk parses raw as a single RFC 5322 message and returns its MIME tree.
// The returned Message's Raw field aliases raw; every part's decoded
// fields are either borrows into raw or freshly allocated copies,
// depending on whether transfer/charset decoding was required.
func Walk(raw []byte, cfg *header.Config) *message.Message {
	m := &message.Message{Raw: raw}
	parsePartInto(m, raw, 0, len(raw), cfg)
	return m
}

// parsePartInto parses the header/body region raw[start:end] as one MIME
// part, appends it to m.Parts, recurses into multipart children or a
// nested message/rfc822 body, and returns its index.
func parsePartInto(m *message.Message, raw []byte, start, end int, cfg *header.Config) int {
	part := &message.MessagePart{OffsetStart: start, OffsetEnd: end}
	idx := len(m.Parts)
	m.Parts = append(m.Parts, part)

	st := stream.New(raw[:end])
	st.SetPos(start)
	part.Headers = header.Parse(st, cfg)
	bodyStart := st.Pos()
	part.OffsetBody = bodyStart

	part.TransferEncoding = parseTransferEncoding(part)
	ct := part.ContentType()

	switch {
	case ct.Type == "multipart":
		boundary, _ := ct.Attribute("boundary")
		if boundary == "" {
			decodeLeaf(part, raw, bodyStart, end, "text", "plain")
			break
		}
		children, contentEnd := scanMultipart(m, raw, bodyStart, end, boundary, cfg)
		part.Body = message.BodyVariant{Kind: message.BodyMultipart, Children: children}
		part.OffsetEnd = contentEnd

	case ct.Full() == "message/rfc822" || ct.Full() == "message/global":
		sub := Walk(raw[bodyStart:end], cfg)
		part.Body = message.BodyVariant{Kind: message.BodyMessage, Sub: sub}

	case ct.Type == "text":
		decodeLeaf(part, raw, bodyStart, end, ct.Type, ct.Subtype)

	default:
		decodeBinary(part, raw, bodyStart, end, ct)
	}

	return idx
}

func parseTransferEncoding(part *message.MessagePart) message.TransferEncoding {
	h, ok := part.Header("Content-Transfer-Encoding")
	if !ok {
		return message.EncodingNone
	}
	switch strings.ToLower(strings.TrimSpace(h.Value.Text)) {
	case "base64":
		return message.EncodingBase64
	case "quoted-printable":
		return message.EncodingQuotedPrintable
	default:
		return message.EncodingNone
	}
}

// scanMultipart locates "--boundary" delimiter lines within raw[start:end]
// (each must be preceded by LF, or be the first content in the region),
// parsing the material between delimiters as child parts. The preamble
// (before the first delimiter) and epilogue (after the closing delimiter)
// are discarded. A missing closing delimiter terminates the multipart at
// end of input.
func scanMultipart(m *message.Message, raw []byte, start, end int, boundary string, cfg *header.Config) (children []int, contentEnd int) {
	delim := "--" + boundary
	pos := start
	childStart := start
	seenFirst := false

	for {
		lineStart, lineEnd, nextPos, closing, found := nextBoundaryLine(raw, pos, end, delim)
		if !found {
			if seenFirst && childStart < end {
				children = append(children, parsePartInto(m, raw, childStart, end, cfg))
			}
			return children, end
		}
		if seenFirst {
			trimmed := trimTrailingEOL(raw, childStart, lineStart)
			children = append(children, parsePartInto(m, raw, childStart, trimmed, cfg))
		}
		_ = lineEnd
		seenFirst = true
		if closing {
			return children, lineStart
		}
		childStart = nextPos
		pos = nextPos
	}
}

// nextBoundaryLine finds the next line in raw[pos:end] whose content
// (after stripping a trailing \r) equals delim or delim+"--", requiring
// the line to start either at pos itself or immediately after a '\n'.
// It returns the line's content bounds, the position just past the line's
// own terminating newline, and whether it was a closing delimiter.
func nextBoundaryLine(raw []byte, pos, end int, delim string) (lineStart, lineEnd, nextPos int, closing bool, found bool) {
	i := pos
	for i < end {
		ls := i
		le := i
		for le < end && raw[le] != '\n' {
			le++
		}
		contentEnd := le
		if contentEnd > ls && raw[contentEnd-1] == '\r' {
			contentEnd--
		}
		np := le
		if np < end {
			np++
		} else {
			np = end
		}

		line := string(raw[ls:contentEnd])
		if line == delim {
			return ls, contentEnd, np, false, true
		}
		if line == delim+"--" {
			return ls, contentEnd, np, true, true
		}
		i = np
	}
	return 0, 0, 0, false, false
}

// trimTrailingEOL drops the single CRLF (or bare LF) immediately before
// boundEnd, which belongs to the delimiter line rather than the content
// that precedes it.
func trimTrailingEOL(raw []byte, start, boundEnd int) int {
	if boundEnd >= start+2 && raw[boundEnd-2] == '\r' && raw[boundEnd-1] == '\n' {
		return boundEnd - 2
	}
	if boundEnd >= start+1 && raw[boundEnd-1] == '\n' {
		return boundEnd - 1
	}
	return boundEnd
}

// decodeLeaf decodes a text/* part: transfer-decode then charset-decode,
// producing Text or HTML depending on subtype. Decode failures degrade to
// Binary with IsEncodingProblem set, per §4.2/§4.7.
func decodeLeaf(part *message.MessagePart, raw []byte, start, end int, typ, subtype string) {
	transferBytes, owned, ok := transferDecode(part, raw, start, end)
	if !ok {
		part.IsEncodingProblem = true
		part.Body = message.BodyVariant{Kind: message.BodyBinary, Bytes: raw[start:end]}
		return
	}

	ct := part.ContentType()
	cs, _ := ct.Attribute("charset")
	if cs == "" {
		cs = "us-ascii"
	}
	text, csOwned, _ := charset.Decode(cs, transferBytes)

	kind := message.BodyText
	if subtype == "html" {
		kind = message.BodyHTML
	}
	part.Body = message.BodyVariant{Kind: kind, Text: text, Owned: owned || csOwned}
}

// decodeBinary decodes a non-text, non-multipart, non-message part into a
// Binary or InlineBinary body. It is InlineBinary only when the part's
// Content-Disposition type is "inline"; a part with no Content-Disposition
// is Binary whatever its parent is.
func decodeBinary(part *message.MessagePart, raw []byte, start, end int, ct *message.ContentType) {
	data, owned, ok := transferDecode(part, raw, start, end)
	if !ok {
		part.IsEncodingProblem = true
		part.Body = message.BodyVariant{Kind: message.BodyBinary, Bytes: raw[start:end]}
		return
	}

	inline := false
	if h, ok := part.Header("Content-Disposition"); ok && h.Value.ContentType != nil {
		inline = strings.EqualFold(h.Value.ContentType.Type, "inline")
	}

	kind := message.BodyBinary
	if inline {
		kind = message.BodyInlineBinary
	}
	part.Body = message.BodyVariant{Kind: kind, Bytes: data, Owned: owned}
}

// transferDecode applies the part's declared Content-Transfer-Encoding.
// An unrecognised or absent encoding passes the raw bytes through unchanged
// (a borrow, Owned=false); a base64 or quoted-printable body that fails to
// decode returns ok=false.
func transferDecode(part *message.MessagePart, raw []byte, start, end int) (data []byte, owned, ok bool) {
	switch part.TransferEncoding {
	case message.EncodingBase64:
		decoded, good := decoders.Base64Full(raw[start:end])
		if !good {
			return nil, false, false
		}
		return decoded, true, true
	case message.EncodingQuotedPrintable:
		decoded, good := decoders.QuotedPrintableBody(raw[start:end])
		if !good {
			return nil, false, false
		}
		return decoded, true, true
	default:
		return raw[start:end], false, true
	}
}
