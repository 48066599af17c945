// Package header turns a raw header block into a slice of parsed
// message.Header values: it recognises the ~40 well-known field names (by
// normalized-string lookup, a substitute for the perfect-hash scheme
// described by the spec this parser follows, which explicitly allows any
// collision-free dispatch), applies per-name line folding, and dispatches
// each value to the matching fields.* grammar parser.
package header

import (
	"strings"

	"github.com/oakmail/mailcore/fields"
	"github.com/oakmail/mailcore/message"
	"github.com/oakmail/mailcore/stream"
)

// ParserKind selects which fields.* grammar a header name is associated
// with.
type ParserKind int

const (
	ParseUnstructured ParserKind = iota
	ParseRaw
	ParseAddress
	ParseDate
	ParseMessageIDs
	ParseContentType
	ParseReceived
	ParseList
	ParseIgnore
)

// Config lets a caller override the parser used for any header name (by
// its canonical, case-insensitive spelling) and choose the default
// treatment of names the dispatcher doesn't recognise.
type Config struct {
	Overrides       map[string]ParserKind
	DefaultForOther ParserKind
}

// DefaultConfig dispatches unknown headers to the unstructured parser.
func DefaultConfig() *Config {
	return &Config{DefaultForOther: ParseUnstructured}
}

var wellKnownByName = buildWellKnownByName()

func buildWellKnownByName() map[string]message.HeaderName {
	m := make(map[string]message.HeaderName, len(message.WellKnownNames))
	for hn, name := range message.WellKnownNames {
		m[normalize(name)] = hn
	}
	return m
}

var defaultParserFor = map[message.HeaderName]ParserKind{
	message.HeaderSubject:                   ParseUnstructured,
	message.HeaderFrom:                      ParseAddress,
	message.HeaderTo:                        ParseAddress,
	message.HeaderCc:                        ParseAddress,
	message.HeaderBcc:                       ParseAddress,
	message.HeaderReplyTo:                   ParseAddress,
	message.HeaderSender:                    ParseAddress,
	message.HeaderDate:                      ParseDate,
	message.HeaderMessageID:                 ParseMessageIDs,
	message.HeaderInReplyTo:                 ParseMessageIDs,
	message.HeaderReferences:                ParseMessageIDs,
	message.HeaderComments:                  ParseUnstructured,
	message.HeaderKeywords:                  ParseList,
	message.HeaderReturnPath:                ParseAddress,
	message.HeaderReceived:                  ParseReceived,
	message.HeaderMimeVersion:               ParseRaw,
	message.HeaderContentType:               ParseContentType,
	message.HeaderContentTransferEncoding:   ParseRaw,
	message.HeaderContentDisposition:        ParseContentType,
	message.HeaderContentID:                 ParseMessageIDs,
	message.HeaderContentDescription:        ParseUnstructured,
	message.HeaderContentLanguage:           ParseRaw,
	message.HeaderContentLocation:           ParseRaw,
	message.HeaderContentMD5:                ParseRaw,
	message.HeaderResentFrom:                ParseAddress,
	message.HeaderResentTo:                  ParseAddress,
	message.HeaderResentCc:                  ParseAddress,
	message.HeaderResentBcc:                 ParseAddress,
	message.HeaderResentSender:              ParseAddress,
	message.HeaderResentDate:                ParseDate,
	message.HeaderResentMessageID:           ParseMessageIDs,
	message.HeaderListID:                    ParseUnstructured,
	message.HeaderListUnsubscribe:           ParseRaw,
	message.HeaderListArchive:               ParseRaw,
	message.HeaderListHelp:                  ParseRaw,
	message.HeaderListOwner:                 ParseRaw,
	message.HeaderListPost:                  ParseRaw,
	message.HeaderListSubscribe:             ParseRaw,
	message.HeaderDispositionNotificationTo: ParseAddress,
	message.HeaderAutoSubmitted:             ParseUnstructured,
}

// normalize folds a header name the way the dispatcher compares them:
// case-insensitive, exact byte match otherwise (header names don't carry
// the separator ambiguity that character-set labels do).
func normalize(name string) string {
	return strings.ToLower(name)
}

// rawHeaderLine is one unfolded header field as sliced out of the buffer.
type rawHeaderLine struct {
	nameStart, nameEnd   int
	valueStart, valueEnd int // valueEnd excludes the trailing CRLF
	fieldEnd             int // one past the header's own terminating CRLF
}

// Parse reads header fields from st starting at its current position,
// until a blank line (or end of input) terminates the header block, and
// dispatches each to the grammar selected by cfg. st is left positioned
// just past the header/body separator.
func Parse(st *stream.Stream, cfg *Config) []message.Header {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	buf := st.Remaining()
	base := st.Pos()

	lines := splitHeaderLines(buf)
	out := make([]message.Header, 0, len(lines))
	for _, l := range lines {
		rawName := string(buf[l.nameStart:l.nameEnd])
		kind := lookupParser(rawName, cfg)
		valBytes := buf[l.valueStart:l.valueEnd]

		var hv message.HeaderValue
		switch kind {
		case ParseAddress:
			hv = fields.Address(valBytes)
		case ParseDate:
			hv = fields.Date(valBytes)
		case ParseMessageIDs:
			hv = fields.MessageIDs(valBytes)
		case ParseContentType:
			hv = fields.ContentTypeValue(valBytes)
		case ParseReceived:
			hv = fields.Received(valBytes)
		case ParseList:
			hv = fields.List(valBytes)
		case ParseRaw:
			hv = fields.Raw(valBytes)
		case ParseIgnore:
			continue
		default:
			hv = fields.Unstructured(valBytes)
		}

		hn := message.HeaderOther
		if wn, ok := wellKnownByName[normalize(rawName)]; ok {
			hn = wn
		}

		out = append(out, message.Header{
			Name:        hn,
			RawName:     rawName,
			Value:       hv,
			OffsetField: base + l.nameStart,
			OffsetStart: base + l.valueStart,
			OffsetEnd:   base + l.fieldEnd,
		})
	}

	last := 0
	if len(lines) > 0 {
		last = lines[len(lines)-1].fieldEnd
	}
	st.SetPos(base + headerBlockEnd(buf, last))
	return out
}

func lookupParser(rawName string, cfg *Config) ParserKind {
	key := normalize(rawName)
	if cfg.Overrides != nil {
		if k, ok := cfg.Overrides[key]; ok {
			return k
		}
	}
	if hn, ok := wellKnownByName[key]; ok {
		if k, ok := defaultParserFor[hn]; ok {
			return k
		}
	}
	return cfg.DefaultForOther
}

// splitHeaderLines walks buf finding each "Name:" header field, folding
// CRLF+WSP continuations into the same field, and stops at the first
// blank line (or end of input) per §4.6.
func splitHeaderLines(buf []byte) []rawHeaderLine {
	var out []rawHeaderLine
	i := 0
	for i < len(buf) {
		if isLineBlank(buf, i) {
			break
		}
		nameStart := i
		for i < len(buf) && buf[i] != ':' && buf[i] != '\n' {
			i++
		}
		if i >= len(buf) || buf[i] != ':' {
			// Malformed field with no colon before EOL/EOF: treat the
			// whole line as a valueless header so parsing still makes
			// forward progress.
			nameEnd := i
			lineEnd := advancePastEOL(buf, i)
			out = append(out, rawHeaderLine{nameStart, nameEnd, nameEnd, nameEnd, lineEnd})
			i = lineEnd
			continue
		}
		nameEnd := i
		i++ // skip ':'
		valueStart := i
		valueEnd, fieldEnd := scanFoldedValue(buf, i)
		out = append(out, rawHeaderLine{nameStart, nameEnd, valueStart, valueEnd, fieldEnd})
		i = fieldEnd
	}
	return out
}

// scanFoldedValue returns the end of the value (before its terminating
// CRLF/LF) and the position just past the header's own terminator,
// consuming any folded continuation lines (lines starting with SP/TAB).
func scanFoldedValue(buf []byte, i int) (valueEnd, fieldEnd int) {
	for i < len(buf) {
		lineStart := i
		for i < len(buf) && buf[i] != '\n' {
			i++
		}
		lineContentEnd := i
		if i < len(buf) {
			i++ // consume '\n'
		}
		if lineContentEnd > lineStart && buf[lineContentEnd-1] == '\r' {
			lineContentEnd--
		}
		_ = lineStart
		if i < len(buf) && (buf[i] == ' ' || buf[i] == '\t') {
			// Folded continuation: keep scanning.
			continue
		}
		return lineContentEnd, i
	}
	return len(buf), len(buf)
}

func isLineBlank(buf []byte, i int) bool {
	if i >= len(buf) {
		return true
	}
	if buf[i] == '\n' {
		return true
	}
	if buf[i] == '\r' && i+1 < len(buf) && buf[i+1] == '\n' {
		return true
	}
	return false
}

func advancePastEOL(buf []byte, i int) int {
	for i < len(buf) && buf[i] != '\n' {
		i++
	}
	if i < len(buf) {
		i++
	}
	return i
}

// headerBlockEnd advances past the blank line that terminates the header
// block, if one is present at pos.
func headerBlockEnd(buf []byte, pos int) int {
	i := pos
	if i < len(buf) && buf[i] == '\r' {
		i++
	}
	if i < len(buf) && buf[i] == '\n' {
		i++
	}
	return i
}
