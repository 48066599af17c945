// Package fields implements the per-header grammar parsers of §4.5:
// unstructured text, raw text, address lists, dates, message-id lists,
// Content-Type (with RFC 2231), and Received.
package fields

import (
	"strings"

	"github.com/oakmail/mailcore/message"
	"github.com/oakmail/mailcore/rfc2047"
)

// Unstructured decodes RFC 2047 encoded words and folds interior CRLF+WSP
// to a single space, per §4.5.
func Unstructured(raw []byte) message.HeaderValue {
	folded := FoldAndTrim(raw)
	return message.HeaderValue{Kind: message.ValueText, Text: rfc2047.Decode(folded)}
}

// Raw returns the value bytes as folded, trimmed, lossily-decoded UTF-8
// with no RFC 2047 decoding.
func Raw(raw []byte) message.HeaderValue {
	return message.HeaderValue{Kind: message.ValueText, Text: FoldAndTrim(raw)}
}

// List parses a comma-separated list of unstructured (RFC-2047-decoded)
// text fields, folding and trimming each element.
func List(raw []byte) message.HeaderValue {
	folded := FoldAndTrim(raw)
	parts := splitTopLevelComma(folded)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, rfc2047.Decode(strings.TrimSpace(p)))
	}
	return message.HeaderValue{Kind: message.ValueTextList, TextList: out}
}

// FoldAndTrim replaces every CRLF (or bare LF) immediately followed by
// SP/TAB with a single space, then trims the trailing line terminator and
// leading/trailing space left over from header parsing.
func FoldAndTrim(raw []byte) string {
	var b strings.Builder
	b.Grow(len(raw))
	i := 0
	for i < len(raw) {
		c := raw[i]
		if c == '\r' && i+1 < len(raw) && raw[i+1] == '\n' {
			if i+2 < len(raw) && (raw[i+2] == ' ' || raw[i+2] == '\t') {
				b.WriteByte(' ')
				i += 3
				continue
			}
			i += 2
			continue
		}
		if c == '\n' {
			if i+1 < len(raw) && (raw[i+1] == ' ' || raw[i+1] == '\t') {
				b.WriteByte(' ')
				i += 2
				continue
			}
			i++
			continue
		}
		b.WriteByte(c)
		i++
	}
	return strings.TrimSpace(b.String())
}

// splitTopLevelComma splits on commas that are not inside a quoted string.
func splitTopLevelComma(s string) []string {
	var out []string
	depthQuote := false
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			if i == 0 || s[i-1] != '\\' {
				depthQuote = !depthQuote
			}
		case ',':
			if !depthQuote {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, s[start:])
	return out
}
