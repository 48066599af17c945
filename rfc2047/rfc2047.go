// Package rfc2047 reassembles RFC 2047 "encoded word" tokens
// (=?charset*lang?enc?data?=) embedded in header values, including the
// RFC 2047 §6.2 rule that adjacent encoded words separated only by folding
// whitespace concatenate with no intervening space (§4.4).
package rfc2047

import (
	"strings"

	"github.com/oakmail/mailcore/charset"
	"github.com/oakmail/mailcore/decoders"
)

// tokenKind tags the accumulator's last emitted run, driving the
// whitespace-dropping rule between two encoded words.
type tokenKind int

const (
	kindNone tokenKind = iota
	kindPlain
	kindEncoded
)

// Decode scans s for encoded words and returns the reassembled text. Runs
// of plain text pass through verbatim (still subject to surrounding
// whitespace rules); malformed encoded-word candidates are copied through
// as plain text rather than rejected, per §4.4's failure-mode rule.
func Decode(s string) string {
	var out strings.Builder
	var pendingWS string
	last := kindNone

	i := 0
	for i < len(s) {
		if isWSP(s[i]) {
			start := i
			for i < len(s) && isWSP(s[i]) {
				i++
			}
			pendingWS = s[start:i]
			continue
		}

		if word, n, ok := tryDecodeWord(s[i:]); ok {
			if last == kindEncoded {
				// WHITESPACE between two ENCODED tokens is dropped.
			} else {
				out.WriteString(pendingWS)
			}
			out.WriteString(word)
			pendingWS = ""
			last = kindEncoded
			i += n
			continue
		}

		// Plain-text run: consume up to the next whitespace or potential
		// encoded-word start.
		start := i
		for i < len(s) && !isWSP(s[i]) {
			if s[i] == '=' && i+1 < len(s) && s[i+1] == '?' {
				if _, n, ok := tryDecodeWord(s[i:]); ok {
					_ = n
					break
				}
			}
			i++
		}
		if i == start {
			// A lone '=' that didn't form a word; consume it literally so
			// we always make forward progress.
			i++
		}
		out.WriteString(pendingWS)
		out.WriteString(s[start:i])
		pendingWS = ""
		last = kindPlain
	}
	out.WriteString(pendingWS)
	return out.String()
}

func isWSP(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

// tryDecodeWord attempts to parse a single "=?charset*lang?enc?data?=" token
// at the start of s, returning the decoded text and the number of bytes of
// s it consumed.
func tryDecodeWord(s string) (decoded string, consumed int, ok bool) {
	if !strings.HasPrefix(s, "=?") {
		return "", 0, false
	}
	rest := s[2:]

	q1 := strings.IndexByte(rest, '?')
	if q1 < 0 {
		return "", 0, false
	}
	charsetAndLang := rest[:q1]
	cs := charsetAndLang
	if star := strings.IndexByte(charsetAndLang, '*'); star >= 0 {
		cs = charsetAndLang[:star]
	}
	if cs == "" {
		return "", 0, false
	}

	afterCS := rest[q1+1:]
	if len(afterCS) < 2 {
		return "", 0, false
	}
	enc := afterCS[0]
	if afterCS[1] != '?' {
		return "", 0, false
	}
	if enc != 'Q' && enc != 'q' && enc != 'B' && enc != 'b' {
		return "", 0, false
	}
	data := afterCS[2:]

	var raw []byte
	var dataConsumed int
	var dOK bool
	switch enc {
	case 'B', 'b':
		raw, dataConsumed, dOK = decoders.Base64Word([]byte(data))
	default:
		dataConsumed, dOK = scanQWord(data)
		if dOK {
			raw, dOK = decoders.QuotedPrintableWord([]byte(data[:dataConsumed-2]))
		}
	}
	if !dOK {
		return "", 0, false
	}

	text, _, _ := charset.Decode(cs, raw)
	total := 2 + q1 + 1 + 2 + dataConsumed
	return text, total, true
}

// scanQWord finds the "?=" terminator of a Q-encoded word, returning the
// number of bytes consumed including the terminator.
func scanQWord(data string) (int, bool) {
	i := strings.Index(data, "?=")
	if i < 0 {
		return 0, false
	}
	return i + 2, true
}
