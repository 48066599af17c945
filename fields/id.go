package fields

import (
	"strings"

	"github.com/oakmail/mailcore/message"
)

// MessageIDs parses the Message-ID, In-Reply-To and References headers: a
// whitespace-separated (historically comment-separated) run of
// "<addr-spec>" tokens, each returned without its angle brackets.
// Unterminated or malformed tokens are skipped rather than aborting the
// scan.
func MessageIDs(raw []byte) message.HeaderValue {
	s := FoldAndTrim(raw)
	var out []string
	i := 0
	for i < len(s) {
		for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
			i++
		}
		if i >= len(s) {
			break
		}
		if s[i] == '(' {
			depth := 1
			i++
			for i < len(s) && depth > 0 {
				if s[i] == '(' {
					depth++
				} else if s[i] == ')' {
					depth--
				}
				i++
			}
			continue
		}
		if s[i] != '<' {
			// Skip an unrecognised token up to the next whitespace.
			for i < len(s) && s[i] != ' ' && s[i] != '\t' {
				i++
			}
			continue
		}
		end := strings.IndexByte(s[i:], '>')
		if end < 0 {
			break
		}
		out = append(out, s[i+1:i+end])
		i += end + 1
	}
	return message.HeaderValue{Kind: message.ValueTextList, TextList: out}
}
