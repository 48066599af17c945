package fields

import (
	"sort"
	"strconv"
	"strings"

	"github.com/oakmail/mailcore/charset"
	"github.com/oakmail/mailcore/message"
)

// ContentTypeValue parses a Content-Type (or Content-Disposition) header
// value: "type/subtype" (or a bare disposition token) followed by
// ";attr=value" pairs, with RFC 2231 parameter continuations
// ("name*0", "name*1*", …) and the charset'language'value encoding on the
// first/only fragment of an extended parameter.
func ContentTypeValue(raw []byte) message.HeaderValue {
	s := FoldAndTrim(raw)
	ct := parseContentType(s)
	return message.HeaderValue{Kind: message.ValueContentType, ContentType: ct}
}

type rawFragment struct {
	attr     string
	index    int // -1 for a plain (non-continued) parameter
	extended bool
	value    string
}

func parseContentType(s string) *message.ContentType {
	ct := &message.ContentType{}
	i := skipCommentsAndSpace(s, 0)

	typeEnd := i
	for typeEnd < len(s) && s[typeEnd] != '/' && s[typeEnd] != ';' && !isSpaceByte(s[typeEnd]) {
		typeEnd++
	}
	ct.Type = strings.ToLower(s[i:typeEnd])
	i = skipCommentsAndSpace(s, typeEnd)

	if i < len(s) && s[i] == '/' {
		i = skipCommentsAndSpace(s, i+1)
		subEnd := i
		for subEnd < len(s) && s[subEnd] != ';' && !isSpaceByte(s[subEnd]) {
			subEnd++
		}
		ct.Subtype = strings.ToLower(s[i:subEnd])
		i = subEnd
	}

	var frags []rawFragment
	i = skipCommentsAndSpace(s, i)
	for i < len(s) && s[i] == ';' {
		i = skipCommentsAndSpace(s, i+1)
		if i >= len(s) {
			break
		}
		nameEnd := i
		for nameEnd < len(s) && s[nameEnd] != '=' && s[nameEnd] != ';' {
			nameEnd++
		}
		if nameEnd >= len(s) || s[nameEnd] != '=' {
			i = skipToSemicolon(s, nameEnd)
			continue
		}
		attrRaw := strings.TrimSpace(s[i:nameEnd])
		i = skipCommentsAndSpace(s, nameEnd+1)

		var val string
		if i < len(s) && s[i] == '"' {
			val, i = scanQuoted(s, i)
		} else {
			// An unquoted value runs to the next ';' (not whitespace):
			// RFC 2231 extended values are occasionally seen in the wild
			// with an unescaped space before a trailing filename-like
			// tail, and the token still belongs to this attribute since
			// nothing else terminates it.
			vs := i
			for i < len(s) && s[i] != ';' {
				i++
			}
			val = strings.TrimRight(s[vs:i], " \t")
		}

		attr := strings.ToLower(attrRaw)
		idx := -1
		percentEncoded := false
		if star := strings.IndexByte(attr, '*'); star >= 0 {
			suffix := attr[star+1:]
			attr = attr[:star]
			switch {
			case suffix == "":
				// Bare "name*" (no digit): the whole value is segment 0,
				// percent-encoded with a leading charset'language' tag.
				idx = 0
				percentEncoded = true
			case strings.HasSuffix(suffix, "*"):
				// "name*N*": continuation segment N, percent-encoded.
				if n, err := strconv.Atoi(suffix[:len(suffix)-1]); err == nil {
					idx = n
				}
				percentEncoded = true
			default:
				// "name*N": plain continuation segment N, not encoded.
				if n, err := strconv.Atoi(suffix); err == nil {
					idx = n
				}
			}
		}
		frags = append(frags, rawFragment{attr: attr, index: idx, extended: percentEncoded, value: val})
		i = skipCommentsAndSpace(s, i)
	}

	ct.Attributes = reassembleAttributes(frags)
	return ct
}

// reassembleAttributes groups fragments by attribute name, orders
// continuations by index, percent-decodes and charset-transcodes extended
// values, and concatenates into one value per attribute name.
func reassembleAttributes(frags []rawFragment) []message.Attribute {
	order := []string{}
	byName := map[string][]rawFragment{}
	for _, f := range frags {
		if _, ok := byName[f.attr]; !ok {
			order = append(order, f.attr)
		}
		byName[f.attr] = append(byName[f.attr], f)
	}

	var out []message.Attribute
	for _, name := range order {
		group := byName[name]
		sort.SliceStable(group, func(a, b int) bool {
			ai, bi := group[a].index, group[b].index
			if ai < 0 {
				ai = 0
			}
			if bi < 0 {
				bi = 0
			}
			return ai < bi
		})

		var cs string
		var b strings.Builder
		for _, f := range group {
			v := f.value
			if f.extended {
				// A percent-encoded segment may carry the
				// charset'language' tag (normally only the first segment
				// of an extended parameter does, but the tag is honoured
				// wherever it appears).
				if q1 := strings.IndexByte(v, '\''); q1 >= 0 {
					if q2 := strings.IndexByte(v[q1+1:], '\''); q2 >= 0 {
						cs = v[:q1]
						v = v[q1+1+q2+1:]
					}
				}
				v = percentDecode(v)
			}
			b.WriteString(v)
		}
		val := b.String()
		if cs != "" {
			if decoded, _, ok := charset.Decode(cs, []byte(val)); ok {
				val = decoded
			}
		}
		out = append(out, message.Attribute{Name: name, Value: val})
	}
	return out
}

func percentDecode(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) {
			hi, ok1 := hexVal(s[i+1])
			lo, ok2 := hexVal(s[i+2])
			if ok1 && ok2 {
				b.WriteByte(byte(hi<<4 | lo))
				i += 2
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func hexVal(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

func scanQuoted(s string, start int) (string, int) {
	i := start + 1
	var b strings.Builder
	for i < len(s) {
		c := s[i]
		if c == '\\' && i+1 < len(s) {
			b.WriteByte(s[i+1])
			i += 2
			continue
		}
		if c == '"' {
			i++
			break
		}
		b.WriteByte(c)
		i++
	}
	return b.String(), i
}

func skipToSemicolon(s string, i int) int {
	for i < len(s) && s[i] != ';' {
		i++
	}
	return i
}

// skipCommentsAndSpace skips whitespace and RFC 5322 comments between
// Content-Type tokens.
func skipCommentsAndSpace(s string, i int) int {
	for i < len(s) {
		c := s[i]
		if isSpaceByte(c) {
			i++
			continue
		}
		if c == '(' {
			depth := 1
			i++
			for i < len(s) && depth > 0 {
				if s[i] == '\\' && i+1 < len(s) {
					i += 2
					continue
				}
				if s[i] == '(' {
					depth++
				} else if s[i] == ')' {
					depth--
				}
				i++
			}
			continue
		}
		break
	}
	return i
}
