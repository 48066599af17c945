package fields

import (
	"strings"

	"github.com/oakmail/mailcore/message"
	"github.com/oakmail/mailcore/rfc2047"
)

// addrScanner walks an address-list/mailbox-list header value. Unlike a
// strict RFC 5322 grammar, it never hard-fails: anything it cannot resolve
// as a mailbox or group is folded into a best-effort Addr with whatever
// name/address fragments it could recover, per the parser's general
// leniency requirement. Comment nesting is tracked with a depth counter
// (not a boolean) since RFC 5322 comments may nest.
type addrScanner struct {
	s   string
	pos int
}

// Address parses a mailbox-list or address-list header value (To, From,
// Cc, Bcc, Reply-To, Sender, Resent-*) into a flat list of addresses, or
// into named groups when group syntax ("Name: a@b, c@d;") is present.
func Address(raw []byte) message.HeaderValue {
	sc := &addrScanner{s: FoldAndTrim(raw)}
	groups := sc.parseGroupOrList()

	hasGroup := false
	for _, g := range groups {
		if g.HasName {
			hasGroup = true
			break
		}
	}
	if !hasGroup {
		var flat []message.Addr
		for _, g := range groups {
			flat = append(flat, g.Addrs...)
		}
		return message.HeaderValue{
			Kind:    message.ValueAddress,
			Address: &message.AddressValue{Kind: message.AddressList, List: flat},
		}
	}
	return message.HeaderValue{
		Kind:    message.ValueAddress,
		Address: &message.AddressValue{Kind: message.AddressGroups, Groups: groups},
	}
}

// parseGroupOrList parses the whole remaining input as a comma-separated
// sequence of mailboxes and/or groups.
func (sc *addrScanner) parseGroupOrList() []message.Group {
	var groups []message.Group
	var ungrouped []message.Addr

	for {
		sc.skipCFWS()
		if sc.empty() {
			break
		}
		g, isGroup, ok := sc.parseGroupOrMailbox()
		if !ok {
			// Could not make forward progress on this element; skip to the
			// next comma (or end) and keep going rather than aborting.
			sc.skipToNextComma()
		} else if isGroup {
			groups = append(groups, g)
		} else {
			ungrouped = append(ungrouped, g.Addrs...)
		}
		sc.skipCFWS()
		if sc.empty() {
			break
		}
		if sc.peek() == ',' {
			sc.pos++
			continue
		}
		// Unexpected separator; try to resync at the next comma.
		sc.skipToNextComma()
		if sc.empty() {
			break
		}
		if sc.peek() == ',' {
			sc.pos++
		}
	}
	if len(ungrouped) > 0 || len(groups) == 0 {
		groups = append(groups, message.Group{Addrs: ungrouped})
	}
	return groups
}

func (sc *addrScanner) skipToNextComma() {
	depth := 0
	for !sc.empty() {
		switch sc.peek() {
		case '"':
			sc.skipQuotedStringRaw()
			continue
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				return
			}
		}
		sc.pos++
	}
}

func (sc *addrScanner) skipQuotedStringRaw() {
	sc.pos++ // opening quote
	for !sc.empty() {
		c := sc.peek()
		if c == '\\' && sc.pos+1 < len(sc.s) {
			sc.pos += 2
			continue
		}
		sc.pos++
		if c == '"' {
			return
		}
	}
}

// parseGroupOrMailbox parses one "display-name:" group or one mailbox
// (name-addr or addr-spec) at the current position.
func (sc *addrScanner) parseGroupOrMailbox() (message.Group, bool, bool) {
	start := sc.pos
	name, hasName := sc.tryParsePhrase()
	sc.skipCFWS()
	if hasName && !sc.empty() && sc.peek() == ':' {
		sc.pos++
		var addrs []message.Addr
		for {
			sc.skipCFWS()
			if sc.empty() || sc.peek() == ';' {
				break
			}
			a, ok := sc.parseMailboxOnly()
			if !ok {
				sc.skipToNextComma()
			} else {
				addrs = append(addrs, a)
			}
			sc.skipCFWS()
			if !sc.empty() && sc.peek() == ',' {
				sc.pos++
				continue
			}
			break
		}
		if !sc.empty() && sc.peek() == ';' {
			sc.pos++
		}
		return message.Group{Name: rfc2047.Decode(name), HasName: true, Addrs: addrs}, true, true
	}

	// Not a group: rewind and parse as a single mailbox.
	sc.pos = start
	a, ok := sc.parseMailboxOnly()
	if !ok {
		return message.Group{}, false, false
	}
	return message.Group{Addrs: []message.Addr{a}}, false, true
}

// parseMailboxOnly parses a single name-addr or addr-spec mailbox.
func (sc *addrScanner) parseMailboxOnly() (message.Addr, bool) {
	sc.skipCFWS()
	if sc.empty() {
		return message.Addr{}, false
	}

	name, hasName := sc.tryParsePhrase()
	sc.skipCFWS()

	if !sc.empty() && sc.peek() == '<' {
		sc.pos++
		spec, ok := sc.parseAddrSpec('>')
		sc.skipCFWS()
		if !sc.empty() && sc.peek() == '>' {
			sc.pos++
		}
		if !ok && !hasName {
			return message.Addr{}, false
		}
		return message.Addr{Name: rfc2047.Decode(name), HasName: hasName, Address: spec, HasAddr: ok}, true
	}

	if hasName {
		// A bare phrase with no angle-addr: treat it as an addr-spec if it
		// looks like one (contains '@'); otherwise it is a display name with
		// no address.
		if strings.Contains(name, "@") {
			return message.Addr{Address: name, HasAddr: true}, true
		}
		return message.Addr{Name: rfc2047.Decode(name), HasName: true}, true
	}

	spec, ok := sc.parseAddrSpec(0)
	if !ok {
		return message.Addr{}, false
	}
	return message.Addr{Address: spec, HasAddr: true}, true
}

// parseAddrSpec parses local-part "@" domain, stopping at stop (or at
// whitespace/',' if stop == 0).
func (sc *addrScanner) parseAddrSpec(stop byte) (string, bool) {
	start := sc.pos
	var b strings.Builder
	for !sc.empty() {
		c := sc.peek()
		if stop != 0 && c == stop {
			break
		}
		if stop == 0 && (c == ',' || c == ';' || isSpaceByte(c)) {
			break
		}
		if c == '"' {
			qStart := sc.pos
			sc.skipQuotedStringRaw()
			b.WriteString(sc.s[qStart:sc.pos])
			continue
		}
		if c == '(' {
			sc.skipComment()
			continue
		}
		b.WriteByte(c)
		sc.pos++
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		sc.pos = start
		return "", false
	}
	return out, true
}

// tryParsePhrase parses 1*word (atom / quoted-string) and joins the words
// with single spaces, stopping before '<', ':', ',', ';' at the top level.
// It does not RFC-2047-decode; its callers decode the joined phrase.
func (sc *addrScanner) tryParsePhrase() (string, bool) {
	var words []string
	for {
		sc.skipCFWSNoFail()
		if sc.empty() {
			break
		}
		c := sc.peek()
		if c == '<' || c == ':' || c == ',' || c == ';' {
			break
		}
		if c == '"' {
			qStart := sc.pos
			sc.skipQuotedStringRaw()
			raw := sc.s[qStart:sc.pos]
			if len(raw) >= 2 {
				raw = raw[1 : len(raw)-1]
			}
			words = append(words, raw)
			continue
		}
		wStart := sc.pos
		for !sc.empty() {
			c := sc.peek()
			if c == '<' || c == ':' || c == ',' || c == ';' || c == '"' || c == '(' || isSpaceByte(c) {
				break
			}
			sc.pos++
		}
		if sc.pos == wStart {
			break
		}
		words = append(words, sc.s[wStart:sc.pos])
	}
	if len(words) == 0 {
		return "", false
	}
	return strings.Join(words, " "), true
}

func (sc *addrScanner) skipComment() {
	if sc.empty() || sc.peek() != '(' {
		return
	}
	depth := 0
	for !sc.empty() {
		c := sc.peek()
		if c == '\\' && sc.pos+1 < len(sc.s) {
			sc.pos += 2
			continue
		}
		if c == '(' {
			depth++
		} else if c == ')' {
			depth--
			sc.pos++
			if depth == 0 {
				return
			}
			continue
		}
		sc.pos++
		if depth == 0 {
			return
		}
	}
}

// skipCFWS skips comments and folding whitespace.
func (sc *addrScanner) skipCFWS() {
	for !sc.empty() {
		c := sc.peek()
		if isSpaceByte(c) {
			sc.pos++
			continue
		}
		if c == '(' {
			sc.skipComment()
			continue
		}
		break
	}
}

// skipCFWSNoFail is identical to skipCFWS; named separately for callers
// inside phrase parsing where only whitespace (not structural bytes) is
// ever consumed.
func (sc *addrScanner) skipCFWSNoFail() { sc.skipCFWS() }

func (sc *addrScanner) empty() bool  { return sc.pos >= len(sc.s) }
func (sc *addrScanner) peek() byte   { return sc.s[sc.pos] }

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}
