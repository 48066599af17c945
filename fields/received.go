package fields

import (
	"regexp"
	"strings"

	"github.com/oakmail/mailcore/message"
)

var (
	ipv4Re = regexp.MustCompile(`^(\d{1,3}\.){3}\d{1,3}$`)
	ipv6Re = regexp.MustCompile(`^[0-9A-Fa-f:]*:[0-9A-Fa-f:]*$`)
)

var withProtocols = map[string]bool{
	"SMTP": true, "ESMTP": true, "ESMTPA": true, "ESMTPS": true, "ESMTPSA": true,
	"LMTP": true, "LMTPA": true, "LMTPS": true, "LMTPSA": true,
	"HTTP": true, "HTTPS": true, "IMAP": true, "POP3": true, "MMS": true,
}

var tlsVersions = map[string]bool{
	"SSLv2": true, "SSLv3": true, "TLSv1": true, "TLSv1.1": true,
	"TLSv1.2": true, "TLSv1.3": true, "DTLSv1.0": true, "DTLSv1.2": true,
}

var helloCmds = map[string]message.HelloCommand{
	"HELO": message.HelloHelo, "EHLO": message.HelloEhlo, "LHLO": message.HelloLhlo,
}

// Received tokenises and parses a Received header into its component
// fields per §4.5. Unrecognised trailing material is ignored rather than
// causing a parse failure: every Received header, however malformed,
// produces a best-effort Received record.
func Received(raw []byte) message.HeaderValue {
	s := FoldAndTrim(raw)
	r := &message.Received{}

	// Split the clause section (before ';') from the date (after ';').
	clauses := s
	if semi := strings.IndexByte(s, ';'); semi >= 0 {
		clauses = s[:semi]
		dateStr := strings.TrimSpace(s[semi+1:])
		if dateStr != "" {
			dt := parseDateTime(dateStr)
			if dt.Valid {
				r.Date = &dt
			}
		}
	}

	toks := tokenizeReceived(clauses)
	i := 0
	for i < len(toks) {
		tok := strings.ToUpper(toks[i])
		switch tok {
		case "FROM":
			i++
			if i < len(toks) {
				r.From = toks[i]
				i++
			}
			i = scanFromComment(toks, i, r)
		case "BY":
			i++
			if i < len(toks) {
				r.By = toks[i]
				i++
			}
		case "FOR":
			i++
			if i < len(toks) {
				r.For = strings.Trim(toks[i], "<>")
				i++
			}
		case "WITH":
			i++
			if i < len(toks) {
				r.With = toks[i]
				i++
			}
		case "ID":
			i++
			if i < len(toks) {
				r.ID = toks[i]
				i++
			}
		case "VIA":
			i++
			if i < len(toks) {
				r.Via = toks[i]
				i++
			}
		case "IDENT":
			i++
			if i < len(toks) {
				r.Ident = toks[i]
				i++
			}
		default:
			if cmd, ok := helloCmds[tok]; ok {
				r.HeloCmd = cmd
				i++
				if i < len(toks) {
					r.Helo = toks[i]
					i++
				}
				continue
			}
			if tlsVersions[toks[i]] {
				r.TLSVersion = toks[i]
			}
			i++
		}
	}

	return message.HeaderValue{Kind: message.ValueReceived, Received: r}
}

// scanFromComment looks for an IP address, a reverse-DNS domain, or a
// HELO/EHLO/LHLO keyword inside the parenthetical comment that commonly
// follows the FROM host, without consuming tokens belonging to later
// clauses (BY/WITH/...).
func scanFromComment(toks []string, i int, r *message.Received) int {
	for i < len(toks) {
		up := strings.ToUpper(toks[i])
		if up == "BY" || up == "WITH" || up == "ID" || up == "FOR" || up == "VIA" {
			break
		}
		if cmd, ok := helloCmds[up]; ok {
			r.HeloCmd = cmd
			i++
			if i < len(toks) {
				r.Helo = toks[i]
				i++
			}
			continue
		}
		if isIPAddr(toks[i]) {
			if r.FromIP == "" {
				r.FromIP = strings.Trim(toks[i], "[]")
			}
		} else if looksLikeDomain(toks[i]) && r.FromIPRev == "" {
			r.FromIPRev = toks[i]
		}
		if tlsVersions[toks[i]] {
			r.TLSVersion = toks[i]
		}
		i++
	}
	return i
}

func isIPAddr(s string) bool {
	s = strings.Trim(s, "[]")
	return ipv4Re.MatchString(s) || (strings.Contains(s, ":") && ipv6Re.MatchString(s))
}

func looksLikeDomain(s string) bool {
	return strings.Contains(s, ".") && !strings.ContainsAny(s, "@()<>;")
}

// tokenizeReceived splits the clause section on whitespace and comment
// parentheses, keeping parenthesised comment contents as their own
// whitespace-delimited tokens (comments attach no special marker since
// the caller inspects token shape, not nesting, to decide their role).
func tokenizeReceived(s string) []string {
	var toks []string
	i := 0
	for i < len(s) {
		for i < len(s) && isSpaceByte(s[i]) {
			i++
		}
		if i >= len(s) {
			break
		}
		if s[i] == '(' {
			depth := 1
			start := i + 1
			i++
			for i < len(s) && depth > 0 {
				if s[i] == '(' {
					depth++
				} else if s[i] == ')' {
					depth--
				}
				i++
			}
			inner := s[start : i-1]
			toks = append(toks, strings.Fields(inner)...)
			continue
		}
		start := i
		for i < len(s) && !isSpaceByte(s[i]) && s[i] != '(' {
			i++
		}
		toks = append(toks, s[start:i])
	}
	return toks
}
