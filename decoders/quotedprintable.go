package decoders

// QuotedPrintableBody decodes a full quoted-printable body buffer (§4.2,
// body mode): "=XY" decodes the hex byte XY, "=" followed by a CRLF or bare
// LF is a soft line break that emits nothing, and any other byte passes
// through unchanged. A non-hex byte following "=" is reported as an error
// by returning ok=false, at which point callers fall back to the raw span
// per the "never throw" decoder contract (§4.2, §7).
func QuotedPrintableBody(data []byte) ([]byte, bool) {
	return quotedPrintable(data, false)
}

// QuotedPrintableWord decodes an RFC 2047 encoded-word fragment: like body
// mode except "_" decodes to a literal space and soft line breaks are
// forbidden (any "=" immediately followed by a line ending is an error).
func QuotedPrintableWord(data []byte) ([]byte, bool) {
	return quotedPrintable(data, true)
}

func quotedPrintable(data []byte, wordMode bool) ([]byte, bool) {
	out := make([]byte, 0, len(data))
	i := 0
	for i < len(data) {
		b := data[i]
		switch {
		case b == '=':
			if i+1 < len(data) && data[i+1] == '\r' && i+2 < len(data) && data[i+2] == '\n' {
				if wordMode {
					return nil, false
				}
				i += 3
				continue
			}
			if i+1 < len(data) && data[i+1] == '\n' {
				if wordMode {
					return nil, false
				}
				i += 2
				continue
			}
			if i+2 >= len(data) {
				return nil, false
			}
			dec, ok := HexByte(data[i+1], data[i+2])
			if !ok {
				return nil, false
			}
			out = append(out, dec)
			i += 3
		case wordMode && b == '_':
			out = append(out, ' ')
			i++
		default:
			out = append(out, b)
			i++
		}
	}
	return out, true
}

// QuotedPrintableMIME decodes a MIME body encoded as quoted-printable up to
// the first "--<boundary>" line, sharing the boundary-termination rule
// with Base64MIME.
func QuotedPrintableMIME(data []byte, boundary []byte) (decoded []byte, bodyEnd int, ok bool) {
	end := findBoundaryLine(data, boundary)
	body := data
	bodyEnd = len(data)
	if end >= 0 {
		body = data[:end]
		bodyEnd = end
	}
	decoded, decOK := QuotedPrintableBody(body)
	if !decOK {
		return nil, bodyEnd, false
	}
	return decoded, bodyEnd, true
}
