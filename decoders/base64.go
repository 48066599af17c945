// Package decoders implements the transport-safe transfer-encoding decoders
// of §4.2: base64 and quoted-printable, each in three modes (full buffer,
// encoded-word fragment, MIME body up to a boundary).
package decoders

// notBase64 is the sentinel lane contribution for a byte outside the
// base64 alphabet, chosen so it can never be confused with a valid 6-bit
// value once shifted into a 24-bit accumulator.
const notBase64 = 0x01FFFFFF

var base64Table [256]uint32

func init() {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"
	for i := range base64Table {
		base64Table[i] = notBase64
	}
	for i := 0; i < len(alphabet); i++ {
		base64Table[alphabet[i]] = uint32(i)
	}
}

func isBase64Skippable(b byte) bool {
	switch b {
	case ' ', '\t', '\r', '\n':
		return true
	default:
		return false
	}
}

// Base64Full decodes an entire buffer as base64, tolerating interleaved
// whitespace. It returns (nil, false) if a disallowed byte is encountered,
// or if the padding present is inconsistent with the group's length modulo
// 4 (§4.2).
func Base64Full(data []byte) ([]byte, bool) {
	out := make([]byte, 0, len(data)*3/4+3)
	var acc uint32
	count := 0
	pad := 0

	flush := func() bool {
		if count == 0 {
			return true
		}
		if count == 1 {
			// A single leftover base64 digit cannot encode a byte.
			return false
		}
		// Left-pad the accumulator as if the missing digits were zero.
		for count < 4 {
			acc <<= 6
			count++
		}
		b0 := byte(acc >> 16)
		b1 := byte(acc >> 8)
		b2 := byte(acc)
		switch pad {
		case 0:
			out = append(out, b0, b1, b2)
		case 1:
			out = append(out, b0, b1)
		case 2:
			out = append(out, b0)
		default:
			return false
		}
		acc = 0
		count = 0
		pad = 0
		return true
	}

	for _, b := range data {
		if isBase64Skippable(b) {
			continue
		}
		if b == '=' {
			pad++
			if pad > 2 {
				return nil, false
			}
			acc <<= 6
			count++
			if count == 4 {
				if !flush() {
					return nil, false
				}
			}
			continue
		}
		if pad > 0 {
			// '=' may only appear at the tail of a 4-char group.
			return nil, false
		}
		v := base64Table[b]
		if v == notBase64 {
			return nil, false
		}
		acc = (acc << 6) | v
		count++
		if count == 4 {
			if !flush() {
				return nil, false
			}
		}
	}
	if count != 0 {
		if !flush() {
			return nil, false
		}
	}
	return out, true
}

// Base64Word decodes an RFC 2047 encoded-word fragment: everything up to
// (and including) the literal "?=" terminator. It returns the decoded
// bytes and the number of input bytes consumed, including the terminator.
// SP/TAB/CR/LF (soft folds) and extra '=' are tolerated and simply
// skipped rather than treated as errors.
func Base64Word(data []byte) (decoded []byte, consumed int, ok bool) {
	var acc uint32
	count := 0
	i := 0
	for i < len(data) {
		if data[i] == '?' && i+1 < len(data) && data[i+1] == '=' {
			i += 2
			switch count {
			case 0:
				// nothing pending
			case 1:
				// A single leftover sextet cannot encode a byte.
				return nil, 0, false
			case 2:
				acc <<= 12
				decoded = append(decoded, byte(acc>>16))
			case 3:
				acc <<= 6
				decoded = append(decoded, byte(acc>>16), byte(acc>>8))
			}
			return decoded, i, true
		}
		b := data[i]
		i++
		if isBase64Skippable(b) || b == '=' {
			continue
		}
		v := base64Table[b]
		if v == notBase64 {
			return nil, 0, false
		}
		acc = (acc << 6) | v
		count++
		if count == 4 {
			decoded = append(decoded, byte(acc>>16), byte(acc>>8), byte(acc))
			acc, count = 0, 0
		}
	}
	return nil, 0, false
}

// Base64MIME decodes a MIME body encoded as base64 up to the first line
// beginning with "--<boundary>" (the match must be followed by CRLF, "--",
// SP/TAB, or end of input). It returns the decoded bytes and the absolute
// offset just past the last byte of the body, where that boundary line's
// leading CRLF begins, so callers can size the body span exactly as the boundary search
// of §4.7 would.
func Base64MIME(data []byte, boundary []byte) (decoded []byte, bodyEnd int, ok bool) {
	end := findBoundaryLine(data, boundary)
	body := data
	bodyEnd = len(data)
	if end >= 0 {
		body = data[:end]
		bodyEnd = end
	}
	decoded, decOK := Base64Full(body)
	if !decOK {
		// Transfer decoders never error out (§4.2): surface the raw span.
		return nil, bodyEnd, false
	}
	return decoded, bodyEnd, true
}

// findBoundaryLine returns the offset of the CRLF/LF immediately preceding
// the first "--<boundary>" line start (i.e. where the body content ends),
// or -1 if no such boundary line exists in data. A boundary candidate must
// be preceded by LF or be at the very start of data, and must be followed
// by CRLF, "--", SP, TAB, or end of input.
func findBoundaryLine(data []byte, boundary []byte) int {
	if len(boundary) == 0 {
		return -1
	}
	marker := append([]byte("--"), boundary...)
	i := 0
	for {
		idx := indexFrom(data, marker, i)
		if idx < 0 {
			return -1
		}
		lineStart := idx == 0 || data[idx-1] == '\n'
		after := idx + len(marker)
		followOK := after >= len(data)
		if !followOK {
			switch {
			case data[after] == '\r' || data[after] == '\n':
				followOK = true
			case after+1 < len(data) && data[after] == '-' && data[after+1] == '-':
				followOK = true
			case data[after] == ' ' || data[after] == '\t':
				followOK = true
			}
		}
		if lineStart && followOK {
			end := idx
			if end > 0 && data[end-1] == '\n' {
				end--
				if end > 0 && data[end-1] == '\r' {
					end--
				}
			}
			return end
		}
		i = idx + 1
	}
}

func indexFrom(data, sep []byte, from int) int {
	if from >= len(data) {
		return -1
	}
	rest := data[from:]
	for i := 0; i+len(sep) <= len(rest); i++ {
		if string(rest[i:i+len(sep)]) == string(sep) {
			return from + i
		}
	}
	return -1
}
