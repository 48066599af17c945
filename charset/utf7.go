package charset

import "unicode/utf16"

const utf7Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

var utf7Decode [256]int8

func init() {
	for i := range utf7Decode {
		utf7Decode[i] = -1
	}
	for i := 0; i < len(utf7Alphabet); i++ {
		utf7Decode[utf7Alphabet[i]] = int8(i)
	}
}

// decodeUTF7 implements the §4.3 UTF-7 state machine: outside shift, ASCII
// bytes pass through; "+" enters a modified-base64 shift that accumulates
// big-endian UTF-16 code units, flushed (and UTF-16-decoded) on "-" or any
// non-base64 byte; a lone "+-" emits a literal "+".
func decodeUTF7(data []byte) string {
	var out []rune
	var units []uint16

	inShift := false
	var acc uint32
	var bits uint

	flush := func() {
		if len(units) > 0 {
			out = append(out, utf16.Decode(units)...)
			units = units[:0]
		}
		acc, bits = 0, 0
	}

	i := 0
	for i < len(data) {
		b := data[i]
		if !inShift {
			if b == '+' {
				inShift = true
				i++
				// "+-" is a literal '+' with no shift content.
				if i < len(data) && data[i] == '-' {
					out = append(out, '+')
					inShift = false
					i++
				}
				continue
			}
			out = append(out, rune(b))
			i++
			continue
		}

		if b == '-' {
			flush()
			inShift = false
			i++
			continue
		}
		v := utf7Decode[b]
		if v < 0 {
			flush()
			inShift = false
			// Re-process b as a plain ASCII byte (do not consume it here).
			continue
		}
		acc = (acc << 6) | uint32(v)
		bits += 6
		i++
		if bits >= 16 {
			bits -= 16
			units = append(units, uint16(acc>>bits))
		}
	}
	if inShift {
		flush()
	}
	return string(out)
}
