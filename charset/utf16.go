package charset

import "unicode/utf16"

// decodeUTF16 decodes data per §4.3: a leading BOM picks the endianness;
// absent a BOM it defaults to little-endian. An odd trailing byte is
// dropped. Unpaired surrogates decode to U+FFFD.
func decodeUTF16(data []byte, bigEndianDefault bool) string {
	bigEndian := bigEndianDefault
	if len(data) >= 2 {
		if data[0] == 0xFE && data[1] == 0xFF {
			bigEndian = true
			data = data[2:]
		} else if data[0] == 0xFF && data[1] == 0xFE {
			bigEndian = false
			data = data[2:]
		}
	}
	return decodeUTF16Bytes(data, bigEndian)
}

// decodeUTF16BE decodes data as UTF-16BE, still honouring (and consuming)
// a BOM if one happens to be present.
func decodeUTF16BE(data []byte) string {
	if len(data) >= 2 && data[0] == 0xFE && data[1] == 0xFF {
		data = data[2:]
	} else if len(data) >= 2 && data[0] == 0xFF && data[1] == 0xFE {
		return decodeUTF16Bytes(data[2:], false)
	}
	return decodeUTF16Bytes(data, true)
}

// decodeUTF16LE decodes data as UTF-16LE, still honouring (and consuming)
// a BOM if one happens to be present.
func decodeUTF16LE(data []byte) string {
	if len(data) >= 2 && data[0] == 0xFF && data[1] == 0xFE {
		data = data[2:]
	} else if len(data) >= 2 && data[0] == 0xFE && data[1] == 0xFF {
		return decodeUTF16Bytes(data[2:], true)
	}
	return decodeUTF16Bytes(data, false)
}

func decodeUTF16Bytes(data []byte, bigEndian bool) string {
	n := len(data) / 2 // odd trailing byte dropped
	units := make([]uint16, n)
	for i := 0; i < n; i++ {
		hi, lo := data[2*i], data[2*i+1]
		if bigEndian {
			units[i] = uint16(hi)<<8 | uint16(lo)
		} else {
			units[i] = uint16(lo)<<8 | uint16(hi)
		}
	}
	return string(utf16.Decode(units))
}
