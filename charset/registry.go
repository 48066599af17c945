// Package charset implements the character-set registry of §4.3: a
// label-to-decoder lookup (case- and separator-insensitive, with the
// common IANA aliases for each supported set) backed by
// golang.org/x/text's canonical conversion tables, plus the two decoders
// x/text does not provide: a bespoke UTF-7 shift-state decoder and the
// BOM-aware UTF-16 variant selection §4.3 describes.
//
// The spec allows "any collision-free scheme" in place of a literal
// computed perfect hash (§9, Design Notes); this registry normalises a
// label once and looks it up in a precomputed map, which is the same
// externally observable behaviour with a much smaller, more obviously
// correct implementation.
package charset

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
)

// Decode transcodes data from the named character set to UTF-8. owned
// reports whether the returned string required allocation (false only for
// the UTF-8 passthrough case where data was already valid UTF-8).
// recognized reports whether label matched a registered decoder; an
// unrecognised label still returns a usable string (lossy UTF-8
// passthrough per §4.3) with recognized=false.
func Decode(label string, data []byte) (s string, owned bool, recognized bool) {
	key := normalizeLabel(label)

	switch key {
	case "UTF8", "":
		return utf8Passthrough(data)
	case "UTF16":
		return decodeUTF16(data, false), true, true
	case "UTF16BE":
		return decodeUTF16BE(data), true, true
	case "UTF16LE":
		return decodeUTF16LE(data), true, true
	case "UTF7":
		return decodeUTF7(data), true, true
	}

	if enc, ok := singleByteTable[key]; ok {
		out, ok2 := decodeWithEncoding(enc, data)
		if ok2 {
			return out, true, true
		}
	}
	if enc, ok := multiByteTable[key]; ok {
		out, ok2 := decodeWithEncoding(enc, data)
		if ok2 {
			return out, true, true
		}
	}

	out, _, _ := utf8Passthrough(data)
	return out, true, false
}

// normalizeLabel folds a charset label to a comparison key: uppercased,
// with every byte outside [A-Z0-9] removed. This makes "iso-8859-1",
// "ISO_8859-1", "iso8859_1" and "ISO8859-1" collide on the same key,
// matching the hyphen/underscore-insensitive matching §4.3 calls for.
func normalizeLabel(label string) string {
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - ('a' - 'A'))
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		}
	}
	return b.String()
}

func utf8Passthrough(data []byte) (string, bool, bool) {
	if utf8.Valid(data) {
		return string(data), false, true
	}
	return strings.ToValidUTF8(string(data), "�"), true, true
}

func decodeWithEncoding(enc encoding.Encoding, data []byte) (string, bool) {
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", false
	}
	return string(out), true
}

// singleByteTable maps a normalized label to its x/text charmap.Charmap.
// Each entry below lists its own common IANA aliases as additional map
// keys rather than as a separate alias table, so the registered name and
// its aliases are visibly grouped.
var singleByteTable = buildSingleByteTable()

func buildSingleByteTable() map[string]encoding.Encoding {
	t := map[string]encoding.Encoding{}
	reg := func(enc encoding.Encoding, names ...string) {
		for _, n := range names {
			t[normalizeLabel(n)] = enc
		}
	}

	reg(charmap.ISO8859_1, "ISO-8859-1", "LATIN1", "L1", "CP819", "ISO_8859-1", "ISO88591")
	reg(charmap.ISO8859_2, "ISO-8859-2", "LATIN2", "L2")
	reg(charmap.ISO8859_3, "ISO-8859-3", "LATIN3", "L3")
	reg(charmap.ISO8859_4, "ISO-8859-4", "LATIN4", "L4")
	reg(charmap.ISO8859_5, "ISO-8859-5", "CYRILLIC")
	reg(charmap.ISO8859_6, "ISO-8859-6", "ARABIC", "ECMA-114")
	reg(charmap.ISO8859_7, "ISO-8859-7", "GREEK", "GREEK8", "ECMA-118")
	reg(charmap.ISO8859_8, "ISO-8859-8", "HEBREW")
	reg(charmap.ISO8859_9, "ISO-8859-9", "LATIN5", "L5")
	reg(charmap.ISO8859_10, "ISO-8859-10", "LATIN6", "L6")
	reg(charmap.ISO8859_13, "ISO-8859-13", "LATIN7")
	reg(charmap.ISO8859_14, "ISO-8859-14", "LATIN8", "L8")
	reg(charmap.ISO8859_15, "ISO-8859-15", "LATIN9", "L9")
	reg(charmap.ISO8859_16, "ISO-8859-16", "LATIN10", "L10")

	reg(charmap.Windows1250, "WINDOWS-1250", "CP1250")
	reg(charmap.Windows1251, "WINDOWS-1251", "CP1251")
	reg(charmap.Windows1252, "WINDOWS-1252", "CP1252")
	reg(charmap.Windows1253, "WINDOWS-1253", "CP1253")
	reg(charmap.Windows1254, "WINDOWS-1254", "CP1254")
	reg(charmap.Windows1255, "WINDOWS-1255", "CP1255")
	reg(charmap.Windows1256, "WINDOWS-1256", "CP1256")
	reg(charmap.Windows1257, "WINDOWS-1257", "CP1257")
	reg(charmap.Windows1258, "WINDOWS-1258", "CP1258")

	reg(charmap.KOI8R, "KOI8-R", "KOI8R")
	reg(charmap.KOI8U, "KOI8-U", "KOI8U")
	reg(charmap.CodePage850, "IBM850", "CP850", "850")
	reg(charmap.Macintosh, "MACINTOSH", "MAC", "MACROMAN")
	reg(charmap.Windows874, "TIS-620", "TIS620", "WINDOWS-874")
	reg(charmap.ISO8859_1, "US-ASCII", "ASCII", "ANSI_X3.4-1968", "USASCII")

	return t
}

// multiByteTable holds the optional, feature-gated multi-byte decoders.
var multiByteTable = buildMultiByteTable()

func buildMultiByteTable() map[string]encoding.Encoding {
	t := map[string]encoding.Encoding{}
	reg := func(enc encoding.Encoding, names ...string) {
		for _, n := range names {
			t[normalizeLabel(n)] = enc
		}
	}
	reg(japanese.ShiftJIS, "SHIFT_JIS", "SHIFT-JIS", "SJIS")
	reg(japanese.EUCJP, "EUC-JP", "EUCJP")
	reg(japanese.ISO2022JP, "ISO-2022-JP", "ISO2022JP")
	reg(korean.EUCKR, "EUC-KR", "EUCKR", "KSC5601")
	reg(traditionalchinese.Big5, "BIG5", "BIG-5")
	reg(simplifiedchinese.GBK, "GBK")
	reg(simplifiedchinese.GB18030, "GB18030")
	return t
}
