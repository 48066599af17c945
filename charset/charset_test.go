package charset

import "testing"

func TestNormalizeLabelFoldsSeparators(t *testing.T) {
	cases := [][2]string{
		{"iso-8859-1", "ISO-8859-1"},
		{"ISO_8859-1", "ISO-8859-1"},
		{"iso88591", "ISO-8859-1"},
	}
	for _, c := range cases {
		if normalizeLabel(c[0]) != normalizeLabel(c[1]) {
			t.Errorf("normalizeLabel(%q) != normalizeLabel(%q)", c[0], c[1])
		}
	}
}

func TestDecodeUTF8Passthrough(t *testing.T) {
	s, owned, recognized := Decode("utf-8", []byte("héllo"))
	if owned {
		t.Error("expected valid UTF-8 input to be borrowed, not owned")
	}
	if !recognized {
		t.Error("expected utf-8 to be recognized")
	}
	if s != "héllo" {
		t.Errorf("got %q", s)
	}
}

func TestDecodeUnknownLabelFallsBackToUTF8Lossy(t *testing.T) {
	s, _, recognized := Decode("x-totally-made-up", []byte("plain ascii"))
	if recognized {
		t.Error("expected an unknown label to report recognized=false")
	}
	if s != "plain ascii" {
		t.Errorf("got %q", s)
	}
}

func TestDecodeISO8859_1(t *testing.T) {
	// 0xE9 is LATIN SMALL LETTER E WITH ACUTE in ISO-8859-1.
	s, owned, recognized := Decode("ISO-8859-1", []byte{0x63, 0x61, 0x66, 0xE9})
	if !recognized || !owned {
		t.Fatalf("recognized=%v owned=%v", recognized, owned)
	}
	if s != "café" {
		t.Errorf("got %q", s)
	}
}

func TestDecodeUTF16LEWithBOM(t *testing.T) {
	// BOM (FF FE) + "Hi" in UTF-16LE.
	data := []byte{0xFF, 0xFE, 'H', 0x00, 'i', 0x00}
	s, _, _ := Decode("utf-16", data)
	if s != "Hi" {
		t.Errorf("got %q", s)
	}
}

// TestDecodeUTF16LEQuotedPrintableHelp exercises §8 scenario S4's expected
// prefix once the QP layer (exercised in package decoders) has already
// produced UTF-16LE bytes: the first code unit of that text, without a BOM.
func TestDecodeUTF16LEQuotedPrintableHelp(t *testing.T) {
	// U+210C (BLACK-LETTER CAPITAL H), little-endian, no BOM, decoded
	// straight through decodeUTF16LE.
	data := []byte{0x0C, 0x21}
	s := decodeUTF16LE(data)
	if s != "ℌ" {
		t.Errorf("got %q", s)
	}
}

func TestDecodeUTF7(t *testing.T) {
	// "A+ImIDkQ-." is a canonical UTF-7 example encoding "A≢Α.".
	s, _, _ := Decode("utf-7", []byte("A+ImIDkQ-."))
	if s != "A≢Α." {
		t.Errorf("got %q", s)
	}
}

func TestDecodeUTF7LiteralPlus(t *testing.T) {
	s, _, _ := Decode("utf-7", []byte("1+-1"))
	if s != "1+1" {
		t.Errorf("got %q", s)
	}
}
