package decoders

import "testing"

func TestQuotedPrintableBodyBasics(t *testing.T) {
	cases := []struct{ in, want string }{
		{"hello world", "hello world"},
		{"caf=C3=A9", "caf\xC3\xA9"},
		{"soft=\r\nbreak", "softbreak"},
		{"soft=\nbreak", "softbreak"},
		{"literal=3D sign", "literal= sign"},
	}
	for _, c := range cases {
		got, ok := QuotedPrintableBody([]byte(c.in))
		if !ok {
			t.Fatalf("QuotedPrintableBody(%q) reported not ok", c.in)
		}
		if string(got) != c.want {
			t.Errorf("QuotedPrintableBody(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestQuotedPrintableBodyRejectsBadEscape(t *testing.T) {
	if _, ok := QuotedPrintableBody([]byte("bad=ZZ")); ok {
		t.Error("expected rejection of non-hex escape")
	}
}

func TestQuotedPrintableWordUnderscoreAndNoSoftBreak(t *testing.T) {
	got, ok := QuotedPrintableWord([]byte("Hello_World"))
	if !ok || string(got) != "Hello World" {
		t.Errorf("QuotedPrintableWord = %q, %v, want %q, true", got, ok, "Hello World")
	}
	if _, ok := QuotedPrintableWord([]byte("soft=\r\nbreak")); ok {
		t.Error("expected QuotedPrintableWord to forbid soft line breaks")
	}
}

func TestQuotedPrintableMIMEStopsAtBoundary(t *testing.T) {
	body := []byte("caf=C3=A9\r\n--bnd--\r\n")
	decoded, end, ok := QuotedPrintableMIME(body, []byte("bnd"))
	if !ok {
		t.Fatalf("QuotedPrintableMIME reported not ok")
	}
	if string(decoded) != "caf\xC3\xA9" {
		t.Errorf("decoded = %q", decoded)
	}
	if end != len("caf=C3=A9") {
		t.Errorf("bodyEnd = %d, want %d", end, len("caf=C3=A9"))
	}
}
