package header

import (
	"testing"

	"github.com/oakmail/mailcore/message"
	"github.com/oakmail/mailcore/stream"
)

func TestParseBasicHeaders(t *testing.T) {
	raw := "From: alice@example.com\r\nSubject: Hello\r\nTo: bob@example.com\r\n\r\nbody here"
	st := stream.New([]byte(raw))
	hs := Parse(st, nil)
	if len(hs) != 3 {
		t.Fatalf("expected 3 headers, got %d", len(hs))
	}
	if hs[0].Name != message.HeaderFrom {
		t.Errorf("got name %v", hs[0].Name)
	}
	if hs[1].Name != message.HeaderSubject || hs[1].Value.Text != "Hello" {
		t.Errorf("got %+v", hs[1])
	}
	rest := st.Remaining()
	if string(rest) != "body here" {
		t.Errorf("cursor left at %q", rest)
	}
}

func TestParseFoldedHeader(t *testing.T) {
	raw := "Subject: Hello\r\n World\r\n\r\n"
	st := stream.New([]byte(raw))
	hs := Parse(st, nil)
	if len(hs) != 1 {
		t.Fatalf("got %d headers", len(hs))
	}
	if hs[0].Value.Text != "Hello World" {
		t.Errorf("got %q", hs[0].Value.Text)
	}
}

func TestParseUnknownHeaderDefaultsUnstructured(t *testing.T) {
	raw := "X-Custom: some value\r\n\r\n"
	st := stream.New([]byte(raw))
	hs := Parse(st, DefaultConfig())
	if hs[0].Name != message.HeaderOther {
		t.Errorf("got name %v", hs[0].Name)
	}
	if hs[0].RawName != "X-Custom" {
		t.Errorf("got raw name %q", hs[0].RawName)
	}
	if hs[0].Value.Text != "some value" {
		t.Errorf("got %q", hs[0].Value.Text)
	}
}

func TestParseOverrideConfig(t *testing.T) {
	raw := "X-Ids: <a@b> <c@d>\r\n\r\n"
	st := stream.New([]byte(raw))
	cfg := DefaultConfig()
	cfg.Overrides = map[string]ParserKind{"x-ids": ParseMessageIDs}
	hs := Parse(st, cfg)
	if len(hs[0].Value.TextList) != 2 {
		t.Errorf("got %+v", hs[0].Value)
	}
}

func TestParseNoHeaders(t *testing.T) {
	raw := "\r\nbody"
	st := stream.New([]byte(raw))
	hs := Parse(st, nil)
	if len(hs) != 0 {
		t.Fatalf("expected 0 headers, got %d", len(hs))
	}
	if string(st.Remaining()) != "body" {
		t.Errorf("cursor left at %q", st.Remaining())
	}
}

func TestParseMissingBlankLineAtEOF(t *testing.T) {
	raw := "Subject: no trailing blank line"
	st := stream.New([]byte(raw))
	hs := Parse(st, nil)
	if len(hs) != 1 || hs[0].Value.Text != "no trailing blank line" {
		t.Errorf("got %+v", hs)
	}
	if !st.AtEnd() {
		t.Error("expected cursor at end of input")
	}
}
