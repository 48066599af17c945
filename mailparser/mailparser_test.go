package mailparser

import (
	"strings"
	"testing"
)

func buildMessage(parts ...string) []byte {
	return []byte(strings.Join(parts, "\r\n"))
}

func TestParseBasicMessage(t *testing.T) {
	raw := buildMessage(
		"From: Alice <alice@example.com>",
		"To: Bob <bob@example.com>",
		"Subject: Hello there",
		"Date: Mon, 1 Jan 2024 10:00:00 +0000",
		"Message-ID: <abc@example.com>",
		"Content-Type: text/plain",
		"",
		"body text",
	)
	m := Parse(raw, nil)

	if Subject(m) != "Hello there" {
		t.Errorf("subject = %q", Subject(m))
	}
	from := From(m)
	if from == nil || len(from.List) != 1 || from.List[0].Address != "alice@example.com" {
		t.Fatalf("from = %+v", from)
	}
	to := To(m)
	if to == nil || len(to.List) != 1 || to.List[0].Address != "bob@example.com" {
		t.Fatalf("to = %+v", to)
	}
	ids := MessageID(m)
	if len(ids) != 1 || ids[0] != "abc@example.com" {
		t.Errorf("message-id = %v", ids)
	}
	date := Date(m)
	if date == nil || !date.Valid || date.Year != 2024 {
		t.Fatalf("date = %+v", date)
	}
	if len(m.TextBody) != 1 {
		t.Fatalf("text_body = %v", m.TextBody)
	}
	text, ok := BodyText(m, 0)
	if !ok || text != "body text" {
		t.Errorf("body_text = %q ok=%v", text, ok)
	}
}

func TestParseMinimalHeadersDowngradesOthers(t *testing.T) {
	raw := buildMessage(
		"From: Alice <alice@example.com>",
		"Subject: Hi",
		"Cc: Carol <carol@example.com>",
		"X-Custom: something",
		"",
		"body",
	)
	cfg := DefaultConfig()
	cfg.WithMinimalHeaders = true
	m := Parse(raw, cfg)

	if Subject(m) != "Hi" {
		t.Errorf("subject = %q", Subject(m))
	}
	from := From(m)
	if from == nil || len(from.List) != 1 {
		t.Fatalf("from still expected to parse under minimal headers, got %+v", from)
	}
	if cc := Cc(m); cc != nil {
		t.Errorf("cc expected to stay raw under minimal headers, got %+v", cc)
	}
}

func TestParseWithoutAddressHeadersLeavesFromRaw(t *testing.T) {
	raw := buildMessage("From: Alice <alice@example.com>", "", "body")
	cfg := DefaultConfig()
	cfg.WithAddressHeaders = false
	m := Parse(raw, cfg)

	if From(m) != nil {
		t.Errorf("expected From to not be structurally parsed, got %+v", From(m))
	}
	h, ok := Header(m, "From")
	if !ok || h.Value.Text == "" {
		t.Errorf("expected raw text value for From, got %+v", h)
	}
}

func TestIntoOwnedCopiesBuffer(t *testing.T) {
	raw := buildMessage("Subject: copy me", "", "hello")
	m := Parse(raw, nil)
	owned := IntoOwned(m)

	if &owned.Raw[0] == &m.Raw[0] {
		t.Errorf("expected IntoOwned to allocate a fresh Raw buffer")
	}
	if Subject(owned) != "copy me" {
		t.Errorf("subject = %q", Subject(owned))
	}
}

func TestAttachmentAccessor(t *testing.T) {
	raw := buildMessage(
		"Content-Type: multipart/mixed; boundary=B",
		"",
		"--B",
		"Content-Type: text/plain",
		"",
		"body",
		"--B",
		"Content-Type: application/octet-stream",
		"Content-Transfer-Encoding: base64",
		"Content-Disposition: attachment; filename=a.bin",
		"",
		"aGVsbG8=",
		"--B--",
	)
	m := Parse(raw, nil)
	att, ok := Attachment(m, 0)
	if !ok || att == nil {
		t.Fatalf("expected an attachment")
	}
	if string(att.Body.Bytes) != "hello" {
		t.Errorf("attachment bytes = %q", att.Body.Bytes)
	}
}
