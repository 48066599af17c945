package body

import (
	"strings"
	"testing"

	"github.com/oakmail/mailcore/walker"
)

func buildMessage(parts ...string) []byte {
	return []byte(strings.Join(parts, "\r\n"))
}

func TestClassifyAlternativePrefersLastChild(t *testing.T) {
	raw := buildMessage(
		"Content-Type: multipart/alternative; boundary=B",
		"",
		"--B",
		"Content-Type: text/plain",
		"",
		"older plain version",
		"--B",
		"Content-Type: text/plain",
		"",
		"plain version",
		"--B",
		"Content-Type: text/html",
		"",
		"<p>html version</p>",
		"--B--",
	)
	m := walker.Walk(raw, nil)
	Classify(m)
	if len(m.TextBody) != 1 || len(m.HTMLBody) != 1 {
		t.Fatalf("text=%v html=%v", m.TextBody, m.HTMLBody)
	}
	text, _ := TextAt(m, 0)
	html, _ := HTMLAt(m, 0)
	if text != "plain version" {
		t.Errorf("text = %q", text)
	}
	if html != "<p>html version</p>" {
		t.Errorf("html = %q", html)
	}
}

func TestClassifyAlternativeHTMLOnlyCrossConverts(t *testing.T) {
	raw := buildMessage(
		"Content-Type: multipart/alternative; boundary=B",
		"",
		"--B",
		"Content-Type: text/html",
		"",
		"<p>only html</p>",
		"--B--",
	)
	m := walker.Walk(raw, nil)
	m.HTMLToText = func(h string) string { return "converted:" + h }
	Classify(m)
	if len(m.TextBody) != 1 {
		t.Fatalf("expected 1 text_body entry, got %v", m.TextBody)
	}
	text, ok := TextAt(m, 0)
	if !ok || text != "converted:<p>only html</p>" {
		t.Errorf("got %q ok=%v", text, ok)
	}
}

func TestClassifyMixedEachChildIndependent(t *testing.T) {
	raw := buildMessage(
		"Content-Type: multipart/mixed; boundary=B",
		"",
		"--B",
		"Content-Type: text/plain",
		"",
		"first",
		"--B",
		"Content-Type: text/plain",
		"",
		"second",
		"--B",
		"Content-Type: application/octet-stream",
		"Content-Transfer-Encoding: base64",
		"",
		"aGVsbG8=",
		"--B--",
	)
	m := walker.Walk(raw, nil)
	Classify(m)
	if len(m.TextBody) != 2 {
		t.Fatalf("expected 2 text_body entries, got %v", m.TextBody)
	}
	if len(m.Attachments) != 1 {
		t.Fatalf("expected 1 attachment, got %v", m.Attachments)
	}
}

func TestClassifyAttachmentDisposition(t *testing.T) {
	raw := buildMessage(
		"Content-Type: multipart/mixed; boundary=B",
		"",
		"--B",
		"Content-Type: text/plain",
		"",
		"body text",
		"--B",
		"Content-Type: text/plain",
		"Content-Disposition: attachment; filename=notes.txt",
		"",
		"attached text",
		"--B--",
	)
	m := walker.Walk(raw, nil)
	Classify(m)
	if len(m.TextBody) != 1 {
		t.Fatalf("expected 1 text_body entry, got %v", m.TextBody)
	}
	if len(m.Attachments) != 1 {
		t.Fatalf("expected 1 attachment, got %v", m.Attachments)
	}
}

func TestClassifyRelatedPrimaryPlusInlineAttachments(t *testing.T) {
	raw := buildMessage(
		"Content-Type: multipart/related; boundary=B",
		"",
		"--B",
		"Content-Type: text/html",
		"",
		"<img src=cid:1>",
		"--B",
		"Content-Type: image/png",
		"Content-Transfer-Encoding: base64",
		"Content-ID: <1>",
		"",
		"aGVsbG8=",
		"--B--",
	)
	m := walker.Walk(raw, nil)
	Classify(m)
	if len(m.HTMLBody) != 1 {
		t.Fatalf("expected 1 html_body entry, got %v", m.HTMLBody)
	}
	if len(m.Attachments) != 1 {
		t.Fatalf("expected 1 attachment, got %v", m.Attachments)
	}
}
