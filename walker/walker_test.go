package walker

import (
	"strings"
	"testing"

	"github.com/oakmail/mailcore/message"
)

func buildMessage(parts ...string) []byte {
	return []byte(strings.Join(parts, "\r\n"))
}

func TestWalkSinglePartTextPlain(t *testing.T) {
	raw := buildMessage(
		"Subject: hi",
		"Content-Type: text/plain; charset=us-ascii",
		"",
		"hello world",
	)
	m := Walk(raw, nil)
	root := m.Root()
	if root.Body.Kind != message.BodyText {
		t.Fatalf("got kind %v", root.Body.Kind)
	}
	if root.Body.Text != "hello world" {
		t.Errorf("got %q", root.Body.Text)
	}
}

func TestWalkMultipartMixed(t *testing.T) {
	raw := buildMessage(
		"Content-Type: multipart/mixed; boundary=XYZ",
		"",
		"preamble ignored",
		"--XYZ",
		"Content-Type: text/plain",
		"",
		"part one",
		"--XYZ",
		"Content-Type: text/html",
		"",
		"<p>part two</p>",
		"--XYZ--",
		"epilogue ignored",
	)
	m := Walk(raw, nil)
	root := m.Root()
	if root.Body.Kind != message.BodyMultipart {
		t.Fatalf("got kind %v", root.Body.Kind)
	}
	if len(root.Body.Children) != 2 {
		t.Fatalf("expected 2 children, got %d", len(root.Body.Children))
	}
	c0 := m.Part(root.Body.Children[0])
	c1 := m.Part(root.Body.Children[1])
	if c0.Body.Kind != message.BodyText || c0.Body.Text != "part one" {
		t.Errorf("child0 = %+v", c0.Body)
	}
	if c1.Body.Kind != message.BodyHTML || c1.Body.Text != "<p>part two</p>" {
		t.Errorf("child1 = %+v", c1.Body)
	}
}

// TestWalkNestedMessageRFC822 exercises §8 scenario S5: a message/rfc822
// part recurses into a fully independent nested Message.
func TestWalkNestedMessageRFC822(t *testing.T) {
	raw := buildMessage(
		"Content-Type: message/rfc822",
		"",
		"Subject: inner",
		"Content-Type: text/plain",
		"",
		"inner body",
	)
	m := Walk(raw, nil)
	root := m.Root()
	if root.Body.Kind != message.BodyMessage {
		t.Fatalf("got kind %v", root.Body.Kind)
	}
	sub := root.Body.Sub
	if sub == nil {
		t.Fatal("expected nested message")
	}
	if sub.Root().Body.Text != "inner body" {
		t.Errorf("got %q", sub.Root().Body.Text)
	}
	if subj, ok := sub.Root().Header("Subject"); !ok || subj.Value.Text != "inner" {
		t.Errorf("subject = %+v ok=%v", subj, ok)
	}
}

func TestWalkMissingClosingBoundaryTerminatesAtEOF(t *testing.T) {
	raw := buildMessage(
		"Content-Type: multipart/mixed; boundary=XYZ",
		"",
		"--XYZ",
		"Content-Type: text/plain",
		"",
		"only part, no closing boundary",
	)
	m := Walk(raw, nil)
	root := m.Root()
	if len(root.Body.Children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(root.Body.Children))
	}
	c0 := m.Part(root.Body.Children[0])
	if c0.Body.Text != "only part, no closing boundary" {
		t.Errorf("got %q", c0.Body.Text)
	}
}

func TestWalkBase64Body(t *testing.T) {
	raw := buildMessage(
		"Content-Type: text/plain; charset=us-ascii",
		"Content-Transfer-Encoding: base64",
		"",
		"aGVsbG8=",
	)
	m := Walk(raw, nil)
	if m.Root().Body.Text != "hello" {
		t.Errorf("got %q", m.Root().Body.Text)
	}
}
