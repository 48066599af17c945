package lmtp

import (
	"strings"
	"testing"

	"github.com/oakmail/mailcore/mailparser"
)

func TestNormalizeAddressLowercasesAndTrims(t *testing.T) {
	if got := normalizeAddress("  Alice@Example.COM "); got != "alice@example.com" {
		t.Errorf("normalizeAddress = %q", got)
	}
}

func TestNormalizeAddressUnwrapsDisplayName(t *testing.T) {
	if got := normalizeAddress("Alice <alice@example.com>"); got != "alice@example.com" {
		t.Errorf("normalizeAddress = %q", got)
	}
}

func TestRemoveAddressTagStripsPlusSuffix(t *testing.T) {
	if got := removeAddressTag("alice+newsletter@example.com"); got != "alice@example.com" {
		t.Errorf("removeAddressTag = %q", got)
	}
	if got := removeAddressTag("alice@example.com"); got != "alice@example.com" {
		t.Errorf("removeAddressTag (no tag) = %q", got)
	}
}

func buildTestMessage() []byte {
	parts := []string{
		"From: sender@example.com",
		"To: alice@example.com",
		"Subject: hello there",
		"Content-Type: text/plain",
		"",
		"this is the body text",
	}
	return []byte(strings.Join(parts, "\r\n"))
}

func TestMatchesFilterHeaderMatch(t *testing.T) {
	s := &Session{}
	parsed := mailparser.Parse(buildTestMessage(), mailparser.DefaultConfig())

	f := Filter{Query: FilterQuery{Headers: map[string]string{"subject": "hello"}}}
	if !s.matchesFilter(f, parsed, buildTestMessage()) {
		t.Error("expected header filter to match")
	}

	f = Filter{Query: FilterQuery{Headers: map[string]string{"subject": "goodbye"}}}
	if s.matchesFilter(f, parsed, buildTestMessage()) {
		t.Error("did not expect header filter to match")
	}
}

func TestMatchesFilterTextMatch(t *testing.T) {
	s := &Session{}
	raw := buildTestMessage()
	parsed := mailparser.Parse(raw, mailparser.DefaultConfig())

	f := Filter{Query: FilterQuery{Text: "body text"}}
	if !s.matchesFilter(f, parsed, raw) {
		t.Error("expected text filter to match")
	}
}

func TestMatchesFilterSizeMatch(t *testing.T) {
	s := &Session{}
	raw := buildTestMessage()
	parsed := mailparser.Parse(raw, mailparser.DefaultConfig())

	minSize := int64(len(raw) + 100)
	f := Filter{Query: FilterQuery{Size: &minSize}}
	if s.matchesFilter(f, parsed, raw) {
		t.Error("did not expect size filter to match when message is smaller than threshold")
	}
}
