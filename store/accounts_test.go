package store

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestMailboxName(t *testing.T) {
	cases := map[string]string{
		"INBOX":      "INBOX",
		"INBOX/Work": "Work",
		"a/b/c":      "c",
	}
	for path, want := range cases {
		if got := mailboxName(path); got != want {
			t.Errorf("mailboxName(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestHashPasswordRoundTrip(t *testing.T) {
	hashed, err := hashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("hashPassword: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte("correct horse battery staple")); err != nil {
		t.Errorf("hashed password did not verify: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte("wrong password")); err == nil {
		t.Error("expected mismatch for wrong password")
	}
}

func TestDefaultMailboxSetCoversStandardFolders(t *testing.T) {
	want := map[string]string{
		"INBOX":  "\\Inbox",
		"Sent":   "\\Sent",
		"Drafts": "\\Drafts",
		"Trash":  "\\Trash",
		"Junk":   "\\Junk",
	}
	if len(defaultMailboxSet) != len(want) {
		t.Fatalf("expected %d default mailboxes, got %d", len(want), len(defaultMailboxSet))
	}
	for _, mb := range defaultMailboxSet {
		if want[mb.Path] != mb.SpecialUse {
			t.Errorf("mailbox %q: SpecialUse = %q, want %q", mb.Path, mb.SpecialUse, want[mb.Path])
		}
	}
}
