package mailbox

import (
	"path/filepath"
	"testing"
	"time"
)

func TestIndexSyncReturnsOnlyFreshMessages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	ix, err := OpenIndex(path)
	if err != nil {
		t.Fatalf("OpenIndex: %v", err)
	}
	defer ix.Close()

	msgs := []*Message{
		{Path: "cur/1.host:2,S", Flags: []Flag{FlagSeen}, InternalDate: time.Unix(1000, 0)},
		{Path: "cur/2.host:2,", InternalDate: time.Unix(1001, 0)},
	}

	fresh, err := ix.Sync("INBOX", msgs)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(fresh) != 2 {
		t.Fatalf("expected 2 fresh messages on first sync, got %d", len(fresh))
	}

	fresh, err = ix.Sync("INBOX", msgs)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(fresh) != 0 {
		t.Fatalf("expected 0 fresh messages on repeat sync, got %d", len(fresh))
	}

	entries, err := ix.Entries("INBOX")
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 indexed entries, got %d", len(entries))
	}
	if entries[0].Flags != "S" {
		t.Errorf("entries[0].Flags = %q", entries[0].Flags)
	}
}

func TestIndexSyncAcrossFolders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	ix, err := OpenIndex(path)
	if err != nil {
		t.Fatalf("OpenIndex: %v", err)
	}
	defer ix.Close()

	msg := &Message{Path: "cur/1.host:2,", InternalDate: time.Unix(1000, 0)}
	if _, err := ix.Sync("INBOX", []*Message{msg}); err != nil {
		t.Fatalf("Sync INBOX: %v", err)
	}
	if _, err := ix.Sync("Archive", []*Message{msg}); err != nil {
		t.Fatalf("Sync Archive: %v", err)
	}

	known, err := ix.KnownFilenames("Archive")
	if err != nil {
		t.Fatalf("KnownFilenames: %v", err)
	}
	if !known[msg.Path] {
		t.Errorf("expected %q to be known in Archive's own index", msg.Path)
	}
}
