package mailbox

import (
	"os"
	"path/filepath"
	"testing"
)

func writeMaildirMessage(t *testing.T, dir, name, contents string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
}

func setupMaildirTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	for _, d := range []string{"cur", "new", "tmp"} {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	writeMaildirMessage(t, filepath.Join(root, "cur"), "1000.host:2,S", "b\n")
	writeMaildirMessage(t, filepath.Join(root, "cur"), "1001.host:2,ST", "a\n")

	subFolder := filepath.Join(root, ".My Folder")
	for _, d := range []string{"cur", "new", "tmp"} {
		if err := os.MkdirAll(filepath.Join(subFolder, d), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	writeMaildirMessage(t, filepath.Join(subFolder, "new"), "1002.host", "d\n")
	writeMaildirMessage(t, filepath.Join(subFolder, "cur"), "1003.host:2,TDR", "c\n")

	return root
}

func TestWalkFoldersMaildirPlusPlus(t *testing.T) {
	root := setupMaildirTree(t)
	folders, err := WalkFolders(root, MaildirPlusPrefix)
	if err != nil {
		t.Fatalf("WalkFolders: %v", err)
	}
	if len(folders) != 2 {
		t.Fatalf("expected INBOX + 1 sub-folder, got %d", len(folders))
	}

	var inbox, sub *Folder
	for _, f := range folders {
		if f.Name == "" {
			inbox = f
		} else {
			sub = f
		}
	}
	if inbox == nil || len(inbox.Messages) != 2 {
		t.Fatalf("expected 2 INBOX messages, got %+v", inbox)
	}
	if sub == nil || sub.Name != "My Folder" || len(sub.Messages) != 2 {
		t.Fatalf("expected sub-folder 'My Folder' with 2 messages, got %+v", sub)
	}
}

func TestParseFlagsDecodesLetters(t *testing.T) {
	flags := parseFlags("1001.host:2,ST")
	if len(flags) != 2 || flags[0] != FlagSeen || flags[1] != FlagTrashed {
		t.Errorf("flags = %v", flags)
	}
}

func TestParseFlagsNoSuffix(t *testing.T) {
	if flags := parseFlags("1000.host"); flags != nil {
		t.Errorf("expected no flags, got %v", flags)
	}
}

func TestMessageHasFlag(t *testing.T) {
	m := &Message{Flags: []Flag{FlagSeen, FlagDraft}}
	if !m.HasFlag(FlagSeen) || m.HasFlag(FlagFlagged) {
		t.Errorf("HasFlag mismatch: %v", m.Flags)
	}
}
