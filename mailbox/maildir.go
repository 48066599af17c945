// Package mailbox implements the two on-disk mailbox collaborators named
// in §4.9/§6: a Maildir folder+message iterator backed by a SQLite index
// of already-seen filenames, and an Mbox line-oriented splitter with QMail
// >From unquoting.
package mailbox

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Flag is one of the six Maildir flag letters carried in the ":2,<flags>"
// suffix.
type Flag byte

const (
	FlagPassed  Flag = 'P'
	FlagReplied Flag = 'R'
	FlagSeen    Flag = 'S'
	FlagTrashed Flag = 'T'
	FlagDraft   Flag = 'D'
	FlagFlagged Flag = 'F'
)

// Message is one Maildir message file: its decoded flags, its mtime-derived
// internal date, and its raw contents.
type Message struct {
	Path         string
	Flags        []Flag
	InternalDate time.Time
	Contents     []byte
}

// HasFlag reports whether m carries the given flag.
func (m *Message) HasFlag(f Flag) bool {
	for _, g := range m.Flags {
		if g == f {
			return true
		}
	}
	return false
}

// Folder is one Maildir folder (INBOX or a sub-folder) with its messages.
type Folder struct {
	// Name is "" for INBOX, or the folder's display name (e.g. "My Folder")
	// for a sub-folder, regardless of whether it was named via Maildir++
	// dot-prefix or a plain nested directory.
	Name     string
	Messages []*Message
}

// subFolderPrefix is "." for Maildir++ layout (Dovecot's default), or "" to
// treat every nested directory as a plain sub-folder.
type subFolderPrefix = string

const (
	MaildirPlusPrefix subFolderPrefix = "."
	NestedLayout      subFolderPrefix = ""
)

// WalkFolders walks root as a Maildir tree: root itself is INBOX, and any
// child directory carrying cur/new/tmp is a sub-folder. prefix selects
// Maildir++ naming (dot-prefixed folder directories under root) versus a
// plain nested-directory layout.
func WalkFolders(root string, prefix subFolderPrefix) ([]*Folder, error) {
	var folders []*Folder

	if msgs, err := readMessageDir(root); err == nil {
		folders = append(folders, &Folder{Name: "", Messages: msgs})
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return folders, nil
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name := e.Name()
		if name == "cur" || name == "new" || name == "tmp" {
			continue
		}
		folderName := name
		if prefix != "" {
			trimmed, ok := strings.CutPrefix(name, prefix)
			if !ok {
				continue
			}
			folderName = trimmed
		}

		path := filepath.Join(root, name)
		msgs, err := readMessageDir(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		folders = append(folders, &Folder{Name: folderName, Messages: msgs})
	}

	return folders, nil
}

// readMessageDir reads every regular, non-hidden file out of path's cur/
// and new/ subdirectories as a Message.
func readMessageDir(path string) ([]*Message, error) {
	curPath := filepath.Join(path, "cur")
	newPath := filepath.Join(path, "new")
	if _, err := os.Stat(curPath); err != nil {
		return nil, err
	}
	if _, err := os.Stat(newPath); err != nil {
		return nil, err
	}

	var msgs []*Message
	for _, dir := range []string{curPath, newPath} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			msg, ok, err := readMessageFile(dir, e)
			if err != nil {
				return nil, err
			}
			if ok {
				msgs = append(msgs, msg)
			}
		}
	}
	return msgs, nil
}

func readMessageFile(dir string, e fs.DirEntry) (*Message, bool, error) {
	if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
		return nil, false, nil
	}
	full := filepath.Join(dir, e.Name())
	info, err := e.Info()
	if err != nil {
		return nil, false, err
	}
	contents, err := os.ReadFile(full)
	if err != nil {
		return nil, false, err
	}
	return &Message{
		Path:         full,
		Flags:        parseFlags(e.Name()),
		InternalDate: info.ModTime(),
		Contents:     contents,
	}, true, nil
}

// parseFlags decodes the ":2,<flags>" suffix of a Maildir filename. Flag
// letters must be in ASCII order per the Maildir spec, but this scanner
// accepts any order; it stops at the first non-alphanumeric character and
// silently ignores unrecognised letters.
func parseFlags(name string) []Flag {
	idx := strings.LastIndex(name, "2,")
	if idx < 0 || idx == 0 || name[idx-1] != ':' {
		return nil
	}
	var flags []Flag
	for i := idx + 2; i < len(name); i++ {
		c := name[i]
		switch Flag(c) {
		case FlagPassed, FlagReplied, FlagSeen, FlagTrashed, FlagDraft, FlagFlagged:
			flags = append(flags, Flag(c))
		default:
			if !isAlphaNumeric(c) {
				return flags
			}
		}
	}
	return flags
}

func isAlphaNumeric(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
