package mailbox

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// IndexEntry is one row of the Maildir UID/flag index: enough to tell a
// poll "this filename is already known, skip re-reading it" without
// re-walking cur/new.
type IndexEntry struct {
	UID          int64
	Filename     string
	Flags        string
	InternalDate time.Time
}

// Index is a SQLite-backed cache of Maildir contents, one row per message
// keyed by folder and filename (one Index can hold several folders),
// letting repeated polls be incremental instead of re-scanning and
// re-parsing every message on disk each time.
type Index struct {
	db         *sql.DB
	folderName string
}

// OpenIndex opens (creating if necessary) the SQLite index database at
// path and ensures its schema exists.
func OpenIndex(path string) (*Index, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if err := createIndexSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Index{db: db}, nil
}

func createIndexSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS maildir_entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		folder TEXT NOT NULL,
		filename TEXT NOT NULL,
		flags TEXT,
		internal_date TIMESTAMP NOT NULL,
		UNIQUE(folder, filename)
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create maildir_entries table: %v", err)
	}
	_, err := db.Exec("CREATE INDEX IF NOT EXISTS idx_maildir_entries_folder ON maildir_entries(folder)")
	return err
}

// Close releases the underlying database handle.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// KnownFilenames returns the set of filenames already indexed for folder.
func (ix *Index) KnownFilenames(folder string) (map[string]bool, error) {
	rows, err := ix.db.Query("SELECT filename FROM maildir_entries WHERE folder = ?", folder)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	known := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		known[name] = true
	}
	return known, rows.Err()
}

// Record inserts or updates the index entry for one message file, returning
// its assigned UID.
func (ix *Index) Record(folder string, msg *Message) (int64, error) {
	flags := flagsToString(msg.Flags)
	_, err := ix.db.Exec(`
		INSERT INTO maildir_entries (folder, filename, flags, internal_date)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(folder, filename) DO UPDATE SET flags = excluded.flags
	`, folder, msg.Path, flags, msg.InternalDate)
	if err != nil {
		return 0, err
	}

	var uid int64
	err = ix.db.QueryRow(
		"SELECT id FROM maildir_entries WHERE folder = ? AND filename = ?", folder, msg.Path,
	).Scan(&uid)
	return uid, err
}

// Sync indexes every message in msgs not already known for folder and
// returns only the newly indexed ones, so a caller can act just on the
// incremental delta since the last poll.
func (ix *Index) Sync(folder string, msgs []*Message) ([]*Message, error) {
	known, err := ix.KnownFilenames(folder)
	if err != nil {
		return nil, err
	}

	var fresh []*Message
	for _, m := range msgs {
		if known[m.Path] {
			continue
		}
		if _, err := ix.Record(folder, m); err != nil {
			return nil, err
		}
		fresh = append(fresh, m)
	}
	return fresh, nil
}

// Entries returns every indexed entry for folder, ordered by UID.
func (ix *Index) Entries(folder string) ([]IndexEntry, error) {
	rows, err := ix.db.Query(`
		SELECT id, filename, flags, internal_date
		FROM maildir_entries
		WHERE folder = ?
		ORDER BY id
	`, folder)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []IndexEntry
	for rows.Next() {
		var e IndexEntry
		var flags sql.NullString
		if err := rows.Scan(&e.UID, &e.Filename, &flags, &e.InternalDate); err != nil {
			return nil, err
		}
		e.Flags = flags.String
		out = append(out, e)
	}
	return out, rows.Err()
}

func flagsToString(flags []Flag) string {
	b := make([]byte, len(flags))
	for i, f := range flags {
		b[i] = byte(f)
	}
	return string(b)
}
