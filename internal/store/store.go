package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"codeberg.org/snonux/ankiforge/internal/entry"
)

const schemaVersion = "1"

// MediaField names an entry column that holds a media filename.
type MediaField string

const (
	FieldAudioWord MediaField = "audio_word"
	FieldImage     MediaField = "image"
	FieldAudioSent MediaField = "audio_sentence"
)

// column returns the SQL column for a media field, guarding against
// anything that is not one of the three known columns.
func (f MediaField) column() (string, error) {
	switch f {
	case FieldAudioWord, FieldImage, FieldAudioSent:
		return string(f), nil
	}
	return "", fmt.Errorf("unknown media field: %s", string(f))
}

// Store is the SQLite-backed vocabulary table.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed initializes) the vocabulary database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) init() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS entries (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			word TEXT NOT NULL,
			definition TEXT NOT NULL DEFAULT '',
			example TEXT NOT NULL DEFAULT '',
			example_plain TEXT NOT NULL DEFAULT '',
			context TEXT NOT NULL DEFAULT '',
			part_of_speech TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT 'pending',
			tags TEXT NOT NULL DEFAULT '',
			audio_word TEXT NOT NULL DEFAULT '',
			image TEXT NOT NULL DEFAULT '',
			audio_sentence TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS ix_entries_word ON entries (word COLLATE NOCASE)`,
		`CREATE INDEX IF NOT EXISTS ix_entries_status ON entries (status)`,
		`CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}

	_, err := s.db.Exec(
		`INSERT INTO metadata (key, value) VALUES ('schema_version', ?)
		 ON CONFLICT(key) DO NOTHING`, schemaVersion)
	if err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}

	return nil
}

// Append inserts a new entry row. Entries are never updated through this
// path; a resubmitted word becomes either a rejection or a new polysemy
// row upstream.
func (s *Store) Append(e *entry.Entry) error {
	if e.Status == "" {
		e.Status = entry.StatusPending
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	_, err := s.db.Exec(
		`INSERT INTO entries (id, created_at, word, definition, example,
			example_plain, context, part_of_speech, status, tags,
			audio_word, image, audio_sentence)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.CreatedAt.Format(time.RFC3339), e.Word, e.Definition,
		e.Example, e.ExamplePlain, e.Context, e.PartOfSpeech, e.Status,
		e.Tags, e.AudioWord, e.Image, e.AudioSent)
	if err != nil {
		return fmt.Errorf("failed to append entry: %w", err)
	}

	return nil
}

// All returns every entry in insertion order.
func (s *Store) All() ([]entry.Entry, error) {
	return s.query(`SELECT ` + entryColumns + ` FROM entries ORDER BY rowid`)
}

// FindByWord returns all entries whose word matches case-insensitively.
// More than one result means earlier polysemy approvals.
func (s *Store) FindByWord(word string) ([]entry.Entry, error) {
	return s.query(
		`SELECT `+entryColumns+` FROM entries WHERE word = ? COLLATE NOCASE ORDER BY rowid`,
		word)
}

// Pending returns entries that have not been exported yet.
func (s *Store) Pending() ([]entry.Entry, error) {
	return s.query(
		`SELECT `+entryColumns+` FROM entries WHERE status = ? ORDER BY rowid`,
		entry.StatusPending)
}

// UpdateMedia sets a single media filename cell for an entry. Used by the
// backfill pass; already-populated fields are left alone by callers.
func (s *Store) UpdateMedia(id string, field MediaField, filename string) error {
	col, err := field.column()
	if err != nil {
		return err
	}

	res, err := s.db.Exec(
		fmt.Sprintf(`UPDATE entries SET %s = ? WHERE id = ?`, col),
		filename, id)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", col, err)
	}

	return requireRow(res, id)
}

// UpdateContent rewrites the generated text fields of an entry. Only the
// rescue pass uses this, for rows that lost their definition.
func (s *Store) UpdateContent(id, definition, example, examplePlain, partOfSpeech, tags string) error {
	res, err := s.db.Exec(
		`UPDATE entries SET definition = ?, example = ?, example_plain = ?,
			part_of_speech = ?, tags = ? WHERE id = ?`,
		definition, example, examplePlain, partOfSpeech, tags, id)
	if err != nil {
		return fmt.Errorf("failed to update content: %w", err)
	}

	return requireRow(res, id)
}

// MarkExported flips the given entries from pending to exported.
func (s *Store) MarkExported(ids []string) error {
	for _, id := range ids {
		_, err := s.db.Exec(
			`UPDATE entries SET status = ? WHERE id = ? AND status = ?`,
			entry.StatusExported, id, entry.StatusPending)
		if err != nil {
			return fmt.Errorf("failed to mark %s exported: %w", id, err)
		}
	}
	return nil
}

// Count returns the number of stored entries.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM entries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}
	return n, nil
}

// SetCursor records the backfill resume position in metadata.
func (s *Store) SetCursor(id string) error {
	_, err := s.db.Exec(
		`INSERT INTO metadata (key, value) VALUES ('backfill_cursor', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, id)
	if err != nil {
		return fmt.Errorf("failed to set cursor: %w", err)
	}
	return nil
}

// Cursor returns the last recorded backfill position, or "" when none.
func (s *Store) Cursor() (string, error) {
	var v string
	err := s.db.QueryRow(
		`SELECT value FROM metadata WHERE key = 'backfill_cursor'`).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read cursor: %w", err)
	}
	return v, nil
}

const entryColumns = `id, created_at, word, definition, example,
	example_plain, context, part_of_speech, status, tags,
	audio_word, image, audio_sentence`

func (s *Store) query(q string, args ...any) ([]entry.Entry, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var entries []entry.Entry
	for rows.Next() {
		var e entry.Entry
		var created string
		err := rows.Scan(&e.ID, &created, &e.Word, &e.Definition, &e.Example,
			&e.ExamplePlain, &e.Context, &e.PartOfSpeech, &e.Status, &e.Tags,
			&e.AudioWord, &e.Image, &e.AudioSent)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, created); err == nil {
			e.CreatedAt = t
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no entry with id %s", id)
	}
	return nil
}
