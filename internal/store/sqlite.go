package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rpeterson/recollect/internal/concept"
	"github.com/rpeterson/recollect/internal/model"
)

// snippetLen bounds content previews in related/synthesis output.
const snippetLen = 80

// sqliteTimeFormat is RFC 3339 with fixed-width nanoseconds so that stored
// timestamps compare correctly as text in ORDER BY clauses.
const sqliteTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements the memory store and session manager on SQLite.
// Mutations are serialized behind mu so entry ids stay unique and at most
// one session is active under concurrent callers.
type SQLiteStore struct {
	db      *sql.DB
	mu      sync.RWMutex
	entropy *rand.Rand
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Single writer; avoids sqlite lock contention between goroutines.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entries (
		id               TEXT PRIMARY KEY,
		content          TEXT NOT NULL,
		category         TEXT NOT NULL DEFAULT 'general',
		tags             TEXT,
		concepts         TEXT,
		created_at       TEXT NOT NULL,
		last_accessed_at TEXT,
		access_count     INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_entries_category ON entries(category);
	CREATE INDEX IF NOT EXISTS idx_entries_created ON entries(created_at DESC);

	CREATE TABLE IF NOT EXISTS entry_concepts (
		concept  TEXT NOT NULL,
		entry_id TEXT NOT NULL REFERENCES entries(id),
		PRIMARY KEY (concept, entry_id)
	);
	CREATE INDEX IF NOT EXISTS idx_entry_concepts_entry ON entry_concepts(entry_id);

	CREATE TABLE IF NOT EXISTS sessions (
		id         TEXT PRIMARY KEY,
		goal       TEXT NOT NULL,
		status     TEXT NOT NULL DEFAULT 'active',
		created_at TEXT NOT NULL,
		ended_at   TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_created ON sessions(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_sessions_status ON sessions(status);

	CREATE TABLE IF NOT EXISTS session_events (
		session_id   TEXT NOT NULL REFERENCES sessions(id),
		ord          INTEGER NOT NULL,
		kind         TEXT NOT NULL,
		content      TEXT NOT NULL,
		reasoning    TEXT,
		alternatives TEXT,
		created_at   TEXT NOT NULL,
		PRIMARY KEY (session_id, ord)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// StoreParams holds parameters for storing an entry.
type StoreParams struct {
	Content  string
	Category string
	Tags     []string
}

// Store records a new memory entry. The entry is committed, indexed and
// searchable before Store returns.
func (s *SQLiteStore) Store(ctx context.Context, p StoreParams) (*model.Entry, error) {
	content := strings.TrimSpace(p.Content)
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", ErrInvalidArgument)
	}
	category := strings.TrimSpace(p.Category)
	if category == "" {
		category = model.DefaultCategory
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: begin: %v", ErrStorage, err)
	}
	defer tx.Rollback()

	entry, err := s.insertEntryTx(ctx, tx, content, category, p.Tags)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: commit: %v", ErrStorage, err)
	}
	return entry, nil
}

// insertEntryTx writes a new entry and its concept index rows inside tx.
func (s *SQLiteStore) insertEntryTx(ctx context.Context, tx *sql.Tx, content, category string, tags []string) (*model.Entry, error) {
	now := time.Now().UTC()
	id := s.newID()
	concepts := concept.Extract(content)

	var tagsJSON *string
	if len(tags) > 0 {
		b, _ := json.Marshal(tags)
		v := string(b)
		tagsJSON = &v
	}
	var conceptsJSON *string
	if len(concepts) > 0 {
		b, _ := json.Marshal(concepts)
		v := string(b)
		conceptsJSON = &v
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO entries (id, content, category, tags, concepts, created_at, access_count)
		 VALUES (?, ?, ?, ?, ?, ?, 0)`,
		id, content, category, tagsJSON, conceptsJSON, now.Format(sqliteTimeFormat))
	if err != nil {
		return nil, fmt.Errorf("%w: insert entry: %v", ErrStorage, err)
	}

	for _, c := range concepts {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO entry_concepts (concept, entry_id) VALUES (?, ?)`, c, id); err != nil {
			return nil, fmt.Errorf("%w: index concept: %v", ErrStorage, err)
		}
	}

	return &model.Entry{
		ID:        id,
		Content:   content,
		Category:  category,
		Tags:      tags,
		Concepts:  concepts,
		CreatedAt: now,
	}, nil
}

// Recall retrieves an entry by id and bumps its access bookkeeping.
func (s *SQLiteStore) Recall(ctx context.Context, id string) (*model.Entry, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: entry id is required", ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.getEntry(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.touchEntries(ctx, entry.ID); err != nil {
		return nil, err
	}
	entry.AccessCount++
	now := time.Now().UTC()
	entry.LastAccessedAt = &now
	return entry, nil
}

// ListCategories returns the derived category view ordered by descending
// count, category name ascending on ties.
func (s *SQLiteStore) ListCategories(ctx context.Context) ([]model.CategoryCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT category, COUNT(*) FROM entries GROUP BY category ORDER BY COUNT(*) DESC, category ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: list categories: %v", ErrStorage, err)
	}
	defer rows.Close()

	var out []model.CategoryCount
	for rows.Next() {
		var c model.CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, fmt.Errorf("%w: scan category: %v", ErrStorage, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// getEntry loads a single entry without touching its access bookkeeping.
func (s *SQLiteStore) getEntry(ctx context.Context, id string) (*model.Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, content, category, tags, concepts, created_at, last_accessed_at, access_count
		 FROM entries WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: entry %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load entry: %v", ErrStorage, err)
	}
	return entry, nil
}

// touchEntries bumps access_count and last_accessed_at for the given ids.
func (s *SQLiteStore) touchEntries(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	now := time.Now().UTC().Format(sqliteTimeFormat)
	for _, id := range ids {
		_, err := s.db.ExecContext(ctx,
			`UPDATE entries SET access_count = access_count + 1, last_accessed_at = ? WHERE id = ?`, now, id)
		if err != nil {
			return fmt.Errorf("%w: update access: %v", ErrStorage, err)
		}
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row scanner) (*model.Entry, error) {
	var e model.Entry
	var tagsJSON, conceptsJSON, lastAccessed sql.NullString
	var createdAt string

	err := row.Scan(&e.ID, &e.Content, &e.Category, &tagsJSON, &conceptsJSON,
		&createdAt, &lastAccessed, &e.AccessCount)
	if err != nil {
		return nil, err
	}

	e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	if lastAccessed.Valid {
		t, _ := time.Parse(time.RFC3339Nano, lastAccessed.String)
		e.LastAccessedAt = &t
	}
	if tagsJSON.Valid {
		json.Unmarshal([]byte(tagsJSON.String), &e.Tags)
	}
	if conceptsJSON.Valid {
		json.Unmarshal([]byte(conceptsJSON.String), &e.Concepts)
	}
	return &e, nil
}
