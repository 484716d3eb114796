package store

import (
	"context"
	"fmt"
	"os"

	"github.com/rpeterson/recollect/internal/model"
)

// EntryDigest is a compact view of a frequently accessed entry.
type EntryDigest struct {
	ID          string `json:"id"`
	Snippet     string `json:"snippet"`
	AccessCount int    `json:"access_count"`
}

// ConceptCount is one row of the concept index histogram.
type ConceptCount struct {
	Concept string `json:"concept"`
	Count   int    `json:"count"`
}

// Stats holds database statistics.
type Stats struct {
	DBPath           string                `json:"db_path"`
	DBSizeBytes      int64                 `json:"db_size_bytes"`
	TotalEntries     int                   `json:"total_entries"`
	TotalSessions    int                   `json:"total_sessions"`
	ActiveSessions   int                   `json:"active_sessions"`
	IndexedConcepts  int                   `json:"indexed_concepts"`
	Categories       []model.CategoryCount `json:"categories,omitempty"`
	MostAccessed     []EntryDigest         `json:"most_accessed,omitempty"`
	ProlificConcepts []ConceptCount        `json:"prolific_concepts,omitempty"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := &Stats{DBPath: dbPath}
	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&st.TotalEntries)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&st.TotalSessions)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions WHERE status = 'active'`).Scan(&st.ActiveSessions)
	s.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT concept) FROM entry_concepts`).Scan(&st.IndexedConcepts)

	rows, err := s.db.QueryContext(ctx,
		`SELECT category, COUNT(*) FROM entries GROUP BY category ORDER BY COUNT(*) DESC, category ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: stats categories: %v", ErrStorage, err)
	}
	defer rows.Close()
	for rows.Next() {
		var c model.CategoryCount
		if err := rows.Scan(&c.Category, &c.Count); err != nil {
			return nil, fmt.Errorf("%w: scan category: %v", ErrStorage, err)
		}
		st.Categories = append(st.Categories, c)
	}

	accessed, err := s.db.QueryContext(ctx,
		`SELECT id, content, access_count FROM entries
		 WHERE access_count > 0 ORDER BY access_count DESC, id DESC LIMIT 5`)
	if err != nil {
		return nil, fmt.Errorf("%w: stats access: %v", ErrStorage, err)
	}
	defer accessed.Close()
	for accessed.Next() {
		var d EntryDigest
		var content string
		if err := accessed.Scan(&d.ID, &content, &d.AccessCount); err != nil {
			return nil, fmt.Errorf("%w: scan digest: %v", ErrStorage, err)
		}
		d.Snippet = model.Snippet(content, snippetLen)
		st.MostAccessed = append(st.MostAccessed, d)
	}

	prolific, err := s.db.QueryContext(ctx,
		`SELECT concept, COUNT(*) FROM entry_concepts
		 GROUP BY concept ORDER BY COUNT(*) DESC, concept ASC LIMIT 8`)
	if err != nil {
		return nil, fmt.Errorf("%w: stats concepts: %v", ErrStorage, err)
	}
	defer prolific.Close()
	for prolific.Next() {
		var c ConceptCount
		if err := prolific.Scan(&c.Concept, &c.Count); err != nil {
			return nil, fmt.Errorf("%w: scan concept: %v", ErrStorage, err)
		}
		st.ProlificConcepts = append(st.ProlificConcepts, c)
	}

	return st, nil
}
