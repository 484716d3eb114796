package store

import (
	"context"
	"fmt"

	"github.com/rpeterson/recollect/internal/model"
)

// DefaultRelatedLimit caps related-entry lookups when no limit is given.
const DefaultRelatedLimit = 8

// Related returns entries sharing concepts with the given entry, ordered by
// the number of shared concepts. The relationship graph is never persisted;
// edges are recomputed from the concept index on every call, so they stay
// consistent with the entries by construction.
func (s *SQLiteStore) Related(ctx context.Context, id string, limit int) ([]model.RelatedEntry, error) {
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, err := s.getEntry(ctx, id); err != nil {
		return nil, err
	}
	return s.relatedLocked(ctx, id, limit)
}

// relatedLocked assumes s.mu is held (read or write).
func (s *SQLiteStore) relatedLocked(ctx context.Context, id string, limit int) ([]model.RelatedEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT other.entry_id, e.content, COUNT(*) AS shared
		FROM entry_concepts own
		INNER JOIN entry_concepts other
			ON other.concept = own.concept AND other.entry_id != own.entry_id
		INNER JOIN entries e ON e.id = other.entry_id
		WHERE own.entry_id = ?
		GROUP BY other.entry_id
		ORDER BY shared DESC, other.entry_id DESC
		LIMIT ?`, id, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: related: %v", ErrStorage, err)
	}
	defer rows.Close()

	var related []model.RelatedEntry
	for rows.Next() {
		var r model.RelatedEntry
		var content string
		if err := rows.Scan(&r.ID, &content, &r.SharedConcepts); err != nil {
			return nil, fmt.Errorf("%w: scan related: %v", ErrStorage, err)
		}
		r.Snippet = model.Snippet(content, snippetLen)
		related = append(related, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: related: %v", ErrStorage, err)
	}
	return related, nil
}
