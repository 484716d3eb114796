package store

import (
	"context"
	"fmt"

	"github.com/rpeterson/recollect/internal/model"
)

// ExportAll returns every entry ordered by id, oldest first.
func (s *SQLiteStore) ExportAll(ctx context.Context) ([]model.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := s.allEntries(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, *e)
	}
	return out, nil
}

// Import stores entries from an export. The store is append-only, so imports
// always create fresh entries with new ids; concepts are re-extracted from
// content rather than trusted from the export.
func (s *SQLiteStore) Import(ctx context.Context, entries []model.Entry) (int, error) {
	imported := 0
	for _, e := range entries {
		_, err := s.Store(ctx, StoreParams{
			Content:  e.Content,
			Category: e.Category,
			Tags:     e.Tags,
		})
		if err != nil {
			return imported, fmt.Errorf("import entry %d: %w", imported, err)
		}
		imported++
	}
	return imported, nil
}
