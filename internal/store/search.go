package store

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rpeterson/recollect/internal/concept"
	"github.com/rpeterson/recollect/internal/model"
)

// Relevance weights. Concept overlap dominates; access frequency and
// recency only re-rank entries that already match.
const (
	weightOverlap   = 0.7
	weightFrequency = 0.15
	weightRecency   = 0.15
)

// DefaultSearchLimit caps results when no limit is given.
const DefaultSearchLimit = 10

// SearchParams holds parameters for ranked retrieval.
type SearchParams struct {
	Query    string
	Category string
	Limit    int
}

// Search ranks stored entries against the query. Concept overlap is a hard
// gate: entries sharing no concept with the query are never returned. Each
// returned entry gets the same access bookkeeping as Recall.
func (s *SQLiteStore) Search(ctx context.Context, p SearchParams) ([]model.ScoredEntry, error) {
	query := strings.TrimSpace(p.Query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", ErrInvalidArgument)
	}
	limit := p.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	queryConcepts := concept.Extract(query)
	if len(queryConcepts) == 0 {
		// Nothing indexable in the query; the overlap gate excludes all.
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	candidates, err := s.candidatesByConcepts(ctx, queryConcepts, p.Category)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	results := make([]model.ScoredEntry, 0, len(candidates))
	for _, e := range candidates {
		shared, fraction := concept.Overlap(queryConcepts, e.Concepts)
		if shared == 0 {
			continue
		}
		results = append(results, model.ScoredEntry{
			Entry: *e,
			Score: weightOverlap*fraction +
				weightFrequency*frequencySignal(e.AccessCount) +
				weightRecency*recencyDecay(e.CreatedAt, now),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if !results[i].CreatedAt.Equal(results[j].CreatedAt) {
			return results[i].CreatedAt.After(results[j].CreatedAt)
		}
		return results[i].ID > results[j].ID
	})
	if len(results) > limit {
		results = results[:limit]
	}

	ids := make([]string, len(results))
	for i := range results {
		ids[i] = results[i].ID
	}
	if err := s.touchEntries(ctx, ids...); err != nil {
		return nil, err
	}
	for i := range results {
		results[i].AccessCount++
		results[i].LastAccessedAt = &now
	}

	return results, nil
}

// candidatesByConcepts loads distinct entries indexed under any of the given
// concepts, optionally restricted to one category.
func (s *SQLiteStore) candidatesByConcepts(ctx context.Context, concepts []string, category string) ([]*model.Entry, error) {
	placeholders := strings.Repeat("?,", len(concepts))
	placeholders = placeholders[:len(placeholders)-1]

	sql := fmt.Sprintf(`
		SELECT DISTINCT e.id, e.content, e.category, e.tags, e.concepts,
		       e.created_at, e.last_accessed_at, e.access_count
		FROM entries e
		INNER JOIN entry_concepts ec ON ec.entry_id = e.id
		WHERE ec.concept IN (%s)`, placeholders)

	args := make([]interface{}, 0, len(concepts)+1)
	for _, c := range concepts {
		args = append(args, c)
	}
	if category != "" {
		sql += ` AND e.category = ?`
		args = append(args, category)
	}

	rows, err := s.db.QueryContext(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: search candidates: %v", ErrStorage, err)
	}
	defer rows.Close()

	var entries []*model.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan candidate: %v", ErrStorage, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// frequencySignal maps access counts onto [0,1] on a log scale, saturating
// at 100 accesses.
func frequencySignal(accessCount int) float64 {
	if accessCount <= 0 {
		return 0
	}
	v := math.Log(float64(accessCount)+1) / math.Log(100)
	if v > 1 {
		return 1
	}
	return v
}

// recencyDecay decays exponentially with entry age in days, bounded to (0,1].
func recencyDecay(createdAt, now time.Time) float64 {
	ageDays := now.Sub(createdAt).Hours() / 24.0
	if ageDays < 0 {
		ageDays = 0
	}
	return math.Exp(-0.1 * ageDays)
}
