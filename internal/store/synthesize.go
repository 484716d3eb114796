package store

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rpeterson/recollect/internal/concept"
	"github.com/rpeterson/recollect/internal/model"
)

// Synthesize groups stored entries by their dominant shared concept and
// renders a template-based report. A topic restricts the candidate set to
// entries overlapping the topic's concepts; a topic matching nothing yields
// a zero-group report. Only a completely empty store is an error.
func (s *SQLiteStore) Synthesize(ctx context.Context, topic string) (*model.SynthesisReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	candidates, err := s.allEntries(ctx)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no entries stored yet", ErrInvalidArgument)
	}

	topic = strings.TrimSpace(topic)
	if topic != "" {
		topicConcepts := concept.Extract(topic)
		filtered := candidates[:0]
		for _, e := range candidates {
			if shared, _ := concept.Overlap(topicConcepts, e.Concepts); shared > 0 {
				filtered = append(filtered, e)
			}
		}
		candidates = filtered
	}

	report := &model.SynthesisReport{
		Topic:          topic,
		CandidateCount: len(candidates),
		Groups:         []model.SynthesisGroup{},
	}
	if len(candidates) == 0 {
		return report, nil
	}

	// How many candidates carry each concept.
	carriers := make(map[string]int)
	for _, e := range candidates {
		for _, c := range e.Concepts {
			carriers[c]++
		}
	}

	// Assign every candidate its dominant concept: the one of its own
	// concepts shared with the most other candidates. Ties keep the
	// entry's concept order, so assignment is deterministic.
	groups := make(map[string][]*model.Entry)
	for _, e := range candidates {
		dominant := ""
		best := 0
		for _, c := range e.Concepts {
			if others := carriers[c] - 1; others > best {
				best = others
				dominant = c
			}
		}
		if dominant == "" {
			report.Isolated = append(report.Isolated, model.IsolatedEntry{
				ID:      e.ID,
				Snippet: model.Snippet(e.Content, snippetLen),
			})
			continue
		}
		groups[dominant] = append(groups[dominant], e)
	}

	for c, members := range groups {
		if len(members) < 2 {
			// Dominant concept shared with entries that clustered
			// elsewhere; report the leftover as isolated.
			for _, e := range members {
				report.Isolated = append(report.Isolated, model.IsolatedEntry{
					ID:      e.ID,
					Snippet: model.Snippet(e.Content, snippetLen),
				})
			}
			continue
		}
		g := model.SynthesisGroup{
			Concept:     c,
			MemberCount: len(members),
			Summary:     fmt.Sprintf("%d entries converge on %q; review them together for a pattern.", len(members), c),
		}
		for _, e := range members {
			g.MemberIDs = append(g.MemberIDs, e.ID)
			g.Snippets = append(g.Snippets, model.Snippet(e.Content, snippetLen))
		}
		report.Groups = append(report.Groups, g)
	}

	sort.Slice(report.Groups, func(i, j int) bool {
		if report.Groups[i].MemberCount != report.Groups[j].MemberCount {
			return report.Groups[i].MemberCount > report.Groups[j].MemberCount
		}
		return report.Groups[i].Concept < report.Groups[j].Concept
	})
	sort.Slice(report.Isolated, func(i, j int) bool {
		return report.Isolated[i].ID < report.Isolated[j].ID
	})

	return report, nil
}

// allEntries loads every entry ordered by id. Assumes s.mu is held.
func (s *SQLiteStore) allEntries(ctx context.Context) ([]*model.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, content, category, tags, concepts, created_at, last_accessed_at, access_count
		 FROM entries ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("%w: load entries: %v", ErrStorage, err)
	}
	defer rows.Close()

	var entries []*model.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan entry: %v", ErrStorage, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
