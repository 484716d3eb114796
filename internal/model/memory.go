// Package model defines the core memory and session data types.
package model

import "time"

// Entry is a stored memory entry. Content, category, tags and concepts are
// fixed at creation; only the access bookkeeping fields change afterwards.
type Entry struct {
	ID             string     `json:"id"`
	Content        string     `json:"content"`
	Category       string     `json:"category"`
	Tags           []string   `json:"tags,omitempty"`
	Concepts       []string   `json:"concepts,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	LastAccessedAt *time.Time `json:"last_accessed_at,omitempty"`
	AccessCount    int        `json:"access_count"`
}

// DefaultCategory is used when a stored entry names no category.
const DefaultCategory = "general"

// CategoryCount is one row of the derived category view.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// ScoredEntry is a search hit with its relevance score.
type ScoredEntry struct {
	Entry
	Score float64 `json:"score"`
}

// RelatedEntry is a derived relationship edge from one entry to another,
// weighted by the number of concepts the two entries share.
type RelatedEntry struct {
	ID             string `json:"id"`
	Snippet        string `json:"snippet"`
	SharedConcepts int    `json:"shared_concepts"`
}

// SessionStatus is the lifecycle state of a session.
type SessionStatus string

const (
	SessionActive SessionStatus = "active"
	SessionEnded  SessionStatus = "ended"
)

// EventKind classifies session events.
type EventKind string

const (
	EventInsight  EventKind = "insight"
	EventDecision EventKind = "decision"
	// EventClosure marks the implicit end of a session that was superseded
	// by a newer StartSession call.
	EventClosure EventKind = "closure"
)

// Session is a bounded unit of work with a goal.
type Session struct {
	ID        string        `json:"id"`
	Goal      string        `json:"goal"`
	Status    SessionStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	EndedAt   *time.Time    `json:"ended_at,omitempty"`
}

// SessionEvent is one append-only record attached to a session.
type SessionEvent struct {
	Ordinal      int       `json:"ordinal"`
	Kind         EventKind `json:"kind"`
	Content      string    `json:"content"`
	Reasoning    string    `json:"reasoning,omitempty"`
	Alternatives []string  `json:"alternatives,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// SessionSummary is the rendered view of a session.
type SessionSummary struct {
	Session
	InsightCount  int            `json:"insight_count"`
	DecisionCount int            `json:"decision_count"`
	Events        []SessionEvent `json:"events"`
	Duration      string         `json:"duration"` // "ongoing" while active
}

// SynthesisGroup is one cluster of entries sharing a dominant concept.
type SynthesisGroup struct {
	Concept     string   `json:"concept"`
	MemberCount int      `json:"member_count"`
	MemberIDs   []string `json:"member_ids"`
	Snippets    []string `json:"snippets"`
	Summary     string   `json:"summary"`
}

// IsolatedEntry is a synthesis candidate that joined no group.
type IsolatedEntry struct {
	ID      string `json:"id"`
	Snippet string `json:"snippet"`
}

// SynthesisReport is the result of grouping stored entries by shared concepts.
type SynthesisReport struct {
	Topic          string           `json:"topic,omitempty"`
	CandidateCount int              `json:"candidate_count"`
	Groups         []SynthesisGroup `json:"groups"`
	Isolated       []IsolatedEntry  `json:"isolated,omitempty"`
}

// Snippet returns the first n characters of content for previews.
func Snippet(content string, n int) string {
	runes := []rune(content)
	if len(runes) <= n {
		return content
	}
	return string(runes[:n]) + "..."
}
