package store

import (
	"context"
	"errors"
	"testing"

	"github.com/rpeterson/recollect/internal/model"
)

func TestStartSession_RequiresGoal(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.StartSession(ctx, "  ")
	if !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestSessionExclusivity(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, goal := range []string{"first", "second", "third"} {
		if _, err := s.StartSession(ctx, goal); err != nil {
			t.Fatalf("start %q: %v", goal, err)
		}

		sessions, err := s.ListSessions(ctx, ListSessionsParams{})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		active := 0
		for _, sess := range sessions {
			if sess.Status == model.SessionActive {
				active++
			}
		}
		if active != 1 {
			t.Fatalf("after starting %q: expected exactly 1 active session, got %d", goal, active)
		}
	}
}

func TestStartSession_SupersedesActive(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first, _ := s.StartSession(ctx, "A")
	second, _ := s.StartSession(ctx, "B")

	sessions, err := s.ListSessions(ctx, ListSessionsParams{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	// Newest first
	if sessions[0].ID != second || sessions[0].Status != model.SessionActive {
		t.Errorf("expected second session active and first in list, got %+v", sessions[0])
	}
	if sessions[1].ID != first || sessions[1].Status != model.SessionEnded {
		t.Errorf("expected first session ended, got %+v", sessions[1])
	}

	summary, err := s.SessionSummary(ctx, first)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if len(summary.Events) != 1 || summary.Events[0].Kind != model.EventClosure {
		t.Errorf("expected an implicit closure event, got %+v", summary.Events)
	}
	if summary.EndedAt == nil {
		t.Error("expected ended_at set on superseded session")
	}
}

func TestRecordWithoutActiveSession(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.RecordInsight(ctx, "orphan insight"); !errors.Is(err, ErrStateConflict) {
		t.Errorf("expected ErrStateConflict, got %v", err)
	}
	if _, err := s.RecordDecision(ctx, "orphan decision", "", nil); !errors.Is(err, ErrStateConflict) {
		t.Errorf("expected ErrStateConflict, got %v", err)
	}

	sessions, _ := s.ListSessions(ctx, ListSessionsParams{})
	if len(sessions) != 0 {
		t.Error("failed record must not create or mutate sessions")
	}
}

func TestRecordOrdinals(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.StartSession(ctx, "ordinal check")

	ord, err := s.RecordInsight(ctx, "first observation")
	if err != nil || ord != 1 {
		t.Fatalf("expected ordinal 1, got %d (%v)", ord, err)
	}
	ord, err = s.RecordDecision(ctx, "a choice", "it was cheaper", []string{"other option"})
	if err != nil || ord != 2 {
		t.Fatalf("expected ordinal 2, got %d (%v)", ord, err)
	}
	ord, err = s.RecordInsight(ctx, "second observation")
	if err != nil || ord != 3 {
		t.Fatalf("expected ordinal 3, got %d (%v)", ord, err)
	}
}

func TestEndSession_NoActive(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.EndSession(ctx, ""); !errors.Is(err, ErrStateConflict) {
		t.Errorf("expected ErrStateConflict, got %v", err)
	}

	// Double end
	s.StartSession(ctx, "short lived")
	if _, err := s.EndSession(ctx, ""); err != nil {
		t.Fatalf("end: %v", err)
	}
	if _, err := s.EndSession(ctx, ""); !errors.Is(err, ErrStateConflict) {
		t.Errorf("expected ErrStateConflict on double end, got %v", err)
	}
}

func TestEndedSessionImmutable(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, _ := s.StartSession(ctx, "done deal")
	s.RecordInsight(ctx, "before the end")
	s.EndSession(ctx, "")

	if _, err := s.RecordInsight(ctx, "after the end"); !errors.Is(err, ErrStateConflict) {
		t.Errorf("expected ErrStateConflict, got %v", err)
	}

	summary, _ := s.SessionSummary(ctx, id)
	if summary.InsightCount != 1 {
		t.Errorf("ended session gained events: %+v", summary)
	}
}

func TestJWTMigrationScenario(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.StartSession(ctx, "Refactor auth module")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := s.RecordDecision(ctx, "Use JWT", "stateless", []string{"session cookies"}); err != nil {
		t.Fatalf("decision: %v", err)
	}
	if _, err := s.EndSession(ctx, "Completed JWT migration"); err != nil {
		t.Fatalf("end: %v", err)
	}

	summary, err := s.SessionSummary(ctx, "")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.ID != id {
		t.Errorf("default summary should pick the most recent session")
	}
	if summary.Status != model.SessionEnded {
		t.Errorf("expected status ended, got %q", summary.Status)
	}
	if summary.DecisionCount != 1 {
		t.Errorf("expected one decision event, got %d", summary.DecisionCount)
	}
	if summary.Duration == "ongoing" {
		t.Error("ended session should report a concrete duration")
	}

	var decision *model.SessionEvent
	for i := range summary.Events {
		if summary.Events[i].Kind == model.EventDecision {
			decision = &summary.Events[i]
		}
	}
	if decision == nil {
		t.Fatal("decision event missing")
	}
	if decision.Reasoning != "stateless" || len(decision.Alternatives) != 1 || decision.Alternatives[0] != "session cookies" {
		t.Errorf("decision lost reasoning/alternatives: %+v", decision)
	}

	// The closing note became a searchable entry tagged with the session id.
	results, err := s.Search(ctx, SearchParams{Query: "JWT migration"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected closing note in memory, got %d results", len(results))
	}
	note := results[0]
	if note.Category != "session" {
		t.Errorf("expected session category, got %q", note.Category)
	}
	tagged := false
	for _, tag := range note.Tags {
		if tag == "session:"+id {
			tagged = true
		}
	}
	if !tagged {
		t.Errorf("expected note tagged with session id, got %v", note.Tags)
	}
}

func TestSessionSummary_UnknownID(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.StartSession(ctx, "exists")
	if _, err := s.SessionSummary(ctx, "no-such-session"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionSummary_ActiveIsOngoing(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.StartSession(ctx, "in flight")
	summary, err := s.SessionSummary(ctx, "")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.Duration != "ongoing" {
		t.Errorf("expected ongoing duration, got %q", summary.Duration)
	}
}

func TestListSessions_FilterAndLimit(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.StartSession(ctx, "one")
	s.StartSession(ctx, "two")
	s.StartSession(ctx, "three")

	ended, err := s.ListSessions(ctx, ListSessionsParams{Status: model.SessionEnded})
	if err != nil {
		t.Fatalf("list ended: %v", err)
	}
	if len(ended) != 2 {
		t.Errorf("expected 2 ended sessions, got %d", len(ended))
	}

	limited, err := s.ListSessions(ctx, ListSessionsParams{Limit: 1})
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 1 || limited[0].Goal != "three" {
		t.Errorf("expected newest session only, got %+v", limited)
	}
}
