package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rpeterson/recollect/internal/model"
)

// DefaultSessionListLimit caps ListSessions when no limit is given.
const DefaultSessionListLimit = 20

// StartSession opens a new unit of work. A session already active is ended
// first with a closure event, so at most one session is ever active.
func (s *SQLiteStore) StartSession(ctx context.Context, goal string) (string, error) {
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return "", fmt.Errorf("%w: goal is required", ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("%w: begin: %v", ErrStorage, err)
	}
	defer tx.Rollback()

	prev, err := activeSessionTx(ctx, tx)
	if err != nil {
		return "", err
	}
	if prev != "" {
		if err := appendEventTx(ctx, tx, prev, model.SessionEvent{
			Kind:      model.EventClosure,
			Content:   "superseded by a new session",
			Timestamp: now,
		}); err != nil {
			return "", err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE sessions SET status = ?, ended_at = ? WHERE id = ?`,
			model.SessionEnded, now.Format(sqliteTimeFormat), prev); err != nil {
			return "", fmt.Errorf("%w: close previous session: %v", ErrStorage, err)
		}
	}

	id := uuid.NewString()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (id, goal, status, created_at) VALUES (?, ?, ?, ?)`,
		id, goal, model.SessionActive, now.Format(sqliteTimeFormat)); err != nil {
		return "", fmt.Errorf("%w: insert session: %v", ErrStorage, err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("%w: commit: %v", ErrStorage, err)
	}
	return id, nil
}

// RecordInsight appends an insight event to the active session and returns
// the event's 1-based ordinal.
func (s *SQLiteStore) RecordInsight(ctx context.Context, content string) (int, error) {
	return s.recordEvent(ctx, model.SessionEvent{
		Kind:    model.EventInsight,
		Content: content,
	})
}

// RecordDecision appends a decision event with optional reasoning and
// considered alternatives, returning the event's 1-based ordinal.
func (s *SQLiteStore) RecordDecision(ctx context.Context, content, reasoning string, alternatives []string) (int, error) {
	return s.recordEvent(ctx, model.SessionEvent{
		Kind:         model.EventDecision,
		Content:      content,
		Reasoning:    reasoning,
		Alternatives: alternatives,
	})
}

func (s *SQLiteStore) recordEvent(ctx context.Context, ev model.SessionEvent) (int, error) {
	if strings.TrimSpace(ev.Content) == "" {
		return 0, fmt.Errorf("%w: content is required", ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: begin: %v", ErrStorage, err)
	}
	defer tx.Rollback()

	active, err := activeSessionTx(ctx, tx)
	if err != nil {
		return 0, err
	}
	if active == "" {
		return 0, fmt.Errorf("%w: no active session", ErrStateConflict)
	}

	ev.Timestamp = time.Now().UTC()
	if err := appendEventTx(ctx, tx, active, ev); err != nil {
		return 0, err
	}

	var ordinal int
	if err := tx.QueryRowContext(ctx,
		`SELECT MAX(ord) FROM session_events WHERE session_id = ?`, active).Scan(&ordinal); err != nil {
		return 0, fmt.Errorf("%w: read ordinal: %v", ErrStorage, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: commit: %v", ErrStorage, err)
	}
	return ordinal, nil
}

// EndSession closes the active session. A non-empty summary note is stored
// into the memory store tagged with the session id, linking the session back
// into searchable memory; note and state change commit together. Returns the
// closed session's summary.
func (s *SQLiteStore) EndSession(ctx context.Context, summaryNote string) (*model.SessionSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: begin: %v", ErrStorage, err)
	}
	defer tx.Rollback()

	active, err := activeSessionTx(ctx, tx)
	if err != nil {
		return nil, err
	}
	if active == "" {
		return nil, fmt.Errorf("%w: no active session", ErrStateConflict)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE sessions SET status = ?, ended_at = ? WHERE id = ?`,
		model.SessionEnded, now.Format(sqliteTimeFormat), active); err != nil {
		return nil, fmt.Errorf("%w: end session: %v", ErrStorage, err)
	}

	if note := strings.TrimSpace(summaryNote); note != "" {
		if _, err := s.insertEntryTx(ctx, tx, note, "session", []string{"session:" + active}); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: commit: %v", ErrStorage, err)
	}

	return s.sessionSummaryLocked(ctx, active)
}

// SessionSummary renders a session. An empty id selects the active session,
// falling back to the most recently created one.
func (s *SQLiteStore) SessionSummary(ctx context.Context, id string) (*model.SessionSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id = strings.TrimSpace(id)
	if id == "" {
		var err error
		id, err = s.currentSessionID(ctx)
		if err != nil {
			return nil, err
		}
	}
	return s.sessionSummaryLocked(ctx, id)
}

// sessionSummaryLocked assumes s.mu is held (read or write).
func (s *SQLiteStore) sessionSummaryLocked(ctx context.Context, id string) (*model.SessionSummary, error) {
	sess, err := s.getSession(ctx, id)
	if err != nil {
		return nil, err
	}

	events, err := s.sessionEvents(ctx, id)
	if err != nil {
		return nil, err
	}

	summary := &model.SessionSummary{Session: *sess, Events: events}
	for _, ev := range events {
		switch ev.Kind {
		case model.EventInsight:
			summary.InsightCount++
		case model.EventDecision:
			summary.DecisionCount++
		}
	}
	if sess.Status == model.SessionActive || sess.EndedAt == nil {
		summary.Duration = "ongoing"
	} else {
		summary.Duration = sess.EndedAt.Sub(sess.CreatedAt).Round(time.Second).String()
	}
	return summary, nil
}

// ListSessionsParams holds filters for listing sessions.
type ListSessionsParams struct {
	Limit  int
	Status model.SessionStatus // empty means all
}

// ListSessions returns sessions ordered by creation time, newest first.
func (s *SQLiteStore) ListSessions(ctx context.Context, p ListSessionsParams) ([]model.Session, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = DefaultSessionListLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, goal, status, created_at, ended_at FROM sessions`
	args := []interface{}{}
	if p.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, p.Status)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list sessions: %v", ErrStorage, err)
	}
	defer rows.Close()

	var sessions []model.Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan session: %v", ErrStorage, err)
		}
		sessions = append(sessions, *sess)
	}
	return sessions, rows.Err()
}

// activeSessionTx returns the active session id, or "" when none is active.
func activeSessionTx(ctx context.Context, tx *sql.Tx) (string, error) {
	var id string
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM sessions WHERE status = ? ORDER BY created_at DESC LIMIT 1`,
		model.SessionActive).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: find active session: %v", ErrStorage, err)
	}
	return id, nil
}

func appendEventTx(ctx context.Context, tx *sql.Tx, sessionID string, ev model.SessionEvent) error {
	var altJSON *string
	if len(ev.Alternatives) > 0 {
		b, _ := json.Marshal(ev.Alternatives)
		v := string(b)
		altJSON = &v
	}
	var reasoning *string
	if ev.Reasoning != "" {
		reasoning = &ev.Reasoning
	}
	_, err := tx.ExecContext(ctx,
		`INSERT INTO session_events (session_id, ord, kind, content, reasoning, alternatives, created_at)
		 VALUES (?, (SELECT COALESCE(MAX(ord), 0) + 1 FROM session_events WHERE session_id = ?), ?, ?, ?, ?, ?)`,
		sessionID, sessionID, ev.Kind, ev.Content, reasoning, altJSON,
		ev.Timestamp.Format(sqliteTimeFormat))
	if err != nil {
		return fmt.Errorf("%w: append event: %v", ErrStorage, err)
	}
	return nil
}

// currentSessionID picks the active session, else the most recent one.
func (s *SQLiteStore) currentSessionID(ctx context.Context) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM sessions ORDER BY (status = 'active') DESC, created_at DESC LIMIT 1`).Scan(&id)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("%w: no sessions recorded", ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("%w: find current session: %v", ErrStorage, err)
	}
	return id, nil
}

func (s *SQLiteStore) getSession(ctx context.Context, id string) (*model.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, goal, status, created_at, ended_at FROM sessions WHERE id = ?`, id)
	sess, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: session %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load session: %v", ErrStorage, err)
	}
	return sess, nil
}

func (s *SQLiteStore) sessionEvents(ctx context.Context, id string) ([]model.SessionEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT ord, kind, content, reasoning, alternatives, created_at
		 FROM session_events WHERE session_id = ? ORDER BY ord ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("%w: load events: %v", ErrStorage, err)
	}
	defer rows.Close()

	var events []model.SessionEvent
	for rows.Next() {
		var ev model.SessionEvent
		var reasoning, altJSON sql.NullString
		var createdAt string
		if err := rows.Scan(&ev.Ordinal, &ev.Kind, &ev.Content, &reasoning, &altJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: scan event: %v", ErrStorage, err)
		}
		if reasoning.Valid {
			ev.Reasoning = reasoning.String
		}
		if altJSON.Valid {
			json.Unmarshal([]byte(altJSON.String), &ev.Alternatives)
		}
		ev.Timestamp, _ = time.Parse(time.RFC3339Nano, createdAt)
		events = append(events, ev)
	}
	return events, rows.Err()
}

func scanSession(row scanner) (*model.Session, error) {
	var sess model.Session
	var createdAt string
	var endedAt sql.NullString
	if err := row.Scan(&sess.ID, &sess.Goal, &sess.Status, &createdAt, &endedAt); err != nil {
		return nil, err
	}
	sess.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	if endedAt.Valid {
		t, _ := time.Parse(time.RFC3339Nano, endedAt.String)
		sess.EndedAt = &t
	}
	return &sess, nil
}
