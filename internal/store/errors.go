package store

import "errors"

// Operations report failures as one of these sentinel kinds, wrapped with
// detail. Callers branch with errors.Is; nothing here is a process crash.
var (
	// ErrInvalidArgument indicates empty or malformed input.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound indicates an unknown entry or session id.
	ErrNotFound = errors.New("not found")

	// ErrStateConflict indicates a session operation issued in the wrong
	// lifecycle state, such as recording an event with no active session.
	ErrStateConflict = errors.New("state conflict")

	// ErrStorage indicates the underlying database failed to commit.
	ErrStorage = errors.New("storage failure")
)
