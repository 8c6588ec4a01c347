// Package persistence provides standardized error types for storage operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrSessionNotFound indicates no session exists for the given identifier.
	ErrSessionNotFound = errors.New("session not found")

	// ErrCorruptState indicates a persisted record could not be decoded.
	ErrCorruptState = errors.New("corrupt session state")

	// ErrRetriesExhausted indicates a transient I/O failure persisted through
	// every retry attempt.
	ErrRetriesExhausted = errors.New("storage retries exhausted")
)

// SessionError wraps session storage errors with operation context.
type SessionError struct {
	Op        string // Operation being performed (e.g., "SaveState", "StateByID")
	SessionID string // Session ID if applicable
	Err       error  // Underlying error
}

func (e *SessionError) Error() string {
	if e.SessionID == "" {
		return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
	}

	return fmt.Sprintf("%s failed for session %s: %v", e.Op, e.SessionID, e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

func (e *SessionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewSessionError creates a new session error with context.
func NewSessionError(op, sessionID string, err error) *SessionError {
	return &SessionError{Op: op, SessionID: sessionID, Err: err}
}

// IsSessionNotFound checks if an error indicates a missing session.
func IsSessionNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}

// IsCorruptState checks if an error indicates an undecodable record.
func IsCorruptState(err error) bool {
	return errors.Is(err, ErrCorruptState)
}
