// Package persistence provides the storage abstraction for workflow sessions.
package persistence

import (
	"context"

	"github.com/inkwell-ai/inkwell/pkg/models"
)

// SessionRepository persists session state and its associated artifacts. A
// successful SaveState must be visible to a later StateByID on any process,
// even after a crash between the calls.
type SessionRepository interface {
	// SaveState durably persists the full session record and updates the
	// session index.
	SaveState(ctx context.Context, state *models.SessionState) error

	// StateByID loads a session record. A missing session returns
	// ErrSessionNotFound, which callers use to tell a fresh run from a resume.
	StateByID(ctx context.Context, sessionID string) (*models.SessionState, error)

	// Sessions lists the registry entries, newest first.
	Sessions(ctx context.Context) ([]*models.SessionInfo, error)

	// LatestSessionID returns the most recently updated session, or
	// ErrSessionNotFound when the registry is empty.
	LatestSessionID(ctx context.Context) (string, error)

	// SaveDraft writes one immutable per-iteration draft file for audit and
	// diffing. Returns the location it wrote to.
	SaveDraft(ctx context.Context, sessionID string, iteration int, content string) (string, error)

	// SaveOutput writes the final article under the given name and returns
	// its location.
	SaveOutput(ctx context.Context, sessionID, name, content string) (string, error)

	// DeleteSession removes a session record and its index entry. Deleting a
	// missing session is not an error.
	DeleteSession(ctx context.Context, sessionID string) error

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}
