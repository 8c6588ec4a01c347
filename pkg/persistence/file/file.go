// Package file provides file-based session persistence. One directory per
// session under the configured root, with an explicit index file instead of
// directory-listing heuristics.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/inkwell-ai/inkwell/pkg/models"
	"github.com/inkwell-ai/inkwell/pkg/persistence"
)

const indexFile = "index.json"

// Repository implements persistence.SessionRepository on the file system.
//
// Layout:
//
//	<root>/index.json
//	<root>/<session_id>/state.json
//	<root>/<session_id>/drafts/draft_iter_<n>.md
//	<root>/<session_id>/<output>.md
type Repository struct {
	root string

	mu sync.Mutex // guards index read-modify-write
}

// NewRepository creates a file-backed session repository rooted at the given
// directory. Accepts a plain path or a file:// URL.
func NewRepository(root string) *Repository {
	return &Repository{root: strings.TrimPrefix(root, "file://")}
}

func (r *Repository) sessionDir(sessionID string) string {
	return filepath.Join(r.root, sessionID)
}

func (r *Repository) statePath(sessionID string) string {
	return filepath.Join(r.sessionDir(sessionID), "state.json")
}

// SaveState persists the session record atomically and updates the index.
func (r *Repository) SaveState(ctx context.Context, state *models.SessionState) error {
	now := time.Now().UTC()
	if state.CreatedAt.IsZero() {
		state.CreatedAt = now
	}

	state.UpdatedAt = now

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return persistence.NewSessionError("SaveState", state.SessionID, err)
	}

	if err := writeFileAtomic(ctx, r.statePath(state.SessionID), data); err != nil {
		return persistence.NewSessionError("SaveState", state.SessionID,
			fmt.Errorf("%w: %w", persistence.ErrRetriesExhausted, err))
	}

	if err := r.updateIndex(ctx, state); err != nil {
		return persistence.NewSessionError("SaveState", state.SessionID, err)
	}

	return nil
}

// StateByID loads a session record. Missing sessions return ErrSessionNotFound.
func (r *Repository) StateByID(_ context.Context, sessionID string) (*models.SessionState, error) {
	body, err := os.ReadFile(filepath.Clean(r.statePath(sessionID)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, persistence.NewSessionError("StateByID", sessionID, persistence.ErrSessionNotFound)
		}

		return nil, persistence.NewSessionError("StateByID", sessionID, err)
	}

	var state models.SessionState

	if err := json.Unmarshal(body, &state); err != nil {
		return nil, persistence.NewSessionError("StateByID", sessionID,
			fmt.Errorf("%w: %w", persistence.ErrCorruptState, err))
	}

	return &state, nil
}

// Sessions lists registry entries, most recently updated first.
func (r *Repository) Sessions(ctx context.Context) ([]*models.SessionInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.readIndex()
}

// LatestSessionID returns the most recently updated session in the index.
func (r *Repository) LatestSessionID(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.readIndex()
	if err != nil {
		return "", err
	}

	if len(entries) == 0 {
		return "", persistence.NewSessionError("LatestSessionID", "", persistence.ErrSessionNotFound)
	}

	return entries[0].SessionID, nil
}

// SaveDraft writes one immutable per-iteration draft file.
func (r *Repository) SaveDraft(ctx context.Context, sessionID string, iteration int, content string) (string, error) {
	path := filepath.Join(r.sessionDir(sessionID), "drafts", fmt.Sprintf("draft_iter_%d.md", iteration))

	if err := writeFileAtomic(ctx, path, []byte(content)); err != nil {
		return "", persistence.NewSessionError("SaveDraft", sessionID, err)
	}

	return path, nil
}

// SaveOutput writes the final article into the session directory.
func (r *Repository) SaveOutput(ctx context.Context, sessionID, name, content string) (string, error) {
	path := filepath.Join(r.sessionDir(sessionID), name)

	if err := writeFileAtomic(ctx, path, []byte(content)); err != nil {
		return "", persistence.NewSessionError("SaveOutput", sessionID, err)
	}

	return path, nil
}

// DeleteSession removes the session directory and its index entry.
func (r *Repository) DeleteSession(ctx context.Context, sessionID string) error {
	if err := os.RemoveAll(r.sessionDir(sessionID)); err != nil {
		return persistence.NewSessionError("DeleteSession", sessionID, err)
	}

	return r.removeFromIndex(ctx, sessionID)
}

// HealthCheck verifies the root directory is usable, creating it if needed.
func (r *Repository) HealthCheck(_ context.Context) error {
	return os.MkdirAll(r.root, 0750)
}

// Close is a no-op for file persistence.
func (r *Repository) Close(_ context.Context) error {
	return nil
}

// readIndex loads the session index. Callers hold r.mu.
func (r *Repository) readIndex() ([]*models.SessionInfo, error) {
	body, err := os.ReadFile(filepath.Clean(filepath.Join(r.root, indexFile)))
	if err != nil {
		if os.IsNotExist(err) {
			return []*models.SessionInfo{}, nil
		}

		return nil, fmt.Errorf("failed to read session index: %w", err)
	}

	var entries []*models.SessionInfo

	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("%w: session index: %w", persistence.ErrCorruptState, err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].UpdatedAt.After(entries[j].UpdatedAt)
	})

	return entries, nil
}

func (r *Repository) writeIndex(ctx context.Context, entries []*models.SessionInfo) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session index: %w", err)
	}

	return writeFileAtomic(ctx, filepath.Join(r.root, indexFile), data)
}

func (r *Repository) updateIndex(ctx context.Context, state *models.SessionState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.readIndex()
	if err != nil {
		return err
	}

	info := &models.SessionInfo{
		SessionID: state.SessionID,
		Stage:     state.Stage,
		Iteration: state.Iteration,
		CreatedAt: state.CreatedAt,
		UpdatedAt: state.UpdatedAt,
	}

	replaced := false

	for i, entry := range entries {
		if entry.SessionID == state.SessionID {
			entries[i] = info
			replaced = true

			break
		}
	}

	if !replaced {
		entries = append(entries, info)
	}

	return r.writeIndex(ctx, entries)
}

func (r *Repository) removeFromIndex(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.readIndex()
	if err != nil {
		return err
	}

	kept := entries[:0]

	for _, entry := range entries {
		if entry.SessionID != sessionID {
			kept = append(kept, entry)
		}
	}

	return r.writeIndex(ctx, kept)
}
