// Package session owns the mutable session record: every stage transition,
// iteration increment and draft update goes through the Manager, which
// persists after each mutation so an interrupted run resumes exactly where it
// left off.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/inkwell-ai/inkwell/pkg/models"
	"github.com/inkwell-ai/inkwell/pkg/persistence"
)

// Options configure a new session.
type Options struct {
	IdeaPath     string
	WritingsDir  string
	Instructions string

	// MaxIterations bounds the review loop. Zero means the default bound;
	// pass models.UnboundedIterations to opt out of the bound explicitly.
	MaxIterations int
}

// Manager wraps one session's state with automatic persistence.
type Manager struct {
	repo   persistence.SessionRepository
	logger *slog.Logger
	state  *models.SessionState
}

// New creates a fresh session and persists its initial record.
func New(ctx context.Context, repo persistence.SessionRepository, logger *slog.Logger, opts Options) (*Manager, error) {
	maxIterations := opts.MaxIterations
	if maxIterations == 0 {
		maxIterations = models.DefaultMaxIterations
	}

	if maxIterations < 0 && maxIterations != models.UnboundedIterations {
		return nil, fmt.Errorf("invalid max iterations: %d", maxIterations)
	}

	state := &models.SessionState{
		SessionID:        uuid.New().String(),
		Stage:            models.StageInitialized,
		MaxIterations:    maxIterations,
		IdeaPath:         opts.IdeaPath,
		WritingsDir:      opts.WritingsDir,
		Instructions:     opts.Instructions,
		UserFeedback:     []models.FeedbackEvent{},
		IterationHistory: []models.HistoryEntry{},
	}

	m := &Manager{repo: repo, logger: logger, state: state}

	if err := m.save(ctx); err != nil {
		return nil, err
	}

	m.logger.Info("Created session", "session_id", state.SessionID, "max_iterations", maxIterations)

	return m, nil
}

// Load resumes an existing session from the store.
func Load(ctx context.Context, repo persistence.SessionRepository, logger *slog.Logger, sessionID string) (*Manager, error) {
	state, err := repo.StateByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	logger.Info("Resumed session",
		"session_id", state.SessionID,
		"stage", state.Stage,
		"iteration", state.Iteration,
	)

	return &Manager{repo: repo, logger: logger, state: state}, nil
}

// LoadLatest resumes the most recently updated session in the registry.
func LoadLatest(ctx context.Context, repo persistence.SessionRepository, logger *slog.Logger) (*Manager, error) {
	id, err := repo.LatestSessionID(ctx)
	if err != nil {
		return nil, err
	}

	return Load(ctx, repo, logger, id)
}

// State returns the current session record. Callers must treat it as
// read-only; mutation happens through Manager methods.
func (m *Manager) State() *models.SessionState {
	return m.state
}

// AdvanceStage moves the session to the next stage, appends an audit entry
// and persists. Transitions outside the allowed forward order are rejected.
func (m *Manager) AdvanceStage(ctx context.Context, next models.Stage) error {
	from := m.state.Stage

	if !from.CanTransition(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, next)
	}

	m.state.Stage = next
	m.appendHistory("stage_transition", from, next, "")

	if err := m.save(ctx); err != nil {
		m.state.Stage = from
		m.dropLastHistory()

		return err
	}

	m.logger.Info("Stage transition", "session_id", m.state.SessionID, "from", from, "to", next)

	return nil
}

// IncrementIteration atomically bumps the iteration counter, rejecting the
// increment when it would exceed the configured bound. A rejection leaves
// state unchanged; callers check this before issuing any generation work.
func (m *Manager) IncrementIteration(ctx context.Context) error {
	if m.state.Bounded() && m.state.Iteration+1 > m.state.MaxIterations {
		m.logger.Warn("Iteration budget exhausted",
			"session_id", m.state.SessionID,
			"max_iterations", m.state.MaxIterations,
		)

		return fmt.Errorf("%w: max %d", ErrIterationBudgetExhausted, m.state.MaxIterations)
	}

	m.state.Iteration++
	m.appendHistory("iteration_started", "", "", fmt.Sprintf("iteration %d", m.state.Iteration))

	if err := m.save(ctx); err != nil {
		m.state.Iteration--
		m.dropLastHistory()

		return err
	}

	m.logger.Info("Iteration", "session_id", m.state.SessionID,
		"iteration", m.state.Iteration, "max_iterations", m.state.MaxIterations)

	return nil
}

// SetStyleProfile stores the extracted style profile and persists.
func (m *Manager) SetStyleProfile(ctx context.Context, profile *models.StyleProfile) error {
	m.state.StyleProfile = profile

	return m.save(ctx)
}

// UpdateDraft overwrites the current draft, writes the immutable
// per-iteration draft file, and persists. The draft file failing to write is
// surfaced: draft content must never be lost to a partial failure.
func (m *Manager) UpdateDraft(ctx context.Context, draft string) (string, error) {
	m.state.CurrentDraft = draft

	path, err := m.repo.SaveDraft(ctx, m.state.SessionID, m.state.Iteration, draft)
	if err != nil {
		return "", err
	}

	if err := m.save(ctx); err != nil {
		return "", err
	}

	return path, nil
}

// SetReviews stores the latest reviewer verdicts, overwriting the previous
// pass, and persists.
func (m *Manager) SetReviews(ctx context.Context, source, style *models.ReviewerVerdict) error {
	m.state.SourceReview = source
	m.state.StyleReview = style

	return m.save(ctx)
}

// AddUserFeedback appends to the feedback audit log, tagged with the current
// iteration, and persists. The log is never pruned.
func (m *Manager) AddUserFeedback(ctx context.Context, action models.Action, requests []string) error {
	m.state.UserFeedback = append(m.state.UserFeedback, models.FeedbackEvent{
		Iteration: m.state.Iteration,
		Action:    action,
		Requests:  requests,
		Timestamp: time.Now().UTC(),
	})

	return m.save(ctx)
}

// SetOutputPath records where the final article was written.
func (m *Manager) SetOutputPath(ctx context.Context, path string) error {
	m.state.OutputPath = path

	return m.save(ctx)
}

// SetIllustratedOutputPath records where the illustrated article was written.
func (m *Manager) SetIllustratedOutputPath(ctx context.Context, path string) error {
	m.state.IllustratedOutputPath = path

	return m.save(ctx)
}

// Reset replaces the session with a brand-new record carrying a fresh
// identifier. The old record stays in the store for audit.
func (m *Manager) Reset(ctx context.Context) error {
	fresh := &models.SessionState{
		SessionID:        uuid.New().String(),
		Stage:            models.StageInitialized,
		MaxIterations:    m.state.MaxIterations,
		IdeaPath:         m.state.IdeaPath,
		WritingsDir:      m.state.WritingsDir,
		Instructions:     m.state.Instructions,
		UserFeedback:     []models.FeedbackEvent{},
		IterationHistory: []models.HistoryEntry{},
	}

	old := m.state.SessionID
	m.state = fresh

	if err := m.save(ctx); err != nil {
		return err
	}

	m.logger.Info("Session reset", "old_session_id", old, "session_id", fresh.SessionID)

	return nil
}

func (m *Manager) appendHistory(event string, from, to models.Stage, detail string) {
	m.state.IterationHistory = append(m.state.IterationHistory, models.HistoryEntry{
		Event:     event,
		FromStage: from,
		ToStage:   to,
		Iteration: m.state.Iteration,
		Detail:    detail,
		Timestamp: time.Now().UTC(),
	})
}

// dropLastHistory undoes the entry appended for a transition whose save
// failed, so the audit trail never records a change that was rolled back.
func (m *Manager) dropLastHistory() {
	if n := len(m.state.IterationHistory); n > 0 {
		m.state.IterationHistory = m.state.IterationHistory[:n-1]
	}
}

func (m *Manager) save(ctx context.Context) error {
	return m.repo.SaveState(ctx, m.state)
}
