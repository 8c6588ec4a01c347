package web

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/inkwell-ai/inkwell/pkg/eventbus"
	"github.com/inkwell-ai/inkwell/pkg/generation"
	"github.com/inkwell-ai/inkwell/pkg/illustrator"
	"github.com/inkwell-ai/inkwell/pkg/models"
	"github.com/inkwell-ai/inkwell/pkg/persistence"
	"github.com/inkwell-ai/inkwell/pkg/session"
	"github.com/inkwell-ai/inkwell/pkg/workflow"
)

// RunTimeout bounds one API-initiated workflow run end to end.
const RunTimeout = 30 * time.Minute

var (
	ErrRunInProgress     = errors.New("a run is already in progress for this session")
	ErrNoActiveRun       = errors.New("no active run for this session")
	ErrNoPendingFeedback = errors.New("run is not waiting for feedback")
)

// Capabilities are the external services a workflow run needs. The API
// process builds them once at startup.
type Capabilities struct {
	Styles         generation.StyleExtractor
	Drafts         generation.DraftGenerator
	SourceReviewer generation.SourceReviewer
	StyleReviewer  generation.StyleReviewer
	Illustrator    illustrator.Illustrator
}

// Runner executes workflow runs in the background and bridges feedback
// requests to the HTTP layer. At most one run per session is active.
type Runner struct {
	repo   persistence.SessionRepository
	caps   Capabilities
	bus    eventbus.EventBus
	logger *slog.Logger

	mu     sync.Mutex
	active map[string]*activeRun
}

type activeRun struct {
	cancel   context.CancelFunc
	feedback *channelFeedback
}

func NewRunner(repo persistence.SessionRepository, caps Capabilities, bus eventbus.EventBus, logger *slog.Logger) *Runner {
	return &Runner{
		repo:   repo,
		caps:   caps,
		bus:    bus,
		logger: logger,
		active: make(map[string]*activeRun),
	}
}

// Start launches a workflow run for the given session in the background.
// A second start for the same session fails with ErrRunInProgress.
func (r *Runner) Start(manager *session.Manager, brief string, opts workflow.RunOptions) error {
	sessionID := manager.State().SessionID

	feedback := newChannelFeedback()

	runCtx, cancel := context.WithTimeout(context.Background(), RunTimeout)

	r.mu.Lock()
	if _, exists := r.active[sessionID]; exists {
		r.mu.Unlock()
		cancel()

		return ErrRunInProgress
	}

	r.active[sessionID] = &activeRun{cancel: cancel, feedback: feedback}
	r.mu.Unlock()

	orchestrator := workflow.NewOrchestrator(workflow.Deps{
		Session:        manager,
		Repo:           r.repo,
		Styles:         r.caps.Styles,
		Drafts:         r.caps.Drafts,
		SourceReviewer: r.caps.SourceReviewer,
		StyleReviewer:  r.caps.StyleReviewer,
		Feedback:       feedback,
		Illustrator:    r.caps.Illustrator,
		Bus:            r.bus,
		Logger:         r.logger,
	})

	go func() {
		defer cancel()
		defer r.remove(sessionID)

		result, err := orchestrator.Run(runCtx, brief, opts)
		if err != nil {
			r.logger.Error("Background run failed", "session_id", sessionID, "error", err)

			return
		}

		r.logger.Info("Background run completed",
			"session_id", sessionID,
			"output_path", result.OutputPath,
			"iterations", result.Iterations,
		)
	}()

	return nil
}

// Feedback delivers the user's decision to a run blocked on it.
func (r *Runner) Feedback(sessionID string, action models.Action, requests []string) error {
	r.mu.Lock()
	run, exists := r.active[sessionID]
	r.mu.Unlock()

	if !exists {
		return ErrNoActiveRun
	}

	return run.feedback.deliver(action, requests)
}

// IsRunning reports whether the session has an active background run.
func (r *Runner) IsRunning(sessionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, exists := r.active[sessionID]

	return exists
}

// Shutdown cancels all active runs.
func (r *Runner) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for sessionID, run := range r.active {
		r.logger.Info("Cancelling active run", "session_id", sessionID)
		run.cancel()
	}
}

func (r *Runner) remove(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.active, sessionID)
}

type feedbackAnswer struct {
	action   models.Action
	requests []string
}

// channelFeedback adapts the feedback endpoint to the workflow's blocking
// FeedbackProvider contract.
type channelFeedback struct {
	answers chan feedbackAnswer
	waiting atomic.Bool
}

func newChannelFeedback() *channelFeedback {
	return &channelFeedback{answers: make(chan feedbackAnswer)}
}

func (f *channelFeedback) GetFeedback(ctx context.Context, _ *models.SessionState, _ *models.ReviewResult, _ string) (models.Action, []string, error) {
	f.waiting.Store(true)
	defer f.waiting.Store(false)

	select {
	case <-ctx.Done():
		return "", nil, ctx.Err()
	case answer := <-f.answers:
		return answer.action, answer.requests, nil
	}
}

func (f *channelFeedback) deliver(action models.Action, requests []string) error {
	if !f.waiting.Load() {
		return ErrNoPendingFeedback
	}

	select {
	case f.answers <- feedbackAnswer{action: action, requests: requests}:
		return nil
	case <-time.After(time.Second):
		return ErrNoPendingFeedback
	}
}
