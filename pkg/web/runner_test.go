package web

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-ai/inkwell/pkg/generation"
	"github.com/inkwell-ai/inkwell/pkg/models"
	"github.com/inkwell-ai/inkwell/pkg/persistence/file"
	"github.com/inkwell-ai/inkwell/pkg/session"
	"github.com/inkwell-ai/inkwell/pkg/workflow"
)

// stubLLM answers every capability instantly with benign defaults.
type stubLLM struct{}

func (stubLLM) Extract(_ context.Context, _ string) (*models.StyleProfile, error) {
	return models.DefaultStyleProfile(), nil
}

func (stubLLM) Generate(_ context.Context, _ generation.GenerateRequest) (string, error) {
	return "# Stub Post\n\nBody.", nil
}

func (stubLLM) ReviewSource(_ context.Context, _, _, _ string) (*models.ReviewerVerdict, error) {
	return models.SafeVerdict(), nil
}

func (stubLLM) ReviewStyle(_ context.Context, _ string, _ *models.StyleProfile) (*models.ReviewerVerdict, error) {
	return models.SafeVerdict(), nil
}

func stubCapabilities() Capabilities {
	return Capabilities{
		Styles:         stubLLM{},
		Drafts:         stubLLM{},
		SourceReviewer: stubLLM{},
		StyleReviewer:  stubLLM{},
	}
}

func newRunnerEnv(t *testing.T) (*Runner, *session.Manager, *file.Repository) {
	t.Helper()

	repo := file.NewRepository(t.TempDir())
	runner := NewRunner(repo, stubCapabilities(), nil, slog.Default())

	manager, err := session.New(t.Context(), repo, slog.Default(), session.Options{WritingsDir: t.TempDir()})
	require.NoError(t, err)

	return runner, manager, repo
}

// approveWhenAsked keeps answering the pending feedback request until the run
// accepts one.
func approveWhenAsked(t *testing.T, runner *Runner, sessionID string) {
	t.Helper()

	require.Eventually(t, func() bool {
		return runner.Feedback(sessionID, models.ActionApprove, nil) == nil
	}, 5*time.Second, 10*time.Millisecond)
}

func TestRunner_StartRunsToCompletion(t *testing.T) {
	runner, manager, repo := newRunnerEnv(t)
	sessionID := manager.State().SessionID

	require.NoError(t, runner.Start(manager, "brief", workflow.RunOptions{}))

	approveWhenAsked(t, runner, sessionID)

	require.Eventually(t, func() bool {
		return !runner.IsRunning(sessionID)
	}, 5*time.Second, 10*time.Millisecond)

	state, err := repo.StateByID(t.Context(), sessionID)
	require.NoError(t, err)
	assert.Equal(t, models.StageComplete, state.Stage)
	assert.NotEmpty(t, state.OutputPath)
}

func TestRunner_SecondStartIsRejected(t *testing.T) {
	runner, manager, _ := newRunnerEnv(t)
	sessionID := manager.State().SessionID

	require.NoError(t, runner.Start(manager, "brief", workflow.RunOptions{}))

	err := runner.Start(manager, "brief", workflow.RunOptions{})
	assert.ErrorIs(t, err, ErrRunInProgress)

	approveWhenAsked(t, runner, sessionID)

	require.Eventually(t, func() bool {
		return !runner.IsRunning(sessionID)
	}, 5*time.Second, 10*time.Millisecond)
}

func TestRunner_FeedbackWithoutRun(t *testing.T) {
	runner, manager, _ := newRunnerEnv(t)

	err := runner.Feedback(manager.State().SessionID, models.ActionApprove, nil)

	assert.ErrorIs(t, err, ErrNoActiveRun)
}

func TestRunner_FeedbackBeforeCheckpointIsRejected(t *testing.T) {
	// a feedback channel with no waiting run rejects delivery
	feedback := newChannelFeedback()

	assert.ErrorIs(t, feedback.deliver(models.ActionApprove, nil), ErrNoPendingFeedback)
}
