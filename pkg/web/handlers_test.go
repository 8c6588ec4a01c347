package web

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-ai/inkwell/pkg/models"
	"github.com/inkwell-ai/inkwell/pkg/persistence/file"
)

func setupTestApp(t *testing.T) (*fiber.App, *file.Repository, *Runner) {
	t.Helper()

	repo := file.NewRepository(t.TempDir())
	runner := NewRunner(repo, stubCapabilities(), nil, slog.Default())
	broker := NewProgressBroker(slog.Default())
	handlers := NewAPIHandlers(repo, runner, broker, validator.New(validator.WithRequiredStructEnabled()), slog.Default())

	app := fiber.New()

	s := app.Group("/sessions")
	s.Post("/", handlers.CreateSession)
	s.Get("/", handlers.GetSessions)
	s.Get("/:id", handlers.GetSession)
	s.Get("/:id/draft", handlers.GetDraft)
	s.Post("/:id/feedback", handlers.PostFeedback)
	s.Post("/:id/reset", handlers.ResetSession)

	app.Get("/health", handlers.HealthCheck)

	return app, repo, runner
}

func closeBody(t *testing.T, resp *http.Response) {
	t.Helper()

	if err := resp.Body.Close(); err != nil {
		t.Logf("Failed to close response body: %v", err)
	}
}

func seedSession(t *testing.T, repo *file.Repository, id string, mutate func(*models.SessionState)) {
	t.Helper()

	state := &models.SessionState{
		SessionID:     id,
		Stage:         models.StageInitialized,
		MaxIterations: models.DefaultMaxIterations,
	}

	if mutate != nil {
		mutate(state)
	}

	require.NoError(t, repo.SaveState(t.Context(), state))
}

func TestAPI_HealthCheck(t *testing.T) {
	app, _, _ := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_GetSessions_Empty(t *testing.T) {
	app, _, _ := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/sessions/", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Sessions []*models.SessionInfo `json:"sessions"`
		Count    int                   `json:"count"`
	}

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 0, body.Count)
	assert.Empty(t, body.Sessions)
}

func TestAPI_GetSession(t *testing.T) {
	app, repo, _ := setupTestApp(t)

	seedSession(t, repo, "session-1", func(s *models.SessionState) {
		s.Stage = models.StageDraftWritten
		s.Iteration = 2
	})

	req := httptest.NewRequest(http.MethodGet, "/sessions/session-1", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var state models.SessionState
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	assert.Equal(t, "session-1", state.SessionID)
	assert.Equal(t, models.StageDraftWritten, state.Stage)
	assert.Equal(t, 2, state.Iteration)
}

func TestAPI_GetSession_NotFound(t *testing.T) {
	app, _, _ := setupTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/sessions/missing", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "json")
}

func TestAPI_CreateSession_ValidationError(t *testing.T) {
	app, _, _ := setupTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/sessions/", strings.NewReader(`{"writings_dir": "x"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_CreateSession_InvalidJSON(t *testing.T) {
	app, _, _ := setupTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/sessions/", strings.NewReader("{broken"))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_GetDraft(t *testing.T) {
	app, repo, _ := setupTestApp(t)

	seedSession(t, repo, "session-1", func(s *models.SessionState) {
		s.CurrentDraft = "# Draft\n\nBody."
	})

	req := httptest.NewRequest(http.MethodGet, "/sessions/session-1/draft", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "markdown")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "# Draft\n\nBody.", string(body))
}

func TestAPI_GetDraft_NoDraftYet(t *testing.T) {
	app, repo, _ := setupTestApp(t)

	seedSession(t, repo, "session-1", nil)

	req := httptest.NewRequest(http.MethodGet, "/sessions/session-1/draft", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_PostFeedback_NoActiveRun(t *testing.T) {
	app, repo, _ := setupTestApp(t)

	seedSession(t, repo, "session-1", nil)

	req := httptest.NewRequest(http.MethodPost, "/sessions/session-1/feedback",
		strings.NewReader(`{"action": "approve"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAPI_PostFeedback_InvalidAction(t *testing.T) {
	app, _, _ := setupTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/sessions/session-1/feedback",
		strings.NewReader(`{"action": "maybe"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_ResetSession(t *testing.T) {
	app, repo, _ := setupTestApp(t)

	seedSession(t, repo, "session-1", func(s *models.SessionState) {
		s.Stage = models.StageDraftWritten
		s.Iteration = 4
	})

	req := httptest.NewRequest(http.MethodPost, "/sessions/session-1/reset", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var state models.SessionState
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))

	assert.NotEqual(t, "session-1", state.SessionID)
	assert.Equal(t, models.StageInitialized, state.Stage)
	assert.Equal(t, 0, state.Iteration)
}

func TestAPI_ResetSession_NotFound(t *testing.T) {
	app, _, _ := setupTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/sessions/missing/reset", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	defer closeBody(t, resp)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
