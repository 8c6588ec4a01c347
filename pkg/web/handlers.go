// Package web provides the HTTP surface for managing blog creation sessions:
// REST endpoints plus a server-sent progress stream fed by the event bus.
package web

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/inkwell-ai/inkwell/pkg/events"
	"github.com/inkwell-ai/inkwell/pkg/models"
	"github.com/inkwell-ai/inkwell/pkg/persistence"
	"github.com/inkwell-ai/inkwell/pkg/session"
	"github.com/inkwell-ai/inkwell/pkg/workflow"
)

const streamKeepAlive = 15 * time.Second

type APIHandlers struct {
	repo      persistence.SessionRepository
	runner    *Runner
	broker    *ProgressBroker
	validator *validator.Validate
	logger    *slog.Logger
}

func NewAPIHandlers(
	repo persistence.SessionRepository,
	runner *Runner,
	broker *ProgressBroker,
	validator *validator.Validate,
	logger *slog.Logger,
) *APIHandlers {
	return &APIHandlers{
		repo:      repo,
		runner:    runner,
		broker:    broker,
		validator: validator,
		logger:    logger,
	}
}

func (h *APIHandlers) CreateSession(c fiber.Ctx) error {
	var req CreateSessionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	manager, err := session.New(c.Context(), h.repo, h.logger, session.Options{
		WritingsDir:   req.WritingsDir,
		Instructions:  req.Instructions,
		MaxIterations: req.MaxIterations,
	})
	if err != nil {
		return internalError(c, err)
	}

	err = h.runner.Start(manager, req.Brief, workflow.RunOptions{
		WithImages: req.WithImages,
		MaxImages:  req.MaxImages,
		ImageStyle: req.ImageStyle,
	})
	if err != nil {
		return internalError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(manager.State())
}

func (h *APIHandlers) GetSessions(c fiber.Ctx) error {
	sessions, err := h.repo.Sessions(c.Context())
	if err != nil {
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

func (h *APIHandlers) GetSession(c fiber.Ctx) error {
	state, err := h.sessionState(c)
	if err != nil {
		return handleRepositoryError(c, err)
	}

	return c.JSON(state)
}

func (h *APIHandlers) GetDraft(c fiber.Ctx) error {
	state, err := h.sessionState(c)
	if err != nil {
		return handleRepositoryError(c, err)
	}

	if state.CurrentDraft == "" {
		return notFound(c, "session has no draft yet")
	}

	c.Set(fiber.HeaderContentType, "text/markdown; charset=utf-8")

	return c.SendString(state.CurrentDraft)
}

func (h *APIHandlers) PostFeedback(c fiber.Ctx) error {
	sessionID := c.Params("id")
	if sessionID == "" {
		return badRequest(c, "Session ID is required")
	}

	var req FeedbackRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	err := h.runner.Feedback(sessionID, models.Action(req.Action), req.Requests)

	switch {
	case errors.Is(err, ErrNoActiveRun):
		return conflict(c, "session has no active run")
	case errors.Is(err, ErrNoPendingFeedback):
		return conflict(c, "run is not waiting for feedback")
	case err != nil:
		return internalError(c, err)
	}

	return c.JSON(fiber.Map{"status": "accepted"})
}

func (h *APIHandlers) ResetSession(c fiber.Ctx) error {
	sessionID := c.Params("id")
	if sessionID == "" {
		return badRequest(c, "Session ID is required")
	}

	if h.runner.IsRunning(sessionID) {
		return conflict(c, "cannot reset a session with an active run")
	}

	manager, err := session.Load(c.Context(), h.repo, h.logger, sessionID)
	if err != nil {
		return handleRepositoryError(c, err)
	}

	if err := manager.Reset(c.Context()); err != nil {
		return internalError(c, err)
	}

	return c.JSON(manager.State())
}

// StreamProgress serves the session's progress events as SSE. The stream
// closes when the run completes or the consumer disconnects.
func (h *APIHandlers) StreamProgress(c fiber.Ctx) error {
	state, err := h.sessionState(c)
	if err != nil {
		return handleRepositoryError(c, err)
	}

	stream, cancel := h.broker.Subscribe(state.SessionID)

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	return c.SendStreamWriter(func(w *bufio.Writer) {
		defer cancel()

		for {
			select {
			case event, open := <-stream:
				if !open {
					return
				}

				if err := writeServerSentEvent(w, event); err != nil {
					return
				}

				if event.Type == events.WorkflowCompletedEventType || event.Type == events.WorkflowFailedEventType {
					return
				}
			case <-time.After(streamKeepAlive):
				if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
					return
				}

				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	})
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	status := "healthy"
	message := "Inkwell API is healthy"
	httpStatus := http.StatusOK

	if err := h.repo.HealthCheck(c.Context()); err != nil {
		status = "unhealthy"
		message = "Inkwell API is unhealthy: " + err.Error()
		httpStatus = http.StatusInternalServerError
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":    status,
		"message":   message,
		"timestamp": time.Now().UTC(),
	})
}

func (h *APIHandlers) sessionState(c fiber.Ctx) (*models.SessionState, error) {
	sessionID := c.Params("id")
	if sessionID == "" {
		return nil, persistence.ErrSessionNotFound
	}

	return h.repo.StateByID(c.Context(), sessionID)
}

func writeServerSentEvent(w *bufio.Writer, event sessionEvent) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, payload); err != nil {
		return err
	}

	return w.Flush()
}
