package web

import (
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"

	"github.com/inkwell-ai/inkwell/pkg/persistence"
)

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType("not_found").
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

func conflict(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(409).
		WithInstance(c.Path()).
		WithType("conflict").
		WithDetail(detail)

	return c.Status(fiber.StatusConflict).JSON(problem)
}

func internalError(c fiber.Ctx, err error) error {
	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithError(err)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleRepositoryError maps store errors onto RFC 7807 responses.
func handleRepositoryError(c fiber.Ctx, err error) error {
	switch {
	case persistence.IsSessionNotFound(err):
		return notFound(c, "session not found")
	case persistence.IsCorruptState(err):
		problem := problems.NewStatusProblem(500).
			WithInstance(c.Path()).
			WithType("corrupt_state").
			WithDetail("session state is unreadable")

		return c.Status(fiber.StatusInternalServerError).JSON(problem)
	default:
		return internalError(c, err)
	}
}
