// Package generation defines the external model capabilities the workflow
// calls out to, and their OpenAI-backed implementations. Credentials and
// model names arrive through explicit Config; nothing here reads the
// environment.
package generation

import (
	"context"

	"github.com/inkwell-ai/inkwell/pkg/models"
)

// Config carries everything a capability needs to talk to the model API.
type Config struct {
	APIKey  string `validate:"required"`
	Model   string `validate:"required"`
	BaseURL string
}

// StyleExtractor derives a style profile from writing samples. It never
// fails for "no samples found"; it returns the documented default profile.
type StyleExtractor interface {
	Extract(ctx context.Context, samplesDir string) (*models.StyleProfile, error)
}

// GenerateRequest describes one draft generation or revision call.
type GenerateRequest struct {
	Brief         string
	Style         *models.StyleProfile
	PreviousDraft string                   // empty for the initial draft
	Feedback      *models.RevisionFeedback // nil for the initial draft
	Instructions  string
}

// DraftGenerator produces or revises draft text. Callers substitute the
// previous draft (revision) or a fallback transform (initial) on failure
// rather than propagating.
type DraftGenerator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// SourceReviewer judges a draft's accuracy against the original brief.
// Implementations return the safe default verdict on internal failure.
type SourceReviewer interface {
	ReviewSource(ctx context.Context, draft, brief, instructions string) (*models.ReviewerVerdict, error)
}

// StyleReviewer judges a draft's consistency against a style profile.
// Implementations return the safe default verdict on internal failure.
type StyleReviewer interface {
	ReviewStyle(ctx context.Context, draft string, style *models.StyleProfile) (*models.ReviewerVerdict, error)
}
