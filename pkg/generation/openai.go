package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/inkwell-ai/inkwell/pkg/models"
)

const (
	maxStyleSamples       = 5
	maxSampleChars        = 3000
	styleExtractionSystem = "You are an expert writing style analyst."
	draftWriterSystem     = "You are an expert blog writer who can match any writing style."
)

// Client implements the generation capabilities on the OpenAI API.
type Client struct {
	model  string
	opts   []option.RequestOption
	logger *slog.Logger
}

// NewClient builds an OpenAI-backed capability client from explicit config.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("api key is required")
	}

	if cfg.Model == "" {
		return nil, errors.New("model is required")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Client{model: cfg.Model, opts: opts, logger: logger}, nil
}

func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	client := openai.NewClient(c.opts...)

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	})
	if err != nil {
		return "", fmt.Errorf("completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("completion returned no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Extract analyzes the markdown files under samplesDir and derives a style
// profile. No samples, unreadable samples and model failures all fall back to
// the documented default profile; extraction never blocks the workflow.
func (c *Client) Extract(ctx context.Context, samplesDir string) (*models.StyleProfile, error) {
	samples, err := readSamples(samplesDir)
	if err != nil {
		return nil, err
	}

	if len(samples) == 0 {
		c.logger.Warn("No writing samples found, using default style profile", "dir", samplesDir)

		return models.DefaultStyleProfile(), nil
	}

	content, err := c.complete(ctx, styleExtractionSystem, styleExtractionPrompt(samples))
	if err != nil {
		c.logger.Error("Style extraction failed, using default profile", "error", err)

		return models.DefaultStyleProfile(), nil
	}

	var profile models.StyleProfile

	if err := decodeValidated(content, profileSchemaLoader, &profile); err != nil {
		c.logger.Warn("Could not parse style response, using default profile", "error", err)

		return models.DefaultStyleProfile(), nil
	}

	fillProfileDefaults(&profile)

	return &profile, nil
}

// Generate produces the initial draft or a revision, depending on whether the
// request carries a previous draft and feedback.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	var prompt string

	if req.PreviousDraft != "" && req.Feedback != nil {
		c.logger.Info("Revising draft from feedback")

		prompt = revisionPrompt(req)
	} else {
		c.logger.Info("Writing initial draft")

		prompt = initialDraftPrompt(req)
	}

	return c.complete(ctx, draftWriterSystem, prompt)
}

// ReviewSource checks the draft's accuracy against the brief.
func (c *Client) ReviewSource(ctx context.Context, draft, brief, instructions string) (*models.ReviewerVerdict, error) {
	content, err := c.complete(ctx, "You are a meticulous fact reviewer.", sourceReviewPrompt(draft, brief, instructions))
	if err != nil {
		return nil, err
	}

	var verdict models.ReviewerVerdict

	if err := decodeValidated(content, verdictSchemaLoader, &verdict); err != nil {
		return nil, err
	}

	if verdict.Issues == nil {
		verdict.Issues = []string{}
	}

	// issues present means the draft is not clean, whatever the flag said
	if len(verdict.Issues) > 0 {
		verdict.NeedsRevision = true
	}

	return &verdict, nil
}

// ReviewStyle checks the draft's consistency against the style profile.
func (c *Client) ReviewStyle(ctx context.Context, draft string, style *models.StyleProfile) (*models.ReviewerVerdict, error) {
	content, err := c.complete(ctx, "You are an exacting writing style reviewer.", styleReviewPrompt(draft, style))
	if err != nil {
		return nil, err
	}

	var verdict models.ReviewerVerdict

	if err := decodeValidated(content, verdictSchemaLoader, &verdict); err != nil {
		return nil, err
	}

	if verdict.Issues == nil {
		verdict.Issues = []string{}
	}

	if len(verdict.Issues) > 0 {
		verdict.NeedsRevision = true
	}

	return &verdict, nil
}

// readSamples collects up to maxStyleSamples markdown files, truncated to
// keep the prompt within context limits. Sorted for stable output across runs.
func readSamples(dir string) ([]string, error) {
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to read samples directory: %w", err)
	}

	var paths []string

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() && strings.HasSuffix(path, ".md") {
			paths = append(paths, path)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk samples directory: %w", err)
	}

	sort.Strings(paths)

	if len(paths) > maxStyleSamples {
		paths = paths[:maxStyleSamples]
	}

	samples := make([]string, 0, len(paths))

	for _, path := range paths {
		body, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			continue
		}

		content := string(body)
		if len(content) > maxSampleChars {
			content = content[:maxSampleChars]
		}

		samples = append(samples, fmt.Sprintf("=== %s ===\n%s", filepath.Base(path), content))
	}

	return samples, nil
}

func fillProfileDefaults(profile *models.StyleProfile) {
	def := models.DefaultStyleProfile()

	if profile.Tone == "" {
		profile.Tone = def.Tone
	}

	if profile.Voice == "" {
		profile.Voice = def.Voice
	}

	if profile.VocabularyLevel == "" {
		profile.VocabularyLevel = def.VocabularyLevel
	}

	if profile.SentenceStructure == "" {
		profile.SentenceStructure = def.SentenceStructure
	}

	if profile.ParagraphLength == "" {
		profile.ParagraphLength = def.ParagraphLength
	}
}
