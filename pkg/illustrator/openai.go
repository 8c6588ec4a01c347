package illustrator

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIImageGenerator renders prompts with the OpenAI images API.
type OpenAIImageGenerator struct {
	model string
	opts  []option.RequestOption
}

// NewOpenAIImageGenerator builds an image generator from explicit config.
// Model defaults to dall-e-3.
func NewOpenAIImageGenerator(apiKey, model, baseURL string) (*OpenAIImageGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("api key is required")
	}

	if model == "" {
		model = string(openai.ImageModelDallE3)
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	return &OpenAIImageGenerator{model: model, opts: opts}, nil
}

func (g *OpenAIImageGenerator) GenerateImage(ctx context.Context, prompt, outputPath string) error {
	client := openai.NewClient(g.opts...)

	resp, err := client.Images.Generate(ctx, openai.ImageGenerateParams{
		Prompt:         prompt,
		Model:          openai.ImageModel(g.model),
		N:              openai.Int(1),
		Size:           openai.ImageGenerateParamsSize1024x1024,
		ResponseFormat: openai.ImageGenerateParamsResponseFormatB64JSON,
	})
	if err != nil {
		return fmt.Errorf("image generation failed: %w", err)
	}

	if len(resp.Data) == 0 {
		return errors.New("image generation returned no data")
	}

	payload, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return fmt.Errorf("failed to decode image payload: %w", err)
	}

	if err := os.WriteFile(outputPath, payload, 0600); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}

	return nil
}
