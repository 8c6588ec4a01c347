// Package illustrator generates contextual images for a finished article and
// inserts them into the markdown. It runs only after the core workflow
// completes, and its failures never roll back the article.
package illustrator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/inkwell-ai/inkwell/pkg/markdown"
	"github.com/inkwell-ai/inkwell/pkg/models"
)

// Illustrator produces an illustrated copy of an article.
type Illustrator interface {
	Run(ctx context.Context, articlePath, outputDir, style string, maxImages int) (string, error)
}

// ImageGenerator renders one prompt to an image file and returns its path.
// Implemented by the OpenAI images client; faked in tests.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt, outputPath string) error
}

// ProgressFunc receives human-readable progress updates.
type ProgressFunc func(message string, generated, total int)

// Pipeline implements Illustrator: analyze sections, build prompts, fan out
// image generation, insert references at the recorded line numbers.
type Pipeline struct {
	generator ImageGenerator
	logger    *slog.Logger
	progress  ProgressFunc
}

func NewPipeline(generator ImageGenerator, logger *slog.Logger, progress ProgressFunc) *Pipeline {
	if progress == nil {
		progress = func(string, int, int) {}
	}

	return &Pipeline{generator: generator, logger: logger, progress: progress}
}

// Run generates up to maxImages illustrations and writes
// <name>_illustrated.md next to the images. When no illustration points are
// found or every generation fails, the original article path is returned
// unchanged.
func (p *Pipeline) Run(ctx context.Context, articlePath, outputDir, style string, maxImages int) (string, error) {
	body, err := os.ReadFile(filepath.Clean(articlePath))
	if err != nil {
		return "", fmt.Errorf("failed to read article: %w", err)
	}

	content := string(body)

	p.progress("Analyzing content structure...", 0, 0)

	points := AnalyzeContent(content, maxImages)
	if len(points) == 0 {
		p.logger.Warn("No illustration points identified", "article", articlePath)

		return articlePath, nil
	}

	prompts := BuildPrompts(content, points, style)

	p.progress(fmt.Sprintf("Identified %d illustration points", len(points)), 0, len(prompts))

	if err := os.MkdirAll(outputDir, 0750); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	images := p.generateAll(ctx, prompts, outputDir)
	if len(images) == 0 {
		p.logger.Warn("No images generated", "article", articlePath)

		return articlePath, nil
	}

	illustrated := insertImages(content, images, filepath.Dir(articlePath))

	outPath := illustratedPath(articlePath)

	if err := os.WriteFile(outPath, []byte(illustrated), 0600); err != nil {
		return "", fmt.Errorf("failed to write illustrated article: %w", err)
	}

	p.progress("Illustration complete", len(images), len(prompts))

	return outPath, nil
}

// generateAll fans out one goroutine per prompt. Each result lands in its
// precomputed slot so ordering never matters; failures only cost their own
// slot (gather-all-then-filter-successes).
func (p *Pipeline) generateAll(ctx context.Context, prompts []models.ImagePrompt, outputDir string) []models.GeneratedImage {
	slots := make([]*models.GeneratedImage, len(prompts))

	group, groupCtx := errgroup.WithContext(ctx)

	for _, prompt := range prompts {
		group.Go(func() error {
			imagePath := filepath.Join(outputDir, fmt.Sprintf("illustration-%d.png", prompt.Index+1))

			if err := p.generator.GenerateImage(groupCtx, prompt.FullPrompt, imagePath); err != nil {
				p.logger.Error("Image generation failed",
					"index", prompt.Index, "section", prompt.Point.SectionTitle, "error", err)

				return nil // one failed image never fails the batch
			}

			slots[prompt.Index] = &models.GeneratedImage{
				Index: prompt.Index,
				Point: prompt.Point,
				Path:  imagePath,
				Alt:   prompt.Point.SectionTitle,
			}

			p.progress(fmt.Sprintf("Generated illustration %d of %d", prompt.Index+1, len(prompts)),
				prompt.Index+1, len(prompts))

			return nil
		})
	}

	_ = group.Wait()

	images := make([]models.GeneratedImage, 0, len(slots))

	for _, slot := range slots {
		if slot != nil {
			images = append(images, *slot)
		}
	}

	return images
}

func insertImages(content string, images []models.GeneratedImage, articleDir string) string {
	inserts := make(map[int]string, len(images))

	for _, image := range images {
		rel, err := filepath.Rel(articleDir, image.Path)
		if err != nil {
			rel = image.Path
		}

		inserts[image.Point.LineNumber] = fmt.Sprintf("![%s](%s)", image.Alt, filepath.ToSlash(rel))
	}

	return markdown.InsertImages(content, inserts)
}

func illustratedPath(articlePath string) string {
	ext := filepath.Ext(articlePath)

	return strings.TrimSuffix(articlePath, ext) + "_illustrated" + ext
}
