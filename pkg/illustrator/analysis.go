package illustrator

import (
	"fmt"
	"strings"

	"github.com/inkwell-ai/inkwell/pkg/markdown"
	"github.com/inkwell-ai/inkwell/pkg/models"
)

// AnalyzeContent picks up to maxImages illustration points, spread evenly
// across the article's level-2 sections. The title heading never gets an
// image; a short article with few sections gets fewer images.
func AnalyzeContent(content string, maxImages int) []models.IllustrationPoint {
	if maxImages <= 0 {
		return nil
	}

	var sections []markdown.Section

	for _, section := range markdown.Sections(content) {
		if section.Level == 2 {
			sections = append(sections, section)
		}
	}

	if len(sections) == 0 {
		return nil
	}

	count := min(maxImages, len(sections))

	// even spread: for n points over m sections, take every m/n-th section
	points := make([]models.IllustrationPoint, 0, count)

	for i := range count {
		idx := i * len(sections) / count
		section := sections[idx]

		importance := "medium"
		if i == 0 {
			importance = "high"
		}

		points = append(points, models.IllustrationPoint{
			SectionTitle: section.Title,
			SectionIndex: idx,
			LineNumber:   section.Line,
			Importance:   importance,
			Placement:    models.PlacementBeforeSection,
		})
	}

	return points
}

// BuildPrompts turns illustration points into image prompts, seeding each
// with the section title, a slice of surrounding article text, and the
// requested style.
func BuildPrompts(content string, points []models.IllustrationPoint, style string) []models.ImagePrompt {
	lines := strings.Split(content, "\n")
	title := markdown.ExtractTitle(content)

	prompts := make([]models.ImagePrompt, 0, len(points))

	for i, point := range points {
		context := sectionExcerpt(lines, point.LineNumber)

		base := fmt.Sprintf(
			"An illustration for a blog post titled %q, for the section %q. The section discusses: %s",
			title, point.SectionTitle, context)

		full := base
		if style != "" {
			full = fmt.Sprintf("%s Style: %s.", base, style)
		} else {
			full = base + " Style: clean editorial illustration, no text in the image."
		}

		prompts = append(prompts, models.ImagePrompt{
			Index:      i,
			Point:      point,
			BasePrompt: base,
			FullPrompt: full,
		})
	}

	return prompts
}

// sectionExcerpt grabs a few content lines following the heading to ground
// the prompt in what the section actually says.
func sectionExcerpt(lines []string, headingLine int) string {
	const maxExcerptChars = 400

	var b strings.Builder

	for i := headingLine; i < len(lines) && b.Len() < maxExcerptChars; i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" || strings.HasPrefix(line, "#") {
			if strings.HasPrefix(line, "#") && i > headingLine {
				break
			}

			continue
		}

		b.WriteString(line)
		b.WriteString(" ")
	}

	excerpt := strings.TrimSpace(b.String())
	if len(excerpt) > maxExcerptChars {
		excerpt = excerpt[:maxExcerptChars]
	}

	return excerpt
}
