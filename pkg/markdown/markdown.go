// Package markdown provides article analysis helpers built on goldmark.
package markdown

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Section is one heading in the article, with the 1-based line number it
// starts on.
type Section struct {
	Title string
	Level int
	Line  int
}

func parse(source []byte) ast.Node {
	return goldmark.New().Parser().Parse(text.NewReader(source))
}

// lineOf converts a byte offset into a 1-based line number.
func lineOf(source []byte, offset int) int {
	return bytes.Count(source[:offset], []byte("\n")) + 1
}

// Sections returns every heading in the document in order.
func Sections(content string) []Section {
	source := []byte(content)
	doc := parse(source)

	var sections []Section

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		heading, ok := n.(*ast.Heading)
		if !ok || heading.Lines().Len() == 0 {
			return ast.WalkContinue, nil
		}

		segment := heading.Lines().At(0)

		sections = append(sections, Section{
			Title: string(heading.Text(source)),
			Level: heading.Level,
			Line:  lineOf(source, segment.Start),
		})

		return ast.WalkSkipChildren, nil
	})

	return sections
}

// ExtractTitle returns the first level-1 heading, or empty when the document
// has none.
func ExtractTitle(content string) string {
	for _, section := range Sections(content) {
		if section.Level == 1 {
			return section.Title
		}
	}

	return ""
}

var (
	slugSpaces  = regexp.MustCompile(`[\s_]+`)
	slugInvalid = regexp.MustCompile(`[^a-z0-9-]`)
	slugDashes  = regexp.MustCompile(`-+`)
)

// Slugify converts text into a URL-friendly file name component.
func Slugify(title string) string {
	slug := strings.ToLower(title)
	slug = slugSpaces.ReplaceAllString(slug, "-")
	slug = slugInvalid.ReplaceAllString(slug, "")
	slug = slugDashes.ReplaceAllString(slug, "-")

	return strings.Trim(slug, "-")
}

// InsertImages places markdown image references at the requested 1-based
// line numbers. Insertions are applied bottom-up so earlier line numbers stay
// valid.
func InsertImages(content string, inserts map[int]string) string {
	if len(inserts) == 0 {
		return content
	}

	lines := strings.Split(content, "\n")

	// collect and sort descending
	positions := make([]int, 0, len(inserts))
	for line := range inserts {
		positions = append(positions, line)
	}

	for i := 0; i < len(positions); i++ {
		for j := i + 1; j < len(positions); j++ {
			if positions[j] > positions[i] {
				positions[i], positions[j] = positions[j], positions[i]
			}
		}
	}

	for _, pos := range positions {
		idx := pos - 1
		if idx < 0 {
			idx = 0
		}

		if idx > len(lines) {
			idx = len(lines)
		}

		block := []string{"", inserts[pos], ""}
		lines = append(lines[:idx], append(block, lines[idx:]...)...)
	}

	return strings.Join(lines, "\n")
}

// WordCount counts whitespace-separated words.
func WordCount(content string) int {
	return len(strings.Fields(content))
}
