package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleArticle = `# Shipping Small

Intro paragraph.

## Why Small Batches Win

Some text.

## The Cost of Big Releases

More text.

### A Digression

Nested text.
`

func TestSections(t *testing.T) {
	sections := Sections(sampleArticle)

	require.Len(t, sections, 4)

	assert.Equal(t, "Shipping Small", sections[0].Title)
	assert.Equal(t, 1, sections[0].Level)
	assert.Equal(t, 1, sections[0].Line)

	assert.Equal(t, "Why Small Batches Win", sections[1].Title)
	assert.Equal(t, 2, sections[1].Level)
	assert.Equal(t, 5, sections[1].Line)

	assert.Equal(t, "A Digression", sections[3].Title)
	assert.Equal(t, 3, sections[3].Level)
}

func TestSections_EmptyDocument(t *testing.T) {
	assert.Empty(t, Sections(""))
	assert.Empty(t, Sections("just a paragraph with no headings"))
}

func TestExtractTitle(t *testing.T) {
	assert.Equal(t, "Shipping Small", ExtractTitle(sampleArticle))
	assert.Equal(t, "", ExtractTitle("## Only A Subheading\n\ntext"))
	assert.Equal(t, "", ExtractTitle(""))
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Shipping Small", "shipping-small"},
		{"Hello, World!", "hello-world"},
		{"  spaced   out  ", "spaced-out"},
		{"under_scores_too", "under-scores-too"},
		{"Already-Slugged", "already-slugged"},
		{"???", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), "input %q", tt.in)
	}
}

func TestInsertImages(t *testing.T) {
	content := "line one\nline two\nline three"

	result := InsertImages(content, map[int]string{
		2: "![alt](images/a.png)",
	})

	lines := strings.Split(result, "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "line one", lines[0])
	assert.Equal(t, "", lines[1])
	assert.Equal(t, "![alt](images/a.png)", lines[2])
	assert.Equal(t, "", lines[3])
	assert.Equal(t, "line two", lines[4])
}

func TestInsertImages_MultipleKeepLineNumbersValid(t *testing.T) {
	content := "a\nb\nc\nd"

	result := InsertImages(content, map[int]string{
		1: "![one](1.png)",
		3: "![three](3.png)",
	})

	// both images land before their original lines
	oneIdx := strings.Index(result, "![one](1.png)")
	threeIdx := strings.Index(result, "![three](3.png)")
	bIdx := strings.Index(result, "b")

	require.GreaterOrEqual(t, oneIdx, 0)
	require.GreaterOrEqual(t, threeIdx, 0)
	assert.Less(t, oneIdx, bIdx)
	assert.Less(t, bIdx, threeIdx)
}

func TestInsertImages_NoInserts(t *testing.T) {
	assert.Equal(t, "unchanged", InsertImages("unchanged", nil))
}

func TestWordCount(t *testing.T) {
	assert.Equal(t, 0, WordCount(""))
	assert.Equal(t, 5, WordCount("five words are in here"))
	assert.Equal(t, 2, WordCount("  spaced \n words \n"))
}
