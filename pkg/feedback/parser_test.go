package feedback

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDraftComments(t *testing.T) {
	draft := `# Shipping Fast

Line one of the intro.
Line two of the intro. [make this punchier]
Line three of the intro.

## Details

More text here.`

	items := ParseDraftComments(draft)

	require.Len(t, items, 1)
	assert.Equal(t, "make this punchier", items[0].Comment)
	assert.Equal(t, 4, items[0].LineNumber)
}

func TestParseDraftComments_CapturesSurroundingContext(t *testing.T) {
	lines := []string{"l1", "l2", "l3", "l4", "l5", "l6 [fix this]", "l7", "l8"}

	items := ParseDraftComments(strings.Join(lines, "\n"))

	require.Len(t, items, 1)
	assert.Equal(t, []string{"l2", "l3", "l4", "l5"}, items[0].ContextBefore)
	assert.Equal(t, []string{"l7", "l8"}, items[0].ContextAfter)
}

func TestParseDraftComments_SkipsMarkdownLinks(t *testing.T) {
	draft := "See [the docs](https://example.com) for details. [but cite a source]"

	items := ParseDraftComments(draft)

	require.Len(t, items, 1)
	assert.Equal(t, "but cite a source", items[0].Comment)
}

func TestParseDraftComments_MultiplePerLine(t *testing.T) {
	items := ParseDraftComments("text [first] middle [second] end")

	require.Len(t, items, 2)
	assert.Equal(t, "first", items[0].Comment)
	assert.Equal(t, "second", items[1].Comment)
}

func TestParseDraftComments_NoComments(t *testing.T) {
	assert.Empty(t, ParseDraftComments("plain text\nwith no marks"))
}

func TestIsApproval(t *testing.T) {
	assert.True(t, IsApproval([]Item{{Comment: "Approve"}}))
	assert.True(t, IsApproval([]Item{{Comment: "looks good, approved"}}))
	assert.False(t, IsApproval([]Item{{Comment: "fix the ending"}}))
	assert.False(t, IsApproval(nil))
}

func TestFormatRequests(t *testing.T) {
	items := ParseDraftComments("before\ntarget [reword] line\nafter")

	requests := FormatRequests(items)

	require.Len(t, requests, 1)
	assert.Contains(t, requests[0], ">>> USER FEEDBACK: [reword] (at line 2)")
	assert.Contains(t, requests[0], "before")
	assert.Contains(t, requests[0], "after")
}
