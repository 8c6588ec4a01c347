package generation

import (
	"fmt"
	"strings"
)

// FallbackDraft is the minimal transform used when the initial generation
// call fails: the brief itself, lightly framed as a post, so the run always
// has a draft to iterate on.
func FallbackDraft(brief string) string {
	title := "Draft"

	for _, line := range strings.Split(brief, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			title = strings.TrimPrefix(line, "# ")

			break
		}
	}

	return fmt.Sprintf("# %s\n\n%s\n", title, strings.TrimSpace(brief))
}
