package feedback

import (
	"fmt"
	"regexp"
	"strings"
)

var bracketPattern = regexp.MustCompile(`\[([^\]]+)\]`)

// contextLines is how many surrounding lines are captured per comment so the
// revision prompt can locate the request in the draft.
const contextLines = 4

// Item is one bracketed comment found in the user-edited draft.
type Item struct {
	Comment       string
	LineNumber    int
	ContextBefore []string
	ContextAfter  []string
}

// ParseDraftComments extracts [bracketed comments] from an edited draft,
// with surrounding context. Users mark up the draft file in their editor;
// this turns those marks into structured revision requests.
func ParseDraftComments(content string) []Item {
	lines := strings.Split(content, "\n")

	var items []Item

	for i, line := range lines {
		for _, match := range bracketPattern.FindAllStringSubmatch(line, -1) {
			// markdown links carry brackets too; skip [text](url) forms
			if idx := strings.Index(line, "["+match[1]+"]"); idx >= 0 &&
				idx+len(match[1])+2 < len(line) && line[idx+len(match[1])+2] == '(' {
				continue
			}

			start := max(0, i-contextLines)
			end := min(len(lines), i+contextLines+1)

			items = append(items, Item{
				Comment:       match[1],
				LineNumber:    i + 1,
				ContextBefore: lines[start:i],
				ContextAfter:  lines[i+1 : end],
			})
		}
	}

	return items
}

// FormatRequests renders parsed comments into the free-text request list the
// reconciler and the draft generator consume.
func FormatRequests(items []Item) []string {
	requests := make([]string, 0, len(items))

	for _, item := range items {
		var b strings.Builder

		if len(item.ContextBefore) > 0 {
			b.WriteString("Context before:\n")

			for _, line := range item.ContextBefore {
				if strings.TrimSpace(line) != "" {
					fmt.Fprintf(&b, "  %s\n", line)
				}
			}
		}

		fmt.Fprintf(&b, ">>> USER FEEDBACK: [%s] (at line %d)\n", item.Comment, item.LineNumber)

		if len(item.ContextAfter) > 0 {
			b.WriteString("Context after:\n")

			for _, line := range item.ContextAfter {
				if strings.TrimSpace(line) != "" {
					fmt.Fprintf(&b, "  %s\n", line)
				}
			}
		}

		requests = append(requests, strings.TrimRight(b.String(), "\n"))
	}

	return requests
}

// IsApproval reports whether any comment is an approval ("approve" anywhere
// in the comment text).
func IsApproval(items []Item) bool {
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Comment), "approve") {
			return true
		}
	}

	return false
}
