package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/inkwell-ai/inkwell/pkg/feedback"
	"github.com/inkwell-ai/inkwell/pkg/models"
)

// consoleFeedback collects the user's decision interactively. The user edits
// the draft file in their own editor, marking requests as [bracketed
// comments], then answers the prompt.
type consoleFeedback struct {
	in  *bufio.Reader
	out io.Writer
}

func newConsoleFeedback(in io.Reader, out io.Writer) *consoleFeedback {
	return &consoleFeedback{in: bufio.NewReader(in), out: out}
}

func (f *consoleFeedback) GetFeedback(ctx context.Context, state *models.SessionState, result *models.ReviewResult, draftPath string) (models.Action, []string, error) {
	f.printReviewSummary(state, result)

	fmt.Fprintf(f.out, "\nDraft saved to: %s\n", draftPath)
	fmt.Fprintln(f.out, "Edit the draft and add [bracketed comments] for changes, then answer:")
	fmt.Fprintln(f.out, "  done    - apply your comments from the draft file")
	fmt.Fprintln(f.out, "  approve - accept the draft as-is")
	fmt.Fprintln(f.out, "  skip    - continue with reviewer feedback only")

	for {
		if err := ctx.Err(); err != nil {
			return "", nil, err
		}

		fmt.Fprint(f.out, "> ")

		line, err := f.in.ReadString('\n')
		if err != nil {
			return "", nil, fmt.Errorf("reading feedback: %w", err)
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "approve", "a":
			return models.ActionApprove, nil, nil
		case "skip", "s":
			return models.ActionSkip, nil, nil
		case "done", "d":
			return f.readDraftComments(state, draftPath)
		default:
			fmt.Fprintln(f.out, "Please answer 'done', 'approve' or 'skip'.")
		}
	}
}

// readDraftComments prefers the draft file the user edited. Stores that hand
// back an opaque draft location instead of a local path fall back to the
// in-memory draft.
func (f *consoleFeedback) readDraftComments(state *models.SessionState, draftPath string) (models.Action, []string, error) {
	content := state.CurrentDraft

	raw, err := os.ReadFile(filepath.Clean(draftPath))
	if err == nil {
		content = string(raw)
	} else if content == "" {
		return "", nil, fmt.Errorf("reading edited draft: %w", err)
	}

	items := feedback.ParseDraftComments(content)

	if feedback.IsApproval(items) {
		return models.ActionApprove, nil, nil
	}

	if len(items) == 0 {
		fmt.Fprintln(f.out, "No comments found in the draft, continuing with reviewer feedback only.")

		return models.ActionSkip, nil, nil
	}

	fmt.Fprintf(f.out, "Found %d comment(s).\n", len(items))

	return models.ActionRevise, feedback.FormatRequests(items), nil
}

func (f *consoleFeedback) printReviewSummary(state *models.SessionState, result *models.ReviewResult) {
	fmt.Fprintf(f.out, "\n--- Review (iteration %d", state.Iteration)

	if state.Bounded() {
		fmt.Fprintf(f.out, "/%d", state.MaxIterations)
	}

	fmt.Fprintln(f.out, ") ---")

	if result == nil {
		fmt.Fprintln(f.out, "No review available.")

		return
	}

	printVerdict(f.out, "Source accuracy", result.Source)
	printVerdict(f.out, "Style consistency", result.Style)

	if !result.NeedsRevision() {
		fmt.Fprintln(f.out, "Reviewers found no blocking issues.")
	}
}

func printVerdict(out io.Writer, label string, verdict *models.ReviewerVerdict) {
	if verdict == nil {
		fmt.Fprintf(out, "%s: no verdict\n", label)

		return
	}

	fmt.Fprintf(out, "%s:\n", label)

	for _, issue := range verdict.Issues {
		fmt.Fprintf(out, "  - %s\n", issue)
	}

	if len(verdict.Issues) == 0 {
		fmt.Fprintln(out, "  no issues")
	}
}
