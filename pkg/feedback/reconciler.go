// Package feedback normalizes reviewer findings and user input into one
// revision instruction set.
package feedback

import (
	"github.com/inkwell-ai/inkwell/pkg/models"
)

// Reconcile applies the feedback decision table:
//
//	approve                      -> approve, loop exits
//	explicit free-text requests  -> revise, reviewer issues + user requests
//	skip, reviewer found issues  -> implicit revise, reviewer issues only
//	skip, no issues              -> skip, loop continues unchanged
//
// A user who does nothing while the reviewers found problems still gets an
// automatic revision pass; only an explicit approval or a no-issues skip
// terminates the loop.
func Reconcile(action models.Action, userRequests []string, review *models.ReviewResult) *models.RevisionFeedback {
	if action == models.ActionApprove {
		return &models.RevisionFeedback{Action: models.ActionApprove}
	}

	if len(userRequests) > 0 {
		return &models.RevisionFeedback{
			Action:       models.ActionRevise,
			SourceIssues: review.SourceIssues(),
			StyleIssues:  review.StyleIssues(),
			UserRequests: userRequests,
		}
	}

	if review.NeedsRevision() {
		return &models.RevisionFeedback{
			Action:       models.ActionRevise,
			SourceIssues: review.SourceIssues(),
			StyleIssues:  review.StyleIssues(),
		}
	}

	return &models.RevisionFeedback{Action: models.ActionSkip}
}
