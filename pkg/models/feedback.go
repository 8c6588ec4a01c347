package models

// Action is the user's explicit choice on a reviewed draft.
type Action string

const (
	ActionApprove Action = "approve"
	ActionRevise  Action = "revise"
	ActionSkip    Action = "skip"
)

// Valid reports whether the action belongs to the closed enumeration.
func (a Action) Valid() bool {
	switch a {
	case ActionApprove, ActionRevise, ActionSkip:
		return true
	}

	return false
}

// RevisionFeedback is the reconciled instruction set for one revision pass,
// merging reviewer findings with the user's explicit input.
type RevisionFeedback struct {
	Action       Action   `json:"action"`
	SourceIssues []string `json:"source_issues,omitempty"`
	StyleIssues  []string `json:"style_issues,omitempty"`
	UserRequests []string `json:"user_requests,omitempty"`
}

// IsApproved reports whether the user accepted the draft as-is.
func (f *RevisionFeedback) IsApproved() bool {
	return f.Action == ActionApprove
}

// HasFeedback reports whether there is actionable feedback for a revision.
func (f *RevisionFeedback) HasFeedback() bool {
	return len(f.UserRequests) > 0 || f.Action == ActionRevise
}
