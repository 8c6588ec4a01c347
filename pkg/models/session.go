// Package models defines the core domain models for the blog creation workflow.
package models

import "time"

// Stage represents a named checkpoint in the workflow's forward progression.
type Stage string

const (
	StageInitialized      Stage = "initialized"       // Session created, nothing run yet
	StageStyleExtracted   Stage = "style_extracted"   // Style profile available
	StageDraftWritten     Stage = "draft_written"     // Initial draft generated
	StageRevisionComplete Stage = "revision_complete" // At least one revision applied
	StageComplete         Stage = "complete"          // Terminal
)

// DefaultMaxIterations bounds the review/revise loop unless the caller opts
// into a different bound at session creation.
const DefaultMaxIterations = 10

// UnboundedIterations disables the iteration bound. It must be passed
// explicitly; a zero value never means "unbounded".
const UnboundedIterations = -1

// allowedTransitions is the closed forward order of the stage machine. The
// review loop alternates between draft_written and revision_complete until
// either side reaches complete.
var allowedTransitions = map[Stage][]Stage{
	StageInitialized:      {StageStyleExtracted},
	StageStyleExtracted:   {StageDraftWritten},
	StageDraftWritten:     {StageRevisionComplete, StageComplete},
	StageRevisionComplete: {StageRevisionComplete, StageDraftWritten, StageComplete},
	StageComplete:         {},
}

// CanTransition reports whether moving from one stage to the next is a legal
// forward transition.
func (s Stage) CanTransition(next Stage) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}

	return false
}

// InReviewLoop reports whether the session is inside the review/revise loop.
func (s Stage) InReviewLoop() bool {
	return s == StageDraftWritten || s == StageRevisionComplete
}

// Valid reports whether the stage belongs to the closed enumeration.
func (s Stage) Valid() bool {
	_, ok := allowedTransitions[s]

	return ok
}

// HistoryEntry is one audit record in a session's iteration history. The
// workflow only ever appends; nothing reads these back for control flow.
type HistoryEntry struct {
	Event     string    `json:"event"`
	FromStage Stage     `json:"from_stage,omitempty"`
	ToStage   Stage     `json:"to_stage,omitempty"`
	Iteration int       `json:"iteration"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// FeedbackEvent is one entry in the append-only user feedback log, tagged
// with the iteration it occurred in.
type FeedbackEvent struct {
	Iteration int       `json:"iteration"`
	Action    Action    `json:"action"`
	Requests  []string  `json:"requests,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// SessionState is the complete persisted record of one workflow run. It is
// owned by session.Manager; no other component writes it.
type SessionState struct {
	SessionID     string    `json:"session_id"     validate:"required"`
	Stage         Stage     `json:"stage"          validate:"required"`
	Iteration     int       `json:"iteration"      validate:"gte=0"`
	MaxIterations int       `json:"max_iterations" validate:"required"`

	IdeaPath     string `json:"idea_path,omitempty"`
	WritingsDir  string `json:"writings_dir,omitempty"`
	Instructions string `json:"instructions,omitempty"`

	StyleProfile *StyleProfile `json:"style_profile,omitempty"`
	CurrentDraft string        `json:"current_draft"`

	SourceReview *ReviewerVerdict `json:"source_review,omitempty"`
	StyleReview  *ReviewerVerdict `json:"style_review,omitempty"`

	UserFeedback     []FeedbackEvent `json:"user_feedback"`
	IterationHistory []HistoryEntry  `json:"iteration_history"`

	OutputPath            string `json:"output_path,omitempty"`
	IllustratedOutputPath string `json:"illustrated_output_path,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Bounded reports whether the iteration budget applies to this session.
func (s *SessionState) Bounded() bool {
	return s.MaxIterations != UnboundedIterations
}

// SessionInfo is the registry entry kept in the session index, used to list
// and resume sessions without scanning directories.
type SessionInfo struct {
	SessionID string    `json:"session_id"`
	Stage     Stage     `json:"stage"`
	Iteration int       `json:"iteration"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
