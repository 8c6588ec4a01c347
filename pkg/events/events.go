// Package events defines typed progress events for the blog creation
// workflow. Observers (CLI display, web SSE stream) subscribe to these
// instead of hooking callbacks into control flow.
package events

import (
	"time"

	"github.com/inkwell-ai/inkwell/pkg/models"
)

type EventType string

const Topic = "inkwell.progress"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	StageStartedEvent     EventType = "workflow.stage.started"
	StageCompletedEvent   EventType = "workflow.stage.completed"
	IterationStartedEvent EventType = "workflow.iteration.started"
	DraftUpdatedEvent     EventType = "workflow.draft.updated"
	ReviewCompletedEvent  EventType = "workflow.review.completed"
	FeedbackRequiredEvent EventType = "workflow.feedback.required"
	WorkflowCompletedEventType EventType = "workflow.completed"
	WorkflowFailedEventType    EventType = "workflow.failed"
	IllustrationProgressEvent  EventType = "illustration.progress"
)

type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id"`
}

// GetSessionID lets observers route an event to the session it belongs to
// without switching on the concrete type.
func (e BaseEvent) GetSessionID() string {
	return e.SessionID
}

type StageStarted struct {
	BaseEvent

	Stage   models.Stage `json:"stage"`
	Message string       `json:"message,omitempty"`
}

func (e StageStarted) GetType() EventType {
	return StageStartedEvent
}

type StageCompleted struct {
	BaseEvent

	Stage models.Stage `json:"stage"`
}

func (e StageCompleted) GetType() EventType {
	return StageCompletedEvent
}

type IterationStarted struct {
	BaseEvent

	Iteration     int `json:"iteration"`
	MaxIterations int `json:"max_iterations"`
}

func (e IterationStarted) GetType() EventType {
	return IterationStartedEvent
}

type DraftUpdated struct {
	BaseEvent

	Iteration int    `json:"iteration"`
	DraftPath string `json:"draft_path,omitempty"`
	WordCount int    `json:"word_count"`
}

func (e DraftUpdated) GetType() EventType {
	return DraftUpdatedEvent
}

type ReviewCompleted struct {
	BaseEvent

	Iteration     int  `json:"iteration"`
	SourceIssues  int  `json:"source_issues"`
	StyleIssues   int  `json:"style_issues"`
	NeedsRevision bool `json:"needs_revision"`
}

func (e ReviewCompleted) GetType() EventType {
	return ReviewCompletedEvent
}

// FeedbackRequired tells interactive observers the loop is waiting on the
// user's approve/skip/revise decision.
type FeedbackRequired struct {
	BaseEvent

	Iteration int    `json:"iteration"`
	DraftPath string `json:"draft_path,omitempty"`
}

func (e FeedbackRequired) GetType() EventType {
	return FeedbackRequiredEvent
}

type WorkflowCompleted struct {
	BaseEvent

	OutputPath            string        `json:"output_path"`
	IllustratedOutputPath string        `json:"illustrated_output_path,omitempty"`
	Iterations            int           `json:"iterations"`
	Duration              time.Duration `json:"duration"`
}

func (e WorkflowCompleted) GetType() EventType {
	return WorkflowCompletedEventType
}

type WorkflowFailed struct {
	BaseEvent

	Stage models.Stage `json:"stage"`
	Error string       `json:"error"`
}

func (e WorkflowFailed) GetType() EventType {
	return WorkflowFailedEventType
}

type IllustrationProgress struct {
	BaseEvent

	Message   string `json:"message"`
	Generated int    `json:"generated"`
	Total     int    `json:"total"`
}

func (e IllustrationProgress) GetType() EventType {
	return IllustrationProgressEvent
}
