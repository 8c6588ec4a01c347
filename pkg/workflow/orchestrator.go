// Package workflow drives the end-to-end blog creation loop: style
// extraction, draft generation, and the review/revise cycle, persisting
// around every external call so a crashed run resumes where it stopped.
package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/inkwell-ai/inkwell/pkg/eventbus"
	"github.com/inkwell-ai/inkwell/pkg/events"
	"github.com/inkwell-ai/inkwell/pkg/feedback"
	"github.com/inkwell-ai/inkwell/pkg/generation"
	"github.com/inkwell-ai/inkwell/pkg/illustrator"
	"github.com/inkwell-ai/inkwell/pkg/markdown"
	"github.com/inkwell-ai/inkwell/pkg/models"
	"github.com/inkwell-ai/inkwell/pkg/persistence"
	"github.com/inkwell-ai/inkwell/pkg/review"
	"github.com/inkwell-ai/inkwell/pkg/session"
)

// IllustrationTimeout is the hard wall-clock bound on the illustration
// hand-off. Past it the phase is cancelled and the run reported complete
// without images.
const IllustrationTimeout = 30 * time.Minute

// FeedbackProvider collects the user's decision on a reviewed draft. The CLI
// implementation prompts interactively; the web implementation waits on a
// feedback endpoint; tests supply canned answers.
type FeedbackProvider interface {
	GetFeedback(ctx context.Context, state *models.SessionState, result *models.ReviewResult, draftPath string) (models.Action, []string, error)
}

// Orchestrator composes the session manager, external capabilities and the
// progress bus into one workflow run.
type Orchestrator struct {
	session  *session.Manager
	repo     persistence.SessionRepository
	styles   generation.StyleExtractor
	drafts   generation.DraftGenerator
	source   generation.SourceReviewer
	style    generation.StyleReviewer
	feedback FeedbackProvider
	images   illustrator.Illustrator
	bus      eventbus.EventPublisher
	logger   *slog.Logger
}

// Deps bundles the orchestrator's collaborators. Images and Bus are optional.
type Deps struct {
	Session        *session.Manager
	Repo           persistence.SessionRepository
	Styles         generation.StyleExtractor
	Drafts         generation.DraftGenerator
	SourceReviewer generation.SourceReviewer
	StyleReviewer  generation.StyleReviewer
	Feedback       FeedbackProvider
	Illustrator    illustrator.Illustrator
	Bus            eventbus.EventPublisher
	Logger         *slog.Logger
}

func NewOrchestrator(deps Deps) *Orchestrator {
	return &Orchestrator{
		session:  deps.Session,
		repo:     deps.Repo,
		styles:   deps.Styles,
		drafts:   deps.Drafts,
		source:   deps.SourceReviewer,
		style:    deps.StyleReviewer,
		feedback: deps.Feedback,
		images:   deps.Illustrator,
		bus:      deps.Bus,
		logger:   deps.Logger,
	}
}

// RunOptions control one invocation of the workflow.
type RunOptions struct {
	WithImages bool
	MaxImages  int
	ImageStyle string
	ImagesDir  string
}

// Result reports where the run ended up.
type Result struct {
	OutputPath            string
	IllustratedOutputPath string
	Iterations            int
	Stage                 models.Stage
}

// Run executes the workflow from whatever stage the session was last
// persisted in. Completed stages are skipped, never re-run; any error aborts
// only the in-flight step and leaves the last persisted state intact for a
// later resume.
func (o *Orchestrator) Run(ctx context.Context, brief string, opts RunOptions) (*Result, error) {
	started := time.Now()
	state := o.session.State()

	if err := o.runStyleExtraction(ctx); err != nil {
		return nil, o.fail(ctx, err)
	}

	if err := o.runDraftGeneration(ctx, brief); err != nil {
		return nil, o.fail(ctx, err)
	}

	if err := o.runReviewLoop(ctx, brief); err != nil {
		return nil, o.fail(ctx, err)
	}

	outputPath, err := o.saveOutput(ctx)
	if err != nil {
		return nil, o.fail(ctx, err)
	}

	illustratedPath := o.runIllustration(ctx, outputPath, opts)

	if state.Stage != models.StageComplete {
		if err := o.session.AdvanceStage(ctx, models.StageComplete); err != nil {
			return nil, o.fail(ctx, err)
		}
	}

	o.publish(ctx, events.WorkflowCompleted{
		BaseEvent:             o.base(events.WorkflowCompletedEventType),
		OutputPath:            outputPath,
		IllustratedOutputPath: illustratedPath,
		Iterations:            state.Iteration,
		Duration:              time.Since(started),
	})

	return &Result{
		OutputPath:            outputPath,
		IllustratedOutputPath: illustratedPath,
		Iterations:            state.Iteration,
		Stage:                 state.Stage,
	}, nil
}

func (o *Orchestrator) runStyleExtraction(ctx context.Context) error {
	state := o.session.State()

	if state.Stage != models.StageInitialized {
		return nil // already done in a previous run
	}

	o.publishStageStarted(ctx, models.StageStyleExtracted, "Analyzing writing samples")

	profile, err := o.styles.Extract(ctx, state.WritingsDir)
	if err != nil {
		return fmt.Errorf("style extraction: %w", err)
	}

	if err := o.session.SetStyleProfile(ctx, profile); err != nil {
		return err
	}

	if err := o.session.AdvanceStage(ctx, models.StageStyleExtracted); err != nil {
		return err
	}

	o.publish(ctx, events.StageCompleted{
		BaseEvent: o.base(events.StageCompletedEvent),
		Stage:     models.StageStyleExtracted,
	})

	return nil
}

func (o *Orchestrator) runDraftGeneration(ctx context.Context, brief string) error {
	state := o.session.State()

	if state.Stage != models.StageStyleExtracted {
		return nil
	}

	o.publishStageStarted(ctx, models.StageDraftWritten, "Writing initial draft")

	draft, err := o.drafts.Generate(ctx, generation.GenerateRequest{
		Brief:        brief,
		Style:        state.StyleProfile,
		Instructions: state.Instructions,
	})
	if err != nil {
		// the run always gets a draft to iterate on
		o.logger.Error("Initial generation failed, using fallback transform", "error", err)

		draft = generation.FallbackDraft(brief)
	}

	draftPath, err := o.session.UpdateDraft(ctx, draft)
	if err != nil {
		return err
	}

	if err := o.session.AdvanceStage(ctx, models.StageDraftWritten); err != nil {
		return err
	}

	o.publish(ctx, events.DraftUpdated{
		BaseEvent: o.base(events.DraftUpdatedEvent),
		Iteration: state.Iteration,
		DraftPath: draftPath,
		WordCount: markdown.WordCount(draft),
	})

	return nil
}

func (o *Orchestrator) runReviewLoop(ctx context.Context, brief string) error {
	state := o.session.State()

	for state.Stage.InReviewLoop() {
		// budget check happens before any generation work is issued
		if err := o.session.IncrementIteration(ctx); err != nil {
			if session.IsBudgetExhausted(err) {
				o.logger.Info("Iteration budget exhausted, keeping best available draft",
					"session_id", state.SessionID, "iterations", state.Iteration)

				return nil
			}

			return err
		}

		o.publish(ctx, events.IterationStarted{
			BaseEvent:     o.base(events.IterationStartedEvent),
			Iteration:     state.Iteration,
			MaxIterations: state.MaxIterations,
		})

		result, err := o.runReview(ctx, brief)
		if err != nil {
			return err
		}

		action, requests, err := o.collectFeedback(ctx, result)
		if err != nil {
			return fmt.Errorf("collecting feedback: %w", err)
		}

		if err := o.session.AddUserFeedback(ctx, action, requests); err != nil {
			return err
		}

		reconciled := feedback.Reconcile(action, requests, result)

		if reconciled.IsApproved() {
			o.logger.Info("Draft approved", "session_id", state.SessionID, "iteration", state.Iteration)

			return nil
		}

		if reconciled.Action == models.ActionSkip {
			// no issues and nothing requested: the loop has converged
			o.logger.Info("No outstanding issues, accepting draft",
				"session_id", state.SessionID, "iteration", state.Iteration)

			return nil
		}

		if err := o.runRevision(ctx, brief, reconciled); err != nil {
			return err
		}
	}

	return nil
}

// runReview runs both reviewers; a failed reviewer contributes the safe
// default verdict rather than blocking the loop.
func (o *Orchestrator) runReview(ctx context.Context, brief string) (*models.ReviewResult, error) {
	state := o.session.State()

	sourceVerdict, err := o.source.ReviewSource(ctx, state.CurrentDraft, brief, state.Instructions)
	if err != nil {
		o.logger.Warn("Source review failed, substituting safe verdict", "error", err)

		sourceVerdict = nil
	}

	styleVerdict, err := o.style.ReviewStyle(ctx, state.CurrentDraft, state.StyleProfile)
	if err != nil {
		o.logger.Warn("Style review failed, substituting safe verdict", "error", err)

		styleVerdict = nil
	}

	result := review.Aggregate(o.logger, sourceVerdict, styleVerdict)

	if err := o.session.SetReviews(ctx, result.Source, result.Style); err != nil {
		return nil, err
	}

	o.publish(ctx, events.ReviewCompleted{
		BaseEvent:     o.base(events.ReviewCompletedEvent),
		Iteration:     state.Iteration,
		SourceIssues:  len(result.SourceIssues()),
		StyleIssues:   len(result.StyleIssues()),
		NeedsRevision: result.NeedsRevision(),
	})

	return result, nil
}

func (o *Orchestrator) collectFeedback(ctx context.Context, result *models.ReviewResult) (models.Action, []string, error) {
	state := o.session.State()

	draftPath, err := o.repo.SaveDraft(ctx, state.SessionID, state.Iteration, state.CurrentDraft)
	if err != nil {
		return "", nil, err
	}

	o.publish(ctx, events.FeedbackRequired{
		BaseEvent: o.base(events.FeedbackRequiredEvent),
		Iteration: state.Iteration,
		DraftPath: draftPath,
	})

	return o.feedback.GetFeedback(ctx, state, result, draftPath)
}

// runRevision asks the generator for a revision. A failed call keeps the
// previous draft; the loop moves on rather than losing work.
func (o *Orchestrator) runRevision(ctx context.Context, brief string, reconciled *models.RevisionFeedback) error {
	state := o.session.State()

	revised, err := o.drafts.Generate(ctx, generation.GenerateRequest{
		Brief:         brief,
		Style:         state.StyleProfile,
		PreviousDraft: state.CurrentDraft,
		Feedback:      reconciled,
		Instructions:  state.Instructions,
	})
	if err != nil {
		o.logger.Error("Revision failed, keeping previous draft", "error", err)

		return nil
	}

	draftPath, err := o.session.UpdateDraft(ctx, revised)
	if err != nil {
		return err
	}

	if err := o.session.AdvanceStage(ctx, models.StageRevisionComplete); err != nil {
		return err
	}

	o.publish(ctx, events.DraftUpdated{
		BaseEvent: o.base(events.DraftUpdatedEvent),
		Iteration: state.Iteration,
		DraftPath: draftPath,
		WordCount: markdown.WordCount(revised),
	})

	return nil
}

func (o *Orchestrator) saveOutput(ctx context.Context) (string, error) {
	state := o.session.State()

	if state.OutputPath != "" {
		return state.OutputPath, nil // already written in a previous run
	}

	name := "blog_post.md"
	if title := markdown.ExtractTitle(state.CurrentDraft); title != "" {
		if slug := markdown.Slugify(title); slug != "" {
			name = slug + ".md"
		}
	}

	path, err := o.repo.SaveOutput(ctx, state.SessionID, name, state.CurrentDraft)
	if err != nil {
		return "", err
	}

	if err := o.session.SetOutputPath(ctx, path); err != nil {
		return "", err
	}

	return path, nil
}

// runIllustration hands off to the illustrator under a hard timeout.
// Failures are logged and swallowed: they never roll back the article.
func (o *Orchestrator) runIllustration(ctx context.Context, outputPath string, opts RunOptions) string {
	if !opts.WithImages || o.images == nil {
		return ""
	}

	imagesDir := opts.ImagesDir
	if imagesDir == "" {
		imagesDir = filepath.Join(filepath.Dir(outputPath), "images")
	}

	illustrationCtx, cancel := context.WithTimeout(ctx, IllustrationTimeout)
	defer cancel()

	o.publish(ctx, events.IllustrationProgress{
		BaseEvent: o.base(events.IllustrationProgressEvent),
		Message:   "Generating illustrations",
		Total:     opts.MaxImages,
	})

	illustratedPath, err := o.images.Run(illustrationCtx, outputPath, imagesDir, opts.ImageStyle, opts.MaxImages)
	if err != nil {
		o.logger.Error("Illustration failed, keeping unillustrated article", "error", err)

		return ""
	}

	if illustratedPath == outputPath {
		return ""
	}

	if err := o.session.SetIllustratedOutputPath(ctx, illustratedPath); err != nil {
		o.logger.Error("Failed to record illustrated output path", "error", err)
	}

	return illustratedPath
}

func (o *Orchestrator) fail(ctx context.Context, err error) error {
	state := o.session.State()

	o.logger.Error("Workflow run aborted",
		"session_id", state.SessionID, "stage", state.Stage, "error", err)

	o.publish(ctx, events.WorkflowFailed{
		BaseEvent: o.base(events.WorkflowFailedEventType),
		Stage:     state.Stage,
		Error:     err.Error(),
	})

	return err
}

func (o *Orchestrator) base(eventType events.EventType) events.BaseEvent {
	return events.BaseEvent{
		ID:        o.session.State().SessionID + "-" + string(eventType),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		SessionID: o.session.State().SessionID,
	}
}

func (o *Orchestrator) publishStageStarted(ctx context.Context, stage models.Stage, message string) {
	o.publish(ctx, events.StageStarted{
		BaseEvent: o.base(events.StageStartedEvent),
		Stage:     stage,
		Message:   message,
	})
}

func (o *Orchestrator) publish(ctx context.Context, event eventbus.Event) {
	if o.bus == nil {
		return
	}

	if err := o.bus.Publish(ctx, o.session.State().SessionID, event); err != nil {
		o.logger.Warn("Failed to publish progress event", "event_type", event.GetType(), "error", err)
	}
}
