// Package review merges the two independent reviewer verdicts into one
// revise/continue decision.
package review

import (
	"log/slog"

	"github.com/inkwell-ai/inkwell/pkg/models"
)

// Score floors. A verdict is never weaker than these policies, whatever the
// reviewer's own flag said.
const (
	StyleConsistencyFloor = 0.7
	SourceAccuracyFloor   = 0.8
)

// Aggregate combines the source and style verdicts. Either reviewer can force
// a revision; issue buckets stay separate so feedback can cite provenance.
// A nil verdict (failed reviewer call) is replaced by the safe default so a
// single reviewer failure never blocks the loop.
func Aggregate(logger *slog.Logger, source, style *models.ReviewerVerdict) *models.ReviewResult {
	if source == nil {
		logger.Warn("Source reviewer unavailable, substituting safe verdict")

		source = models.SafeVerdict()
	}

	if style == nil {
		logger.Warn("Style reviewer unavailable, substituting safe verdict")

		style = models.SafeVerdict()
	}

	source = applyAccuracyFloor(logger, source)
	style = applyConsistencyFloor(logger, style)

	return &models.ReviewResult{Source: source, Style: style}
}

// applyConsistencyFloor forces a revision when the style consistency score is
// below the floor. A score of exactly the floor passes.
func applyConsistencyFloor(logger *slog.Logger, verdict *models.ReviewerVerdict) *models.ReviewerVerdict {
	if verdict.ConsistencyScore > 0 && verdict.ConsistencyScore < StyleConsistencyFloor && !verdict.NeedsRevision {
		logger.Info("Consistency score below floor, forcing revision",
			"score", verdict.ConsistencyScore, "floor", StyleConsistencyFloor)

		forced := *verdict
		forced.NeedsRevision = true

		return &forced
	}

	return verdict
}

func applyAccuracyFloor(logger *slog.Logger, verdict *models.ReviewerVerdict) *models.ReviewerVerdict {
	if verdict.AccuracyScore > 0 && verdict.AccuracyScore < SourceAccuracyFloor && !verdict.NeedsRevision {
		logger.Info("Accuracy score below floor, forcing revision",
			"score", verdict.AccuracyScore, "floor", SourceAccuracyFloor)

		forced := *verdict
		forced.NeedsRevision = true

		return &forced
	}

	return verdict
}
