package review

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-ai/inkwell/pkg/models"
)

func testLogger() *slog.Logger {
	return slog.Default()
}

func TestAggregate_NilVerdictsGetSafeDefault(t *testing.T) {
	result := Aggregate(testLogger(), nil, nil)

	require.NotNil(t, result.Source)
	require.NotNil(t, result.Style)
	assert.False(t, result.NeedsRevision())
	assert.Equal(t, 0, result.TotalIssues())
}

func TestAggregate_EitherReviewerForcesRevision(t *testing.T) {
	result := Aggregate(testLogger(),
		&models.ReviewerVerdict{NeedsRevision: true, Issues: []string{"wrong date"}},
		&models.ReviewerVerdict{NeedsRevision: false},
	)

	assert.True(t, result.NeedsRevision())

	result = Aggregate(testLogger(),
		&models.ReviewerVerdict{NeedsRevision: false},
		&models.ReviewerVerdict{NeedsRevision: true, Issues: []string{"off voice"}},
	)

	assert.True(t, result.NeedsRevision())
}

func TestAggregate_ConsistencyScoreBelowFloorForcesRevision(t *testing.T) {
	result := Aggregate(testLogger(),
		&models.ReviewerVerdict{},
		&models.ReviewerVerdict{ConsistencyScore: 0.69},
	)

	assert.True(t, result.Style.NeedsRevision)
	assert.True(t, result.NeedsRevision())
}

func TestAggregate_ConsistencyScoreAtFloorPasses(t *testing.T) {
	result := Aggregate(testLogger(),
		&models.ReviewerVerdict{},
		&models.ReviewerVerdict{ConsistencyScore: 0.7},
	)

	assert.False(t, result.Style.NeedsRevision)
	assert.False(t, result.NeedsRevision())
}

func TestAggregate_AccuracyScoreBelowFloorForcesRevision(t *testing.T) {
	result := Aggregate(testLogger(),
		&models.ReviewerVerdict{AccuracyScore: 0.79},
		&models.ReviewerVerdict{},
	)

	assert.True(t, result.Source.NeedsRevision)
}

func TestAggregate_AccuracyScoreAtFloorPasses(t *testing.T) {
	result := Aggregate(testLogger(),
		&models.ReviewerVerdict{AccuracyScore: 0.8},
		&models.ReviewerVerdict{},
	)

	assert.False(t, result.Source.NeedsRevision)
}

func TestAggregate_ZeroScoreMeansUnscored(t *testing.T) {
	// reviewers that never returned a score must not trip the floor
	result := Aggregate(testLogger(),
		&models.ReviewerVerdict{AccuracyScore: 0},
		&models.ReviewerVerdict{ConsistencyScore: 0},
	)

	assert.False(t, result.NeedsRevision())
}

func TestAggregate_FloorDoesNotMutateInput(t *testing.T) {
	verdict := &models.ReviewerVerdict{ConsistencyScore: 0.5}

	Aggregate(testLogger(), nil, verdict)

	assert.False(t, verdict.NeedsRevision)
}
