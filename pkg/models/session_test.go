package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStage_CanTransition(t *testing.T) {
	assert.True(t, StageInitialized.CanTransition(StageStyleExtracted))
	assert.True(t, StageStyleExtracted.CanTransition(StageDraftWritten))
	assert.True(t, StageDraftWritten.CanTransition(StageRevisionComplete))
	assert.True(t, StageRevisionComplete.CanTransition(StageRevisionComplete))
	assert.True(t, StageRevisionComplete.CanTransition(StageDraftWritten))
	assert.True(t, StageDraftWritten.CanTransition(StageComplete))
	assert.True(t, StageRevisionComplete.CanTransition(StageComplete))
}

func TestStage_CanTransition_RejectsSkipsAndBackwards(t *testing.T) {
	assert.False(t, StageInitialized.CanTransition(StageDraftWritten))
	assert.False(t, StageInitialized.CanTransition(StageComplete))
	assert.False(t, StageStyleExtracted.CanTransition(StageInitialized))
	assert.False(t, StageDraftWritten.CanTransition(StageStyleExtracted))
	assert.False(t, StageComplete.CanTransition(StageDraftWritten))
	assert.False(t, StageComplete.CanTransition(StageComplete))
}

func TestStage_InReviewLoop(t *testing.T) {
	assert.True(t, StageDraftWritten.InReviewLoop())
	assert.True(t, StageRevisionComplete.InReviewLoop())

	assert.False(t, StageInitialized.InReviewLoop())
	assert.False(t, StageStyleExtracted.InReviewLoop())
	assert.False(t, StageComplete.InReviewLoop())
}

func TestStage_Valid(t *testing.T) {
	assert.True(t, StageInitialized.Valid())
	assert.True(t, StageComplete.Valid())
	assert.False(t, Stage("draft").Valid())
	assert.False(t, Stage("").Valid())
}

func TestSessionState_Bounded(t *testing.T) {
	bounded := &SessionState{MaxIterations: 10}
	assert.True(t, bounded.Bounded())

	unbounded := &SessionState{MaxIterations: UnboundedIterations}
	assert.False(t, unbounded.Bounded())
}
