package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-ai/inkwell/pkg/models"
)

func TestExtractJSON_PlainObject(t *testing.T) {
	raw, err := extractJSON(`{"issues": [], "needs_revision": false}`)

	require.NoError(t, err)
	assert.JSONEq(t, `{"issues": [], "needs_revision": false}`, raw)
}

func TestExtractJSON_FencedBlock(t *testing.T) {
	content := "Here is my review:\n```json\n{\"issues\": [\"x\"], \"needs_revision\": true}\n```\nDone."

	raw, err := extractJSON(content)

	require.NoError(t, err)
	assert.JSONEq(t, `{"issues": ["x"], "needs_revision": true}`, raw)
}

func TestExtractJSON_SurroundingProse(t *testing.T) {
	raw, err := extractJSON(`The verdict is {"issues": [], "needs_revision": false} as requested.`)

	require.NoError(t, err)
	assert.JSONEq(t, `{"issues": [], "needs_revision": false}`, raw)
}

func TestExtractJSON_NoObject(t *testing.T) {
	_, err := extractJSON("I could not produce a review.")

	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestDecodeValidated_Verdict(t *testing.T) {
	var verdict models.ReviewerVerdict

	err := decodeValidated(
		`{"issues": ["claim lacks support"], "needs_revision": true, "accuracy_score": 0.65}`,
		verdictSchemaLoader, &verdict)

	require.NoError(t, err)
	assert.True(t, verdict.NeedsRevision)
	assert.InDelta(t, 0.65, verdict.AccuracyScore, 1e-9)
	assert.Equal(t, []string{"claim lacks support"}, verdict.Issues)
}

func TestDecodeValidated_RejectsMissingRequiredFields(t *testing.T) {
	var verdict models.ReviewerVerdict

	err := decodeValidated(`{"issues": []}`, verdictSchemaLoader, &verdict)

	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestDecodeValidated_RejectsWrongTypes(t *testing.T) {
	var verdict models.ReviewerVerdict

	err := decodeValidated(`{"issues": "not a list", "needs_revision": true}`, verdictSchemaLoader, &verdict)

	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestDecodeValidated_RejectsOutOfRangeScore(t *testing.T) {
	var verdict models.ReviewerVerdict

	err := decodeValidated(`{"issues": [], "needs_revision": false, "accuracy_score": 1.4}`, verdictSchemaLoader, &verdict)

	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestDecodeValidated_Profile(t *testing.T) {
	var profile models.StyleProfile

	err := decodeValidated(
		"```json\n{\"tone\": \"conversational\", \"voice\": \"first person\", \"common_phrases\": [\"in practice\"]}\n```",
		profileSchemaLoader, &profile)

	require.NoError(t, err)
	assert.Equal(t, "conversational", profile.Tone)
	assert.Equal(t, "first person", profile.Voice)
	assert.Equal(t, []string{"in practice"}, profile.CommonPhrases)
}

func TestFallbackDraft(t *testing.T) {
	draft := FallbackDraft("Why tests matter\n\nSome supporting detail.")

	assert.Contains(t, draft, "# Why tests matter")
	assert.Contains(t, draft, "Some supporting detail.")
}

func TestFallbackDraft_StripsHeadingMarker(t *testing.T) {
	draft := FallbackDraft("# Already A Title\n\nBody.")

	assert.Contains(t, draft, "# Already A Title\n")
	assert.NotContains(t, draft, "# # ")
}
