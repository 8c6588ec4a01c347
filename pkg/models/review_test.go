package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeVerdict(t *testing.T) {
	verdict := SafeVerdict()

	assert.Empty(t, verdict.Issues)
	assert.NotNil(t, verdict.Issues)
	assert.False(t, verdict.NeedsRevision)
}

func TestReviewResult_NeedsRevision(t *testing.T) {
	tests := []struct {
		name   string
		source bool
		style  bool
		want   bool
	}{
		{"neither", false, false, false},
		{"source only", true, false, true},
		{"style only", false, true, true},
		{"both", true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := &ReviewResult{
				Source: &ReviewerVerdict{NeedsRevision: tt.source},
				Style:  &ReviewerVerdict{NeedsRevision: tt.style},
			}

			assert.Equal(t, tt.want, result.NeedsRevision())
		})
	}
}

func TestReviewResult_IssueBucketsStaySeparate(t *testing.T) {
	result := &ReviewResult{
		Source: &ReviewerVerdict{Issues: []string{"claim not in brief"}},
		Style:  &ReviewerVerdict{Issues: []string{"tone too formal", "sentences too long"}},
	}

	assert.Equal(t, []string{"claim not in brief"}, result.SourceIssues())
	assert.Equal(t, []string{"tone too formal", "sentences too long"}, result.StyleIssues())
	assert.Equal(t, 3, result.TotalIssues())
}
