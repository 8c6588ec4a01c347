package models

// ReviewerVerdict is the validated output of one reviewer pass. Loosely
// shaped model output is parsed into this type with explicit defaulting; it
// is never trusted as-is.
type ReviewerVerdict struct {
	Issues        []string `json:"issues"`
	NeedsRevision bool     `json:"needs_revision"`

	// Scorelike fields. Source reviewers fill AccuracyScore, style reviewers
	// fill ConsistencyScore; the other stays zero and is ignored.
	AccuracyScore    float64 `json:"accuracy_score,omitempty"`
	ConsistencyScore float64 `json:"consistency_score,omitempty"`

	Strengths []string `json:"strengths,omitempty"`
}

// SafeVerdict is the fallback substituted when a reviewer call fails or its
// response cannot be parsed: no issues, no revision needed. The loop favors
// continuing over crashing.
func SafeVerdict() *ReviewerVerdict {
	return &ReviewerVerdict{Issues: []string{}, NeedsRevision: false}
}

// ReviewResult combines the two independent reviewer verdicts. It is derived,
// never stored on its own; issue buckets stay separate so downstream feedback
// can cite provenance.
type ReviewResult struct {
	Source *ReviewerVerdict `json:"source"`
	Style  *ReviewerVerdict `json:"style"`
}

// NeedsRevision is true when either reviewer requested a revision.
func (r *ReviewResult) NeedsRevision() bool {
	return r.Source.NeedsRevision || r.Style.NeedsRevision
}

// SourceIssues returns the accuracy issues found against the source material.
func (r *ReviewResult) SourceIssues() []string {
	return r.Source.Issues
}

// StyleIssues returns the style consistency issues.
func (r *ReviewResult) StyleIssues() []string {
	return r.Style.Issues
}

// TotalIssues counts issues across both buckets.
func (r *ReviewResult) TotalIssues() int {
	return len(r.Source.Issues) + len(r.Style.Issues)
}
