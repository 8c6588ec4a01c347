package models

// StyleProfile describes an author's writing style, extracted once from
// writing samples and treated as read-only input to every generation call.
type StyleProfile struct {
	Tone              string   `json:"tone"`
	Voice             string   `json:"voice"`
	VocabularyLevel   string   `json:"vocabulary_level"`
	SentenceStructure string   `json:"sentence_structure"`
	ParagraphLength   string   `json:"paragraph_length"`
	CommonPhrases     []string `json:"common_phrases,omitempty"`
	WritingPatterns   []string `json:"writing_patterns,omitempty"`
	Examples          []string `json:"examples,omitempty"`
}

// DefaultStyleProfile is the documented fallback used when no writing samples
// are found or style extraction fails.
func DefaultStyleProfile() *StyleProfile {
	return &StyleProfile{
		Tone:              "conversational",
		Voice:             "active",
		VocabularyLevel:   "moderate",
		SentenceStructure: "varied",
		ParagraphLength:   "medium",
		WritingPatterns:   []string{"introduction-body-conclusion", "problem-solution"},
		Examples: []string{
			"Clear and direct communication.",
			"Focus on practical value.",
		},
	}
}
