package models

// Placement describes where an illustration sits relative to its section.
type Placement string

const (
	PlacementBeforeSection Placement = "before_section"
	PlacementAfterIntro    Placement = "after_intro"
	PlacementMidSection    Placement = "mid_section"
)

// IllustrationPoint is a location in the article where an image should be
// inserted, identified by content analysis.
type IllustrationPoint struct {
	SectionTitle string    `json:"section_title"`
	SectionIndex int       `json:"section_index"`
	LineNumber   int       `json:"line_number"`
	Importance   string    `json:"importance"`
	Placement    Placement `json:"placement"`
}

// ImagePrompt pairs an illustration point with the prompt sent to the image
// model. The index routes the generated image back to its slot so result
// ordering from concurrent generation never matters.
type ImagePrompt struct {
	Index      int               `json:"index"`
	Point      IllustrationPoint `json:"point"`
	BasePrompt string            `json:"base_prompt"`
	FullPrompt string            `json:"full_prompt"`
}

// GeneratedImage is one successfully produced illustration, already written
// to disk.
type GeneratedImage struct {
	Index int               `json:"index"`
	Point IllustrationPoint `json:"point"`
	Path  string            `json:"path"`
	Alt   string            `json:"alt"`
}
