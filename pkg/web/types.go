package web

// CreateSessionRequest starts a new blog creation run.
type CreateSessionRequest struct {
	Brief         string `json:"brief"                    validate:"required"`
	WritingsDir   string `json:"writings_dir,omitempty"`
	Instructions  string `json:"instructions,omitempty"`
	MaxIterations int    `json:"max_iterations,omitempty" validate:"omitempty,min=-1"`

	WithImages bool   `json:"with_images,omitempty"`
	MaxImages  int    `json:"max_images,omitempty" validate:"omitempty,gte=1,lte=20"`
	ImageStyle string `json:"image_style,omitempty"`
}

// FeedbackRequest answers a run blocked on the review checkpoint.
type FeedbackRequest struct {
	Action   string   `json:"action"             validate:"required,oneof=approve revise skip"`
	Requests []string `json:"requests,omitempty"`
}
