package models

// AnalyzeRequest represents the request payload for scoring a resume
// against a job description
type AnalyzeRequest struct {
	Resume         string `json:"resume" validate:"required,min=50,max=50000"`
	JobDescription string `json:"job_description" validate:"required,min=50,max=100000"`
}

// SuggestionsRequest represents the request payload for generating
// improvement suggestions for a resume
type SuggestionsRequest struct {
	Resume         string `json:"resume" validate:"required,min=50,max=50000"`
	JobDescription string `json:"job_description,omitempty" validate:"omitempty,max=100000"`
	MaxSuggestions int    `json:"max_suggestions,omitempty" validate:"omitempty,min=1,max=20"`
}
