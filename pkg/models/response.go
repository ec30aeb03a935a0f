package models

import "time"

// AnalysisResult is the structured verdict extracted from the model's
// response when scoring a resume against a job description
type AnalysisResult struct {
	Score     float64  `json:"score"`
	Summary   string   `json:"summary"`
	Strengths []string `json:"strengths,omitempty"`
	Gaps      []string `json:"gaps,omitempty"`
}

// Suggestion is a single resume improvement item
type Suggestion struct {
	Section string `json:"section"`
	Advice  string `json:"advice"`
	Impact  string `json:"impact,omitempty"`
}

// AnalyzeResponse represents the response from a resume analysis request
type AnalyzeResponse struct {
	Success        bool            `json:"success"`
	Analysis       *AnalysisResult `json:"analysis,omitempty"`
	Error          string          `json:"error,omitempty"`
	ProcessingTime time.Duration   `json:"processing_time"`
	Model          string          `json:"model_used,omitempty"`
	RequestID      string          `json:"request_id"`
}

// SuggestionsResponse represents the response from a suggestions request
type SuggestionsResponse struct {
	Success        bool          `json:"success"`
	Suggestions    []Suggestion  `json:"suggestions,omitempty"`
	Error          string        `json:"error,omitempty"`
	ProcessingTime time.Duration `json:"processing_time"`
	Model          string        `json:"model_used,omitempty"`
	RequestID      string        `json:"request_id"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Uptime    time.Duration     `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ErrorResponse represents an error response. RetryAfter is whole seconds
// and only present on rate-limited calls.
type ErrorResponse struct {
	Error      string    `json:"error"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	RetryAfter int       `json:"retryAfter,omitempty"`
	RequestID  string    `json:"request_id"`
	Timestamp  time.Time `json:"timestamp"`
}
