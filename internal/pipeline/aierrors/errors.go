// Package aierrors defines the closed error taxonomy for the AI pipeline
// and the classifier that maps arbitrary failures into it. An *AIError is
// the unit of propagation between the pipeline's layers: constructed once
// per failure, never mutated, caught exactly once at the response boundary.
package aierrors

import (
	"fmt"
	"net/http"
	"time"
)

// Code identifies one member of the error taxonomy
type Code string

const (
	CodeRateLimit       Code = "RATE_LIMIT"
	CodePaymentRequired Code = "PAYMENT_REQUIRED"
	CodeTimeout         Code = "TIMEOUT"
	CodeInvalidResponse Code = "INVALID_RESPONSE"
	CodeAPIError        Code = "API_ERROR"
	CodeCircuitOpen     Code = "CIRCUIT_OPEN"
	CodeValidation      Code = "VALIDATION_ERROR"
	CodeAuthentication  Code = "AUTHENTICATION_ERROR"
	CodeInternal        Code = "INTERNAL_ERROR"
)

// AIError is a classified pipeline failure. Message carries internal
// diagnostic detail and is logged, never surfaced; UserMessage is the
// human-readable text callers are allowed to see.
type AIError struct {
	Message     string
	Code        Code
	StatusCode  int
	Retryable   bool
	UserMessage string
	RetryAfter  time.Duration // populated for RATE_LIMIT
}

func (e *AIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewRateLimitError builds a retryable RATE_LIMIT error. A zero retryAfter
// falls back to the 60s default.
func NewRateLimitError(message string, retryAfter time.Duration) *AIError {
	if retryAfter <= 0 {
		retryAfter = 60 * time.Second
	}
	return &AIError{
		Message:     message,
		Code:        CodeRateLimit,
		StatusCode:  http.StatusTooManyRequests,
		Retryable:   true,
		UserMessage: fmt.Sprintf("Too many requests. Please wait %d seconds before trying again.", int(retryAfter.Seconds())),
		RetryAfter:  retryAfter,
	}
}

func NewPaymentRequiredError(message string) *AIError {
	return &AIError{
		Message:     message,
		Code:        CodePaymentRequired,
		StatusCode:  http.StatusPaymentRequired,
		Retryable:   false,
		UserMessage: "The AI service account is out of credits. Please contact support.",
	}
}

func NewTimeoutError(message string) *AIError {
	return &AIError{
		Message:     message,
		Code:        CodeTimeout,
		StatusCode:  http.StatusGatewayTimeout,
		Retryable:   true,
		UserMessage: "The request took too long to process. Please try again.",
	}
}

func NewInvalidResponseError(message string) *AIError {
	return &AIError{
		Message:     message,
		Code:        CodeInvalidResponse,
		StatusCode:  http.StatusBadGateway,
		Retryable:   true,
		UserMessage: "The AI produced an unreadable response. Please try again.",
	}
}

func NewAPIError(message string) *AIError {
	return &AIError{
		Message:     message,
		Code:        CodeAPIError,
		StatusCode:  http.StatusBadGateway,
		Retryable:   true,
		UserMessage: "The AI service is having trouble. Please try again shortly.",
	}
}

func NewCircuitOpenError(message string) *AIError {
	return &AIError{
		Message:     message,
		Code:        CodeCircuitOpen,
		StatusCode:  http.StatusServiceUnavailable,
		Retryable:   false,
		UserMessage: "The AI service is temporarily unavailable. Please try again later.",
	}
}

func NewValidationError(message string) *AIError {
	return &AIError{
		Message:     message,
		Code:        CodeValidation,
		StatusCode:  http.StatusBadRequest,
		Retryable:   false,
		UserMessage: "The request is invalid. Please check your input and try again.",
	}
}

func NewAuthenticationError(message string) *AIError {
	return &AIError{
		Message:     message,
		Code:        CodeAuthentication,
		StatusCode:  http.StatusUnauthorized,
		Retryable:   false,
		UserMessage: "Authentication failed. Please sign in and try again.",
	}
}

func NewInternalError(message string) *AIError {
	return &AIError{
		Message:     message,
		Code:        CodeInternal,
		StatusCode:  http.StatusInternalServerError,
		Retryable:   false,
		UserMessage: "Something went wrong on our side. Please try again later.",
	}
}

// HTTPError carries a provider HTTP status for classification. Collaborator
// layers wrap non-2xx provider responses in this type so Classify can match
// on the status code before falling back to message text.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}
