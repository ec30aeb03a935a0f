package aierrors

import (
	"context"
	"errors"
	"strings"
	"time"
)

// statusCoder matches error types that expose an HTTP-like status code,
// such as the anthropic SDK's API error and echo's HTTPError.
type statusCoder interface {
	error
	StatusCode() int
}

// Classify maps an arbitrary failure to one member of the taxonomy. It is a
// pure function: an already-classified *AIError passes through untouched,
// status codes are matched before message text, and anything unrecognized
// defaults to a retryable API_ERROR so unknown transient failures get
// retried rather than silently failing once.
func Classify(err error) *AIError {
	if err == nil {
		return nil
	}

	var aiErr *AIError
	if errors.As(err, &aiErr) {
		return aiErr
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return NewTimeoutError(err.Error())
	}

	if code, ok := statusCodeOf(err); ok {
		if classified := classifyStatus(code, err); classified != nil {
			return classified
		}
	}

	msg := strings.ToLower(err.Error())

	switch {
	case containsAny(msg, "rate limit", "rate_limit", "too many requests", "429"):
		return NewRateLimitError(err.Error(), 60*time.Second)
	case containsAny(msg, "payment", "credit", "insufficient funds", "billing", "402"):
		return NewPaymentRequiredError(err.Error())
	case containsAny(msg, "timeout", "timed out", "deadline exceeded", "aborted", "context canceled"):
		return NewTimeoutError(err.Error())
	case containsAny(msg, "json", "parse", "unmarshal", "unexpected token", "invalid response"):
		return NewInvalidResponseError(err.Error())
	case containsAny(msg, "internal server", "bad gateway", "service unavailable", "overloaded", "500", "502", "503"):
		return NewAPIError(err.Error())
	default:
		return NewAPIError(err.Error())
	}
}

func classifyStatus(code int, err error) *AIError {
	switch {
	case code == 429:
		return NewRateLimitError(err.Error(), 60*time.Second)
	case code == 402:
		return NewPaymentRequiredError(err.Error())
	case code == 401 || code == 403:
		return NewAuthenticationError(err.Error())
	case code == 408 || code == 504:
		return NewTimeoutError(err.Error())
	case code >= 500:
		return NewAPIError(err.Error())
	default:
		return nil
	}
}

func statusCodeOf(err error) (int, bool) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode, true
	}

	var sc statusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode(), true
	}

	return 0, false
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
