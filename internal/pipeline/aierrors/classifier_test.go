package aierrors

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_NilError(t *testing.T) {
	assert.Nil(t, Classify(nil))
}

func TestClassify_PassesThroughAIError(t *testing.T) {
	original := NewPaymentRequiredError("account empty")

	classified := Classify(fmt.Errorf("call failed: %w", original))

	assert.Same(t, original, classified)
}

func TestClassify_ContextErrors(t *testing.T) {
	t.Run("deadline exceeded", func(t *testing.T) {
		classified := Classify(context.DeadlineExceeded)

		assert.Equal(t, CodeTimeout, classified.Code)
		assert.True(t, classified.Retryable)
	})

	t.Run("wrapped cancellation", func(t *testing.T) {
		classified := Classify(fmt.Errorf("request aborted: %w", context.Canceled))

		assert.Equal(t, CodeTimeout, classified.Code)
	})
}

func TestClassify_StatusCodes(t *testing.T) {
	cases := []struct {
		status    int
		code      Code
		retryable bool
	}{
		{429, CodeRateLimit, true},
		{402, CodePaymentRequired, false},
		{401, CodeAuthentication, false},
		{403, CodeAuthentication, false},
		{408, CodeTimeout, true},
		{504, CodeTimeout, true},
		{500, CodeAPIError, true},
		{503, CodeAPIError, true},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("status %d", tc.status), func(t *testing.T) {
			classified := Classify(&HTTPError{StatusCode: tc.status, Body: "upstream said no"})

			assert.Equal(t, tc.code, classified.Code)
			assert.Equal(t, tc.retryable, classified.Retryable)
		})
	}
}

func TestClassify_MessageMatching(t *testing.T) {
	cases := []struct {
		message   string
		code      Code
		retryable bool
	}{
		{"Rate limit exceeded, slow down", CodeRateLimit, true},
		{"Too Many Requests", CodeRateLimit, true},
		{"insufficient funds on account", CodePaymentRequired, false},
		{"billing issue detected", CodePaymentRequired, false},
		{"request timed out after 30s", CodeTimeout, true},
		{"failed to parse model output", CodeInvalidResponse, true},
		{"unexpected token at position 14", CodeInvalidResponse, true},
		{"upstream service unavailable", CodeAPIError, true},
		{"something completely novel", CodeAPIError, true},
	}

	for _, tc := range cases {
		t.Run(tc.message, func(t *testing.T) {
			classified := Classify(errors.New(tc.message))

			assert.Equal(t, tc.code, classified.Code)
			assert.Equal(t, tc.retryable, classified.Retryable)
		})
	}
}

func TestClassify_RateLimitPopulatesRetryAfter(t *testing.T) {
	classified := Classify(errors.New("429 too many requests"))

	require.Equal(t, CodeRateLimit, classified.Code)
	assert.Equal(t, 60*time.Second, classified.RetryAfter)
}

func TestClassify_StatusBeatsMessage(t *testing.T) {
	// A 402 whose body happens to mention a timeout is still a billing error
	classified := Classify(&HTTPError{StatusCode: 402, Body: "request timed out while checking billing"})

	assert.Equal(t, CodePaymentRequired, classified.Code)
	assert.False(t, classified.Retryable)
}

func TestAIError_UserMessageNeverEchoesInternalDetail(t *testing.T) {
	internal := "connection refused to 10.0.3.7:8443"

	for _, aiErr := range []*AIError{
		NewTimeoutError(internal),
		NewAPIError(internal),
		NewInvalidResponseError(internal),
		NewInternalError(internal),
	} {
		assert.NotContains(t, aiErr.UserMessage, "10.0.3.7")
		assert.Contains(t, aiErr.Error(), internal)
	}
}
