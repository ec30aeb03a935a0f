package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careerpilot-utils/internal/pipeline/aierrors"
)

func fastOpts(extra ...Option) []Option {
	opts := []Option{
		WithBaseDelay(time.Millisecond),
		WithMaxDelay(5 * time.Millisecond),
	}
	return append(opts, extra...)
}

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0

	result, err := Do(context.Background(), func(ctx context.Context) (string, error) {
		calls++
		return "done", nil
	}, fastOpts()...)

	require.NoError(t, err)
	assert.Equal(t, "done", result)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesUntilSuccess(t *testing.T) {
	calls := 0

	result, err := Do(context.Background(), func(ctx context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("service unavailable")
		}
		return 42, nil
	}, fastOpts()...)

	require.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustsBudget(t *testing.T) {
	calls := 0

	_, err := Do(context.Background(), func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("bad gateway")
	}, fastOpts(WithMaxRetries(3))...)

	require.Error(t, err)
	// initial attempt plus three retries
	assert.Equal(t, 4, calls)

	var aiErr *aierrors.AIError
	require.ErrorAs(t, err, &aiErr)
	assert.Equal(t, aierrors.CodeAPIError, aiErr.Code)
}

func TestDo_NonRetryableFailsImmediately(t *testing.T) {
	calls := 0

	_, err := Do(context.Background(), func(ctx context.Context) (int, error) {
		calls++
		return 0, aierrors.NewPaymentRequiredError("no credits")
	}, fastOpts(WithMaxRetries(5))...)

	require.Error(t, err)
	assert.Equal(t, 1, calls)

	var aiErr *aierrors.AIError
	require.ErrorAs(t, err, &aiErr)
	assert.Equal(t, aierrors.CodePaymentRequired, aiErr.Code)
	assert.False(t, aiErr.Retryable)
}

func TestDo_ZeroRetriesMeansSingleAttempt(t *testing.T) {
	calls := 0

	_, err := Do(context.Background(), func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("overloaded")
	}, fastOpts(WithMaxRetries(0))...)

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_OnRetryObservesEachFailure(t *testing.T) {
	var attempts []int
	var codes []aierrors.Code

	_, err := Do(context.Background(), func(ctx context.Context) (int, error) {
		return 0, errors.New("overloaded")
	}, fastOpts(
		WithMaxRetries(2),
		WithOnRetry(func(attempt int, retryErr *aierrors.AIError) {
			attempts = append(attempts, attempt)
			codes = append(codes, retryErr.Code)
		}),
	)...)

	require.Error(t, err)
	assert.Equal(t, []int{1, 2}, attempts)
	assert.Equal(t, []aierrors.Code{aierrors.CodeAPIError, aierrors.CodeAPIError}, codes)
}

func TestDo_ContextCancellationStopsRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	_, err := Do(ctx, func(ctx context.Context) (int, error) {
		calls++
		cancel()
		return 0, errors.New("overloaded")
	}, WithBaseDelay(time.Minute), WithMaxDelay(time.Minute), WithMaxRetries(5))

	require.Error(t, err)
	assert.Equal(t, 1, calls)

	var aiErr *aierrors.AIError
	require.ErrorAs(t, err, &aiErr)
	assert.Equal(t, aierrors.CodeTimeout, aiErr.Code)
}

func TestBackoffDelay_Bounds(t *testing.T) {
	base := 100 * time.Millisecond
	max := 800 * time.Millisecond

	for attempt := 0; attempt < 8; attempt++ {
		expected := base << uint(attempt)
		if expected > max || expected <= 0 {
			expected = max
		}
		lower := time.Duration(float64(expected) * 0.75)

		for i := 0; i < 50; i++ {
			d := backoffDelay(attempt, base, max)
			assert.GreaterOrEqual(t, d, lower, "attempt %d", attempt)
			assert.LessOrEqual(t, d, max, "attempt %d", attempt)
		}
	}
}

func TestBackoffDelay_GrowsExponentially(t *testing.T) {
	base := 100 * time.Millisecond

	// with +-25% jitter, attempt n+1's floor always clears attempt n's ceiling
	for attempt := 0; attempt < 5; attempt++ {
		ceiling := time.Duration(float64(base<<uint(attempt)) * 1.25)
		floor := time.Duration(float64(base<<uint(attempt+1)) * 0.75)
		assert.Greater(t, floor, ceiling)
	}
}
