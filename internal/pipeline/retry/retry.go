// Package retry executes operations under a capped exponential backoff
// policy driven by the aierrors classifier. Retries are strictly
// sequential; a new attempt only starts after the computed delay elapses.
package retry

import (
	"context"
	"math/rand"
	"time"

	"careerpilot-utils/internal/pipeline/aierrors"
)

const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = 1 * time.Second
	DefaultMaxDelay   = 10 * time.Second
)

// jitterFraction is the symmetric perturbation applied to each delay so
// concurrent callers hitting the same transient failure desynchronize.
const jitterFraction = 0.25

// OnRetryFunc observes an upcoming retry. attempt is 1-based and counts the
// attempt that just failed; err is its classified failure.
type OnRetryFunc func(attempt int, err *aierrors.AIError)

// Options configures a retry run
type Options struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	OnRetry    OnRetryFunc
}

// Option mutates Options
type Option func(*Options)

func WithMaxRetries(n int) Option {
	return func(o *Options) { o.MaxRetries = n }
}

func WithBaseDelay(d time.Duration) Option {
	return func(o *Options) { o.BaseDelay = d }
}

func WithMaxDelay(d time.Duration) Option {
	return func(o *Options) { o.MaxDelay = d }
}

func WithOnRetry(fn OnRetryFunc) Option {
	return func(o *Options) { o.OnRetry = fn }
}

// Do runs op until it succeeds, fails with a non-retryable error, or
// exhausts MaxRetries+1 attempts. The returned error is always a classified
// *aierrors.AIError. The operation is re-invoked from scratch on every
// attempt and must be idempotent.
func Do[T any](ctx context.Context, op func(context.Context) (T, error), opts ...Option) (T, error) {
	options := Options{
		MaxRetries: DefaultMaxRetries,
		BaseDelay:  DefaultBaseDelay,
		MaxDelay:   DefaultMaxDelay,
	}
	for _, opt := range opts {
		opt(&options)
	}

	var zero T
	var lastErr *aierrors.AIError

	for attempt := 0; attempt <= options.MaxRetries; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}

		lastErr = aierrors.Classify(err)

		if !lastErr.Retryable || attempt == options.MaxRetries {
			return zero, lastErr
		}

		if options.OnRetry != nil {
			options.OnRetry(attempt+1, lastErr)
		}

		if err := sleep(ctx, backoffDelay(attempt, options.BaseDelay, options.MaxDelay)); err != nil {
			return zero, aierrors.Classify(err)
		}
	}

	return zero, lastErr
}

// backoffDelay computes min(base*2^attempt, max) with ±25% jitter. The
// jittered value is clamped at max so the cap holds.
func backoffDelay(attempt int, base, max time.Duration) time.Duration {
	delay := base << uint(attempt)
	if delay > max || delay <= 0 {
		delay = max
	}

	jitter := 1 - jitterFraction + rand.Float64()*2*jitterFraction
	delay = time.Duration(float64(delay) * jitter)
	if delay > max {
		delay = max
	}
	return delay
}

// sleep waits for d or until ctx is cancelled, whichever comes first
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
