package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{}

func (failingStore) IncrementAndGet(context.Context, string, time.Duration) (int64, time.Duration, error) {
	return 0, 0, errors.New("store down")
}

func newTestLimiter(t *testing.T, store CounterStore) *Limiter {
	t.Helper()
	l := NewLimiter(store)
	t.Cleanup(l.Stop)
	return l
}

func TestCheck_EnforcesMinuteCeiling(t *testing.T) {
	l := newTestLimiter(t, NewMemoryStore())
	cfg := Config{PerMinute: 3}

	for i := 0; i < 3; i++ {
		result := l.Check(context.Background(), "user-a", "analyze", cfg)
		assert.True(t, result.Allowed, "call %d should be admitted", i+1)
	}

	result := l.Check(context.Background(), "user-a", "analyze", cfg)
	require.False(t, result.Allowed)
	assert.Greater(t, result.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, result.RetryAfter, time.Minute)
}

func TestCheck_RejectedCallsStillCount(t *testing.T) {
	store := NewMemoryStore()
	l := newTestLimiter(t, store)
	cfg := Config{PerMinute: 2}

	for i := 0; i < 5; i++ {
		l.Check(context.Background(), "user-a", "analyze", cfg)
	}

	// the three rejected calls incremented the counter alongside the two
	// admitted ones
	count, _, err := store.IncrementAndGet(context.Background(), "ratelimit:user-a:analyze:minute", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(6), count)
}

func TestCheck_WindowResets(t *testing.T) {
	store := NewMemoryStore()
	current := time.Now()
	store.now = func() time.Time { return current }

	l := newTestLimiter(t, store)
	cfg := Config{PerMinute: 1}

	assert.True(t, l.Check(context.Background(), "user-a", "analyze", cfg).Allowed)
	assert.False(t, l.Check(context.Background(), "user-a", "analyze", cfg).Allowed)

	current = current.Add(time.Minute + time.Second)

	assert.True(t, l.Check(context.Background(), "user-a", "analyze", cfg).Allowed)
}

func TestCheck_EnforcesHourCeiling(t *testing.T) {
	l := newTestLimiter(t, NewMemoryStore())
	cfg := Config{PerMinute: 10, PerHour: 2}

	assert.True(t, l.Check(context.Background(), "user-a", "analyze", cfg).Allowed)
	assert.True(t, l.Check(context.Background(), "user-a", "analyze", cfg).Allowed)

	result := l.Check(context.Background(), "user-a", "analyze", cfg)
	require.False(t, result.Allowed)
	assert.Greater(t, result.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, result.RetryAfter, time.Hour)
}

func TestCheck_HourCeilingAloneLimits(t *testing.T) {
	l := newTestLimiter(t, NewMemoryStore())
	cfg := Config{PerHour: 2}

	admitted := 0
	for i := 0; i < 10; i++ {
		if l.Check(context.Background(), "user-a", "analyze", cfg).Allowed {
			admitted++
		}
	}

	assert.Equal(t, 2, admitted)
}

func TestCheck_MinuteRejectionStillCountsAgainstHour(t *testing.T) {
	store := NewMemoryStore()
	l := newTestLimiter(t, store)
	cfg := Config{PerMinute: 1, PerHour: 10}

	for i := 0; i < 3; i++ {
		l.Check(context.Background(), "user-a", "analyze", cfg)
	}

	// all three checks hit the hour window, including the two the minute
	// ceiling rejected
	count, _, err := store.IncrementAndGet(context.Background(), "ratelimit:user-a:analyze:hour", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
}

func TestCheck_BucketsAreIndependent(t *testing.T) {
	l := newTestLimiter(t, NewMemoryStore())
	cfg := Config{PerMinute: 1}

	assert.True(t, l.Check(context.Background(), "user-a", "analyze", cfg).Allowed)
	assert.False(t, l.Check(context.Background(), "user-a", "analyze", cfg).Allowed)

	// a different identity and a different operation each get their own
	// budget
	assert.True(t, l.Check(context.Background(), "user-b", "analyze", cfg).Allowed)
	assert.True(t, l.Check(context.Background(), "user-a", "suggestions", cfg).Allowed)
}

func TestCheck_FailsOpenOnStoreError(t *testing.T) {
	l := newTestLimiter(t, failingStore{})

	result := l.Check(context.Background(), "user-a", "analyze", Config{PerMinute: 1})

	assert.True(t, result.Allowed)
}

func TestCheck_ZeroCeilingDisablesLimiting(t *testing.T) {
	l := newTestLimiter(t, NewMemoryStore())

	for i := 0; i < 50; i++ {
		assert.True(t, l.Check(context.Background(), "user-a", "analyze", Config{}).Allowed)
	}
}

func TestCheck_ReportsRemaining(t *testing.T) {
	l := newTestLimiter(t, NewMemoryStore())
	cfg := Config{PerMinute: 3}

	assert.Equal(t, 2, l.Check(context.Background(), "user-a", "analyze", cfg).Remaining)
	assert.Equal(t, 1, l.Check(context.Background(), "user-a", "analyze", cfg).Remaining)
	assert.Equal(t, 0, l.Check(context.Background(), "user-a", "analyze", cfg).Remaining)
}

func TestCheck_BurstSmoothing(t *testing.T) {
	l := newTestLimiter(t, NewMemoryStore())
	cfg := Config{PerMinute: 60, Burst: 2}

	assert.True(t, l.Check(context.Background(), "user-a", "analyze", cfg).Allowed)
	assert.True(t, l.Check(context.Background(), "user-a", "analyze", cfg).Allowed)

	result := l.Check(context.Background(), "user-a", "analyze", cfg)
	require.False(t, result.Allowed)
	assert.Equal(t, time.Second, result.RetryAfter)
}

func TestCheck_BurstOnlyConfigLimits(t *testing.T) {
	l := newTestLimiter(t, NewMemoryStore())
	cfg := Config{Burst: 2}

	assert.True(t, l.Check(context.Background(), "user-a", "analyze", cfg).Allowed)
	assert.True(t, l.Check(context.Background(), "user-a", "analyze", cfg).Allowed)

	result := l.Check(context.Background(), "user-a", "analyze", cfg)
	require.False(t, result.Allowed)
	assert.Equal(t, time.Second, result.RetryAfter)
}

func TestCheck_BurstBucketsArePerOperation(t *testing.T) {
	l := newTestLimiter(t, NewMemoryStore())
	cfg := Config{PerMinute: 60, Burst: 1}

	assert.True(t, l.Check(context.Background(), "user-a", "analyze", cfg).Allowed)

	// one identity's burst budget on another operation is untouched
	assert.True(t, l.Check(context.Background(), "user-a", "suggestions", cfg).Allowed)

	assert.False(t, l.Check(context.Background(), "user-a", "analyze", cfg).Allowed)
}

func TestBurstRate(t *testing.T) {
	assert.InDelta(t, 1.0, float64(burstRate(Config{PerMinute: 60, Burst: 5})), 1e-9)
	assert.InDelta(t, 0.5, float64(burstRate(Config{PerHour: 1800, Burst: 5})), 1e-9)
	assert.InDelta(t, 5.0, float64(burstRate(Config{Burst: 5})), 1e-9)
}

func TestCeilSeconds(t *testing.T) {
	assert.Equal(t, time.Second, ceilSeconds(0))
	assert.Equal(t, time.Second, ceilSeconds(-time.Second))
	assert.Equal(t, time.Second, ceilSeconds(200*time.Millisecond))
	assert.Equal(t, 2*time.Second, ceilSeconds(1100*time.Millisecond))
	assert.Equal(t, 5*time.Second, ceilSeconds(5*time.Second))
}

func TestMemoryStore_Prune(t *testing.T) {
	store := NewMemoryStore()
	current := time.Now()
	store.now = func() time.Time { return current }

	_, _, err := store.IncrementAndGet(context.Background(), "k1", time.Minute)
	require.NoError(t, err)
	_, _, err = store.IncrementAndGet(context.Background(), "k2", time.Minute)
	require.NoError(t, err)

	assert.Equal(t, 0, store.Prune(time.Minute))

	current = current.Add(2 * time.Minute)
	assert.Equal(t, 2, store.Prune(time.Minute))
}
