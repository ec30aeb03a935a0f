// Package ratelimit enforces per-identity, per-operation call ceilings over
// fixed time windows. The counter lives in an injected store so tests run
// against an in-memory map and production against shared Redis.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"careerpilot-utils/internal/logging"
)

const (
	minuteWindow = time.Minute
	hourWindow   = time.Hour
)

// Config is the ceiling set applied to one checked call
type Config struct {
	PerMinute int // 0 disables the minute ceiling
	PerHour   int // 0 disables the hour ceiling
	Burst     int // 0 disables burst smoothing
}

// Result is the outcome of a rate-limit check
type Result struct {
	Allowed    bool
	RetryAfter time.Duration
	Remaining  int
}

type burstEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter tracks call volume per (identity, operation) pair. Window counts
// always increment, including on the rejecting call, so the stored state
// reflects true call volume rather than admitted volume.
type Limiter struct {
	store  CounterStore
	logger logging.Logger

	mu     sync.Mutex
	bursts map[string]*burstEntry

	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
}

// NewLimiter creates a rate limiter over the given counter store
func NewLimiter(store CounterStore) *Limiter {
	l := &Limiter{
		store:         store,
		logger:        logging.GetGlobalLogger().WithField("component", "rate_limiter"),
		bursts:        make(map[string]*burstEntry),
		cleanupTicker: time.NewTicker(5 * time.Minute),
		stopCleanup:   make(chan struct{}),
	}

	go l.cleanupRoutine()

	return l
}

// windowState is one incremented window awaiting its ceiling check
type windowState struct {
	name    string
	limit   int
	count   int64
	resetIn time.Duration
}

// Check records one call for the identity/operation pair and reports
// whether it is within budget. Every configured window is incremented
// before any ceiling is evaluated, so a call rejected by one window still
// counts against the others. Store errors fail open: an unreachable
// counter store degrades to no limiting rather than a hard outage.
func (l *Limiter) Check(ctx context.Context, identity, operation string, cfg Config) Result {
	key := fmt.Sprintf("ratelimit:%s:%s", identity, operation)

	spans := []struct {
		name   string
		limit  int
		window time.Duration
	}{
		{"minute", cfg.PerMinute, minuteWindow},
		{"hour", cfg.PerHour, hourWindow},
	}

	var windows []windowState
	for _, span := range spans {
		if span.limit <= 0 {
			continue
		}

		count, resetIn, err := l.store.IncrementAndGet(ctx, key+":"+span.name, span.window)
		if err != nil {
			l.logger.Warn("rate limit store unavailable, allowing request", map[string]interface{}{
				"identity":  identity,
				"operation": operation,
				"error":     err.Error(),
			})
			return Result{Allowed: true}
		}
		windows = append(windows, windowState{span.name, span.limit, count, resetIn})
	}

	remaining := -1
	for _, w := range windows {
		if w.count > int64(w.limit) {
			l.logger.Debug("request rejected by window ceiling", map[string]interface{}{
				"identity":  identity,
				"operation": operation,
				"window":    w.name,
				"count":     w.count,
			})
			return Result{Allowed: false, RetryAfter: ceilSeconds(w.resetIn)}
		}
		if r := w.limit - int(w.count); remaining < 0 || r < remaining {
			remaining = r
		}
	}

	if cfg.Burst > 0 && !l.allowBurst(identity, operation, cfg) {
		l.logger.Debug("request rejected by burst limiter", map[string]interface{}{
			"identity":  identity,
			"operation": operation,
		})
		return Result{Allowed: false, RetryAfter: time.Second}
	}

	if remaining < 0 {
		remaining = 0
	}
	return Result{Allowed: true, Remaining: remaining}
}

// allowBurst applies burst smoothing on top of the windowed count, the same
// token-bucket guard the windowed ceiling cannot express. Buckets are keyed
// per (identity, operation) like the windowed counters, since operations can
// carry different ceilings.
func (l *Limiter) allowBurst(identity, operation string, cfg Config) bool {
	burstKey := identity + ":" + operation

	l.mu.Lock()
	entry, exists := l.bursts[burstKey]
	if !exists {
		entry = &burstEntry{limiter: rate.NewLimiter(burstRate(cfg), cfg.Burst)}
		l.bursts[burstKey] = entry
	}
	entry.lastSeen = time.Now()
	l.mu.Unlock()

	return entry.limiter.Allow()
}

// burstRate derives the bucket refill rate from the tightest configured
// window; a burst-only config refills within a second
func burstRate(cfg Config) rate.Limit {
	switch {
	case cfg.PerMinute > 0:
		return rate.Limit(float64(cfg.PerMinute) / 60.0)
	case cfg.PerHour > 0:
		return rate.Limit(float64(cfg.PerHour) / 3600.0)
	default:
		return rate.Limit(cfg.Burst)
	}
}

// Stop halts the background cleanup routine
func (l *Limiter) Stop() {
	close(l.stopCleanup)
}

func (l *Limiter) cleanupRoutine() {
	for {
		select {
		case <-l.cleanupTicker.C:
			l.cleanup()
		case <-l.stopCleanup:
			l.cleanupTicker.Stop()
			return
		}
	}
}

// cleanup drops burst limiters for identities not seen recently
func (l *Limiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	removed := 0
	for identity, entry := range l.bursts {
		if entry.lastSeen.Before(cutoff) {
			delete(l.bursts, identity)
			removed++
		}
	}

	if removed > 0 {
		l.logger.Debug("cleaned up idle burst limiters", map[string]interface{}{
			"removed_count": removed,
		})
	}
}

// ceilSeconds rounds a duration up to whole seconds so Retry-After headers
// never tell clients to retry early
func ceilSeconds(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Second
	}
	secs := d / time.Second
	if d%time.Second != 0 {
		secs++
	}
	return secs * time.Second
}
