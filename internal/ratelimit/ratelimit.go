// Package ratelimit throttles outbound API calls to stay under a
// fixed per-minute quota. The limiter never fails a call on its own;
// once the quota is exceeded it sleeps until the window rolls over.
package ratelimit

import (
	"log/slog"
	"time"
)

const (
	// DefaultLimit is the number of calls allowed per window.
	DefaultLimit = 60
	// DefaultWindow is the length of the rolling window.
	DefaultWindow = 60 * time.Second
)

// Limiter tracks a rolling count of outbound calls. It is not safe
// for concurrent use; mirrorkit drives one call at a time.
type Limiter struct {
	limit       int
	window      time.Duration
	count       int
	windowStart time.Time

	// now and sleep are replaceable in tests
	now   func() time.Time
	sleep func(time.Duration)
}

// NewLimiter returns a limiter allowing limit calls per window.
func NewLimiter(limit int, window time.Duration) *Limiter {
	return &Limiter{
		limit:  limit,
		window: window,
		now:    time.Now,
		sleep:  time.Sleep,
	}
}

// NewDefaultLimiter returns a limiter with the standard 60 calls /
// 60 seconds quota.
func NewDefaultLimiter() *Limiter {
	return NewLimiter(DefaultLimit, DefaultWindow)
}

// Before blocks until the next call is allowed to proceed. The first
// call of a window records the window start; once the counter exceeds
// the quota inside the window the caller sleeps for the remaining
// window time, after which the counter and window reset.
func (l *Limiter) Before() {
	now := l.now()

	if l.windowStart.IsZero() {
		l.windowStart = now
	}

	elapsed := now.Sub(l.windowStart)
	if elapsed >= l.window {
		// Window already rolled over on its own
		l.count = 0
		l.windowStart = now
		return
	}

	if l.count < l.limit {
		return
	}

	holdoff := l.window - elapsed
	slog.Debug("api quota exceeded, holding off", "duration", holdoff)
	l.sleep(holdoff)

	l.count = 0
	l.windowStart = l.now()
}

// Call runs op under the quota. The counter is incremented whether or
// not op succeeds; a failed call still consumed the remote's budget.
// Errors from op propagate unchanged, the limiter adds no retry
// semantics of its own.
func (l *Limiter) Call(op func() error) error {
	l.Before()
	err := op()
	l.count++
	return err
}

// Count returns the number of calls recorded in the current window.
func (l *Limiter) Count() int {
	return l.count
}
