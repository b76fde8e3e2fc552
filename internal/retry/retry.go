// Package retry re-executes failing operations under a configurable
// backoff policy. Only operations the caller marks as transient are
// retried; wrap deterministic failures with Permanent to fail fast.
package retry

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	// DefaultMaxAttempts bounds how often an operation is tried.
	DefaultMaxAttempts = 5
	// DefaultInitialInterval is the first inter-attempt delay.
	DefaultInitialInterval = 1 * time.Second
	// DefaultMaxInterval caps the exponential backoff delay.
	DefaultMaxInterval = 30 * time.Second
)

// Policy describes how an operation is retried.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts uint64
	// InitialInterval is the delay before the first retry.
	InitialInterval time.Duration
	// MaxInterval caps the growing delay between retries.
	MaxInterval time.Duration
}

// DefaultPolicy returns the policy used for network git operations.
func DefaultPolicy() *Policy {
	return &Policy{
		MaxAttempts:     DefaultMaxAttempts,
		InitialInterval: DefaultInitialInterval,
		MaxInterval:     DefaultMaxInterval,
	}
}

// Permanent marks err as non-retryable. Do returns it immediately
// without further attempts.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do invokes op until it succeeds, returns a permanent error, or the
// attempt budget is exhausted. label identifies the task in log
// output. Cancelling ctx stops the loop between attempts.
func (p *Policy) Do(ctx context.Context, label string, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.InitialInterval
	bo.MaxInterval = p.MaxInterval

	// A zero MaxAttempts would underflow into unlimited retries
	attempts := p.MaxAttempts
	if attempts == 0 {
		attempts = 1
	}

	attempt := 0

	return backoff.RetryNotify(
		func() error {
			attempt++
			return op()
		},
		backoff.WithContext(backoff.WithMaxRetries(bo, attempts-1), ctx),
		func(err error, next time.Duration) {
			slog.Warn("operation failed, retrying",
				"task", label,
				"attempt", attempt,
				"next_attempt_in", next,
				"error", err,
			)
		},
	)
}
