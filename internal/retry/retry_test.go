package retry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mirrorkit.dev/mirrorkit/internal/retry"
)

func testPolicy(attempts uint64) *retry.Policy {
	return &retry.Policy{
		MaxAttempts:     attempts,
		InitialInterval: time.Millisecond,
		MaxInterval:     5 * time.Millisecond,
	}
}

func TestDo(t *testing.T) {
	t.Run("returns immediately on success", func(t *testing.T) {
		calls := 0
		err := testPolicy(5).Do(context.Background(), "noop", func() error {
			calls++
			return nil
		})

		require.NoError(t, err)
		require.Equal(t, 1, calls)
	})

	t.Run("transient failure then success surfaces no error", func(t *testing.T) {
		calls := 0
		err := testPolicy(5).Do(context.Background(), "flaky", func() error {
			calls++
			if calls == 1 {
				return errors.New("connection reset")
			}
			return nil
		})

		require.NoError(t, err)
		require.Equal(t, 2, calls)
	})

	t.Run("gives up after the attempt budget", func(t *testing.T) {
		calls := 0
		wantErr := errors.New("network down")
		err := testPolicy(3).Do(context.Background(), "down", func() error {
			calls++
			return wantErr
		})

		require.ErrorIs(t, err, wantErr)
		require.Equal(t, 3, calls)
	})

	t.Run("zero attempts still tries exactly once", func(t *testing.T) {
		calls := 0
		wantErr := errors.New("network down")
		err := testPolicy(0).Do(context.Background(), "zero", func() error {
			calls++
			return wantErr
		})

		require.ErrorIs(t, err, wantErr)
		require.Equal(t, 1, calls)
	})

	t.Run("permanent errors are never retried", func(t *testing.T) {
		calls := 0
		wantErr := errors.New("merge conflict")
		err := testPolicy(5).Do(context.Background(), "conflict", func() error {
			calls++
			return retry.Permanent(wantErr)
		})

		require.ErrorIs(t, err, wantErr)
		require.Equal(t, 1, calls)
	})

	t.Run("stops between attempts when the context is cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())

		calls := 0
		err := testPolicy(100).Do(ctx, "cancelled", func() error {
			calls++
			cancel()
			return errors.New("still failing")
		})

		require.Error(t, err)
		require.Equal(t, 1, calls)
	})
}
