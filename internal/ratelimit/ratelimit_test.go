package ratelimit

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeClock drives the limiter without real time passing.
type fakeClock struct {
	now   time.Time
	slept []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Sleep(d time.Duration) {
	c.slept = append(c.slept, d)
	c.now = c.now.Add(d)
}

func newTestLimiter(limit int, window time.Duration) (*Limiter, *fakeClock) {
	clock := newFakeClock()
	l := NewLimiter(limit, window)
	l.now = clock.Now
	l.sleep = clock.Sleep
	return l, clock
}

func TestLimiterUnderQuota(t *testing.T) {
	t.Run("never sleeps for calls within the quota", func(t *testing.T) {
		l, clock := newTestLimiter(60, 60*time.Second)

		for i := 0; i < 60; i++ {
			err := l.Call(func() error { return nil })
			require.NoError(t, err)
		}

		require.Empty(t, clock.slept)
		require.Equal(t, 60, l.Count())
	})
}

func TestLimiterHoldoff(t *testing.T) {
	t.Run("61st call sleeps for the remaining window and resets", func(t *testing.T) {
		l, clock := newTestLimiter(60, 60*time.Second)

		for i := 0; i < 60; i++ {
			require.NoError(t, l.Call(func() error { return nil }))
		}

		// 20 seconds into the window
		clock.now = clock.now.Add(20 * time.Second)

		l.Before()
		require.Len(t, clock.slept, 1)
		require.Equal(t, 40*time.Second, clock.slept[0])
		require.Equal(t, 0, l.Count())
	})

	t.Run("counter resets when the window rolls over on its own", func(t *testing.T) {
		l, clock := newTestLimiter(60, 60*time.Second)

		for i := 0; i < 60; i++ {
			require.NoError(t, l.Call(func() error { return nil }))
		}

		clock.now = clock.now.Add(61 * time.Second)

		require.NoError(t, l.Call(func() error { return nil }))
		require.Empty(t, clock.slept)
		require.Equal(t, 1, l.Count())
	})
}

func TestLimiterCall(t *testing.T) {
	t.Run("counts failed calls too", func(t *testing.T) {
		l, _ := newTestLimiter(60, 60*time.Second)

		wantErr := errors.New("boom")
		err := l.Call(func() error { return wantErr })

		require.ErrorIs(t, err, wantErr)
		require.Equal(t, 1, l.Count())
	})

	t.Run("adds no retry semantics", func(t *testing.T) {
		l, _ := newTestLimiter(60, 60*time.Second)

		calls := 0
		_ = l.Call(func() error {
			calls++
			return errors.New("boom")
		})

		require.Equal(t, 1, calls)
	})
}
