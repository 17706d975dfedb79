package engine

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPollUntil(t *testing.T) {
	ctx := context.Background()
	pc := PollConfig{Timeout: 500 * time.Millisecond, Interval: 10 * time.Millisecond}

	t.Run("immediate success", func(t *testing.T) {
		calls := 0
		v, err := PollUntil(ctx, pc, func() (string, bool) {
			calls++
			return "ready", true
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v != "ready" {
			t.Errorf("got %q, want %q", v, "ready")
		}
		if calls != 1 {
			t.Errorf("probe ran %d times, want 1", calls)
		}
	})

	t.Run("succeeds after several probes", func(t *testing.T) {
		calls := 0
		v, err := PollUntil(ctx, pc, func() (int, bool) {
			calls++
			return calls, calls >= 3
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v != 3 {
			t.Errorf("got %d, want 3", v)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		short := PollConfig{Timeout: 50 * time.Millisecond, Interval: 10 * time.Millisecond}
		v, err := PollUntil(ctx, short, func() (string, bool) {
			return "", false
		})
		if !errors.Is(err, ErrPollTimeout) {
			t.Fatalf("got error %v, want ErrPollTimeout", err)
		}
		if v != "" {
			t.Errorf("expected zero value on timeout, got %q", v)
		}
	})

	t.Run("context cancellation", func(t *testing.T) {
		cctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := PollUntil(cctx, pc, func() (int, bool) {
			return 0, false
		})
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("got error %v, want context.Canceled", err)
		}
	})

	t.Run("zero interval gets a default", func(t *testing.T) {
		short := PollConfig{Timeout: 50 * time.Millisecond}
		start := time.Now()
		_, err := PollUntil(ctx, short, func() (int, bool) { return 0, false })
		if !errors.Is(err, ErrPollTimeout) {
			t.Fatalf("got error %v, want ErrPollTimeout", err)
		}
		// A zero interval must not spin; the default interval means only
		// a handful of probes fit in the window.
		if time.Since(start) < 50*time.Millisecond {
			t.Error("poll returned before the deadline")
		}
	})
}

func TestWaitFor(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		n := 0
		err := WaitFor(ctx, PollConfig{Timeout: time.Second, Interval: 5 * time.Millisecond}, func() bool {
			n++
			return n == 2
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("timeout", func(t *testing.T) {
		err := WaitFor(ctx, PollConfig{Timeout: 30 * time.Millisecond, Interval: 10 * time.Millisecond}, func() bool {
			return false
		})
		if !errors.Is(err, ErrPollTimeout) {
			t.Fatalf("got error %v, want ErrPollTimeout", err)
		}
	})
}
