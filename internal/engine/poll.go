package engine

import (
	"context"
	"errors"
	"time"
)

// ErrPollTimeout is returned by PollUntil when the deadline passes
// before the probe reports success.
var ErrPollTimeout = errors.New("poll deadline exceeded")

// PollConfig controls a bounded busy-poll.
type PollConfig struct {
	Timeout  time.Duration
	Interval time.Duration
}

// DefaultPollConfig is suitable for most UI state waits.
var DefaultPollConfig = PollConfig{
	Timeout:  5 * time.Second,
	Interval: 100 * time.Millisecond,
}

// PollUntil evaluates probe at a fixed interval until it reports done,
// the deadline passes, or ctx is canceled. The target application emits
// no completion events, so every wait in this codebase is a bounded
// poll with uniform timeout semantics.
//
// The probe runs once immediately. On timeout the zero value and
// ErrPollTimeout are returned; ctx cancellation returns ctx.Err().
func PollUntil[T any](ctx context.Context, pc PollConfig, probe func() (T, bool)) (T, error) {
	var zero T
	if pc.Interval <= 0 {
		pc.Interval = DefaultPollConfig.Interval
	}

	deadline := time.Now().Add(pc.Timeout)
	for {
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		if v, ok := probe(); ok {
			return v, nil
		}
		if time.Now().After(deadline) {
			return zero, ErrPollTimeout
		}
		select {
		case <-time.After(pc.Interval):
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}

// WaitFor is PollUntil for probes that carry no value.
func WaitFor(ctx context.Context, pc PollConfig, probe func() bool) error {
	_, err := PollUntil(ctx, pc, func() (struct{}, bool) {
		return struct{}{}, probe()
	})
	return err
}
