// Package retry provides exponential backoff for network loops that
// must keep going after transient failures.
package retry

import (
	"context"
	"math"
	"time"
)

// Backoff implements capped exponential backoff.  A single accept
// loop has no herd to spread out, so delays are deterministic.
type Backoff struct {
	// InitialDelay is the delay before the first retry (default 5ms).
	InitialDelay time.Duration
	// MaxDelay caps the backoff duration (default 1s).
	MaxDelay time.Duration
	// Multiplier increases the delay each attempt (default 2.0).
	Multiplier float64
}

// AcceptBackoff returns the schedule used between failed Accept calls:
// 5ms doubling up to 1s, the same curve net/http uses for temporary
// accept errors.
func AcceptBackoff() *Backoff {
	return &Backoff{
		InitialDelay: 5 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
	}
}

// Delay returns the wait before retry number attempt (1-based).
// Attempts below 1 are treated as 1.
func (b *Backoff) Delay(attempt int) time.Duration {
	delay := b.InitialDelay
	if delay <= 0 {
		delay = 5 * time.Millisecond
	}
	multiplier := b.Multiplier
	if multiplier <= 0 {
		multiplier = 2.0
	}
	maxDelay := b.MaxDelay
	if maxDelay <= 0 {
		maxDelay = time.Second
	}
	if attempt < 1 {
		attempt = 1
	}

	d := float64(delay) * math.Pow(multiplier, float64(attempt-1))
	if d > float64(maxDelay) || math.IsInf(d, 0) {
		d = float64(maxDelay)
	}
	return time.Duration(d)
}

// Wait blocks for Delay(attempt) or until ctx is done, returning
// ctx.Err() in the latter case.
func (b *Backoff) Wait(ctx context.Context, attempt int) error {
	t := time.NewTimer(b.Delay(attempt))
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
