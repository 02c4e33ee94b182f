package harvest

import (
	"context"
	"time"
)

// Pacer decides how long to wait between two article downloads.
type Pacer interface {
	Wait(ctx context.Context) error
}

// PacerFunc is an adapter to use ordinary functions as Pacer.
type PacerFunc func(ctx context.Context) error

// Wait calls f(ctx).
func (f PacerFunc) Wait(ctx context.Context) error { return f(ctx) }

// NoDelay is a Pacer that never waits.
var NoDelay Pacer = PacerFunc(func(ctx context.Context) error { return ctx.Err() })

// FixedDelay returns a Pacer that pauses for d every time it is called.
// The pause is interrupted when the context is done.
func FixedDelay(d time.Duration) Pacer {
	if d <= 0 {
		return NoDelay
	}

	return PacerFunc(func(ctx context.Context) error {
		t := time.NewTimer(d)
		defer t.Stop()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			return nil
		}
	})
}
