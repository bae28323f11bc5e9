// Package retry implements a bounded-retry policy for calls against
// external resources: a fixed number of retries with a fixed delay
// between attempts, under a hard wall-clock timeout.
package retry

import (
	"context"
	"time"
)

// Policy bounds retries of an external call. MaxRetries counts retries
// after the initial attempt, so MaxRetries=2 allows three calls total.
type Policy struct {
	MaxRetries int
	Delay      time.Duration
	Timeout    time.Duration
}

// DefaultPolicy mirrors the checkout SDK loader behavior: two retries
// 800ms apart, giving up entirely after 20 seconds.
var DefaultPolicy = Policy{
	MaxRetries: 2,
	Delay:      800 * time.Millisecond,
	Timeout:    20 * time.Second,
}

// Do runs op until it succeeds, the retry budget is exhausted, or the
// timeout elapses. The last error is returned so callers can surface
// their fallback path.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	var err error
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		if attempt > 0 && p.Delay > 0 {
			timer := time.NewTimer(p.Delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return err
			case <-timer.C:
			}
		}
		if ctx.Err() != nil {
			if err == nil {
				err = ctx.Err()
			}
			return err
		}
		if err = op(ctx); err == nil {
			return nil
		}
	}
	return err
}
