package ratelimit

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer spaces sequential upstream requests: a fixed delay between every
// request plus a longer pause after every batch of them. Requests are
// deliberately not parallelized, so a single limiter with burst 1 models
// the cadence exactly.
type Pacer struct {
	limiter    *rate.Limiter
	pause      time.Duration
	pauseEvery int
	count      int
}

// NewPacer creates a pacer with delay between requests and pause applied
// after every pauseEvery requests. pauseEvery <= 0 disables batch pauses.
func NewPacer(delay, pause time.Duration, pauseEvery int) *Pacer {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &Pacer{
		limiter:    rate.NewLimiter(limit, 1),
		pause:      pause,
		pauseEvery: pauseEvery,
	}
}

// Wait blocks until the next request may proceed or the context is
// cancelled. Call it once per completed unit of work.
func (p *Pacer) Wait(ctx context.Context) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}

	p.count++
	if p.pauseEvery > 0 && p.count%p.pauseEvery == 0 && p.pause > 0 {
		timer := time.NewTimer(p.pause)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return nil
}

// Count returns the number of completed waits.
func (p *Pacer) Count() int {
	return p.count
}
