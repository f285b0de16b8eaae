package upstream

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter enforces a minimum spacing between outbound requests. A single
// instance is shared by every ledger, price and metadata call, which is
// what gives the whole pipeline its global throttle: concurrent callers
// queue up on it and proceed one slot at a time.
type Limiter struct {
	limiter *rate.Limiter
}

// NewLimiter creates a limiter allowing one request per minInterval.
func NewLimiter(minInterval time.Duration) *Limiter {
	return &Limiter{
		limiter: rate.NewLimiter(rate.Every(minInterval), 1),
	}
}

// Wait blocks until the next request slot is available or the context is
// cancelled. Callers invoking Wait concurrently are serialized: each one
// reserves its own slot, so the recorded spacing reflects call order.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}
