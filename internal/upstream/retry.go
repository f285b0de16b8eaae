package upstream

import (
	"context"
	"log/slog"
	"math/rand"
	"time"
)

const maxJitter = time.Second

// Retrier wraps a single upstream operation with bounded retries. Only
// rate-limit rejections are retried; everything else fails fast. Before
// every attempt the shared Limiter is awaited, so retried calls still
// respect the global request spacing.
type Retrier struct {
	logger     *slog.Logger
	limiter    *Limiter
	maxRetries int
	baseDelay  time.Duration
}

func NewRetrier(logger *slog.Logger, limiter *Limiter, maxRetries int, baseDelay time.Duration) *Retrier {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Retrier{
		logger:     logger,
		limiter:    limiter,
		maxRetries: maxRetries,
		baseDelay:  baseDelay,
	}
}

// backoffDelay returns the deterministic part of the wait before retry
// number attempt (0-based): baseDelay * 2^attempt. Jitter is added on top
// by Do, drawn fresh for every attempt.
func backoffDelay(baseDelay time.Duration, attempt int) time.Duration {
	return baseDelay * time.Duration(1<<attempt)
}

// Do runs op up to maxRetries times. On a rate-limited failure it sleeps
// backoffDelay plus up to one second of jitter and tries again; on any
// other failure it returns immediately. After exhausting all attempts the
// last observed error is returned.
func Do[T any](ctx context.Context, r *Retrier, op func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt < r.maxRetries; attempt++ {
		if err := r.limiter.Wait(ctx); err != nil {
			return zero, err
		}

		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !IsRateLimited(err) {
			return zero, err
		}

		if attempt == r.maxRetries-1 {
			break
		}

		jitter := time.Duration(rand.Int63n(int64(maxJitter)))
		wait := backoffDelay(r.baseDelay, attempt) + jitter
		r.logger.Warn("Rate limit hit, backing off",
			"attempt", attempt+1, "max_retries", r.maxRetries, "wait", wait.String())

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(wait):
		}
	}

	r.logger.Error("Upstream operation failed after retries",
		"max_retries", r.maxRetries, "error", lastErr)
	return zero, lastErr
}
