package upstream

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testRetrier(maxRetries int, baseDelay time.Duration) *Retrier {
	return NewRetrier(slog.Default(), NewLimiter(0), maxRetries, baseDelay)
}

func TestDoReturnsFirstSuccess(t *testing.T) {
	r := testRetrier(3, time.Millisecond)

	calls := 0
	result, err := Do(context.Background(), r, func(context.Context) (string, error) {
		calls++
		return "ok", nil
	})

	require.NoError(t, err)
	require.Equal(t, "ok", result)
	require.Equal(t, 1, calls)
}

func TestDoRetriesRateLimitedUntilExhausted(t *testing.T) {
	r := testRetrier(2, time.Millisecond)

	calls := 0
	rateErr := &StatusError{Status: 429, URL: "https://api.example.com"}
	_, err := Do(context.Background(), r, func(context.Context) (int, error) {
		calls++
		return 0, rateErr
	})

	require.Error(t, err)
	require.Equal(t, 2, calls)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	require.True(t, statusErr.RateLimited())
}

func TestDoRecoversAfterRateLimit(t *testing.T) {
	r := testRetrier(3, time.Millisecond)

	calls := 0
	result, err := Do(context.Background(), r, func(context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, &StatusError{Status: 429, URL: "https://api.example.com"}
		}
		return 42, nil
	})

	require.NoError(t, err)
	require.Equal(t, 42, result)
	require.Equal(t, 2, calls)
}

func TestDoFailsFastOnOtherErrors(t *testing.T) {
	r := testRetrier(5, time.Millisecond)

	calls := 0
	boom := errors.New("connection refused")
	_, err := Do(context.Background(), r, func(context.Context) (int, error) {
		calls++
		return 0, boom
	})

	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, calls)
}

func TestDoAlwaysAttemptsAtLeastOnce(t *testing.T) {
	// A non-positive retry budget must not turn Do into a silent no-op
	// that returns the zero value with a nil error.
	r := testRetrier(0, time.Millisecond)

	calls := 0
	result, err := Do(context.Background(), r, func(context.Context) (string, error) {
		calls++
		return "ok", nil
	})

	require.NoError(t, err)
	require.Equal(t, "ok", result)
	require.Equal(t, 1, calls)

	_, err = Do(context.Background(), r, func(context.Context) (int, error) {
		return 0, errors.New("boom")
	})
	require.Error(t, err)
}

func TestBackoffDelayDoubles(t *testing.T) {
	base := 2 * time.Second

	require.Equal(t, 2*time.Second, backoffDelay(base, 0))
	require.Equal(t, 4*time.Second, backoffDelay(base, 1))
	require.Equal(t, 8*time.Second, backoffDelay(base, 2))
}

func TestIsRateLimited(t *testing.T) {
	require.True(t, IsRateLimited(&StatusError{Status: 429, URL: "u"}))
	require.False(t, IsRateLimited(&StatusError{Status: 500, URL: "u"}))
	require.True(t, IsRateLimited(errors.New("server responded with 429 Too Many Requests")))
	require.False(t, IsRateLimited(errors.New("connection refused")))
	require.False(t, IsRateLimited(nil))
}
