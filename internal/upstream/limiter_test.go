package upstream

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLimiterEnforcesSpacing(t *testing.T) {
	interval := 50 * time.Millisecond
	limiter := NewLimiter(interval)

	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, limiter.Wait(ctx))
	}
	elapsed := time.Since(start)

	// First wait is free, the next two each cost one interval.
	require.GreaterOrEqual(t, elapsed, 2*interval)
}

func TestLimiterSerializesConcurrentCallers(t *testing.T) {
	interval := 40 * time.Millisecond
	limiter := NewLimiter(interval)

	ctx := context.Background()

	var wg sync.WaitGroup
	start := time.Now()
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, limiter.Wait(ctx))
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	// Four concurrent callers share one limiter: three of them have to
	// queue behind the first slot.
	require.GreaterOrEqual(t, elapsed, 3*interval)
}

func TestLimiterWaitHonorsContext(t *testing.T) {
	limiter := NewLimiter(time.Hour)

	ctx := context.Background()
	require.NoError(t, limiter.Wait(ctx))

	cancelled, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()

	err := limiter.Wait(cancelled)
	require.Error(t, err)
}
