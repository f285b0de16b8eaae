package upstream

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Batcher partitions work into fixed-size groups. Items within a group run
// concurrently, each wrapped by the Retrier; the next group is not
// dispatched until the previous one fully resolves, with a pause between
// groups to stay friendly to the rate-limited upstreams.
type Batcher struct {
	retrier     *Retrier
	size        int
	pause       time.Duration
	itemTimeout time.Duration
}

// NewBatcher creates a batch scheduler. itemTimeout bounds every single
// item so a stalled request cannot wedge its group; zero disables it.
func NewBatcher(retrier *Retrier, size int, pause, itemTimeout time.Duration) *Batcher {
	if size < 1 {
		size = 1
	}
	return &Batcher{retrier: retrier, size: size, pause: pause, itemTimeout: itemTimeout}
}

// RunBatch processes items in groups of b.size and returns the results in
// input order. The first error observed in a group aborts the run after
// that group settles.
func RunBatch[T, R any](ctx context.Context, b *Batcher, items []T, fn func(context.Context, T) (R, error)) ([]R, error) {
	results := make([]R, len(items))

	for start := 0; start < len(items); start += b.size {
		end := start + b.size
		if end > len(items) {
			end = len(items)
		}

		g := new(errgroup.Group)
		for i := start; i < end; i++ {
			g.Go(func() error {
				itemCtx := ctx
				if b.itemTimeout > 0 {
					var cancel context.CancelFunc
					itemCtx, cancel = context.WithTimeout(ctx, b.itemTimeout)
					defer cancel()
				}

				result, err := Do(itemCtx, b.retrier, func(opCtx context.Context) (R, error) {
					return fn(opCtx, items[i])
				})
				if err != nil {
					return err
				}
				results[i] = result
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		if end < len(items) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(b.pause):
			}
		}
	}

	return results, nil
}
