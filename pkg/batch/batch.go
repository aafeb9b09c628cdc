// Package batch provides a bounded-concurrency map over a sequence of
// work items with an inter-batch delay and per-item failure isolation.
// It exists to keep aggregate upstream request rate under rate-limit
// thresholds that the retry wrapper would otherwise absorb at a higher
// latency cost.
package batch

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Defaults applied when Options leaves the field zero.
const (
	DefaultBatchSize = 5
	DefaultDelay     = 200 * time.Millisecond
)

// Options controls one Map run.
type Options struct {
	// BatchSize bounds the number of in-flight calls at any time.
	BatchSize int

	// Delay is the pause between consecutive batches. There is no pause
	// after the final batch. A negative value disables the pause.
	Delay time.Duration

	Logger *zap.Logger
}

// Map partitions items into consecutive batches, invokes fn on every
// item of a batch concurrently, and awaits the whole batch before
// starting the next. Results come back in input order, one slot per
// item: a failed item's slot is nil and the failure never aborts the
// batch or subsequent batches. Batch N+1 never starts before batch N
// fully completes, including the post-batch delay.
func Map[T, R any](ctx context.Context, items []T, fn func(context.Context, T) (*R, error), opts Options) []*R {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Delay == 0 {
		opts.Delay = DefaultDelay
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	results := make([]*R, len(items))

	for start := 0; start < len(items); start += opts.BatchSize {
		end := start + opts.BatchSize
		if end > len(items) {
			end = len(items)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				result, err := fn(ctx, items[idx])
				if err != nil {
					logger.Warn("batch item failed",
						zap.Int("index", idx),
						zap.Error(err),
					)
					return
				}
				results[idx] = result
			}(i)
		}
		wg.Wait()

		if end < len(items) && opts.Delay > 0 {
			if err := sleep(ctx, opts.Delay); err != nil {
				return results
			}
		}
	}

	return results
}

// MapFiltered is Map with the nil slots of failed items dropped.
func MapFiltered[T, R any](ctx context.Context, items []T, fn func(context.Context, T) (*R, error), opts Options) []R {
	slots := Map(ctx, items, fn, opts)
	results := make([]R, 0, len(slots))
	for _, r := range slots {
		if r != nil {
			results = append(results, *r)
		}
	}
	return results
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
