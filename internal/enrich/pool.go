package enrich

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"iganalytics/pkg/logger"
)

// Func enriches the item at index. A returned error stops the whole run;
// best-effort work should record its failure in R and return nil.
type Func[T, R any] func(ctx context.Context, index int, item T) (R, error)

// WorkerPool bounds how many items are enriched at once
type WorkerPool struct {
	numWorkers int
	logger     logger.Logger
}

// NewWorkerPool creates a pool with numWorkers workers. Values below 1
// run items one at a time.
func NewWorkerPool(numWorkers int, log logger.Logger) *WorkerPool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &WorkerPool{numWorkers: numWorkers, logger: log}
}

// Workers returns the concurrency bound
func (wp *WorkerPool) Workers() int {
	return wp.numWorkers
}

// Run applies fn to every item and returns the results in input order,
// whatever order the workers finish in. With one worker items are
// processed strictly in sequence.
func Run[T, R any](ctx context.Context, wp *WorkerPool, items []T, fn Func[T, R]) ([]R, error) {
	results := make([]R, len(items))
	if len(items) == 0 {
		return results, nil
	}

	wp.logger.DebugWithFields("Starting enrichment", map[string]interface{}{
		"num_workers": wp.numWorkers,
		"items":       len(items),
	})

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(wp.numWorkers)

	for i, item := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			start := time.Now()
			result, err := fn(gctx, i, item)
			if err != nil {
				return fmt.Errorf("item %d: %w", i, err)
			}
			results[i] = result

			wp.logger.DebugWithFields("Item enriched", map[string]interface{}{
				"index":    i,
				"duration": time.Since(start),
			})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
