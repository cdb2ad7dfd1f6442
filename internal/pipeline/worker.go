package pipeline

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// ItemFunc processes one store/article pair. Returning an error counts the
// item as failed; the batch keeps going.
type ItemFunc func(ctx context.Context, item Item) error

// Pool fans items out over a fixed number of workers. A failed item is logged
// and counted, never fatal; only context cancellation stops the batch early.
type Pool struct {
	workers int
	log     zerolog.Logger
}

func NewPool(workers int, log zerolog.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{workers: workers, log: log}
}

// Run processes all items and reports how many were processed and how many
// failed. It returns ctx.Err() when the deadline or cancellation cut the
// batch short.
func (p *Pool) Run(ctx context.Context, items []Item, fn ItemFunc) (processed, failed int, err error) {
	jobChan := make(chan Item, len(items))
	var wg sync.WaitGroup
	var okCount, errCount int64

	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for item := range jobChan {
				if err := fn(ctx, item); err != nil {
					atomic.AddInt64(&errCount, 1)
					p.log.Warn().
						Err(err).
						Int("worker", workerID).
						Int64("store_id", item.StoreID).
						Str("article", item.Article).
						Msg("item failed, continuing batch")
					continue
				}
				atomic.AddInt64(&okCount, 1)
			}
		}(i)
	}

	var ctxErr error
	for _, item := range items {
		select {
		case <-ctx.Done():
			ctxErr = ctx.Err()
		case jobChan <- item:
			continue
		}
		break
	}
	close(jobChan)
	wg.Wait()

	return int(atomic.LoadInt64(&okCount)), int(atomic.LoadInt64(&errCount)), ctxErr
}
