// Package parallel provides the worker pool used by opt-in parallel row-wise
// mapping.
//
// Work is split into contiguous index ranges, one per task, and fanned out to
// a fixed number of goroutines. Results are written back by index, so the
// assembled output is identical to a sequential loop over the same items.
package parallel

import (
	"context"
	"runtime"
	"sync"
)

// WorkerPool manages a pool of goroutines for parallel processing
type WorkerPool struct {
	numWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewWorkerPool creates a new worker pool. A non-positive size uses one
// worker per CPU.
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		numWorkers: numWorkers,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Workers returns the pool size.
func (wp *WorkerPool) Workers() int {
	return wp.numWorkers
}

// ProcessIndexed applies worker to every index in [0, n) and returns the
// results in index order.
func ProcessIndexed[R any](wp *WorkerPool, n int, worker func(int) R) []R {
	if n == 0 {
		return nil
	}

	results := make([]R, n)
	chunks := splitRange(n, wp.numWorkers)
	chunkCh := make(chan indexRange, len(chunks))

	var wg sync.WaitGroup
	for i := 0; i < min(wp.numWorkers, len(chunks)); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := range chunkCh {
				for idx := r.start; idx < r.end; idx++ {
					select {
					case <-wp.ctx.Done():
						return
					default:
						results[idx] = worker(idx)
					}
				}
			}
		}()
	}

	for _, c := range chunks {
		chunkCh <- c
	}
	close(chunkCh)
	wg.Wait()

	return results
}

// Close shuts down the worker pool
func (wp *WorkerPool) Close() {
	wp.cancel()
}

// indexRange is a half-open range of item indices handled by one task
type indexRange struct {
	start, end int
}

// splitRange divides [0, n) into at most parts contiguous, near-equal ranges.
func splitRange(n, parts int) []indexRange {
	if parts > n {
		parts = n
	}
	size := n / parts
	extra := n % parts

	ranges := make([]indexRange, 0, parts)
	start := 0
	for i := 0; i < parts; i++ {
		end := start + size
		if i < extra {
			end++
		}
		ranges = append(ranges, indexRange{start: start, end: end})
		start = end
	}
	return ranges
}
