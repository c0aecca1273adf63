package engine

import (
	"context"
	"sync"

	"github.com/quatrope/gofeets/internal/ctxlog"
)

// Task is one extractor invocation bound to its inputs and result slot.
// Tasks within a wave are independent and never share mutable state.
type Task func(ctx context.Context)

// Strategy decides how the independent tasks of a single wave execute. It is
// pluggable so the engine's wave logic stays identical whether extraction
// runs sequentially, on a local worker pool, or on some remote backend.
// Execute must block until every task has returned.
type Strategy interface {
	Execute(ctx context.Context, tasks []Task)
}

// Sequential runs each wave's tasks one after another in submission order.
// It exists for debugging and for callers that need single-threaded
// execution; results are identical to any concurrent strategy.
type Sequential struct{}

// Execute implements Strategy.
func (Sequential) Execute(ctx context.Context, tasks []Task) {
	for _, task := range tasks {
		task(ctx)
	}
}

// WorkerPool executes each wave on a bounded pool of goroutines, the
// default strategy. Workers drain a shared task channel until the wave is
// exhausted.
type WorkerPool struct {
	Workers int
}

// NewWorkerPool returns a pool with the given concurrency bound. Sizes
// below one fall back to a single worker.
func NewWorkerPool(workers int) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	return &WorkerPool{Workers: workers}
}

// Execute implements Strategy.
func (p *WorkerPool) Execute(ctx context.Context, tasks []Task) {
	logger := ctxlog.FromContext(ctx)

	workers := p.Workers
	if workers > len(tasks) {
		workers = len(tasks)
	}
	if workers < 1 {
		workers = 1
	}

	taskChan := make(chan Task, len(tasks))
	for _, task := range tasks {
		taskChan <- task
	}
	close(taskChan)

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(workerID int) {
			defer wg.Done()
			logger.Debug("Worker started.", "workerID", workerID)
			for task := range taskChan {
				task(ctx)
			}
			logger.Debug("Worker finished.", "workerID", workerID)
		}(i)
	}
	wg.Wait()
}
