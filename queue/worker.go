package queue

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Task is a unit of background work.
type Task func(ctx context.Context)

// Worker runs queued tasks on a single goroutine. The queue is bounded and
// Enqueue never blocks: a full queue drops the task.
type Worker struct {
	tasks   chan Task
	logger  *slog.Logger
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
	wg      sync.WaitGroup
}

// NewWorker returns a Worker whose queue holds up to size tasks.
func NewWorker(size int, logger *slog.Logger) *Worker {
	if size < 1 {
		size = 1
	}
	return &Worker{
		tasks:  make(chan Task, size),
		logger: logger,
	}
}

// StartWorker launches the background goroutine. Tasks receive ctx.
func (w *Worker) StartWorker(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for task := range w.tasks {
			w.run(ctx, task)
		}
	}()
}

func (w *Worker) run(ctx context.Context, task Task) {
	defer func() {
		if rec := recover(); rec != nil {
			w.logger.Error("task_panicked", "panic", rec)
		}
	}()
	task(ctx)
}

// Enqueue queues task and reports whether it was accepted.
func (w *Worker) Enqueue(task Task) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return false
	}
	select {
	case w.tasks <- task:
		return true
	default:
		n := w.dropped.Add(1)
		w.logger.Warn("task_dropped", "reason", "queue_full", "capacity", cap(w.tasks), "dropped_total", n)
		return false
	}
}

// Dropped is the number of tasks rejected because the queue was full.
func (w *Worker) Dropped() uint64 {
	return w.dropped.Load()
}

// Stop rejects new tasks, runs the ones already queued and waits for the
// goroutine to exit.
func (w *Worker) Stop() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.tasks)
	}
	w.mu.Unlock()
	w.wg.Wait()
}
