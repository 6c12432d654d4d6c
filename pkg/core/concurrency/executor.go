package concurrency

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
)

// Executor runs submitted tasks on a fixed set of worker goroutines with a
// bounded queue. Modules hand long-running or bursty work to an executor
// instead of spawning goroutines inline.
type Executor interface {
	// Submit enqueues a task. Returns ErrMailboxFull when the queue is at
	// capacity (backpressure) and an error once the executor is shut down.
	Submit(task Task) error

	// Shutdown stops the workers, waiting for in-flight tasks until ctx
	// expires.
	Shutdown(ctx context.Context) error

	// Stats returns a snapshot of queue counters.
	Stats() ExecutorStats
}

// ExecutorConfig configures an Executor.
type ExecutorConfig struct {
	Workers   int
	QueueSize int
}

// DefaultExecutorConfig returns the default executor configuration.
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{Workers: 10, QueueSize: 1000}
}

// ExecutorStats is a snapshot of executor counters.
type ExecutorStats struct {
	QueuedTasks    int64
	CompletedTasks int64
	RejectedTasks  int64
	Workers        int
	QueueCapacity  int
}

type defaultExecutor struct {
	taskChan  chan Task
	workers   int
	queueSize int
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.Mutex
	closed    bool
	errLog    *log.Logger

	queuedTasks    int64
	completedTasks int64
	rejectedTasks  int64
}

// NewExecutor creates an Executor and starts its workers.
func NewExecutor(ctx context.Context, config ExecutorConfig) Executor {
	if config.Workers < 1 {
		config.Workers = 1
	}
	if config.QueueSize < 1 {
		config.QueueSize = 100
	}

	ctx, cancel := context.WithCancel(ctx)
	e := &defaultExecutor{
		taskChan:  make(chan Task, config.QueueSize),
		workers:   config.Workers,
		queueSize: config.QueueSize,
		ctx:       ctx,
		cancel:    cancel,
		errLog:    log.New(os.Stderr, "[executor] ", log.LstdFlags),
	}

	e.wg.Add(e.workers)
	for i := 0; i < e.workers; i++ {
		go e.worker()
	}
	return e
}

func (e *defaultExecutor) worker() {
	defer e.wg.Done()
	for {
		select {
		case task, ok := <-e.taskChan:
			if !ok {
				return
			}
			atomic.AddInt64(&e.queuedTasks, -1)
			if err := task.Execute(e.ctx); err != nil {
				e.errLog.Printf("task %s failed: %v", task.Name(), err)
			}
			atomic.AddInt64(&e.completedTasks, 1)
		case <-e.ctx.Done():
			return
		}
	}
}

func (e *defaultExecutor) Submit(task Task) error {
	if task == nil {
		return fmt.Errorf("task cannot be nil")
	}

	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return fmt.Errorf("executor is closed")
	}

	select {
	case e.taskChan <- task:
		atomic.AddInt64(&e.queuedTasks, 1)
		return nil
	case <-e.ctx.Done():
		return e.ctx.Err()
	default:
		atomic.AddInt64(&e.rejectedTasks, 1)
		return ErrMailboxFull
	}
}

func (e *defaultExecutor) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	e.cancel()
	close(e.taskChan)

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown timeout: %w", ctx.Err())
	}
}

func (e *defaultExecutor) Stats() ExecutorStats {
	return ExecutorStats{
		QueuedTasks:    atomic.LoadInt64(&e.queuedTasks),
		CompletedTasks: atomic.LoadInt64(&e.completedTasks),
		RejectedTasks:  atomic.LoadInt64(&e.rejectedTasks),
		Workers:        e.workers,
		QueueCapacity:  e.queueSize,
	}
}
