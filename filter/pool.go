package filter

import (
	"context"
	"errors"
	"sync"
)

// ErrPoolStopped is returned when work is submitted to a stopped pool
var ErrPoolStopped = errors.New("worker pool is stopped")

// workerPool implements WorkerPool with bounded concurrency
type workerPool struct {
	workChan chan func()
	wg       sync.WaitGroup

	// mu guards stopped and the close of workChan against in-flight sends
	mu      sync.RWMutex
	stopped bool
}

// NewWorkerPool starts a pool with the given number of workers
func NewWorkerPool(workers int) WorkerPool {
	if workers <= 0 {
		workers = 1
	}

	pool := &workerPool{
		workChan: make(chan func(), workers*2),
	}

	for range workers {
		pool.wg.Add(1)
		go pool.worker()
	}

	return pool
}

func (p *workerPool) worker() {
	defer p.wg.Done()

	for work := range p.workChan {
		if work != nil {
			work()
		}
	}
}

// Submit queues work, blocking while the queue is full
func (p *workerPool) Submit(work func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		return ErrPoolStopped
	}
	p.workChan <- work
	return nil
}

// Stop rejects new work and waits for queued work to finish
func (p *workerPool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.stopped {
		p.stopped = true
		close(p.workChan)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
