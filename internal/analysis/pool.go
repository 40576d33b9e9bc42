package analysis

import (
	"context"
	"errors"
	"sync"
)

// ErrBusy is returned by Submit when the queue is full. Handlers translate it
// into an explicit capacity error instead of growing concurrency without bound.
var ErrBusy = errors.New("analysis queue is full")

// Task is one accepted analysis job waiting for a worker.
type Task struct {
	JobID    string
	Text     string
	Category string
	Language string
}

// Pool runs accepted jobs on a fixed number of workers fed by a bounded queue.
// Submission never blocks: a full queue is an admission failure.
type Pool struct {
	queue chan Task
	wg    sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewPool starts workers goroutines executing run for each task.
func NewPool(workers, queueSize int, run func(Task)) *Pool {
	p := &Pool{queue: make(chan Task, queueSize)}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer p.wg.Done()
			for t := range p.queue {
				run(t)
			}
		}()
	}
	return p
}

// Submit enqueues the task. Returns ErrBusy when the queue is full and an
// error after Shutdown.
func (p *Pool) Submit(t Task) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return errors.New("analysis pool is shut down")
	}
	select {
	case p.queue <- t:
		return nil
	default:
		return ErrBusy
	}
}

// Shutdown stops accepting tasks and waits for queued and running jobs to
// finish, or for ctx to expire.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
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
