package workerpool

import (
	"context"
	"sync"
)

// Pool is a bounded fire-and-forget worker pool. Submitted jobs are
// executed by a fixed number of workers; Submit never blocks the
// caller. When the queue is full the job is rejected, which is the
// intended trade-off for best-effort background work.
type Pool struct {
	mu      sync.Mutex
	jobs    chan func()
	wg      sync.WaitGroup
	stopped bool
}

func New(workers, queueSize int) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}

	p := &Pool{
		jobs: make(chan func(), queueSize),
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for job := range p.jobs {
		job()
	}
}

// Submit enqueues a job for background execution. It returns false if
// the pool is shutting down or the queue is full. The mutex orders the
// send against Shutdown's close, so a send on a closed channel cannot
// happen; the buffered-channel send under the lock never blocks.
func (p *Pool) Submit(job func()) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return false
	}

	select {
	case p.jobs <- job:
		return true
	default:
		return false
	}
}

// Shutdown stops accepting jobs and waits for in-flight work to drain,
// or for ctx to expire, whichever comes first.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if !p.stopped {
		p.stopped = true
		close(p.jobs)
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
