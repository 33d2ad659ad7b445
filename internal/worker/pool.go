package worker

import (
	"context"
	"log"
	"sync"
)

// Pool runs conversion jobs on a fixed number of workers. Accepted uploads
// are queued on a buffered channel so the upload request never waits for a
// transcode slot.
type Pool struct {
	jobs   chan string
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
	ctx    context.Context
	cancel context.CancelFunc
	runner *Runner
}

// NewPool starts workerCount workers draining a queue of queueSize task IDs.
func NewPool(workerCount, queueSize int, runner *Runner) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	pool := &Pool{
		jobs:   make(chan string, queueSize),
		ctx:    ctx,
		cancel: cancel,
		runner: runner,
	}
	for i := 0; i < workerCount; i++ {
		pool.wg.Add(1)
		go pool.work(i)
	}
	return pool
}

// Enqueue schedules the job for conversion. It never blocks the caller:
// when the queue is full, or the pool has shut down, the job is marked
// errored right away instead of stalling the upload request.
func (p *Pool) Enqueue(taskID string) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.runner.markError(taskID, "converter is shutting down")
		return
	}
	select {
	case p.jobs <- taskID:
	default:
		p.runner.markError(taskID, "conversion queue is full")
	}
}

// Shutdown stops accepting work and waits for the workers to exit. Jobs
// still queued are abandoned; an in-flight ffmpeg run completes on its own.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
}

func (p *Pool) work(id int) {
	defer p.wg.Done()
	for {
		select {
		case taskID, ok := <-p.jobs:
			if !ok {
				return
			}
			p.runner.Process(taskID)
		case <-p.ctx.Done():
			log.Printf("worker %d: stopping", id)
			return
		}
	}
}
