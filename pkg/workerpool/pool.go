// Package workerpool provides a bounded goroutine pool with backpressure.
//
// The visualizer renders placements on a Pool so a burst of requests cannot
// open an unbounded number of concurrent model calls. When every worker is
// busy and the queue is full, Submit returns ErrPoolFull immediately and the
// caller answers 429.
//
//	pool := workerpool.New(config.VisualizerWorkers())
//	defer pool.Shutdown()
//
//	if err := pool.Submit(job.run); errors.Is(err, workerpool.ErrPoolFull) {
//	    c.Error(http.StatusTooManyRequests, services.MsgBusy)
//	}
package workerpool

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/shashiranjanraj/furnivision/pkg/logger"
)

// ErrPoolFull is returned by Submit when all workers are busy and the task
// queue is at capacity.
var ErrPoolFull = errors.New("workerpool: pool is full")

// ErrPoolClosed is returned by Submit after Shutdown has been called.
var ErrPoolClosed = errors.New("workerpool: pool is closed")

// Pool is a bounded goroutine pool.
type Pool struct {
	tasks   chan func()
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex // guards closed against concurrent Submit/Shutdown
	closed  bool
	size    int
	active  atomic.Int64
	dropped atomic.Int64
}

// New creates a Pool with the given number of workers. The queue holds twice
// as many tasks as there are workers.
func New(size int) *Pool {
	if size <= 0 {
		size = 1
	}

	p := &Pool{
		tasks: make(chan func(), size*2),
		size:  size,
	}

	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	return p
}

// Submit enqueues task for execution without blocking.
//   - Returns ErrPoolFull if the task queue is at capacity.
//   - Returns ErrPoolClosed if Shutdown has been called.
func (p *Pool) Submit(task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.tasks <- task:
		return nil
	default:
		p.dropped.Add(1)
		return ErrPoolFull
	}
}

// Size returns the number of workers.
func (p *Pool) Size() int { return p.size }

// Active returns the number of tasks currently executing.
func (p *Pool) Active() int { return int(p.active.Load()) }

// Queued returns the number of tasks waiting for a worker.
func (p *Pool) Queued() int { return len(p.tasks) }

// Rejected returns how many submissions were refused with ErrPoolFull.
func (p *Pool) Rejected() int64 { return p.dropped.Load() }

// Shutdown stops accepting new tasks, waits for queued and in-flight tasks
// to complete, and releases all worker goroutines. Safe to call twice.
func (p *Pool) Shutdown() {
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.tasks)
		p.mu.Unlock()
		p.wg.Wait()
	})
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		p.active.Add(1)
		safeRun(task)
		p.active.Add(-1)
	}
}

// safeRun executes task and logs a panic instead of killing the worker.
func safeRun(task func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("workerpool: task panicked", "panic", fmt.Sprintf("%v", r))
		}
	}()
	task()
}
