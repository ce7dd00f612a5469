// Package parallel provides the worker pool that runs render passes off the
// caller's goroutine.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool is a pool of goroutines executing independent work items.
//
// Each worker has its own queue and steals from the others when its queue
// is empty, so one slow decode does not hold up passes queued behind it
// while other workers are idle.
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	// workers is the number of worker goroutines.
	workers int

	// workQueues holds per-worker work queues.
	workQueues []chan func()

	// done signals workers to stop.
	done chan struct{}

	// wg waits for all workers to finish.
	wg sync.WaitGroup

	// running indicates whether the pool is accepting work.
	running atomic.Bool
}

// NewWorkerPool creates a new worker pool with the specified number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
// The pool starts immediately and workers begin waiting for work.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	queueSize := max(workers*4, 8)

	p := &WorkerPool{
		workers:    workers,
		workQueues: make([]chan func(), workers),
		done:       make(chan struct{}),
	}
	for i := range workers {
		p.workQueues[i] = make(chan func(), queueSize)
	}

	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}

	return p
}

// worker is the main loop for each worker goroutine: own queue first,
// then work stolen from the others, then block on the own queue.
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	myQueue := p.workQueues[id]

	for {
		select {
		case <-p.done:
			p.drainQueue(myQueue)
			return

		case work := <-myQueue:
			run(work)

		default:
			if stolen := p.steal(id); stolen != nil {
				run(stolen)
				continue
			}
			select {
			case <-p.done:
				p.drainQueue(myQueue)
				return
			case work := <-myQueue:
				run(work)
			}
		}
	}
}

// run executes one queued item. Submit and TrySubmit refuse nil work, so
// nil only shows up if a queue is ever closed.
func run(work func()) {
	if work != nil {
		work()
	}
}

// drainQueue executes all remaining work in a queue.
func (p *WorkerPool) drainQueue(queue chan func()) {
	for {
		select {
		case work := <-queue:
			run(work)
		default:
			return
		}
	}
}

// steal attempts to take work from another worker's queue.
// Returns nil if no work is available.
func (p *WorkerPool) steal(myID int) func() {
	for i := range p.workers {
		if i == myID {
			continue
		}
		select {
		case work := <-p.workQueues[i]:
			return work
		default:
		}
	}
	return nil
}

// shortestQueue returns the index of the worker with the fewest queued items.
func (p *WorkerPool) shortestQueue() int {
	minLen := len(p.workQueues[0])
	minIdx := 0
	for i := 1; i < p.workers; i++ {
		if qLen := len(p.workQueues[i]); qLen < minLen {
			minLen = qLen
			minIdx = i
		}
	}
	return minIdx
}

// Submit sends a single work item to the worker with the shortest queue,
// blocking while that queue is full.
// Returns false if fn is nil or the pool is closed.
func (p *WorkerPool) Submit(fn func()) bool {
	if fn == nil || !p.running.Load() {
		return false
	}

	select {
	case p.workQueues[p.shortestQueue()] <- fn:
		return true
	case <-p.done:
		return false
	}
}

// TrySubmit is like Submit but never blocks: it returns false when every
// queue is full, leaving the caller to run fn some other way.
func (p *WorkerPool) TrySubmit(fn func()) bool {
	if fn == nil || !p.running.Load() {
		return false
	}

	first := p.shortestQueue()
	for i := range p.workers {
		select {
		case <-p.done:
			return false
		case p.workQueues[(first+i)%p.workers] <- fn:
			return true
		default:
		}
	}
	return false
}

// Close gracefully shuts down the pool.
// It stops accepting new work, runs all queued work,
// and then stops all workers.
// Close is safe to call multiple times.
func (p *WorkerPool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// IsRunning returns true if the pool is still accepting work.
func (p *WorkerPool) IsRunning() bool {
	return p.running.Load()
}

// QueuedWork returns the total number of work items currently queued.
// This is an approximation as queues can change while iterating.
func (p *WorkerPool) QueuedWork() int {
	total := 0
	for _, q := range p.workQueues {
		total += len(q)
	}
	return total
}

var (
	defaultPool     *WorkerPool
	defaultPoolOnce sync.Once
)

// Default returns the process-wide pool, created on first use with
// GOMAXPROCS workers. It is never closed.
func Default() *WorkerPool {
	defaultPoolOnce.Do(func() {
		defaultPool = NewWorkerPool(0)
	})
	return defaultPool
}
