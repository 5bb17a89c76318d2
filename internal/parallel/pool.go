package parallel

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
)

// ErrPoolClosed is returned by ExecuteAll after Close.
var ErrPoolClosed = errors.New("parallel: worker pool closed")

// WorkerPool is a pool of goroutines for data-parallel passes.
//
// The pool distributes work items across multiple workers, each with their own
// queue. Workers steal work from other workers when their own queue is empty,
// which balances load when edge tiles are smaller than interior ones.
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

	// submitMu is held shared while ExecuteAll queues work and exclusively
	// by Close, so done is never closed with a submission in flight.
	submitMu sync.RWMutex
}

// NewWorkerPool creates a new worker pool with the specified number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
// The pool starts immediately and workers begin waiting for work.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	// 2-4x workers per queue hides submission latency
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

// worker is the main loop for each worker goroutine.
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	myQueue := p.workQueues[id]

	for {
		select {
		case <-p.done:
			p.drainQueue(myQueue)
			return

		case work := <-myQueue:
			if work != nil {
				work()
			}

		default:
			if stolen := p.steal(id); stolen != nil {
				stolen()
			} else {
				// No work available anywhere, block on own queue
				select {
				case <-p.done:
					p.drainQueue(myQueue)
					return
				case work := <-myQueue:
					if work != nil {
						work()
					}
				}
			}
		}
	}
}

// drainQueue executes all remaining work in a queue.
func (p *WorkerPool) drainQueue(queue chan func()) {
	for {
		select {
		case work := <-queue:
			if work != nil {
				work()
			}
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

// ExecuteAll distributes work across workers and waits for all items to
// complete. It is the single completion barrier of a pass.
//
// A panicking item does not take down its worker: the panic is recovered,
// the remaining items still run to completion, and the first failure is
// returned as an error. Returns ErrPoolClosed if the pool is closed before
// submission; once submitted, a pass completes even if Close runs
// concurrently.
func (p *WorkerPool) ExecuteAll(work []func()) error {
	p.submitMu.RLock()
	if !p.running.Load() {
		p.submitMu.RUnlock()
		return ErrPoolClosed
	}
	if len(work) == 0 {
		p.submitMu.RUnlock()
		return nil
	}

	var (
		completionWG sync.WaitGroup
		firstErr     error
		errOnce      sync.Once
	)
	completionWG.Add(len(work))

	for i, fn := range work {
		workerID := i % p.workers

		wrappedWork := func() {
			defer completionWG.Done()
			defer func() {
				if r := recover(); r != nil {
					errOnce.Do(func() {
						firstErr = fmt.Errorf("parallel: work item %d panicked: %v", i, r)
					})
				}
			}()
			fn()
		}

		p.workQueues[workerID] <- wrappedWork
	}
	p.submitMu.RUnlock()

	// Queued items run even if Close starts now: workers drain their
	// queues before exiting.
	completionWG.Wait()

	return firstErr
}

// Close gracefully shuts down the pool.
// It stops accepting new work, waits for all queued work to complete,
// and then stops all workers.
// Close is safe to call multiple times.
func (p *WorkerPool) Close() {
	p.submitMu.Lock()
	if !p.running.CompareAndSwap(true, false) {
		p.submitMu.Unlock()
		return
	}
	close(p.done)
	p.submitMu.Unlock()

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
