// Package dispatch provides the worker pool behind the mesher's per-block
// sweeps. Each sweep is embarrassingly parallel: units never communicate
// within a dispatch, and cross-dispatch ordering is the caller's
// responsibility.
package dispatch

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a fixed set of worker goroutines consuming a shared task queue.
//
// Thread safety: Pool is safe for concurrent use.
type Pool struct {
	workers int
	tasks   chan func()
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
}

// NewPool creates a pool with the given number of workers. If workers is 0 or
// negative, GOMAXPROCS is used. Workers start immediately.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	p := &Pool{
		workers: workers,
		tasks:   make(chan func(), workers*4),
		done:    make(chan struct{}),
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.done:
			// Drain queued tasks before exiting so no submitted sweep chunk is
			// lost.
			for {
				select {
				case task := <-p.tasks:
					task()
				default:
					return
				}
			}
		case task := <-p.tasks:
			task()
		}
	}
}

// ForEach2D invokes fn for every coordinate of a w×h grid, splitting rows
// into chunks across the workers, and returns once every invocation has
// completed. If the pool has been closed, the grid is processed serially.
func (p *Pool) ForEach2D(w, h int, fn func(x, y int)) {
	if w <= 0 || h <= 0 {
		return
	}
	if !p.running.Load() {
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				fn(x, y)
			}
		}
		return
	}

	// Several chunks per worker keeps the load balanced when per-block cost
	// is uneven (blocks near depth edges recurse deeper).
	chunk := h / (p.workers * 4)
	if chunk < 1 {
		chunk = 1
	}

	var pending sync.WaitGroup
	for y0 := 0; y0 < h; y0 += chunk {
		y1 := y0 + chunk
		if y1 > h {
			y1 = h
		}
		pending.Add(1)
		start, end := y0, y1
		p.tasks <- func() {
			defer pending.Done()
			for y := start; y < end; y++ {
				for x := 0; x < w; x++ {
					fn(x, y)
				}
			}
		}
	}
	pending.Wait()
}

// Close stops the workers after draining queued tasks. Safe to call multiple
// times.
func (p *Pool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the worker count.
func (p *Pool) Workers() int {
	return p.workers
}
