// Package parallel runs index-range loops across a fixed number of workers.
package parallel

import (
	"runtime"
	"sync"
)

// Threshold is the minimum item count split across workers.
// Below this, one goroutine is faster.
const Threshold = 64

// Pool splits index ranges into contiguous chunks, one per worker.
// Each worker owns a disjoint range, so callers writing only their own
// indices need no locking.
type Pool struct {
	workers int
}

// New returns a pool with n workers. n <= 0 uses GOMAXPROCS.
func New(n int) *Pool {
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	return &Pool{workers: n}
}

// Workers returns the worker count.
func (p *Pool) Workers() int {
	if p == nil {
		return 1
	}
	return p.workers
}

// For calls fn(worker, start, end) over [0, n). Worker ids are in [0, Workers()).
// It returns once every chunk is done.
func (p *Pool) For(n int, fn func(worker, start, end int)) {
	if n <= 0 {
		return
	}
	workers := p.Workers()
	if workers == 1 || n < Threshold {
		fn(0, 0, n)
		return
	}
	if workers > n {
		workers = n
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunk
		if start >= n {
			break
		}
		end := min(start+chunk, n)
		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()
			fn(w, start, end)
		}(w, start, end)
	}
	wg.Wait()
}

// Each calls fn(i) for every i in [0, n).
func (p *Pool) Each(n int, fn func(i int)) {
	p.For(n, func(_, start, end int) {
		for i := start; i < end; i++ {
			fn(i)
		}
	})
}
