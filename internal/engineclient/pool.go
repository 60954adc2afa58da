package engineclient

import (
	"context"
	"fmt"
	"sync"
)

// Pool hands out mutually-exclusive Driver handles to at most N concurrent
// callers, one per worker slot, via a buffered channel used as both a
// semaphore and a free list. Cancellation is not supported mid-evaluation:
// a failed driver is force-killed and replaced via Recycle.
type Pool struct {
	enginePath string
	slots      chan *Driver
	mu         sync.Mutex
	size       int
}

// NewPool spawns size drivers against the engine at path, failing fast if
// any spawn fails (the worker treats engine-spawn failure as a fatal startup
// error, exit code 1).
func NewPool(path string, size int) (*Pool, error) {
	if size <= 0 {
		size = 1
	}
	p := &Pool{
		enginePath: path,
		slots:      make(chan *Driver, size),
		size:       size,
	}
	for i := 0; i < size; i++ {
		d, err := New(path)
		if err != nil {
			p.closeAll()
			return nil, fmt.Errorf("engineclient: spawning pool driver %d/%d: %w", i+1, size, err)
		}
		p.slots <- d
	}
	return p, nil
}

func (p *Pool) closeAll() {
	close(p.slots)
	for d := range p.slots {
		d.Kill()
	}
}

// Acquire blocks until a driver is available or ctx is done.
func (p *Pool) Acquire(ctx context.Context) (*Driver, error) {
	select {
	case d := <-p.slots:
		return d, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release returns a driver to the pool.
func (p *Pool) Release(d *Driver) {
	p.slots <- d
}

// Recycle kills d (it is assumed to be in an undefined state, e.g. after a
// transport failure) and replaces it with a freshly spawned driver against
// the same engine binary. If the respawn itself fails, the slot is dropped
// and the pool's capacity shrinks by one.
func (p *Pool) Recycle(d *Driver) {
	d.Kill()
	fresh, err := New(p.enginePath)
	if err != nil {
		p.mu.Lock()
		p.size--
		p.mu.Unlock()
		return
	}
	p.slots <- fresh
}

// Shutdown drains every driver from the pool (blocking until all in-flight
// tasks have released theirs) and sends "quit" to each.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	n := p.size
	p.mu.Unlock()
	for i := 0; i < n; i++ {
		d := <-p.slots
		_ = d.Quit()
	}
}
