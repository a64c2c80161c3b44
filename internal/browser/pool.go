// Package browser owns the page-loading boundary: a Loader that turns a URL
// into a RawPage within a bounded timeout, and a capped context Pool shared by
// the fetch workers.
package browser

import (
	"errors"
	"fmt"
)

// ErrPoolExhausted is returned by Acquire when all contexts are checked out.
// Acquisition never queues — callers must release a context before another
// can be acquired.
var ErrPoolExhausted = errors.New("browser pool exhausted")

// Context is one checked-out slot of the pool. It must be returned with
// Release exactly once.
type Context struct {
	id   int
	pool *Pool
}

// ID identifies the slot, for logging.
func (c *Context) ID() int { return c.id }

// Release returns the context to its pool.
func (c *Context) Release() { c.pool.release(c) }

// Pool caps the number of concurrently loaded pages at maxConcurrency.
type Pool struct {
	slots chan *Context
}

// NewPool creates a pool with maxConcurrency slots.
func NewPool(maxConcurrency int) (*Pool, error) {
	if maxConcurrency < 1 {
		return nil, fmt.Errorf("maxConcurrency must be at least 1, got %d", maxConcurrency)
	}
	p := &Pool{slots: make(chan *Context, maxConcurrency)}
	for i := 0; i < maxConcurrency; i++ {
		p.slots <- &Context{id: i + 1, pool: p}
	}
	return p, nil
}

// Acquire checks out a context, or fails immediately with ErrPoolExhausted
// when the cap is reached.
func (p *Pool) Acquire() (*Context, error) {
	select {
	case c := <-p.slots:
		return c, nil
	default:
		return nil, ErrPoolExhausted
	}
}

func (p *Pool) release(c *Context) {
	select {
	case p.slots <- c:
	default:
		// double release — drop rather than block
	}
}
