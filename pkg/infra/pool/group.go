package pool

import (
	"context"
	"fmt"
	"sync"
)

// Group runs a fixed set of tasks on a Pool and waits for all of them.
// The first error wins and cancels the context handed to the other tasks.
type Group struct {
	pool   *Pool
	ctx    context.Context
	cancel context.CancelFunc

	wg      sync.WaitGroup
	errOnce sync.Once
	err     error
}

// NewGroup creates a Group bound to ctx.
func (p *Pool) NewGroup(ctx context.Context) *Group {
	ctx, cancel := context.WithCancel(ctx)
	return &Group{pool: p, ctx: ctx, cancel: cancel}
}

// Go submits fn. A submission failure is recorded as the group error.
func (g *Group) Go(fn func(ctx context.Context) error) {
	g.wg.Add(1)
	err := g.pool.Submit(func() {
		defer g.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				g.fail(fmt.Errorf("%w: %v", ErrTaskPanicked, r))
			}
		}()
		if err := fn(g.ctx); err != nil {
			g.fail(err)
		}
	})
	if err != nil {
		g.wg.Done()
		g.fail(err)
	}
}

// Wait blocks until every submitted task returns and reports the first error.
func (g *Group) Wait() error {
	g.wg.Wait()
	g.cancel()
	return g.err
}

func (g *Group) fail(err error) {
	g.errOnce.Do(func() {
		g.err = err
		g.cancel()
	})
}
