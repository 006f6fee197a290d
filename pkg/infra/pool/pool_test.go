package pool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPool(t *testing.T, capacity int) *Pool {
	t.Helper()
	p, err := NewPool("test", &Config{Capacity: capacity, ExpiryDuration: time.Second})
	require.NoError(t, err)
	t.Cleanup(p.Release)
	return p
}

func TestNewPool(t *testing.T) {
	p := newTestPool(t, 8)
	assert.Equal(t, "test", p.Name())
	assert.Equal(t, 8, p.Cap())

	_, err := NewPool("bad", &Config{Capacity: 0, ExpiryDuration: time.Second})
	assert.ErrorIs(t, err, ErrInvalidPoolConfig)
}

func TestPoolSubmit(t *testing.T) {
	p := newTestPool(t, 10)

	var counter atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		require.NoError(t, p.Submit(func() {
			defer wg.Done()
			counter.Add(1)
		}))
	}
	wg.Wait()

	assert.Equal(t, int32(100), counter.Load())
	assert.Equal(t, int64(100), p.Stats().SubmittedTasks)
}

func TestPoolSubmitAfterRelease(t *testing.T) {
	p, err := NewPool("closed", nil)
	require.NoError(t, err)
	p.Release()

	assert.ErrorIs(t, p.Submit(func() {}), ErrPoolClosed)
}

func TestPoolReleaseTimeout(t *testing.T) {
	p, err := NewPool("drain", &Config{Capacity: 2, ExpiryDuration: time.Second})
	require.NoError(t, err)

	var done atomic.Bool
	started := make(chan struct{})
	require.NoError(t, p.Submit(func() {
		close(started)
		time.Sleep(50 * time.Millisecond)
		done.Store(true)
	}))
	<-started

	require.NoError(t, p.ReleaseTimeout(2*time.Second))
	assert.True(t, done.Load(), "running task finished before release returned")
	assert.ErrorIs(t, p.Submit(func() {}), ErrPoolClosed)
	assert.NoError(t, p.ReleaseTimeout(time.Second), "second release is a no-op")

	q, err := NewPool("immediate", nil)
	require.NoError(t, err)
	require.NoError(t, q.ReleaseTimeout(0))
	assert.ErrorIs(t, q.Submit(func() {}), ErrPoolClosed)
}

func TestSubmitWithContext_Canceled(t *testing.T) {
	p := newTestPool(t, 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, p.SubmitWithContext(ctx, func() {}), context.Canceled)
}

func TestGroup(t *testing.T) {
	p := newTestPool(t, 4)

	t.Run("all succeed", func(t *testing.T) {
		var sum atomic.Int64
		g := p.NewGroup(context.Background())
		for i := 1; i <= 3; i++ {
			n := int64(i)
			g.Go(func(context.Context) error {
				sum.Add(n)
				return nil
			})
		}
		require.NoError(t, g.Wait())
		assert.Equal(t, int64(6), sum.Load())
	})

	t.Run("first error wins and cancels", func(t *testing.T) {
		boom := errors.New("boom")
		g := p.NewGroup(context.Background())
		g.Go(func(context.Context) error { return boom })
		g.Go(func(ctx context.Context) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(5 * time.Second):
				return nil
			}
		})
		assert.ErrorIs(t, g.Wait(), boom)
	})

	t.Run("panic becomes error", func(t *testing.T) {
		g := p.NewGroup(context.Background())
		g.Go(func(context.Context) error { panic("kaboom") })
		assert.ErrorIs(t, g.Wait(), ErrTaskPanicked)
	})
}
