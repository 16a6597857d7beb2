package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_Flow(t *testing.T) {
	pool := NewPool(Config{Min: 1, Max: 4, IdleTimeout: time.Minute, QueueSize: 10})
	pool.Start()
	t.Cleanup(pool.Stop)

	t.Run("Min workers start immediately", func(t *testing.T) {
		assert.Equal(t, 1, pool.WorkerCount())
	})

	t.Run("Worker executes a task", func(t *testing.T) {
		done := make(chan string, 1)
		require.NoError(t, pool.Submit(context.Background(), func(ctx context.Context) {
			done <- "ran"
		}))

		select {
		case v := <-done:
			assert.Equal(t, "ran", v)
		case <-time.After(2 * time.Second):
			t.Fatal("task did not run")
		}
	})

	t.Run("Dispatcher grows pool when workers are busy", func(t *testing.T) {
		release := make(chan struct{})
		var started sync.WaitGroup
		started.Add(4)
		for i := 0; i < 4; i++ {
			require.NoError(t, pool.Submit(context.Background(), func(ctx context.Context) {
				started.Done()
				<-release
			}))
		}

		waitDone := make(chan struct{})
		go func() {
			started.Wait()
			close(waitDone)
		}()
		select {
		case <-waitDone:
		case <-time.After(2 * time.Second):
			t.Fatal("blocking tasks did not all start; pool did not grow")
		}
		assert.Equal(t, 4, pool.WorkerCount())
		close(release)
	})
}

func TestPool_SkipsTaskWithCancelledContext(t *testing.T) {
	pool := NewPool(Config{Min: 1, Max: 1, IdleTimeout: time.Minute, QueueSize: 10})
	pool.Start()
	t.Cleanup(pool.Stop)

	release := make(chan struct{})
	require.NoError(t, pool.Submit(context.Background(), func(ctx context.Context) { <-release }))

	var ran atomic.Bool
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, pool.Submit(ctx, func(ctx context.Context) { ran.Store(true) }))
	cancel()
	close(release)

	marker := make(chan struct{})
	require.NoError(t, pool.Submit(context.Background(), func(ctx context.Context) { close(marker) }))
	<-marker
	assert.False(t, ran.Load())
}

func TestPool_SubmitWithDoneContext(t *testing.T) {
	pool := NewPool(Config{Min: 1, Max: 1, QueueSize: 1})
	pool.Start()
	t.Cleanup(pool.Stop)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, pool.Submit(ctx, func(ctx context.Context) {}), context.Canceled)
}

func TestPool_StopDrainsAndRejects(t *testing.T) {
	pool := NewPool(Config{Min: 1, Max: 1, IdleTimeout: time.Minute, QueueSize: 10})
	pool.Start()

	var count atomic.Int32
	for i := 0; i < 5; i++ {
		require.NoError(t, pool.Submit(context.Background(), func(ctx context.Context) {
			time.Sleep(5 * time.Millisecond)
			count.Add(1)
		}))
	}

	stopped := make(chan struct{})
	go func() {
		pool.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("workers did not stop within timeout")
	}

	assert.Equal(t, int32(5), count.Load())
	assert.Equal(t, 0, pool.WorkerCount())
	assert.ErrorIs(t, pool.Submit(context.Background(), func(ctx context.Context) {}), ErrPoolStopped)
}

func TestWorker_IdleTimeout(t *testing.T) {
	pool := NewPool(Config{Min: 1, Max: 3, IdleTimeout: 50 * time.Millisecond, QueueSize: 10})
	pool.Start()
	t.Cleanup(pool.Stop)

	release := make(chan struct{})
	var started sync.WaitGroup
	started.Add(3)
	for i := 0; i < 3; i++ {
		require.NoError(t, pool.Submit(context.Background(), func(ctx context.Context) {
			started.Done()
			<-release
		}))
	}
	started.Wait()
	require.Equal(t, 3, pool.WorkerCount())
	close(release)

	assert.Eventually(t, func() bool { return pool.WorkerCount() == 1 }, 2*time.Second, 10*time.Millisecond,
		"idle workers above the minimum should retire")
}
