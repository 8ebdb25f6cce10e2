package workerpool

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_ExecutesSubmittedJobs(t *testing.T) {
	p := New(4, 16)

	var counter atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		ok := p.Submit(func() {
			defer wg.Done()
			counter.Add(1)
		})
		require.True(t, ok)
	}
	wg.Wait()

	assert.Equal(t, int64(10), counter.Load())
	require.NoError(t, p.Shutdown(context.Background()))
}

func TestPool_RejectsWhenQueueIsFull(t *testing.T) {
	p := New(1, 1)

	started := make(chan struct{})
	release := make(chan struct{})

	// Occupy the single worker, then fill the single queue slot.
	require.True(t, p.Submit(func() {
		close(started)
		<-release
	}))
	<-started
	require.True(t, p.Submit(func() {}))

	assert.False(t, p.Submit(func() {}), "a full queue must reject, not block")

	close(release)
	require.NoError(t, p.Shutdown(context.Background()))
}

func TestPool_RejectsAfterShutdown(t *testing.T) {
	p := New(2, 4)
	require.NoError(t, p.Shutdown(context.Background()))

	assert.False(t, p.Submit(func() {}))
}

func TestPool_ShutdownDrainsInFlightWork(t *testing.T) {
	p := New(2, 8)

	var done atomic.Int64
	for i := 0; i < 6; i++ {
		require.True(t, p.Submit(func() {
			time.Sleep(10 * time.Millisecond)
			done.Add(1)
		}))
	}

	require.NoError(t, p.Shutdown(context.Background()))
	assert.Equal(t, int64(6), done.Load(), "shutdown must wait for queued jobs")
}

func TestPool_ShutdownHonorsContext(t *testing.T) {
	p := New(1, 1)

	release := make(chan struct{})
	require.True(t, p.Submit(func() { <-release }))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := p.Shutdown(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
}

func TestPool_ConcurrentSubmitDuringShutdown(t *testing.T) {
	// Submits racing Shutdown must resolve to a clean rejection, never
	// a send on a closed channel.
	for i := 0; i < 200; i++ {
		p := New(2, 4)

		start := make(chan struct{})
		var wg sync.WaitGroup
		for g := 0; g < 4; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				for j := 0; j < 50; j++ {
					p.Submit(func() {})
				}
			}()
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if err := p.Shutdown(context.Background()); err != nil {
				t.Error(err)
			}
		}()

		close(start)
		wg.Wait()
	}
}

func TestNew_ClampsDegenerateSizes(t *testing.T) {
	p := New(0, 0)

	var ran atomic.Bool
	var wg sync.WaitGroup
	wg.Add(1)
	require.True(t, p.Submit(func() {
		defer wg.Done()
		ran.Store(true)
	}))
	wg.Wait()

	assert.True(t, ran.Load())
	require.NoError(t, p.Shutdown(context.Background()))
}
