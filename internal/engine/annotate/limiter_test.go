package annotate_test

import (
	"context"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/tally/internal/core/domain"
	"go.trai.ch/tally/internal/engine/annotate"
)

func TestNewLimiter_ClampsBounds(t *testing.T) {
	tests := []struct {
		name          string
		maxConcurrent int
		maxQueued     int
	}{
		{name: "positive bounds", maxConcurrent: 4, maxQueued: 10},
		{name: "zero bounds", maxConcurrent: 0, maxQueued: 0},
		{name: "negative bounds", maxConcurrent: -1, maxQueued: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := annotate.NewLimiter[int](tt.maxConcurrent, tt.maxQueued)
			require.NotNil(t, l)

			// Even a clamped limiter must run a unit.
			got, err := l.Run(context.Background(), func() (int, error) {
				return 42, nil
			})
			require.NoError(t, err)
			assert.Equal(t, 42, got)
		})
	}
}

func TestLimiter_Run_BoundsConcurrency(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		l := annotate.NewLimiter[int](2, 10)

		var mu sync.Mutex
		active, peak := 0, 0

		var wg sync.WaitGroup
		for i := range 6 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := l.Run(context.Background(), func() (int, error) {
					mu.Lock()
					active++
					if active > peak {
						peak = active
					}
					mu.Unlock()

					time.Sleep(10 * time.Millisecond)

					mu.Lock()
					active--
					mu.Unlock()
					return i, nil
				})
				require.NoError(t, err)
			}()
		}
		wg.Wait()

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 2, peak)
		assert.Equal(t, 0, active)
	})
}

func TestLimiter_Run_QueueDrainsInOrder(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		l := annotate.NewLimiter[int](1, 10)

		release := make(chan struct{})
		started := make(chan struct{})
		go func() {
			_, _ = l.Run(context.Background(), func() (int, error) {
				close(started)
				<-release
				return 0, nil
			})
		}()
		<-started

		var mu sync.Mutex
		var order []int
		var wg sync.WaitGroup
		for i := 1; i <= 3; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = l.Run(context.Background(), func() (int, error) {
					mu.Lock()
					order = append(order, i)
					mu.Unlock()
					return i, nil
				})
			}()
			// Let each waiter enqueue before the next arrives so the FIFO
			// order is deterministic.
			synctest.Wait()
			require.Equal(t, i, l.Queued())
		}

		close(release)
		wg.Wait()

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, []int{1, 2, 3}, order)
		assert.Equal(t, 0, l.Running())
		assert.Equal(t, 0, l.Queued())
	})
}

func TestLimiter_Run_QueueFullFailsFast(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		l := annotate.NewLimiter[int](1, 1)

		release := make(chan struct{})
		started := make(chan struct{})
		go func() {
			_, _ = l.Run(context.Background(), func() (int, error) {
				close(started)
				<-release
				return 0, nil
			})
		}()
		<-started

		// Fill the single queue slot.
		go func() {
			_, _ = l.Run(context.Background(), func() (int, error) { return 0, nil })
		}()
		synctest.Wait()
		require.Equal(t, 1, l.Queued())

		// Third submission finds running and queue both full.
		_, err := l.Run(context.Background(), func() (int, error) { return 0, nil })
		require.ErrorIs(t, err, domain.ErrQueueFull)

		close(release)
	})
}

func TestLimiter_Run_PanicReleasesSlot(t *testing.T) {
	l := annotate.NewLimiter[int](1, 1)

	_, err := l.Run(context.Background(), func() (int, error) {
		panic("boom")
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")

	// The slot must be free again; with maxConcurrent=1 a leaked slot
	// would block here forever.
	got, err := l.Run(context.Background(), func() (int, error) {
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, got)
	assert.Equal(t, 0, l.Running())
}

func TestLimiter_Run_CancelledWaiterFreesQueueSlot(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		l := annotate.NewLimiter[int](1, 1)

		release := make(chan struct{})
		started := make(chan struct{})
		go func() {
			_, _ = l.Run(context.Background(), func() (int, error) {
				close(started)
				<-release
				return 0, nil
			})
		}()
		<-started

		ctx, cancel := context.WithCancel(context.Background())
		errc := make(chan error, 1)
		go func() {
			_, err := l.Run(ctx, func() (int, error) { return 0, nil })
			errc <- err
		}()
		synctest.Wait()
		require.Equal(t, 1, l.Queued())

		cancel()
		require.ErrorIs(t, <-errc, context.Canceled)
		assert.Equal(t, 0, l.Queued())

		// The freed queue slot is usable again.
		done := make(chan struct{})
		go func() {
			_, _ = l.Run(context.Background(), func() (int, error) { return 0, nil })
			close(done)
		}()
		synctest.Wait()
		require.Equal(t, 1, l.Queued())

		close(release)
		<-done
	})
}
