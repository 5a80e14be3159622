package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPool(t *testing.T) {
	p := NewPool(3, zap.NewNop())
	var mu sync.Mutex
	count := 0
	for i := 0; i < 3; i++ {
		require.NoError(t, p.Submit(func(context.Context) {
			mu.Lock()
			count++
			mu.Unlock()
		}))
	}
	p.Stop()
	require.Equal(t, 3, count)
}

func TestSubmitAfterStop(t *testing.T) {
	p := NewPool(1, zap.NewNop())
	p.Stop()
	p.Stop()
	require.ErrorIs(t, p.Submit(func(context.Context) {}), ErrStopped)
}

func TestQueueFull(t *testing.T) {
	p := NewPool(1, zap.NewNop())
	started := make(chan struct{})
	release := make(chan struct{})
	require.NoError(t, p.Submit(func(context.Context) {
		close(started)
		<-release
	}))
	<-started
	require.NoError(t, p.Submit(func(context.Context) {}))
	require.ErrorIs(t, p.Submit(func(context.Context) {}), ErrQueueFull)
	close(release)
	p.Stop()
}

func TestStopCancelsRunningTask(t *testing.T) {
	p := NewPool(1, zap.NewNop())
	started := make(chan struct{})
	var err error
	require.NoError(t, p.Submit(func(ctx context.Context) {
		close(started)
		select {
		case <-ctx.Done():
			err = ctx.Err()
		case <-time.After(5 * time.Second):
		}
	}))
	<-started
	p.Stop()
	require.ErrorIs(t, err, context.Canceled)
}

func TestPanicRecovered(t *testing.T) {
	p := NewPool(1, zap.NewNop())
	started := make(chan struct{})
	done := make(chan struct{})
	require.NoError(t, p.Submit(func(context.Context) {
		close(started)
		panic("boom")
	}))
	<-started
	require.NoError(t, p.Submit(func(context.Context) { close(done) }))
	<-done
	p.Stop()
}
