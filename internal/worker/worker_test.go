package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingWarmer struct {
	calls atomic.Int32
	err   error
}

func (w *countingWarmer) WarmInventory(context.Context) (int, error) {
	w.calls.Add(1)
	return 3, w.err
}

type countingSweeper struct {
	calls atomic.Int32
	ttl   atomic.Int64
}

func (s *countingSweeper) Sweep(ttl time.Duration) int {
	s.calls.Add(1)
	s.ttl.Store(int64(ttl))
	return 1
}

func runUntilCanceled(t *testing.T, start func(context.Context), wait func() bool) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		start(ctx)
	}()

	require.Eventually(t, wait, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}

func TestInventoryWarmWorkerWarmsImmediatelyAndOnTick(t *testing.T) {
	warmer := &countingWarmer{}
	w := NewInventoryWarmWorker(warmer, 10*time.Millisecond)

	runUntilCanceled(t, w.Start, func() bool { return warmer.calls.Load() >= 3 })
}

func TestInventoryWarmWorkerKeepsRunningOnError(t *testing.T) {
	warmer := &countingWarmer{err: errors.New("db down")}
	w := NewInventoryWarmWorker(warmer, 10*time.Millisecond)

	runUntilCanceled(t, w.Start, func() bool { return warmer.calls.Load() >= 2 })
}

func TestPanelSweepWorker(t *testing.T) {
	sweeper := &countingSweeper{}
	w := NewPanelSweepWorker(sweeper, 30*time.Minute, 10*time.Millisecond)

	runUntilCanceled(t, w.Start, func() bool { return sweeper.calls.Load() >= 2 })
	assert.Equal(t, int64(30*time.Minute), sweeper.ttl.Load())
}
