package jobs

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

type countingSweeper struct {
	calls atomic.Int32
}

func (c *countingSweeper) Sweep() int {
	c.calls.Add(1)
	return 2
}

func TestSchedulerRunsTasks(t *testing.T) {
	s := NewScheduler()
	sweeper := &countingSweeper{}
	require.NoError(t, s.Add("@every 1s", "sweep", SweepTask("sweep", sweeper)))

	s.Start()
	assert.Eventually(t, func() bool { return sweeper.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
	s.Stop()
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	s := NewScheduler()
	err := s.Add("not a schedule", "broken", func(context.Context) error { return nil })
	assert.Error(t, err)
}

func TestStopCancelsTaskContext(t *testing.T) {
	s := NewScheduler()
	started := make(chan struct{})
	var once sync.Once
	var sawCancel atomic.Bool

	require.NoError(t, s.Add("@every 1s", "blocking", func(ctx context.Context) error {
		once.Do(func() { close(started) })
		<-ctx.Done()
		sawCancel.Store(true)
		return ctx.Err()
	}))

	s.Start()
	select {
	case <-started:
	case <-time.After(3 * time.Second):
		t.Fatal("task never started")
	}
	s.Stop()
	assert.True(t, sawCancel.Load())
}

func TestSweepTaskHonoursCancellation(t *testing.T) {
	sweeper := &countingSweeper{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := SweepTask("sweep", sweeper)(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, int32(0), sweeper.calls.Load())

	require.NoError(t, SweepTask("sweep", sweeper)(context.Background()))
	assert.Equal(t, int32(1), sweeper.calls.Load())
}
