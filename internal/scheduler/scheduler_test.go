package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"notesheet/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerRunsTasksPeriodically(t *testing.T) {
	s := NewScheduler(4, logger.NewNopLogger())

	var fast, failing int32
	s.Add(Task{Name: "fast", Interval: 10 * time.Millisecond, Execute: func(context.Context) error {
		atomic.AddInt32(&fast, 1)
		return nil
	}})
	s.Add(Task{Name: "failing", Interval: 15 * time.Millisecond, Execute: func(context.Context) error {
		atomic.AddInt32(&failing, 1)
		return errors.New("boom")
	}})

	s.Start(context.Background())
	require.True(t, s.Running())

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&fast) >= 3 && atomic.LoadInt32(&failing) >= 2
	}, 2*time.Second, 5*time.Millisecond)

	s.Stop()
	assert.False(t, s.Running())

	stopped := atomic.LoadInt32(&fast)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, stopped, atomic.LoadInt32(&fast), "no ticks after Stop")
}

func TestSchedulerNeverOverlapsTasks(t *testing.T) {
	s := NewScheduler(8, logger.NewNopLogger())

	var inFlight, maxInFlight, runs int32
	work := func(context.Context) error {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			m := atomic.LoadInt32(&maxInFlight)
			if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
				break
			}
		}
		time.Sleep(3 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		atomic.AddInt32(&runs, 1)
		return nil
	}
	s.Add(Task{Name: "a", Interval: 5 * time.Millisecond, Execute: work})
	s.Add(Task{Name: "b", Interval: 5 * time.Millisecond, Execute: work})

	s.Start(context.Background())
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&runs) >= 6 }, 2*time.Second, 5*time.Millisecond)
	s.Stop()

	assert.Equal(t, int32(1), atomic.LoadInt32(&maxInFlight))
}

func TestSchedulerStartStopAreIdempotent(t *testing.T) {
	s := NewScheduler(1, logger.NewNopLogger())
	s.Add(Task{Name: "no-interval", Execute: func(context.Context) error { return nil }})

	s.Stop()
	s.Start(context.Background())
	s.Start(context.Background())
	assert.True(t, s.Running())
	s.Stop()
	s.Stop()
	assert.False(t, s.Running())
}

func TestSchedulerStopsWithParentContext(t *testing.T) {
	s := NewScheduler(1, logger.NewNopLogger())
	var runs int32
	s.Add(Task{Name: "tick", Interval: 5 * time.Millisecond, Execute: func(context.Context) error {
		atomic.AddInt32(&runs, 1)
		return nil
	}})

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&runs) >= 1 }, time.Second, 5*time.Millisecond)
	cancel()

	// Stop still returns once the goroutines have observed the cancellation.
	s.Stop()
	assert.False(t, s.Running())
}
