package hazard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_FiresEveryInterval(t *testing.T) {
	s := NewScheduler(nil)
	calls := 0
	task, err := s.Schedule(context.Background(), time.Second, func() { calls++ })
	require.NoError(t, err)

	s.Tick(500 * time.Millisecond)
	assert.Equal(t, 0, calls)
	s.Tick(500 * time.Millisecond)
	assert.Equal(t, 1, calls)

	// Большой кадр догоняет пропущенные срабатывания
	s.Tick(2500 * time.Millisecond)
	assert.Equal(t, 3, calls)
	assert.Equal(t, uint64(3), task.Fired())
}

func TestScheduler_InsertionOrder(t *testing.T) {
	s := NewScheduler(nil)
	var order []string
	for _, name := range []string{"a", "b", "c"} {
		name := name
		_, err := s.Schedule(context.Background(), time.Second, func() { order = append(order, name) })
		require.NoError(t, err)
	}

	s.Tick(time.Second)
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestScheduler_CancelledTaskNeverFires(t *testing.T) {
	s := NewScheduler(nil)
	calls := 0
	task, err := s.Schedule(context.Background(), time.Second, func() { calls++ })
	require.NoError(t, err)

	task.Cancel()
	s.Tick(10 * time.Second)

	assert.Zero(t, calls)
	assert.False(t, task.Active())
	assert.Zero(t, s.Len())
}

func TestScheduler_DoneOwnerDropsTask(t *testing.T) {
	s := NewScheduler(nil)
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := s.Schedule(ctx, time.Second, func() { calls++ })
	require.NoError(t, err)

	s.Tick(time.Second)
	require.Equal(t, 1, calls)

	cancel()
	s.Tick(5 * time.Second)
	assert.Equal(t, 1, calls, "задача мёртвого владельца не срабатывает")
	assert.Zero(t, s.Len())
}

func TestScheduler_CancelInsideTickStopsCatchUp(t *testing.T) {
	s := NewScheduler(nil)
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := s.Schedule(ctx, time.Second, func() {
		calls++
		cancel()
	})
	require.NoError(t, err)

	s.Tick(5 * time.Second)
	assert.Equal(t, 1, calls)
}

func TestScheduler_TaskAddedDuringTickStartsNextTick(t *testing.T) {
	s := NewScheduler(nil)
	inner := 0
	_, err := s.Schedule(context.Background(), time.Second, func() {
		_, err := s.Schedule(context.Background(), time.Second, func() { inner++ })
		require.NoError(t, err)
	})
	require.NoError(t, err)

	s.Tick(time.Second)
	assert.Zero(t, inner)
	assert.Equal(t, 2, s.Len())

	s.Tick(time.Second)
	assert.Equal(t, 1, inner)
}

func TestScheduler_GuardResetsElapsed(t *testing.T) {
	s := NewScheduler(nil)
	open := true
	calls := 0
	_, err := s.ScheduleGuarded(context.Background(), time.Second, func() bool { return open }, func() { calls++ })
	require.NoError(t, err)

	s.Tick(900 * time.Millisecond)
	open = false
	s.Tick(100 * time.Millisecond)
	open = true
	s.Tick(900 * time.Millisecond)
	assert.Zero(t, calls, "накопленное время сброшено")

	s.Tick(100 * time.Millisecond)
	assert.Equal(t, 1, calls)
}

func TestScheduler_CancelAll(t *testing.T) {
	s := NewScheduler(nil)
	calls := 0
	a, err := s.Schedule(context.Background(), time.Second, func() { calls++ })
	require.NoError(t, err)
	_, err = s.Schedule(context.Background(), time.Second, func() { calls++ })
	require.NoError(t, err)

	s.CancelAll()
	s.Tick(time.Second)

	assert.Zero(t, calls)
	assert.False(t, a.Active())
	assert.Zero(t, s.Len())
}

func TestScheduler_RejectsInvalidInterval(t *testing.T) {
	s := NewScheduler(nil)
	_, err := s.Schedule(context.Background(), 0, func() {})
	assert.ErrorIs(t, err, ErrInvalidInterval)
	_, err = s.Schedule(context.Background(), -time.Second, func() {})
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestScheduler_Metrics(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())
	s := NewScheduler(metrics)
	_, err := s.Schedule(context.Background(), time.Second, func() {})
	require.NoError(t, err)

	s.Tick(3 * time.Second)
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.Fires))
}

func TestRun_StopsOnContextAndFrameError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	frames := 0
	err := Run(ctx, time.Millisecond, func(dt time.Duration) error {
		assert.Positive(t, dt)
		frames++
		if frames == 3 {
			cancel()
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, frames)

	boom := errors.New("boom")
	err = Run(context.Background(), time.Millisecond, func(time.Duration) error { return boom })
	assert.ErrorIs(t, err, boom)

	assert.ErrorIs(t, Run(context.Background(), 0, nil), ErrInvalidInterval)
}
