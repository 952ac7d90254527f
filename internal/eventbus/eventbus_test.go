package eventbus

import (
	"bytes"
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/annel0/sandbox-core/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collector struct {
	mu     sync.Mutex
	events []*Event
}

func (c *collector) handle(_ context.Context, ev *Event) {
	c.mu.Lock()
	c.events = append(c.events, ev)
	c.mu.Unlock()
}

func (c *collector) types() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.events))
	for _, ev := range c.events {
		out = append(out, ev.Type)
	}
	return out
}

func TestMemoryBus_DeliversInOrderWithFilter(t *testing.T) {
	bus := NewMemoryBus(16, nil)
	all, deaths := &collector{}, &collector{}

	_, err := bus.Subscribe(context.Background(), Filter{}, all.handle)
	require.NoError(t, err)
	_, err = bus.Subscribe(context.Background(), Filter{Types: []string{TypeEntityDied}}, deaths.handle)
	require.NoError(t, err)

	for _, typ := range []string{TypeMobSpawned, TypeEntityDied, TypeGameOver} {
		require.NoError(t, bus.Publish(context.Background(), NewEvent("s1", typ)))
	}
	bus.Close()

	assert.Equal(t, []string{TypeMobSpawned, TypeEntityDied, TypeGameOver}, all.types())
	assert.Equal(t, []string{TypeEntityDied}, deaths.types())

	stats := bus.Stats()
	assert.Equal(t, uint64(3), stats.Published)
	assert.Equal(t, uint64(4), stats.Consumed)
	assert.Zero(t, stats.InFlight)
}

func TestMemoryBus_SessionFilter(t *testing.T) {
	bus := NewMemoryBus(4, nil)
	c := &collector{}
	_, err := bus.Subscribe(context.Background(), Filter{Sessions: []string{"b"}}, c.handle)
	require.NoError(t, err)

	require.NoError(t, bus.Publish(context.Background(), NewEvent("a", TypeRestarted)))
	require.NoError(t, bus.Publish(context.Background(), NewEvent("b", TypeRestarted)))
	bus.Close()

	require.Len(t, c.events, 1)
	assert.Equal(t, "b", c.events[0].Session)
	assert.NotEmpty(t, c.events[0].ID)
}

func TestMemoryBus_Unsubscribe(t *testing.T) {
	bus := NewMemoryBus(4, nil)
	c := &collector{}
	sub, err := bus.Subscribe(context.Background(), Filter{}, c.handle)
	require.NoError(t, err)

	sub.Unsubscribe()
	require.NoError(t, bus.Publish(context.Background(), NewEvent("s", TypeGameOver)))
	bus.Close()

	assert.Empty(t, c.types())
}

func TestMemoryBus_DropsLowPriorityWhenFull(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())
	bus := NewMemoryBus(1, metrics)

	block := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	_, err := bus.Subscribe(context.Background(), Filter{}, func(context.Context, *Event) {
		once.Do(func() { close(started) })
		<-block
	})
	require.NoError(t, err)

	require.NoError(t, bus.Publish(context.Background(), NewEvent("s", TypeMobSpawned)))
	<-started // первое событие в обработчике, буфер пуст
	require.NoError(t, bus.Publish(context.Background(), NewEvent("s", TypeMobSpawned)))
	require.NoError(t, bus.Publish(context.Background(), NewEvent("s", TypeMobSpawned)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	critical := NewEvent("s", TypeGameOver)
	critical.Priority = 9
	assert.ErrorIs(t, bus.Publish(ctx, critical), context.Canceled)

	close(block)
	bus.Close()

	assert.Equal(t, uint64(1), bus.Stats().Dropped)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Dropped))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Published))
}

func TestMemoryBus_ClosedRejectsCalls(t *testing.T) {
	bus := NewMemoryBus(1, nil)
	bus.Close()
	bus.Close()

	assert.ErrorIs(t, bus.Publish(context.Background(), NewEvent("s", TypeGameOver)), ErrClosed)
	_, err := bus.Subscribe(context.Background(), Filter{}, func(context.Context, *Event) {})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestMemoryBus_CloseDeliversEveryAcceptedEvent(t *testing.T) {
	for round := 0; round < 20; round++ {
		bus := NewMemoryBus(4, nil)
		got := &collector{}
		_, err := bus.Subscribe(context.Background(), Filter{}, got.handle)
		require.NoError(t, err)

		var accepted atomic.Uint64
		var wg sync.WaitGroup
		for p := 0; p < 8; p++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 200; i++ {
					ev := NewEvent("s", TypeMobSpawned)
					ev.Priority = 9
					err := bus.Publish(context.Background(), ev)
					if err != nil {
						assert.ErrorIs(t, err, ErrClosed)
						return
					}
					accepted.Add(1)
				}
			}()
		}

		bus.Close()
		wg.Wait()

		assert.Len(t, got.types(), int(accepted.Load()), "раунд %d", round)
		assert.Equal(t, accepted.Load(), bus.Stats().Published, "раунд %d", round)
	}
}

func TestStartLoggingListener(t *testing.T) {
	var buf bytes.Buffer
	logging.SetOutput(&buf, logging.DEBUG)
	defer logging.CloseDefaultLogger()

	bus := NewMemoryBus(4, nil)
	_, err := StartLoggingListener(context.Background(), bus)
	require.NoError(t, err)

	ev := NewEvent("s1", TypeEntityDied)
	ev.EntityID = 7
	require.NoError(t, bus.Publish(context.Background(), ev))
	bus.Close()

	assert.Contains(t, buf.String(), "EntityDied")
	assert.Contains(t, buf.String(), "entity=7")
	assert.Contains(t, buf.String(), "component=events")
}
