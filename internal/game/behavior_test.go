package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/annel0/sandbox-core/internal/combat"
	"github.com/annel0/sandbox-core/internal/config"
	"github.com/annel0/sandbox-core/internal/eventbus"
	"github.com/annel0/sandbox-core/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMob_StaticByDefault(t *testing.T) {
	s := newTestSession(t, quietConfig())
	mob, err := s.SpawnMob(combat.KindMob, 20, 20)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		_, err := s.Frame(time.Second)
		require.NoError(t, err)
	}
	assert.Nil(t, mob.State())
	assert.Equal(t, vec.Vec2Float{X: 20, Y: 20}, mob.Entity.Position)
}

func TestMob_ChaseApproachesPlayer(t *testing.T) {
	cfg := quietConfig()
	cfg.Mobs.Spider.Behavior = config.BehaviorChase
	cfg.Mobs.Spider.Speed = 2
	s := newTestSession(t, cfg)

	mob, err := s.SpawnMob(combat.KindSpider, 4, 1)
	require.NoError(t, err)
	require.IsType(t, &IdleState{}, mob.State())

	start := mob.Entity.Center().DistanceTo(s.Player().Entity.Center())
	_, err = s.Frame(100 * time.Millisecond)
	require.NoError(t, err)
	assert.IsType(t, &ChaseState{}, mob.State(), "игрок в пределах aggroRange")

	for i := 0; i < 5; i++ {
		_, err = s.Frame(100 * time.Millisecond)
		require.NoError(t, err)
	}
	assert.Less(t, mob.Entity.Center().DistanceTo(s.Player().Entity.Center()), start)
}

func TestMob_ChaseLosesPlayerBeyondLeash(t *testing.T) {
	cfg := quietConfig()
	cfg.Mobs.Mob.Behavior = config.BehaviorChase
	cfg.Mobs.Mob.Speed = 1
	s := newTestSession(t, cfg)

	mob, err := s.SpawnMob(combat.KindMob, 3, 0)
	require.NoError(t, err)
	_, err = s.Frame(10 * time.Millisecond)
	require.NoError(t, err)
	require.IsType(t, &ChaseState{}, mob.State())

	s.Player().Entity.Position = vec.Vec2Float{X: -50, Y: 0}
	_, err = s.Frame(10 * time.Millisecond)
	require.NoError(t, err)
	assert.IsType(t, &IdleState{}, mob.State())
}

func TestMob_WanderMovesThenIdles(t *testing.T) {
	cfg := quietConfig()
	cfg.Mobs.Mob.Behavior = config.BehaviorWander
	cfg.Mobs.Mob.Speed = 1
	s := newTestSession(t, cfg)

	home := vec.Vec2Float{X: 100, Y: 100}
	mob, err := s.SpawnMob(combat.KindMob, home.X, home.Y)
	require.NoError(t, err)

	sawWander := false
	for i := 0; i < 200; i++ {
		_, err := s.Frame(100 * time.Millisecond)
		require.NoError(t, err)
		if _, ok := mob.State().(*WanderState); ok {
			sawWander = true
		}
	}

	assert.True(t, sawWander, "после простоя моб начинает бродить")
	assert.NotEqual(t, home, mob.Entity.Position)
}

func TestMob_MoveTowardStopsAtTarget(t *testing.T) {
	model := combat.NewModel(context.Background(), nil)
	e, err := model.Create(combat.KindMob, 0, 0, 1, 1, 10)
	require.NoError(t, err)
	m := &Mob{Entity: e}

	assert.False(t, m.moveToward(vec.Vec2Float{X: 10, Y: 0}, 3))
	assert.Equal(t, vec.Vec2Float{X: 3, Y: 0}, e.Position)
	assert.True(t, m.moveToward(vec.Vec2Float{X: 4, Y: 0}, 3))
	assert.Equal(t, vec.Vec2Float{X: 4, Y: 0}, e.Position)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*eventbus.Event
}

func (r *recordingPublisher) Publish(_ context.Context, ev *eventbus.Event) error {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	return nil
}

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

func TestSession_PublishesEvents(t *testing.T) {
	events := &recordingPublisher{}
	s, err := NewSession(context.Background(), quietConfig(), Deps{Events: events})
	require.NoError(t, err)
	t.Cleanup(s.Close)

	_, err = s.SpawnMob(combat.KindBoss, 0, 0)
	require.NoError(t, err)
	_, err = s.Frame(15 * time.Second)
	require.NoError(t, err)
	require.NoError(t, s.Restart())
	s.PlaceBlock()
	s.RemoveBlock()

	assert.Equal(t, []string{
		eventbus.TypeMobSpawned,
		eventbus.TypeEntityDied,
		eventbus.TypeGameOver,
		eventbus.TypeRestarted,
		eventbus.TypeBlockPlaced,
		eventbus.TypeBlockRemoved,
	}, events.types())

	for _, ev := range events.events {
		assert.Equal(t, s.ID.String(), ev.Session)
	}
	assert.Equal(t, "player", events.events[1].Kind)
	assert.Equal(t, 9, events.events[2].Priority)
}

func TestSession_EventsThroughMemoryBus(t *testing.T) {
	bus := eventbus.NewMemoryBus(32, nil)
	var (
		mu     sync.Mutex
		deaths []uint64
	)
	_, err := bus.Subscribe(context.Background(), eventbus.Filter{Types: []string{eventbus.TypeEntityDied}},
		func(_ context.Context, ev *eventbus.Event) {
			mu.Lock()
			deaths = append(deaths, ev.EntityID)
			mu.Unlock()
		})
	require.NoError(t, err)

	s, err := NewSession(context.Background(), quietConfig(), Deps{Events: bus})
	require.NoError(t, err)
	t.Cleanup(s.Close)

	sword, err := combat.NewSword("test", 100)
	require.NoError(t, err)
	s.Equip(sword)
	mob, err := s.SpawnMob(combat.KindMob, 5, 5)
	require.NoError(t, err)
	_, err = s.PointerDown(5, 5)
	require.NoError(t, err)

	bus.Close()
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []uint64{mob.Entity.ID}, deaths)
}
