package combat

import (
	"context"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel() (*Model, *[]uint64) {
	m := NewModel(context.Background(), nil)
	deaths := &[]uint64{}
	m.OnDeath(func(e *Entity) { *deaths = append(*deaths, e.ID) })
	return m, deaths
}

func mustCreate(t *testing.T, m *Model, maxHealth int) *Entity {
	t.Helper()
	e, err := m.Create(KindMob, 0, 0, 2, 3, maxHealth)
	require.NoError(t, err)
	return e
}

func TestModel_CreateFullHealth(t *testing.T) {
	m, _ := newTestModel()
	e := mustCreate(t, m, 10)

	assert.Equal(t, 10, e.Health())
	assert.Equal(t, 10, e.MaxHealth())
	assert.True(t, e.Alive())
	assert.Equal(t, 1.0, m.HealthFraction(e))
	assert.NoError(t, e.Context().Err())

	other := mustCreate(t, m, 10)
	assert.NotEqual(t, e.ID, other.ID, "ID сущностей должны быть уникальны")
}

func TestModel_CreateRejectsInvalidConfig(t *testing.T) {
	m, _ := newTestModel()

	cases := map[string]func() (*Entity, error){
		"zero health":     func() (*Entity, error) { return m.Create(KindMob, 0, 0, 1, 1, 0) },
		"negative health": func() (*Entity, error) { return m.Create(KindBoss, 0, 0, 1, 1, -5) },
		"negative width":  func() (*Entity, error) { return m.Create(KindMob, 0, 0, -1, 1, 5) },
		"nan position":    func() (*Entity, error) { return m.Create(KindMob, math.NaN(), 0, 1, 1, 5) },
		"inf height":      func() (*Entity, error) { return m.Create(KindMob, 0, 0, 1, math.Inf(1), 5) },
	}
	for name, create := range cases {
		t.Run(name, func(t *testing.T) {
			e, err := create()
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Nil(t, e)
		})
	}
}

func TestModel_ZeroDamageIsNoop(t *testing.T) {
	m, deaths := newTestModel()
	e := mustCreate(t, m, 10)

	_, err := m.ApplyDamage(e, 0)
	require.NoError(t, err)
	assert.Equal(t, 10, e.Health())
	assert.Empty(t, *deaths)
}

func TestModel_DamageClampsAtZero(t *testing.T) {
	cases := []struct {
		maxHealth, damage, want int
	}{
		{10, 3, 7},
		{10, 10, 0},
		{10, 25, 0},
		{7, 1, 6},
	}
	for _, c := range cases {
		m, _ := newTestModel()
		e := mustCreate(t, m, c.maxHealth)

		_, err := m.ApplyDamage(e, c.damage)
		require.NoError(t, err)
		assert.Equal(t, c.want, e.Health())
		assert.InDelta(t, float64(c.want)/float64(c.maxHealth), m.HealthFraction(e), 1e-9)
	}
}

func TestModel_DeathFiresExactlyOnce(t *testing.T) {
	m, deaths := newTestModel()
	e := mustCreate(t, m, 10)

	_, err := m.ApplyDamage(e, 5)
	require.NoError(t, err)
	assert.Empty(t, *deaths, "после первого удара сущность жива")

	_, err = m.ApplyDamage(e, 10)
	require.NoError(t, err)
	assert.Equal(t, []uint64{e.ID}, *deaths, "смерть на втором ударе")

	_, err = m.ApplyDamage(e, 100)
	require.NoError(t, err)
	_, err = m.ApplyDamage(e, 0)
	require.NoError(t, err)

	assert.Len(t, *deaths, 1, "сигнал смерти не должен повторяться")
	assert.Equal(t, 0, e.Health())
	assert.False(t, e.Alive())
	assert.Equal(t, 0.0, m.HealthFraction(e))
}

func TestModel_DeathCancelsLifetime(t *testing.T) {
	m, _ := newTestModel()
	e := mustCreate(t, m, 1)

	_, err := m.ApplyDamage(e, 1)
	require.NoError(t, err)

	select {
	case <-e.Done():
	default:
		t.Fatal("контекст сущности должен быть отменён после смерти")
	}
}

func TestModel_NegativeDamageRejected(t *testing.T) {
	m, deaths := newTestModel()
	e := mustCreate(t, m, 10)

	_, err := m.ApplyDamage(e, -1)
	assert.ErrorIs(t, err, ErrInvalidDamage)
	assert.Equal(t, 10, e.Health(), "здоровье не должно меняться")
	assert.Empty(t, *deaths)
}

func TestModel_IsPointInsideInclusive(t *testing.T) {
	m, _ := newTestModel()
	e, err := m.Create(KindBoss, 10, 20, 4, 6, 50)
	require.NoError(t, err)

	for _, p := range [][2]float64{{10, 20}, {14, 20}, {10, 26}, {14, 26}, {12, 23}} {
		assert.True(t, m.IsPointInside(e, p[0], p[1]), "точка %v", p)
	}
	for _, p := range [][2]float64{{9, 23}, {15, 23}, {12, 19}, {12, 27}} {
		assert.False(t, m.IsPointInside(e, p[0], p[1]), "точка %v", p)
	}
}

func TestModel_StrikeUsesItemDamage(t *testing.T) {
	m, _ := newTestModel()
	e := mustCreate(t, m, 30)

	_, err := m.Strike(e, StoneSword())
	require.NoError(t, err)
	assert.Equal(t, 20, e.Health())

	_, err = m.Strike(e, nil)
	require.NoError(t, err)
	assert.Equal(t, 19, e.Health(), "без оружия бьём кулаком")

	sword, err := NewSword("bone", 4)
	require.NoError(t, err)
	_, err = m.Strike(e, sword)
	require.NoError(t, err)
	assert.Equal(t, 15, e.Health())

	_, err = NewSword("cursed", -3)
	assert.ErrorIs(t, err, ErrInvalidDamage)
}

func TestModel_RemoveDoesNotSignalDeath(t *testing.T) {
	m, deaths := newTestModel()
	e := mustCreate(t, m, 10)

	m.Remove(e)
	m.Remove(e)

	assert.Error(t, e.Context().Err())
	assert.True(t, e.Alive(), "удаление не убивает сущность")
	assert.Empty(t, *deaths)
}

func TestModel_ParentContextBoundsLifetime(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := NewModel(ctx, nil)
	e, err := m.Create(KindSpider, 0, 0, 1, 1, 5)
	require.NoError(t, err)

	cancel()
	assert.ErrorIs(t, e.Context().Err(), context.Canceled)
}

func TestModel_Metrics(t *testing.T) {
	metrics := NewMetrics(prometheus.NewRegistry())
	m := NewModel(context.Background(), metrics)

	a, err := m.Create(KindMob, 0, 0, 1, 1, 10)
	require.NoError(t, err)
	b, err := m.Create(KindMob, 0, 0, 1, 1, 10)
	require.NoError(t, err)

	_, err = m.ApplyDamage(a, 4)
	require.NoError(t, err)
	_, err = m.ApplyDamage(a, 50) // засчитываются только оставшиеся 6
	require.NoError(t, err)
	m.Remove(b)

	assert.Equal(t, 10.0, testutil.ToFloat64(metrics.Damage))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Deaths))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.Alive))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "spider", KindSpider.String())
	assert.Equal(t, "player", KindPlayer.String())
	assert.Equal(t, "unknown", Kind(99).String())
}
