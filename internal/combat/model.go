package combat

import (
	"context"
	"fmt"
	"math"

	"github.com/annel0/sandbox-core/internal/logging"
	"github.com/annel0/sandbox-core/internal/physics"
	"github.com/annel0/sandbox-core/internal/vec"
)

// DeathHandler вызывается ровно один раз при переходе сущности Alive -> Dead
type DeathHandler func(e *Entity)

// Model - учёт здоровья и попаданий. Не знает, как сущности рисуются и появляются.
// Работает в одном потоке кадра.
type Model struct {
	ctx      context.Context
	nextID   uint64
	handlers []DeathHandler
	metrics  *Metrics
	logger   *logging.Logger
}

// NewModel создаёт модель. Время жизни всех сущностей наследуется от ctx.
func NewModel(ctx context.Context, metrics *Metrics) *Model {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Model{
		ctx:     ctx,
		nextID:  1,
		metrics: metrics,
		logger:  logging.GetCombatLogger(),
	}
}

// OnDeath добавляет обработчик сигнала смерти
func (m *Model) OnDeath(h DeathHandler) {
	m.handlers = append(m.handlers, h)
}

// Create создаёт живую сущность с полным здоровьем
func (m *Model) Create(kind Kind, x, y, width, height float64, maxHealth int) (*Entity, error) {
	if maxHealth <= 0 {
		return nil, fmt.Errorf("%w: maxHealth must be > 0, got %d", ErrInvalidConfig, maxHealth)
	}
	if !finite(width) || !finite(height) || width < 0 || height < 0 {
		return nil, fmt.Errorf("%w: size must be finite and >= 0, got %vx%v", ErrInvalidConfig, width, height)
	}
	pos := vec.Vec2Float{X: x, Y: y}
	if !pos.IsFinite() {
		return nil, fmt.Errorf("%w: position must be finite, got (%v, %v)", ErrInvalidConfig, x, y)
	}

	ctx, cancel := context.WithCancel(m.ctx)
	e := &Entity{
		ID:        m.nextID,
		Kind:      kind,
		Position:  pos,
		Collider:  physics.NewBoxCollider(width, height),
		health:    maxHealth,
		maxHealth: maxHealth,
		ctx:       ctx,
		cancel:    cancel,
	}
	m.nextID++
	m.metrics.created()

	m.logger.Debug("Entity %d (%s) created at (%.2f,%.2f) hp=%d", e.ID, kind, x, y, maxHealth)
	return e, nil
}

// ApplyDamage уменьшает здоровье: health = max(0, health - amount).
// При переходе в Dead сигнал смерти срабатывает один раз; повторный урон по
// мёртвой сущности ничего не меняет.
func (m *Model) ApplyDamage(e *Entity, amount int) (*Entity, error) {
	if amount < 0 {
		return e, fmt.Errorf("%w: entity %d got %d", ErrInvalidDamage, e.ID, amount)
	}
	if e.dead || amount == 0 {
		return e, nil
	}

	before := e.health
	e.health -= amount
	if e.health < 0 {
		e.health = 0
	}
	m.metrics.damaged(before - e.health)
	logging.LogDamage(e.ID, amount, before, e.health)

	if e.health == 0 {
		e.dead = true
		e.cancel()
		m.metrics.died()
		m.logger.Info("Entity %d (%s) died", e.ID, e.Kind)
		for _, h := range m.handlers {
			h(e)
		}
	}
	return e, nil
}

// Strike наносит урон предметом; nil означает удар кулаком
func (m *Model) Strike(target *Entity, item Item) (*Entity, error) {
	if item == nil {
		item = Fist{}
	}
	return m.ApplyDamage(target, item.Damage())
}

// Remove удаляет сущность из игры без сигнала смерти (деспавн).
// Периодические задачи сущности завершаются.
func (m *Model) Remove(e *Entity) {
	if e.ctx.Err() != nil {
		return
	}
	e.cancel()
	if !e.dead {
		m.metrics.removed()
	}
}

// IsPointInside проверяет попадание точки в хитбокс, границы включены
func (m *Model) IsPointInside(e *Entity, x, y float64) bool {
	return e.Collider.IsPointInside(e.Position, vec.Vec2Float{X: x, Y: y})
}

// HealthFraction возвращает health / maxHealth в [0, 1]
func (m *Model) HealthFraction(e *Entity) float64 {
	return float64(e.health) / float64(e.maxHealth)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
