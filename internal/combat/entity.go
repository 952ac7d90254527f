package combat

import (
	"context"

	"github.com/annel0/sandbox-core/internal/physics"
	"github.com/annel0/sandbox-core/internal/vec"
)

// Kind - тип сущности
type Kind uint8

const (
	KindMob Kind = iota
	KindSpider
	KindBoss
	KindPlayer
)

// String возвращает имя типа
func (k Kind) String() string {
	switch k {
	case KindMob:
		return "mob"
	case KindSpider:
		return "spider"
	case KindBoss:
		return "boss"
	case KindPlayer:
		return "player"
	default:
		return "unknown"
	}
}

// Entity - сущность, которой можно нанести урон.
// Состояния: Alive (0 < health <= maxHealth) -> Dead (health == 0), без возврата.
type Entity struct {
	ID       uint64
	Kind     Kind
	Position vec.Vec2Float // Левый нижний угол хитбокса
	Collider *physics.BoxCollider

	health    int
	maxHealth int
	dead      bool

	// Время жизни сущности: отменяется при смерти или удалении,
	// периодические задачи сущности завершаются вместе с ним.
	ctx    context.Context
	cancel context.CancelFunc
}

// Health возвращает текущее здоровье
func (e *Entity) Health() int {
	return e.health
}

// MaxHealth возвращает максимальное здоровье
func (e *Entity) MaxHealth() int {
	return e.maxHealth
}

// Alive возвращает true, пока здоровье больше нуля
func (e *Entity) Alive() bool {
	return !e.dead
}

// Size возвращает размер хитбокса
func (e *Entity) Size() vec.Vec2Float {
	return vec.Vec2Float{X: e.Collider.Width, Y: e.Collider.Height}
}

// Center возвращает центр хитбокса
func (e *Entity) Center() vec.Vec2Float {
	return e.Collider.Center(e.Position)
}

// Context возвращает контекст времени жизни сущности
func (e *Entity) Context() context.Context {
	return e.ctx
}

// Done закрывается, когда сущность умерла или удалена
func (e *Entity) Done() <-chan struct{} {
	return e.ctx.Done()
}
