package game

import (
	"github.com/annel0/sandbox-core/internal/combat"
	"github.com/annel0/sandbox-core/internal/physics"
	"github.com/annel0/sandbox-core/internal/vec"
)

// SpellKind - вид заклинания
type SpellKind uint8

const (
	SpellFireball SpellKind = iota
	SpellIce
)

const (
	spellSpeed = 12.0 // Единиц в секунду
	spellRange = 10.0 // Дальность полёта
	spellSize  = 0.5  // Сторона хитбокса снаряда
)

var spellCollider = physics.NewBoxCollider(spellSize, spellSize)

func (k SpellKind) String() string {
	switch k {
	case SpellFireball:
		return "fireball"
	case SpellIce:
		return "ice"
	default:
		return "unknown"
	}
}

// Spell - летящий снаряд. Реализует combat.Item, урон наносит первому
// мобу, чей хитбокс пересёк.
type Spell struct {
	Kind     SpellKind
	Position vec.Vec2Float // Центр снаряда

	velocity vec.Vec2Float
	traveled float64
}

func (s *Spell) Name() string { return s.Kind.String() }

func (s *Spell) Damage() int {
	if s.Kind == SpellFireball {
		return 15
	}
	return 8
}

// advance сдвигает снаряд; false - снаряд улетел за пределы дальности
func (s *Spell) advance(seconds float64) bool {
	delta := s.velocity.Mul(seconds)
	s.Position = s.Position.Add(delta)
	s.traveled += delta.Length()
	return s.traveled <= spellRange
}

// hits проверяет пересечение хитбокса снаряда с хитбоксом сущности
func (s *Spell) hits(e *combat.Entity) bool {
	corner := s.Position.Sub(vec.Vec2Float{X: spellSize / 2, Y: spellSize / 2})
	return physics.CheckBoxCollision(corner, spellCollider, e.Position, e.Collider)
}

var _ combat.Item = (*Spell)(nil)
