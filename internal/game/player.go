package game

import (
	"github.com/annel0/sandbox-core/internal/combat"
	"github.com/annel0/sandbox-core/internal/vec"
)

// Player - сущность игрока плюс ввод: скорость и оружие
type Player struct {
	Entity   *combat.Entity
	Velocity vec.Vec2Float // Направление движения в долях Speed
	Facing   vec.Vec2Float // Последнее ненулевое направление, туда летят заклинания
	Weapon   combat.Item   // nil => кулак
}

func newPlayer(e *combat.Entity) *Player {
	return &Player{
		Entity: e,
		Facing: vec.Vec2Float{X: 0, Y: -1},
	}
}

func (p *Player) step(speed, seconds float64) {
	p.Entity.Position = p.Entity.Position.Add(p.Velocity.Mul(speed * seconds))
}
