package game

import (
	"github.com/annel0/sandbox-core/internal/combat"
	"github.com/annel0/sandbox-core/internal/vec"
	"github.com/annel0/sandbox-core/internal/world"
)

// EntityView - снимок сущности для отрисовки
type EntityView struct {
	ID             uint64
	Kind           combat.Kind
	Position       vec.Vec2Float
	Size           vec.Vec2Float
	Health         int
	MaxHealth      int
	HealthFraction float64
	Alive          bool
}

// SpellView - снимок летящего заклинания
type SpellView struct {
	Kind     SpellKind
	Position vec.Vec2Float
}

// FrameView - всё, что нужно хосту для отрисовки кадра.
// Урон и сигналы смерти кадра уже применены.
type FrameView struct {
	Frame     uint64
	Center    vec.Vec2 // Чанк игрока
	Chunks    []*world.Chunk
	Ground    world.TileType // Тайл под центром игрока
	Player    EntityView
	Mobs      []EntityView // В порядке появления
	Spells    []SpellView
	Blocks    []vec.Vec2Float
	Inventory Inventory
	Weapon    string
	GameOver  bool
}

func viewOf(m *combat.Model, e *combat.Entity) EntityView {
	return EntityView{
		ID:             e.ID,
		Kind:           e.Kind,
		Position:       e.Position,
		Size:           e.Size(),
		Health:         e.Health(),
		MaxHealth:      e.MaxHealth(),
		HealthFraction: m.HealthFraction(e),
		Alive:          e.Alive(),
	}
}

// Summary - короткая сводка кадра, безопасная для передачи в другие горутины
type Summary struct {
	Session   string    `json:"session"`
	Frame     uint64    `json:"frame"`
	Chunk     vec.Vec2  `json:"chunk"`
	Ground    string    `json:"ground"`
	Health    int       `json:"health"`
	MaxHealth int       `json:"max_health"`
	Mobs      int       `json:"mobs"`
	Blocks    int       `json:"blocks"`
	Inventory Inventory `json:"inventory"`
	Weapon    string    `json:"weapon"`
	GameOver  bool      `json:"game_over"`
}

// Summary сворачивает снимок кадра
func (v FrameView) Summary(session string) Summary {
	return Summary{
		Session:   session,
		Frame:     v.Frame,
		Chunk:     v.Center,
		Ground:    v.Ground.String(),
		Health:    v.Player.Health,
		MaxHealth: v.Player.MaxHealth,
		Mobs:      len(v.Mobs),
		Blocks:    len(v.Blocks),
		Inventory: v.Inventory,
		Weapon:    v.Weapon,
		GameOver:  v.GameOver,
	}
}
