package game

import (
	"fmt"

	"github.com/annel0/sandbox-core/internal/combat"
)

// ItemKind - вид ресурса в инвентаре
type ItemKind uint8

const (
	ItemWood ItemKind = iota
	ItemStone
)

func (k ItemKind) String() string {
	switch k {
	case ItemWood:
		return "wood"
	case ItemStone:
		return "stone"
	default:
		return "unknown"
	}
}

// Inventory - счётчики ресурсов сессии
type Inventory struct {
	Wood  int `json:"wood"`
	Stone int `json:"stone"`
}

func (inv *Inventory) counter(kind ItemKind) (*int, error) {
	switch kind {
	case ItemWood:
		return &inv.Wood, nil
	case ItemStone:
		return &inv.Stone, nil
	default:
		return nil, fmt.Errorf("%w: item kind %d", ErrInvalidInput, kind)
	}
}

// Add добавляет n ресурсов; n < 0 недопустимо
func (inv *Inventory) Add(kind ItemKind, n int) error {
	if n < 0 {
		return fmt.Errorf("%w: negative amount %d of %s", ErrInvalidInput, n, kind)
	}
	c, err := inv.counter(kind)
	if err != nil {
		return err
	}
	*c += n
	return nil
}

// Has проверяет, хватает ли ресурсов на стоимость
func (inv Inventory) Has(cost Inventory) bool {
	return inv.Wood >= cost.Wood && inv.Stone >= cost.Stone
}

// Recipe - рецепт оружия
type Recipe struct {
	Name string
	Cost Inventory
	Make func() combat.Item
}

// Recipes - доступные рецепты по имени
var Recipes = map[string]Recipe{
	"wooden_sword": {
		Name: "wooden_sword",
		Cost: Inventory{Wood: 2},
		Make: func() combat.Item { return combat.WoodenSword() },
	},
	"stone_sword": {
		Name: "stone_sword",
		Cost: Inventory{Wood: 1, Stone: 2},
		Make: func() combat.Item { return combat.StoneSword() },
	},
}
