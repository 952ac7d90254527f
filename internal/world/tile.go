package world

// TileType - тип тайла ландшафта
type TileType uint8

const (
	TileGrass TileType = iota
	TileTree
	TileDirt

	tileTypeCount // всегда последний
)

// String возвращает имя типа тайла
func (t TileType) String() string {
	switch t {
	case TileGrass:
		return "grass"
	case TileTree:
		return "tree"
	case TileDirt:
		return "dirt"
	default:
		return "unknown"
	}
}

// Valid возвращает true для известных типов
func (t TileType) Valid() bool {
	return t < tileTypeCount
}

// Tile - минимальная адресуемая ячейка ландшафта.
// Мировая позиция не хранится: она выводится из координат чанка и локального индекса.
type Tile struct {
	Type TileType
}
