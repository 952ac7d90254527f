package world

import (
	"fmt"

	"github.com/annel0/sandbox-core/internal/vec"
)

// Chunk представляет участок мира Size x Size тайлов.
// После генерации чанк не изменяется: наружу отдаются только копии тайлов.
type Chunk struct {
	Coords vec.Vec2 // Координаты чанка в мире
	Size   int      // Тайлов по стороне

	tiles []Tile // row-major: tiles[y*Size+x]
}

func newChunk(coords vec.Vec2, size int) *Chunk {
	return &Chunk{
		Coords: coords,
		Size:   size,
		tiles:  make([]Tile, size*size),
	}
}

// NewChunkFromTiles восстанавливает чанк из сохранённых тайлов (row-major).
// Используется слоем вытеснения, генерация идёт через Generator.
func NewChunkFromTiles(coords vec.Vec2, size int, tiles []Tile) (*Chunk, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d", ErrInvalidConfig, size)
	}
	if len(tiles) != size*size {
		return nil, fmt.Errorf("%w: chunk %v has %d tiles, want %d", ErrInvalidConfig, coords, len(tiles), size*size)
	}
	for i, t := range tiles {
		if !t.Type.Valid() {
			return nil, fmt.Errorf("%w: chunk %v tile %d has type %d", ErrInvalidConfig, coords, i, t.Type)
		}
	}

	c := newChunk(coords, size)
	copy(c.tiles, tiles)
	return c, nil
}

// Tile возвращает тайл по локальным координатам
func (c *Chunk) Tile(local vec.Vec2) (Tile, bool) {
	if !c.inBounds(local) {
		return Tile{}, false
	}
	return c.tiles[local.Y*c.Size+local.X], true
}

// Tiles возвращает копию всех тайлов в порядке row-major
func (c *Chunk) Tiles() []Tile {
	out := make([]Tile, len(c.tiles))
	copy(out, c.tiles)
	return out
}

// TileWorldPos возвращает мировые координаты тайла (в тайлах)
func (c *Chunk) TileWorldPos(local vec.Vec2) vec.Vec2 {
	return c.Coords.Mul(c.Size).Add(local)
}

// Count возвращает количество тайлов указанного типа
func (c *Chunk) Count(t TileType) int {
	n := 0
	for _, tile := range c.tiles {
		if tile.Type == t {
			n++
		}
	}
	return n
}

// Equal сравнивает координаты и содержимое двух чанков
func (c *Chunk) Equal(other *Chunk) bool {
	if other == nil || c.Coords != other.Coords || c.Size != other.Size {
		return false
	}
	for i := range c.tiles {
		if c.tiles[i] != other.tiles[i] {
			return false
		}
	}
	return true
}

func (c *Chunk) inBounds(local vec.Vec2) bool {
	return local.X >= 0 && local.Y >= 0 && local.X < c.Size && local.Y < c.Size
}

func (c *Chunk) set(local vec.Vec2, t TileType) {
	c.tiles[local.Y*c.Size+local.X] = Tile{Type: t}
}
