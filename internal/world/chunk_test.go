package world

import (
	"testing"

	"github.com/annel0/sandbox-core/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk_TileWorldPos(t *testing.T) {
	chunk := newChunk(vec.Vec2{X: -1, Y: 2}, 10)

	assert.Equal(t, vec.Vec2{X: -10, Y: 20}, chunk.TileWorldPos(vec.Vec2{X: 0, Y: 0}))
	assert.Equal(t, vec.Vec2{X: -1, Y: 29}, chunk.TileWorldPos(vec.Vec2{X: 9, Y: 9}))
}

func TestChunk_TileBounds(t *testing.T) {
	chunk := newChunk(vec.Vec2{}, 4)
	chunk.set(vec.Vec2{X: 3, Y: 1}, TileTree)

	tile, ok := chunk.Tile(vec.Vec2{X: 3, Y: 1})
	require.True(t, ok)
	assert.Equal(t, TileTree, tile.Type)

	_, ok = chunk.Tile(vec.Vec2{X: 4, Y: 0})
	assert.False(t, ok)
	_, ok = chunk.Tile(vec.Vec2{X: -1, Y: 0})
	assert.False(t, ok)
}

func TestChunk_TilesReturnsCopy(t *testing.T) {
	chunk := newChunk(vec.Vec2{}, 2)
	tiles := chunk.Tiles()
	tiles[0].Type = TileDirt

	tile, _ := chunk.Tile(vec.Vec2{})
	assert.Equal(t, TileGrass, tile.Type, "изменение копии не должно менять чанк")
}

func TestNewChunkFromTiles(t *testing.T) {
	tiles := []Tile{{TileGrass}, {TileTree}, {TileDirt}, {TileGrass}}
	chunk, err := NewChunkFromTiles(vec.Vec2{X: 1, Y: 1}, 2, tiles)
	require.NoError(t, err)
	assert.Equal(t, 1, chunk.Count(TileTree))
	assert.Equal(t, tiles, chunk.Tiles())

	_, err = NewChunkFromTiles(vec.Vec2{}, 3, tiles)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewChunkFromTiles(vec.Vec2{}, 1, []Tile{{Type: TileType(9)}})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestTileType_String(t *testing.T) {
	assert.Equal(t, "grass", TileGrass.String())
	assert.Equal(t, "tree", TileTree.String())
	assert.Equal(t, "dirt", TileDirt.String())
	assert.Equal(t, "unknown", TileType(77).String())
}
