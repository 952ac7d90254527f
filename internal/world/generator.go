package world

import (
	"fmt"
	"math/rand"

	"github.com/annel0/sandbox-core/internal/util"
	"github.com/annel0/sandbox-core/internal/vec"
)

// Простые числа для пространственного хеша координат чанка
const (
	chunkHashX int64 = 73856093
	chunkHashY int64 = 19349663
)

// Generator генерирует ландшафт чанков
type Generator struct {
	Seed            int64   // Сид мира
	ChunkSize       int     // Тайлов по стороне чанка
	TreeProbability float64 // Шанс дерева на каждом тайле
	DirtThreshold   float64 // Шум ниже порога => земля, иначе трава
	NoiseScale      float64 // Масштаб шума (в тайлах)

	noise *util.Noise
}

// NewGenerator создаёт генератор ландшафта
func NewGenerator(seed int64, chunkSize int, treeProbability, dirtThreshold float64) (*Generator, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be > 0, got %d", ErrInvalidConfig, chunkSize)
	}
	if treeProbability < 0 || treeProbability > 1 {
		return nil, fmt.Errorf("%w: tree probability must be in [0,1], got %v", ErrInvalidConfig, treeProbability)
	}

	return &Generator{
		Seed:            seed,
		ChunkSize:       chunkSize,
		TreeProbability: treeProbability,
		DirtThreshold:   dirtThreshold,
		NoiseScale:      0.08,
		noise:           util.NewNoise(seed),
	}, nil
}

// chunkSeed смешивает сид мира с координатами чанка
func (g *Generator) chunkSeed(coords vec.Vec2) int64 {
	return g.Seed ^ (int64(coords.X) * chunkHashX) ^ (int64(coords.Y) * chunkHashY)
}

// GenerateChunk генерирует чанк по его координатам.
// Результат зависит только от сида и координат.
func (g *Generator) GenerateChunk(coords vec.Vec2) *Chunk {
	chunk := newChunk(coords, g.ChunkSize)

	// Локальный генератор случайных чисел: один бросок на тайл в порядке row-major
	rng := rand.New(rand.NewSource(g.chunkSeed(coords)))

	for y := 0; y < g.ChunkSize; y++ {
		for x := 0; x < g.ChunkSize; x++ {
			local := vec.Vec2{X: x, Y: y}

			if rng.Float64() < g.TreeProbability {
				chunk.set(local, TileTree)
				continue
			}

			global := chunk.TileWorldPos(local)
			height := g.noise.At(float64(global.X)*g.NoiseScale, float64(global.Y)*g.NoiseScale)
			if height < g.DirtThreshold {
				chunk.set(local, TileDirt)
			} else {
				chunk.set(local, TileGrass)
			}
		}
	}

	return chunk
}
