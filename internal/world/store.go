package world

import (
	"fmt"
	"sync"

	"github.com/annel0/sandbox-core/internal/logging"
	"github.com/annel0/sandbox-core/internal/vec"
)

// ChunkSpill - хранилище для вытесненных чанков. Реализация должна вернуть
// чанк, идентичный сохранённому.
type ChunkSpill interface {
	StoreChunk(chunk *Chunk) error
	LoadChunk(coords vec.Vec2) (*Chunk, bool, error)
}

// StoreOptions параметры ChunkStore
type StoreOptions struct {
	Seed            int64
	ChunkSize       int     // Тайлов по стороне чанка
	TileSize        float64 // Размер тайла в мировых единицах
	TreeProbability float64
	DirtThreshold   float64

	// MaxChunks ограничивает число чанков в памяти. 0 - без ограничения:
	// карта растёт бесконечно. При MaxChunks > 0
	// нужен Spill, иначе вытесненный чанк пришлось бы генерировать заново.
	MaxChunks int
	Spill     ChunkSpill

	Metrics *Metrics
}

type storeEntry struct {
	chunk    *Chunk
	lastUsed uint64
}

// ChunkStore - разреженная бесконечная сетка чанков с ленивой генерацией.
// Чанк для координаты генерируется не более одного раза.
type ChunkStore struct {
	gen       *Generator
	tileSize  float64
	maxChunks int
	spill     ChunkSpill
	metrics   *Metrics
	logger    *logging.Logger

	chunks    map[vec.Vec2]*storeEntry // Чанки в памяти
	spilled   map[vec.Vec2]struct{}    // Чанки, копия которых лежит в spill
	focus     vec.Vec2                 // Чанк игрока, от него считается дальность вытеснения
	clock     uint64                   // Логические часы для LRU
	generated uint64

	mu sync.Mutex
}

// NewChunkStore создаёт хранилище чанков
func NewChunkStore(opts StoreOptions) (*ChunkStore, error) {
	if opts.TileSize <= 0 {
		return nil, fmt.Errorf("%w: tile size must be > 0, got %v", ErrInvalidConfig, opts.TileSize)
	}
	if opts.MaxChunks < 0 {
		return nil, fmt.Errorf("%w: max chunks must be >= 0, got %d", ErrInvalidConfig, opts.MaxChunks)
	}
	if opts.MaxChunks > 0 && opts.Spill == nil {
		return nil, fmt.Errorf("%w: max chunks %d requires a spill", ErrInvalidConfig, opts.MaxChunks)
	}

	gen, err := NewGenerator(opts.Seed, opts.ChunkSize, opts.TreeProbability, opts.DirtThreshold)
	if err != nil {
		return nil, err
	}

	return &ChunkStore{
		gen:       gen,
		tileSize:  opts.TileSize,
		maxChunks: opts.MaxChunks,
		spill:     opts.Spill,
		metrics:   opts.Metrics,
		logger:    logging.GetWorldLogger(),
		chunks:    make(map[vec.Vec2]*storeEntry),
		spilled:   make(map[vec.Vec2]struct{}),
	}, nil
}

// ChunkSize возвращает число тайлов по стороне чанка
func (s *ChunkStore) ChunkSize() int {
	return s.gen.ChunkSize
}

// TileSize возвращает размер тайла в мировых единицах
func (s *ChunkStore) TileSize() float64 {
	return s.tileSize
}

// ChunkCoordsOf переводит мировую позицию в координаты чанка:
// floor(pos / (chunkSize * tileSize)) по каждой оси.
func (s *ChunkStore) ChunkCoordsOf(pos vec.Vec2Float) (vec.Vec2, error) {
	coords, err := pos.FloorDiv(float64(s.gen.ChunkSize) * s.tileSize)
	if err != nil {
		return vec.Vec2{}, fmt.Errorf("%w: position (%v, %v)", ErrInvalidCoordinate, pos.X, pos.Y)
	}
	return coords, nil
}

// EnsureChunk возвращает чанк по координатам, генерируя его при первом обращении.
// Повторный вызов никогда не меняет содержимое чанка.
func (s *ChunkStore) EnsureChunk(coords vec.Vec2) *Chunk {
	s.mu.Lock()
	defer s.mu.Unlock()

	chunk := s.ensureLocked(coords)
	s.evictLocked(func(c vec.Vec2) bool { return c == coords })
	return chunk
}

// ChunksNear возвращает (2*radius+1)^2 чанков вокруг center в порядке
// row-major (Y снаружи, X внутри), генерируя отсутствующие.
// center становится новым фокусом для вытеснения.
func (s *ChunkStore) ChunksNear(center vec.Vec2, radius int) ([]*Chunk, error) {
	if radius < 0 {
		return nil, fmt.Errorf("%w: radius must be >= 0, got %d", ErrInvalidCoordinate, radius)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.focus = center
	side := 2*radius + 1
	result := make([]*Chunk, 0, side*side)
	for y := center.Y - radius; y <= center.Y+radius; y++ {
		for x := center.X - radius; x <= center.X+radius; x++ {
			result = append(result, s.ensureLocked(vec.Vec2{X: x, Y: y}))
		}
	}

	s.evictLocked(func(c vec.Vec2) bool { return c.ChebyshevTo(center) <= radius })
	return result, nil
}

// ChunksAround переводит мировую позицию в чанк и возвращает его окрестность
func (s *ChunkStore) ChunksAround(pos vec.Vec2Float, radius int) ([]*Chunk, vec.Vec2, error) {
	center, err := s.ChunkCoordsOf(pos)
	if err != nil {
		return nil, vec.Vec2{}, err
	}
	chunks, err := s.ChunksNear(center, radius)
	return chunks, center, err
}

// TileAt возвращает тайл под мировой позицией и мировые координаты его
// левого нижнего угла. Отсутствующий чанк генерируется.
func (s *ChunkStore) TileAt(pos vec.Vec2Float) (Tile, vec.Vec2Float, error) {
	global, err := pos.FloorDiv(s.tileSize)
	if err != nil {
		return Tile{}, vec.Vec2Float{}, fmt.Errorf("%w: position (%v, %v)", ErrInvalidCoordinate, pos.X, pos.Y)
	}

	size := s.gen.ChunkSize
	coords := vec.Vec2{X: vec.FloorDiv(global.X, size), Y: vec.FloorDiv(global.Y, size)}
	local := vec.Vec2{X: vec.FloorMod(global.X, size), Y: vec.FloorMod(global.Y, size)}

	tile, _ := s.EnsureChunk(coords).Tile(local)
	return tile, vec.FromVec2(global).Mul(s.tileSize), nil
}

// SetFocus задаёт чанк, от которого считается дальность при вытеснении
func (s *ChunkStore) SetFocus(center vec.Vec2) {
	s.mu.Lock()
	s.focus = center
	s.mu.Unlock()
}

// Peek возвращает чанк, только если он уже находится в памяти
func (s *ChunkStore) Peek(coords vec.Vec2) (*Chunk, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.chunks[coords]
	if !ok {
		return nil, false
	}
	return e.chunk, true
}

// Len возвращает число чанков в памяти
func (s *ChunkStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chunks)
}

// Generated возвращает число сгенерированных чанков
func (s *ChunkStore) Generated() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generated
}

// Spilled возвращает число чанков, копия которых лежит в spill
func (s *ChunkStore) Spilled() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.spilled)
}

func (s *ChunkStore) ensureLocked(coords vec.Vec2) *Chunk {
	s.clock++

	if e, ok := s.chunks[coords]; ok {
		e.lastUsed = s.clock
		return e.chunk
	}

	var chunk *Chunk
	if _, ok := s.spilled[coords]; ok {
		restored, found, err := s.spill.LoadChunk(coords)
		switch {
		case err != nil:
			s.logger.Warn("Chunk %v restore failed, regenerating: %v", coords, err)
		case !found:
			s.logger.Warn("Chunk %v missing in spill, regenerating", coords)
		default:
			chunk = restored
			s.metrics.chunkRestored()
		}
	}

	if chunk == nil {
		chunk = s.gen.GenerateChunk(coords)
		s.generated++
		s.metrics.chunkGenerated()
		logging.LogChunkGenerated(coords.X, coords.Y, chunk.Count(TileTree))
	}

	s.chunks[coords] = &storeEntry{chunk: chunk, lastUsed: s.clock}
	s.metrics.setResident(len(s.chunks))
	return chunk
}

// evictLocked вытесняет чанки, пока их не станет не больше maxChunks.
// Первым уходит самый дальний от фокуса чанк, при равенстве - давнее использованный.
// protected-чанки не вытесняются.
func (s *ChunkStore) evictLocked(protected func(vec.Vec2) bool) {
	if s.maxChunks <= 0 {
		return
	}

	for len(s.chunks) > s.maxChunks {
		victim, ok := s.pickVictimLocked(protected)
		if !ok {
			break
		}

		e := s.chunks[victim]
		if _, already := s.spilled[victim]; !already {
			if err := s.spill.StoreChunk(e.chunk); err != nil {
				s.logger.Error("Chunk %v spill failed, keeping resident: %v", victim, err)
				break
			}
			s.spilled[victim] = struct{}{}
		}

		delete(s.chunks, victim)
		s.metrics.chunkEvicted()
	}

	s.metrics.setResident(len(s.chunks))
}

func (s *ChunkStore) pickVictimLocked(protected func(vec.Vec2) bool) (vec.Vec2, bool) {
	var (
		victim   vec.Vec2
		bestDist = -1
		bestUsed uint64
	)
	for coords, e := range s.chunks {
		if protected(coords) {
			continue
		}
		d := coords.ChebyshevTo(s.focus)
		if d > bestDist || (d == bestDist && e.lastUsed < bestUsed) {
			victim, bestDist, bestUsed = coords, d, e.lastUsed
		}
	}
	return victim, bestDist >= 0
}
