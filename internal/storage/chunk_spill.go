package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/annel0/sandbox-core/internal/logging"
	"github.com/annel0/sandbox-core/internal/vec"
	"github.com/annel0/sandbox-core/internal/world"
	"github.com/dgraph-io/badger/v3"
	"github.com/klauspost/compress/zstd"
)

// ErrNotReady возвращается после Close
var ErrNotReady = errors.New("хранилище не готово")

// ChunkSpill хранит вытесненные чанки в BadgerDB, работающей в памяти.
// Данные живут только до Close: между сессиями ничего не сохраняется.
type ChunkSpill struct {
	db           *badger.DB
	compressor   *zstd.Encoder
	decompressor *zstd.Decoder
	logger       *logging.Logger
	mutex        sync.RWMutex
	isReady      bool
}

// spillRecord - сериализованный вид чанка
type spillRecord struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Size  int    `json:"size"`
	Tiles []byte `json:"tiles"` // TileType по одному байту, row-major
}

// NewChunkSpill открывает in-memory BadgerDB и кодеки zstd
func NewChunkSpill() (*ChunkSpill, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	compressor, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}

	decompressor, err := zstd.NewReader(nil)
	if err != nil {
		compressor.Close()
		db.Close()
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}

	return &ChunkSpill{
		db:           db,
		compressor:   compressor,
		decompressor: decompressor,
		logger:       logging.GetStorageLogger(),
		isReady:      true,
	}, nil
}

// Close закрывает хранилище; все вытесненные чанки теряются
func (cs *ChunkSpill) Close() error {
	cs.mutex.Lock()
	defer cs.mutex.Unlock()

	if !cs.isReady {
		return nil
	}

	cs.isReady = false
	cs.decompressor.Close()
	if err := cs.compressor.Close(); err != nil {
		cs.logger.Warn("zstd encoder close: %v", err)
	}
	return cs.db.Close()
}

func chunkKey(coords vec.Vec2) []byte {
	return []byte(fmt.Sprintf("chunk:%d:%d", coords.X, coords.Y))
}

// StoreChunk сохраняет чанк
func (cs *ChunkSpill) StoreChunk(chunk *world.Chunk) error {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()

	if !cs.isReady {
		return ErrNotReady
	}

	tiles := chunk.Tiles()
	record := spillRecord{
		X:     chunk.Coords.X,
		Y:     chunk.Coords.Y,
		Size:  chunk.Size,
		Tiles: make([]byte, len(tiles)),
	}
	for i, t := range tiles {
		record.Tiles[i] = byte(t.Type)
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("ошибка сериализации чанка %v: %w", chunk.Coords, err)
	}
	compressed := cs.compressor.EncodeAll(data, nil)

	err = cs.db.Update(func(txn *badger.Txn) error {
		return txn.Set(chunkKey(chunk.Coords), compressed)
	})
	if err != nil {
		return fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}

	cs.logger.Trace("Chunk %v spilled: %d -> %d bytes", chunk.Coords, len(data), len(compressed))
	return nil
}

// LoadChunk загружает чанк. found == false, если чанк не сохранялся.
func (cs *ChunkSpill) LoadChunk(coords vec.Vec2) (*world.Chunk, bool, error) {
	cs.mutex.RLock()
	defer cs.mutex.RUnlock()

	if !cs.isReady {
		return nil, false, ErrNotReady
	}

	var compressed []byte
	err := cs.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(chunkKey(coords))
		if err != nil {
			return err
		}
		compressed, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}

	data, err := cs.decompressor.DecodeAll(compressed, nil)
	if err != nil {
		return nil, false, fmt.Errorf("zstd decode chunk %v: %w", coords, err)
	}

	var record spillRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, false, fmt.Errorf("ошибка десериализации чанка %v: %w", coords, err)
	}
	if record.X != coords.X || record.Y != coords.Y {
		return nil, false, fmt.Errorf("chunk key %v holds chunk (%d,%d)", coords, record.X, record.Y)
	}

	tiles := make([]world.Tile, len(record.Tiles))
	for i, b := range record.Tiles {
		tiles[i] = world.Tile{Type: world.TileType(b)}
	}

	chunk, err := world.NewChunkFromTiles(coords, record.Size, tiles)
	if err != nil {
		return nil, false, err
	}
	return chunk, true, nil
}
