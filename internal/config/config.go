package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig возвращается Validate для недопустимых значений
var ErrInvalidConfig = errors.New("invalid config")

// Поведение мобов
const (
	BehaviorStatic = "static"
	BehaviorWander = "wander"
	BehaviorChase  = "chase"
)

// Config корневая структура конфигурации песочницы.
type Config struct {
	World   WorldConfig   `yaml:"world"`
	Player  PlayerConfig  `yaml:"player"`
	Mobs    MobsConfig    `yaml:"mobs"`
	Spawn   SpawnConfig   `yaml:"spawn"`
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
}

type WorldConfig struct {
	Seed            int64   `yaml:"seed"`
	ChunkSize       int     `yaml:"chunk_size"`       // Тайлов по стороне чанка
	TileSize        float64 `yaml:"tile_size"`        // Размер тайла в мировых единицах
	ViewRadius      int     `yaml:"view_radius"`      // 1 => окрестность 3x3
	TreeProbability float64 `yaml:"tree_probability"` // Шанс дерева на тайле
	DirtThreshold   float64 `yaml:"dirt_threshold"`   // Шум ниже порога => земля
	MaxChunks       int     `yaml:"max_chunks"`       // 0 => без вытеснения
}

type PlayerConfig struct {
	MaxHealth int     `yaml:"max_health"`
	Speed     float64 `yaml:"speed"` // Единиц в секунду
	Width     float64 `yaml:"width"`
	Height    float64 `yaml:"height"`
	SpawnX    float64 `yaml:"spawn_x"`
	SpawnY    float64 `yaml:"spawn_y"`
}

// MobConfig описывает тип моба и его периодический урон по игроку.
// Damage == 0 отключает урон по близости.
type MobConfig struct {
	MaxHealth    int           `yaml:"max_health"`
	Width        float64       `yaml:"width"`
	Height       float64       `yaml:"height"`
	Range        float64       `yaml:"range"`
	Damage       int           `yaml:"damage"`
	Interval     time.Duration `yaml:"interval"`
	ResetOnLeave bool          `yaml:"reset_on_leave"`
	Behavior     string        `yaml:"behavior"` // static (по умолчанию), wander, chase
	Speed        float64       `yaml:"speed"`    // Для wander/chase
}

type MobsConfig struct {
	Mob    MobConfig `yaml:"mob"`
	Spider MobConfig `yaml:"spider"`
	Boss   MobConfig `yaml:"boss"`
}

type SpawnConfig struct {
	SpiderEvery  time.Duration `yaml:"spider_every"`
	SpiderChance float64       `yaml:"spider_chance"`
	SpiderSpread float64       `yaml:"spider_spread"`
	BossDelay    time.Duration `yaml:"boss_delay"` // 0 => босс не появляется
	BossX        float64       `yaml:"boss_x"`
	BossY        float64       `yaml:"boss_y"`

	// BossOncePerSession: босс появляется один раз за сессию, Restart его не возвращает
	BossOncePerSession bool `yaml:"boss_once_per_session"`
}

type ServerConfig struct {
	MetricsPort int `yaml:"metrics_port"`
	FrameRate   int `yaml:"frame_rate"`
	Frames      int `yaml:"frames"` // 0 => до сигнала

	// MaxFrameDelta ограничивает dt одного кадра. После паузы хоста
	// (сон, отладчик) пропущенное время не проигрывается.
	MaxFrameDelta time.Duration `yaml:"max_frame_delta"`
}

type StorageConfig struct {
	SpillEnabled bool `yaml:"spill_enabled"`
}

// Default возвращает конфигурацию по умолчанию.
// Все расстояния в мировых единицах, один тайл = одна единица:
// чанк 10x10 единиц, игрок 1x2 и идёт 6 единиц в секунду.
func Default() *Config {
	return &Config{
		World: WorldConfig{
			Seed:            1,
			ChunkSize:       10,
			TileSize:        1,
			ViewRadius:      1,
			TreeProbability: 0.1,
			DirtThreshold:   0.35,
			MaxChunks:       0,
		},
		Player: PlayerConfig{
			MaxHealth: 100,
			Speed:     6,
			Width:     1,
			Height:    2,
		},
		Mobs: MobsConfig{
			Mob: MobConfig{
				MaxHealth: 30,
				Width:     1,
				Height:    1,
				Range:     1,
				Damage:    5,
				Interval:  time.Second,
			},
			Spider: MobConfig{
				MaxHealth: 20,
				Width:     1,
				Height:    1,
				Range:     1.5,
				Damage:    10,
				Interval:  2 * time.Second,
			},
			Boss: MobConfig{
				MaxHealth: 100,
				Width:     2,
				Height:    3,
				Range:     2,
				Damage:    20,
				Interval:  3 * time.Second,
			},
		},
		Spawn: SpawnConfig{
			SpiderEvery:  5 * time.Second,
			SpiderChance: 0.3,
			SpiderSpread: 10,
			BossDelay:    10 * time.Second,
		},
		Server: ServerConfig{
			FrameRate:     60,
			MaxFrameDelta: 250 * time.Millisecond,
		},
	}
}

// GetMetricsPort возвращает порт Prometheus с поддержкой fallback значений.
// 0 означает, что HTTP-эндпоинт метрик не поднимается.
func (s *ServerConfig) GetMetricsPort() int {
	return getPortWithEnvFallback(s.MetricsPort, "GAME_METRICS_PORT", 0)
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	if configPort > 0 {
		return configPort
	}

	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	return defaultPort
}

// FrameInterval возвращает длительность одного кадра
func (s *ServerConfig) FrameInterval() time.Duration {
	if s.FrameRate <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(s.FrameRate)
}

// Validate проверяет согласованность значений
func (c *Config) Validate() error {
	w := c.World
	switch {
	case w.ChunkSize <= 0:
		return fmt.Errorf("%w: world.chunk_size must be > 0, got %d", ErrInvalidConfig, w.ChunkSize)
	case w.TileSize <= 0:
		return fmt.Errorf("%w: world.tile_size must be > 0, got %v", ErrInvalidConfig, w.TileSize)
	case w.ViewRadius < 0:
		return fmt.Errorf("%w: world.view_radius must be >= 0, got %d", ErrInvalidConfig, w.ViewRadius)
	case w.TreeProbability < 0 || w.TreeProbability > 1:
		return fmt.Errorf("%w: world.tree_probability must be in [0,1], got %v", ErrInvalidConfig, w.TreeProbability)
	case w.MaxChunks < 0:
		return fmt.Errorf("%w: world.max_chunks must be >= 0, got %d", ErrInvalidConfig, w.MaxChunks)
	case w.MaxChunks > 0 && !c.Storage.SpillEnabled:
		return fmt.Errorf("%w: world.max_chunks requires storage.spill_enabled", ErrInvalidConfig)
	}

	if c.Server.MaxFrameDelta <= 0 {
		return fmt.Errorf("%w: server.max_frame_delta must be > 0, got %v", ErrInvalidConfig, c.Server.MaxFrameDelta)
	}

	if c.Player.MaxHealth <= 0 {
		return fmt.Errorf("%w: player.max_health must be > 0, got %d", ErrInvalidConfig, c.Player.MaxHealth)
	}

	for name, m := range map[string]MobConfig{"mob": c.Mobs.Mob, "spider": c.Mobs.Spider, "boss": c.Mobs.Boss} {
		if m.MaxHealth <= 0 {
			return fmt.Errorf("%w: mobs.%s.max_health must be > 0, got %d", ErrInvalidConfig, name, m.MaxHealth)
		}
		if m.Damage < 0 {
			return fmt.Errorf("%w: mobs.%s.damage must be >= 0, got %d", ErrInvalidConfig, name, m.Damage)
		}
		if m.Damage > 0 && m.Interval <= 0 {
			return fmt.Errorf("%w: mobs.%s.interval must be > 0 when damage is set", ErrInvalidConfig, name)
		}
		switch m.Behavior {
		case "", BehaviorStatic, BehaviorWander, BehaviorChase:
		default:
			return fmt.Errorf("%w: mobs.%s.behavior %q", ErrInvalidConfig, name, m.Behavior)
		}
		if m.Speed < 0 {
			return fmt.Errorf("%w: mobs.%s.speed must be >= 0, got %v", ErrInvalidConfig, name, m.Speed)
		}
	}

	if c.Spawn.SpiderChance < 0 || c.Spawn.SpiderChance > 1 {
		return fmt.Errorf("%w: spawn.spider_chance must be in [0,1], got %v", ErrInvalidConfig, c.Spawn.SpiderChance)
	}
	return nil
}

// Load читает YAML файл конфигурации поверх Default().
// Если path == "", пытается прочитать путь из ENV GAME_CONFIG; если и он пуст,
// возвращает значения по умолчанию.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("GAME_CONFIG")
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
