package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/annel0/sandbox-core/internal/combat"
	"github.com/annel0/sandbox-core/internal/config"
	"github.com/annel0/sandbox-core/internal/eventbus"
	"github.com/annel0/sandbox-core/internal/game"
	"github.com/annel0/sandbox-core/internal/hazard"
	"github.com/annel0/sandbox-core/internal/logging"
	"github.com/annel0/sandbox-core/internal/observability"
	"github.com/annel0/sandbox-core/internal/storage"
	"github.com/annel0/sandbox-core/internal/world"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	configPath := flag.String("config", "", "путь к YAML конфигурации (по умолчанию $GAME_CONFIG)")
	frames := flag.Int("frames", -1, "число кадров; 0 => до сигнала, -1 => из конфигурации")
	flag.Parse()

	if err := logging.InitDefaultLogger("sandbox"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Error("❌ Ошибка загрузки конфигурации: %v", err)
		os.Exit(1)
	}
	if *frames >= 0 {
		cfg.Server.Frames = *frames
	}

	if err := run(cfg); err != nil {
		logging.Error("❌ %v", err)
		os.Exit(1)
	}
	logging.Info("👋 Песочница остановлена")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	bus := eventbus.NewMemoryBus(1024, eventbus.NewMetrics(reg))
	defer bus.Close()
	if _, err := eventbus.StartLoggingListener(ctx, bus); err != nil {
		return fmt.Errorf("event listener: %w", err)
	}

	deps := game.Deps{Registry: reg, Events: bus}
	if cfg.Storage.SpillEnabled {
		spill, err := storage.NewChunkSpill()
		if err != nil {
			return fmt.Errorf("chunk spill: %w", err)
		}
		defer spill.Close()
		deps.Spill = spill
	}

	session, err := game.NewSession(ctx, cfg, deps)
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}
	defer session.Close()

	var latest atomic.Pointer[game.Summary]
	if port := cfg.Server.GetMetricsPort(); port > 0 {
		srv := observability.NewHTTPServer(fmt.Sprintf(":%d", port), reg, reg, func() interface{} {
			return latest.Load()
		})
		srv.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Stop(shutdownCtx); err != nil {
				logging.Error("❌ Ошибка остановки HTTP: %v", err)
			}
		}()
	}

	logging.Info("🎮 Сессия %s: seed=%d, %d fps, кадров=%d", session.ID, cfg.World.Seed, cfg.Server.FrameRate, cfg.Server.Frames)

	logEvery := uint64(max(cfg.Server.FrameRate, 1))
	bot := newWanderer(cfg.World.Seed, session)
	frameCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	err = hazard.Run(frameCtx, cfg.Server.FrameInterval(), func(dt time.Duration) error {
		if err := bot.act(dt); err != nil {
			return err
		}
		view, err := session.Frame(dt)
		if err != nil {
			return err
		}
		sum := view.Summary(session.ID.String())
		latest.Store(&sum)

		if view.Frame%logEvery == 0 {
			logging.Debug("Кадр %d: чанк %v (%s), hp=%d/%d, мобов=%d, чанков в памяти=%d",
				view.Frame, view.Center, view.Ground, view.Player.Health, view.Player.MaxHealth, len(view.Mobs), session.Store().Len())
		}
		if cfg.Server.Frames > 0 && view.Frame >= uint64(cfg.Server.Frames) {
			cancel()
		}
		return nil
	})
	if err != nil {
		return err
	}

	logSummary(session.Store(), latest.Load())
	return nil
}

func logSummary(store *world.ChunkStore, sum *game.Summary) {
	if sum == nil {
		return
	}
	logging.Info("📊 Кадров: %d, сгенерировано чанков: %d, в памяти: %d, hp=%d, game over=%v",
		sum.Frame, store.Generated(), store.Len(), sum.Health, sum.GameOver)
}

// wanderer - сценарный ввод для безголового запуска: бродит по миру,
// бьёт ближайших мобов, собирает ресурсы и перезапускает игру после смерти
type wanderer struct {
	rng      *rand.Rand
	session  *game.Session
	turn     time.Duration
	deadTime time.Duration
}

func newWanderer(seed int64, session *game.Session) *wanderer {
	return &wanderer{rng: rand.New(rand.NewSource(seed + 1)), session: session}
}

func (w *wanderer) act(dt time.Duration) error {
	s := w.session

	if s.GameOver() {
		w.deadTime += dt
		if w.deadTime >= 2*time.Second {
			w.deadTime = 0
			return s.Restart()
		}
		return nil
	}

	w.turn -= dt
	if w.turn <= 0 {
		w.turn = time.Duration(1+w.rng.Intn(3)) * time.Second
		if err := s.SetVelocity(w.rng.Float64()*2-1, w.rng.Float64()*2-1); err != nil {
			return err
		}
		if err := s.AddItem(game.ItemWood, w.rng.Intn(2)); err != nil {
			return err
		}
		if err := s.AddItem(game.ItemStone, w.rng.Intn(2)); err != nil {
			return err
		}
		if s.Player().Weapon == nil {
			if _, err := s.Craft("wooden_sword"); err != nil && !isNotEnough(err) {
				return err
			}
		}
		if w.rng.Intn(4) == 0 {
			s.PlaceBlock()
		}
	}

	for _, m := range s.Mobs() {
		if m.Entity.Kind == combat.KindBoss && w.rng.Intn(30) == 0 {
			if _, err := s.CastSpell(game.SpellFireball); err != nil {
				return err
			}
		}
		c := m.Entity.Center()
		if c.DistanceTo(s.Player().Entity.Center()) < 3 {
			_, err := s.PointerDown(c.X, c.Y)
			return err
		}
	}
	return nil
}

func isNotEnough(err error) bool {
	return errors.Is(err, game.ErrNotEnoughItems)
}
