package game

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/annel0/sandbox-core/internal/combat"
	"github.com/annel0/sandbox-core/internal/config"
	"github.com/annel0/sandbox-core/internal/eventbus"
	"github.com/annel0/sandbox-core/internal/hazard"
	"github.com/annel0/sandbox-core/internal/logging"
	"github.com/annel0/sandbox-core/internal/vec"
	"github.com/annel0/sandbox-core/internal/world"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// Deps - внешние зависимости сессии, все необязательные
type Deps struct {
	Registry prometheus.Registerer // nil => метрики не экспортируются
	Spill    world.ChunkSpill      // Нужен при world.max_chunks > 0
	Events   eventbus.Publisher    // nil => события не публикуются
}

// Mob - моб сессии, его периодический урон по игроку и поведение
type Mob struct {
	Entity *combat.Entity
	Hazard *hazard.Task // nil, если урон по близости отключён

	state  Behavior // nil => моб стоит на месте
	speed  float64
	chases bool
}

// Session владеет всем состоянием одной игры. Вместо глобальных счётчиков
// здоровья и инвентаря каждая игра держит своё, поэтому несколько сессий
// могут работать в одном процессе.
// Не потокобезопасна: все вызовы из горутины кадра.
type Session struct {
	ID uuid.UUID

	cfg       *config.Config
	ctx       context.Context
	cancel    context.CancelFunc
	store     *world.ChunkStore
	model     *combat.Model
	scheduler *hazard.Scheduler
	rng       *rand.Rand
	events    eventbus.Publisher
	logger    *logging.Logger

	player    *Player
	mobs      []*Mob
	spells    []*Spell
	blocks    []vec.Vec2Float // Стек поставленных блоков
	inventory Inventory
	gameOver  bool

	frame       uint64
	spiderClock time.Duration
	bossClock   time.Duration
	bossSpawned bool
}

// NewSession создаёт игру по конфигурации. Время жизни всех сущностей
// ограничено ctx и Close.
func NewSession(ctx context.Context, cfg *config.Config, deps Deps) (*Session, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	store, err := world.NewChunkStore(world.StoreOptions{
		Seed:            cfg.World.Seed,
		ChunkSize:       cfg.World.ChunkSize,
		TileSize:        cfg.World.TileSize,
		TreeProbability: cfg.World.TreeProbability,
		DirtThreshold:   cfg.World.DirtThreshold,
		MaxChunks:       cfg.World.MaxChunks,
		Spill:           deps.Spill,
		Metrics:         world.NewMetrics(deps.Registry),
	})
	if err != nil {
		return nil, fmt.Errorf("chunk store: %w", err)
	}

	id := uuid.New()
	sctx, cancel := context.WithCancel(ctx)
	s := &Session{
		ID:        id,
		cfg:       cfg,
		ctx:       sctx,
		cancel:    cancel,
		store:     store,
		model:     combat.NewModel(sctx, combat.NewMetrics(deps.Registry)),
		scheduler: hazard.NewScheduler(hazard.NewMetrics(deps.Registry)),
		rng:       rand.New(rand.NewSource(cfg.World.Seed)),
		events:    deps.Events,
		logger:    logging.GetGameLogger().WithField("session", id.String()),
	}
	s.model.OnDeath(s.onDeath)

	if err := s.spawnPlayer(); err != nil {
		cancel()
		return nil, err
	}

	s.logger.Info("Session started (seed=%d, chunk=%dx%d)", cfg.World.Seed, cfg.World.ChunkSize, cfg.World.ChunkSize)
	return s, nil
}

// Store возвращает хранилище чанков сессии
func (s *Session) Store() *world.ChunkStore {
	return s.store
}

// Model возвращает боевую модель сессии
func (s *Session) Model() *combat.Model {
	return s.model
}

// Player возвращает текущего игрока
func (s *Session) Player() *Player {
	return s.player
}

// Mobs возвращает мобов в порядке появления
func (s *Session) Mobs() []*Mob {
	return s.mobs
}

// Inventory возвращает копию инвентаря
func (s *Session) Inventory() Inventory {
	return s.inventory
}

// GameOver возвращает true после смерти игрока и до Restart
func (s *Session) GameOver() bool {
	return s.gameOver
}

// Frame продвигает игру на dt: движение, периодический урон, заклинания,
// спавн, уборка мёртвых, затем окрестность чанков и снимок кадра.
// dt больше server.max_frame_delta обрезается до него.
func (s *Session) Frame(dt time.Duration) (FrameView, error) {
	if s.ctx.Err() != nil {
		return FrameView{}, ErrSessionClosed
	}
	if dt < 0 {
		return FrameView{}, fmt.Errorf("%w: negative frame duration %v", ErrInvalidInput, dt)
	}
	if limit := s.cfg.Server.MaxFrameDelta; dt > limit {
		s.logger.Debug("Frame delta %v clamped to %v", dt, limit)
		dt = limit
	}
	s.frame++

	if !s.gameOver {
		s.player.step(s.cfg.Player.Speed, dt.Seconds())
		for _, m := range s.mobs {
			if m.Entity.Alive() {
				m.update(s, dt.Seconds())
			}
		}
	}

	// Мобы, появившиеся в этом кадре, начинают отсчёт урона со следующего
	s.scheduler.Tick(dt)

	if !s.gameOver {
		s.advanceSpells(dt.Seconds())
		if err := s.runSpawner(dt); err != nil {
			return FrameView{}, err
		}
	}
	s.sweepDead()

	chunks, center, err := s.store.ChunksAround(s.player.Entity.Center(), s.cfg.World.ViewRadius)
	if err != nil {
		return FrameView{}, err
	}
	ground, _, err := s.store.TileAt(s.player.Entity.Center())
	if err != nil {
		return FrameView{}, err
	}

	view := s.snapshot(chunks, center)
	view.Ground = ground.Type
	return view, nil
}

// SetVelocity задаёт направление движения игрока в долях скорости
func (s *Session) SetVelocity(x, y float64) error {
	v := vec.Vec2Float{X: x, Y: y}
	if !v.IsFinite() {
		return fmt.Errorf("%w: velocity (%v, %v)", ErrInvalidInput, x, y)
	}
	s.player.Velocity = v
	if v.Length() > 0 {
		s.player.Facing = v.Normalized()
	}
	return nil
}

// PointerDown бьёт оружием игрока первого (по порядку появления) живого моба,
// в хитбокс которого попала точка. Возвращает задетого моба или nil.
func (s *Session) PointerDown(x, y float64) (*combat.Entity, error) {
	if s.ctx.Err() != nil {
		return nil, ErrSessionClosed
	}
	if s.gameOver {
		return nil, nil
	}
	if !(vec.Vec2Float{X: x, Y: y}).IsFinite() {
		return nil, fmt.Errorf("%w: pointer (%v, %v)", ErrInvalidInput, x, y)
	}

	for _, m := range s.mobs {
		if !m.Entity.Alive() || !s.model.IsPointInside(m.Entity, x, y) {
			continue
		}
		if _, err := s.model.Strike(m.Entity, s.player.Weapon); err != nil {
			return nil, err
		}
		return m.Entity, nil
	}
	return nil, nil
}

// SpawnMob создаёт моба указанного типа и, если у типа есть урон,
// планирует его периодический урон по игроку.
func (s *Session) SpawnMob(kind combat.Kind, x, y float64) (*Mob, error) {
	if s.ctx.Err() != nil {
		return nil, ErrSessionClosed
	}

	mc, err := s.mobConfig(kind)
	if err != nil {
		return nil, err
	}
	e, err := s.model.Create(kind, x, y, mc.Width, mc.Height, mc.MaxHealth)
	if err != nil {
		return nil, err
	}

	mob := &Mob{Entity: e, speed: mc.Speed, chases: mc.Behavior == config.BehaviorChase}
	if mc.Damage > 0 {
		mob.Hazard, err = hazard.Proximity(s.scheduler, s.model, e, s.currentPlayer, hazard.ProximityConfig{
			Range:        mc.Range,
			Damage:       mc.Damage,
			Interval:     mc.Interval,
			ResetOnLeave: mc.ResetOnLeave,
		})
		if err != nil {
			s.model.Remove(e)
			return nil, err
		}
	}

	mob.setState(initialBehavior(mc.Behavior), s)
	s.mobs = append(s.mobs, mob)
	s.logger.Debug("Spawned %s %d at (%.2f,%.2f)", kind, e.ID, x, y)
	s.publish(eventbus.TypeMobSpawned, 0, func(ev *eventbus.Event) {
		ev.EntityID, ev.Kind, ev.X, ev.Y = e.ID, kind.String(), x, y
	})
	return mob, nil
}

// CastSpell выпускает заклинание из центра игрока в направлении взгляда
func (s *Session) CastSpell(kind SpellKind) (*Spell, error) {
	if s.ctx.Err() != nil {
		return nil, ErrSessionClosed
	}
	if kind != SpellFireball && kind != SpellIce {
		return nil, fmt.Errorf("%w: spell kind %d", ErrInvalidInput, kind)
	}
	if s.gameOver {
		return nil, nil
	}

	spell := &Spell{
		Kind:     kind,
		Position: s.player.Entity.Center(),
		velocity: s.player.Facing.Mul(spellSpeed),
	}
	s.spells = append(s.spells, spell)
	return spell, nil
}

// PlaceBlock ставит блок в позицию игрока
func (s *Session) PlaceBlock() vec.Vec2Float {
	pos := s.player.Entity.Position
	s.blocks = append(s.blocks, pos)
	s.publish(eventbus.TypeBlockPlaced, 0, func(ev *eventbus.Event) { ev.X, ev.Y = pos.X, pos.Y })
	return pos
}

// RemoveBlock убирает последний поставленный блок
func (s *Session) RemoveBlock() (vec.Vec2Float, bool) {
	if len(s.blocks) == 0 {
		return vec.Vec2Float{}, false
	}
	last := s.blocks[len(s.blocks)-1]
	s.blocks = s.blocks[:len(s.blocks)-1]
	s.publish(eventbus.TypeBlockRemoved, 0, func(ev *eventbus.Event) { ev.X, ev.Y = last.X, last.Y })
	return last, true
}

// AddItem добавляет ресурсы в инвентарь
func (s *Session) AddItem(kind ItemKind, n int) error {
	return s.inventory.Add(kind, n)
}

// Equip выдаёт игроку оружие; nil означает кулак
func (s *Session) Equip(item combat.Item) {
	s.player.Weapon = item
}

// Craft тратит ресурсы по рецепту и экипирует результат
func (s *Session) Craft(name string) (combat.Item, error) {
	recipe, ok := Recipes[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown recipe %q", ErrInvalidInput, name)
	}
	if !s.inventory.Has(recipe.Cost) {
		return nil, fmt.Errorf("%w: %s needs %+v, have %+v", ErrNotEnoughItems, name, recipe.Cost, s.inventory)
	}

	s.inventory.Wood -= recipe.Cost.Wood
	s.inventory.Stone -= recipe.Cost.Stone
	item := recipe.Make()
	s.Equip(item)
	s.publish(eventbus.TypeItemCrafted, 0, func(ev *eventbus.Event) { ev.Detail = item.Name() })
	return item, nil
}

// Restart начинает игру заново: новый игрок с полным здоровьем в точке
// появления, пустой инвентарь, без блоков, мобов и заклинаний.
// Мир (чанки) сохраняется. При spawn.boss_once_per_session уже появившийся
// босс больше не возвращается.
func (s *Session) Restart() error {
	if s.ctx.Err() != nil {
		return ErrSessionClosed
	}

	for _, m := range s.mobs {
		s.model.Remove(m.Entity)
	}
	s.scheduler.CancelAll()
	s.model.Remove(s.player.Entity)

	s.mobs = nil
	s.spells = nil
	s.blocks = nil
	s.inventory = Inventory{}
	s.gameOver = false
	s.spiderClock = 0
	if !s.cfg.Spawn.BossOncePerSession {
		s.bossClock = 0
		s.bossSpawned = false
	}

	if err := s.spawnPlayer(); err != nil {
		return err
	}
	s.logger.Info("Session restarted")
	s.publish(eventbus.TypeRestarted, 5, func(ev *eventbus.Event) { ev.EntityID = s.player.Entity.ID })
	return nil
}

// Close завершает сессию: все сущности и периодические задачи останавливаются
func (s *Session) Close() {
	if s.ctx.Err() != nil {
		return
	}
	s.scheduler.CancelAll()
	s.cancel()
	s.logger.Info("Session closed after %d frames", s.frame)
}

func (s *Session) spawnPlayer() error {
	pc := s.cfg.Player
	e, err := s.model.Create(combat.KindPlayer, pc.SpawnX, pc.SpawnY, pc.Width, pc.Height, pc.MaxHealth)
	if err != nil {
		return fmt.Errorf("spawn player: %w", err)
	}
	s.player = newPlayer(e)
	return nil
}

func (s *Session) currentPlayer() *combat.Entity {
	return s.player.Entity
}

func (s *Session) onDeath(e *combat.Entity) {
	s.publish(eventbus.TypeEntityDied, 0, func(ev *eventbus.Event) {
		ev.EntityID, ev.Kind, ev.X, ev.Y = e.ID, e.Kind.String(), e.Position.X, e.Position.Y
	})
	if e.Kind == combat.KindPlayer && e == s.player.Entity {
		s.gameOver = true
		s.logger.Info("Player %d died, game over", e.ID)
		s.publish(eventbus.TypeGameOver, 9, func(ev *eventbus.Event) { ev.EntityID = e.ID })
	}
}

// publish отправляет событие, если к сессии подключена шина
func (s *Session) publish(eventType string, priority int, fill func(ev *eventbus.Event)) {
	if s.events == nil {
		return
	}
	ev := eventbus.NewEvent(s.ID.String(), eventType)
	ev.Priority = priority
	fill(ev)
	if err := s.events.Publish(s.ctx, ev); err != nil {
		s.logger.Warn("Event %s not published: %v", eventType, err)
	}
}

func (s *Session) random() *rand.Rand {
	return s.rng
}

func (s *Session) playerCenter() (vec.Vec2Float, bool) {
	if s.gameOver || !s.player.Entity.Alive() {
		return vec.Vec2Float{}, false
	}
	return s.player.Entity.Center(), true
}

func (s *Session) mobConfig(kind combat.Kind) (config.MobConfig, error) {
	switch kind {
	case combat.KindMob:
		return s.cfg.Mobs.Mob, nil
	case combat.KindSpider:
		return s.cfg.Mobs.Spider, nil
	case combat.KindBoss:
		return s.cfg.Mobs.Boss, nil
	default:
		return config.MobConfig{}, fmt.Errorf("%w: cannot spawn %s as mob", ErrInvalidInput, kind)
	}
}

func (s *Session) advanceSpells(seconds float64) {
	kept := s.spells[:0]
	for _, sp := range s.spells {
		if !sp.advance(seconds) {
			continue
		}
		if s.spellHit(sp) {
			continue
		}
		kept = append(kept, sp)
	}
	for i := len(kept); i < len(s.spells); i++ {
		s.spells[i] = nil
	}
	s.spells = kept
}

func (s *Session) spellHit(sp *Spell) bool {
	for _, m := range s.mobs {
		if !m.Entity.Alive() || !sp.hits(m.Entity) {
			continue
		}
		if _, err := s.model.Strike(m.Entity, sp); err != nil {
			s.logger.Warn("Spell %s hit on %d failed: %v", sp.Kind, m.Entity.ID, err)
		}
		return true
	}
	return false
}

func (s *Session) sweepDead() {
	kept := s.mobs[:0]
	for _, m := range s.mobs {
		if m.Entity.Alive() {
			kept = append(kept, m)
		}
	}
	for i := len(kept); i < len(s.mobs); i++ {
		s.mobs[i] = nil
	}
	s.mobs = kept
}

func (s *Session) snapshot(chunks []*world.Chunk, center vec.Vec2) FrameView {
	view := FrameView{
		Frame:     s.frame,
		Center:    center,
		Chunks:    chunks,
		Player:    viewOf(s.model, s.player.Entity),
		Mobs:      make([]EntityView, 0, len(s.mobs)),
		Spells:    make([]SpellView, 0, len(s.spells)),
		Blocks:    append([]vec.Vec2Float(nil), s.blocks...),
		Inventory: s.inventory,
		Weapon:    combat.Fist{}.Name(),
		GameOver:  s.gameOver,
	}
	if s.player.Weapon != nil {
		view.Weapon = s.player.Weapon.Name()
	}
	for _, m := range s.mobs {
		view.Mobs = append(view.Mobs, viewOf(s.model, m.Entity))
	}
	for _, sp := range s.spells {
		view.Spells = append(view.Spells, SpellView{Kind: sp.Kind, Position: sp.Position})
	}
	return view
}
