package game

import (
	"math"
	"math/rand"

	"github.com/annel0/sandbox-core/internal/config"
	"github.com/annel0/sandbox-core/internal/vec"
)

const (
	aggroRange = 5.0 // Дальность, с которой chase-моб замечает игрока
	leashRange = 8.0 // Дальше этого chase-моб теряет игрока
)

// Behavior - состояние конечного автомата моба
type Behavior interface {
	Enter(m *Mob, w behaviorWorld)
	Update(m *Mob, w behaviorWorld, seconds float64) Behavior
	Exit(m *Mob)
}

// behaviorWorld - то, что состояниям нужно от сессии
type behaviorWorld interface {
	random() *rand.Rand
	playerCenter() (vec.Vec2Float, bool)
}

// initialBehavior возвращает стартовое состояние для типа поведения; nil - моб стоит
func initialBehavior(behavior string) Behavior {
	switch behavior {
	case config.BehaviorWander, config.BehaviorChase:
		return &IdleState{}
	default:
		return nil
	}
}

// update продвигает автомат моба
func (m *Mob) update(w behaviorWorld, seconds float64) {
	if m.state == nil {
		return
	}
	next := m.state.Update(m, w, seconds)
	if next != m.state {
		m.setState(next, w)
	}
}

func (m *Mob) setState(state Behavior, w behaviorWorld) {
	if m.state != nil {
		m.state.Exit(m)
	}
	m.state = state
	if m.state != nil {
		m.state.Enter(m, w)
	}
}

// State возвращает текущее состояние автомата (nil для неподвижных мобов)
func (m *Mob) State() Behavior {
	return m.state
}

// moveToward сдвигает моба к цели не дальше, чем на step; true - цель достигнута
func (m *Mob) moveToward(target vec.Vec2Float, step float64) bool {
	pos := m.Entity.Position
	delta := target.Sub(pos)
	dist := delta.Length()
	if dist <= step || dist == 0 {
		m.Entity.Position = target
		return true
	}
	m.Entity.Position = pos.Add(delta.Mul(step / dist))
	return false
}

func (m *Mob) notices(w behaviorWorld, within float64) bool {
	if !m.chases {
		return false
	}
	p, ok := w.playerCenter()
	return ok && m.Entity.Center().DistanceTo(p) <= within
}

// === Конкретные состояния ===

// IdleState - моб стоит на месте 2-5 секунд
type IdleState struct {
	elapsed  float64
	duration float64
}

func (s *IdleState) Enter(m *Mob, w behaviorWorld) {
	s.elapsed = 0
	s.duration = 2 + w.random().Float64()*3
}

func (s *IdleState) Update(m *Mob, w behaviorWorld, seconds float64) Behavior {
	if m.notices(w, aggroRange) {
		return &ChaseState{}
	}
	s.elapsed += seconds
	if s.elapsed >= s.duration {
		return &WanderState{}
	}
	return s
}

func (s *IdleState) Exit(m *Mob) {}

// WanderState - моб идёт к случайной точке в 2-5 единицах от себя
type WanderState struct {
	Target   vec.Vec2Float
	elapsed  float64
	duration float64
}

func (s *WanderState) Enter(m *Mob, w behaviorWorld) {
	rng := w.random()
	angle := rng.Float64() * 2 * math.Pi
	distance := 2 + rng.Float64()*3

	s.elapsed = 0
	s.duration = 3 + rng.Float64()*5
	s.Target = m.Entity.Position.Add(vec.Vec2Float{X: distance * math.Cos(angle), Y: distance * math.Sin(angle)})
}

func (s *WanderState) Update(m *Mob, w behaviorWorld, seconds float64) Behavior {
	if m.notices(w, aggroRange) {
		return &ChaseState{}
	}
	s.elapsed += seconds
	if s.elapsed >= s.duration || m.moveToward(s.Target, m.speed*seconds) {
		return &IdleState{}
	}
	return s
}

func (s *WanderState) Exit(m *Mob) {}

// ChaseState - моб идёт к игроку, пока тот не уйдёт дальше leashRange
type ChaseState struct{}

func (s *ChaseState) Enter(m *Mob, w behaviorWorld) {}

func (s *ChaseState) Update(m *Mob, w behaviorWorld, seconds float64) Behavior {
	if !m.notices(w, leashRange) {
		return &IdleState{}
	}
	p, _ := w.playerCenter()
	size := m.Entity.Size()
	// Цель - позиция, при которой центры совпадают
	m.moveToward(p.Sub(size.Mul(0.5)), m.speed*seconds)
	return s
}

func (s *ChaseState) Exit(m *Mob) {}
