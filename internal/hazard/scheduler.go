package hazard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/annel0/sandbox-core/internal/logging"
)

// ErrInvalidInterval возвращается при интервале <= 0
var ErrInvalidInterval = errors.New("invalid interval")

// Guard проверяется каждый тик до накопления времени. false сбрасывает
// накопленное время задачи, и отсчёт интервала начинается заново.
type Guard func() bool

// Task - периодическая задача, принадлежащая времени жизни владельца
type Task struct {
	owner     context.Context
	interval  time.Duration
	elapsed   time.Duration
	guard     Guard
	fn        func()
	cancelled bool
	fired     uint64
}

// Cancel останавливает задачу. Повторный вызов безопасен.
func (t *Task) Cancel() {
	t.cancelled = true
}

// Active возвращает true, пока задача не отменена и владелец жив
func (t *Task) Active() bool {
	return !t.cancelled && t.owner.Err() == nil
}

// Fired возвращает число срабатываний
func (t *Task) Fired() uint64 {
	return t.fired
}

// Scheduler хранит периодические задачи и продвигает их часы в Tick.
// Не потокобезопасен: все вызовы из горутины кадра.
type Scheduler struct {
	tasks   []*Task
	metrics *Metrics
	logger  *logging.Logger
}

// NewScheduler создаёт пустой планировщик
func NewScheduler(metrics *Metrics) *Scheduler {
	return &Scheduler{
		metrics: metrics,
		logger:  logging.GetComponentLogger("hazard"),
	}
}

// Schedule добавляет задачу, срабатывающую каждые interval времени кадров.
// Задача живёт, пока не отменён owner или не вызван Cancel.
func (s *Scheduler) Schedule(owner context.Context, interval time.Duration, fn func()) (*Task, error) {
	return s.ScheduleGuarded(owner, interval, nil, fn)
}

// ScheduleGuarded - Schedule с условием накопления времени
func (s *Scheduler) ScheduleGuarded(owner context.Context, interval time.Duration, guard Guard, fn func()) (*Task, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInterval, interval)
	}
	if owner == nil {
		owner = context.Background()
	}

	t := &Task{
		owner:    owner,
		interval: interval,
		guard:    guard,
		fn:       fn,
	}
	s.tasks = append(s.tasks, t)
	s.logger.Trace("Task scheduled every %v (total %d)", interval, len(s.tasks))
	return t, nil
}

// Tick продвигает часы всех задач на dt и вызывает наступившие в порядке
// добавления. Задачи, добавленные во время Tick, начинают отсчёт со следующего тика.
func (s *Scheduler) Tick(dt time.Duration) {
	if dt < 0 {
		dt = 0
	}

	pending := append([]*Task(nil), s.tasks...)
	for _, t := range pending {
		if !t.Active() {
			continue
		}
		if t.guard != nil && !t.guard() {
			t.elapsed = 0
			continue
		}

		t.elapsed += dt
		for t.elapsed >= t.interval && t.Active() {
			t.elapsed -= t.interval
			t.fired++
			s.metrics.fired()
			t.fn()
		}
	}

	s.compact()
}

// Len возвращает число активных задач
func (s *Scheduler) Len() int {
	s.compact()
	return len(s.tasks)
}

// CancelAll отменяет все задачи
func (s *Scheduler) CancelAll() {
	for _, t := range s.tasks {
		t.Cancel()
	}
	s.tasks = nil
}

func (s *Scheduler) compact() {
	kept := s.tasks[:0]
	for _, t := range s.tasks {
		if t.Active() {
			kept = append(kept, t)
		}
	}
	for i := len(kept); i < len(s.tasks); i++ {
		s.tasks[i] = nil
	}
	s.tasks = kept
}
