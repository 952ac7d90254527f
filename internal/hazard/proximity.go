package hazard

import (
	"fmt"
	"time"

	"github.com/annel0/sandbox-core/internal/combat"
)

// ProximityConfig описывает урон по цели, стоящей рядом с источником
type ProximityConfig struct {
	Range    float64 // Строго меньше: цель на расстоянии Range не задевается
	Damage   int
	Interval time.Duration

	// ResetOnLeave сбрасывает накопленное время, когда цель выходит из радиуса.
	// false: урон проверяется раз в Interval независимо от того, уходила ли цель.
	ResetOnLeave bool
}

// InRange проверяет расстояние между центрами хитбоксов
func (c ProximityConfig) InRange(source, target *combat.Entity) bool {
	return source.Center().DistanceTo(target.Center()) < c.Range
}

// Proximity планирует периодический урон от source по текущей цели.
// target вызывается при каждой проверке, поэтому замена игрока после
// рестарта подхватывается без перепланирования. Задача завершается
// вместе с source.
func Proximity(s *Scheduler, model *combat.Model, source *combat.Entity, target func() *combat.Entity, cfg ProximityConfig) (*Task, error) {
	if cfg.Damage < 0 {
		return nil, fmt.Errorf("%w: proximity damage %d", combat.ErrInvalidDamage, cfg.Damage)
	}

	inRange := func() bool {
		t := target()
		return t != nil && t.Alive() && source.Alive() && cfg.InRange(source, t)
	}

	var guard Guard
	if cfg.ResetOnLeave {
		guard = inRange
	}

	return s.ScheduleGuarded(source.Context(), cfg.Interval, guard, func() {
		if !inRange() {
			return
		}
		t := target()
		if _, err := model.ApplyDamage(t, cfg.Damage); err != nil {
			s.logger.Warn("Hazard %d damage to %d failed: %v", source.ID, t.ID, err)
			return
		}
		s.metrics.hit(cfg.Damage)
	})
}
