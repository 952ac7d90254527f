package game

import (
	"time"

	"github.com/annel0/sandbox-core/internal/combat"
)

// runSpawner: паук раз в SpiderEvery с вероятностью SpiderChance рядом
// с игроком, босс один раз через BossDelay. Все броски из rng сессии.
func (s *Session) runSpawner(dt time.Duration) error {
	sc := s.cfg.Spawn

	if sc.SpiderEvery > 0 {
		s.spiderClock += dt
		for s.spiderClock >= sc.SpiderEvery {
			s.spiderClock -= sc.SpiderEvery
			if s.rng.Float64() >= sc.SpiderChance {
				continue
			}
			origin := s.player.Entity.Position
			x := origin.X + (s.rng.Float64()*2-1)*sc.SpiderSpread
			y := origin.Y + (s.rng.Float64()*2-1)*sc.SpiderSpread
			if _, err := s.SpawnMob(combat.KindSpider, x, y); err != nil {
				return err
			}
		}
	}

	if sc.BossDelay > 0 && !s.bossSpawned {
		s.bossClock += dt
		if s.bossClock >= sc.BossDelay {
			s.bossSpawned = true
			if _, err := s.SpawnMob(combat.KindBoss, sc.BossX, sc.BossY); err != nil {
				return err
			}
		}
	}
	return nil
}
