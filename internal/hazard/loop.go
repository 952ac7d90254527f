package hazard

import (
	"context"
	"time"
)

// Run вызывает frame каждые interval реального времени, передавая прошедшее
// с прошлого кадра время. Возвращает nil при отмене ctx или ошибку frame.
func Run(ctx context.Context, interval time.Duration, frame func(dt time.Duration) error) error {
	if interval <= 0 {
		return ErrInvalidInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			if ctx.Err() != nil {
				return nil
			}
			dt := now.Sub(last)
			last = now
			if err := frame(dt); err != nil {
				return err
			}
		}
	}
}
