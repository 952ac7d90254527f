package eventbus

import (
	"context"

	"github.com/annel0/sandbox-core/internal/logging"
)

// StartLoggingListener подписывается на все события и пишет их в лог.
// Функция неблокирующая.
func StartLoggingListener(ctx context.Context, bus EventBus) (Subscription, error) {
	logger := logging.GetComponentLogger("events")
	sub, err := bus.Subscribe(ctx, Filter{}, func(ctx context.Context, ev *Event) {
		logger.Debug("[EventBus] %s %s session=%s entity=%d kind=%s at=(%.2f,%.2f) %s",
			ev.ID, ev.Type, ev.Session, ev.EntityID, ev.Kind, ev.X, ev.Y, ev.Detail)
	})
	if err != nil {
		return nil, err
	}
	logger.Info("🪵 LoggingListener: подписка на все события активирована")
	return sub, nil
}
