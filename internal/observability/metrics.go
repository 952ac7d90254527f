package observability

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace - общий префикс всех метрик ядра
const Namespace = "sandbox"

// Register регистрирует коллектор в reg. Если такой коллектор уже
// зарегистрирован (например, вторая сессия на том же реестре), возвращает
// существующий, чтобы обе сессии писали в одну серию.
// reg == nil означает, что метрики не экспортируются.
func Register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if reg == nil {
		return c
	}
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// RegisterCounter - Register для Counter
func RegisterCounter(reg prometheus.Registerer, c prometheus.Counter) prometheus.Counter {
	return Register(reg, c)
}

// RegisterGauge - Register для Gauge
func RegisterGauge(reg prometheus.Registerer, g prometheus.Gauge) prometheus.Gauge {
	return Register(reg, g)
}
