package eventbus

import (
	"github.com/annel0/sandbox-core/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics - Prometheus-метрики шины. Нулевой указатель допустим.
type Metrics struct {
	Published prometheus.Counter
	Consumed  prometheus.Counter
	Dropped   prometheus.Counter
	InFlight  prometheus.Gauge
}

// NewMetrics создаёт метрики и регистрирует их в reg (если reg != nil)
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Published: observability.RegisterCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: observability.Namespace,
			Subsystem: "eventbus",
			Name:      "messages_published_total",
			Help:      "Общее число опубликованных сообщений.",
		})),
		Consumed: observability.RegisterCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: observability.Namespace,
			Subsystem: "eventbus",
			Name:      "messages_consumed_total",
			Help:      "Общее число доставленных сообщений подписчикам.",
		})),
		Dropped: observability.RegisterCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: observability.Namespace,
			Subsystem: "eventbus",
			Name:      "messages_dropped_total",
			Help:      "Сообщений, отброшенных из-за переполнения буфера.",
		})),
		InFlight: observability.RegisterGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: observability.Namespace,
			Subsystem: "eventbus",
			Name:      "messages_inflight",
			Help:      "Сообщений в очереди, ещё не доставленных.",
		})),
	}
}

func (m *Metrics) published(inflight int) {
	if m != nil {
		m.Published.Inc()
		m.InFlight.Set(float64(inflight))
	}
}

func (m *Metrics) consumed(inflight int) {
	if m != nil {
		m.Consumed.Inc()
		m.InFlight.Set(float64(inflight))
	}
}

func (m *Metrics) dropped() {
	if m != nil {
		m.Dropped.Inc()
	}
}
