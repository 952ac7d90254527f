package hazard

import (
	"github.com/annel0/sandbox-core/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics - метрики планировщика. Нулевой указатель допустим.
type Metrics struct {
	Fires prometheus.Counter
	Hits  prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Fires: observability.RegisterCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: observability.Namespace,
			Subsystem: "hazard",
			Name:      "fires_total",
			Help:      "Срабатываний периодических задач.",
		})),
		Hits: observability.RegisterCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: observability.Namespace,
			Subsystem: "hazard",
			Name:      "hits_total",
			Help:      "Срабатываний, нанёсших урон цели.",
		})),
	}
}

func (m *Metrics) fired() {
	if m != nil {
		m.Fires.Inc()
	}
}

func (m *Metrics) hit(damage int) {
	if m != nil && damage > 0 {
		m.Hits.Inc()
	}
}
