package world

import (
	"github.com/annel0/sandbox-core/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics - Prometheus-метрики хранилища чанков. Нулевой указатель допустим:
// все методы на nil ничего не делают.
type Metrics struct {
	Generated prometheus.Counter
	Evicted   prometheus.Counter
	Restored  prometheus.Counter
	Resident  prometheus.Gauge
}

// NewMetrics создаёт метрики и регистрирует их в reg (если reg != nil)
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Generated: observability.RegisterCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: observability.Namespace,
			Subsystem: "world",
			Name:      "chunks_generated_total",
			Help:      "Чанков сгенерировано впервые.",
		})),
		Evicted: observability.RegisterCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: observability.Namespace,
			Subsystem: "world",
			Name:      "chunks_evicted_total",
			Help:      "Чанков вытеснено в spill-хранилище.",
		})),
		Restored: observability.RegisterCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: observability.Namespace,
			Subsystem: "world",
			Name:      "chunks_restored_total",
			Help:      "Чанков восстановлено из spill-хранилища.",
		})),
		Resident: observability.RegisterGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: observability.Namespace,
			Subsystem: "world",
			Name:      "chunks_resident",
			Help:      "Чанков в памяти хранилища.",
		})),
	}
}

func (m *Metrics) chunkGenerated() {
	if m != nil {
		m.Generated.Inc()
	}
}

func (m *Metrics) chunkEvicted() {
	if m != nil {
		m.Evicted.Inc()
	}
}

func (m *Metrics) chunkRestored() {
	if m != nil {
		m.Restored.Inc()
	}
}

func (m *Metrics) setResident(n int) {
	if m != nil {
		m.Resident.Set(float64(n))
	}
}
