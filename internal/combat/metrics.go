package combat

import (
	"github.com/annel0/sandbox-core/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics - метрики боевой модели. Нулевой указатель допустим.
type Metrics struct {
	Damage prometheus.Counter
	Deaths prometheus.Counter
	Alive  prometheus.Gauge
}

// NewMetrics создаёт метрики и регистрирует их в reg (если reg != nil)
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Damage: observability.RegisterCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: observability.Namespace,
			Subsystem: "combat",
			Name:      "damage_applied_total",
			Help:      "Суммарный нанесённый урон (после ограничения нулём).",
		})),
		Deaths: observability.RegisterCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: observability.Namespace,
			Subsystem: "combat",
			Name:      "deaths_total",
			Help:      "Сигналов смерти.",
		})),
		Alive: observability.RegisterGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: observability.Namespace,
			Subsystem: "combat",
			Name:      "entities_alive",
			Help:      "Живых сущностей.",
		})),
	}
}

func (m *Metrics) damaged(amount int) {
	if m != nil && amount > 0 {
		m.Damage.Add(float64(amount))
	}
}

func (m *Metrics) died() {
	if m != nil {
		m.Deaths.Inc()
		m.Alive.Dec()
	}
}

func (m *Metrics) created() {
	if m != nil {
		m.Alive.Inc()
	}
}

func (m *Metrics) removed() {
	if m != nil {
		m.Alive.Dec()
	}
}
