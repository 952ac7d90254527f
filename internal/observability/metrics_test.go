package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegisterCounter_ReusesExisting(t *testing.T) {
	reg := prometheus.NewRegistry()
	opts := prometheus.CounterOpts{Namespace: Namespace, Name: "test_total", Help: "test"}

	first := RegisterCounter(reg, prometheus.NewCounter(opts))
	second := RegisterCounter(reg, prometheus.NewCounter(opts))

	second.Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(first), "повторная регистрация должна вернуть существующий счётчик")
}

func TestRegisterGauge_NilRegistry(t *testing.T) {
	g := RegisterGauge(nil, prometheus.NewGauge(prometheus.GaugeOpts{Name: "g", Help: "g"}))
	g.Set(3)
	assert.Equal(t, 3.0, testutil.ToFloat64(g))
}
