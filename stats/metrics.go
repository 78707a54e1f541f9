package stats

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ecgroup"

// Metrics are the prometheus collectors fed by Stats.
type Metrics struct {
	Operations *prometheus.CounterVec
	Durations  *prometheus.HistogramVec
}

// NewMetrics 创建并注册到 reg；reg 为 nil 时不注册
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "group_operations_total",
			Help:      "Number of group operations performed, by operation.",
		}, []string{"op"}),
		Durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "duration_seconds",
			Help:      "Duration of enumeration and order computations.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
		}, []string{"name"}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.Operations, m.Durations} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, "register metrics")
		}
	}
	return m, nil
}

func (m *Metrics) addOp(op string, n int) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(op).Add(float64(n))
}

func (m *Metrics) observe(name string, d time.Duration) {
	if m == nil {
		return
	}
	m.Durations.WithLabelValues(name).Observe(d.Seconds())
}
