package ledger

import (
	"strings"
	"time"

	"github.com/iov-one/msgauth/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts ledger operations by result and measures their latency.
type Metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewMetrics creates the ledger collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "msgauth",
				Name:      "ledger_operations_total",
				Help:      "Total number of ledger operations.",
			},
			[]string{"operation", "result"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "msgauth",
				Name:      "ledger_operation_duration_seconds",
				Help:      "Duration of ledger operations.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
	reg.MustRegister(m.operations, m.duration)
	return m
}

func (m *Metrics) observe(op string, took time.Duration, err error) {
	m.operations.WithLabelValues(op, resultLabel(err)).Inc()
	m.duration.WithLabelValues(op).Observe(took.Seconds())
}

// resultLabel is "ok" for a nil error, otherwise the name of the
// registered error it wraps.
func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	root := errors.Root(err)
	if root == nil {
		return "internal"
	}
	return strings.ReplaceAll(root.Error(), " ", "_")
}
