package kernel

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeOK       = "ok"
	outcomeProtocol = "protocol_error"
	outcomeExited   = "exited"
)

// Metrics holds the Prometheus collectors for kernel sessions. A nil
// *Metrics records nothing.
type Metrics struct {
	requests *prometheus.CounterVec
	duration prometheus.Histogram
	sessions prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg when reg
// is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mathlink_kernel_requests_total",
				Help: "Kernel request/reply exchanges by outcome.",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "mathlink_kernel_request_duration_seconds",
				Help:    "Time from sending a request to reading the next prompt.",
				Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
			},
		),
		sessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "mathlink_kernel_sessions",
				Help: "Kernel processes currently running.",
			},
		),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.duration, m.sessions)
	}
	return m
}

func (m *Metrics) observe(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
	m.duration.Observe(d.Seconds())
}

func (m *Metrics) sessionStarted() {
	if m != nil {
		m.sessions.Inc()
	}
}

func (m *Metrics) sessionClosed() {
	if m != nil {
		m.sessions.Dec()
	}
}
