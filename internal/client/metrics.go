package client

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records outbound API calls. A nil *Metrics records nothing.
type Metrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewMetrics creates and registers the API call metrics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sweetshop",
				Subsystem: "api_client",
				Name:      "requests_total",
				Help:      "Outbound API calls by operation and status.",
			},
			[]string{"op", "status"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "sweetshop",
				Subsystem: "api_client",
				Name:      "request_duration_seconds",
				Help:      "Outbound API call latency.",
				Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15},
			},
			[]string{"op"},
		),
	}
	reg.MustRegister(m.Requests, m.Duration)
	return m
}

func (m *Metrics) observe(op string, status int, err error, d time.Duration) {
	if m == nil {
		return
	}
	label := strconv.Itoa(status)
	if status == 0 && err != nil {
		label = "error"
	}
	m.Requests.WithLabelValues(op, label).Inc()
	m.Duration.WithLabelValues(op).Observe(d.Seconds())
}
