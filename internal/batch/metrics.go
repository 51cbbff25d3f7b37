package batch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK         = "ok"
	outcomeFailed     = "failed"
	outcomeNoImage    = "no_image"
	outcomeValidation = "validation"
	outcomeEmpty      = "empty"
)

// Metrics counts batch and per-request outcomes. A nil *Metrics is a no-op.
type Metrics struct {
	requests *prometheus.CounterVec
	batches  *prometheus.CounterVec
	duration prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		requests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "style_studio_generation_requests_total",
				Help: "Image generation requests, partitioned by outcome.",
			},
			[]string{"outcome"},
		),
		batches: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "style_studio_batches_total",
				Help: "Generation batches, partitioned by outcome.",
			},
			[]string{"outcome"},
		),
		duration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "style_studio_batch_duration_seconds",
				Help:    "Wall time of dispatched batches until every request settled.",
				Buckets: []float64{1, 5, 10, 20, 30, 60, 120, 240},
			},
		),
	}
}

func (m *Metrics) request(outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) batch(outcome string) {
	if m == nil {
		return
	}
	m.batches.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observe(d time.Duration) {
	if m == nil {
		return
	}
	m.duration.Observe(d.Seconds())
}
