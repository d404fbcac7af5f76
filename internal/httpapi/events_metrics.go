package httpapi

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"adapterd/internal/generation"
)

// MetricsPublisher exports generation lifecycle events as Prometheus
// metrics. It implements generation.EventPublisher.
type MetricsPublisher struct {
	events      *prometheus.CounterVec
	loadSeconds *prometheus.HistogramVec
	genSeconds  *prometheus.HistogramVec
}

// NewMetricsPublisher creates the collectors and registers them with reg.
func NewMetricsPublisher(reg prometheus.Registerer) *MetricsPublisher {
	p := &MetricsPublisher{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "adapterd",
			Subsystem: "generation",
			Name:      "events_total",
			Help:      "Generation lifecycle events by name",
		}, []string{"event"}),
		loadSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "adapterd",
			Subsystem: "generation",
			Name:      "load_duration_seconds",
			Help:      "Base model and adapter load durations",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"kind"}),
		genSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "adapterd",
			Subsystem: "generation",
			Name:      "request_duration_seconds",
			Help:      "Generation durations by outcome",
			Buckets:   []float64{0.05, 0.25, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"outcome"}),
	}
	reg.MustRegister(p.events, p.loadSeconds, p.genSeconds)
	return p
}

func (p *MetricsPublisher) Publish(e generation.Event) {
	p.events.WithLabelValues(e.Name).Inc()
	ms, ok := e.Fields["dur_ms"].(int)
	if !ok {
		return
	}
	secs := (time.Duration(ms) * time.Millisecond).Seconds()
	switch e.Name {
	case generation.EventBaseLoadDone:
		p.loadSeconds.WithLabelValues("base").Observe(secs)
	case generation.EventAdapterLoadDone:
		p.loadSeconds.WithLabelValues("adapter").Observe(secs)
	case generation.EventGenerateDone:
		p.genSeconds.WithLabelValues("ok").Observe(secs)
	case generation.EventGenerateError, generation.EventUnsupported:
		kind, _ := e.Fields["kind"].(string)
		if kind == "" {
			kind = "other"
		}
		p.genSeconds.WithLabelValues(kind).Observe(secs)
	}
}
