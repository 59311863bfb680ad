package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config contains configuration for the metrics collector.
type Config struct {
	// Enabled toggles metric recording. When false every Record method is
	// a no-op and the handler serves an empty registry.
	Enabled bool

	// Namespace is the Prometheus metric namespace. Default: "auracall".
	Namespace string

	// StreamDurationBuckets are the histogram buckets for full-stream
	// durations in seconds.
	StreamDurationBuckets []float64
}

// Collector owns all Prometheus metrics for the service and provides a
// typed recording interface so callers never touch label strings twice.
type Collector struct {
	config   *Config
	registry *prometheus.Registry

	requestsTotal    *prometheus.CounterVec
	fragmentsTotal   prometheus.Counter
	streamDuration   *prometheus.HistogramVec
	failoversTotal   *prometheus.CounterVec
	activeBackend    *prometheus.GaugeVec
	adaptationsTotal *prometheus.CounterVec
	feedbackTotal    *prometheus.CounterVec
}

// NewCollector creates a metrics collector backed by its own registry.
func NewCollector(cfg *Config) *Collector {
	if cfg == nil {
		cfg = &Config{Enabled: true}
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "auracall"
	}
	if len(cfg.StreamDurationBuckets) == 0 {
		// Token streams run long; buckets span first-token fast paths to
		// multi-minute answers.
		cfg.StreamDurationBuckets = []float64{0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0, 120.0}
	}

	registry := prometheus.NewRegistry()
	c := &Collector{
		config:   cfg,
		registry: registry,

		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "requests_total",
			Help:      "Chat requests by conversation mode and terminal status.",
		}, []string{"mode", "status"}),

		fragmentsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "fragments_total",
			Help:      "Token fragments relayed to clients.",
		}),

		streamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "stream_duration_seconds",
			Help:      "Full stream duration from backend request to final fragment.",
			Buckets:   cfg.StreamDurationBuckets,
		}, []string{"backend"}),

		failoversTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "failovers_total",
			Help:      "Backend failover switches.",
		}, []string{"from", "to"}),

		activeBackend: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Name:      "active_backend",
			Help:      "1 for the currently active backend, 0 otherwise.",
		}, []string{"backend"}),

		adaptationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "adaptations_total",
			Help:      "Prompt adaptation attempts by kind and outcome.",
		}, []string{"kind", "outcome"}),

		feedbackTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "feedback_total",
			Help:      "Feedback submissions by category.",
		}, []string{"category"}),
	}

	if cfg.Enabled {
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			c.requestsTotal,
			c.fragmentsTotal,
			c.streamDuration,
			c.failoversTotal,
			c.activeBackend,
			c.adaptationsTotal,
			c.feedbackTotal,
		)
	}

	return c
}

// Handler returns the HTTP handler serving the /metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordRequest records a completed chat request.
func (c *Collector) RecordRequest(mode, status string) {
	if !c.config.Enabled {
		return
	}
	c.requestsTotal.WithLabelValues(mode, status).Inc()
}

// RecordFragments adds n relayed fragments.
func (c *Collector) RecordFragments(n int) {
	if !c.config.Enabled || n <= 0 {
		return
	}
	c.fragmentsTotal.Add(float64(n))
}

// RecordStreamDuration records the duration of one complete stream.
func (c *Collector) RecordStreamDuration(backend string, d time.Duration) {
	if !c.config.Enabled {
		return
	}
	c.streamDuration.WithLabelValues(backend).Observe(d.Seconds())
}

// RecordFailover records a backend switch and flips the active gauges.
func (c *Collector) RecordFailover(from, to string) {
	if !c.config.Enabled {
		return
	}
	c.failoversTotal.WithLabelValues(from, to).Inc()
	c.activeBackend.WithLabelValues(from).Set(0)
	c.activeBackend.WithLabelValues(to).Set(1)
}

// SetActiveBackend marks the named backend as active.
func (c *Collector) SetActiveBackend(backend string) {
	if !c.config.Enabled {
		return
	}
	c.activeBackend.WithLabelValues(backend).Set(1)
}

// RegisterSessionSource registers a callback sampled at scrape time for
// the active_sessions gauge.
func (c *Collector) RegisterSessionSource(fn func() int) {
	if !c.config.Enabled {
		return
	}
	c.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: c.config.Namespace,
		Name:      "active_sessions",
		Help:      "Sessions currently held in the conversation store.",
	}, func() float64 {
		return float64(fn())
	}))
}

// RecordAdaptation records a prompt adaptation attempt.
func (c *Collector) RecordAdaptation(kind, outcome string) {
	if !c.config.Enabled {
		return
	}
	c.adaptationsTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordFeedback records a feedback submission.
func (c *Collector) RecordFeedback(category string) {
	if !c.config.Enabled {
		return
	}
	c.feedbackTotal.WithLabelValues(category).Inc()
}
