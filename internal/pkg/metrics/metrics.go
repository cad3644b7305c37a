// Package metrics exposes the portal's Prometheus instruments.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every instrument, registered on its own registry
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	SignInsTotal *prometheus.CounterVec

	RecapRunsTotal  *prometheus.CounterVec
	RecapRunSeconds prometheus.Histogram

	MCQGenerationsTotal *prometheus.CounterVec
}

// New creates the instruments under namespace
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),
		SignInsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sign_ins_total",
				Help:      "Sign-in attempts by outcome",
			},
			[]string{"outcome"},
		),
		RecapRunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "recap_runs_total",
				Help:      "Weekly recap runs by result",
			},
			[]string{"result"},
		),
		RecapRunSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "recap_run_duration_seconds",
				Help:      "Weekly recap run duration in seconds",
				Buckets:   []float64{0.0001, 0.001, 0.01, 0.1, 1},
			},
		),
		MCQGenerationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "mcq_generations_total",
				Help:      "Question generation requests by result",
			},
			[]string{"result"},
		),
	}
}

// TrackSessions exposes the number of open client sessions
func (m *Metrics) TrackSessions(namespace string, count func() int) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "client_sessions",
			Help:      "Open client sessions",
		},
		func() float64 { return float64(count()) },
	))
}

// ObserveSignIn counts a sign-in attempt
func (m *Metrics) ObserveSignIn(outcome string) {
	m.SignInsTotal.WithLabelValues(outcome).Inc()
}

// ObserveRecap records one recap run
func (m *Metrics) ObserveRecap(published bool, took time.Duration) {
	result := "skipped"
	if published {
		result = "published"
	}
	m.RecapRunsTotal.WithLabelValues(result).Inc()
	m.RecapRunSeconds.Observe(took.Seconds())
}

// ObserveMCQGeneration counts a generation request; result is success, failed or busy
func (m *Metrics) ObserveMCQGeneration(result string) {
	m.MCQGenerationsTotal.WithLabelValues(result).Inc()
}

// Middleware records request counts and latency per route
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.HTTPRequestsInFlight.Inc()
		defer m.HTTPRequestsInFlight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
