package http

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"soundbex/internal/core"
)

// Metrics holds the service's Prometheus collectors. It also records resolver activity.
type Metrics struct {
	registerer       prometheus.Registerer
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	StrategyAttempts *prometheus.CounterVec
	StrategyDuration *prometheus.HistogramVec
	Resolutions      *prometheus.CounterVec
	SearchResults    prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with registerer.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	metrics := &Metrics{
		registerer: registerer,
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "soundbex_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "soundbex_http_request_duration_seconds",
				Help:    "Time spent serving HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		StrategyAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "soundbex_strategy_attempts_total",
				Help: "Total number of resolution strategy attempts",
			},
			[]string{"strategy", "outcome"},
		),
		StrategyDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "soundbex_strategy_duration_seconds",
				Help:    "Time spent in a single resolution strategy attempt",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 30},
			},
			[]string{"strategy"},
		),
		Resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "soundbex_resolutions_total",
				Help: "Total number of stream resolutions by result kind",
			},
			[]string{"kind", "source"},
		),
		SearchResults: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "soundbex_search_results",
				Help:    "Number of results returned per search",
				Buckets: []float64{0, 1, 5, 10, 15, 20},
			},
		),
	}

	registerer.MustRegister(
		metrics.RequestsTotal,
		metrics.RequestDuration,
		metrics.StrategyAttempts,
		metrics.StrategyDuration,
		metrics.Resolutions,
		metrics.SearchResults,
	)

	return metrics
}

// RegisterPlaylistGauge exposes the number of live playlists reported by count.
func (m *Metrics) RegisterPlaylistGauge(count func() int) {
	m.registerer.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "soundbex_playlists_active",
			Help: "Number of playlists currently held in memory",
		},
		func() float64 { return float64(count()) },
	))
}

// ObserveAttempt records one strategy attempt.
func (m *Metrics) ObserveAttempt(strategy, outcome string, elapsed time.Duration) {
	m.StrategyAttempts.WithLabelValues(strategy, outcome).Inc()
	m.StrategyDuration.WithLabelValues(strategy).Observe(elapsed.Seconds())
}

// ObserveResolution records the final result of a resolution.
func (m *Metrics) ObserveResolution(kind core.StreamKind, source string) {
	m.Resolutions.WithLabelValues(string(kind), source).Inc()
}

// RecordRequest records a served HTTP request.
func (m *Metrics) RecordRequest(route string, status int, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(route, statusLabel(status)).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordSearch records how many results a search returned.
func (m *Metrics) RecordSearch(results int) {
	m.SearchResults.Observe(float64(results))
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
