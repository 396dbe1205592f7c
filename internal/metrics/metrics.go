package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "wordcheck"

// Metrics exposes Prometheus collectors for lookups and HTTP traffic.
type Metrics struct {
	lookups         *prometheus.CounterVec
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	vocabularyWords prometheus.Gauge
}

// MustNewMetrics constructs Metrics and registers them with reg. Tests should
// pass a fresh prometheus.NewRegistry() to avoid duplicate registration
// panics. A nil reg uses the default registerer.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "lookups_total",
				Help:      "Membership lookups by result.",
			},
			[]string{"result"},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route, method and status.",
			},
			[]string{"route", "method", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by route.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		vocabularyWords: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "vocabulary_words",
				Help:      "Number of distinct words loaded at startup.",
			},
		),
	}

	reg.MustRegister(m.lookups, m.requests, m.requestDuration, m.vocabularyWords)
	return m
}

// ObserveLookup records one membership lookup.
func (m *Metrics) ObserveLookup(valid bool) {
	if m == nil {
		return
	}
	result := "miss"
	if valid {
		result = "hit"
	}
	m.lookups.WithLabelValues(result).Inc()
}

// ObserveRequest records one completed HTTP request.
func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// SetVocabularySize records the number of loaded words.
func (m *Metrics) SetVocabularySize(n int) {
	if m == nil {
		return
	}
	m.vocabularyWords.Set(float64(n))
}
