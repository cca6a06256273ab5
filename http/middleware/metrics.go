package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics counts requests and their normalization outcomes for Prometheus.
// A nil *Metrics records nothing.
type Metrics struct {
	requestsTotal      *prometheus.CounterVec
	normalizeTotal     *prometheus.CounterVec
	invalidFieldsTotal *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
}

// NewMetrics registers the trailhead collectors with reg,
// or with prometheus.DefaultRegisterer if reg is nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "trailhead_requests_total", Help: "Total requests"},
			[]string{"method", "code"},
		),
		normalizeTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "trailhead_normalize_total", Help: "Total request normalizations by outcome"},
			[]string{"outcome"},
		),
		invalidFieldsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "trailhead_invalid_fields_total", Help: "Total fields failing validation"},
			[]string{"field"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "trailhead_request_duration_seconds",
				Help:    "Request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
	}

	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.normalizeTotal, m.invalidFieldsTotal, m.requestDuration)

	return m
}

// Handler serves the metrics gathered by reg, or by the default gatherer if reg is nil.
func (m *Metrics) Handler(reg *prometheus.Registry) http.Handler {
	if reg == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// Instrument counts every request by method and status code and times it.
func (m *Metrics) Instrument() Adapter {
	if m == nil {
		return NoopAdapter
	}

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := newStatusRecorder(w)
			h.ServeHTTP(sr, r)

			m.requestsTotal.WithLabelValues(r.Method, strconv.Itoa(sr.Status())).Inc()
			m.requestDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
		})
	}
}

func (m *Metrics) observeNormalize(outcome string, invalid []string) {
	if m == nil {
		return
	}

	m.normalizeTotal.WithLabelValues(outcome).Inc()
	for _, field := range invalid {
		m.invalidFieldsTotal.WithLabelValues(field).Inc()
	}
}

// RequestCounter exposes the request counter for one method and status code.
func (m *Metrics) RequestCounter(method string, code int) prometheus.Counter {
	return m.requestsTotal.WithLabelValues(method, strconv.Itoa(code))
}

// NormalizeCounter exposes the normalization counter for one outcome.
func (m *Metrics) NormalizeCounter(outcome string) prometheus.Counter {
	return m.normalizeTotal.WithLabelValues(outcome)
}

// InvalidFieldCounter exposes the invalid field counter for one field.
func (m *Metrics) InvalidFieldCounter(field string) prometheus.Counter {
	return m.invalidFieldsTotal.WithLabelValues(field)
}
