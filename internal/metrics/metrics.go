// Package metrics exposes Prometheus collectors for the proposal form service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"capex/internal/form"
)

// Metrics owns its registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	formEventsTotal     *prometheus.CounterVec
	cascadeResetsTotal  *prometheus.CounterVec
	invalidAmountsTotal prometheus.Counter
	cascadeRepairsTotal prometheus.Counter
	activeSessions      prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		formEventsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "form_field_events_total",
				Help: "Form field edits by field and result",
			},
			[]string{"field", "result"},
		),
		cascadeResetsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "form_cascade_resets_total",
				Help: "Downstream fields cleared by an upstream edit",
			},
			[]string{"field"},
		),
		invalidAmountsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "form_invalid_amounts_total",
			Help: "Amount edits rejected as malformed",
		}),
		cascadeRepairsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "form_cascade_repairs_total",
			Help: "Inconsistent cascade states detected and repaired",
		}),
		activeSessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "form_active_sessions",
			Help: "Form sessions currently held in memory",
		}),
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) FieldEvent(field form.FieldID, result string) {
	m.formEventsTotal.WithLabelValues(string(field), result).Inc()
}

func (m *Metrics) Reset(fields []form.FieldID) {
	for _, f := range fields {
		m.cascadeResetsTotal.WithLabelValues(string(f)).Inc()
	}
}

func (m *Metrics) InvalidAmount() { m.invalidAmountsTotal.Inc() }

func (m *Metrics) Repair() { m.cascadeRepairsTotal.Inc() }

func (m *Metrics) ActiveSessions(n int) { m.activeSessions.Set(float64(n)) }

// ObserveHTTP records one finished request. route is the matched pattern,
// not the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
