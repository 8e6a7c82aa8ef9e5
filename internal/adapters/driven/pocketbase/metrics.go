package pocketbase

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the client's Prometheus collectors on an isolated registry.
// A nil *Metrics records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	AttemptsTotal          *prometheus.CounterVec
	RetriesTotal           *prometheus.CounterVec
	RequestDurationSeconds *prometheus.HistogramVec
	CSRFFetchesTotal       *prometheus.CounterVec
	ListLoadsTotal         *prometheus.CounterVec
	BuildInfo              *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them with Go runtime and
// process collectors on a fresh registry.
func NewMetrics(version, goVersion string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector())
	reg.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Metrics{
		Registry: reg,

		AttemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pbcn_fetch_attempts_total",
				Help: "Total number of HTTP attempts by method and outcome.",
			},
			[]string{"method", "outcome"},
		),
		RetriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pbcn_fetch_retries_total",
				Help: "Total number of retries by the error kind that caused them.",
			},
			[]string{"kind"},
		),
		RequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pbcn_fetch_duration_seconds",
				Help:    "Duration of HTTP attempts in seconds.",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
			},
			[]string{"method", "status"},
		),
		CSRFFetchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pbcn_csrf_fetches_total",
				Help: "Total number of CSRF token fetches by result.",
			},
			[]string{"result"},
		),
		ListLoadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pbcn_list_loads_total",
				Help: "Total number of list loads by kind and result.",
			},
			[]string{"kind", "result"},
		),
		BuildInfo: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pbcn_info",
				Help: "Build information.",
			},
			[]string{"version", "go_version"},
		),
	}

	reg.MustRegister(
		m.AttemptsTotal,
		m.RetriesTotal,
		m.RequestDurationSeconds,
		m.CSRFFetchesTotal,
		m.ListLoadsTotal,
		m.BuildInfo,
	)
	m.BuildInfo.WithLabelValues(version, goVersion).Set(1)

	return m
}

// Handler returns an http.Handler that serves the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// ObserveListLoad records one list load. kind is "replace" or "more";
// result is "ok", "error" or "discarded".
func (m *Metrics) ObserveListLoad(kind, result string) {
	if m == nil {
		return
	}
	m.ListLoadsTotal.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) observeAttempt(method, outcome string) {
	if m == nil {
		return
	}
	m.AttemptsTotal.WithLabelValues(method, outcome).Inc()
}

func (m *Metrics) observeRetry(kind string) {
	if m == nil {
		return
	}
	m.RetriesTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) observeLatency(method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	m.RequestDurationSeconds.WithLabelValues(method, label).Observe(d.Seconds())
}

func (m *Metrics) observeCSRF(result string) {
	if m == nil {
		return
	}
	m.CSRFFetchesTotal.WithLabelValues(result).Inc()
}
