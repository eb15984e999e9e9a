// Package metrics exposes Prometheus instruments for risk scoring, alert
// handling and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "carewatch"

type Metrics struct {
	registry *prometheus.Registry

	VisitsScored   *prometheus.CounterVec
	RiskScore      prometheus.Histogram
	AlertsCreated  *prometheus.CounterVec
	AlertsReviewed *prometheus.CounterVec
	EventsFailed   *prometheus.CounterVec
	HTTPRequests   *prometheus.HistogramVec
}

// New builds the instruments on a private registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		VisitsScored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "visits_scored_total",
			Help:      "Visit observations scored, by resulting risk level.",
		}, []string{"risk_level"}),
		RiskScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "risk_score",
			Help:      "Distribution of computed risk scores.",
			Buckets:   []float64{0, 1, 2, 3, 4, 5, 7, 10, 15},
		}),
		AlertsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_created_total",
			Help:      "Alerts raised for amber and red visits.",
		}, []string{"risk_level"}),
		AlertsReviewed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_reviewed_total",
			Help:      "Alerts reviewed by a manager, by action taken.",
		}, []string{"action"}),
		EventsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_publish_failures_total",
			Help:      "Domain events that could not be published.",
		}, []string{"type"}),
		HTTPRequests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.VisitsScored, m.RiskScore, m.AlertsCreated, m.AlertsReviewed, m.EventsFailed, m.HTTPRequests,
	)
	return m
}

// ObserveScore records one scored observation.
func (m *Metrics) ObserveScore(level string, score int) {
	m.VisitsScored.WithLabelValues(level).Inc()
	m.RiskScore.Observe(float64(score))
}

func (m *Metrics) AlertCreated(level string) {
	m.AlertsCreated.WithLabelValues(level).Inc()
}

func (m *Metrics) AlertReviewed(action string) {
	m.AlertsReviewed.WithLabelValues(action).Inc()
}

func (m *Metrics) EventFailed(eventType string) {
	m.EventsFailed.WithLabelValues(eventType).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Middleware times each request. The matched route template is used as the
// label so ids do not explode cardinality.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				} else {
					status = http.StatusInternalServerError
				}
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.HTTPRequests.WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).
				Observe(time.Since(start).Seconds())
			return err
		}
	}
}
