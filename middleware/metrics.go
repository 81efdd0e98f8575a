package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	activeRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_requests",
			Help: "Number of in-flight HTTP requests",
		},
	)

	leadsConverted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crm_leads_converted_total",
			Help: "Total number of leads converted to clients",
		},
	)

	leadsImported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_leads_imported_total",
			Help: "Rows processed by the lead importer",
		},
		[]string{"outcome"},
	)

	aiFlowCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_ai_flow_calls_total",
			Help: "AI flow invocations by flow and outcome",
		},
		[]string{"flow", "outcome"},
	)
)

// Metrics records request counts and latency, labelled by route pattern
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			activeRequests.Inc()
			defer activeRequests.Dec()

			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}

			httpRequestsTotal.WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).Inc()
			httpRequestDuration.WithLabelValues(c.Request().Method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

func RecordLeadConverted() {
	leadsConverted.Inc()
}

// RecordLeadImport adds an import run's row outcomes
func RecordLeadImport(success, skipped int) {
	leadsImported.WithLabelValues("success").Add(float64(success))
	leadsImported.WithLabelValues("skipped").Add(float64(skipped))
}

func RecordAIFlow(flow string, ok bool) {
	outcome := "success"
	if !ok {
		outcome = "error"
	}
	aiFlowCalls.WithLabelValues(flow, outcome).Inc()
}
