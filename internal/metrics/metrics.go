package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce sync.Once

	httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "matchops_http_requests_total",
		Help: "Total HTTP requests handled by the admin API.",
	}, []string{"method", "path", "status"})

	httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "matchops_http_request_duration_seconds",
		Help:    "HTTP request latency for the admin API.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	reportRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "matchops_match_report_runs_total",
		Help: "Match report computations, by cache outcome.",
	}, []string{"outcome"})
)

// MustRegister registers the package metrics in the given registry.
func MustRegister(registerer prometheus.Registerer) {
	registerOnce.Do(func() {
		registerer.MustRegister(
			httpRequestsTotal,
			httpRequestDuration,
			reportRunsTotal,
		)
	})
}

// Handler exposes the prometheus scrape endpoint as an echo handler.
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}

// Middleware records request counts and latencies per route.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}

			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}

			labels := []string{c.Request().Method, path, strconv.Itoa(status)}
			httpRequestsTotal.WithLabelValues(labels...).Inc()
			httpRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

// ReportRun records one match-report computation outcome
// ("hit", "miss" or "refresh").
func ReportRun(outcome string) {
	reportRunsTotal.WithLabelValues(outcome).Inc()
}
