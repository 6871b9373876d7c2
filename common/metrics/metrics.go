// Package metrics records Prometheus metrics for the HTTP surface, the
// DynamoDB store and registration events.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const unmatchedRoute = "unmatched"

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dqaas_registration_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dqaas_registration_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)

	httpActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dqaas_registration_http_active_requests",
			Help: "Number of in-flight HTTP requests",
		},
	)

	// Store metrics
	storeOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dqaas_registration_store_operation_duration_seconds",
			Help:    "DynamoDB operation duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"operation"},
	)

	storeOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dqaas_registration_store_operation_errors_total",
			Help: "Total number of failed DynamoDB operations",
		},
		[]string{"operation"},
	)

	// Event metrics
	registrationEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dqaas_registration_events_total",
			Help: "Registration events by type and publish result",
		},
		[]string{"type", "result"},
	)
)

// Middleware records request count, latency and in-flight requests. Routes are
// labelled with their chi pattern so path parameters do not explode cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpActiveRequests.Inc()
		defer httpActiveRequests.Dec()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := routePattern(r)

		httpRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the default Prometheus registry
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordStoreOperation records a DynamoDB call
func RecordStoreOperation(operation string, duration time.Duration, err error) {
	storeOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		storeOperationErrors.WithLabelValues(operation).Inc()
	}
}

// RecordEvent records a registration event publish attempt
func RecordEvent(eventType string, err error) {
	result := "published"
	if err != nil {
		result = "failed"
	}
	registrationEventsTotal.WithLabelValues(eventType, result).Inc()
}

func routePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return unmatchedRoute
	}
	if pattern := rctx.RoutePattern(); pattern != "" {
		return pattern
	}
	return unmatchedRoute
}
