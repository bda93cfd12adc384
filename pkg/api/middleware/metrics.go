package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics instruments every request with a counter labeled by route
// pattern, method, and exact status code, and a latency histogram labeled
// by route pattern and method, matching the
// teacher's own request-metrics middleware (same label set, same bucket
// boundaries tuned for sub-second API calls).
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "filez",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests served by the Filez API.",
	}, []string{"route", "method", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "filez",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"route", "method"})
)

// RequestMetrics records count and latency for every request once chi has
// matched a route, so metrics are labeled by pattern ("/files/{fileID}")
// rather than by raw path (which would blow up cardinality on IDs).
func RequestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context())
		pattern := r.URL.Path
		if route != nil && route.RoutePattern() != "" {
			pattern = route.RoutePattern()
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		requestsTotal.WithLabelValues(pattern, r.Method, strconv.Itoa(status)).Inc()
		requestDuration.WithLabelValues(pattern, r.Method).Observe(time.Since(start).Seconds())
	})
}
