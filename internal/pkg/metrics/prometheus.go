package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dashlist",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dashlist",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "dashlist",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being served",
		},
	)

	// Collection controller metrics
	collectionFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dashlist",
			Subsystem: "collection",
			Name:      "fetch_total",
			Help:      "Page fetches issued by collection controllers",
		},
		[]string{"resource", "status"},
	)

	collectionFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dashlist",
			Subsystem: "collection",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of collection page fetches in seconds",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"resource"},
	)

	collectionStaleTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dashlist",
			Subsystem: "collection",
			Name:      "stale_responses_total",
			Help:      "Fetch responses discarded because a newer fetch was issued",
		},
		[]string{"resource"},
	)

	// Dashboard metrics
	dashboardsDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "dashlist",
			Subsystem: "dashboard",
			Name:      "deleted_total",
			Help:      "Total number of deleted dashboards",
		},
	)

	dashboardsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "dashlist",
			Subsystem: "dashboard",
			Name:      "total_count",
			Help:      "Number of dashboards matched by the last unfiltered list",
		},
	)

	// Favorite metrics
	favoritesToggled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dashlist",
			Subsystem: "favorite",
			Name:      "toggled_total",
			Help:      "Favorite status changes",
		},
		[]string{"value"},
	)

	favoritesPruned = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "dashlist",
			Subsystem: "favorite",
			Name:      "pruned_total",
			Help:      "Favorite rows removed because their dashboard no longer exists",
		},
	)

	// Database metrics
	dbQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dashlist",
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation", "table"},
	)
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware returns a middleware that records Prometheus metrics
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()

		routePattern := "unknown"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			routePattern = rctx.RoutePattern()
		}

		status := strconv.Itoa(wrapped.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, routePattern, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, routePattern, status).Observe(duration)
	})
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordCollectionFetch records one completed page fetch
func RecordCollectionFetch(resource string, err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}
	collectionFetchTotal.WithLabelValues(resource, status).Inc()
	collectionFetchDuration.WithLabelValues(resource).Observe(duration.Seconds())
}

// RecordStaleResponse records a discarded out-of-order fetch response
func RecordStaleResponse(resource string) {
	collectionStaleTotal.WithLabelValues(resource).Inc()
}

// RecordDashboardsDeleted adds n to the deleted dashboards counter
func RecordDashboardsDeleted(n int) {
	dashboardsDeleted.Add(float64(n))
}

// SetDashboardsCount sets the gauge for dashboards
func SetDashboardsCount(count float64) {
	dashboardsTotal.Set(count)
}

// RecordFavoriteToggle records a favorite status change
func RecordFavoriteToggle(value bool) {
	favoritesToggled.WithLabelValues(strconv.FormatBool(value)).Inc()
}

// RecordFavoritesPruned adds n to the pruned favorites counter
func RecordFavoritesPruned(n int64) {
	favoritesPruned.Add(float64(n))
}

// RecordDBQuery records a database query duration
func RecordDBQuery(operation, table string, duration time.Duration) {
	dbQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}
