package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "status"},
	)

	// OrdersCreated counts orders accepted by the checkout flow
	OrdersCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_orders_created_total",
			Help: "Total number of orders created",
		},
	)

	// StatusUpdates counts order status changes by target status
	StatusUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_order_status_updates_total",
			Help: "Total number of order status updates",
		},
		[]string{"status"},
	)

	// WatcherCycles counts notification poll cycles by outcome
	WatcherCycles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_watcher_cycles_total",
			Help: "Total number of notification watcher poll cycles",
		},
		[]string{"result"},
	)

	// NewOrdersDetected counts orders the watcher announced to operators
	NewOrdersDetected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_watcher_new_orders_total",
			Help: "Total number of new orders detected by the watcher",
		},
	)
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// Middleware collects request count and duration metrics
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		status := strconv.Itoa(rec.status)
		httpRequestsTotal.WithLabelValues(r.Method, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, status).Observe(time.Since(start).Seconds())
	})
}
