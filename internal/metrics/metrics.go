package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "booking_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	ReservationsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_reservations_created_total",
			Help: "Total number of reservations created",
		},
		[]string{"kind"},
	)

	ReservationConflictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_reservation_conflicts_total",
			Help: "Total number of writes rejected because of an overlapping reservation",
		},
		[]string{"kind"},
	)

	ReservationTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_reservation_transitions_total",
			Help: "Total number of applied status transitions",
		},
		[]string{"kind", "action", "status"},
	)

	ReservationsExpiredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_reservations_expired_total",
			Help: "Total number of pending reservations expired by the sweeper",
		},
		[]string{"kind"},
	)

	EventsPublishFailedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "booking_events_publish_failed_total",
			Help: "Total number of reservation events that could not be published",
		},
	)
)

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func RecordCreated(kind string) {
	ReservationsCreatedTotal.WithLabelValues(kind).Inc()
}

func RecordConflict(kind string) {
	ReservationConflictsTotal.WithLabelValues(kind).Inc()
}

func RecordTransition(kind, action, status string) {
	ReservationTransitionsTotal.WithLabelValues(kind, action, status).Inc()
}

func RecordExpired(kind string, n int) {
	ReservationsExpiredTotal.WithLabelValues(kind).Add(float64(n))
}

func RecordPublishFailure() {
	EventsPublishFailedTotal.Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
