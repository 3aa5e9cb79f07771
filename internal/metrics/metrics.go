package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "cafe_booking",
			Name:      "booking_created_total",
			Help:      "Count of bookings created.",
		},
	)

	bookingUpdated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cafe_booking",
			Name:      "booking_updated_total",
			Help:      "Count of booking updates by resulting status.",
		},
		[]string{"status"},
	)

	bookingConflict = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cafe_booking",
			Name:      "booking_conflict_total",
			Help:      "Count of rejected bookings by conflict stage.",
		},
		[]string{"stage"}, // precheck or constraint
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingCreated, bookingUpdated, bookingConflict)
	})
}

func IncBookingCreated() {
	bookingCreated.Inc()
}

func IncBookingUpdated(status string) {
	bookingUpdated.WithLabelValues(status).Inc()
}

// IncBookingConflict records a rejected reservation.  stage is
// "precheck" when the application-level availability scan caught it
// and "constraint" when the database unique key did.
func IncBookingConflict(stage string) {
	bookingConflict.WithLabelValues(stage).Inc()
}
