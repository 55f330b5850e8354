package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pkgb_requests_total",
			Help: "Total number of requests",
		},
		[]string{"route", "code", "method"},
	)

	DBTxDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pkgb_db_tx_seconds",
			Help:    "Duration of DB transactions",
			Buckets: prometheus.DefBuckets,
		},
	)

	BookingsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pkgb_bookings_created_total",
			Help: "Total bookings created",
		},
	)

	BookingTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pkgb_booking_transitions_total",
			Help: "Booking status changes by target status",
		},
		[]string{"status"},
	)

	PaymentsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pkgb_payments_submitted_total",
			Help: "Payment proofs submitted by payment type",
		},
		[]string{"type"},
	)

	PaymentDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pkgb_payment_decisions_total",
			Help: "Payment verification decisions by outcome",
		},
		[]string{"status"},
	)

	OutboxLag = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pkgb_outbox_lag_seconds",
			Help: "Lag of outbox publishing",
		},
	)

	RabbitPublishRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pkgb_rabbit_publish_retries_total",
			Help: "Total rabbit publish retries",
		},
	)

	RateLimitExceeded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pkgb_rate_limit_exceeded_total",
			Help: "Total rate limit exceeded",
		},
		[]string{"policy"},
	)

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pkgb_events_consumed_total",
			Help: "Broker events handled by the notifier by outcome",
		},
		[]string{"outcome"},
	)
)
