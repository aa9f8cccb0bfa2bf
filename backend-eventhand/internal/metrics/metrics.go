package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "eventhand"

var (
	matchesServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_served_total",
			Help:      "Total matchEvent calls by outcome",
		},
		[]string{"outcome"},
	)

	matchedPackages = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "matched_packages",
			Help:      "Number of packages returned per requested category",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
		},
		[]string{"category"},
	)

	matchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "match_duration_seconds",
			Help:      "Duration of matchEvent",
			Buckets:   prometheus.DefBuckets,
		},
	)

	bookingTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_transitions_total",
			Help:      "Booking status changes by target status",
		},
		[]string{"status"},
	)

	declinedByConfirm = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_declined_by_confirm_total",
			Help:      "Competing bookings declined because another booking was confirmed",
		},
	)

	followUpFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_follow_up_failures_total",
			Help:      "Secondary booking steps that failed in-line and were left to the outbox worker",
		},
		[]string{"step"},
	)

	outboxDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbox_dispatched_total",
			Help:      "Outbox messages handled by event type and result",
		},
		[]string{"event_type", "result"},
	)

	outboxBacklog = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "outbox_messages",
			Help:      "Outbox rows per status",
		},
		[]string{"status"},
	)

	sweepResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_bookings_total",
			Help:      "Bookings changed by the sweep by action",
		},
		[]string{"action"},
	)

	sweepRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_runs_total",
			Help:      "Sweep runs by result",
		},
		[]string{"result"},
	)

	ratingCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rating_cache_lookups_total",
			Help:      "Vendor rating lookups by cache result",
		},
		[]string{"result"},
	)

	breakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		},
		[]string{"name"},
	)
)

// RecordMatch records one matchEvent call
func RecordMatch(outcome string, duration time.Duration) {
	matchesServed.WithLabelValues(outcome).Inc()
	matchDuration.Observe(duration.Seconds())
}

// RecordMatchedPackages records the result size of one category
func RecordMatchedPackages(category string, n int) {
	matchedPackages.WithLabelValues(category).Observe(float64(n))
}

// RecordTransition records a booking reaching status
func RecordTransition(status string) {
	bookingTransitions.WithLabelValues(status).Inc()
}

// RecordDeclinedByConfirm records bookings declined by a confirmation
func RecordDeclinedByConfirm(n int64) {
	if n > 0 {
		declinedByConfirm.Add(float64(n))
	}
}

// RecordFollowUpFailure records a secondary step left to the outbox worker
func RecordFollowUpFailure(step string) {
	followUpFailures.WithLabelValues(step).Inc()
}

// RecordOutboxDispatch records one handled outbox message
func RecordOutboxDispatch(eventType, result string) {
	outboxDispatched.WithLabelValues(eventType, result).Inc()
}

// SetOutboxBacklog sets the number of outbox rows in status
func SetOutboxBacklog(status string, n int64) {
	outboxBacklog.WithLabelValues(status).Set(float64(n))
}

// RecordSweep records bookings changed by a sweep action
func RecordSweep(action string, n int64) {
	if n > 0 {
		sweepResults.WithLabelValues(action).Add(float64(n))
	}
}

// RecordSweepRun records a sweep run outcome
func RecordSweepRun(result string) {
	sweepRuns.WithLabelValues(result).Inc()
}

// RecordRatingCache records rating cache hits and misses
func RecordRatingCache(hits, misses int) {
	if hits > 0 {
		ratingCacheLookups.WithLabelValues("hit").Add(float64(hits))
	}
	if misses > 0 {
		ratingCacheLookups.WithLabelValues("miss").Add(float64(misses))
	}
}

// SetBreakerState publishes a circuit breaker state
func SetBreakerState(name string, state int) {
	breakerState.WithLabelValues(name).Set(float64(state))
}
