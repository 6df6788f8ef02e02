package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Domain collectors. HTTP collectors live in the middleware package; both
// are served from /metrics via the default registry.
var (
	RateLimitDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wish_rate_limit_decisions_total",
			Help: "Persisted rate limiter outcomes by result (allowed, denied, unavailable).",
		},
		[]string{"result"},
	)

	RateLimitConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "wish_rate_limit_cas_conflicts_total",
			Help: "Compare-and-swap retries caused by concurrent updates to one counter.",
		},
	)

	RateLimitPruned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "wish_rate_limit_pruned_total",
			Help: "Stale rate-limit counters deleted by housekeeping.",
		},
	)

	WishesGenerated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wishes_generated_total",
			Help: "Generated wishes by service used (provider tag or template).",
		},
		[]string{"service"},
	)

	ProviderLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "generation_provider_duration_seconds",
			Help:    "Latency of generation provider calls by provider and outcome.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"provider", "outcome"},
	)

	AuditWriteFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_write_failures_total",
			Help: "Audit log entries that could not be written after a successful generation.",
		},
	)

	DispatchOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_records_total",
			Help: "Daily dispatch per-record outcomes (succeeded, failed, skipped, duplicate, unlogged).",
		},
		[]string{"outcome"},
	)

	// DispatchAnomalies counts sends whose success row could not be stored:
	// kind is "duplicate" (another run already logged one) or "unlogged"
	// (the write failed). Each one is a message the log does not account for.
	DispatchAnomalies = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_anomalies_total",
			Help: "Sent celebrations whose success row was rejected as a duplicate or could not be written.",
		},
		[]string{"kind"},
	)

	DispatchRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_runs_total",
			Help: "Daily dispatch runs by result (ok, error).",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		RateLimitDecisions, RateLimitConflicts, RateLimitPruned,
		WishesGenerated, ProviderLatency, AuditWriteFailures,
		DispatchOutcomes, DispatchAnomalies, DispatchRuns,
	)
}

// ObserveProvider records one provider call; it matches ai.Chain.Observe.
func ObserveProvider(provider string, err error, elapsed time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	ProviderLatency.WithLabelValues(provider, outcome).Observe(elapsed.Seconds())
}
