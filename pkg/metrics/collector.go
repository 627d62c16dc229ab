// Package metrics exposes Prometheus collectors shared across the bot.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	botCommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_commands_total",
			Help: "Total number of bot commands received labeled by command and status",
		},
		[]string{"command", "status"},
	)
	commandDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "command_duration_seconds",
			Help:    "Duration of bot commands in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)
	ledgerMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_mutations_total",
			Help: "Total number of ledger mutations by namespace and status",
		},
		[]string{"namespace", "status"},
	)
	ledgerPersistSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ledger_persist_duration_seconds",
			Help:    "Duration of whole-file ledger snapshots in seconds",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)
	ledgerAccounts = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ledger_accounts",
			Help: "Number of stored accounts per namespace",
		},
		[]string{"namespace"},
	)
	ledgerExternalEditsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_external_edits_total",
			Help: "Writes to the ledger file not produced by the bot",
		},
	)
	claimsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "daily_claims_total",
			Help: "Daily claim attempts by outcome",
		},
		[]string{"outcome"},
	)
	claimPayoutTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "daily_claim_payout_total",
			Help: "Sum of granted daily payouts",
		},
	)
	rateLimitChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ratelimit_checks_total",
			Help: "Rate limit verdicts by backend and result",
		},
		[]string{"backend", "result"},
	)
	rateLimitFailoversTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ratelimit_failovers_total",
			Help: "Switches from the Redis limiter to the in-process one",
		},
	)
	errorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors split by type and severity",
		},
		[]string{"type", "severity"},
	)
)

// RecordCommand increments command counters and records duration.
func RecordCommand(command, status string, duration time.Duration) {
	if command == "" {
		command = "unknown"
	}
	if status == "" {
		status = "unknown"
	}

	botCommandsTotal.WithLabelValues(command, status).Inc()
	commandDurationSeconds.WithLabelValues(command).Observe(duration.Seconds())
}

// RecordLedgerMutation counts a ledger mutation and its snapshot duration.
func RecordLedgerMutation(namespace, status string, persist time.Duration) {
	if namespace == "" {
		namespace = "unknown"
	}

	ledgerMutationsTotal.WithLabelValues(namespace, status).Inc()
	if persist > 0 {
		ledgerPersistSeconds.Observe(persist.Seconds())
	}
}

// SetLedgerAccounts updates the account gauge for a namespace.
func SetLedgerAccounts(namespace string, count int) {
	ledgerAccounts.WithLabelValues(namespace).Set(float64(count))
}

// RecordExternalEdit counts an out-of-band write to the ledger file.
func RecordExternalEdit() {
	ledgerExternalEditsTotal.Inc()
}

// RecordClaim counts a claim attempt; amount is added to the payout total for grants.
func RecordClaim(outcome string, amount int64) {
	if outcome == "" {
		outcome = "unknown"
	}

	claimsTotal.WithLabelValues(outcome).Inc()
	if amount > 0 {
		claimPayoutTotal.Add(float64(amount))
	}
}

// RecordError increments error counters with metadata.
func RecordError(errType, severity string) {
	if errType == "" {
		errType = "unknown"
	}
	if severity == "" {
		severity = "unknown"
	}

	errorsTotal.WithLabelValues(errType, severity).Inc()
}

// RecordRateLimitCheck counts a rate limit verdict for backend.
func RecordRateLimitCheck(backend string, allowed bool) {
	result := "rejected"
	if allowed {
		result = "allowed"
	}

	rateLimitChecksTotal.WithLabelValues(backend, result).Inc()
}

// RecordRateLimitFailover counts a switch to the local rate limiter.
func RecordRateLimitFailover() {
	rateLimitFailoversTotal.Inc()
}
