package claim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Proton-105/shulk-bot/internal/ledger"
	"github.com/Proton-105/shulk-bot/pkg/metrics"
)

// DefaultCooldown is the minimum interval between two successful claims.
const DefaultCooldown = 24 * time.Hour

// Outcome classifies a claim attempt.
type Outcome int

const (
	// Ineligible means the caller holds no role in the payout table.
	Ineligible Outcome = iota
	// OnCooldown means the previous claim is younger than the cooldown.
	OnCooldown
	// Granted means the payout was credited.
	Granted
)

// String implements fmt.Stringer.
func (o Outcome) String() string {
	switch o {
	case Ineligible:
		return "ineligible"
	case OnCooldown:
		return "cooldown"
	case Granted:
		return "granted"
	default:
		return "unknown"
	}
}

// Result is the outcome of Gate.Attempt.
type Result struct {
	Outcome Outcome
	// Amount is the granted payout.
	Amount int64
	// Balance is the primary balance after the grant.
	Balance int64
	// Remaining is the wait until the next claim, truncated to the second.
	Remaining time.Duration
}

// HoursMinutes splits Remaining into whole hours and whole minutes.
func (r Result) HoursMinutes() (int, int) {
	seconds := int(r.Remaining / time.Second)
	return seconds / 3600, seconds % 3600 / 60
}

// Ledger is the subset of the ledger used by the gate.
type Ledger interface {
	Update(ctx context.Context, ns ledger.Namespace, userID int64, fn ledger.UpdateFunc) (ledger.Account, error)
}

// Gate grants daily payouts through the ledger.
type Gate struct {
	ledger   Ledger
	payouts  PayoutTable
	cooldown time.Duration
	log      *slog.Logger
}

// NewGate creates a Gate. A non-positive cooldown selects DefaultCooldown.
func NewGate(l Ledger, payouts PayoutTable, cooldown time.Duration, log *slog.Logger) *Gate {
	if log == nil {
		log = slog.Default()
	}
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}

	table := make(PayoutTable, len(payouts))
	for role, amount := range payouts {
		table[role] = amount
	}

	return &Gate{
		ledger:   l,
		payouts:  table,
		cooldown: cooldown,
		log:      log,
	}
}

// errOnCooldown aborts the ledger update when the cooldown is still running.
type errOnCooldown struct {
	remaining time.Duration
}

func (e errOnCooldown) Error() string {
	return fmt.Sprintf("claim on cooldown for %s", e.remaining)
}

// Attempt checks eligibility and cooldown for userID at now and, when both
// pass, credits the payout and records now as the last claim. The cooldown
// is evaluated inside the ledger's critical section so two concurrent claims
// cannot both be granted.
//
// A stored last_claim that does not parse counts as never claimed.
func (g *Gate) Attempt(ctx context.Context, userID int64, roles []int64, now time.Time) (Result, error) {
	amount, ok := g.payouts.EligiblePayout(roles)
	if !ok {
		metrics.RecordClaim(Ineligible.String(), 0)
		return Result{Outcome: Ineligible}, nil
	}

	now = now.UTC()
	account, err := g.ledger.Update(ctx, ledger.NamespaceEconomy, userID, func(current ledger.Account) (ledger.Change, error) {
		if remaining := g.remaining(ctx, userID, current, now); remaining > 0 {
			return ledger.Change{}, errOnCooldown{remaining: remaining}
		}
		return ledger.Change{Delta: amount, ClaimAt: &now}, nil
	})

	var cooldown errOnCooldown
	switch {
	case errors.As(err, &cooldown):
		metrics.RecordClaim(OnCooldown.String(), 0)
		return Result{Outcome: OnCooldown, Remaining: cooldown.remaining.Truncate(time.Second)}, nil
	case err != nil:
		g.log.ErrorContext(ctx, "daily claim failed", slog.Int64("user_id", userID), slog.Any("error", err))
		return Result{}, fmt.Errorf("grant daily claim: %w", err)
	}

	metrics.RecordClaim(Granted.String(), amount)
	g.log.InfoContext(ctx, "daily claim granted",
		slog.Int64("user_id", userID),
		slog.Int64("amount", amount),
		slog.Int64("balance", account.Balance),
	)

	return Result{Outcome: Granted, Amount: amount, Balance: account.Balance}, nil
}

func (g *Gate) remaining(ctx context.Context, userID int64, account ledger.Account, now time.Time) time.Duration {
	last, ok := account.ClaimedAt()
	if !ok {
		if account.LastClaim != "" {
			g.log.WarnContext(ctx, "unparseable last_claim treated as never claimed",
				slog.Int64("user_id", userID),
				slog.String("last_claim", account.LastClaim),
			)
		}
		return 0
	}

	elapsed := now.Sub(last)
	if elapsed >= g.cooldown {
		return 0
	}

	return g.cooldown - elapsed
}
