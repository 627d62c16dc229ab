// Package economy exposes the balance operations invoked by bot commands.
package economy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Proton-105/shulk-bot/internal/claim"
	"github.com/Proton-105/shulk-bot/internal/ledger"
)

// ErrNegativeAmount is returned when an admin adjustment amount is below zero.
var ErrNegativeAmount = errors.New("amount must not be negative")

// Ledger is the subset of the ledger store used by Service.
type Ledger interface {
	Read(ns ledger.Namespace, userID int64) ledger.Account
	ApplyDelta(ctx context.Context, ns ledger.Namespace, userID int64, delta int64, claimAt *time.Time) (ledger.Account, error)
}

// Claimer grants daily payouts.
type Claimer interface {
	Attempt(ctx context.Context, userID int64, roles []int64, now time.Time) (claim.Result, error)
}

// Service provides the economy operations. Callers are responsible for
// authorizing admin adjustments.
type Service struct {
	ledger Ledger
	gate   Claimer
	log    *slog.Logger
	now    func() time.Time
}

// NewService constructs a new Service instance.
func NewService(l Ledger, gate Claimer, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		ledger: l,
		gate:   gate,
		log:    log,
		now:    time.Now,
	}
}

// ClaimDaily runs the daily claim for userID holding roles.
func (s *Service) ClaimDaily(ctx context.Context, userID int64, roles []int64) (claim.Result, error) {
	return s.gate.Attempt(ctx, userID, roles, s.now().UTC())
}

// PrimaryBalance returns the user's economy balance.
func (s *Service) PrimaryBalance(userID int64) int64 {
	return s.ledger.Read(ledger.NamespaceEconomy, userID).Balance
}

// SecondaryBalance returns the user's ShulkCredit balance.
func (s *Service) SecondaryBalance(userID int64) int64 {
	return s.ledger.Read(ledger.NamespaceShulk, userID).Balance
}

// Credit adds amount to the user's balance in ns.
func (s *Service) Credit(ctx context.Context, ns ledger.Namespace, userID, amount int64) (ledger.Account, error) {
	return s.adjust(ctx, "credit", ns, userID, amount, amount)
}

// Debit subtracts amount from the user's balance in ns. ShulkCredit
// balances stop at zero; economy balances may go negative.
func (s *Service) Debit(ctx context.Context, ns ledger.Namespace, userID, amount int64) (ledger.Account, error) {
	return s.adjust(ctx, "debit", ns, userID, amount, -amount)
}

func (s *Service) adjust(ctx context.Context, op string, ns ledger.Namespace, userID, amount, delta int64) (ledger.Account, error) {
	if amount < 0 {
		return ledger.Account{}, fmt.Errorf("%s %d: %w", op, amount, ErrNegativeAmount)
	}

	account, err := s.ledger.ApplyDelta(ctx, ns, userID, delta, nil)
	if err != nil {
		return ledger.Account{}, fmt.Errorf("%s %s: %w", op, ns, err)
	}

	s.log.InfoContext(ctx, "balance adjusted",
		slog.String("op", op),
		slog.String("namespace", string(ns)),
		slog.Int64("user_id", userID),
		slog.Int64("amount", amount),
		slog.Int64("balance", account.Balance),
	)

	return account, nil
}
