package handlers

import (
	"context"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/shulk-bot/internal/claim"
	"github.com/Proton-105/shulk-bot/internal/i18n"
	"github.com/Proton-105/shulk-bot/internal/ledger"
)

// Handler processes bot commands.
type Handler func(c telebot.Context) error

// Middleware wraps handlers with additional behavior.
type Middleware func(Handler) Handler

// Economy is the balance and claim surface the handlers drive.
type Economy interface {
	ClaimDaily(ctx context.Context, userID int64, roles []int64) (claim.Result, error)
	PrimaryBalance(userID int64) int64
	SecondaryBalance(userID int64) int64
	Credit(ctx context.Context, ns ledger.Namespace, userID, amount int64) (ledger.Account, error)
	Debit(ctx context.Context, ns ledger.Namespace, userID, amount int64) (ledger.Account, error)
}

// RoleResolver returns the roles a user holds.
type RoleResolver interface {
	Roles(ctx context.Context, userID int64) ([]int64, error)
}

// AdminChecker reports whether a user may adjust balances.
type AdminChecker interface {
	IsAdmin(ctx context.Context, chatID, userID int64) (bool, error)
}

// Localizer hands out translators per language code.
type Localizer interface {
	Translator(lang string) i18n.Translator
}

// Deps bundles what the handlers need.
type Deps struct {
	Economy Economy
	Roles   RoleResolver
	Access  AdminChecker
	I18n    Localizer
	Log     *slog.Logger
}

func (d Deps) logger() *slog.Logger {
	if d.Log == nil {
		return slog.Default()
	}
	return d.Log
}
