package handlers

import (
	"errors"
	"fmt"
	"html"
	"log/slog"
	"strconv"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/shulk-bot/internal/economy"
	apperrors "github.com/Proton-105/shulk-bot/internal/errors"
	"github.com/Proton-105/shulk-bot/internal/i18n"
	"github.com/Proton-105/shulk-bot/internal/ledger"
)

// Adjustment describes one admin balance command.
type Adjustment struct {
	Command   string
	Namespace ledger.Namespace
	Credit    bool
}

// MessageKey is the i18n key of the confirmation reply.
func (a Adjustment) MessageKey() string {
	return "admin." + strings.TrimPrefix(a.Command, "/")
}

type adjustTarget struct {
	id      int64
	mention string
}

// NewAdjustHandler handles /eadd, /eremove, /sadd and /sremove. The target is
// the author of the replied-to message or an explicit numeric id.
func NewAdjustHandler(adj Adjustment, d Deps) Handler {
	log := d.logger()

	return func(c telebot.Context) error {
		sender := c.Sender()
		if sender == nil {
			return nil
		}

		ctx := RequestContext(c)
		t := Translator(c, d.I18n)

		chatID := int64(0)
		if chat := c.Chat(); chat != nil && chat.Type != telebot.ChatPrivate {
			chatID = chat.ID
		}

		ok, err := d.Access.IsAdmin(ctx, chatID, sender.ID)
		if err != nil {
			return apperrors.NewPlatformError("getChatMember", err)
		}
		if !ok {
			return apperrors.NewAuthorizationError(fmt.Sprintf("user %d is not allowed to run %s", sender.ID, adj.Command))
		}

		target, rawAmount, ok := parseAdjustArgs(c)
		if !ok {
			return Reply(c, i18n.Tf(t, "admin.usage", adj.Command, adj.Command))
		}

		amount, err := strconv.ParseInt(rawAmount, 10, 64)
		if err != nil || amount < 0 {
			return apperrors.NewValidationError(fmt.Sprintf("invalid amount %q", rawAmount))
		}

		apply := d.Economy.Debit
		if adj.Credit {
			apply = d.Economy.Credit
		}

		account, err := apply(ctx, adj.Namespace, target.id, amount)
		if err != nil {
			if errors.Is(err, economy.ErrNegativeAmount) {
				return apperrors.NewValidationError(err.Error())
			}
			return apperrors.NewPersistenceError(fmt.Errorf("%s for %d: %w", adj.Command, target.id, err))
		}

		log.InfoContext(ctx, "balance adjusted",
			slog.String("command", adj.Command),
			slog.Int64("admin_id", sender.ID),
			slog.Int64("target_id", target.id),
			slog.Int64("amount", amount),
			slog.Int64("balance", account.Balance),
		)

		return Reply(c, i18n.Tf(t, adj.MessageKey(), target.mention, amount))
	}
}

func parseAdjustArgs(c telebot.Context) (adjustTarget, string, bool) {
	args := c.Args()

	if msg := c.Message(); msg != nil && msg.ReplyTo != nil && msg.ReplyTo.Sender != nil && len(args) == 1 {
		user := msg.ReplyTo.Sender
		return adjustTarget{id: user.ID, mention: mentionUser(user)}, args[0], true
	}

	if len(args) != 2 {
		return adjustTarget{}, "", false
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return adjustTarget{}, "", false
	}

	return adjustTarget{id: id, mention: mentionID(id, strconv.FormatInt(id, 10))}, args[1], true
}

func mentionUser(u *telebot.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" && u.Username != "" {
		name = "@" + u.Username
	}
	if name == "" {
		name = strconv.FormatInt(u.ID, 10)
	}
	return mentionID(u.ID, name)
}

func mentionID(id int64, label string) string {
	return fmt.Sprintf(`<a href="tg://user?id=%d">%s</a>`, id, html.EscapeString(label))
}
