package handlers

import (
	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/shulk-bot/internal/i18n"
	"github.com/Proton-105/shulk-bot/internal/ledger"
)

// NewBalanceHandler reports the caller's balance in ns.
func NewBalanceHandler(ns ledger.Namespace, d Deps) Handler {
	return func(c telebot.Context) error {
		sender := c.Sender()
		if sender == nil {
			return nil
		}

		t := Translator(c, d.I18n)

		if ns == ledger.NamespaceShulk {
			return Reply(c, i18n.Tf(t, "balance.shulk", d.Economy.SecondaryBalance(sender.ID)))
		}
		return Reply(c, i18n.Tf(t, "balance.economy", d.Economy.PrimaryBalance(sender.ID)))
	}
}
