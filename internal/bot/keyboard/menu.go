package keyboard

import (
	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/shulk-bot/internal/i18n"
)

// Main menu callbacks.
const (
	CallbackDaily = "menu_daily"
	CallbackEBal  = "menu_ebal"
	CallbackSBal  = "menu_sbal"
)

// MainMenu builds the localized inline menu shown by /start and /help.
func MainMenu(t i18n.Translator) *telebot.ReplyMarkup {
	lookup := func(key string) string {
		if t == nil {
			return key
		}
		return t.T(key)
	}

	markup, err := NewInlineKeyboard().
		AddRow(InlineButton{Text: lookup("menu.daily"), Unique: CallbackDaily}).
		AddRow(
			InlineButton{Text: lookup("menu.ebal"), Unique: CallbackEBal},
			InlineButton{Text: lookup("menu.sbal"), Unique: CallbackSBal},
		).
		Build()
	if err != nil {
		// Constant callback ids always fit the limit.
		panic(err)
	}

	return markup
}
