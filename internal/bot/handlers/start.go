package handlers

import (
	"html"
	"strings"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/shulk-bot/internal/bot/keyboard"
	"github.com/Proton-105/shulk-bot/internal/i18n"
)

// NewStartHandler greets the user and shows the main menu.
func NewStartHandler(d Deps) Handler {
	return func(c telebot.Context) error {
		sender := c.Sender()
		if sender == nil {
			return nil
		}

		t := Translator(c, d.I18n)
		name := strings.TrimSpace(sender.FirstName)
		if name == "" {
			name = sender.Username
		}

		text := i18n.Tf(t, "start.welcome", html.EscapeString(name)) + "\n\n" + i18n.Tf(t, "help.text")
		return Reply(c, text, keyboard.MainMenu(t))
	}
}

// NewHelpHandler lists the commands.
func NewHelpHandler(d Deps) Handler {
	return func(c telebot.Context) error {
		t := Translator(c, d.I18n)
		return Reply(c, i18n.Tf(t, "help.text"), keyboard.MainMenu(t))
	}
}
