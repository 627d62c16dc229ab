package handlers

import (
	"context"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/shulk-bot/internal/i18n"
)

const (
	contextKey = "request_ctx"
	commandKey = "command"
)

// WithRequestContext stores ctx on the update so handlers share its values.
func WithRequestContext(c telebot.Context, ctx context.Context) {
	c.Set(contextKey, ctx)
}

// RequestContext returns the context stored on the update, or Background.
func RequestContext(c telebot.Context) context.Context {
	if c != nil {
		if ctx, ok := c.Get(contextKey).(context.Context); ok && ctx != nil {
			return ctx
		}
	}
	return context.Background()
}

// SetCommandName records the routed command or callback name.
func SetCommandName(c telebot.Context, name string) {
	c.Set(commandKey, name)
}

// CommandName returns the routed command or callback name, "unknown" if unset.
func CommandName(c telebot.Context) string {
	if c != nil {
		if name, ok := c.Get(commandKey).(string); ok && name != "" {
			return name
		}
	}
	return "unknown"
}

// Translator picks the catalog matching the sender's Telegram language.
func Translator(c telebot.Context, l Localizer) i18n.Translator {
	lang := ""
	if c != nil && c.Sender() != nil {
		lang = c.Sender().LanguageCode
	}
	if l == nil {
		return nil
	}
	return l.Translator(lang)
}

// Reply answers a pending callback and sends text as HTML.
func Reply(c telebot.Context, text string, opts ...interface{}) error {
	if c.Callback() != nil {
		_ = c.Respond()
	}
	opts = append(opts, telebot.ModeHTML)
	return c.Send(text, opts...)
}
