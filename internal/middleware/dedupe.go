package middleware

import (
	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/shulk-bot/internal/bot/handlers"
	"github.com/Proton-105/shulk-bot/internal/idempotency"
)

// Dedupe drops updates whose key the guard has already seen.
func Dedupe(guard *idempotency.Guard) handlers.Middleware {
	if guard == nil {
		return func(next handlers.Handler) handlers.Handler {
			return next
		}
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			if !guard.First(handlers.RequestContext(c), idempotency.UpdateKey(c)) {
				if c.Callback() != nil {
					return c.Respond()
				}
				return nil
			}

			return next(c)
		}
	}
}
