package bot

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/shulk-bot/internal/bot/handlers"
	errors "github.com/Proton-105/shulk-bot/internal/errors"
	"github.com/Proton-105/shulk-bot/pkg/logger"
)

// RecoveryMiddleware catches panics, reports them via the centralized handler, and notifies the user.
func RecoveryMiddleware(log *slog.Logger, errHandler *errors.Handler, l handlers.Localizer) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					ctx := handlers.RequestContext(c)
					log.ErrorContext(ctx, "panic recovered in handler", slog.Any("panic", r), slog.String("stack", string(debug.Stack())))

					userMsg := "⚠️"
					if errHandler != nil {
						userMsg = errHandler.Handle(ctx, fmt.Errorf("panic recovered: %v", r), handlers.Translator(c, l))
					}

					if sendErr := handlers.Reply(c, userMsg); sendErr != nil {
						log.ErrorContext(ctx, "failed to notify user about panic", slog.Any("error", sendErr))
					}

					err = nil
				}
			}()

			return next(c)
		}
	}
}

// ErrorHandlingMiddleware turns handler errors into localized replies.
func ErrorHandlingMiddleware(errHandler *errors.Handler, l handlers.Localizer) handlers.Middleware {
	if errHandler == nil {
		errHandler = errors.NewHandler(slog.Default(), false)
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			ctx := handlers.RequestContext(c)
			userMsg := errHandler.Handle(ctx, err, handlers.Translator(c, l))

			return handlers.Reply(c, userMsg)
		}
	}
}

// LoggingMiddleware attaches a correlation id to the update and logs its outcome.
func LoggingMiddleware(log *slog.Logger) handlers.Middleware {
	if log == nil {
		log = slog.Default()
	}

	return func(next handlers.Handler) handlers.Handler {
		if next == nil {
			return nil
		}

		return func(c telebot.Context) error {
			start := time.Now()
			ctx := logger.WithCorrelationID(context.Background())
			handlers.WithRequestContext(c, ctx)

			userID := int64(0)
			if c.Sender() != nil {
				userID = c.Sender().ID
			}
			chatID := int64(0)
			if c.Chat() != nil {
				chatID = c.Chat().ID
			}

			attrs := []any{
				slog.String("correlation_id", logger.CorrelationIDFromContext(ctx)),
				slog.Int64("user_id", userID),
				slog.Int64("chat_id", chatID),
				slog.String("action", handlers.CommandName(c)),
			}

			log.DebugContext(ctx, "handling update", attrs...)
			err := next(c)

			attrs = append(attrs, slog.Duration("duration", time.Since(start)))
			if err != nil {
				log.WarnContext(ctx, "update failed", append(attrs, slog.Any("error", err))...)
				return err
			}
			log.InfoContext(ctx, "handled update", attrs...)

			return nil
		}
	}
}
