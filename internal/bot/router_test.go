package bot

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/shulk-bot/internal/bot/handlers"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseCommand(t *testing.T) {
	testCases := []struct {
		text     string
		expected string
	}{
		{text: "/daily", expected: "/daily"},
		{text: "/Daily@ShulkBot", expected: "/daily"},
		{text: "/eadd 123 500", expected: "/eadd"},
		{text: "  /sbal  ", expected: "/sbal"},
		{text: "daily", expected: ""},
		{text: "/", expected: ""},
		{text: "/@bot", expected: ""},
		{text: "", expected: ""},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.text, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParseCommand(tc.text))
		})
	}
}

func TestRouter_Route(t *testing.T) {
	var calls []string
	record := func(name string) handlers.Handler {
		return func(c telebot.Context) error {
			calls = append(calls, name+":"+handlers.CommandName(c))
			return nil
		}
	}

	r := NewRouter(testLogger())
	r.RegisterCommand("/daily", record("daily"))
	r.RegisterCommand("/ebal", record("ebal"))
	r.RegisterCallback("menu_ebal", "/ebal")
	r.RegisterCallback("menu_orphan", "/missing")
	r.SetDefault(record("default"))

	require.NoError(t, r.Route(newTextUpdate(1, 7, "/daily@ShulkBot")))
	require.NoError(t, r.Route(newCallbackUpdate(2, 7, "menu_ebal")))
	require.NoError(t, r.Route(newTextUpdate(3, 7, "hello")))
	require.NoError(t, r.Route(newTextUpdate(4, 7, "/unknown")))

	orphan := newCallbackUpdate(5, 7, "menu_orphan")
	require.NoError(t, r.Route(orphan))
	assert.Equal(t, 1, orphan.responded)

	assert.Equal(t, []string{"daily:/daily", "ebal:/ebal", "default:unknown", "default:unknown"}, calls)
}

func TestRouter_UnknownCallbackIsAnswered(t *testing.T) {
	r := NewRouter(testLogger())

	c := newCallbackUpdate(1, 7, "menu_missing")
	require.NoError(t, r.Route(c))
	assert.Equal(t, 1, c.responded)

	c = newCallbackUpdate(2, 7, "")
	require.NoError(t, r.Route(c))
	assert.Equal(t, 1, c.responded)
}

func TestRouter_MiddlewareOrder(t *testing.T) {
	var order []string
	mw := func(name string) handlers.Middleware {
		return func(next handlers.Handler) handlers.Handler {
			return func(c telebot.Context) error {
				order = append(order, name)
				return next(c)
			}
		}
	}

	r := NewRouter(testLogger())
	r.Use(mw("outer"))
	r.Use(mw("inner"))
	r.RegisterCommand("/ebal", func(telebot.Context) error {
		order = append(order, "handler")
		return nil
	})

	require.NoError(t, r.Route(newTextUpdate(1, 7, "/ebal")))
	assert.Equal(t, []string{"outer", "inner", "handler"}, order)
}
