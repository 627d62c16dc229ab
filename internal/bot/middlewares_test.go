package bot

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/shulk-bot/internal/bot/handlers"
	"github.com/Proton-105/shulk-bot/internal/bot/keyboard"
	apperrors "github.com/Proton-105/shulk-bot/internal/errors"
	"github.com/Proton-105/shulk-bot/internal/i18n"
	"github.com/Proton-105/shulk-bot/internal/idempotency"
	"github.com/Proton-105/shulk-bot/internal/middleware"
	"github.com/Proton-105/shulk-bot/internal/ratelimit"
	"github.com/Proton-105/shulk-bot/pkg/config"
	"github.com/Proton-105/shulk-bot/pkg/logger"
)

func loadCatalog(t *testing.T) *i18n.Manager {
	t.Helper()

	catalog, err := i18n.Load(i18n.DefaultLang)
	require.NoError(t, err)
	return catalog
}

func newChain(t *testing.T, guard *idempotency.Guard, limiter *middleware.RateLimitMiddleware) *Router {
	t.Helper()

	catalog := loadCatalog(t)
	errHandler := apperrors.NewHandler(testLogger(), false)

	r := NewRouter(testLogger())
	r.Use(RecoveryMiddleware(testLogger(), errHandler, catalog))
	r.Use(LoggingMiddleware(testLogger()))
	r.Use(middleware.Dedupe(guard))
	r.Use(ErrorHandlingMiddleware(errHandler, catalog))
	if limiter != nil {
		r.Use(limiter.Handle)
	}
	r.Use(middleware.Metrics)
	return r
}

func TestMiddleware_ErrorsBecomeReplies(t *testing.T) {
	r := newChain(t, nil, nil)
	r.RegisterCommand("/eadd", func(telebot.Context) error {
		return apperrors.NewAuthorizationError("not admin")
	})
	r.RegisterCommand("/boom", func(telebot.Context) error {
		panic("nil map")
	})
	r.RegisterCommand("/fail", func(telebot.Context) error {
		return errors.New("disk on fire")
	})

	c := newTextUpdate(1, 5, "/eadd 1 2")
	require.NoError(t, r.Route(c))
	assert.Equal(t, []string{"🚫 You are not allowed to do this."}, c.sent)

	c = newTextUpdate(2, 5, "/boom")
	require.NoError(t, r.Route(c))
	assert.Equal(t, []string{"⚠️ Something went wrong. Try again later."}, c.sent)

	c = newTextUpdate(3, 5, "/fail")
	require.NoError(t, r.Route(c))
	assert.Equal(t, []string{"⚠️ Something went wrong. Try again later."}, c.sent)
}

func TestMiddleware_CorrelationID(t *testing.T) {
	r := newChain(t, nil, nil)

	var correlationID string
	r.RegisterCommand("/ebal", func(c telebot.Context) error {
		correlationID = logger.CorrelationIDFromContext(handlers.RequestContext(c))
		return nil
	})

	require.NoError(t, r.Route(newTextUpdate(1, 5, "/ebal")))
	assert.NotEmpty(t, correlationID)
}

func TestMiddleware_DedupeRedeliveredUpdate(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	guard := idempotency.NewGuard(idempotency.NewRedisStore(client, testLogger()), time.Hour, testLogger())
	r := newChain(t, guard, nil)

	calls := 0
	r.RegisterCommand("/eadd", func(telebot.Context) error {
		calls++
		return nil
	})

	require.NoError(t, r.Route(newTextUpdate(10, 5, "/eadd 1 2")))
	require.NoError(t, r.Route(newTextUpdate(10, 5, "/eadd 1 2")))
	require.NoError(t, r.Route(newTextUpdate(11, 5, "/eadd 1 2")))

	assert.Equal(t, 2, calls)
}

func TestMiddleware_RateLimit(t *testing.T) {
	rules := ratelimit.NewRules(config.RateLimitConfig{
		Enabled:   true,
		PerUser:   config.RateLimitRule{Limit: 100, Window: time.Minute},
		Commands:  map[string]config.RateLimitRule{"daily": {Limit: 1, Window: time.Minute}},
		Whitelist: []int64{99},
	})
	limiter := middleware.NewRateLimitMiddleware(ratelimit.NewMemoryLimiter(testLogger()), rules, testLogger())
	r := newChain(t, nil, limiter)

	calls := 0
	r.RegisterCommand("/daily", func(telebot.Context) error {
		calls++
		return nil
	})

	require.NoError(t, r.Route(newTextUpdate(1, 5, "/daily")))
	c := newTextUpdate(2, 5, "/daily")
	require.NoError(t, r.Route(c))
	require.Len(t, c.sent, 1)
	assert.Contains(t, c.sent[0], "Too many requests")

	require.NoError(t, r.Route(newTextUpdate(3, 99, "/daily")))
	require.NoError(t, r.Route(newTextUpdate(4, 99, "/daily")))

	assert.Equal(t, 3, calls)
}

func TestMiddleware_RateLimitCoversMenuButtons(t *testing.T) {
	rules := ratelimit.NewRules(config.RateLimitConfig{
		Enabled:  true,
		Commands: map[string]config.RateLimitRule{"daily": {Limit: 1, Window: time.Minute}},
	})
	limiter := middleware.NewRateLimitMiddleware(ratelimit.NewMemoryLimiter(testLogger()), rules, testLogger())
	r := newChain(t, nil, limiter)

	calls := 0
	r.RegisterCommand("/daily", func(telebot.Context) error {
		calls++
		return nil
	})
	r.RegisterCallback(keyboard.CallbackDaily, "/daily")

	require.NoError(t, r.Route(newTextUpdate(1, 5, "/daily")))

	c := newCallbackUpdate(2, 5, keyboard.CallbackDaily)
	require.NoError(t, r.Route(c))
	require.Len(t, c.sent, 1)
	assert.Contains(t, c.sent[0], "Too many requests")

	assert.Equal(t, 1, calls)
}

type fakeMembers struct {
	role telebot.MemberStatus
	err  error
}

func (f fakeMembers) ChatMemberOf(_, _ telebot.Recipient) (*telebot.ChatMember, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &telebot.ChatMember{Role: f.role}, nil
}

func TestTelegramAdmins(t *testing.T) {
	testCases := []struct {
		name     string
		members  fakeMembers
		expected bool
		wantErr  bool
	}{
		{name: "creator", members: fakeMembers{role: telebot.Creator}, expected: true},
		{name: "administrator", members: fakeMembers{role: telebot.Administrator}, expected: true},
		{name: "member", members: fakeMembers{role: telebot.Member}},
		{name: "lookup error", members: fakeMembers{err: errors.New("chat not found")}, wantErr: true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			ok, err := telegramAdmins{api: tc.members}.IsPlatformAdmin(context.Background(), -100, 1)
			assert.Equal(t, tc.expected, ok)
			assert.Equal(t, tc.wantErr, err != nil)
		})
	}
}
