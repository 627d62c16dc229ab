package bot

import (
	"context"
	"fmt"
	"log/slog"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/shulk-bot/internal/access"
	"github.com/Proton-105/shulk-bot/internal/bot/handlers"
	"github.com/Proton-105/shulk-bot/internal/bot/keyboard"
	errors "github.com/Proton-105/shulk-bot/internal/errors"
	"github.com/Proton-105/shulk-bot/internal/idempotency"
	"github.com/Proton-105/shulk-bot/internal/ledger"
	"github.com/Proton-105/shulk-bot/internal/middleware"
	"github.com/Proton-105/shulk-bot/pkg/config"
)

// Deps are the collaborators the bot routes updates to. Handlers.Access may
// be nil, in which case the bot builds a checker backed by Telegram and
// optionally decorated by WrapAdminLookup.
type Deps struct {
	Handlers        handlers.Deps
	Dedupe          *idempotency.Guard
	RateLimitMw     *middleware.RateLimitMiddleware
	WrapAdminLookup func(access.PlatformAdminLookup) access.PlatformAdminLookup
}

// Bot wraps telebot.Bot with application dependencies required for handling updates.
type Bot struct {
	telebot    *telebot.Bot
	log        *slog.Logger
	cfg        config.Config
	router     *Router
	errHandler *errors.Handler
}

// New builds a telegram bot instance configured according to the application settings.
func New(cfg config.Config, log *slog.Logger, deps Deps) (*Bot, error) {
	if log == nil {
		log = slog.Default()
	}

	settings := telebot.Settings{
		Token: cfg.Bot.Token,
		OnError: func(err error, c telebot.Context) {
			log.Error("telebot error", slog.Any("error", err))
		},
	}

	if cfg.Bot.Mode == "webhook" {
		settings.Poller = &telebot.Webhook{
			Listen:   cfg.Bot.WebhookListen,
			Endpoint: &telebot.WebhookEndpoint{PublicURL: cfg.Bot.WebhookURL},
		}
	} else {
		settings.Poller = &telebot.LongPoller{
			Timeout: cfg.Bot.Timeout,
		}
	}

	tb, err := telebot.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("initialize telebot: %w", err)
	}

	if deps.Handlers.Access == nil {
		var lookup access.PlatformAdminLookup = telegramAdmins{api: tb}
		if deps.WrapAdminLookup != nil {
			lookup = deps.WrapAdminLookup(lookup)
		}
		deps.Handlers.Access = access.NewChecker(cfg.Economy.Admins, lookup, log)
	}
	if deps.Handlers.Log == nil {
		deps.Handlers.Log = log
	}

	b := &Bot{
		telebot:    tb,
		log:        log,
		cfg:        cfg,
		router:     NewRouter(log),
		errHandler: errors.NewHandler(log, cfg.Sentry.Enabled),
	}

	b.setupRouter(deps)
	b.registerTelebotHandlers()

	if err := tb.SetCommands(commandMenu); err != nil {
		log.Warn("failed to publish command menu", slog.Any("error", err))
	}

	return b, nil
}

// Start runs the telegram bot event loop. It blocks until Stop is called.
func (b *Bot) Start() {
	if b.telebot == nil {
		return
	}

	b.log.Info("telegram bot started", slog.String("username", b.telebot.Me.Username), slog.String("mode", b.cfg.Bot.Mode))
	b.telebot.Start()
}

// Stop gracefully stops the telegram bot.
func (b *Bot) Stop() {
	if b.telebot == nil {
		return
	}

	b.log.Info("stopping telegram bot...")
	b.telebot.Stop()
}

// HealthCheck asks the Bot API who we are.
func (b *Bot) HealthCheck(_ context.Context) error {
	if b == nil || b.telebot == nil {
		return fmt.Errorf("telegram bot is not initialized")
	}
	if _, err := b.telebot.Raw("getMe", nil); err != nil {
		return fmt.Errorf("telegram getMe: %w", err)
	}
	return nil
}

func (b *Bot) setupRouter(deps Deps) {
	registerRoutes(b.router, b.log, b.errHandler, deps)
}

func (b *Bot) registerTelebotHandlers() {
	b.telebot.Handle(telebot.OnText, b.router.Route)
	b.telebot.Handle(telebot.OnCallback, b.router.Route)
}

// registerRoutes installs the middleware chain and every command and callback.
func registerRoutes(r *Router, log *slog.Logger, errHandler *errors.Handler, deps Deps) {
	h := deps.Handlers

	r.Use(RecoveryMiddleware(log, errHandler, h.I18n))
	r.Use(LoggingMiddleware(log))
	r.Use(middleware.Dedupe(deps.Dedupe))
	r.Use(ErrorHandlingMiddleware(errHandler, h.I18n))
	if deps.RateLimitMw != nil {
		r.Use(deps.RateLimitMw.Handle)
	}
	r.Use(middleware.Metrics)

	r.RegisterCommand(CommandStart, handlers.NewStartHandler(h))
	r.RegisterCommand(CommandHelp, handlers.NewHelpHandler(h))
	r.RegisterCommand(CommandDaily, handlers.NewDailyHandler(h))
	r.RegisterCommand(CommandEBal, handlers.NewBalanceHandler(ledger.NamespaceEconomy, h))
	r.RegisterCommand(CommandSBal, handlers.NewBalanceHandler(ledger.NamespaceShulk, h))

	for _, adj := range []handlers.Adjustment{
		{Command: CommandEAdd, Namespace: ledger.NamespaceEconomy, Credit: true},
		{Command: CommandERemove, Namespace: ledger.NamespaceEconomy},
		{Command: CommandSAdd, Namespace: ledger.NamespaceShulk, Credit: true},
		{Command: CommandSRemove, Namespace: ledger.NamespaceShulk},
	} {
		r.RegisterCommand(adj.Command, handlers.NewAdjustHandler(adj, h))
	}

	r.RegisterCallback(keyboard.CallbackDaily, CommandDaily)
	r.RegisterCallback(keyboard.CallbackEBal, CommandEBal)
	r.RegisterCallback(keyboard.CallbackSBal, CommandSBal)
}
