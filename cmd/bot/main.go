package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/Proton-105/shulk-bot/internal/access"
	"github.com/Proton-105/shulk-bot/internal/bot"
	"github.com/Proton-105/shulk-bot/internal/bot/handlers"
	"github.com/Proton-105/shulk-bot/internal/claim"
	"github.com/Proton-105/shulk-bot/internal/economy"
	"github.com/Proton-105/shulk-bot/internal/health"
	"github.com/Proton-105/shulk-bot/internal/httpapi"
	"github.com/Proton-105/shulk-bot/internal/i18n"
	"github.com/Proton-105/shulk-bot/internal/idempotency"
	"github.com/Proton-105/shulk-bot/internal/ledger"
	"github.com/Proton-105/shulk-bot/internal/lifecycle"
	"github.com/Proton-105/shulk-bot/internal/middleware"
	"github.com/Proton-105/shulk-bot/internal/ratelimit"
	"github.com/Proton-105/shulk-bot/internal/roles"
	"github.com/Proton-105/shulk-bot/pkg/config"
	"github.com/Proton-105/shulk-bot/pkg/graceful"
	"github.com/Proton-105/shulk-bot/pkg/logger"
	appredis "github.com/Proton-105/shulk-bot/pkg/redis"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "shulk-bot: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cfg.Sentry.Enabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.Sentry.Environment,
			Release:          cfg.Sentry.Release,
			SampleRate:       cfg.Sentry.SampleRate,
			AttachStacktrace: true,
		}); err != nil {
			return fmt.Errorf("init sentry: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	log := logger.New(*cfg)
	slog.SetDefault(log)
	log.Info("starting shulk bot", slog.String("mode", cfg.Bot.Mode), slog.String("ledger", cfg.Ledger.Path))

	shutdown := lifecycle.NewShutdown(log)
	checker := health.NewChecker(log)

	storage := ledger.NewFileStorage(cfg.Ledger.Path)
	store := ledger.NewStore(storage, log)
	if err := store.Load(ctx); err != nil {
		if errors.Is(err, ledger.ErrCorruptLedger) {
			log.Error("ledger file is corrupt, refusing to start", slog.String("path", cfg.Ledger.Path), slog.Any("error", err))
		}
		return fmt.Errorf("load ledger: %w", err)
	}
	checker.AddCheck("ledger", storage)

	var rdb *appredis.Client
	if cfg.Redis.Enabled {
		rdb, err = appredis.New(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		checker.AddCheck("redis", health.NewRedisChecker(rdb.Client))
	}

	roleResolver := roles.MultiResolver{roles.NewStaticResolver(cfg.Economy.RoleMembers())}
	if rdb != nil {
		roleResolver = append(roleResolver, roles.NewRedisResolver(rdb.Client, log))
	}

	catalog, err := i18n.Load(i18n.DefaultLang)
	if err != nil {
		return fmt.Errorf("load translations: %w", err)
	}
	log.Info("translations loaded", slog.Any("languages", catalog.Languages()), slog.String("default", i18n.DefaultLang))

	gate := claim.NewGate(store, claim.PayoutTable(cfg.Economy.PayoutTable()), cfg.Economy.ClaimCooldown, log)
	svc := economy.NewService(store, gate, log)

	deps := bot.Deps{
		Handlers: handlers.Deps{
			Economy: svc,
			Roles:   roleResolver,
			I18n:    catalog,
			Log:     log,
		},
	}

	if rdb != nil && cfg.Economy.AdminCacheTTL > 0 {
		deps.WrapAdminLookup = func(next access.PlatformAdminLookup) access.PlatformAdminLookup {
			return access.NewCachedLookup(next, rdb.Client, cfg.Economy.AdminCacheTTL, log)
		}
	}

	if cfg.Dedupe.Enabled && rdb != nil {
		deps.Dedupe = idempotency.NewGuard(idempotency.NewRedisStore(rdb.Client, log), cfg.Dedupe.TTL, log)
	}

	workers, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	if cfg.RateLimit.Enabled {
		var redisClient *appredis.Client
		if cfg.RateLimit.Backend == "redis" {
			redisClient = rdb
		}
		limiter, memory := newLimiter(cfg.RateLimit, redisClient, log)
		go memory.RunJanitor(workers, 5*time.Minute, 30*time.Minute)
		deps.RateLimitMw = middleware.NewRateLimitMiddleware(limiter, ratelimit.NewRules(cfg.RateLimit), log)
	}

	tgBot, err := bot.New(*cfg, log, deps)
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}
	checker.AddCheck("telegram", tgBot)

	if cfg.Ledger.WatchExternalEdits {
		watcher := ledger.NewWatcher(storage, log, ledger.WithExternalEditHook(func(path string) {
			log.Warn("manual ledger edits are overwritten by the next balance change", slog.String("path", path))
		}))
		go func() {
			if err := watcher.Run(workers); err != nil {
				log.Error("ledger watcher stopped", slog.Any("error", err))
			}
		}()
	}

	probes := httpapi.NewProbes(checker)
	opsServer := graceful.NewServer(log, &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           httpapi.NewRouter(probes, log),
		ReadHeaderTimeout: 5 * time.Second,
	}, cfg.Server.ShutdownTimeout)

	httpDone := make(chan error, 1)
	go func() {
		httpDone <- opsServer.ListenAndServe(workers)
	}()

	go tgBot.Start()
	probes.SetReady(true)
	log.Info("shulk bot is running")

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-httpDone:
		log.Error("ops http server stopped unexpectedly", slog.Any("error", err))
	}

	probes.SetReady(false)

	shutdown.Register("telegram", func(context.Context) error {
		tgBot.Stop()
		return nil
	})
	shutdown.Register("workers", func(context.Context) error {
		cancelWorkers()
		return nil
	})
	if rdb != nil {
		shutdown.Register("redis", func(context.Context) error {
			return rdb.Close()
		})
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := shutdown.Execute(shutdownCtx); err != nil {
		log.Error("shutdown finished with errors", slog.Any("error", err))
	}

	log.Info("shulk bot stopped")
	return nil
}

func newLimiter(cfg config.RateLimitConfig, rdb *appredis.Client, log *slog.Logger) (ratelimit.Limiter, *ratelimit.MemoryLimiter) {
	if rdb == nil {
		return ratelimit.NewFromConfig(cfg, nil, log)
	}
	return ratelimit.NewFromConfig(cfg, rdb.Client, log)
}
