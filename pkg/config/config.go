package config

import "time"

// Config holds runtime configuration for the economy bot.
type Config struct {
	AppEnv    string          `mapstructure:"app_env"`
	Bot       BotConfig       `mapstructure:"bot" validate:"required"`
	Server    ServerConfig    `mapstructure:"server"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Sentry    SentryConfig    `mapstructure:"sentry"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Ledger    LedgerConfig    `mapstructure:"ledger" validate:"required"`
	Economy   EconomyConfig   `mapstructure:"economy"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Dedupe    DedupeConfig    `mapstructure:"dedupe"`
}

// BotConfig configures the Telegram connection.
type BotConfig struct {
	Token         string        `mapstructure:"token" validate:"required"`
	Mode          string        `mapstructure:"mode" validate:"oneof=polling webhook"`
	Timeout       time.Duration `mapstructure:"timeout"`
	WebhookListen string        `mapstructure:"webhook_listen" validate:"required_if=Mode webhook"`
	WebhookURL    string        `mapstructure:"webhook_url" validate:"required_if=Mode webhook"`
}

// ServerConfig configures the operational HTTP server.
type ServerConfig struct {
	Port            string        `mapstructure:"port" validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggerConfig controls log level, format and optional file output.
type LoggerConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format     string `mapstructure:"format" validate:"oneof=text json"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// SentryConfig configures error reporting.
type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn" validate:"required_if=Enabled true"`
	SampleRate  float64 `mapstructure:"sample_rate" validate:"gte=0,lte=1"`
	Release     string  `mapstructure:"release"`
	Environment string  `mapstructure:"environment"`
}

// RedisConfig configures the optional Redis connection. Redis backs role
// assignments, distributed rate limiting and update de-duplication.
type RedisConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Addr            string        `mapstructure:"addr" validate:"required_if=Enabled true"`
	Password        string        `mapstructure:"password"`
	DB              int           `mapstructure:"db"`
	PoolSize        int           `mapstructure:"pool_size"`
	MinIdleConns    int           `mapstructure:"min_idle_conns"`
	PoolTimeout     time.Duration `mapstructure:"pool_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	MaxRetries      int           `mapstructure:"max_retries"`
	MinRetryBackoff time.Duration `mapstructure:"min_retry_backoff"`
	MaxRetryBackoff time.Duration `mapstructure:"max_retry_backoff"`
}

// LedgerConfig points at the durable balances file.
type LedgerConfig struct {
	Path               string `mapstructure:"path" validate:"required"`
	WatchExternalEdits bool   `mapstructure:"watch_external_edits"`
}

// EconomyConfig holds the static economy rules fixed at process start.
type EconomyConfig struct {
	Admins          []int64          `mapstructure:"admins"`
	Payouts         []PayoutRule     `mapstructure:"payouts" validate:"dive"`
	RoleAssignments []RoleAssignment `mapstructure:"role_assignments" validate:"dive"`
	ClaimCooldown   time.Duration    `mapstructure:"claim_cooldown" validate:"gt=0"`
	// AdminCacheTTL caches Telegram chat-admin lookups in Redis. Zero disables it.
	AdminCacheTTL   time.Duration    `mapstructure:"admin_cache_ttl" validate:"gte=0"`
}

// PayoutRule maps a role to its daily reward.
type PayoutRule struct {
	Role   int64 `mapstructure:"role" validate:"required"`
	Amount int64 `mapstructure:"amount" validate:"gte=0"`
}

// RoleAssignment statically grants a role to a list of users.
type RoleAssignment struct {
	Role  int64   `mapstructure:"role" validate:"required"`
	Users []int64 `mapstructure:"users"`
}

// RateLimitConfig configures per-user and per-command limits. FallbackRatio
// scales every limit while the Redis backend is unreachable.
type RateLimitConfig struct {
	Enabled       bool                     `mapstructure:"enabled"`
	Backend       string                   `mapstructure:"backend" validate:"oneof=memory redis"`
	PerUser       RateLimitRule            `mapstructure:"per_user"`
	Commands      map[string]RateLimitRule `mapstructure:"commands"`
	FallbackRatio float64                  `mapstructure:"fallback_ratio" validate:"gte=0,lte=1"`
	Whitelist     []int64                  `mapstructure:"whitelist"`
}

// RateLimitRule is a sliding-window limit.
type RateLimitRule struct {
	Limit  int           `mapstructure:"limit" validate:"gte=0"`
	Window time.Duration `mapstructure:"window"`
}

// DedupeConfig configures redelivered-update suppression.
type DedupeConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// PayoutTable returns the configured role payouts keyed by role id.
func (c EconomyConfig) PayoutTable() map[int64]int64 {
	table := make(map[int64]int64, len(c.Payouts))
	for _, rule := range c.Payouts {
		table[rule.Role] = rule.Amount
	}

	return table
}

// RoleMembers returns the static role assignments keyed by user id.
func (c EconomyConfig) RoleMembers() map[int64][]int64 {
	members := make(map[int64][]int64)
	for _, assignment := range c.RoleAssignments {
		for _, userID := range assignment.Users {
			members[userID] = append(members[userID], assignment.Role)
		}
	}

	return members
}
