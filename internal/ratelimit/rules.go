package ratelimit

import (
	"strings"
	"time"

	"github.com/Proton-105/shulk-bot/pkg/config"
)

// Rules encapsulates configured rate limits and helper methods.
type Rules struct {
	config    config.RateLimitConfig
	whitelist map[int64]struct{}
}

// NewRules constructs rate limiting rules from configuration settings.
func NewRules(cfg config.RateLimitConfig) *Rules {
	whitelist := make(map[int64]struct{}, len(cfg.Whitelist))
	for _, id := range cfg.Whitelist {
		whitelist[id] = struct{}{}
	}
	return &Rules{config: cfg, whitelist: whitelist}
}

// Enabled reports whether limits are enforced at all.
func (r *Rules) Enabled() bool {
	return r != nil && r.config.Enabled
}

// IsWhitelisted returns true if the userID bypasses rate limits.
func (r *Rules) IsWhitelisted(userID int64) bool {
	_, ok := r.whitelist[userID]
	return ok
}

// CommandLimit returns the rule for a command name without its slash.
// ok is false when the command has no dedicated rule.
func (r *Rules) CommandLimit(command string) (int, time.Duration, bool) {
	command = strings.TrimPrefix(strings.ToLower(command), "/")
	rule, ok := r.config.Commands[command]
	if !ok || !usable(rule) {
		return 0, 0, false
	}
	return rule.Limit, rule.Window, true
}

// PerUserLimit returns the rule applied to every update of a user.
func (r *Rules) PerUserLimit() (int, time.Duration, bool) {
	if !usable(r.config.PerUser) {
		return 0, 0, false
	}
	return r.config.PerUser.Limit, r.config.PerUser.Window, true
}

func usable(rule config.RateLimitRule) bool {
	return rule.Limit > 0 && rule.Window > 0
}
