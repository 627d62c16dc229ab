// Package access decides who may run admin economy commands.
package access

import (
	"context"
	"fmt"
	"log/slog"
)

// PlatformAdminLookup reports whether a user administers a chat on the platform.
type PlatformAdminLookup interface {
	IsPlatformAdmin(ctx context.Context, chatID, userID int64) (bool, error)
}

// Checker grants admin rights to configured administrators and to chat
// administrators reported by the platform.
type Checker struct {
	admins   map[int64]struct{}
	platform PlatformAdminLookup
	log      *slog.Logger
}

// NewChecker creates a Checker. platform may be nil.
func NewChecker(admins []int64, platform PlatformAdminLookup, log *slog.Logger) *Checker {
	if log == nil {
		log = slog.Default()
	}

	set := make(map[int64]struct{}, len(admins))
	for _, id := range admins {
		set[id] = struct{}{}
	}

	return &Checker{admins: set, platform: platform, log: log}
}

// IsAdmin reports whether userID may run admin commands in chatID. A zero
// chatID skips the platform lookup.
func (c *Checker) IsAdmin(ctx context.Context, chatID, userID int64) (bool, error) {
	if _, ok := c.admins[userID]; ok {
		return true, nil
	}

	if c.platform == nil || chatID == 0 {
		return false, nil
	}

	ok, err := c.platform.IsPlatformAdmin(ctx, chatID, userID)
	if err != nil {
		c.log.WarnContext(ctx, "platform admin lookup failed",
			slog.Int64("chat_id", chatID),
			slog.Int64("user_id", userID),
			slog.Any("error", err),
		)
		return false, fmt.Errorf("platform admin lookup: %w", err)
	}

	return ok, nil
}
