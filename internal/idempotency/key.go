package idempotency

import (
	"fmt"

	telebot "gopkg.in/telebot.v3"
)

// UpdateKey derives a stable key for the update behind c, or "" when none exists.
func UpdateKey(c telebot.Context) string {
	if c == nil {
		return ""
	}

	if upd := c.Update(); upd.ID != 0 {
		return fmt.Sprintf("upd:%d", upd.ID)
	}

	if cb := c.Callback(); cb != nil && cb.ID != "" {
		return fmt.Sprintf("cb:%s", cb.ID)
	}

	if msg := c.Message(); msg != nil && msg.ID != 0 {
		chatID := int64(0)
		if msg.Chat != nil {
			chatID = msg.Chat.ID
		}
		return fmt.Sprintf("msg:%d:%d", chatID, msg.ID)
	}

	return ""
}
