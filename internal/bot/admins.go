package bot

import (
	"context"

	telebot "gopkg.in/telebot.v3"
)

type chatMemberGetter interface {
	ChatMemberOf(chat, user telebot.Recipient) (*telebot.ChatMember, error)
}

// telegramAdmins treats chat creators and administrators as platform admins.
type telegramAdmins struct {
	api chatMemberGetter
}

func (t telegramAdmins) IsPlatformAdmin(_ context.Context, chatID, userID int64) (bool, error) {
	member, err := t.api.ChatMemberOf(&telebot.Chat{ID: chatID}, &telebot.User{ID: userID})
	if err != nil {
		return false, err
	}

	return member.Role == telebot.Creator || member.Role == telebot.Administrator, nil
}
