package bot

import (
	"fmt"

	telebot "gopkg.in/telebot.v3"
)

type fakeContext struct {
	telebot.Context

	update    telebot.Update
	sender    *telebot.User
	chat      *telebot.Chat
	message   *telebot.Message
	callback  *telebot.Callback
	store     map[string]interface{}
	sent      []string
	responded int
}

func newTextUpdate(id int, userID int64, text string) *fakeContext {
	sender := &telebot.User{ID: userID, LanguageCode: "en"}
	chat := &telebot.Chat{ID: -100, Type: telebot.ChatGroup}
	msg := &telebot.Message{ID: id, Text: text, Sender: sender, Chat: chat}
	return &fakeContext{
		update:  telebot.Update{ID: id, Message: msg},
		sender:  sender,
		chat:    chat,
		message: msg,
	}
}

func newCallbackUpdate(id int, userID int64, data string) *fakeContext {
	sender := &telebot.User{ID: userID, LanguageCode: "en"}
	cb := &telebot.Callback{ID: fmt.Sprintf("cb-%d", id), Data: data, Sender: sender}
	return &fakeContext{
		update:   telebot.Update{ID: id, Callback: cb},
		sender:   sender,
		callback: cb,
	}
}

func (f *fakeContext) Update() telebot.Update       { return f.update }
func (f *fakeContext) Sender() *telebot.User        { return f.sender }
func (f *fakeContext) Chat() *telebot.Chat          { return f.chat }
func (f *fakeContext) Message() *telebot.Message    { return f.message }
func (f *fakeContext) Callback() *telebot.Callback  { return f.callback }
func (f *fakeContext) Get(key string) interface{}   { return f.store[key] }

func (f *fakeContext) Text() string {
	if f.message == nil {
		return ""
	}
	return f.message.Text
}

func (f *fakeContext) Set(key string, val interface{}) {
	if f.store == nil {
		f.store = make(map[string]interface{})
	}
	f.store[key] = val
}

func (f *fakeContext) Send(what interface{}, _ ...interface{}) error {
	f.sent = append(f.sent, fmt.Sprint(what))
	return nil
}

func (f *fakeContext) Respond(_ ...*telebot.CallbackResponse) error {
	f.responded++
	return nil
}
