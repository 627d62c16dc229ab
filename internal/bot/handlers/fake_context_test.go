package handlers

import (
	"fmt"

	telebot "gopkg.in/telebot.v3"
)

// fakeContext implements the parts of telebot.Context the handlers touch.
type fakeContext struct {
	telebot.Context

	sender    *telebot.User
	chat      *telebot.Chat
	message   *telebot.Message
	callback  *telebot.Callback
	args      []string
	store     map[string]interface{}
	sent      []string
	sendOpts  [][]interface{}
	responded int
}

func newCommand(sender *telebot.User, chat *telebot.Chat, text string, args ...string) *fakeContext {
	return &fakeContext{
		sender:  sender,
		chat:    chat,
		message: &telebot.Message{ID: 1, Text: text, Chat: chat, Sender: sender},
		args:    args,
	}
}

func (f *fakeContext) Sender() *telebot.User       { return f.sender }
func (f *fakeContext) Chat() *telebot.Chat         { return f.chat }
func (f *fakeContext) Message() *telebot.Message   { return f.message }
func (f *fakeContext) Callback() *telebot.Callback { return f.callback }
func (f *fakeContext) Args() []string              { return f.args }

func (f *fakeContext) Text() string {
	if f.message == nil {
		return ""
	}
	return f.message.Text
}

func (f *fakeContext) Send(what interface{}, opts ...interface{}) error {
	f.sent = append(f.sent, fmt.Sprint(what))
	f.sendOpts = append(f.sendOpts, opts)
	return nil
}

func (f *fakeContext) Respond(_ ...*telebot.CallbackResponse) error {
	f.responded++
	return nil
}

func (f *fakeContext) Get(key string) interface{} {
	return f.store[key]
}

func (f *fakeContext) Set(key string, val interface{}) {
	if f.store == nil {
		f.store = make(map[string]interface{})
	}
	f.store[key] = val
}

func (f *fakeContext) lastSent() string {
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1]
}
