// Package teletest provides an in-memory tele.Context for handler tests.
package teletest

import (
	"regexp"
	"strings"
	"sync"

	tele "gopkg.in/telebot.v4"
)

var commandRe = regexp.MustCompile(`^/[A-Za-z0-9_]+(@[A-Za-z0-9_]+)?$`)

// Sent is one message captured by Context.Send.
type Sent struct {
	Text   string
	Markup *tele.ReplyMarkup
}

// Context is a tele.Context for a private text message. Methods the tests
// do not need fall through to the embedded nil interface and panic.
type Context struct {
	tele.Context

	update tele.Update

	mu      sync.Mutex
	store   map[string]any
	sent    []Sent
	SendErr error
}

// NewText builds a private-chat text update from userID. A leading command
// word gets the bot_command entity Telegram attaches to it.
func NewText(updateID int, userID int64, text string) *Context {
	user := &tele.User{ID: userID, Username: "tester"}
	msg := &tele.Message{
		Sender: user,
		Chat:   &tele.Chat{ID: userID, Type: tele.ChatPrivate},
		Text:   text,
	}
	if cmd, _, _ := strings.Cut(text, " "); commandRe.MatchString(cmd) {
		msg.Entities = tele.Entities{{Type: tele.EntityCommand, Offset: 0, Length: len([]rune(cmd))}}
	}
	return &Context{
		update: tele.Update{ID: updateID, Message: msg},
		store:  make(map[string]any),
	}
}

func (c *Context) Update() tele.Update { return c.update }
func (c *Context) Message() *tele.Message { return c.update.Message }
func (c *Context) Sender() *tele.User { return c.update.Message.Sender }
func (c *Context) Chat() *tele.Chat { return c.update.Message.Chat }
func (c *Context) Recipient() tele.Recipient { return c.update.Message.Chat }
func (c *Context) Text() string { return c.update.Message.Text }

func (c *Context) Get(key string) any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store[key]
}

func (c *Context) Set(key string, val any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = val
}

// Send records text messages. Options other than a reply markup are ignored.
func (c *Context) Send(what any, opts ...any) error {
	if c.SendErr != nil {
		return c.SendErr
	}
	s := Sent{}
	s.Text, _ = what.(string)
	for _, o := range opts {
		switch v := o.(type) {
		case *tele.SendOptions:
			if v != nil && v.ReplyMarkup != nil {
				s.Markup = v.ReplyMarkup
			}
		case *tele.ReplyMarkup:
			s.Markup = v
		}
	}
	c.mu.Lock()
	c.sent = append(c.sent, s)
	c.mu.Unlock()
	return nil
}

// Sent returns a copy of the captured messages.
func (c *Context) Sent() []Sent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Sent(nil), c.sent...)
}

// Texts returns the text of every captured message.
func (c *Context) Texts() []string {
	var out []string
	for _, s := range c.Sent() {
		out = append(out, s.Text)
	}
	return out
}
