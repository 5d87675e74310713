// Package bot connects the conversation controller to the Telegram runtime.
package bot

import (
	"errors"
	"log/slog"

	"github.com/m3rciful/postbot/core/logger"
	tg "github.com/m3rciful/postbot/core/telegram"
	"github.com/m3rciful/postbot/core/telegram/commands"
	tghelpers "github.com/m3rciful/postbot/core/telegram/helpers"
	"github.com/m3rciful/postbot/core/telegram/keyboard"
	"github.com/m3rciful/postbot/core/telegram/router"
	"github.com/m3rciful/postbot/internal/conversation"

	tele "gopkg.in/telebot.v4"
)

// Bot owns the command and text routes of the post configuration menu.
type Bot struct {
	conv     *conversation.Controller
	registry *tg.Registry
	menu     []string
}

// New registers /start, /cancel and every menu label in reg.
func New(conv *conversation.Controller, reg *tg.Registry) (*Bot, error) {
	if conv == nil {
		return nil, errors.New("bot: nil conversation")
	}
	if reg == nil {
		reg = tg.NewRegistry()
	}
	b := &Bot{conv: conv, registry: reg, menu: conv.MenuLabels()}

	reg.RegisterCommand("/start", commands.Command{
		Handler:     b.onStart,
		Description: conv.Text("command.start"),
	})
	reg.RegisterCommand("/cancel", commands.Command{
		Handler:     b.onCancel,
		Description: conv.Text("command.cancel"),
	})
	for _, item := range conv.Menu() {
		if err := reg.RegisterText(item.Label, item.Name, b.onText); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Registry returns the registry the routes were added to.
func (b *Bot) Registry() *tg.Registry { return b.registry }

// Routes builds the command routes followed by the text route.
func (b *Bot) Routes(opts router.CommandRouteOptions) []tg.Route {
	routes := router.CommandRoutes(b.registry, opts)
	return append(routes, router.TextRoutes(b, b.registry, router.TextOptions{})...)
}

// InProgress reports whether userID is filling a field.
func (b *Bot) InProgress(userID int64) bool {
	return b.conv.InProgress(userID)
}

// HandlePending stores the text as the value of the pending field. Text from
// an idle user is ignored by the conversation.
func (b *Bot) HandlePending(c tele.Context) error {
	return b.onText(c)
}

// RateLimited answers an update dropped by the rate limiter.
func (b *Bot) RateLimited(c tele.Context) error {
	b.reply(c, conversation.Response{Messages: []string{b.conv.Text("rate.limited")}})
	return nil
}

func (b *Bot) onStart(c tele.Context) error {
	b.reply(c, b.conv.Start(tghelpers.BuildContext(c), senderID(c)))
	return nil
}

func (b *Bot) onCancel(c tele.Context) error {
	b.reply(c, b.conv.Cancel(tghelpers.BuildContext(c), senderID(c)))
	return nil
}

// onText answers storage failures with the retry text. The conversation has
// already logged the cause, so the error stops here.
func (b *Bot) onText(c tele.Context) error {
	resp, _ := b.conv.Handle(tghelpers.BuildContext(c), senderID(c), c.Text())
	b.reply(c, resp)
	return nil
}

// reply sends the messages in order, with the menu keyboard on the last one
// when asked. A failed send is logged and the rest are dropped.
func (b *Bot) reply(c tele.Context, resp conversation.Response) {
	for i, text := range resp.Messages {
		var markup *tele.ReplyMarkup
		if resp.ShowMenu && i == len(resp.Messages)-1 {
			markup = keyboard.Menu(b.menu...)
		}
		if err := tghelpers.SendText(c, text, markup); err != nil {
			logger.LogEvent(tghelpers.BuildContext(c), logger.TG, slog.LevelWarn, "send.failed",
				slog.String("action", string(resp.Action)),
				slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			)
			return
		}
	}
}

func senderID(c tele.Context) int64 {
	if u := c.Sender(); u != nil {
		return u.ID
	}
	return 0
}
