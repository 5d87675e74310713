package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/m3rciful/postbot/core/logger"
	"github.com/m3rciful/postbot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the outbound queue used by SendText. Nil sends inline.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

// SendText sends plain text to the current chat. With a dispatcher wired the
// call is queued behind earlier sends to the same chat; otherwise it runs
// inline and its error is returned.
func SendText(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	opts := &tele.SendOptions{}
	if len(markup) > 0 && markup[0] != nil {
		opts.ReplyMarkup = markup[0]
	}
	run := func() error { return c.Send(text, opts) }
	countSent(c, opts.ReplyMarkup != nil)

	disp := globalDispatcher.Load()
	if disp == nil {
		return run()
	}
	var chatID int64
	if chat := c.Chat(); chat != nil {
		chatID = chat.ID
	}
	ctx := BuildContext(c)
	err := disp.Enqueue(ctx, chatID, "send.text", run)
	if errors.Is(err, sender.ErrQueueClosed) {
		logger.Warn(ctx, "tg.sender", "queue.fallback",
			slog.String("action", "send.text"),
			slog.String("err", err.Error()),
		)
		return run()
	}
	return err
}
