package helpers

import (
	"context"

	"github.com/m3rciful/postbot/core/logger"

	tele "gopkg.in/telebot.v4"
)

const (
	keyContext  = "logger_ctx"
	keyMessages = "messages"
	keyKeyboard = "kb"
)

// StoreContext attaches ctx to the update for downstream helpers.
func StoreContext(c tele.Context, ctx context.Context) {
	if c == nil || ctx == nil {
		return
	}
	c.Set(keyContext, ctx)
}

// ContextFrom returns the context stored by StoreContext.
func ContextFrom(c tele.Context) (context.Context, bool) {
	if c == nil {
		return nil, false
	}
	ctx, ok := c.Get(keyContext).(context.Context)
	return ctx, ok
}

// BuildContext returns the stored update context, creating one with the rid
// and update, user and chat ids when the logging middleware did not run.
func BuildContext(c tele.Context) context.Context {
	if cached, ok := ContextFrom(c); ok {
		return cached
	}

	var chatID, userID int64
	if chat := c.Chat(); chat != nil {
		chatID = chat.ID
	}
	if user := c.Sender(); user != nil {
		userID = user.ID
	}
	updateID := c.Update().ID

	rid, _ := c.Get("rid").(string)
	if rid == "" {
		rid = logger.BuildRID(updateID, chatID, userID)
	}
	ctx := logger.WithRID(context.Background(), rid)
	ctx = logger.WithUpdateMeta(ctx, updateID, userID, chatID)
	ctx = logger.WithLogger(ctx, logger.TG)
	StoreContext(c, ctx)
	return ctx
}

// WithHandler tags the stored context with the serving route name.
func WithHandler(c tele.Context, handler string) context.Context {
	ctx := BuildContext(c)
	if handler == "" {
		return ctx
	}
	ctx = logger.WithHandler(ctx, handler)
	StoreContext(c, ctx)
	return ctx
}

// ResetCounters zeroes the per-update send counters.
func ResetCounters(c tele.Context) {
	c.Set(keyMessages, 0)
	c.Set(keyKeyboard, false)
}

// Counters reports how many messages the current update has sent and whether
// any of them carried a keyboard.
func Counters(c tele.Context) (int, bool) {
	n, _ := c.Get(keyMessages).(int)
	kb, _ := c.Get(keyKeyboard).(bool)
	return n, kb
}

func countSent(c tele.Context, withKeyboard bool) {
	n, _ := c.Get(keyMessages).(int)
	c.Set(keyMessages, n+1)
	if withKeyboard {
		c.Set(keyKeyboard, true)
	}
}
