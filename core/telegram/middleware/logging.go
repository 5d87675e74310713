package middleware

import (
	"log/slog"
	"time"

	"github.com/m3rciful/postbot/core/logger"
	tghelpers "github.com/m3rciful/postbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// LoggerMiddleware assigns the update a correlation id, stores the enriched
// context for downstream layers, and logs receipt at sampled debug level.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		upd := c.Update()
		var chatID, userID int64
		if chat := c.Chat(); chat != nil {
			chatID = chat.ID
		}
		user := c.Sender()
		if user != nil {
			userID = user.ID
		}

		rid := logger.BuildRID(upd.ID, chatID, userID)
		c.Set("rid", rid)
		c.Set("update_start", time.Now())

		ctx := logger.WithRID(logger.Background(), rid)
		ctx = logger.WithUpdateMeta(ctx, upd.ID, userID, chatID)
		ctx = logger.WithLogger(ctx, logger.TG)
		tghelpers.StoreContext(c, ctx)

		if logger.ShouldSampleDebug() {
			attrs := []slog.Attr{slog.String("status", "ok")}
			if user != nil && user.Username != "" {
				attrs = append(attrs, slog.String("username", logger.SanitizeLimit(user.Username, 64)))
			}
			if user != nil && user.LanguageCode != "" {
				attrs = append(attrs, slog.String("lang", user.LanguageCode))
			}
			if t := c.Text(); t != "" {
				attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(t, 256)))
			}
			logger.LogEvent(ctx, logger.TG, slog.LevelDebug, "update.received", attrs...)
		}
		return next(c)
	}
}
