package middleware

import (
	"log/slog"

	"github.com/m3rciful/postbot/core/logger"
	tghelpers "github.com/m3rciful/postbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// AdminOptions defines how admin-only checks should behave.
type AdminOptions struct {
	AdminID  int64
	OnReject tele.HandlerFunc
}

// AdminOnlyMiddleware drops updates from anyone but AdminID. A zero AdminID
// lets everything through.
func AdminOnlyMiddleware(opts AdminOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if opts.AdminID == 0 {
				return next(c)
			}
			if u := c.Sender(); u != nil && u.ID == opts.AdminID {
				return next(c)
			}
			logger.LogEvent(tghelpers.BuildContext(c), logger.TG, slog.LevelWarn, "access.denied",
				slog.String("status", "skip"),
			)
			if opts.OnReject != nil {
				return opts.OnReject(c)
			}
			return nil
		}
	}
}
