package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/m3rciful/postbot/core/logger"
	tghelpers "github.com/m3rciful/postbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// RecoverMiddleware turns a handler panic into an error log so one bad update
// cannot take the bot down.
func RecoverMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				panicsTotal.Inc()
				logger.LogEvent(tghelpers.BuildContext(c), logger.TG, slog.LevelError, "tg.panic",
					slog.String("status", "fail"),
					slog.String("err", fmt.Sprint(r)),
					slog.String("stack", string(debug.Stack())),
				)
				err = nil
			}
		}()
		return next(c)
	}
}
