package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/postbot/core/logger"
	tghelpers "github.com/m3rciful/postbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// RateLimitOptions configures behaviour of the rate limit middleware.
type RateLimitOptions struct {
	Interval  time.Duration
	Exclude   map[string]struct{}
	OnLimited tele.HandlerFunc
}

// RateLimitMiddleware drops updates that arrive sooner than Interval after
// the previous accepted update from the same user.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	var (
		mu       sync.Mutex
		lastSeen = make(map[int64]time.Time)
	)
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil || opts.Interval <= 0 {
				return next(c)
			}
			if _, skip := opts.Exclude[updateKind(c.Update())]; skip {
				return next(c)
			}

			now := time.Now()
			mu.Lock()
			last, seen := lastSeen[user.ID]
			limited := seen && now.Sub(last) < opts.Interval
			if !limited {
				lastSeen[user.ID] = now
			}
			mu.Unlock()

			if !limited {
				return next(c)
			}
			logger.LogEvent(tghelpers.BuildContext(c), logger.TG, slog.LevelWarn, "tg.rate_limit",
				slog.String("status", "rate_limited"),
			)
			if opts.OnLimited != nil {
				_ = opts.OnLimited(c)
			}
			return nil
		}
	}
}
