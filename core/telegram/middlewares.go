package telegram

import (
	"strings"
	"time"

	coreconfig "github.com/m3rciful/postbot/core/config"
	"github.com/m3rciful/postbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// DefaultMiddlewares builds the global middleware chain. Recovery is
// outermost so panics in any later layer are contained.
func DefaultMiddlewares(cfg *coreconfig.Config, onLimited tele.HandlerFunc) []Middleware {
	mws := []Middleware{
		{Name: "recover", Use: middleware.RecoverMiddleware},
		{Name: "logger", Use: middleware.LoggerMiddleware},
		{Name: "metrics", Use: middleware.MessageMetricsMiddleware},
	}
	if cfg == nil {
		return mws
	}

	if cfg.Telegram.AdminID != 0 {
		mws = append(mws, Middleware{
			Name: "owner",
			Use:  middleware.AdminOnlyMiddleware(middleware.AdminOptions{AdminID: cfg.Telegram.AdminID}),
		})
	}

	if interval := time.Duration(cfg.RateLimit.IntervalMS) * time.Millisecond; interval > 0 {
		ex := make(map[string]struct{}, len(cfg.RateLimit.ExcludeUpdates))
		for _, t := range cfg.RateLimit.ExcludeUpdates {
			ex[strings.ToLower(t)] = struct{}{}
		}
		mws = append(mws, Middleware{
			Name: "rate_limit",
			Use: middleware.RateLimitMiddleware(middleware.RateLimitOptions{
				Interval:  interval,
				Exclude:   ex,
				OnLimited: onLimited,
			}),
		})
	}
	return mws
}
