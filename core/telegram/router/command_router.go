package router

import (
	"log/slog"

	"github.com/m3rciful/postbot/core/logger"
	tg "github.com/m3rciful/postbot/core/telegram"
	"github.com/m3rciful/postbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions configures how commands are wrapped and exposed.
type CommandRouteOptions struct {
	AdminID       int64
	OnAdminReject tele.HandlerFunc
}

// CommandRoutes turns every registered command into a route that logs a
// handler summary. AdminOnly commands also get the owner check.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}
	admin := middleware.AdminOnlyMiddleware(middleware.AdminOptions{
		AdminID:  opts.AdminID,
		OnReject: opts.OnAdminReject,
	})

	cmds := reg.Commands()
	routes := make([]tg.Route, 0, len(cmds))
	for name, def := range cmds {
		handler := def.Handler
		handlerName := normalizeHandlerName(name)
		h := func(c tele.Context) error {
			return handleWithSummary(c, handlerName, func() error { return handler(c) })
		}
		if def.AdminOnly {
			h = admin(h)
		}
		routes = append(routes, tg.Route{Endpoint: name, Handler: h})
	}

	logger.TWire.Info("tg.wire",
		slog.String("event", "commands"),
		slog.Int("count", len(cmds)),
	)
	return routes
}
