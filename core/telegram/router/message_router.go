package router

import (
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/m3rciful/postbot/core/logger"
	tg "github.com/m3rciful/postbot/core/telegram"

	tele "gopkg.in/telebot.v4"
)

// FSM consumes free text that is neither a command nor a registered label.
// It decides under its own per-user locking whether the sender has input
// pending, so idle users must be handled there as well.
type FSM interface {
	HandlePending(c tele.Context) error
}

// TextOptions controls fallback behaviour for text updates.
type TextOptions struct {
	// UnknownText handles text when no FSM is wired. Nil ignores it.
	UnknownText tele.HandlerFunc
}

// TextRoutes routes plain text in a fixed order: unregistered commands are
// skipped, exact registry labels come next, then the FSM, then UnknownText.
func TextRoutes(fsm FSM, reg *tg.Registry, opts TextOptions) []tg.Route {
	handler := func(c tele.Context) error {
		// telebot hands commands without a handler to OnText
		if isCommand(c.Message()) {
			logHandlerSummary(c, "unknown_text", time.Now(), "skip", nil)
			return nil
		}

		if reg != nil {
			if route, ok := reg.LookupText(c.Text()); ok {
				return handleWithSummary(c, normalizeHandlerName(route.Name), func() error {
					return route.Handler(c)
				})
			}
		}

		if fsm != nil {
			return handleWithSummary(c, "fsm", func() error {
				return fsm.HandlePending(c)
			})
		}

		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", func() error {
				return opts.UnknownText(c)
			})
		}
		logHandlerSummary(c, "unknown_text", time.Now(), "skip", nil)
		return nil
	}

	if reg != nil {
		logger.TWire.Info("tg.wire",
			slog.String("event", "text_routes"),
			slog.Int("count", reg.TextCount()),
		)
	}
	return []tg.Route{{Endpoint: tele.OnText, Handler: handler}}
}

var commandRe = regexp.MustCompile(`^/[A-Za-z0-9_]+(@[A-Za-z0-9_]+)?$`)

// isCommand reports whether the first word of msg is a bot command. A path
// such as "/tmp/a.png" is text even when a client marks its "/tmp" prefix.
func isCommand(msg *tele.Message) bool {
	if msg == nil {
		return false
	}
	first, _, _ := strings.Cut(strings.TrimSpace(msg.Text), " ")
	if commandRe.MatchString(first) {
		return true
	}
	width := len(utf16.Encode([]rune(first)))
	for _, e := range msg.Entities {
		if e.Type == tele.EntityCommand && e.Offset == 0 && e.Length == width {
			return true
		}
	}
	return false
}
