package router

import (
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/m3rciful/postbot/core/logger"
	tghelpers "github.com/m3rciful/postbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// handleWithSummary runs fn under handlerName and logs one summary line.
func handleWithSummary(c tele.Context, handlerName string, fn func() error) error {
	start := time.Now()
	tghelpers.WithHandler(c, handlerName)
	err := fn()
	logHandlerSummary(c, handlerName, start, "", err)
	return err
}

func logHandlerSummary(c tele.Context, handlerName string, start time.Time, status string, err error) {
	ctx := tghelpers.WithHandler(c, handlerName)
	msgs, kb := tghelpers.Counters(c)
	if status == "" {
		status = logger.Status(err)
	}

	attrs := []slog.Attr{
		slog.String("status", status),
		slog.Int("messages", msgs),
		slog.Bool("kb", kb),
		slog.Duration("duration", logger.Took(start)),
	}
	level := slog.LevelInfo
	if err != nil {
		level = slog.LevelWarn
		attrs = append(attrs,
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			slog.String("err_code", deriveErrorCode(err)),
		)
	}
	logger.LogEvent(ctx, logger.TG, level, "handler.handled", attrs...)
}

func normalizeHandlerName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "unknown"
	}
	name = strings.TrimPrefix(name, "/")
	return strings.ToLower(strings.ReplaceAll(name, " ", "_"))
}

// deriveErrorCode prefers a Code() method anywhere in the chain and falls
// back to the concrete type name.
func deriveErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var c interface{ Code() string }
	if errors.As(err, &c) {
		if code := strings.TrimSpace(c.Code()); code != "" {
			return strings.ToUpper(strings.ReplaceAll(code, " ", "_"))
		}
	}
	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t != nil && t.Name() != "" {
		return strings.ToUpper(t.Name())
	}
	return "UNKNOWN_ERROR"
}
