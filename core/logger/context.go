package logger

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode"
)

type contextKey int

const (
	ctxRID contextKey = iota
	ctxUpdateMeta
	ctxLogger
	ctxHandler
)

type updateMeta struct {
	updateID int
	userID   int64
	chatID   int64
}

// WithLogger stores log in ctx for downstream layers.
func WithLogger(ctx context.Context, log *slog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if log == nil {
		return ctx
	}
	return context.WithValue(ctx, ctxLogger, log)
}

// FromContext returns the logger stored in ctx or L.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxLogger).(*slog.Logger); ok {
			return l
		}
	}
	return L
}

// WithRID attaches a request correlation id.
func WithRID(ctx context.Context, rid string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxRID, rid)
}

// RIDFrom returns the correlation id, if any.
func RIDFrom(ctx context.Context) string {
	return stringValue(ctx, ctxRID)
}

// WithUpdateMeta attaches Telegram update, user and chat ids.
func WithUpdateMeta(ctx context.Context, updateID int, userID, chatID int64) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxUpdateMeta, updateMeta{updateID: updateID, userID: userID, chatID: chatID})
}

func metaFrom(ctx context.Context) updateMeta {
	if ctx == nil {
		return updateMeta{}
	}
	m, _ := ctx.Value(ctxUpdateMeta).(updateMeta)
	return m
}

// UpdateIDFrom returns the Telegram update id, or 0.
func UpdateIDFrom(ctx context.Context) int { return metaFrom(ctx).updateID }

// UserIDFrom returns the Telegram user id, or 0.
func UserIDFrom(ctx context.Context) int64 { return metaFrom(ctx).userID }

// ChatIDFrom returns the Telegram chat id, or 0.
func ChatIDFrom(ctx context.Context) int64 { return metaFrom(ctx).chatID }

// WithHandler records which route is serving the update.
func WithHandler(ctx context.Context, handler string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if handler == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxHandler, handler)
}

// HandlerFrom returns the route name stored by WithHandler.
func HandlerFrom(ctx context.Context) string {
	return stringValue(ctx, ctxHandler)
}

func stringValue(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	s, _ := ctx.Value(key).(string)
	return s
}

// Sanitize drops control and format runes except tab and newline.
func Sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) || unicode.Is(unicode.Cf, r) {
			return -1
		}
		return r
	}, s)
}

// SanitizeLimit sanitizes s and truncates it to max runes.
func SanitizeLimit(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(Sanitize(s))
	if len(r) <= max {
		return string(r)
	}
	return string(r[:max])
}

// BuildRID formats a correlation id as updateID:chatID:userID.
func BuildRID(updateID int, chatID, userID int64) string {
	return fmt.Sprintf("%d:%d:%d", updateID, chatID, userID)
}

// CompactRID rewrites a BuildRID value into dot separated base36 segments.
// Anything else is returned unchanged.
func CompactRID(rid string) string {
	rid = strings.TrimSpace(rid)
	parts := strings.Split(rid, ":")
	if len(parts) != 3 {
		return rid
	}
	for i, part := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return rid
		}
		parts[i] = strconv.FormatInt(n, 36)
	}
	return strings.Join(parts, ".")
}
