package middleware

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	tghelpers "github.com/m3rciful/postbot/core/telegram/helpers"
	"github.com/m3rciful/postbot/core/telegram/teletest"

	tele "gopkg.in/telebot.v4"
)

func TestRecoverMiddlewareSwallowsPanic(t *testing.T) {
	h := RecoverMiddleware(func(tele.Context) error { panic("boom") })
	require.NotPanics(t, func() {
		require.NoError(t, h(teletest.NewText(1, 1, "x")))
	})
}

func TestRecoverMiddlewarePassesErrors(t *testing.T) {
	want := errors.New("handler failed")
	h := RecoverMiddleware(func(tele.Context) error { return want })
	require.ErrorIs(t, h(teletest.NewText(1, 1, "x")), want)
}

func TestAdminOnlyMiddleware(t *testing.T) {
	calls, rejected := 0, 0
	next := func(tele.Context) error { calls++; return nil }
	h := AdminOnlyMiddleware(AdminOptions{
		AdminID:  10,
		OnReject: func(tele.Context) error { rejected++; return nil },
	})(next)

	require.NoError(t, h(teletest.NewText(1, 11, "x")))
	require.NoError(t, h(teletest.NewText(2, 10, "x")))
	require.Equal(t, 1, calls)
	require.Equal(t, 1, rejected)

	open := AdminOnlyMiddleware(AdminOptions{})(next)
	require.NoError(t, open(teletest.NewText(3, 11, "x")))
	require.Equal(t, 2, calls)
}

func TestRateLimitMiddleware(t *testing.T) {
	calls, limited := 0, 0
	h := RateLimitMiddleware(RateLimitOptions{
		Interval:  time.Hour,
		OnLimited: func(tele.Context) error { limited++; return nil },
	})(func(tele.Context) error { calls++; return nil })

	require.NoError(t, h(teletest.NewText(1, 1, "a")))
	require.NoError(t, h(teletest.NewText(2, 1, "b")))
	require.NoError(t, h(teletest.NewText(3, 2, "c")))
	require.Equal(t, 2, calls)
	require.Equal(t, 1, limited)

	excluded := RateLimitMiddleware(RateLimitOptions{
		Interval: time.Hour,
		Exclude:  map[string]struct{}{"message": {}},
	})(func(tele.Context) error { calls++; return nil })
	require.NoError(t, excluded(teletest.NewText(4, 1, "a")))
	require.NoError(t, excluded(teletest.NewText(5, 1, "b")))
	require.Equal(t, 4, calls)
}

func TestLoggerAndMetricsMiddleware(t *testing.T) {
	c := teletest.NewText(77, 5, "hello")
	h := LoggerMiddleware(MessageMetricsMiddleware(func(c tele.Context) error {
		return tghelpers.SendText(c, "reply")
	}))
	require.NoError(t, h(c))

	require.Equal(t, "77:5:5", c.Get("rid"))
	ctx, ok := tghelpers.ContextFrom(c)
	require.True(t, ok)
	require.NotNil(t, ctx)
	msgs, kb := tghelpers.Counters(c)
	require.Equal(t, 1, msgs)
	require.False(t, kb)
	require.Equal(t, []string{"reply"}, c.Texts())
}
