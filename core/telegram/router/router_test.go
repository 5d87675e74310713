package router

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	tg "github.com/m3rciful/postbot/core/telegram"
	"github.com/m3rciful/postbot/core/telegram/commands"
	"github.com/m3rciful/postbot/core/telegram/teletest"

	tele "gopkg.in/telebot.v4"
)

type fakeFSM struct {
	handled []string
}

func (f *fakeFSM) HandlePending(c tele.Context) error {
	f.handled = append(f.handled, c.Text())
	return nil
}

func textHandler(t *testing.T, fsm FSM, reg *tg.Registry, opts TextOptions) tele.HandlerFunc {
	t.Helper()
	routes := TextRoutes(fsm, reg, opts)
	require.Len(t, routes, 1)
	require.Equal(t, tele.OnText, routes[0].Endpoint)
	return routes[0].Handler
}

func TestTextRoutesLabelPreemptsPending(t *testing.T) {
	reg := tg.NewRegistry()
	var labelHits int
	require.NoError(t, reg.RegisterText("Menu", "menu", func(tele.Context) error {
		labelHits++
		return nil
	}))
	fsm := &fakeFSM{}
	h := textHandler(t, fsm, reg, TextOptions{})

	require.NoError(t, h(teletest.NewText(1, 1, "Menu")))
	require.Equal(t, 1, labelHits)
	require.Empty(t, fsm.handled)

	require.NoError(t, h(teletest.NewText(2, 1, "hello")))
	require.Equal(t, []string{"hello"}, fsm.handled)
}

func TestTextRoutesSendsEveryOtherTextToFSM(t *testing.T) {
	fsm := &fakeFSM{}
	h := textHandler(t, fsm, tg.NewRegistry(), TextOptions{UnknownText: func(tele.Context) error {
		t.Fatal("fallback must not run while an FSM is wired")
		return nil
	}})
	require.NoError(t, h(teletest.NewText(1, 3, "random")))
	require.NoError(t, h(teletest.NewText(2, 4, "other user")))
	require.Equal(t, []string{"random", "other user"}, fsm.handled)
}

func TestTextRoutesSkipsUnregisteredCommands(t *testing.T) {
	fsm := &fakeFSM{}
	called := false
	h := textHandler(t, fsm, tg.NewRegistry(), TextOptions{UnknownText: func(tele.Context) error {
		called = true
		return nil
	}})

	c := teletest.NewText(1, 1, "/help")
	require.NoError(t, h(c))
	require.NoError(t, h(teletest.NewText(2, 1, "/settings@postbot now")))
	require.Empty(t, fsm.handled)
	require.False(t, called)
	require.Empty(t, c.Sent())

	require.NoError(t, h(teletest.NewText(3, 1, "a/b path")))
	require.NoError(t, h(teletest.NewText(4, 1, "/tmp/cat.png")))
	require.Equal(t, []string{"a/b path", "/tmp/cat.png"}, fsm.handled)
}

func TestIsCommand(t *testing.T) {
	require.False(t, isCommand(nil))
	require.True(t, isCommand(&tele.Message{Text: "/start"}))
	require.True(t, isCommand(&tele.Message{
		Text:     "x",
		Entities: tele.Entities{{Type: tele.EntityCommand, Offset: 0, Length: 1}},
	}))
	require.False(t, isCommand(&tele.Message{
		Text:     "see /help",
		Entities: tele.Entities{{Type: tele.EntityCommand, Offset: 4, Length: 5}},
	}))
	require.False(t, isCommand(&tele.Message{
		Text:     "/tmp/cat.png",
		Entities: tele.Entities{{Type: tele.EntityCommand, Offset: 0, Length: 4}},
	}))
}

func TestTextRoutesUnknownFallback(t *testing.T) {
	called := false
	h := textHandler(t, nil, nil, TextOptions{UnknownText: func(tele.Context) error {
		called = true
		return nil
	}})
	require.NoError(t, h(teletest.NewText(1, 1, "x")))
	require.True(t, called)
}

func TestCommandRoutesWrapsAdminOnly(t *testing.T) {
	reg := tg.NewRegistry()
	var calls int
	reg.RegisterCommand("/secret", commands.Command{
		Description: "secret",
		AdminOnly:   true,
		Handler:     func(tele.Context) error { calls++; return nil },
	})
	reg.RegisterCommand("/open", commands.Command{
		Description: "open",
		Handler:     func(tele.Context) error { calls++; return nil },
	})

	routes := CommandRoutes(reg, CommandRouteOptions{AdminID: 99})
	require.Len(t, routes, 2)
	byName := map[string]tele.HandlerFunc{}
	for _, r := range routes {
		byName[r.Endpoint.(string)] = r.Handler
	}

	require.NoError(t, byName["/secret"](teletest.NewText(1, 5, "/secret")))
	require.Zero(t, calls)
	require.NoError(t, byName["/secret"](teletest.NewText(2, 99, "/secret")))
	require.Equal(t, 1, calls)
	require.NoError(t, byName["/open"](teletest.NewText(3, 5, "/open")))
	require.Equal(t, 2, calls)
}

type codedErr struct{}

func (codedErr) Error() string { return "coded" }
func (codedErr) Code() string  { return "storage error" }

type plainErr struct{}

func (*plainErr) Error() string { return "plain" }

func TestDeriveErrorCode(t *testing.T) {
	require.Empty(t, deriveErrorCode(nil))
	require.Equal(t, "STORAGE_ERROR", deriveErrorCode(codedErr{}))
	require.Equal(t, "STORAGE_ERROR", deriveErrorCode(errors.Join(errors.New("x"), codedErr{})))
	require.Equal(t, "PLAINERR", deriveErrorCode(&plainErr{}))
}

func TestNormalizeHandlerName(t *testing.T) {
	require.Equal(t, "start", normalizeHandlerName("/Start"))
	require.Equal(t, "menu_show_all", normalizeHandlerName(" menu show all "))
	require.Equal(t, "unknown", normalizeHandlerName(""))
}
