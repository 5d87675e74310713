package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/m3rciful/postbot/core/logger"
	"github.com/m3rciful/postbot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

// TextRoute is a handler bound to an exact message text, such as a reply
// keyboard label.
type TextRoute struct {
	Name    string
	Handler tele.HandlerFunc
}

// Registry holds bot commands and exact-text routes.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]commands.Command
	texts    map[string]TextRoute
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]commands.Command),
		texts:    make(map[string]TextRoute),
	}
}

// RegisterCommand adds a new command. Invalid and duplicate names are logged and skipped.
func (r *Registry) RegisterCommand(name string, cmd commands.Command) {
	reason := ""
	switch {
	case name == "" || cmd.Handler == nil || cmd.Description == "":
		reason = "invalid"
	case name[0] != '/':
		reason = "no_slash_prefix"
	}
	if reason != "" {
		logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, "register.command.skip",
			slog.String("name", name),
			slog.String("reason", reason),
		)
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.commands[name]; exists {
		logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, "register.command.duplicate",
			slog.String("name", name),
		)
		return
	}
	r.commands[name] = cmd
}

// ListCommands returns commands sorted by name, optionally hiding hidden and admin-only ones.
func (r *Registry) ListCommands(visibleOnly bool) []tele.Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var list []tele.Command
	for name, meta := range r.commands {
		if visibleOnly && (meta.Hidden || meta.AdminOnly) {
			continue
		}
		list = append(list, tele.Command{Text: strings.TrimPrefix(name, "/"), Description: meta.Description})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Text < list[j].Text })
	return list
}

// LookupCommand finds a command by name or alias and returns its canonical key.
func (r *Registry) LookupCommand(name string) (string, commands.Command, bool) {
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if cmd, ok := r.commands[name]; ok {
		return name, cmd, true
	}
	for key, cmd := range r.commands {
		for _, alias := range cmd.Aliases {
			if alias == name || "/"+alias == name {
				return key, cmd, true
			}
		}
	}
	return "", commands.Command{}, false
}

// Commands returns a copy of all registered commands.
func (r *Registry) Commands() map[string]commands.Command {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]commands.Command, len(r.commands))
	for k, v := range r.commands {
		out[k] = v
	}
	return out
}

// RegisterText binds an exact message text to a handler.
func (r *Registry) RegisterText(text, name string, h tele.HandlerFunc) error {
	text = strings.TrimSpace(text)
	if text == "" || h == nil {
		return fmt.Errorf("invalid text route %q", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.texts[text]; exists {
		return fmt.Errorf("text route already registered: %q", text)
	}
	r.texts[text] = TextRoute{Name: name, Handler: h}
	return nil
}

// LookupText returns the route bound to text. Surrounding spaces are ignored.
func (r *Registry) LookupText(text string) (TextRoute, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	route, ok := r.texts[strings.TrimSpace(text)]
	return route, ok
}

// TextCount reports how many text routes are registered.
func (r *Registry) TextCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.texts)
}

// InitBotCommands publishes the visible commands to the Telegram command menu.
func InitBotCommands(bot *tele.Bot, reg *Registry) {
	list := reg.ListCommands(true)
	if len(list) == 0 {
		return
	}
	if err := bot.SetCommands(list); err != nil {
		logger.TWire.LogAttrs(context.Background(), slog.LevelError, "register.commands.set_failed",
			slog.String("err", err.Error()),
		)
	}
}
