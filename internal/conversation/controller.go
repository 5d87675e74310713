// Package conversation turns a user's text messages into edits of the post
// configuration.
//
// Each user is either idle or awaiting the value of one field. A menu label
// is always handled as a menu selection, even while a field is pending, so
// picking another item abandons the pending input instead of storing the
// label. Any other text is stored verbatim in the pending field.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/m3rciful/postbot/core/logger"
	"github.com/m3rciful/postbot/core/telegram/state"
	"github.com/m3rciful/postbot/internal/localization"
	"github.com/m3rciful/postbot/internal/postconfig"
)

// StateAwaitingField marks a session whose next text fills a field.
const StateAwaitingField state.State = "awaiting_field"

const tempField = "field"

// Action tells what an event did.
type Action string

const (
	ActionStart     Action = "start"
	ActionConfigure Action = "configure"
	ActionPublish   Action = "publish"
	ActionShowAll   Action = "show_all"
	ActionCommit    Action = "commit"
	ActionCancel    Action = "cancel"
	ActionIgnore    Action = "ignore"
	ActionFailed    Action = "failed"
)

// Response is what the bot should send back, in order.
type Response struct {
	Action   Action
	Messages []string
	// ShowMenu asks for the menu keyboard on the last message.
	ShowMenu bool
}

// Options wires a Controller.
type Options struct {
	Store     postconfig.Store
	Sessions  state.Manager
	Localizer *localization.Localizer
	Language  string
}

// Controller runs the conversation for every user against one shared store.
// Events of one user are handled one at a time; different users may run
// concurrently.
type Controller struct {
	store    postconfig.Store
	sessions state.Manager
	texts    *localization.Localizer
	lang     string
	menu     []MenuItem
}

// New builds a Controller. An empty or unknown Language uses the default.
func New(opts Options) (*Controller, error) {
	if opts.Store == nil {
		return nil, errors.New("conversation: nil store")
	}
	if opts.Localizer == nil {
		return nil, errors.New("conversation: nil localizer")
	}
	if opts.Sessions == nil {
		opts.Sessions = state.NewMemoryManager()
	}
	lang := strings.ToLower(strings.TrimSpace(opts.Language))
	if !opts.Localizer.Has(lang) {
		lang = localization.DefaultLanguage
	}
	return &Controller{
		store:    opts.Store,
		sessions: opts.Sessions,
		texts:    opts.Localizer,
		lang:     lang,
		menu:     buildMenu(opts.Localizer, lang),
	}, nil
}

// Menu returns the menu items in display order.
func (c *Controller) Menu() []MenuItem {
	return append([]MenuItem(nil), c.menu...)
}

// MenuLabels returns the button labels in display order.
func (c *Controller) MenuLabels() []string {
	labels := make([]string, len(c.menu))
	for i, it := range c.menu {
		labels[i] = it.Label
	}
	return labels
}

// Text returns a localized text in the controller's language.
func (c *Controller) Text(key string) string {
	return c.texts.Get(c.lang, key)
}

// InProgress reports whether userID has a field pending.
func (c *Controller) InProgress(userID int64) bool {
	return c.sessions.InProgress(userID)
}

// Pending returns the field userID is filling, if any.
func (c *Controller) Pending(userID int64) (postconfig.Field, bool) {
	return c.pending(userID)
}

// Start greets the user with the menu. The session is left as it is.
func (c *Controller) Start(ctx context.Context, userID int64) Response {
	unlock := c.sessions.Lock(userID)
	defer unlock()
	return c.done(ctx, Response{
		Action:   ActionStart,
		Messages: []string{c.Text("start.choose")},
		ShowMenu: true,
	})
}

// Cancel drops a pending field without writing anything.
func (c *Controller) Cancel(ctx context.Context, userID int64) Response {
	unlock := c.sessions.Lock(userID)
	defer unlock()
	key := "cancel.idle"
	if c.sessions.InProgress(userID) {
		key = "cancel.done"
	}
	c.sessions.Clear(userID)
	return c.done(ctx, Response{
		Action:   ActionCancel,
		Messages: []string{c.Text(key)},
		ShowMenu: true,
	})
}

// Handle processes one text message from userID. A non-nil error is always a
// *postconfig.StorageError; the returned Response then carries the retry text
// and the session is left unchanged.
func (c *Controller) Handle(ctx context.Context, userID int64, text string) (Response, error) {
	unlock := c.sessions.Lock(userID)
	defer unlock()

	if item, ok := match(c.menu, text); ok {
		switch item.kind {
		case kindConfigure:
			return c.configure(ctx, userID, item.field), nil
		case kindPublish:
			return c.publish(ctx, userID)
		case kindShowAll:
			return c.showAll(ctx)
		}
	}

	if f, ok := c.pending(userID); ok {
		return c.commit(ctx, userID, f, text)
	}
	return c.done(ctx, Response{Action: ActionIgnore}), nil
}

func (c *Controller) configure(ctx context.Context, userID int64, f postconfig.Field) Response {
	c.sessions.SetState(userID, StateAwaitingField)
	c.sessions.SetTemp(userID, tempField, f)
	return c.done(ctx, Response{
		Action:   ActionConfigure,
		Messages: []string{c.Text("prompt." + f.String())},
	}, slog.String("field", f.String()))
}

func (c *Controller) publish(ctx context.Context, userID int64) (Response, error) {
	if err := c.store.Set(ctx, postconfig.FieldPublished, postconfig.Bool(true)); err != nil {
		return c.failed(ctx, err)
	}
	c.sessions.Clear(userID)
	commitsTotal.WithLabelValues(postconfig.FieldPublished.String()).Inc()
	return c.done(ctx, Response{
		Action:   ActionPublish,
		Messages: []string{c.Text("publish.now"), c.Text("publish.done")},
		ShowMenu: true,
	}), nil
}

func (c *Controller) showAll(ctx context.Context) (Response, error) {
	rec, err := c.store.GetAll(ctx)
	if err != nil {
		return c.failed(ctx, err)
	}
	return c.done(ctx, Response{
		Action:   ActionShowAll,
		Messages: []string{c.render(rec)},
		ShowMenu: true,
	}), nil
}

func (c *Controller) commit(ctx context.Context, userID int64, f postconfig.Field, text string) (Response, error) {
	if err := c.store.Set(ctx, f, postconfig.Text(text)); err != nil {
		return c.failed(ctx, err)
	}
	c.sessions.Clear(userID)
	commitsTotal.WithLabelValues(f.String()).Inc()
	return c.done(ctx, Response{
		Action:   ActionCommit,
		Messages: []string{c.texts.Format(c.lang, "commit.done", f.String(), text)},
		ShowMenu: true,
	}, slog.String("field", f.String())), nil
}

// render lists every field, one per line.
func (c *Controller) render(rec postconfig.Record) string {
	unset := c.Text("value.unset")
	show := func(key string, v postconfig.Value) string {
		s := unset
		if v.Valid {
			s = v.String()
		}
		return c.texts.Format(c.lang, key, s)
	}

	frequency := c.Text("show.frequency_unset")
	if rec.Frequency.Valid {
		frequency = c.texts.Format(c.lang, "show.frequency", rec.Frequency.String())
	}
	published := c.Text("value.no")
	if rec.Published {
		published = c.Text("value.yes")
	}
	return strings.Join([]string{
		show("show.message", rec.Message),
		show("show.image_path", rec.ImagePath),
		show("show.reaction", rec.Reaction),
		show("show.start_date", rec.StartDate),
		frequency,
		c.texts.Format(c.lang, "show.published", published),
	}, "\n")
}

// failed turns a store error into the retry reply. An invalid field can
// only come from a bug in this package, so it panics.
func (c *Controller) failed(ctx context.Context, err error) (Response, error) {
	if postconfig.IsInvalidField(err) {
		panic(err)
	}
	storageErrorsTotal.Inc()
	actionsTotal.WithLabelValues(string(ActionFailed)).Inc()
	logger.Conv.LogAttrs(ctx, slog.LevelError, "conversation.failed",
		slog.String("status", "fail"),
		slog.String("err", err.Error()),
	)
	return Response{
		Action:   ActionFailed,
		Messages: []string{c.Text("error.retry")},
	}, fmt.Errorf("conversation: %w", err)
}

func (c *Controller) done(ctx context.Context, r Response, attrs ...slog.Attr) Response {
	actionsTotal.WithLabelValues(string(r.Action)).Inc()
	level := slog.LevelInfo
	if r.Action == ActionIgnore {
		level = slog.LevelDebug
	}
	logger.Conv.LogAttrs(ctx, level, "conversation."+string(r.Action),
		append([]slog.Attr{slog.String("status", "ok")}, attrs...)...,
	)
	return r
}

func (c *Controller) pending(userID int64) (postconfig.Field, bool) {
	if !c.sessions.InProgress(userID) {
		return 0, false
	}
	v, ok := c.sessions.GetTemp(userID, tempField)
	if !ok {
		return 0, false
	}
	f, ok := v.(postconfig.Field)
	return f, ok
}
