// Package app wires the post configuration bot together.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	corebootstrap "github.com/m3rciful/postbot/core/bootstrap"
	corecmd "github.com/m3rciful/postbot/core/cmd"
	"github.com/m3rciful/postbot/core/logger"
	tg "github.com/m3rciful/postbot/core/telegram"
	"github.com/m3rciful/postbot/core/telegram/router"
	"github.com/m3rciful/postbot/core/telegram/state"
	"github.com/m3rciful/postbot/internal/bot"
	"github.com/m3rciful/postbot/internal/conversation"
	"github.com/m3rciful/postbot/internal/health"
	"github.com/m3rciful/postbot/internal/keepalive"
	"github.com/m3rciful/postbot/internal/localization"
	"github.com/m3rciful/postbot/internal/postconfig"
	"github.com/m3rciful/postbot/migrations"
)

// App holds the running components.
type App struct {
	cfg      *Config
	db       *sqlx.DB
	store    *postconfig.SQLStore
	sessions state.Manager
	bot      *bot.Bot
	ticker   *keepalive.Ticker
	health   *health.Server
}

// Bootstrap sets up logging and the database, creates the configuration
// record if needed and builds the bot.
func Bootstrap(cfg *Config) (*App, error) {
	return bootstrap(cfg, corebootstrap.Options{})
}

func bootstrap(cfg *Config, opts corebootstrap.Options) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: nil config")
	}
	opts.Config = &cfg.Config
	opts.Database = cfg.Database
	opts.Migrations = migrations.FS

	res, err := corebootstrap.Run(opts)
	if err != nil {
		return nil, err
	}

	a, err := build(cfg, res.DB)
	if err != nil {
		_ = res.DB.Close()
		return nil, err
	}
	return a, nil
}

func build(cfg *Config, db *sqlx.DB) (*App, error) {
	store := postconfig.NewSQLStore(db)
	if err := store.Initialize(context.Background()); err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	texts, err := localization.New()
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	sessions := state.NewMemoryManager()
	conv, err := conversation.New(conversation.Options{
		Store:     store,
		Sessions:  sessions,
		Localizer: texts,
		Language:  cfg.Language,
	})
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	b, err := bot.New(conv, tg.NewRegistry())
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	a := &App{
		cfg:      cfg,
		db:       db,
		store:    store,
		sessions: sessions,
		bot:      b,
		ticker:   keepalive.New(cfg.KeepAlive, nil),
	}
	if cfg.Health.Enabled {
		a.health = health.New(cfg.Health, db)
	}
	return a, nil
}

// TelegramRunOptions builds the middleware chain and routes.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	core := &a.cfg.Config
	return tg.RunOptions{
		Config:      core,
		Registry:    a.bot.Registry(),
		Middlewares: tg.DefaultMiddlewares(core, a.bot.RateLimited),
		Routes: a.bot.Routes(router.CommandRouteOptions{
			AdminID: core.Telegram.AdminID,
		}),
		OnStop: func(ctx context.Context, _ tg.Runtime) error {
			logger.Info(ctx, "app", "sessions.dropped", slog.Int("sessions", a.sessions.Len()))
			return nil
		},
	}, nil
}

// BackgroundTasks returns the keep-alive ticker and, when enabled, the
// liveness endpoint.
func (a *App) BackgroundTasks() []corecmd.Task {
	tasks := []corecmd.Task{{Name: "keepalive", Run: a.ticker.Run}}
	if a.health != nil {
		tasks = append(tasks, corecmd.Task{Name: "health", Run: a.health.Serve})
	}
	return tasks
}

// Close releases the database.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
