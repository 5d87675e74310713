package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	coreconfig "github.com/m3rciful/postbot/core/config"
	"github.com/m3rciful/postbot/core/logger"
	coretelegram "github.com/m3rciful/postbot/core/telegram"
)

// ConfigCarrier exposes access to the embedded core configuration.
type ConfigCarrier interface {
	CoreConfig() *coreconfig.Config
}

// TelegramApp is the minimal interface required to run a Telegram bot.
type TelegramApp interface {
	TelegramRunOptions() (coretelegram.RunOptions, error)
}

// Task is a long-running job started next to the bot. Run must return once
// ctx is done.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// TaskProvider is implemented by apps that run background tasks.
type TaskProvider interface {
	BackgroundTasks() []Task
}

// Closer is implemented by apps holding resources to release after shutdown.
type Closer interface {
	Close() error
}

// Options describe how to load configuration, bootstrap the app, and run the bot.
type Options struct {
	ConfigEnvVar      string
	DefaultConfigPath string

	LoadConfig func(path string) (ConfigCarrier, error)
	Bootstrap  func(cfg ConfigCarrier) (TelegramApp, error)

	ShutdownLogger func() error
	RunTelegram    func(ctx context.Context, opts coretelegram.RunOptions) error
	// Context overrides the signal-bound root context.
	Context context.Context
}

// Run loads configuration, bootstraps the app, and runs the bot together
// with the app's background tasks. The first task to fail, or SIGINT or
// SIGTERM, stops all of them.
func Run(opts Options) error {
	if opts.LoadConfig == nil {
		return fmt.Errorf("cmd: LoadConfig is required")
	}
	if opts.Bootstrap == nil {
		return fmt.Errorf("cmd: Bootstrap is required")
	}

	cfgPath, err := resolveConfigPath(opts)
	if err != nil {
		return err
	}
	cfg, err := opts.LoadConfig(cfgPath)
	if err != nil {
		return fmt.Errorf("cmd: failed to load config: %w", err)
	}
	if cfg.CoreConfig() == nil {
		return fmt.Errorf("cmd: loaded config is missing core configuration")
	}

	startedAt := time.Now()
	application, err := opts.Bootstrap(cfg)
	if err != nil {
		return fmt.Errorf("cmd: bootstrap failed: %w", err)
	}

	shutdownLogger := opts.ShutdownLogger
	if shutdownLogger == nil {
		shutdownLogger = logger.Shutdown
	}
	defer func() {
		if err := shutdownLogger(); err != nil {
			fmt.Fprintf(os.Stderr, "logger shutdown error: %v\n", err)
		}
	}()
	if c, ok := application.(Closer); ok {
		defer func() {
			if err := c.Close(); err != nil {
				logger.L.Error("close failed", slog.String("event", "shutdown.close"), slog.String("err", err.Error()))
			}
		}()
	}

	runOpts, err := application.TelegramRunOptions()
	if err != nil {
		return fmt.Errorf("cmd: telegram options build failed: %w", err)
	}
	prevStart := runOpts.OnStart
	runOpts.OnStart = func(ctx context.Context, rt coretelegram.Runtime) error {
		if prevStart != nil {
			if err := prevStart(ctx, rt); err != nil {
				return err
			}
		}
		logger.Info(ctx, "app", "ready", slog.Duration("startup_duration", logger.Took(startedAt)))
		return nil
	}

	root := opts.Context
	if root == nil {
		root = context.Background()
	}
	ctx, cancel := signal.NotifyContext(root, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	runTelegram := opts.RunTelegram
	if runTelegram == nil {
		runTelegram = coretelegram.RunTelegram
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := runTelegram(gctx, runOpts); err != nil {
			return fmt.Errorf("telegram: %w", err)
		}
		// The bot returning ends the process even without an error.
		cancel()
		return nil
	})
	if tp, ok := application.(TaskProvider); ok {
		for _, task := range tp.BackgroundTasks() {
			if task.Run == nil {
				continue
			}
			g.Go(func() error {
				if err := task.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
					return fmt.Errorf("%s: %w", task.Name, err)
				}
				return nil
			})
		}
	}

	err = g.Wait()
	logger.Info(context.Background(), "app", "shutdown", slog.String("status", logger.Status(err)))
	return err
}

// resolveConfigPath returns the file named by the env var or the default.
// A missing default file is not an error: configuration then comes from the
// environment alone.
func resolveConfigPath(opts Options) (string, error) {
	env := opts.ConfigEnvVar
	if env == "" {
		env = "CONFIG_PATH"
	}
	if p := os.Getenv(env); p != "" {
		return p, nil
	}
	if opts.DefaultConfigPath == "" {
		return "", nil
	}
	if _, err := os.Stat(opts.DefaultConfigPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("cmd: config path: %w", err)
	}
	return opts.DefaultConfigPath, nil
}
