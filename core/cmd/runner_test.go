package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/postbot/core/config"
	coretelegram "github.com/m3rciful/postbot/core/telegram"
)

type carrier struct{ cfg *coreconfig.Config }

func (c carrier) CoreConfig() *coreconfig.Config { return c.cfg }

type fakeApp struct {
	tasks  []Task
	closed bool
}

func (a *fakeApp) TelegramRunOptions() (coretelegram.RunOptions, error) {
	return coretelegram.RunOptions{}, nil
}
func (a *fakeApp) BackgroundTasks() []Task { return a.tasks }
func (a *fakeApp) Close() error { a.closed = true; return nil }

func baseOptions(app *fakeApp, cfg *coreconfig.Config) Options {
	return Options{
		ConfigEnvVar:   "POSTBOT_TEST_CONFIG",
		LoadConfig:     func(string) (ConfigCarrier, error) { return carrier{cfg: cfg}, nil },
		Bootstrap:      func(ConfigCarrier) (TelegramApp, error) { return app, nil },
		ShutdownLogger: func() error { return nil },
	}
}

func TestRunStopsBotWhenTaskFails(t *testing.T) {
	app := &fakeApp{tasks: []Task{{
		Name: "health",
		Run:  func(context.Context) error { return errors.New("listen failed") },
	}}}
	opts := baseOptions(app, &coreconfig.Config{})
	botStopped := false
	opts.RunTelegram = func(ctx context.Context, o coretelegram.RunOptions) error {
		require.NoError(t, o.OnStart(ctx, coretelegram.Runtime{}))
		<-ctx.Done()
		botStopped = true
		return nil
	}

	err := Run(opts)
	require.ErrorContains(t, err, "health: listen failed")
	require.True(t, botStopped)
	require.True(t, app.closed)
}

func TestRunBotExitCancelsTasks(t *testing.T) {
	taskStopped := false
	app := &fakeApp{tasks: []Task{{
		Name: "keepalive",
		Run: func(ctx context.Context) error {
			<-ctx.Done()
			taskStopped = true
			return ctx.Err()
		},
	}}}
	opts := baseOptions(app, &coreconfig.Config{})
	opts.RunTelegram = func(context.Context, coretelegram.RunOptions) error { return nil }

	require.NoError(t, Run(opts))
	require.True(t, taskStopped)
}

func TestRunRejectsMissingCoreConfig(t *testing.T) {
	opts := baseOptions(&fakeApp{}, nil)
	require.ErrorContains(t, Run(opts), "missing core configuration")
}

func TestRunPropagatesLoadError(t *testing.T) {
	opts := baseOptions(&fakeApp{}, nil)
	opts.LoadConfig = func(string) (ConfigCarrier, error) {
		return nil, coreconfig.Missing("BOT_TOKEN")
	}
	err := Run(opts)
	require.ErrorIs(t, err, coreconfig.ErrConfigurationMissing)
}

func TestResolveConfigPath(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(existing, []byte("{}"), 0o600))

	p, err := resolveConfigPath(Options{ConfigEnvVar: "POSTBOT_TEST_CONFIG", DefaultConfigPath: existing})
	require.NoError(t, err)
	require.Equal(t, existing, p)

	p, err = resolveConfigPath(Options{ConfigEnvVar: "POSTBOT_TEST_CONFIG", DefaultConfigPath: filepath.Join(dir, "nope.yaml")})
	require.NoError(t, err)
	require.Empty(t, p)

	t.Setenv("POSTBOT_TEST_CONFIG", "/etc/postbot.yaml")
	p, err = resolveConfigPath(Options{ConfigEnvVar: "POSTBOT_TEST_CONFIG"})
	require.NoError(t, err)
	require.Equal(t, "/etc/postbot.yaml", p)
}
