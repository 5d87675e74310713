package logger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/m3rciful/postbot/core/buildinfo"
	coreconfig "github.com/m3rciful/postbot/core/config"
)

var (
	initOnce   sync.Once
	shutdownMu sync.Mutex
	shutdown   bool

	logWriter  *asyncWriter
	logClosers []io.Closer

	levelVar slog.LevelVar

	debugSampler  = newRatioSampler(1, 50)
	traceOverride bool

	// L is the base logger. Component loggers below are derived from it.
	L *slog.Logger

	// DB logs connection pool events.
	DB *slog.Logger
	// MIG logs schema migrations.
	MIG *slog.Logger
	// TG logs Telegram transport events.
	TG *slog.Logger
	// TWire logs Telegram wiring steps.
	TWire *slog.Logger
	// Store logs post configuration reads and writes.
	Store *slog.Logger
	// Conv logs conversation transitions.
	Conv *slog.Logger
	// Tick logs keep-alive ticks.
	Tick *slog.Logger
	// HTTP logs the liveness endpoint.
	HTTP *slog.Logger
)

func init() {
	wireComponents(slog.Default())
}

// InitLogger configures the global structured logger. Only the first call has an effect.
func InitLogger(cfg *coreconfig.Config) error {
	var initErr error
	initOnce.Do(func() {
		levelVar.Set(selectLevel(cfg))
		debugSampler.Set(parseDebugSample(cfg))
		traceOverride = isTruthy(os.Getenv("TRACE")) || isTruthy(os.Getenv("LOG_TRACE"))

		outputs, closers, err := buildOutputs(cfg)
		if err != nil {
			initErr = err
			return
		}
		logClosers = closers
		logWriter = newAsyncWriter(outputs, 64*1024)

		base := slog.New(newStructuredHandler(handlerConfig{
			level:    &levelVar,
			writer:   logWriter,
			format:   selectFormat(cfg),
			keyOrder: selectKeyOrder(cfg),
		}))
		slog.SetDefault(base)
		wireComponents(base)
		logStartup(cfg)
	})
	return initErr
}

func wireComponents(base *slog.Logger) {
	L = base
	DB = base.With("component", "db")
	MIG = base.With("component", "db.migrate")
	TG = base.With("component", "tg")
	TWire = base.With("component", "tg.wire")
	Store = base.With("component", "store")
	Conv = base.With("component", "conversation")
	Tick = base.With("component", "keepalive")
	HTTP = base.With("component", "health")
}

func logStartup(cfg *coreconfig.Config) {
	L.LogAttrs(context.Background(), slog.LevelInfo, "startup",
		slog.String("component", "app"),
		slog.String("event", "startup"),
		slog.String("go_version", runtime.Version()),
		slog.String("build_commit", buildinfo.Commit),
		slog.String("build_time", buildinfo.Date),
		slog.String("cfg_profile", selectProfile(cfg)),
	)
}

// Shutdown flushes buffered output and closes file sinks.
func Shutdown() error {
	shutdownMu.Lock()
	defer shutdownMu.Unlock()
	if shutdown {
		return nil
	}
	shutdown = true

	var errs []error
	if logWriter != nil {
		errs = append(errs, logWriter.Flush(), logWriter.Close())
	}
	for _, c := range logClosers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

func selectFormat(cfg *coreconfig.Config) logFormat {
	if cfg == nil {
		return formatJSON
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Logging.Format)) {
	case "kv", "text", "pretty":
		return formatKV
	case "json":
		return formatJSON
	}
	switch selectProfile(cfg) {
	case "debug", "dev":
		return formatKV
	}
	return formatJSON
}

func selectKeyOrder(cfg *coreconfig.Config) []string {
	var raw string
	if cfg != nil {
		raw = strings.TrimSpace(cfg.Logging.KeysOrder)
	}
	if raw == "" || raw == "default" {
		return append([]string(nil), defaultKeyOrder...)
	}
	var order []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			order = append(order, p)
		}
	}
	if len(order) == 0 {
		return append([]string(nil), defaultKeyOrder...)
	}
	return order
}

func selectLevel(cfg *coreconfig.Config) slog.Level {
	if cfg == nil {
		return slog.LevelInfo
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Logging.Level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// buildOutputs always writes to stdout; a log file is added when both dir and
// file name are configured. A file that cannot be opened is reported on stderr
// and skipped.
func buildOutputs(cfg *coreconfig.Config) ([]io.Writer, []io.Closer, error) {
	writers := []io.Writer{os.Stdout}
	if cfg == nil {
		return writers, nil, nil
	}
	dir := strings.TrimSpace(cfg.Logging.Dir)
	file := strings.TrimSpace(cfg.Logging.BotFile)
	if dir == "" || file == "" {
		return writers, nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		slog.Default().Warn("logger: create log dir failed", "dir", dir, "err", err)
		return writers, nil, nil
	}
	path := filepath.Join(dir, file)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		slog.Default().Warn("logger: open log file failed", "path", path, "err", err)
		return writers, nil, nil
	}
	return append(writers, f), []io.Closer{f}, nil
}

func selectProfile(cfg *coreconfig.Config) string {
	if cfg == nil {
		return "prod"
	}
	if profile := strings.TrimSpace(cfg.Logging.Profile); profile != "" {
		return strings.ToLower(profile)
	}
	return "prod"
}

func parseDebugSample(cfg *coreconfig.Config) (int, int) {
	if cfg == nil || strings.TrimSpace(cfg.Logging.DebugSample) == "" {
		return 1, 50
	}
	num, den := parseRatioSpec(cfg.Logging.DebugSample)
	if num == 0 && den == 0 {
		return 0, 0
	}
	if num <= 0 || den <= 0 {
		return 1, 50
	}
	return num, den
}

func isTruthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// ShouldSampleDebug reports whether a high-volume debug line should be written.
func ShouldSampleDebug() bool {
	if traceOverride {
		return true
	}
	return debugSampler.Allow()
}

// Background returns context.Background().
func Background() context.Context {
	return context.Background()
}

// LogEvent writes an event line, falling back to the context logger and then L.
func LogEvent(ctx context.Context, logg *slog.Logger, level slog.Level, event string, attrs ...slog.Attr) {
	if logg == nil {
		logg = FromContext(ctx)
	}
	if event != "" {
		attrs = append([]slog.Attr{slog.String("event", event)}, attrs...)
	}
	logg.LogAttrs(ctx, level, "", attrs...)
}

// Component returns L scoped to the given component name.
func Component(name string) *slog.Logger {
	if name = strings.TrimSpace(name); name == "" {
		return L
	}
	return L.With("component", name)
}

// Event logs an event for the named component.
func Event(ctx context.Context, component string, level slog.Level, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), level, event, attrs...)
}

// Debug logs a debug-level event for the given component.
func Debug(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelDebug, event, attrs...)
}

// Info logs an info-level event for the given component.
func Info(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelInfo, event, attrs...)
}

// Warn logs a warn-level event for the given component.
func Warn(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelWarn, event, attrs...)
}

// Error logs an error-level event for the given component.
func Error(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelError, event, attrs...)
}
