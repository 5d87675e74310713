// Package keepalive runs a periodic no-op tick that proves the process is
// still scheduling work.
package keepalive

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/m3rciful/postbot/core/logger"
)

// DefaultInterval is used when Config.Interval is not positive.
const DefaultInterval = 10 * time.Minute

var ticksTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "postbot_keepalive_ticks_total",
	Help: "Keep-alive ticks since start.",
})

// Config controls the tick period.
type Config struct {
	Interval time.Duration `yaml:"interval" envconfig:"KEEPALIVE_INTERVAL"`
}

// Ticker fires the keep-alive job. It never touches application state.
type Ticker struct {
	interval time.Duration
	ticks    atomic.Int64
	onTick   func(time.Time)
}

// New builds a Ticker. onTick, when set, runs after every tick.
func New(cfg Config, onTick func(time.Time)) *Ticker {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Ticker{interval: interval, onTick: onTick}
}

// Interval returns the effective tick period.
func (t *Ticker) Interval() time.Duration { return t.interval }

// Ticks reports how many ticks have run.
func (t *Ticker) Ticks() int64 { return t.ticks.Load() }

// Run fires the first tick immediately, then every interval, until ctx is
// done.
func (t *Ticker) Run(ctx context.Context) error {
	s, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("keepalive: scheduler: %w", err)
	}
	if _, err := s.NewJob(
		gocron.DurationJob(t.interval),
		gocron.NewTask(t.tick),
		gocron.WithName("keepalive"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	); err != nil {
		_ = s.Shutdown()
		return fmt.Errorf("keepalive: job: %w", err)
	}

	s.Start()
	logger.Tick.Info("keepalive started",
		slog.String("event", "keepalive.start"),
		slog.Duration("interval", t.interval),
	)

	<-ctx.Done()
	if err := s.Shutdown(); err != nil {
		return fmt.Errorf("keepalive: shutdown: %w", err)
	}
	logger.Tick.Info("keepalive stopped",
		slog.String("event", "keepalive.stop"),
		slog.Int64("ticks", t.Ticks()),
	)
	return nil
}

func (t *Ticker) tick() {
	now := time.Now()
	n := t.ticks.Add(1)
	ticksTotal.Inc()
	logger.Tick.Info("keepalive tick",
		slog.String("event", "keepalive.tick"),
		slog.Time("at", now.UTC()),
		slog.Int64("n", n),
	)
	if t.onTick != nil {
		t.onTick(now)
	}
}
