// Package health serves the liveness endpoint and Prometheus metrics.
package health

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/m3rciful/postbot/core/logger"
)

// DefaultListen is the address used when Config.Listen is empty.
const DefaultListen = ":8080"

const shutdownTimeout = 5 * time.Second

// Config controls the HTTP listener.
type Config struct {
	Enabled bool   `yaml:"enabled" envconfig:"HEALTH_ENABLED"`
	Listen  string `yaml:"listen" envconfig:"HEALTH_LISTEN"`
}

// Pinger checks a dependency, typically the database.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Server answers liveness probes.
type Server struct {
	listen string
	db     Pinger
}

// New builds a Server. db may be nil, in which case /healthz only reports
// that the process is up.
func New(cfg Config, db Pinger) *Server {
	listen := cfg.Listen
	if listen == "" {
		listen = DefaultListen
	}
	return &Server{listen: listen, db: db}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Get("/", s.ok)
	r.Get("/healthz", s.healthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

func (s *Server) ok(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			logger.HTTP.LogAttrs(r.Context(), slog.LevelWarn, "health.db_unreachable",
				slog.String("err", err.Error()),
			)
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
	}
	s.ok(w, r)
}

// Serve listens until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.listen)
	if err != nil {
		return fmt.Errorf("health: listen %s: %w", s.listen, err)
	}
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	logger.HTTP.Info("health listening",
		slog.String("event", "health.listen"),
		slog.String("addr", ln.Addr().String()),
	)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("health: serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("health: shutdown: %w", err)
	}
	logger.HTTP.Info("health stopped", slog.String("event", "health.stop"))
	return nil
}
