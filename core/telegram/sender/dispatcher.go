// Package sender runs outbound Bot API calls off the update goroutine.
// Jobs sharing a key, normally a chat id, run on the same worker in the
// order they were queued.
package sender

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"regexp"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/m3rciful/postbot/core/logger"

	tele "gopkg.in/telebot.v4"
)

// ErrQueueClosed is returned when a job is queued after Close.
var ErrQueueClosed = errors.New("telegram sender: queue closed")

var (
	tokenRe = regexp.MustCompile(`bot[0-9]+:[A-Za-z0-9_-]+`)

	sendsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postbot_tg_sends_total",
		Help: "Outbound Bot API calls, by outcome.",
	}, []string{"outcome"})
)

// Options controls the behaviour of the outbound dispatcher.
type Options struct {
	Workers   int
	QueueSize int
}

type job struct {
	ctx    context.Context
	action string
	run    func() error
}

// Dispatcher executes queued sends once each. Failures are logged, not retried.
type Dispatcher struct {
	mu     sync.RWMutex
	closed bool
	queues []chan job
	wg     sync.WaitGroup
	errs   atomic.Uint64
}

// NewDispatcher starts the workers. Zero options get defaults.
func NewDispatcher(opts Options) *Dispatcher {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	d := &Dispatcher{queues: make([]chan job, opts.Workers)}
	d.wg.Add(opts.Workers)
	for i := range d.queues {
		q := make(chan job, opts.QueueSize)
		d.queues[i] = q
		go d.worker(q)
	}
	return d
}

// Enqueue queues run on the worker owning key. It blocks while that
// worker's queue is full.
func (d *Dispatcher) Enqueue(ctx context.Context, key int64, action string, run func() error) error {
	if run == nil {
		return errors.New("telegram sender: nil run function")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrQueueClosed
	}
	d.queues[uint64(key)%uint64(len(d.queues))] <- job{ctx: ctx, action: action, run: run}
	return nil
}

// ErrorCount returns the number of failed jobs.
func (d *Dispatcher) ErrorCount() uint64 {
	return d.errs.Load()
}

// Close stops accepting jobs and waits until the queued ones have run.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, q := range d.queues {
		close(q)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) worker(q <-chan job) {
	defer d.wg.Done()
	for j := range q {
		d.handle(j)
	}
}

func (d *Dispatcher) handle(j job) {
	start := time.Now()
	err := j.run()
	took := logger.RoundMS(time.Since(start))
	if err == nil {
		sendsTotal.WithLabelValues("ok").Inc()
		logger.Debug(j.ctx, "tg.sender", "send.ok",
			slog.String("action", j.action),
			slog.Duration("duration", took),
		)
		return
	}
	d.errs.Add(1)
	sendsTotal.WithLabelValues("fail").Inc()
	logger.Error(j.ctx, "tg.sender", "send.fail",
		slog.String("status", "fail"),
		slog.String("action", j.action),
		slog.String("err", Redact(err)),
		slog.String("err_kind", classifyError(err)),
		slog.Duration("duration", took),
	)
}

// Redact returns err's message with any bot token masked.
func Redact(err error) string {
	if err == nil {
		return ""
	}
	return tokenRe.ReplaceAllString(err.Error(), "bot<redacted>")
}

func classifyError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return "timeout"
		}
		return "dns"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return "dial"
	}
	var alertErr tls.AlertError
	if errors.As(err, &alertErr) {
		return "tls"
	}

	status := 0
	var apiErr *tele.Error
	var floodErr tele.FloodError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.Code
	case errors.As(err, &floodErr):
		status = http.StatusTooManyRequests
	}
	switch {
	case status >= 500:
		return "http_5xx"
	case status >= 400:
		return "http_4xx"
	}
	return "unknown"
}
