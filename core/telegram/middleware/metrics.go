package middleware

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	tghelpers "github.com/m3rciful/postbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

var (
	updatesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postbot_tg_updates_total",
		Help: "Telegram updates received, by kind.",
	}, []string{"kind"})

	updateDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "postbot_tg_update_duration_seconds",
		Help:    "Time spent handling one update.",
		Buckets: prometheus.DefBuckets,
	})

	panicsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "postbot_tg_panics_total",
		Help: "Handler panics recovered.",
	})
)

// MessageMetricsMiddleware resets the per-update send counters and records
// update volume and latency.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		tghelpers.ResetCounters(c)
		updatesTotal.WithLabelValues(updateKind(c.Update())).Inc()
		start := time.Now()
		err := next(c)
		updateDuration.Observe(time.Since(start).Seconds())
		return err
	}
}

func updateKind(upd tele.Update) string {
	switch {
	case upd.Callback != nil:
		return "callback"
	case upd.Message != nil:
		return "message"
	case upd.Query != nil:
		return "inline_query"
	}
	return "other"
}
