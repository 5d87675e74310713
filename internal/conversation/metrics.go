package conversation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	actionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postbot_conversation_actions_total",
		Help: "Conversation events handled, by resulting action.",
	}, []string{"action"})

	commitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postbot_conversation_commits_total",
		Help: "Field values written to the post configuration.",
	}, []string{"field"})

	storageErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "postbot_conversation_storage_errors_total",
		Help: "Conversation events that failed on the store.",
	})
)
