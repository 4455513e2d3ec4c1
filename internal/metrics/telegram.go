package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(telegramCommandsReceivedTotal, telegramRepliesFailedTotal)
}

var (
	telegramCommandsReceivedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_commands_received_total",
			Help: "Counts incoming commands from users.",
		},
		[]string{"command"},
	)

	telegramRepliesFailedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "telegram_replies_failed_total",
			Help: "Replies that could not be delivered to Telegram.",
		},
	)
)

func IncTelegramCommand(command string) {
	telegramCommandsReceivedTotal.WithLabelValues(norm(command)).Inc()
}

func IncReplyFailed() {
	telegramRepliesFailedTotal.Inc()
}
