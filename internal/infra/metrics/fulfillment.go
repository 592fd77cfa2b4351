package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		fulfillmentsTotal,
		emailsTotal,
		telegramInvitesTotal,
		rateLimitTriggeredTotal,
	)
}

var (
	fulfillmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fulfillments_total",
			Help: "Fulfillment attempts by outcome (granted, duplicate, error).",
		},
		[]string{"outcome"},
	)

	emailsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emails_total",
			Help: "Transactional emails by kind and delivery status.",
		},
		[]string{"kind", "status"}, // kind: purchase|invoice, status: sent|error|skipped
	)

	telegramInvitesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_invites_total",
			Help: "Per-purchase Telegram invite links by status.",
		},
		[]string{"status"},
	)

	rateLimitTriggeredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_triggered_total",
			Help: "Requests rejected by the rate limiter.",
		},
		[]string{"scope"},
	)
)

func IncFulfillment(outcome string) {
	fulfillmentsTotal.WithLabelValues(norm(outcome)).Inc()
}

func IncEmail(kind, status string) {
	emailsTotal.WithLabelValues(norm(kind), norm(status)).Inc()
}

func IncTelegramInvite(status string) {
	telegramInvitesTotal.WithLabelValues(norm(status)).Inc()
}

func IncRateLimitTriggered(scope string) {
	rateLimitTriggeredTotal.WithLabelValues(norm(scope)).Inc()
}
