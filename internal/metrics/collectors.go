package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	hookOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parse_hook_operations_total",
			Help: "hook management calls against upstream Parse Servers, by operation and outcome",
		},
		[]string{"op", "outcome"},
	)

	hookConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "parse_hook_conflicts_total",
			Help: "create calls rejected because the hook already existed",
		},
	)

	registeredHooks = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "parse_hooks_registered",
			Help: "hooks currently recorded as registered, by category",
		},
		[]string{"category"},
	)

	webhookRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parse_webhook_requests_total",
			Help: "inbound webhook calls by route and outcome",
		},
		[]string{"route", "outcome"},
	)

	webhookDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "parse_webhook_duration_seconds",
			Help:    "inbound webhook handling time.",
			Buckets: []float64{0.005, 0.025, 0.1, 0.5, 1, 5, 30},
		},
	)
)

func init() {
	prometheus.MustRegister(
		hookOperations,
		hookConflicts,
		registeredHooks,
		webhookRequests,
		webhookDuration,
	)
}
