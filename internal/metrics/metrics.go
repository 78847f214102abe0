// Package metrics holds the prometheus collectors shared by the hook client,
// the registry and the webhook dispatcher.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeConflict = "conflict"
	OutcomeDenied   = "denied"
	OutcomePanic    = "panic"
)

// ObserveHookCall 记录一次 hook 管理调用。
func ObserveHookCall(op string, err error) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	hookOperations.WithLabelValues(op, outcome).Inc()
}

// ObserveConflict 记录一次 create 冲突。
func ObserveConflict() {
	hookConflicts.Inc()
	hookOperations.WithLabelValues("create", OutcomeConflict).Inc()
}

// SetRegistered 更新某类 hook 的登记数量。
func SetRegistered(category string, n int) {
	registeredHooks.WithLabelValues(category).Set(float64(n))
}

// ObserveWebhook 记录一次入站 webhook 调用。
func ObserveWebhook(route, outcome string, elapsed time.Duration) {
	webhookRequests.WithLabelValues(route, outcome).Inc()
	webhookDuration.Observe(elapsed.Seconds())
}

// Handler returns the /-/metrics handler.
func Handler() http.Handler { return promhttp.Handler() }
