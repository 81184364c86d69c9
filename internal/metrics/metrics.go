// Package metrics exposes Prometheus collectors for logins, stock movements and RPCs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Login outcomes.
const (
	LoginSuccess = "success"
	LoginFailed  = "failed"
	LoginLocked  = "locked"
	LoginUnknown = "unknown_user"
	LoginInvalid = "invalid_input"
)

var (
	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shopfloor_login_attempts_total",
		Help: "Authentication attempts by outcome",
	}, []string{"outcome"})

	accountLockouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shopfloor_account_lockouts_total",
		Help: "Accounts that crossed the failed-attempt threshold",
	})

	stockMovements = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shopfloor_stock_movements_total",
		Help: "Recorded stock movements by type",
	}, []string{"type"})

	stockUnits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shopfloor_stock_movement_units_total",
		Help: "Sum of movement quantities by type",
	}, []string{"type"})

	rpcDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shopfloor_rpc_duration_seconds",
		Help:    "Duration of RPC and HTTP handlers",
		Buckets: prometheus.DefBuckets,
	}, []string{"transport", "method", "code"})
)

// ObserveLogin counts one authentication attempt.
func ObserveLogin(outcome string) {
	loginAttempts.WithLabelValues(outcome).Inc()
}

// ObserveLockout counts an account entering the locked state.
func ObserveLockout() {
	accountLockouts.Inc()
}

// ObserveMovement counts one recorded movement and its magnitude.
func ObserveMovement(movementType string, quantity int64) {
	stockMovements.WithLabelValues(movementType).Inc()
	stockUnits.WithLabelValues(movementType).Add(float64(quantity))
}

// ObserveRPC records handler latency.
func ObserveRPC(transport, method, code string, d time.Duration) {
	rpcDuration.WithLabelValues(transport, method, code).Observe(d.Seconds())
}
