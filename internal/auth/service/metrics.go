package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK       = "ok"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

var authOperations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "daystack_auth_operations_total",
		Help: "Authentication operations by type and outcome.",
	},
	[]string{"operation", "outcome"},
)

func recordAuthOp(operation, outcome string) {
	authOperations.WithLabelValues(operation, outcome).Inc()
}
