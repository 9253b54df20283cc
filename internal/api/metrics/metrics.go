// Package metrics defines the custom Prometheus metrics for the SafeCity
// incident API. It is the single source of truth for metric names, labels,
// and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "safecity"

// ReportsCreatedTotal counts persisted reports.
// Label:
//   - category: the normalized report category (e.g. "traffic", "other")
var ReportsCreatedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reports_created_total",
		Help:      "Total number of reports created, by category.",
	},
	[]string{"category"},
)

// ReportsRateLimitedTotal counts submissions rejected by the rate limiter.
// Label:
//   - identity_kind: "user" or "ip"
var ReportsRateLimitedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reports_rate_limited_total",
		Help:      "Total number of report submissions rejected by the rate limiter.",
	},
	[]string{"identity_kind"},
)

// ReportsDeletedTotal counts removed reports.
// Label:
//   - actor: "owner" or "admin"
var ReportsDeletedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reports_deleted_total",
		Help:      "Total number of reports deleted, by acting role.",
	},
	[]string{"actor"},
)

// AuthLoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "banned", or "error"
var AuthLoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// AuthRegistrationsTotal counts registration attempts.
// Label:
//   - result: "success", "rejected", or "error"
var AuthRegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)
