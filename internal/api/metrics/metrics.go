// Package metrics defines and registers all custom Prometheus metrics for
// the identity API. It is the single source of truth for metric names,
// labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "identity"

// OperationsTotal counts identity operations by outcome.
// Labels:
//   - operation: policy operation name (e.g. "create", "update_profile")
//   - result: "success" or "error"
var OperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operations_total",
		Help:      "Total number of identity operations, by operation and result.",
	},
	[]string{"operation", "result"},
)

// PermissionDeniedTotal counts operations rejected by the policy engine.
// Label:
//   - operation: the denied operation name
var PermissionDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "permission_denied_total",
		Help:      "Total number of operations denied by the authorization policy.",
	},
	[]string{"operation"},
)

// ProfileCacheTotal counts public-profile cache lookups.
// Label:
//   - result: "hit" or "miss"
var ProfileCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "profile_cache_total",
		Help:      "Total number of profile cache lookups, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// AuditEventsTotal counts audit events successfully persisted.
// Label:
//   - operation: the audited operation name
var AuditEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_events_total",
		Help:      "Total number of audit events written, by operation.",
	},
	[]string{"operation"},
)

// AuditWriteErrorsTotal counts audit events that failed to persist.
var AuditWriteErrorsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_write_errors_total",
		Help:      "Total number of audit events that could not be written.",
	},
)
