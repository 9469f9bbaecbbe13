// Package metrics defines and registers all custom Prometheus metrics
// for the panel. It is the single source of truth for metric names,
// labels, and help strings; registration happens at import time via
// promauto against the default registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "serverpanel"

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// FileOperationsTotal counts sandboxed file operations.
// Labels:
//   - op: list, read, write, create, delete, rename, upload, download
//   - result: "ok" or "error"
var FileOperationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "file_operations_total",
		Help:      "Total number of file-browser operations, by operation and result.",
	},
	[]string{"op", "result"},
)

// AuditEntriesTotal counts audit entries appended to the document.
// Label:
//   - action: the recorded audit action (e.g. "user.created")
var AuditEntriesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "audit_entries_total",
		Help:      "Total number of audit entries appended.",
	},
	[]string{"action"},
)

// ActivityEntriesTotal counts activity feed appends.
var ActivityEntriesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "activity_entries_total",
		Help:      "Total number of activity entries appended.",
	},
)

// StorePersistDuration measures one full document persist (marshal,
// temp write, atomic rename).
var StorePersistDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "store_persist_duration_seconds",
		Help:      "Duration of a full state-document persist cycle.",
		Buckets:   prometheus.DefBuckets,
	},
)

// RealtimeEventsTotal counts events fanned out to realtime subscribers.
// Labels:
//   - event: metrics, activity, audit, config, features, monitored
//   - delivery: "delivered" or "dropped" (subscriber buffer full)
var RealtimeEventsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "realtime_events_total",
		Help:      "Total realtime events fanned out to subscribers, by delivery outcome.",
	},
	[]string{"event", "delivery"},
)
