package ports

import "context"

// DiskInfo describes the root filesystem usage in a metrics snapshot.
type DiskInfo struct {
	TotalBytes uint64 `json:"totalBytes"`
	FreeBytes  uint64 `json:"freeBytes"`
	UsedPct    int    `json:"usedPct"`
	FreePct    int    `json:"freePct"`
}

// MetricsSnapshot is a point-in-time host reading. Disk is nil when no
// disk information could be collected.
type MetricsSnapshot struct {
	CPUPct        int       `json:"cpu"`
	MemPct        int       `json:"memory"`
	UptimeSeconds int64     `json:"uptime"`
	Disk          *DiskInfo `json:"disk,omitempty"`
}

// MetricsCollector reads host metrics. Collect may fail; callers must
// substitute a degraded zero snapshot rather than propagate the error.
type MetricsCollector interface {
	Collect(ctx context.Context) (MetricsSnapshot, error)
}

// ProcessInfo describes one externally managed process.
type ProcessInfo struct {
	Name        string  `json:"name"`
	ID          int     `json:"id"`
	PID         int     `json:"pid"`
	CPUPct      float64 `json:"cpuPct"`
	MemoryBytes uint64  `json:"memoryBytes"`
}

// Process control actions accepted by ProcessManager.Control.
const (
	ProcessStart   = "start"
	ProcessStop    = "stop"
	ProcessRestart = "restart"
	ProcessDelete  = "delete"
)

// ValidProcessAction reports whether action is in the allowlist.
func ValidProcessAction(action string) bool {
	switch action {
	case ProcessStart, ProcessStop, ProcessRestart, ProcessDelete:
		return true
	}
	return false
}

// ProcessManager is the external process-manager integration. It is
// only consulted when the config enables it.
type ProcessManager interface {
	List(ctx context.Context) ([]ProcessInfo, error)
	Control(ctx context.Context, action, id string) error
}
