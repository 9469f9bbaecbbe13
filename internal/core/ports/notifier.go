package ports

// Realtime event names broadcast by the panel. The channel is a pure
// cache-invalidation hint: delivery is at-most-once with no replay, and
// clients reconcile by re-fetching authoritative state.
const (
	EventMetrics   = "metrics"
	EventActivity  = "activity"
	EventAudit     = "audit"
	EventConfig    = "config"
	EventFeatures  = "features"
	EventMonitored = "monitored"
)

// Notifier is the fire-and-forget broadcast channel components publish
// to. Implementations must never block the caller; a failed or dropped
// delivery is not an error the publisher sees.
type Notifier interface {
	Broadcast(event string, payload any)
}

// NopNotifier discards every event.
type NopNotifier struct{}

func (NopNotifier) Broadcast(string, any) {}
