package notify

import "github.com/serverpanel/serverpanel/internal/core/ports"

// Multi fans a broadcast out to several notifiers (typically the
// in-process hub plus the optional Redis publisher).
type Multi []ports.Notifier

func (m Multi) Broadcast(event string, payload any) {
	for _, n := range m {
		n.Broadcast(event, payload)
	}
}
