// Package notify carries the panel's fire-and-forget realtime channel.
// Delivery is at-most-once with no replay buffer: a client connecting
// after an event never receives it and reconciles via an explicit fetch.
package notify

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/serverpanel/serverpanel/internal/api/metrics"
)

// SubscriberBuffer is the per-subscriber retention cap. When a slow
// subscriber falls this far behind, its oldest pending events are
// evicted first.
const SubscriberBuffer = 2000

// Event is one realtime message as fanned out to subscribers.
type Event struct {
	Name    string `json:"event"`
	Payload any    `json:"payload"`
}

// Subscriber is one attached realtime consumer.
type Subscriber struct {
	ch chan Event
}

// Events returns the subscriber's buffered event stream.
func (s *Subscriber) Events() <-chan Event { return s.ch }

// Hub fans events out to in-process subscribers. Broadcast never blocks
// the publisher; it is safe for concurrent use.
type Hub struct {
	mu   sync.Mutex
	subs map[*Subscriber]struct{}
	log  zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{subs: make(map[*Subscriber]struct{}), log: log}
}

// Subscribe attaches a new consumer with its own capped buffer.
func (h *Hub) Subscribe() *Subscriber {
	sub := &Subscriber{ch: make(chan Event, SubscriberBuffer)}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

// Unsubscribe detaches sub and closes its stream.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	_, attached := h.subs[sub]
	delete(h.subs, sub)
	h.mu.Unlock()
	if attached {
		close(sub.ch)
	}
}

// Broadcast delivers the event to every subscriber. A full subscriber
// buffer evicts its oldest pending event to make room.
func (h *Hub) Broadcast(event string, payload any) {
	ev := Event{Name: event, Payload: payload}

	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		select {
		case sub.ch <- ev:
			metrics.RealtimeEventsTotal.WithLabelValues(event, "delivered").Inc()
			continue
		default:
		}
		// Buffer full: evict the oldest, then retry once.
		select {
		case <-sub.ch:
		default:
		}
		select {
		case sub.ch <- ev:
			metrics.RealtimeEventsTotal.WithLabelValues(event, "delivered").Inc()
		default:
			metrics.RealtimeEventsTotal.WithLabelValues(event, "dropped").Inc()
		}
	}
}
