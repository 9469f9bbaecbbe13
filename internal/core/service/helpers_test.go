package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/serverpanel/serverpanel/internal/core/ports"
	"github.com/serverpanel/serverpanel/internal/infrastructure/store"
)

func newTestStore(t *testing.T) *store.DocumentStore {
	t.Helper()
	return store.NewDocumentStore(filepath.Join(t.TempDir(), "db.json"), nil, zerolog.Nop())
}

func newTestConfig(t *testing.T, notifier ports.Notifier) *store.ConfigStore {
	t.Helper()
	return store.NewConfigStore(filepath.Join(t.TempDir(), "config.json"), notifier, zerolog.Nop())
}

type captureNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *captureNotifier) Broadcast(event string, payload any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *captureNotifier) count(event string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, e := range n.events {
		if e == event {
			c++
		}
	}
	return c
}

type stubCollector struct {
	snap ports.MetricsSnapshot
	err  error
}

func (c stubCollector) Collect(context.Context) (ports.MetricsSnapshot, error) {
	return c.snap, c.err
}

type stubManager struct {
	procs   []ports.ProcessInfo
	calls   []string
	listErr error
}

func (m *stubManager) List(context.Context) ([]ports.ProcessInfo, error) {
	return m.procs, m.listErr
}

func (m *stubManager) Control(_ context.Context, action, id string) error {
	m.calls = append(m.calls, action+" "+id)
	return nil
}
