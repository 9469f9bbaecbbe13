package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/serverpanel/serverpanel/internal/core/domain"
	"github.com/serverpanel/serverpanel/internal/core/ports"
)

func newPanel(t *testing.T, collector ports.MetricsCollector, notifier ports.Notifier) (*PanelService, ports.StateStore) {
	t.Helper()
	st := newTestStore(t)
	cfg := newTestConfig(t, notifier)
	if collector == nil {
		collector = stubCollector{snap: ports.MetricsSnapshot{CPUPct: 12, MemPct: 34, UptimeSeconds: 99}}
	}
	return NewPanelService(st, cfg, collector, notifier, zerolog.Nop()), st
}

func TestUpdateConfigLeavesTrail(t *testing.T) {
	n := &captureNotifier{}
	svc, st := newPanel(t, nil, n)
	ctx := context.Background()

	merged, err := svc.UpdateConfig(ctx, "alice", map[string]any{"startFolder": "/srv"})
	if err != nil {
		t.Fatalf("UpdateConfig: %v", err)
	}
	if merged.StartFolder() != "/srv" {
		t.Fatalf("merged startFolder = %q", merged.StartFolder())
	}
	// Defaults survive a shallow merge of an unrelated key.
	if merged.MaxActivity() != 7 {
		t.Fatalf("maxActivity = %d, want 7", merged.MaxActivity())
	}

	audit, err := st.Audit(ctx)
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}
	if len(audit) != 1 || audit[0].Action != "config.updated" || audit[0].Actor != "alice" {
		t.Fatalf("audit = %+v", audit)
	}
	activity, _ := st.Activity(ctx)
	if len(activity) != 1 || activity[0].Message != "Config updated" {
		t.Fatalf("activity = %+v", activity)
	}
	if n.count(ports.EventConfig) != 1 || n.count(ports.EventActivity) != 1 {
		t.Fatalf("events = %+v", n.events)
	}
}

func TestReplaceFeatures(t *testing.T) {
	n := &captureNotifier{}
	svc, st := newPanel(t, nil, n)
	ctx := context.Background()

	list, err := svc.ReplaceFeatures(ctx, []string{"monitoring", "files"})
	if err != nil {
		t.Fatalf("ReplaceFeatures: %v", err)
	}
	if !reflect.DeepEqual(list, []string{"monitoring", "files"}) {
		t.Fatalf("features = %+v", list)
	}
	if got := svc.Features(ctx); !reflect.DeepEqual(got, list) {
		t.Fatalf("stored features = %+v", got)
	}
	if n.count(ports.EventFeatures) != 1 {
		t.Fatalf("events = %+v", n.events)
	}

	list, err = svc.ReplaceFeatures(ctx, nil)
	if err != nil {
		t.Fatalf("ReplaceFeatures nil: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("nil replace = %+v", list)
	}

	activity, _ := st.Activity(ctx)
	if len(activity) != 2 {
		t.Fatalf("activity = %+v", activity)
	}
}

func TestRecentActivityHonorsConfiguredCap(t *testing.T) {
	svc, st := newPanel(t, nil, &captureNotifier{})
	ctx := context.Background()

	if _, err := svc.UpdateConfig(ctx, "", map[string]any{"maxActivity": float64(3)}); err != nil {
		t.Fatalf("UpdateConfig: %v", err)
	}
	for i := 0; i < 6; i++ {
		if err := st.AppendActivity(ctx, fmt.Sprintf("entry %d", i)); err != nil {
			t.Fatalf("AppendActivity: %v", err)
		}
	}

	recent, err := svc.RecentActivity(ctx)
	if err != nil {
		t.Fatalf("RecentActivity: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("got %d entries, want 3", len(recent))
	}
	if recent[0].Message != "entry 5" || recent[2].Message != "entry 3" {
		t.Fatalf("not newest first: %+v", recent)
	}
}

func TestMetricsDegradesOnCollectorFailure(t *testing.T) {
	n := &captureNotifier{}
	svc, _ := newPanel(t, stubCollector{err: errors.New("no proc")}, n)

	snap := svc.Metrics(context.Background())
	if snap != (ports.MetricsSnapshot{}) {
		t.Fatalf("degraded snapshot = %+v, want zero", snap)
	}
	if n.count(ports.EventMetrics) != 1 {
		t.Fatalf("events = %+v", n.events)
	}
}

func TestNotificationsShapedByRole(t *testing.T) {
	svc, st := newPanel(t, nil, &captureNotifier{})
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		if err := st.AppendActivity(ctx, fmt.Sprintf("entry %d", i)); err != nil {
			t.Fatalf("AppendActivity: %v", err)
		}
	}

	pub, err := svc.NotificationsFor(ctx, nil)
	if err != nil {
		t.Fatalf("NotificationsFor public: %v", err)
	}
	if pub.Role != "public" || len(pub.Activity) != 5 || pub.Alerts != nil {
		t.Fatalf("public = %+v", pub)
	}
	if pub.Metrics.CPUPct != 12 {
		t.Fatalf("public metrics = %+v", pub.Metrics)
	}

	user, err := svc.NotificationsFor(ctx, &domain.Session{Username: "bob", Role: domain.RoleUser})
	if err != nil {
		t.Fatalf("NotificationsFor user: %v", err)
	}
	if user.Role != domain.RoleUser || user.Activity != nil || user.Alerts != nil {
		t.Fatalf("user = %+v", user)
	}

	admin, err := svc.NotificationsFor(ctx, &domain.Session{Username: "alice", Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("NotificationsFor admin: %v", err)
	}
	if admin.Role != domain.RoleAdmin || len(admin.Activity) != 10 {
		t.Fatalf("admin = %+v", admin)
	}
	if admin.Activity[0].Message != "entry 11" {
		t.Fatalf("admin activity not newest first: %+v", admin.Activity[0])
	}
}

func TestReplaceMonitored(t *testing.T) {
	n := &captureNotifier{}
	svc, st := newPanel(t, nil, n)
	ctx := context.Background()

	if err := svc.ReplaceMonitored(ctx, []string{"api", "worker"}); err != nil {
		t.Fatalf("ReplaceMonitored: %v", err)
	}
	got, err := svc.Monitored(ctx)
	if err != nil {
		t.Fatalf("Monitored: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"api", "worker"}) {
		t.Fatalf("monitored = %+v", got)
	}
	if n.count(ports.EventMonitored) != 1 {
		t.Fatalf("events = %+v", n.events)
	}

	activity, _ := st.Activity(ctx)
	if len(activity) != 1 || activity[0].Message != "Monitored processes updated" {
		t.Fatalf("activity = %+v", activity)
	}
}
