package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/serverpanel/serverpanel/internal/core/domain"
	"github.com/serverpanel/serverpanel/internal/core/ports"
)

func newProcessService(t *testing.T, enabled bool, mgr *stubManager) (*ProcessService, ports.StateStore) {
	t.Helper()
	st := newTestStore(t)
	cfg := newTestConfig(t, nil)
	if enabled {
		_, err := cfg.Merge(context.Background(), map[string]any{
			"pm2": map[string]any{"enabled": true, "manage": true},
		})
		if err != nil {
			t.Fatalf("Merge: %v", err)
		}
	}
	return NewProcessService(mgr, cfg, st, nil, zerolog.Nop()), st
}

func TestProcessManagerDisabledByDefault(t *testing.T) {
	mgr := &stubManager{}
	svc, _ := newProcessService(t, false, mgr)
	ctx := context.Background()

	if _, err := svc.List(ctx); !errors.Is(err, domain.ErrInvalidOperation) {
		t.Fatalf("List: want ErrInvalidOperation, got %v", err)
	}
	if err := svc.Control(ctx, ports.ProcessRestart, "0"); !errors.Is(err, domain.ErrInvalidOperation) {
		t.Fatalf("Control: want ErrInvalidOperation, got %v", err)
	}
	if len(mgr.calls) != 0 {
		t.Fatalf("manager must not be consulted while disabled: %+v", mgr.calls)
	}
}

func TestProcessListPassesThrough(t *testing.T) {
	mgr := &stubManager{procs: []ports.ProcessInfo{{Name: "api", ID: 0, PID: 1234}}}
	svc, _ := newProcessService(t, true, mgr)

	procs, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(procs) != 1 || procs[0].Name != "api" {
		t.Fatalf("procs = %+v", procs)
	}
}

func TestProcessControl(t *testing.T) {
	mgr := &stubManager{}
	svc, st := newProcessService(t, true, mgr)
	ctx := context.Background()

	if err := svc.Control(ctx, "reboot", "0"); !errors.Is(err, domain.ErrInvalidOperation) {
		t.Fatalf("bad action: want ErrInvalidOperation, got %v", err)
	}
	if err := svc.Control(ctx, ports.ProcessRestart, "3"); err != nil {
		t.Fatalf("Control: %v", err)
	}
	if len(mgr.calls) != 1 || mgr.calls[0] != "restart 3" {
		t.Fatalf("calls = %+v", mgr.calls)
	}

	activity, err := st.Activity(ctx)
	if err != nil {
		t.Fatalf("Activity: %v", err)
	}
	if len(activity) != 1 || activity[0].Message != "pm2 restart 3" {
		t.Fatalf("activity = %+v", activity)
	}
}
