package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/serverpanel/serverpanel/internal/core/domain"
	"github.com/serverpanel/serverpanel/internal/core/ports"
)

// Notifications is the role-shaped dashboard payload. Fields absent for
// a given role are omitted from the response.
type Notifications struct {
	Role     string                 `json:"role"`
	Metrics  ports.MetricsSnapshot  `json:"metrics"`
	Activity []domain.ActivityEntry `json:"activity,omitempty"`
	Alerts   []domain.Alert         `json:"alerts,omitempty"`
}

// PanelService covers the dashboard surface: configuration, features,
// the activity feed, monitored processes and the notifications payload.
type PanelService struct {
	store     ports.StateStore
	config    ports.ConfigStore
	collector ports.MetricsCollector
	notifier  ports.Notifier
	log       zerolog.Logger
}

func NewPanelService(store ports.StateStore, config ports.ConfigStore, collector ports.MetricsCollector, notifier ports.Notifier, log zerolog.Logger) *PanelService {
	if notifier == nil {
		notifier = ports.NopNotifier{}
	}
	return &PanelService{store: store, config: config, collector: collector, notifier: notifier, log: log}
}

// Config returns the current panel configuration.
func (s *PanelService) Config(ctx context.Context) domain.Config {
	return s.config.Config(ctx)
}

// UpdateConfig shallow-merges patch into the stored configuration and
// leaves both an activity line and an audit entry.
func (s *PanelService) UpdateConfig(ctx context.Context, actor string, patch map[string]any) (domain.Config, error) {
	merged, err := s.config.Merge(ctx, patch)
	if err != nil {
		return nil, err
	}
	s.recordActivity(ctx, "Config updated")
	if err := s.store.AppendAudit(ctx, "config.updated", actor, fmt.Sprintf("%d keys", len(patch))); err != nil {
		s.log.Warn().Err(err).Msg("audit append failed")
	}
	return merged, nil
}

// Features returns the enabled feature names.
func (s *PanelService) Features(ctx context.Context) []string {
	return s.config.Config(ctx).Features()
}

// ReplaceFeatures overwrites the feature list in the configuration and
// announces the new list on the realtime channel.
func (s *PanelService) ReplaceFeatures(ctx context.Context, features []string) ([]string, error) {
	if features == nil {
		features = []string{}
	}
	raw := make([]any, len(features))
	for i, f := range features {
		raw[i] = f
	}
	merged, err := s.config.Merge(ctx, map[string]any{"features": raw})
	if err != nil {
		return nil, err
	}
	list := merged.Features()
	s.recordActivity(ctx, fmt.Sprintf("Features updated: %v", list))
	s.notifier.Broadcast(ports.EventFeatures, list)
	return list, nil
}

// RecentActivity returns the newest activity entries, most recent
// first, capped at the configured dashboard size.
func (s *PanelService) RecentActivity(ctx context.Context) ([]domain.ActivityEntry, error) {
	entries, err := s.store.Activity(ctx)
	if err != nil {
		return nil, err
	}
	return lastReversed(entries, s.config.Config(ctx).MaxActivity()), nil
}

// RecordActivity appends a custom activity line and announces it.
func (s *PanelService) RecordActivity(ctx context.Context, message string) error {
	if err := s.store.AppendActivity(ctx, message); err != nil {
		return err
	}
	s.notifier.Broadcast(ports.EventActivity, message)
	return nil
}

// Monitored returns the saved monitored-process names.
func (s *PanelService) Monitored(ctx context.Context) ([]string, error) {
	doc, err := s.store.Document(ctx)
	if err != nil {
		return nil, err
	}
	return doc.MonitoredProcesses, nil
}

// ReplaceMonitored overwrites the monitored-process list.
func (s *PanelService) ReplaceMonitored(ctx context.Context, list []string) error {
	if err := s.store.ReplaceMonitored(ctx, list); err != nil {
		return err
	}
	s.recordActivity(ctx, "Monitored processes updated")
	s.notifier.Broadcast(ports.EventMonitored, list)
	return nil
}

// Metrics collects a host snapshot and announces it. A collection
// failure degrades to a zero snapshot instead of an error.
func (s *PanelService) Metrics(ctx context.Context) ports.MetricsSnapshot {
	snap, err := s.collector.Collect(ctx)
	if err != nil {
		s.log.Debug().Err(err).Msg("metrics collection degraded")
		snap = ports.MetricsSnapshot{}
	}
	s.notifier.Broadcast(ports.EventMetrics, snap)
	return snap
}

// NotificationsFor shapes the dashboard payload by role. A nil session
// gets the public shape.
func (s *PanelService) NotificationsFor(ctx context.Context, sess *domain.Session) (Notifications, error) {
	snap, err := s.collector.Collect(ctx)
	if err != nil {
		s.log.Debug().Err(err).Msg("metrics collection degraded")
		snap = ports.MetricsSnapshot{}
	}

	if sess == nil {
		entries, err := s.store.Activity(ctx)
		if err != nil {
			return Notifications{}, err
		}
		return Notifications{
			Role:     "public",
			Metrics:  snap,
			Activity: lastReversed(entries, 5),
		}, nil
	}

	if !sess.IsAdmin() {
		return Notifications{Role: domain.RoleUser, Metrics: snap}, nil
	}

	doc, err := s.store.Document(ctx)
	if err != nil {
		return Notifications{}, err
	}
	return Notifications{
		Role:     domain.RoleAdmin,
		Metrics:  snap,
		Activity: lastReversed(doc.Activity, 10),
		Alerts:   doc.Alerts,
	}, nil
}

func (s *PanelService) recordActivity(ctx context.Context, message string) {
	if err := s.store.AppendActivity(ctx, message); err != nil {
		s.log.Warn().Err(err).Str("msg", message).Msg("activity append failed")
	}
	s.notifier.Broadcast(ports.EventActivity, message)
}

// lastReversed returns up to n trailing entries, newest first.
func lastReversed(entries []domain.ActivityEntry, n int) []domain.ActivityEntry {
	if n > len(entries) {
		n = len(entries)
	}
	out := make([]domain.ActivityEntry, 0, n)
	for i := len(entries) - 1; i >= len(entries)-n; i-- {
		out = append(out, entries[i])
	}
	return out
}
