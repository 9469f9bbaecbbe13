package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/serverpanel/serverpanel/internal/core/domain"
	"github.com/serverpanel/serverpanel/internal/core/ports"
)

// ProcessService gates the external process manager behind the pm2
// config switch and records every control action.
type ProcessService struct {
	manager  ports.ProcessManager
	config   ports.ConfigStore
	store    ports.StateStore
	notifier ports.Notifier
	log      zerolog.Logger
}

func NewProcessService(manager ports.ProcessManager, config ports.ConfigStore, store ports.StateStore, notifier ports.Notifier, log zerolog.Logger) *ProcessService {
	if notifier == nil {
		notifier = ports.NopNotifier{}
	}
	return &ProcessService{manager: manager, config: config, store: store, notifier: notifier, log: log}
}

func (s *ProcessService) enabled(ctx context.Context) error {
	if !s.config.Config(ctx).PM2Enabled() {
		return fmt.Errorf("process manager not enabled in config: %w", domain.ErrInvalidOperation)
	}
	return nil
}

// List returns the managed processes, or ErrInvalidOperation when the
// integration is switched off.
func (s *ProcessService) List(ctx context.Context) ([]ports.ProcessInfo, error) {
	if err := s.enabled(ctx); err != nil {
		return nil, err
	}
	return s.manager.List(ctx)
}

// Control runs one allowlisted action against a managed process.
func (s *ProcessService) Control(ctx context.Context, action, id string) error {
	if err := s.enabled(ctx); err != nil {
		return err
	}
	if !ports.ValidProcessAction(action) {
		return fmt.Errorf("unknown action %q: %w", action, domain.ErrInvalidOperation)
	}
	if err := s.manager.Control(ctx, action, id); err != nil {
		return err
	}

	msg := fmt.Sprintf("pm2 %s %s", action, id)
	if err := s.store.AppendActivity(ctx, msg); err != nil {
		s.log.Warn().Err(err).Str("msg", msg).Msg("activity append failed")
	}
	s.notifier.Broadcast(ports.EventActivity, msg)
	return nil
}
