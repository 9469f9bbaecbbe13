package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/rs/zerolog"

	"github.com/serverpanel/serverpanel/internal/core/domain"
	"github.com/serverpanel/serverpanel/internal/core/ports"
)

// ConfigStore implements ports.ConfigStore on its own JSON file,
// separate from the aggregate document.
type ConfigStore struct {
	path     string
	notifier ports.Notifier
	log      zerolog.Logger
	mu       chan struct{}
}

func NewConfigStore(path string, notifier ports.Notifier, log zerolog.Logger) *ConfigStore {
	if notifier == nil {
		notifier = ports.NopNotifier{}
	}
	mu := make(chan struct{}, 1)
	mu <- struct{}{}
	return &ConfigStore{path: path, notifier: notifier, log: log, mu: mu}
}

func (s *ConfigStore) load() domain.Config {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.log.Warn().Err(err).Str("path", s.path).Msg("config unreadable, using defaults")
		}
		return domain.DefaultConfig()
	}
	var cfg domain.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("config unparsable, using defaults")
		return domain.DefaultConfig()
	}
	if cfg == nil {
		return domain.DefaultConfig()
	}
	return cfg
}

func (s *ConfigStore) persist(cfg domain.Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

func (s *ConfigStore) Config(ctx context.Context) domain.Config {
	select {
	case <-s.mu:
	case <-ctx.Done():
		return domain.DefaultConfig()
	}
	defer func() { s.mu <- struct{}{} }()
	return s.load()
}

// Merge shallow-merges patch over the stored config, persists the result
// and broadcasts the merged config on the realtime channel.
func (s *ConfigStore) Merge(ctx context.Context, patch map[string]any) (domain.Config, error) {
	select {
	case <-s.mu:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { s.mu <- struct{}{} }()

	merged := s.load().Merge(patch)
	if err := s.persist(merged); err != nil {
		return nil, err
	}
	s.notifier.Broadcast(ports.EventConfig, merged)
	return merged, nil
}
