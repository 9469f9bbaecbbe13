package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/serverpanel/serverpanel/internal/api"
	"github.com/serverpanel/serverpanel/internal/core/ports"
	"github.com/serverpanel/serverpanel/internal/core/service"
	"github.com/serverpanel/serverpanel/internal/infrastructure/config"
	"github.com/serverpanel/serverpanel/internal/infrastructure/notify"
	"github.com/serverpanel/serverpanel/internal/infrastructure/procman"
	"github.com/serverpanel/serverpanel/internal/infrastructure/store"
	"github.com/serverpanel/serverpanel/internal/infrastructure/sysinfo"
	"github.com/serverpanel/serverpanel/pkg/logger"
	"github.com/serverpanel/serverpanel/pkg/sandbox"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Realtime channel: in-process SSE hub, plus a Redis publisher for
	// out-of-process consumers when an address is configured.
	hub := notify.NewHub(log)
	var notifier ports.Notifier = hub
	if cfg.Redis.Addr != "" {
		client, err := notify.Connect(ctx, notify.RedisConfig{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			log.Fatal().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis connection failed")
		}
		defer client.Close()
		notifier = notify.Multi{hub, notify.NewRedisNotifier(client, cfg.Redis.Channel, log)}
		log.Info().Str("addr", cfg.Redis.Addr).Str("channel", cfg.Redis.Channel).Msg("redis event publisher attached")
	}

	stateStore := store.NewDocumentStore(cfg.DataFile, notifier, log)
	configStore := store.NewConfigStore(cfg.ConfigFile, notifier, log)

	migrated, err := stateStore.MigrateLegacyPasswords(ctx, service.HashPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("password migration failed")
	}
	if migrated > 0 {
		log.Info().Int("count", migrated).Msg("legacy passwords rehashed")
	}

	box, err := sandbox.New(browseRoot(ctx, configStore))
	if err != nil {
		log.Fatal().Err(err).Msg("file sandbox init failed")
	}
	log.Info().Str("root", box.Root()).Msg("file browser root")

	panelService := service.NewPanelService(stateStore, configStore, sysinfo.NewCollector(), notifier, log)
	processService := service.NewProcessService(procman.NewPM2(log), configStore, stateStore, notifier, log)

	e := api.NewRouter(api.Deps{
		Log:       log,
		Auth:      service.NewAuthService(stateStore, log),
		Files:     service.NewFileService(box, stateStore, log),
		Audit:     service.NewAuditService(stateStore, log),
		Users:     service.NewUserService(stateStore, log),
		Panel:     panelService,
		Processes: processService,
		Hub:       hub,
	})

	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown incomplete")
	}
}

// browseRoot resolves the configured startFolder: absolute paths are
// taken as-is, relative ones resolve against the working directory, and
// an empty value means the working directory itself.
func browseRoot(ctx context.Context, cfgStore ports.ConfigStore) string {
	start := cfgStore.Config(ctx).StartFolder()
	if start == "" {
		return "."
	}
	if filepath.IsAbs(start) {
		return start
	}
	cwd, err := os.Getwd()
	if err != nil {
		return start
	}
	return filepath.Join(cwd, start)
}
