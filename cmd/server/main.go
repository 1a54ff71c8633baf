// Package main runs the GrowEasy record keeper as a local HTTP server.
// Writes always land in the on-device SQLite store; a PostgreSQL remote is
// optional and receives mirrored writes and sync passes when reachable.
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

	"github.com/groweasy/backend/cmd/server/handlers"
	"github.com/groweasy/backend/internal/config"
	"github.com/groweasy/backend/internal/connectivity"
	"github.com/groweasy/backend/internal/db"
	"github.com/groweasy/backend/internal/logging"
	"github.com/groweasy/backend/internal/notify"
	"github.com/groweasy/backend/internal/remote"
	"github.com/groweasy/backend/internal/services"
	syncpkg "github.com/groweasy/backend/internal/sync"
)

func main() {
	cfg, err := config.Load(config.FetchPath())
	if err != nil {
		logging.Init(os.Stderr, logging.LevelError)
		logging.Error("Failed to load config", err)
		os.Exit(1)
	}
	logging.Init(os.Stdout, logging.ParseLevel(cfg.Log.Level))

	if err := run(cfg); err != nil {
		logging.Error("Server stopped with error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()
	startedAt := time.Now()

	logging.Info("Starting GrowEasy server", logging.Fields{
		"env":    cfg.Env,
		"addr":   cfg.HTTP.Addr(),
		"remote": cfg.Remote.Enabled(),
	})

	database, err := db.Open(cfg.Local.DataDir)
	if err != nil {
		return err
	}
	defer database.Close()
	if err := database.Migrate(); err != nil {
		return err
	}
	repo := db.NewRepository(database.DB)
	defer repo.Close()

	deviceID, err := repo.DeviceID(ctx)
	if err != nil {
		return err
	}
	logging.Info("Local store ready", logging.Fields{
		"path":      filepath.Join(cfg.Local.DataDir, db.FileName),
		"device_id": deviceID,
	})

	deps := services.Deps{Local: repo}
	probe := connectivity.Probe(connectivity.Static(false))
	if cfg.Remote.Enabled() {
		store, err := openRemote(ctx, cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		deps.Remote = store
		probe = connectivity.All(
			connectivity.NewTCPProbe(cfg.Probe.Address, cfg.Probe.Timeout),
			store,
		)
	}
	deps.Probe = probe

	publisher := openPublishers(cfg)
	defer publisher.Close()

	deps.Engine = syncpkg.NewSyncEngine(repo, deps.Remote, probe, &syncpkg.Options{
		Timeout:   cfg.Remote.SyncTimeout,
		Audit:     syncpkg.NewFileAuditLog(cfg.Audit.Path),
		Publisher: publisher,
	})

	svc, err := services.New(ctx, deps, &services.Options{MirrorTimeout: cfg.Remote.MirrorTimeout})
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.HTTP.Addr(),
		Handler:           handlers.NewRouter(svc, startedAt),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("HTTP server listening", logging.Fields{"addr": server.Addr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info("Shutting down", logging.Fields{"signal": sig.String()})
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// openRemote connects lazily, so an unreachable remote does not stop the
// device from starting. Migrations are only attempted when it answers.
func openRemote(ctx context.Context, cfg *config.Config) (*remote.Store, error) {
	store, err := remote.New(ctx, cfg.Remote.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if cfg.Remote.SkipMigrations {
		return store, nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Probe.Timeout)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		logging.Warn("Remote store unreachable, skipping remote migrations", logging.Fields{"error": err.Error()})
		return store, nil
	}
	if err := remote.Migrate(cfg.Remote.DatabaseURL); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// openPublishers builds the sync notification fan-out. A broker that cannot
// be reached is logged and left out.
func openPublishers(cfg *config.Config) notify.Publisher {
	var pubs notify.Multi
	if cfg.Notify.NATSURL != "" {
		p, err := notify.NewNATSPublisher(cfg.Notify.NATSURL, cfg.Notify.NATSSubject)
		if err != nil {
			logging.Warn("NATS notifications disabled", logging.Fields{"error": err.Error()})
		} else {
			pubs = append(pubs, p)
		}
	}
	if len(cfg.Notify.KafkaBrokers) > 0 {
		pubs = append(pubs, notify.NewKafkaPublisher(cfg.Notify.KafkaBrokers, cfg.Notify.KafkaTopic))
	}
	if len(pubs) == 0 {
		return notify.Noop{}
	}
	return pubs
}
