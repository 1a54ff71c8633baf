// Package main applies the local SQLite and remote PostgreSQL schemas
// without starting the server.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/groweasy/backend/internal/config"
	"github.com/groweasy/backend/internal/db"
	"github.com/groweasy/backend/internal/logging"
	"github.com/groweasy/backend/internal/remote"
)

const (
	targetLocal     = "local"
	targetLocalDown = "local-down"
	targetRemote    = "remote"
	targetAll       = "all"
)

func main() {
	var target, dbURL, dataDir string
	flag.StringVar(&target, "target", targetAll, "local, local-down (revert the latest local migration), remote or all")
	flag.StringVar(&dbURL, "db-url", "", "remote database url (defaults to REMOTE_DATABASE_URL)")
	flag.StringVar(&dataDir, "data-dir", "", "local data directory (defaults to DB_PATH)")
	configPath := config.FetchPath()

	logging.Init(os.Stdout, logging.LevelInfo)

	cfg, err := config.Load(configPath)
	if err != nil {
		logging.Error("Migration failed", err, logging.Fields{"step": "load config"})
		os.Exit(1)
	}
	if dbURL == "" {
		dbURL = cfg.Remote.DatabaseURL
	}
	if dataDir == "" {
		dataDir = cfg.Local.DataDir
	}

	if err := run(target, dataDir, dbURL); err != nil {
		logging.Error("Migration failed", err, logging.Fields{"target": target})
		os.Exit(1)
	}
}

func run(target, dataDir, dbURL string) error {
	switch target {
	case targetLocal:
		return migrateLocal(dataDir)
	case targetLocalDown:
		return rollbackLocal(dataDir)
	case targetRemote:
		return migrateRemote(dbURL)
	case targetAll:
		if err := migrateLocal(dataDir); err != nil {
			return err
		}
		if dbURL == "" {
			logging.Info("No remote database configured, skipping remote migrations")
			return nil
		}
		return migrateRemote(dbURL)
	default:
		return fmt.Errorf("unknown target %q", target)
	}
}

func migrateLocal(dataDir string) error {
	database, err := db.Open(dataDir)
	if err != nil {
		return fmt.Errorf("open local store: %w", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		return err
	}
	version, err := database.SchemaVersion()
	if err != nil {
		return err
	}
	logging.Info("Local migrations applied", logging.Fields{"data_dir": dataDir, "version": version})
	return nil
}

func rollbackLocal(dataDir string) error {
	database, err := db.Open(dataDir)
	if err != nil {
		return fmt.Errorf("open local store: %w", err)
	}
	defer database.Close()

	version, err := database.Rollback()
	if err != nil {
		return err
	}
	logging.Info("Local migration rolled back", logging.Fields{"data_dir": dataDir, "version": version})
	return nil
}

func migrateRemote(dbURL string) error {
	if dbURL == "" {
		return fmt.Errorf("no remote database url configured")
	}
	if err := remote.Migrate(dbURL); err != nil {
		return err
	}
	logging.Info("Remote migrations applied")
	return nil
}
