// Package config loads process configuration from an optional YAML file,
// a .env file and the environment.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	apperrors "github.com/groweasy/backend/internal/errors"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

type Config struct {
	Env    string `yaml:"env" env:"GROWEASY_ENV" env-default:"local" env-description:"Environment (local, dev, prod)"`
	HTTP   HTTP   `yaml:"http"`
	Local  Local  `yaml:"local"`
	Remote Remote `yaml:"remote"`
	Probe  Probe  `yaml:"probe"`
	Audit  Audit  `yaml:"audit"`
	Notify Notify `yaml:"notify"`
	Log    Log    `yaml:"log"`
}

type HTTP struct {
	Host            string        `yaml:"host" env:"HTTP_HOST" env-default:"localhost"`
	Port            int           `yaml:"port" env:"HTTP_PORT" env-default:"8090"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

// Addr returns host:port for net/http.
func (h HTTP) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

type Local struct {
	DataDir string `yaml:"data_dir" env:"DB_PATH" env-default:"./data"`
}

type Remote struct {
	// DatabaseURL is empty when the device runs without a remote store.
	DatabaseURL    string        `yaml:"database_url" env:"REMOTE_DATABASE_URL"`
	// SkipMigrations leaves the remote schema alone at startup.
	SkipMigrations bool          `yaml:"skip_migrations" env:"REMOTE_SKIP_MIGRATIONS"`
	MirrorTimeout  time.Duration `yaml:"mirror_timeout" env:"REMOTE_MIRROR_TIMEOUT" env-default:"5s"`
	SyncTimeout    time.Duration `yaml:"sync_timeout" env:"REMOTE_SYNC_TIMEOUT" env-default:"2m"`
}

// Enabled reports whether a remote store is configured.
func (r Remote) Enabled() bool {
	return r.DatabaseURL != ""
}

type Probe struct {
	Address string        `yaml:"address" env:"PROBE_ADDRESS" env-default:"1.1.1.1:53"`
	Timeout time.Duration `yaml:"timeout" env:"PROBE_TIMEOUT" env-default:"2s"`
}

type Audit struct {
	Path string `yaml:"path" env:"SYNC_AUDIT_PATH" env-default:"sync_log.txt"`
}

type Notify struct {
	NATSURL      string   `yaml:"nats_url" env:"NATS_URL"`
	NATSSubject  string   `yaml:"nats_subject" env:"NATS_SUBJECT" env-default:"groweasy.sync.completed"`
	KafkaBrokers []string `yaml:"kafka_brokers" env:"KAFKA_BROKERS" env-separator:","`
	KafkaTopic   string   `yaml:"kafka_topic" env:"KAFKA_TOPIC" env-default:"groweasy.sync.completed"`
}

type Log struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

// Load reads path (when not empty) and the environment into a Config.
// A .env file in the working directory is applied first if present;
// variables already set in the process win.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, apperrors.Wrap(apperrors.ErrConfig, "read .env", err)
	}

	var cfg Config
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrConfig, "config file "+path, err)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrConfig, "read config", err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrConfig, "read environment", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FetchPath returns the -config flag, falling back to CONFIG_PATH.
func FetchPath() string {
	var path string
	flag.StringVar(&path, "config", "", "path to config file")
	flag.Parse()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	return path
}

// Validate rejects values the server cannot start with.
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		add("env must be one of local, dev, prod (got %q)", c.Env)
	}
	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		add("http.port out of range: %d", c.HTTP.Port)
	}
	if strings.TrimSpace(c.Local.DataDir) == "" {
		add("local.data_dir is required")
	}
	if c.Remote.MirrorTimeout < 0 || c.Remote.SyncTimeout < 0 {
		add("remote timeouts cannot be negative")
	}
	if c.Remote.Enabled() && c.Probe.Timeout <= 0 {
		add("probe.timeout must be positive")
	}
	if strings.TrimSpace(c.Audit.Path) == "" {
		add("audit.path is required")
	}
	if c.Notify.NATSURL != "" && c.Notify.NATSSubject == "" {
		add("notify.nats_subject is required with notify.nats_url")
	}
	if len(c.Notify.KafkaBrokers) > 0 && c.Notify.KafkaTopic == "" {
		add("notify.kafka_topic is required with notify.kafka_brokers")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		add("log.level must be debug, info, warn or error (got %q)", c.Log.Level)
	}

	if len(problems) > 0 {
		return apperrors.New(apperrors.ErrConfig, strings.Join(problems, "; "))
	}
	return nil
}
