// Package config loads kanban configuration from config.yaml, the
// environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// DefaultStorageKey names the record that holds the board state.
const DefaultStorageKey = "task-manager-storage"

// Config is the resolved configuration.
type Config struct {
	DataDir string
	Storage Storage
	Log     Log
	Server  Server
	Auth    Auth
	UI      UI
}

// Storage selects where the board state is persisted.
type Storage struct {
	// Backend is one of sqlite, file or memory.
	Backend string
	// Path is the sqlite database file or the slot directory for the file
	// backend. Relative paths resolve against DataDir.
	Path string
	// Key is the record name holding the serialized state.
	Key string
}

// Log configures logging output.
type Log struct {
	File  string
	Level string
}

// Server configures the HTTP API.
type Server struct {
	Addr string
}

// Auth configures the local identity provider.
type Auth struct {
	// Required makes the HTTP API reject task and tag requests without a
	// valid bearer token.
	Required bool
	// JWTSecret signs session tokens. Empty means a secret generated once
	// and kept alongside the credentials.
	JWTSecret string
	// TokenTTL is the session token lifetime.
	TokenTTL time.Duration
}

// UI configures the terminal board.
type UI struct {
	// Theme is night or day.
	Theme string
}

// LoadOptions controls where configuration is read from.
type LoadOptions struct {
	// ConfigFile is an explicit config file. Empty means config.yaml in
	// the data dir, if present.
	ConfigFile string
	// DataDir overrides the data directory.
	DataDir string
	// EnvFile is a dotenv file loaded before reading the environment.
	// Missing files are ignored.
	EnvFile string
}

// DefaultDataDir returns $XDG_DATA_HOME/kanban, falling back to
// ~/.local/share/kanban.
func DefaultDataDir() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "kanban"), nil
}

// Load resolves configuration. Precedence, highest first: KANBAN_*
// environment variables (including those from the dotenv file), the config
// file, built-in defaults.
func Load(opts LoadOptions) (*Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", opts.EnvFile, err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix("KANBAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	dataDir := opts.DataDir
	if dataDir == "" {
		dataDir = v.GetString("data_dir")
	}
	if dataDir == "" {
		var err error
		dataDir, err = DefaultDataDir()
		if err != nil {
			return nil, err
		}
	}

	v.SetDefault("storage.backend", BackendSQLite)
	v.SetDefault("storage.path", "")
	v.SetDefault("storage.key", DefaultStorageKey)
	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("server.addr", "127.0.0.1:8080")
	v.SetDefault("auth.required", false)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", "24h")
	v.SetDefault("ui.theme", "night")

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dataDir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &Config{
		DataDir: dataDir,
		Storage: Storage{
			Backend: strings.ToLower(strings.TrimSpace(v.GetString("storage.backend"))),
			Path:    v.GetString("storage.path"),
			Key:     v.GetString("storage.key"),
		},
		Log: Log{
			File:  v.GetString("log.file"),
			Level: v.GetString("log.level"),
		},
		Server: Server{
			Addr: v.GetString("server.addr"),
		},
		Auth: Auth{
			Required:  v.GetBool("auth.required"),
			JWTSecret: v.GetString("auth.jwt_secret"),
			TokenTTL:  v.GetDuration("auth.token_ttl"),
		},
		UI: UI{
			Theme: strings.ToLower(strings.TrimSpace(v.GetString("ui.theme"))),
		},
	}

	if cfg.Storage.Path == "" {
		switch cfg.Storage.Backend {
		case BackendFile:
			cfg.Storage.Path = "slots"
		default:
			cfg.Storage.Path = "kanban.db"
		}
	}
	cfg.Storage.Path = cfg.resolve(cfg.Storage.Path)
	if cfg.Log.File != "" {
		cfg.Log.File = cfg.resolve(cfg.Log.File)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.DataDir, path)
}

// Validate checks that the resolved values are usable.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendSQLite, BackendFile, BackendMemory:
	default:
		return fmt.Errorf("storage.backend must be one of sqlite, file, memory: got %q", c.Storage.Backend)
	}
	if strings.TrimSpace(c.Storage.Key) == "" {
		return fmt.Errorf("storage.key must not be empty")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive: got %s", c.Auth.TokenTTL)
	}
	return nil
}
