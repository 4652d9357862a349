package cli

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/tgienger/kanban/internal/config"
	"github.com/tgienger/kanban/internal/db"
	"github.com/tgienger/kanban/internal/identity"
	"github.com/tgienger/kanban/internal/logging"
	"github.com/tgienger/kanban/internal/slot"
	"github.com/tgienger/kanban/internal/store"
	"github.com/tgienger/kanban/internal/ui/views"
)

// GlobalOptions are the persistent flags shared by every command.
type GlobalOptions struct {
	ConfigFile string
	DataDir    string
	EnvFile    string
	LogLevel   string
	// Ephemeral keeps everything in memory for this run.
	Ephemeral bool
}

// Env is everything a command needs, wired from configuration.
type Env struct {
	Config   *config.Config
	Log      *logrus.Logger
	Store    *store.Store
	Identity *identity.Local
	// Settings remembers UI preferences. Nil unless the sqlite backend is
	// in use.
	Settings views.Settings

	closers []func() error
}

// Close releases the storage backend.
func (e *Env) Close() error {
	var first error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	e.closers = nil
	return first
}

// Bootstrap loads configuration and opens storage, identity and the store.
func Bootstrap(ctx context.Context, opts GlobalOptions) (*Env, error) {
	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: opts.ConfigFile,
		DataDir:    opts.DataDir,
		EnvFile:    opts.EnvFile,
	})
	if err != nil {
		return nil, err
	}
	if opts.Ephemeral {
		cfg.Storage.Backend = config.BackendMemory
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}

	log, err := logging.New(logging.Options{File: cfg.Log.File, Level: cfg.Log.Level})
	if err != nil {
		return nil, err
	}

	env := &Env{Config: cfg, Log: log}

	var s slot.Slot
	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		database, err := db.New(cfg.Storage.Path)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		env.closers = append(env.closers, database.Close)
		env.Settings = database
		s = database
	case config.BackendFile:
		s = slot.NewFile(cfg.Storage.Path)
	default:
		s = slot.NewMemory()
	}

	env.Identity, err = identity.NewLocal(ctx, identity.LocalOptions{
		Slot:     s,
		Secret:   cfg.Auth.JWTSecret,
		TokenTTL: cfg.Auth.TokenTTL,
	})
	if err != nil {
		env.Close()
		return nil, fmt.Errorf("opening identity: %w", err)
	}

	env.Store, err = store.Open(ctx, store.Options{
		Slot:     s,
		Key:      cfg.Storage.Key,
		Identity: env.Identity,
		Logger:   log,
	})
	if err != nil {
		env.Close()
		return nil, fmt.Errorf("opening store: %w", err)
	}

	log.Debugf("Event ID: STARTUP, Description: backend=%s path=%s", cfg.Storage.Backend, cfg.Storage.Path)
	return env, nil
}
