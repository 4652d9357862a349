package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(LoadOptions{DataDir: dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Storage.Backend != BackendSQLite {
		t.Errorf("expected sqlite backend, got %q", cfg.Storage.Backend)
	}
	if cfg.Storage.Path != filepath.Join(dir, "kanban.db") {
		t.Errorf("unexpected storage path %q", cfg.Storage.Path)
	}
	if cfg.Storage.Key != DefaultStorageKey {
		t.Errorf("unexpected key %q", cfg.Storage.Key)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Errorf("unexpected ttl %s", cfg.Auth.TokenTTL)
	}
	if cfg.Server.Addr != "127.0.0.1:8080" {
		t.Errorf("unexpected addr %q", cfg.Server.Addr)
	}
	if cfg.UI.Theme != "night" {
		t.Errorf("unexpected theme %q", cfg.UI.Theme)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := `storage:
  backend: file
  key: my-board
log:
  level: debug
  file: logs/kanban.log
auth:
  required: true
  token_ttl: 2h
ui:
  theme: Day
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(LoadOptions{DataDir: dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Storage.Backend != BackendFile {
		t.Errorf("expected file backend, got %q", cfg.Storage.Backend)
	}
	if cfg.Storage.Path != filepath.Join(dir, "slots") {
		t.Errorf("unexpected slot dir %q", cfg.Storage.Path)
	}
	if cfg.Storage.Key != "my-board" {
		t.Errorf("unexpected key %q", cfg.Storage.Key)
	}
	if cfg.Log.File != filepath.Join(dir, "logs", "kanban.log") {
		t.Errorf("unexpected log file %q", cfg.Log.File)
	}
	if !cfg.Auth.Required {
		t.Error("expected auth.required")
	}
	if cfg.UI.Theme != "day" {
		t.Errorf("expected theme day, got %q", cfg.UI.Theme)
	}
	if cfg.Auth.TokenTTL != 2*time.Hour {
		t.Errorf("unexpected ttl %s", cfg.Auth.TokenTTL)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("storage:\n  backend: file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("KANBAN_STORAGE_BACKEND", "memory")

	cfg, err := Load(LoadOptions{DataDir: dir})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Storage.Backend != BackendMemory {
		t.Errorf("expected env to win, got %q", cfg.Storage.Backend)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("KANBAN_SERVER_ADDR=127.0.0.1:9999\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	// Register for cleanup; godotenv does not override variables that are
	// already set, so start from empty.
	t.Setenv("KANBAN_SERVER_ADDR", "")
	os.Unsetenv("KANBAN_SERVER_ADDR")

	cfg, err := Load(LoadOptions{DataDir: dir, EnvFile: envFile})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9999" {
		t.Errorf("expected addr from .env, got %q", cfg.Server.Addr)
	}
}

func TestLoad_MissingEnvFileIgnored(t *testing.T) {
	if _, err := Load(LoadOptions{DataDir: t.TempDir(), EnvFile: filepath.Join(t.TempDir(), "nope.env")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoad_InvalidBackend(t *testing.T) {
	t.Setenv("KANBAN_STORAGE_BACKEND", "mongo")
	_, err := Load(LoadOptions{DataDir: t.TempDir()})
	if err == nil || !strings.Contains(err.Error(), "storage.backend") {
		t.Fatalf("expected backend validation error, got %v", err)
	}
}

func TestDefaultDataDir_XDG(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg")
	dir, err := DefaultDataDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != filepath.Join("/tmp/xdg", "kanban") {
		t.Errorf("unexpected dir %q", dir)
	}
}
