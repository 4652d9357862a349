package db

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/tgienger/kanban/internal/slot"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := New(filepath.Join(t.TempDir(), "data", FileName))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func TestSettings(t *testing.T) {
	database := newTestDB(t)

	value, err := database.GetSetting("board.column")
	if err != nil {
		t.Fatalf("get missing setting: %v", err)
	}
	if value != "" {
		t.Errorf("expected empty value for missing setting, got %q", value)
	}

	if err := database.SetSetting("board.column", "1"); err != nil {
		t.Fatal(err)
	}
	if err := database.SetSetting("board.column", "2"); err != nil {
		t.Fatal(err)
	}
	value, err = database.GetSetting("board.column")
	if err != nil {
		t.Fatal(err)
	}
	if value != "2" {
		t.Errorf("expected upserted value 2, got %q", value)
	}
}

func TestSlotRoundTrip(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	if _, err := database.Load(ctx, "task-manager-storage"); !errors.Is(err, slot.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := database.Save(ctx, "task-manager-storage", []byte(`{"tasks":[]}`)); err != nil {
		t.Fatal(err)
	}
	if err := database.Save(ctx, "task-manager-storage", []byte(`{"tasks":[1]}`)); err != nil {
		t.Fatal(err)
	}
	got, err := database.Load(ctx, "task-manager-storage")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `{"tasks":[1]}` {
		t.Errorf("unexpected blob %q", got)
	}
}

func TestInMemoryDatabase(t *testing.T) {
	database, err := New(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close()

	var s slot.Slot = database
	if err := s.Save(context.Background(), "k", []byte("v")); err != nil {
		t.Fatal(err)
	}
	got, err := s.Load(context.Background(), "k")
	if err != nil || string(got) != "v" {
		t.Fatalf("got %q, %v", got, err)
	}
}
