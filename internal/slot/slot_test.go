package slot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestFile_LoadMissing(t *testing.T) {
	f := NewFile(t.TempDir())
	_, err := f.Load(context.Background(), "task-manager-storage")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFile_SaveLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	f := NewFile(dir)
	ctx := context.Background()

	if err := f.Save(ctx, "task-manager-storage", []byte(`{"tasks":[]}`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := f.Load(ctx, "task-manager-storage")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(got) != `{"tasks":[]}` {
		t.Errorf("unexpected content %q", got)
	}

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected exactly one file in slot dir, got %d", len(entries))
	}
}

func TestFile_KeyIsSanitized(t *testing.T) {
	dir := t.TempDir()
	f := NewFile(dir)
	if err := f.Save(context.Background(), "../escape/key", []byte("x")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".._escape_key.json")); err != nil {
		t.Errorf("expected sanitized file inside slot dir: %v", err)
	}
}

func TestFile_SaveCancelledContext(t *testing.T) {
	f := NewFile(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := f.Save(ctx, "k", []byte("x")); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestMemory_CopiesData(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	data := []byte("abc")
	if err := m.Save(ctx, "k", data); err != nil {
		t.Fatal(err)
	}
	data[0] = 'z'
	got, err := m.Load(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "abc" {
		t.Errorf("memory slot aliased caller slice: %q", got)
	}

	m.FailSaves = errors.New("disk full")
	if err := m.Save(ctx, "k", []byte("x")); err == nil {
		t.Error("expected FailSaves error")
	}
}
