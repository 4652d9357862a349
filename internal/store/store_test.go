package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/tgienger/kanban/internal/slot"
)

type fataler interface {
	Helper()
	Fatalf(format string, args ...any)
}

// testClock advances one second per reading.
type testClock struct {
	t time.Time
}

func (c *testClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func openTestStore(t fataler, s slot.Slot) *Store {
	t.Helper()
	clock := &testClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	st, err := Open(context.Background(), Options{
		Slot:  s,
		Clock: clock.Now,
		NewID: sequentialIDs(),
	})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return st
}

func mustAdd(t fataler, s *Store, in NewTask) string {
	t.Helper()
	task := s.AddTask(context.Background(), in)
	if task == nil {
		t.Fatalf("add task %q failed: %s", in.Title, s.Err())
	}
	return task.ID
}

func TestOpen_Empty(t *testing.T) {
	s := openTestStore(t, slot.NewMemory())
	if len(s.Tasks()) != 0 || len(s.Tags()) != 0 {
		t.Error("expected empty collections")
	}
	if s.CurrentUser() != nil {
		t.Error("expected no session")
	}
	if s.IsLoading() || s.Err() != "" {
		t.Error("expected idle store without error")
	}
}

func TestOpen_Reload(t *testing.T) {
	ctx := context.Background()
	mem := slot.NewMemory()
	s := openTestStore(t, mem)

	tag := s.AddTag(ctx, NewTag{Name: "work"})
	parent := mustAdd(t, s, NewTask{Title: "Parent", TagIDs: []string{tag.ID}})
	mustAdd(t, s, NewTask{Title: "Child", ParentID: parent})

	reloaded, err := Open(ctx, Options{Slot: mem})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got := len(reloaded.Tasks()); got != 2 {
		t.Fatalf("expected 2 tasks after reload, got %d", got)
	}
	if got := reloaded.GetTagsForTask(parent); len(got) != 1 || got[0].Name != "work" {
		t.Errorf("unexpected tags after reload: %+v", got)
	}
	if kids := reloaded.GetTasksByParentID(parent); len(kids) != 1 || kids[0].Title != "Child" {
		t.Errorf("unexpected children after reload: %+v", kids)
	}
}

func TestOpen_PersistedShape(t *testing.T) {
	ctx := context.Background()
	mem := slot.NewMemory()
	s := openTestStore(t, mem)
	mustAdd(t, s, NewTask{Title: "A"})

	data, err := mem.Load(ctx, DefaultKey)
	if err != nil {
		t.Fatal(err)
	}
	for _, field := range []string{`"tasks":[`, `"tags":[]`, `"currentUser":null`} {
		if !strings.Contains(string(data), field) {
			t.Errorf("expected %s in %s", field, data)
		}
	}
	if strings.Contains(string(data), `"parentId"`) {
		t.Errorf("root task should omit parentId: %s", data)
	}
}

func TestOpen_Corrupt(t *testing.T) {
	ctx := context.Background()
	mem := slot.NewMemory()
	if err := mem.Save(ctx, DefaultKey, []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(ctx, Options{Slot: mem}); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestOpen_RequiresSlot(t *testing.T) {
	if _, err := Open(context.Background(), Options{}); err == nil {
		t.Fatal("expected error without slot")
	}
}

func TestSaveFailure_AddLeavesCollectionUnchanged(t *testing.T) {
	ctx := context.Background()
	mem := slot.NewMemory()
	s := openTestStore(t, mem)
	mustAdd(t, s, NewTask{Title: "saved"})

	mem.FailSaves = errors.New("disk full")
	if got := s.AddTask(ctx, NewTask{Title: "unsaved"}); got != nil {
		t.Error("expected nil result when the save fails")
	}
	if !strings.HasPrefix(s.Err(), "Failed to add task: ") || !strings.Contains(s.Err(), "disk full") {
		t.Errorf("unexpected error %q", s.Err())
	}
	if s.IsLoading() {
		t.Error("loading flag should be cleared after failure")
	}
	if got := len(s.Tasks()); got != 1 {
		t.Errorf("expected the failed add to be rolled back, got %d tasks", got)
	}
	if s.AddTag(ctx, NewTag{Name: "lost"}) != nil || len(s.Tags()) != 0 {
		t.Error("expected the failed tag add to be rolled back")
	}

	// The next successful save must not resurrect the failed records.
	mem.FailSaves = nil
	mustAdd(t, s, NewTask{Title: "later"})
	reloaded, err := Open(ctx, Options{Slot: mem})
	if err != nil {
		t.Fatal(err)
	}
	var titles []string
	for _, task := range reloaded.Tasks() {
		titles = append(titles, task.Title)
	}
	if strings.Join(titles, ",") != "saved,later" {
		t.Errorf("durable tasks = %v, want [saved later]", titles)
	}
	if len(reloaded.Tags()) != 0 {
		t.Errorf("durable tags = %+v, want none", reloaded.Tags())
	}
	if later := reloaded.GetTasksByParentID(""); later[1].Order != 1 {
		t.Errorf("orders not contiguous after rollback: %+v", later)
	}

	s.ClearError()
	if s.Err() != "" {
		t.Error("expected ClearError to reset the error")
	}
}

func TestCustomKey(t *testing.T) {
	ctx := context.Background()
	mem := slot.NewMemory()
	s, err := Open(ctx, Options{Slot: mem, Key: "other-board"})
	if err != nil {
		t.Fatal(err)
	}
	mustAdd(t, s, NewTask{Title: "A"})
	if _, err := mem.Load(ctx, "other-board"); err != nil {
		t.Errorf("expected record under custom key: %v", err)
	}
	if _, err := mem.Load(ctx, DefaultKey); !errors.Is(err, slot.ErrNotFound) {
		t.Errorf("expected nothing under default key, got %v", err)
	}
}
