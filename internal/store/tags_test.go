package store

import (
	"context"
	"strings"
	"testing"

	"github.com/tgienger/kanban/internal/slot"
)

func TestAddTag(t *testing.T) {
	s := openTestStore(t, slot.NewMemory())
	tag := s.AddTag(context.Background(), NewTag{Name: " backend ", Color: "#7aa2f7"})
	if tag == nil {
		t.Fatalf("add failed: %s", s.Err())
	}
	if tag.Name != "backend" || tag.Color != "#7aa2f7" {
		t.Errorf("unexpected tag %+v", tag)
	}
	if len(s.Tags()) != 1 {
		t.Error("expected one tag")
	}
}

func TestAddTag_Validation(t *testing.T) {
	s := openTestStore(t, slot.NewMemory())
	if s.AddTag(context.Background(), NewTag{Name: ""}) != nil {
		t.Error("expected empty name to be rejected")
	}
	if s.Err() != "Tag name is required" {
		t.Errorf("unexpected error %q", s.Err())
	}
	if s.AddTag(context.Background(), NewTag{Name: strings.Repeat("n", MaxTagNameLength+1)}) != nil {
		t.Error("expected long name to be rejected")
	}
	if len(s.Tags()) != 0 {
		t.Error("rejected adds must not mutate")
	}
}

func TestUpdateTag(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, slot.NewMemory())
	tag := s.AddTag(ctx, NewTag{Name: "old", Color: "red"})

	name := "new"
	s.UpdateTag(ctx, tag.ID, TagUpdate{Name: &name})

	got := s.Tags()[0]
	if got.Name != "new" || got.Color != "red" {
		t.Errorf("unexpected tag after update %+v", got)
	}
	if !got.UpdatedAt.After(tag.UpdatedAt) {
		t.Error("expected UpdatedAt to advance")
	}

	s.UpdateTag(ctx, "missing", TagUpdate{Name: &name})
	if s.Err() != "" {
		t.Errorf("unknown id should be a silent no-op, got %q", s.Err())
	}
}

func TestDeleteTag_StripsReferences(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t, slot.NewMemory())
	keep := s.AddTag(ctx, NewTag{Name: "keep"})
	drop := s.AddTag(ctx, NewTag{Name: "drop"})
	a := mustAdd(t, s, NewTask{Title: "A", TagIDs: []string{keep.ID, drop.ID}})
	mustAdd(t, s, NewTask{Title: "B", TagIDs: []string{drop.ID}, ParentID: a})

	s.DeleteTag(ctx, drop.ID)

	if tags := s.Tags(); len(tags) != 1 || tags[0].ID != keep.ID {
		t.Errorf("unexpected remaining tags %+v", tags)
	}
	for _, task := range s.Tasks() {
		if task.HasTag(drop.ID) {
			t.Errorf("task %s still references deleted tag", task.Title)
		}
	}
	if got := s.GetTasksByTag(keep.ID); len(got) != 1 {
		t.Errorf("expected A to keep its other tag, got %+v", got)
	}
}
