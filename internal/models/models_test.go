package models

import (
	"testing"
	"time"
)

func TestTaskClone(t *testing.T) {
	due := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	orig := Task{ID: "a", TagIDs: []string{"t1"}, DueDate: &due}

	c := orig.Clone()
	c.TagIDs[0] = "changed"
	*c.DueDate = due.AddDate(0, 0, 1)
	if orig.TagIDs[0] != "t1" || !orig.DueDate.Equal(due) {
		t.Error("clone shares memory with the original")
	}

	for _, tags := range [][]string{nil, {}} {
		if got := (Task{TagIDs: tags}).Clone().TagIDs; got == nil || len(got) != 0 {
			t.Errorf("Clone of %#v: expected an empty non-nil tag set, got %#v", tags, got)
		}
	}
}
