package styles

import (
	"testing"

	"github.com/tgienger/kanban/internal/markdown"
	"github.com/tgienger/kanban/internal/models"
)

func TestUse(t *testing.T) {
	defer func() { Current = Night }()

	if err := Use(" DAY "); err != nil {
		t.Fatalf("Use(day): %v", err)
	}
	if Current.Name != "day" || Current.Markdown != markdown.Light {
		t.Errorf("expected the day theme, got %q", Current.Name)
	}
	if err := Use(""); err != nil || Current.Name != "night" {
		t.Errorf("empty name should select night, got %q (%v)", Current.Name, err)
	}
	if err := Use("neon"); err == nil {
		t.Error("expected an error for an unknown theme")
	}
	if Current.Name != "night" {
		t.Error("a failed Use must not change the current theme")
	}
}

func TestPriorityColor(t *testing.T) {
	seen := map[string]bool{}
	for _, p := range models.ValidPriorities() {
		seen[string(PriorityColor(p))] = true
	}
	if len(seen) != len(models.ValidPriorities()) {
		t.Errorf("expected a distinct color per priority, got %v", seen)
	}
	if PriorityColor("bogus") != Current.Muted {
		t.Error("unknown priorities should be muted")
	}
}

func TestTagColor(t *testing.T) {
	if got := TagColor(models.Tag{Color: "#123456"}); got != "#123456" {
		t.Errorf("got %q", got)
	}
	if got := TagColor(models.Tag{}); got != Current.Todo {
		t.Errorf("uncolored tag got %q", got)
	}
}

func TestContentWidth(t *testing.T) {
	if ContentWidth(80) != 80 || ContentWidth(300) != MaxWidth {
		t.Error("content width should cap at MaxWidth")
	}
}
