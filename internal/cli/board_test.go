package cli

import (
	"strings"
	"testing"
)

func TestBoard_Plain(t *testing.T) {
	env := newTestEnv(t)
	mustRun(t, env, "tag", "add", "ui")
	mustRun(t, env, "task", "add", "Sketch", "--tag", "ui")
	mustRun(t, env, "task", "add", "Build", "--status", "in-progress")
	sketch := taskByTitle(t, env, "Sketch")
	mustRun(t, env, "task", "add", "Colors", "--parent", sketch.ID)
	mustRun(t, env, "task", "add", "Fonts", "--parent", sketch.ID, "--status", "completed")

	out := mustRun(t, env, "board", "--plain")

	for _, want := range []string{"To Do (1)", "In Progress (1)", "Sketch", "[1/2]", "#ui", "Build"} {
		if !strings.Contains(out, want) {
			t.Errorf("board missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Completed") {
		t.Errorf("empty columns should be hidden:\n%s", out)
	}
	if strings.Contains(out, "Colors") {
		t.Errorf("subtasks belong under their card, not in a column:\n%s", out)
	}
	if strings.Index(out, "To Do") > strings.Index(out, "In Progress") {
		t.Errorf("columns out of order:\n%s", out)
	}
}
