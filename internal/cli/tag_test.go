package cli

import (
	"strings"
	"testing"
)

func TestTagCommands(t *testing.T) {
	env := newTestEnv(t)

	out := mustRun(t, env, "tag", "add", "work", "--colour", "#ff0000")
	if !strings.Contains(out, "Created tag work") {
		t.Errorf("unexpected output %q", out)
	}
	mustRun(t, env, "task", "add", "A", "--tag", "WORK")

	out = mustRun(t, env, "tag", "list")
	for _, want := range []string{"NAME", "work", "#ff0000", "1"} {
		if !strings.Contains(out, want) {
			t.Errorf("tag list missing %q:\n%s", want, out)
		}
	}

	mustRun(t, env, "tag", "rename", "work", "--name", "office")
	tags := env.Store.Tags()
	if len(tags) != 1 || tags[0].Name != "office" || tags[0].Color != "#ff0000" {
		t.Errorf("unexpected tags after rename: %+v", tags)
	}

	out = mustRun(t, env, "tag", "rm", "office")
	if !strings.Contains(out, "removed from 1 task") {
		t.Errorf("rm output %q", out)
	}
	if len(env.Store.Tags()) != 0 {
		t.Error("tag should be deleted")
	}
	if a := taskByTitle(t, env, "A"); len(a.TagIDs) != 0 {
		t.Errorf("tag reference left on task: %v", a.TagIDs)
	}
}

func TestTagCommands_Errors(t *testing.T) {
	env := newTestEnv(t)

	if _, err := run(t, env, "tag", "add", " "); err == nil || !strings.Contains(err.Error(), "Tag name is required") {
		t.Errorf("expected validation error, got %v", err)
	}
	if _, err := run(t, env, "tag", "rm", "missing"); err == nil || !strings.Contains(err.Error(), "tag not found") {
		t.Errorf("expected not found, got %v", err)
	}

	out := mustRun(t, env, "tag", "list")
	if !strings.Contains(out, "No tags.") {
		t.Errorf("expected empty listing, got %q", out)
	}
}
