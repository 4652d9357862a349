package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/tgienger/kanban/internal/identity"
	"github.com/tgienger/kanban/internal/logging"
	"github.com/tgienger/kanban/internal/models"
	"github.com/tgienger/kanban/internal/slot"
	"github.com/tgienger/kanban/internal/store"
	"golang.org/x/crypto/bcrypt"
)

func newTestEnv(t *testing.T) *Env {
	t.Helper()
	ctx := context.Background()
	mem := slot.NewMemory()

	id, err := identity.NewLocal(ctx, identity.LocalOptions{
		Slot:   mem,
		Secret: "test-secret",
		Cost:   bcrypt.MinCost,
	})
	if err != nil {
		t.Fatalf("identity: %v", err)
	}
	st, err := store.Open(ctx, store.Options{
		Slot:     mem,
		Identity: id,
		Logger:   logging.Discard(),
	})
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	return &Env{Log: logging.Discard(), Store: st, Identity: id}
}

// run executes the command line against env and returns stdout.
func run(t *testing.T, env *Env, args ...string) (string, error) {
	t.Helper()
	orig := isTerminal
	isTerminal = func() bool { return false }
	defer func() { isTerminal = orig }()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd(env)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func mustRun(t *testing.T, env *Env, args ...string) string {
	t.Helper()
	out, err := run(t, env, args...)
	if err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	return out
}

// taskByTitle finds a task the test created.
func taskByTitle(t *testing.T, env *Env, title string) models.Task {
	t.Helper()
	for _, task := range env.Store.Tasks() {
		if task.Title == title {
			return task
		}
	}
	t.Fatalf("no task titled %q", title)
	return models.Task{}
}

func TestSetVersionInfo(t *testing.T) {
	origVersion, origCommit, origDate := appVersion, appCommit, appDate
	defer func() {
		appVersion, appCommit, appDate = origVersion, origCommit, origDate
	}()

	SetVersionInfo("1.2.3", "abc1234", "2026-02-13")

	out := mustRun(t, nil, "version")
	for _, want := range []string{"kanban 1.2.3", "abc1234", "2026-02-13"} {
		if !strings.Contains(out, want) {
			t.Errorf("version output missing %q: %q", want, out)
		}
	}
}

func TestExecute_UnknownCommand(t *testing.T) {
	_, err := run(t, newTestEnv(t), "nonexistent-command")
	if err == nil {
		t.Fatal("expected error for unknown command")
	}
	if !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestRootCmd_Registration(t *testing.T) {
	root := NewRootCmd(nil)
	want := []string{"version", "board", "task", "tag", "login", "register", "logout", "whoami", "export", "serve"}
	for _, name := range want {
		found := false
		for _, cmd := range root.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("%s command not registered on root", name)
		}
	}
}

func TestRoot_DefaultsToPlainBoard(t *testing.T) {
	env := newTestEnv(t)
	out := mustRun(t, env)
	if !strings.Contains(out, "No tasks") {
		t.Errorf("expected empty board message, got %q", out)
	}
}

func TestBootstrap_Ephemeral(t *testing.T) {
	dir := t.TempDir()
	env, err := Bootstrap(context.Background(), GlobalOptions{DataDir: dir, Ephemeral: true})
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	defer env.Close()

	if env.Settings != nil {
		t.Error("memory backend should not provide settings")
	}
	if env.Store.AddTask(context.Background(), store.NewTask{Title: "x"}) == nil {
		t.Fatalf("add: %s", env.Store.Err())
	}
}

func TestBootstrap_SQLitePersists(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	env, err := Bootstrap(ctx, GlobalOptions{DataDir: dir})
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if env.Settings == nil {
		t.Error("sqlite backend should provide settings")
	}
	env.Store.AddTask(ctx, store.NewTask{Title: "kept"})
	if err := env.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	env, err = Bootstrap(ctx, GlobalOptions{DataDir: dir})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer env.Close()
	tasks := env.Store.Tasks()
	if len(tasks) != 1 || tasks[0].Title != "kept" {
		t.Errorf("expected the saved task after reopening, got %+v", tasks)
	}
}

func TestSetFlagAliases(t *testing.T) {
	var description string
	cmd := &cobra.Command{Use: "example"}
	cmd.Flags().StringVarP(&description, "description", "d", "", "Example description")
	setFlagAliases(cmd.Flags(), map[string]string{"desc": "description"})

	if err := cmd.Flags().Set("desc", "Hello"); err != nil {
		t.Fatalf("set desc alias: %v", err)
	}
	if description != "Hello" {
		t.Fatalf("expected description to be set via alias, got %q", description)
	}
	if !cmd.Flags().Changed("description") {
		t.Fatal("expected description flag to be marked as changed")
	}
	if strings.Contains(cmd.Flags().FlagUsages(), "--desc ") {
		t.Fatal("did not expect alias to appear in usage")
	}
}
