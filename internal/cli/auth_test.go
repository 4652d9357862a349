package cli

import (
	"strings"
	"testing"
)

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t)

	out := mustRun(t, env, "whoami")
	if !strings.Contains(out, "Not signed in") {
		t.Errorf("whoami before login: %q", out)
	}

	out = mustRun(t, env, "register", "--user", "ada", "-e", "Ada@Example.com", "--password", "correct horse")
	if !strings.Contains(out, "signed in as ada") {
		t.Errorf("register output %q", out)
	}

	out = mustRun(t, env, "whoami")
	if !strings.Contains(out, "ada <ada@example.com>") {
		t.Errorf("whoami after register: %q", out)
	}

	mustRun(t, env, "logout")
	if env.Store.CurrentUser() != nil {
		t.Fatal("expected no user after logout")
	}

	out = mustRun(t, env, "login", "-e", "ada@example.com", "--password", "correct horse", "--print-token")
	if !strings.Contains(out, "Signed in as ada") {
		t.Errorf("login output %q", out)
	}
	token := strings.TrimSpace(out[strings.LastIndex(strings.TrimRight(out, "\n"), "\n"):])
	if _, err := env.Identity.Validate(token); err != nil {
		t.Errorf("printed token does not validate: %v", err)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	env := newTestEnv(t)
	mustRun(t, env, "register", "-u", "ada", "-e", "ada@example.com", "--password", "correct horse")
	mustRun(t, env, "logout")

	_, err := run(t, env, "login", "-e", "ada@example.com", "--password", "wrong password")
	if err == nil || !strings.Contains(err.Error(), "Login failed") {
		t.Fatalf("expected login failure, got %v", err)
	}
	if env.Store.CurrentUser() != nil {
		t.Error("failed login must not sign in")
	}
}

func TestLogin_PasswordFromInput(t *testing.T) {
	env := newTestEnv(t)
	mustRun(t, env, "register", "-u", "ada", "-e", "ada@example.com", "--password", "correct horse")
	mustRun(t, env, "logout")

	cmd := NewRootCmd(env)
	var out strings.Builder
	cmd.SetOut(&out)
	cmd.SetErr(&strings.Builder{})
	cmd.SetIn(strings.NewReader("correct horse\n"))
	cmd.SetArgs([]string{"login", "-e", "ada@example.com"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("login: %v", err)
	}
	if env.Store.CurrentUser() == nil {
		t.Error("expected user signed in with the password read from input")
	}
}

func TestLogout_NotSignedIn(t *testing.T) {
	out := mustRun(t, newTestEnv(t), "logout")
	if !strings.Contains(out, "Not signed in") {
		t.Errorf("logout output %q", out)
	}
}
