package commands_test

import (
	"os"
	"strings"
	"testing"

	"todo/internal/commands"
	"todo/internal/config"
	"todo/internal/exitcode"
)

// TestLoginCommand_NoOAuthClient verifies the Google backend needs oauth_client.json
func TestLoginCommand_NoOAuthClient(t *testing.T) {
	h := newHarness(t, false)
	h.env.Config.Backend = config.BackendGoogleTasks

	stdout, stderr, code := h.run(t, &commands.LoginCmd{})

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	if !strings.HasPrefix(stderr, "error: oauth_client.json not found in ") {
		t.Errorf("expected error message about missing oauth_client.json, got %q", stderr)
	}
	if h.backend.CallCount("login") != 0 {
		t.Error("expected no login attempt")
	}
}

func TestLoginCommand_WithFlags(t *testing.T) {
	h := newHarness(t, false)
	h.backend.AddUser("alice", "secret1")

	stdout, stderr, code := h.run(t, &commands.LoginCmd{}, "--username", "alice", "--password", "secret1")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok', got %q", stdout)
	}
	if !h.env.Session.IsAuthenticated() {
		t.Error("expected an authenticated session")
	}
	data, err := os.ReadFile(h.env.Config.TokenPath())
	if err != nil {
		t.Fatalf("expected token file: %v", err)
	}
	if !strings.Contains(string(data), "fake-token") {
		t.Errorf("unexpected token file: %s", data)
	}
}

func TestLoginCommand_Prompts(t *testing.T) {
	h := newHarness(t, false)
	h.backend.AddUser("alice", "secret1")
	h.input("alice\nsecret1\n")

	_, stderr, code := h.run(t, &commands.LoginCmd{})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stderr != "Username: Password: " {
		t.Errorf("unexpected prompts: %q", stderr)
	}
}

func TestLoginCommand_PasswordReader(t *testing.T) {
	h := newHarness(t, false)
	h.backend.AddUser("alice", "secret1")
	h.env.ReadPassword = func() (string, error) { return "secret1", nil }

	_, stderr, code := h.run(t, &commands.LoginCmd{}, "--username", "alice")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stderr != "Password: \n" {
		t.Errorf("unexpected prompt: %q", stderr)
	}
}

func TestLoginCommand_ValidationBlocksRequest(t *testing.T) {
	h := newHarness(t, false)

	_, stderr, code := h.run(t, &commands.LoginCmd{}, "--username", "al", "--password", "123")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: invalid input\n  username: too_short (3)\n  password: too_short (6)\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
	if h.backend.CallCount("login") != 0 {
		t.Error("expected no login request")
	}
}

func TestLoginCommand_BadCredentials(t *testing.T) {
	h := newHarness(t, false)

	_, stderr, code := h.run(t, &commands.LoginCmd{}, "--username", "alice", "--password", "wrongpw")

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: Invalid username or password (status 401) (run: todo login)\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
	if h.env.Session.IsAuthenticated() {
		t.Error("expected no session")
	}
}

func TestLoginCommand_AlreadyLoggedIn(t *testing.T) {
	h := newHarness(t, true)

	stdout, _, code := h.run(t, &commands.LoginCmd{})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "already logged in\n" {
		t.Errorf("expected 'already logged in', got %q", stdout)
	}
	if h.backend.CallCount("login") != 0 {
		t.Error("expected no login request")
	}
}

func TestLoginCommand_BrowserFlow(t *testing.T) {
	h := newHarness(t, false)
	h.backend.Browser = true

	stdout, stderr, code := h.run(t, &commands.LoginCmd{})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stderr != "" {
		t.Errorf("expected no credential prompts, got %q", stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok', got %q", stdout)
	}
}

// Tests for register command
func TestRegisterCommand(t *testing.T) {
	h := newHarness(t, false)

	stdout, stderr, code := h.run(t, &commands.RegisterCmd{}, "--username", "alice", "--password", "longenough")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "registered, now run: todo login\n" {
		t.Errorf("unexpected output: %q", stdout)
	}
	if h.env.Session.IsAuthenticated() {
		t.Error("register must not log in")
	}
}

func TestRegisterCommand_ShortPassword(t *testing.T) {
	h := newHarness(t, false)

	_, stderr, code := h.run(t, &commands.RegisterCmd{}, "--username", "alice", "--password", "short1")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: invalid input\n  password: too_short (8)\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
	if h.backend.CallCount("register") != 0 {
		t.Error("expected no register request")
	}
}

func TestRegisterCommand_Taken(t *testing.T) {
	h := newHarness(t, false)
	h.backend.AddUser("alice", "whatever")

	_, stderr, code := h.run(t, &commands.RegisterCmd{}, "--username", "alice", "--password", "longenough")

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if !strings.Contains(stderr, "Username already exists") {
		t.Errorf("expected the server message, got %q", stderr)
	}
}

// TestLogoutCommand_ClearsSession verifies logout removes the token and the collection
func TestLogoutCommand_ClearsSession(t *testing.T) {
	h := newHarness(t, true)
	h.backend.AddTask("t1", "Task 1")
	h.run(t, &commands.ListCmd{})

	stdout, stderr, code := h.run(t, &commands.LogoutCmd{})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "ok\n" {
		t.Errorf("expected 'ok', got %q", stdout)
	}
	if _, err := os.Stat(h.env.Config.TokenPath()); !os.IsNotExist(err) {
		t.Error("token.json should be deleted")
	}
	if h.env.Tasks.Len() != 0 || h.env.Tasks.Loaded() {
		t.Error("expected the collection to be cleared")
	}

	_, stderr, code = h.run(t, &commands.ListCmd{})
	if code != exitcode.AuthError {
		t.Errorf("expected list after logout to fail with %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: not authenticated: not logged in (run: todo login)\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
}

// TestLogoutCommand_NotLoggedIn verifies logout when not logged in
func TestLogoutCommand_NotLoggedIn(t *testing.T) {
	h := newHarness(t, false)

	stdout, stderr, code := h.run(t, &commands.LogoutCmd{})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if stdout != "not logged in\n" {
		t.Errorf("expected 'not logged in', got %q", stdout)
	}
}

// TestLogoutCommand_NotLoggedInQuiet verifies quiet mode
func TestLogoutCommand_NotLoggedInQuiet(t *testing.T) {
	h := newHarness(t, false)
	h.env.Config.Quiet = true

	stdout, _, code := h.run(t, &commands.LogoutCmd{})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "" {
		t.Errorf("expected no output in quiet mode, got %q", stdout)
	}
}

func TestWhoamiCommand(t *testing.T) {
	h := newHarness(t, true)

	stdout, _, code := h.run(t, &commands.WhoamiCmd{})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "(unknown user) (rest)\n" {
		t.Errorf("unexpected output: %q", stdout)
	}
}
