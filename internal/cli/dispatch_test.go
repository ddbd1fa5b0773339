package cli_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"todo/internal/cli"
	"todo/internal/commands"
	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/service"
	"todo/internal/session"
	"todo/internal/testutil"
)

// testFactory creates a backend factory that returns the given FakeBackend.
func testFactory(backend *testutil.FakeBackend) cli.BackendFactory {
	return func(ctx context.Context, cfg *config.Config, sess *session.Session, errOut io.Writer) (service.Backend, error) {
		return backend, nil
	}
}

// loggedInDir returns a config directory holding a session token.
func loggedInDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeToken(t, dir)
	return dir
}

func writeToken(t *testing.T, dir string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0700); err != nil {
		t.Fatal(err)
	}
	token := `{"access_token":"fake-token","token_type":"Bearer"}`
	if err := os.WriteFile(filepath.Join(dir, config.TokenFile), []byte(token), 0600); err != nil {
		t.Fatalf("failed to write token.json: %v", err)
	}
}

func run(t *testing.T, d *cli.Dispatcher, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	code = d.Run(context.Background(), args, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeBackend()))

	_, stderr, code := run(t, dispatcher, "unknowncmd")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: unknowncmd\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_FlagBeforeCommand(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeBackend()))

	_, stderr, code := run(t, dispatcher, "--quiet")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: --quiet\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_HelpCommand(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeBackend()))

	stdout, stderr, code := run(t, dispatcher, "help", "--config", t.TempDir())

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !strings.Contains(stdout, "Usage:") {
		t.Error("expected help output to contain 'Usage:'")
	}
}

func TestDispatcher_VersionCommand(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeBackend()))

	stdout, _, code := run(t, dispatcher, "version", "--config", t.TempDir())

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "todo 0.1.0\n" {
		t.Errorf("expected version output, got %q", stdout)
	}
}

func TestDispatcher_UnknownFlag(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeBackend()))

	_, stderr, code := run(t, dispatcher, "help", "--unknown")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown flag: -unknown\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_MissingFlagValue(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeBackend()))

	_, stderr, code := run(t, dispatcher, "add", "Buy milk", "--priority")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: flag needs an argument: -priority\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_NotLoggedIn(t *testing.T) {
	backend := testutil.NewFakeBackend()
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(backend))

	_, stderr, code := run(t, dispatcher, "list", "--config", t.TempDir())

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: not logged in (run: todo login)\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
	if backend.CallCount("list") != 0 {
		t.Error("expected no request without a session")
	}
}

func TestDispatcher_NoArgsLists(t *testing.T) {
	backend := testutil.NewFakeBackend()
	backend.AddTask("t1", "Buy milk")
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	writeToken(t, filepath.Join(xdg, config.AppName))
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(backend))

	stdout, stderr, code := run(t, dispatcher)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "   1  Buy milk  [medium] pending\n" {
		t.Errorf("unexpected output: %q", stdout)
	}
}

func TestDispatcher_FlagsAfterArguments(t *testing.T) {
	backend := testutil.NewFakeBackend()
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(backend))

	_, stderr, code := run(t, dispatcher, "add", "Call", "mom", "--priority", "high", "--config", loggedInDir(t), "--", "--now")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	stored := backend.Stored()
	if len(stored) != 1 || stored[0].Title != "Call mom --now" || stored[0].Priority != service.PriorityHigh {
		t.Errorf("unexpected stored tasks: %+v", stored)
	}
}

func TestDispatcher_BadSettings(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.SettingsFile), []byte("backend = \"carrier-pigeon\"\n"), 0600); err != nil {
		t.Fatal(err)
	}
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeBackend()))

	_, stderr, code := run(t, dispatcher, "version", "--config", dir)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: unknown backend: carrier-pigeon\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
}

func TestDispatcher_FactoryError(t *testing.T) {
	factory := func(ctx context.Context, cfg *config.Config, sess *session.Session, errOut io.Writer) (service.Backend, error) {
		return nil, errors.New("invalid oauth_client.json")
	}
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

	_, stderr, code := run(t, dispatcher, "list", "--config", t.TempDir())

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stderr != "error: backend error: invalid oauth_client.json\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
}

func TestDispatcher_LoginThenList(t *testing.T) {
	backend := testutil.NewFakeBackend()
	backend.AddUser("alice", "secret1")
	backend.AddTask("t1", "Buy milk")
	dir := t.TempDir()

	_, stderr, code := run(t, cli.NewDispatcher(commands.DefaultRegistry, testFactory(backend)),
		"login", "--config", dir, "--username", "alice", "--password", "secret1")
	if code != exitcode.Success {
		t.Fatalf("login failed with %d: %s", code, stderr)
	}

	// A new process reads the stored token.
	stdout, stderr, code := run(t, cli.NewDispatcher(commands.DefaultRegistry, testFactory(backend)), "list", "--config", dir)
	if code != exitcode.Success {
		t.Fatalf("list failed with %d: %s", code, stderr)
	}
	if stdout != "   1  Buy milk  [medium] pending\n" {
		t.Errorf("unexpected output: %q", stdout)
	}
}

func TestDispatcher_Shell(t *testing.T) {
	backend := testutil.NewFakeBackend()
	dir := loggedInDir(t)

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(backend))
	dispatcher.SetInput(strings.NewReader(strings.Join([]string{
		"add Buy milk",
		"add --priority high 'Call mom'",
		"move 2 1",
		"list",
		"list --quiet --status completed",
		"exit",
	}, "\n") + "\n"))

	stdout, stderr, code := run(t, dispatcher, "shell", "--config", dir)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	p := commands.ShellPrompt
	expected := p + "ok\n" +
		p + "ok\n" +
		p + "ok\n" +
		p + "   1  Call mom  [high] pending\n" +
		"   2  Buy milk  [medium] pending\n" +
		p + p
	if stdout != expected {
		t.Errorf("expected:\n%s\ngot:\n%s", expected, stdout)
	}
	if got := backend.CallCount("list"); got != 2 {
		t.Errorf("expected the shell to load once before filtering, got %d loads", got)
	}

	// The server order comes back in a new process.
	stdout, _, _ = run(t, cli.NewDispatcher(commands.DefaultRegistry, testFactory(backend)), "list", "--config", dir)
	if !strings.HasPrefix(stdout, "   1  Buy milk") {
		t.Errorf("expected server order after reload, got %q", stdout)
	}
}

func TestDispatcher_ShellLogout(t *testing.T) {
	backend := testutil.NewFakeBackend()
	backend.AddTask("t1", "Buy milk")

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(backend))
	dispatcher.SetInput(strings.NewReader("list\nlogout\nlist\n"))

	stdout, stderr, code := run(t, dispatcher, "shell", "--config", loggedInDir(t))

	if code != exitcode.AuthError {
		t.Errorf("expected the last command's exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: not logged in (run: todo login)\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
	if !strings.Contains(stdout, "Buy milk") || !strings.Contains(stdout, "ok\n") {
		t.Errorf("unexpected output: %q", stdout)
	}
}

func TestDispatcher_ShellConfigChange(t *testing.T) {
	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeBackend()))
	dispatcher.SetInput(strings.NewReader("version --config /elsewhere\n"))

	_, stderr, code := run(t, dispatcher, "shell", "--config", t.TempDir())

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: --config cannot change inside the shell\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
}
