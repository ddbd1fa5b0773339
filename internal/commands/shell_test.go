package commands_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"todo/internal/commands"
	"todo/internal/exitcode"
)

func TestShellCommand_RunsLines(t *testing.T) {
	h := newHarness(t, true)
	h.input("add \"Buy milk\" --tags 'home,shop'\n\n  \nlist\nquit\nversion\n")

	var lines [][]string
	var interactive []bool
	h.env.Exec = func(ctx context.Context, args []string, out, errOut io.Writer) int {
		lines = append(lines, args)
		interactive = append(interactive, h.env.Interactive)
		return exitcode.Success
	}

	stdout, stderr, code := h.run(t, &commands.ShellCmd{})

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 commands before quit, got %v", lines)
	}
	if got := strings.Join(lines[0], "|"); got != "add|Buy milk|--tags|home,shop" {
		t.Errorf("unexpected words: %s", got)
	}
	if got := strings.Join(lines[1], "|"); got != "list" {
		t.Errorf("unexpected words: %s", got)
	}
	if !interactive[0] || !interactive[1] {
		t.Error("expected commands to run in interactive mode")
	}
	if h.env.Interactive {
		t.Error("expected interactive mode to end with the shell")
	}
	if want := strings.Repeat(commands.ShellPrompt, 5); stdout != want {
		t.Errorf("expected %q, got %q", want, stdout)
	}
}

func TestShellCommand_EOF(t *testing.T) {
	h := newHarness(t, true)
	h.input("list")
	calls := 0
	h.env.Exec = func(ctx context.Context, args []string, out, errOut io.Writer) int {
		calls++
		return exitcode.BackendError
	}

	stdout, _, code := h.run(t, &commands.ShellCmd{})

	if calls != 1 {
		t.Errorf("expected the unterminated last line to run, got %d calls", calls)
	}
	if code != exitcode.BackendError {
		t.Errorf("expected the last exit code, got %d", code)
	}
	if stdout != commands.ShellPrompt+commands.ShellPrompt+"\n" {
		t.Errorf("unexpected output: %q", stdout)
	}
}

func TestShellCommand_BadQuoting(t *testing.T) {
	h := newHarness(t, true)
	h.input("add \"unterminated\nexit\n")
	h.env.Exec = func(ctx context.Context, args []string, out, errOut io.Writer) int {
		t.Errorf("unexpected exec of %v", args)
		return exitcode.Success
	}

	_, stderr, code := h.run(t, &commands.ShellCmd{})

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.HasPrefix(stderr, "error: ") {
		t.Errorf("expected a parse error, got %q", stderr)
	}
}

func TestShellCommand_Nested(t *testing.T) {
	h := newHarness(t, true)
	h.env.Interactive = true
	h.env.Exec = func(ctx context.Context, args []string, out, errOut io.Writer) int { return 0 }

	_, stderr, code := h.run(t, &commands.ShellCmd{})

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: already in the shell\n" {
		t.Errorf("unexpected stderr: %q", stderr)
	}
}
