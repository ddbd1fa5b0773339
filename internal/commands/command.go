// Package commands provides the command interface and implementations.
package commands

import (
	"bufio"
	"context"
	"flag"
	"io"

	"github.com/charmbracelet/log"

	"todo/internal/config"
	"todo/internal/service"
	"todo/internal/session"
	"todo/internal/tasklist"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsAuth returns true if the command requires a logged-in session.
	// Commands like help, version, login, logout return false.
	NeedsAuth() bool

	// RegisterFlags registers command-specific flags. It is called before
	// every run, so flag state starts from its defaults.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command with the positional arguments left after
	// flag parsing and returns the exit code.
	Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int
}

// Env is the state shared by every command of one process. The shell runs
// many commands against the same Env.
type Env struct {
	Config  *config.Config
	Session *session.Session
	Backend service.Backend
	Tasks   *tasklist.Controller
	Log     *log.Logger

	// In is the prompt input. Prompts and the shell share it.
	In *bufio.Reader

	// ReadPassword reads a password without echo. Nil reads a plain line
	// from In.
	ReadPassword func() (string, error)

	// Interactive is set while the shell runs.
	Interactive bool

	// Exec dispatches one command line. The shell uses it.
	Exec func(ctx context.Context, args []string, out, errOut io.Writer) int
}
