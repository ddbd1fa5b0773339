// Package cli parses command lines and dispatches them to commands.
package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"todo/internal/commands"
	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/logging"
	"todo/internal/service"
	"todo/internal/session"
	"todo/internal/tasklist"
)

// BackendFactory creates the backend selected by cfg. The backend takes its
// tokens from sess. errOut receives interactive output such as a login URL.
type BackendFactory func(ctx context.Context, cfg *config.Config, sess *session.Session, errOut io.Writer) (service.Backend, error)

// Dispatcher handles command-line parsing and dispatch. The environment
// (config, session, backend, task collection) is built on the first
// dispatch and reused by later ones, so shell lines share it.
type Dispatcher struct {
	registry     *commands.Registry
	factory      BackendFactory
	in           io.Reader
	readPassword func() (string, error)

	env       *commands.Env
	configDir string
}

// NewDispatcher creates a new dispatcher with the given registry and backend factory.
func NewDispatcher(registry *commands.Registry, factory BackendFactory) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		factory:  factory,
		in:       os.Stdin,
	}
}

// SetInput replaces the prompt and shell input (stdin by default).
func (d *Dispatcher) SetInput(r io.Reader) {
	d.in = r
}

// SetPasswordReader sets the function that reads a password without echo.
func (d *Dispatcher) SetPasswordReader(fn func() (string, error)) {
	d.readPassword = fn
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// No args -> dispatch to "list" command with no args
	if len(args) == 0 {
		return d.dispatch(ctx, "list", nil, out, errOut)
	}

	cmdName := args[0]

	// If first token starts with -, it's an error (flags require a command)
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	return d.dispatch(ctx, cmdName, args[1:], out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmdName string, args []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args, out, errOut)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	// Create flag set with custom error handling
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves

	// Common flags
	var configDir string
	var quiet bool
	var debug bool

	fs.StringVar(&configDir, "config", "", "")
	fs.BoolVar(&quiet, "quiet", false, "")
	fs.BoolVar(&debug, "debug", false, "")

	// Register command-specific flags
	cmd.RegisterFlags(fs)

	positionalArgs, err := parseArgs(fs, args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", flagError(err))
		return exitcode.UserError
	}

	env, code := d.environment(ctx, configDir, quiet, debug, errOut)
	if env == nil {
		return code
	}
	if quiet && !env.Config.Quiet {
		env.Config.Quiet = true
		defer func() { env.Config.Quiet = false }()
	}

	// Check auth requirements
	if cmd.NeedsAuth() && !env.Session.IsAuthenticated() {
		fmt.Fprintln(errOut, "error: not logged in (run: todo login)")
		return exitcode.AuthError
	}

	// Run command
	return cmd.Run(ctx, env, positionalArgs, out, errOut)
}

// environment returns the shared environment, building it on first use.
// A nil env comes with the exit code to return.
func (d *Dispatcher) environment(ctx context.Context, configDir string, quiet, debug bool, errOut io.Writer) (*commands.Env, int) {
	if d.env != nil {
		if configDir != "" && configDir != d.configDir {
			fmt.Fprintln(errOut, "error: --config cannot change inside the shell")
			return nil, exitcode.UserError
		}
		return d.env, exitcode.Success
	}

	cfg, err := config.Load(configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return nil, exitcode.UserError
	}
	cfg.Quiet = quiet
	cfg.Debug = debug

	logger := logging.New(errOut, logging.Options{Debug: debug, Quiet: quiet, Format: cfg.LogFormat})
	sess := session.Open(cfg.TokenPath())

	backend, err := d.factory(ctx, cfg, sess, errOut)
	if err != nil {
		if errors.Is(err, service.ErrAuth) {
			fmt.Fprintf(errOut, "error: %s (run: todo login)\n", err)
			return nil, exitcode.AuthError
		}
		fmt.Fprintf(errOut, "error: backend error: %s\n", err)
		return nil, exitcode.BackendError
	}
	logger.Debug("environment ready", "dir", cfg.Dir, "backend", cfg.Backend, "logged_in", sess.IsAuthenticated())

	d.env = &commands.Env{
		Config:       cfg,
		Session:      sess,
		Backend:      backend,
		Tasks:        tasklist.New(backend, sess, logger),
		Log:          logger,
		In:           bufio.NewReader(d.in),
		ReadPassword: d.readPassword,
		Exec:         d.Run,
	}
	d.configDir = configDir
	return d.env, exitcode.Success
}

// parseArgs parses flags anywhere on the command line. Everything after
// "--" is positional.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		consumed := len(args) - len(rest)
		if len(rest) == 0 || (consumed > 0 && args[consumed-1] == "--") {
			return append(positional, rest...), nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

// flagError rewrites flag package errors into the CLI's wording.
func flagError(err error) string {
	errStr := err.Error()

	// Check for missing flag value
	if strings.HasPrefix(errStr, "flag needs an argument:") {
		flagName := strings.TrimSpace(strings.TrimPrefix(errStr, "flag needs an argument:"))
		return "flag needs an argument: " + flagName
	}

	// Check for unknown flag
	if strings.HasPrefix(errStr, "flag provided but not defined:") {
		return "unknown flag: " + strings.TrimPrefix(errStr, "flag provided but not defined: ")
	}

	return errStr
}
