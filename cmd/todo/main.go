// Package main is the entry point for the todo CLI.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"todo/internal/backend/googletasks"
	"todo/internal/backend/rest"
	"todo/internal/cli"
	"todo/internal/commands"
	"todo/internal/config"
	"todo/internal/service"
	"todo/internal/session"
)

func main() {
	// Create context that cancels on interrupt
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, newBackend)
	if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
		dispatcher.SetPasswordReader(func() (string, error) {
			pw, err := term.ReadPassword(fd)
			return string(pw), err
		})
	}

	// Run and exit with code
	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// newBackend selects the backend named in the settings.
func newBackend(ctx context.Context, cfg *config.Config, sess *session.Session, errOut io.Writer) (service.Backend, error) {
	switch cfg.Backend {
	case config.BackendGoogleTasks:
		return googletasks.New(ctx, googletasks.Options{
			ListID:          cfg.GoogleList,
			Timeout:         cfg.Timeout,
			OAuthClientPath: cfg.OAuthClientPath(),
			Tokens:          sess,
			Out:             errOut,
		})
	default:
		return rest.New(rest.Options{
			BaseURL: cfg.ServerURL,
			Timeout: cfg.Timeout,
			Tokens:  sess,
		}), nil
	}
}
