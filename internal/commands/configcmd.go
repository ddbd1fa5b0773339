package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"todo/internal/config"
	"todo/internal/exitcode"
)

func init() {
	Register(&ConfigCmd{})
}

// ConfigCmd implements the config command. Without arguments it prints the
// effective settings; `config init` writes them to config.toml.
type ConfigCmd struct {
	force bool
}

func (c *ConfigCmd) Name() string      { return "config" }
func (c *ConfigCmd) Aliases() []string { return nil }
func (c *ConfigCmd) Synopsis() string  { return "Show settings or write config.toml" }
func (c *ConfigCmd) Usage() string     { return "todo config [init [--force]]" }
func (c *ConfigCmd) NeedsAuth() bool   { return false }

func (c *ConfigCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.force, "force", false, "overwrite an existing config.toml")
}

func (c *ConfigCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	cfg := env.Config
	if len(args) == 0 {
		fmt.Fprintf(out, "dir:         %s\n", cfg.Dir)
		fmt.Fprintf(out, "backend:     %s\n", cfg.Backend)
		fmt.Fprintf(out, "server_url:  %s\n", cfg.ServerURL)
		fmt.Fprintf(out, "timeout:     %s\n", cfg.Timeout)
		fmt.Fprintf(out, "google_list: %s\n", cfg.GoogleList)
		fmt.Fprintf(out, "log_format:  %s\n", cfg.LogFormat)
		fmt.Fprintf(out, "logged_in:   %t\n", env.Session.IsAuthenticated())
		return exitcode.Success
	}

	if args[0] != "init" || len(args) > 1 {
		return report(errOut, usagef("usage: %s", c.Usage()))
	}
	if err := cfg.WriteSettings(c.force); err != nil {
		if errors.Is(err, config.ErrSettingsExist) {
			fmt.Fprintf(errOut, "error: %s already exists (use --force)\n", cfg.SettingsPath())
			return exitcode.UserError
		}
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if !cfg.Quiet {
		fmt.Fprintf(out, "wrote %s\n", cfg.SettingsPath())
	}
	return exitcode.Success
}
