package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todo/internal/exitcode"
	"todo/internal/output"
	"todo/internal/service"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `todo` (no args) and `todo list [filter flags]`.
type ListCmd struct {
	filter  filterFlags
	json    bool
	refresh bool
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string {
	return "todo list [--priority <p>] [--status <s>] [--search <text>] [--tag <tag>] [--json] [--refresh]"
}
func (c *ListCmd) NeedsAuth() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	c.filter.register(fs)
	fs.BoolVar(&c.json, "json", false, "print JSON")
	fs.BoolVar(&c.refresh, "refresh", false, "reload from the server")
}

func (c *ListCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		return report(errOut, usagef("unexpected argument: %s", args[0]))
	}

	var err error
	switch {
	case c.filter.set:
		if err = service.ValidateFilter(c.filter.filter); err == nil {
			err = env.Tasks.SetFilter(ctx, c.filter.filter)
		}
	case c.refresh:
		err = env.Tasks.Load(ctx, env.Tasks.Filter())
	default:
		err = env.Tasks.EnsureLoaded(ctx)
	}
	if err != nil {
		return report(errOut, err)
	}

	tasks := env.Tasks.Tasks()
	if c.json {
		if err := output.WriteJSON(out, tasks); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.BackendError
		}
		return exitcode.Success
	}
	if len(tasks) == 0 && env.Config.Quiet {
		return exitcode.Success
	}
	output.FormatList(out, tasks, env.Tasks.Filter())
	return exitcode.Success
}
