package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todo/internal/exitcode"
	"todo/internal/service"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command. Deletion asks for confirmation unless
// --yes is given.
type RmCmd struct {
	yes bool
}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return []string{"delete"} }
func (c *RmCmd) Synopsis() string  { return "Delete a task" }
func (c *RmCmd) Usage() string     { return "todo rm [--yes] <task>" }
func (c *RmCmd) NeedsAuth() bool   { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.yes, "yes", false, "delete without asking")
	fs.BoolVar(&c.yes, "y", false, "delete without asking")
}

func (c *RmCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	task, err := resolveArg(ctx, env, args)
	if err != nil {
		return report(errOut, err)
	}

	ask := func(t service.Task) bool {
		if c.yes {
			return true
		}
		return confirm(env, errOut, fmt.Sprintf("Delete %q?", t.Title))
	}
	if err := env.Tasks.Delete(ctx, task.ID, ask); err != nil {
		return report(errOut, err)
	}

	if !env.Config.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
