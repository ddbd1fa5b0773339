package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todo/internal/exitcode"
)

func init() {
	Register(&MoveCmd{})
}

// MoveCmd implements the move command. The new order is local to the shell
// session and is replaced by the server order on the next reload.
type MoveCmd struct{}

func (c *MoveCmd) Name() string      { return "move" }
func (c *MoveCmd) Aliases() []string { return []string{"mv"} }
func (c *MoveCmd) Synopsis() string  { return "Move a task to another task's position (shell only)" }
func (c *MoveCmd) Usage() string     { return "todo move <task> <to-task>" }
func (c *MoveCmd) NeedsAuth() bool   { return true }

func (c *MoveCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *MoveCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if !env.Interactive {
		return report(errOut, usagef("move only works inside the shell: order is not saved"))
	}
	if len(args) != 2 {
		return report(errOut, usagef("usage: %s", c.Usage()))
	}

	from, err := resolveArg(ctx, env, args[:1])
	if err != nil {
		return report(errOut, err)
	}
	to, err := resolveArg(ctx, env, args[1:])
	if err != nil {
		return report(errOut, err)
	}
	env.Tasks.Reorder(from.ID, to.ID)

	if !env.Config.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
