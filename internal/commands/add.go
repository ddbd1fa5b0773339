package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"todo/internal/exitcode"
	"todo/internal/service"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	fields taskFlags
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "todo add [--desc <text>] [--priority <p>] [--status <s>] [--due <date>] [--tags <a,b>] <title...>"
}
func (c *AddCmd) NeedsAuth() bool { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	c.fields.register(fs, false)
}

func (c *AddCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if err := env.Tasks.EnsureLoaded(ctx); err != nil {
		return report(errOut, err)
	}

	draft := service.DraftOf(c.fields.patch.Apply(service.Task{Title: strings.Join(args, " ")}))

	env.Tasks.OpenDialog()
	defer env.Tasks.CancelEdit()
	task, err := env.Tasks.Submit(ctx, draft)
	if err != nil {
		return report(errOut, err)
	}

	if !env.Config.Quiet {
		fmt.Fprintln(out, "ok")
	}
	env.Log.Debug("task added", "task_id", task.ID)
	return exitcode.Success
}
