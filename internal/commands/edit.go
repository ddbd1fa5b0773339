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
	Register(&EditCmd{})
}

// EditCmd implements the edit command.
type EditCmd struct {
	fields taskFlags
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Change fields of a task" }
func (c *EditCmd) Usage() string {
	return "todo edit [--title <t>] [--desc <text>] [--priority <p>] [--status <s>] [--due <date>] [--tags <a,b>] <task>"
}
func (c *EditCmd) NeedsAuth() bool { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {
	c.fields.register(fs, true)
}

func (c *EditCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	task, err := resolveArg(ctx, env, args)
	if err != nil {
		return report(errOut, err)
	}
	if c.fields.patch.IsEmpty() {
		return report(errOut, usagef("nothing to change"))
	}

	editing, err := env.Tasks.BeginEdit(task.ID)
	if err != nil {
		return report(errOut, err)
	}
	defer env.Tasks.CancelEdit()

	if _, err := env.Tasks.Submit(ctx, service.DraftOf(c.fields.patch.Apply(editing))); err != nil {
		return report(errOut, err)
	}

	if !env.Config.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
