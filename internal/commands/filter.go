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
	Register(&FilterCmd{})
}

// FilterCmd implements the filter command: it shows or replaces the
// criteria the collection is loaded with.
type FilterCmd struct {
	filter filterFlags
	clear  bool
}

func (c *FilterCmd) Name() string      { return "filter" }
func (c *FilterCmd) Aliases() []string { return nil }
func (c *FilterCmd) Synopsis() string  { return "Show or set the task filter" }
func (c *FilterCmd) Usage() string {
	return "todo filter [--clear] [--priority <p>] [--status <s>] [--search <text>] [--tag <tag>]"
}
func (c *FilterCmd) NeedsAuth() bool { return true }

func (c *FilterCmd) RegisterFlags(fs *flag.FlagSet) {
	c.filter.register(fs)
	fs.BoolVar(&c.clear, "clear", false, "remove all criteria")
}

func (c *FilterCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		return report(errOut, usagef("unexpected argument: %s", args[0]))
	}
	if !c.filter.set && !c.clear {
		fmt.Fprintf(out, "filter: %s\n", output.DescribeFilter(env.Tasks.Filter()))
		return exitcode.Success
	}

	f := c.filter.filter
	if c.clear && c.filter.set {
		return report(errOut, usagef("cannot use --clear with filter criteria"))
	}
	if err := service.ValidateFilter(f); err != nil {
		return report(errOut, err)
	}
	if err := env.Tasks.SetFilter(ctx, f); err != nil {
		return report(errOut, err)
	}

	if env.Config.Quiet {
		return exitcode.Success
	}
	output.FormatList(out, env.Tasks.Tasks(), env.Tasks.Filter())
	return exitcode.Success
}
