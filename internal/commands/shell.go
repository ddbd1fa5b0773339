package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-shellwords"

	"todo/internal/exitcode"
)

func init() {
	Register(&ShellCmd{})
}

// ShellPrompt is printed before every shell line.
const ShellPrompt = "todo> "

// ShellCmd implements the interactive shell. Every line runs as a command
// against the same session and task collection. exit, quit or end of
// input leave the shell.
type ShellCmd struct{}

func (c *ShellCmd) Name() string      { return "shell" }
func (c *ShellCmd) Aliases() []string { return []string{"sh"} }
func (c *ShellCmd) Synopsis() string  { return "Run commands interactively" }
func (c *ShellCmd) Usage() string     { return "todo shell" }
func (c *ShellCmd) NeedsAuth() bool   { return false }

func (c *ShellCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ShellCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if env.Interactive {
		return report(errOut, usagef("already in the shell"))
	}
	if env.Exec == nil || env.In == nil {
		return report(errOut, usagef("shell needs an input"))
	}
	env.Interactive = true
	defer func() { env.Interactive = false }()

	code := exitcode.Success
	for ctx.Err() == nil {
		fmt.Fprint(out, ShellPrompt)
		line, err := readLine(env.In)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return report(errOut, err)
			}
			fmt.Fprintln(out)
			return code
		}

		words, err := shellwords.Parse(line)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			code = exitcode.UserError
			continue
		}
		if len(words) == 0 {
			continue
		}
		switch strings.ToLower(words[0]) {
		case "exit", "quit":
			return code
		}
		code = env.Exec(ctx, words, out, errOut)
	}
	return code
}
