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
	Register(&RegisterCmd{})
}

// RegisterCmd implements the register command. It creates the account but
// does not log in.
type RegisterCmd struct {
	username string
	password string
}

func (c *RegisterCmd) Name() string      { return "register" }
func (c *RegisterCmd) Aliases() []string { return []string{"signup"} }
func (c *RegisterCmd) Synopsis() string  { return "Create an account" }
func (c *RegisterCmd) Usage() string     { return "todo register [--username <name>] [--password <pw>]" }
func (c *RegisterCmd) NeedsAuth() bool   { return false }

func (c *RegisterCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.username, "username", "", "account name")
	fs.StringVar(&c.password, "password", "", "password, prompted for when missing")
}

func (c *RegisterCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	creds := service.Credentials{Username: c.username, Password: c.password}
	if env.Backend.CredentialsRequired() {
		var err error
		creds.Username, creds.Password, err = promptCredentials(env, errOut, creds.Username, creds.Password)
		if err != nil {
			return report(errOut, err)
		}
	}

	if err := env.Session.Register(ctx, env.Backend, creds); err != nil {
		return report(errOut, err)
	}

	if !env.Config.Quiet {
		fmt.Fprintln(out, "registered, now run: todo login")
	}
	return exitcode.Success
}
