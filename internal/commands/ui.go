package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskr/internal/exitcode"
	"taskr/internal/service"
	"taskr/internal/tui"
)

func init() {
	Register(&UICmd{})
}

// UICmd starts the interactive task view.
type UICmd struct{}

func (c *UICmd) Name() string      { return "ui" }
func (c *UICmd) Aliases() []string { return []string{"tui"} }
func (c *UICmd) Synopsis() string  { return "Interactive task view" }
func (c *UICmd) Usage() string     { return "taskr ui" }

// NeedsAuth is false: the view shows its own login form.
func (c *UICmd) NeedsAuth() bool { return false }

func (c *UICmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *UICmd) Run(ctx context.Context, env *Env, svc service.Service, args []string, out, errOut io.Writer) int {
	prefs, err := env.Preferences(ctx)
	if err != nil {
		env.Logger().Warn("open preferences failed", "err", err)
	}

	opts := tui.Options{
		Gate:          env.Gate,
		RequiresLogin: env.Config.RequiresLogin(),
		OpenTasks:     env.OpenTasks,
		Prefs:         prefs,
		Log:           env.Log,
	}
	if err := tui.Run(ctx, opts, Stdin, out); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}
