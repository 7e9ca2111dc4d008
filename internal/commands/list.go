package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskr/internal/exitcode"
	"taskr/internal/output"
	"taskr/internal/service"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `taskr` (no args) and `taskr list`.
type ListCmd struct {
	ids bool
}

// SetShowIDs toggles the id column (for testing).
func (c *ListCmd) SetShowIDs(v bool) {
	c.ids = v
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string     { return "taskr list [--ids]" }
func (c *ListCmd) NeedsAuth() bool   { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.ids, "ids", false, "")
}

func (c *ListCmd) Run(ctx context.Context, env *Env, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	tasks := svc.Tasks()
	if len(tasks) == 0 {
		if !env.Config.Quiet {
			fmt.Fprintln(out, output.EmptyState)
		}
		return exitcode.Success
	}

	if !env.Config.Quiet {
		output.FormatProgress(out, output.Progress(tasks))
	}
	output.FormatTaskList(out, tasks, c.ids)
	return exitcode.Success
}
