package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskr/internal/exitcode"
	"taskr/internal/service"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "taskr help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, env *Env, svc service.Service, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  taskr                                   List tasks
  taskr list [common flags] [--ids]       List tasks, optionally with ids
  taskr add [common flags] <text...>      Create a task
  taskr create [common flags] <text...>
  taskr toggle [common flags] <ref>       Flip a task between open and completed
  taskr done [common flags] <ref>
  taskr rm [common flags] <ref>           Delete a task
  taskr delete [common flags] <ref>
  taskr login [common flags] [--email <email>] [--password <password>]
  taskr signup [common flags] [--email <email>] [--password <password>]
  taskr logout [common flags]
  taskr status [common flags]
  taskr ui [common flags]                 Interactive view
  taskr config [common flags] [--init]
  taskr help
  taskr version

Task references:
  <n>     position as printed by "taskr list" (1-based)
  #<id>   task id as printed by "taskr list --ids"

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr

Environment:
  TASKR_BACKEND    remote or local
  TASKR_API_URL    API base URL for the remote backend
  TASKR_STORAGE    local storage database path
`
