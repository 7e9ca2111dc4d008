package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"taskr/internal/exitcode"
	"taskr/internal/output"
	"taskr/internal/service"
)

func init() {
	Register(&ToggleCmd{})
}

// ToggleCmd implements the toggle command.
type ToggleCmd struct{}

func (c *ToggleCmd) Name() string      { return "toggle" }
func (c *ToggleCmd) Aliases() []string { return []string{"done"} }
func (c *ToggleCmd) Synopsis() string  { return "Flip a task between open and completed" }
func (c *ToggleCmd) Usage() string     { return "taskr toggle <ref>" }
func (c *ToggleCmd) NeedsAuth() bool   { return true }

func (c *ToggleCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ToggleCmd) Run(ctx context.Context, env *Env, svc service.Service, args []string, out, errOut io.Writer) int {
	task, code := resolveTask(svc, args, errOut)
	if code != exitcode.Success {
		return code
	}

	if err := svc.Toggle(ctx, task.ID); err != nil {
		return Report(errOut, err)
	}

	if !env.Config.Quiet {
		tasks := svc.Tasks()
		if i := service.FindTask(tasks, task.ID); i >= 0 {
			output.FormatTask(out, i+1, tasks[i])
		} else {
			fmt.Fprintln(out, "ok")
		}
	}
	return exitcode.Success
}

// resolveTask parses the task reference in args against the loaded list.
func resolveTask(svc service.Service, args []string, errOut io.Writer) (service.Task, int) {
	ref, err := ParseTaskRef(args)
	if err != nil {
		if errors.Is(err, ErrTaskRefRequired) {
			fmt.Fprintln(errOut, "error: task reference required")
		} else {
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
		return service.Task{}, exitcode.UserError
	}

	task, err := ref.Resolve(svc.Tasks())
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return service.Task{}, exitcode.UserError
	}
	return task, exitcode.Success
}
