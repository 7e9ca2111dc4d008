package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"taskr/internal/config"
	"taskr/internal/exitcode"
	"taskr/internal/service"
)

func init() {
	Register(&ConfigCmd{})
}

// ConfigCmd prints the effective settings, or writes a default config.yaml.
type ConfigCmd struct {
	initFile bool
}

// SetInit sets the --init flag (for testing).
func (c *ConfigCmd) SetInit(v bool) {
	c.initFile = v
}

func (c *ConfigCmd) Name() string      { return "config" }
func (c *ConfigCmd) Aliases() []string { return nil }
func (c *ConfigCmd) Synopsis() string  { return "Show or initialise configuration" }
func (c *ConfigCmd) Usage() string     { return "taskr config [--init]" }
func (c *ConfigCmd) NeedsAuth() bool   { return false }

func (c *ConfigCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.initFile, "init", false, "")
}

func (c *ConfigCmd) Run(ctx context.Context, env *Env, svc service.Service, args []string, out, errOut io.Writer) int {
	cfg := env.Config

	if c.initFile {
		if err := cfg.WriteDefault(); err != nil {
			if errors.Is(err, config.ErrConfigExists) {
				fmt.Fprintf(errOut, "error: config already exists: %s\n", cfg.ConfigPath())
				return exitcode.UserError
			}
			fmt.Fprintf(errOut, "error: failed to write config: %v\n", err)
			return exitcode.UserError
		}
		if !cfg.Quiet {
			fmt.Fprintln(out, cfg.ConfigPath())
		}
		return exitcode.Success
	}

	data, err := cfg.Marshal()
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	fmt.Fprintf(out, "# %s\n", cfg.ConfigPath())
	out.Write(data)
	return exitcode.Success
}
