package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"taskr/internal/auth"
	"taskr/internal/exitcode"
	"taskr/internal/service"
)

func init() {
	Register(&StatusCmd{})
}

// StatusCmd reports the backend and whether a session is held.
type StatusCmd struct{}

func (c *StatusCmd) Name() string      { return "status" }
func (c *StatusCmd) Aliases() []string { return []string{"whoami"} }
func (c *StatusCmd) Synopsis() string  { return "Show backend and session state" }
func (c *StatusCmd) Usage() string     { return "taskr status" }
func (c *StatusCmd) NeedsAuth() bool   { return false }

func (c *StatusCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *StatusCmd) Run(ctx context.Context, env *Env, svc service.Service, args []string, out, errOut io.Writer) int {
	cfg := env.Config

	fmt.Fprintf(out, "backend: %s\n", cfg.Backend)
	if !cfg.RequiresLogin() {
		fmt.Fprintf(out, "storage: %s\n", cfg.StoragePath())
		fmt.Fprintln(out, "session: not required")
		return exitcode.Success
	}

	fmt.Fprintf(out, "api_url: %s\n", cfg.APIURL)
	tok := env.Gate.Token()
	if tok == nil {
		fmt.Fprintln(out, "session: not logged in")
		return exitcode.AuthError
	}

	kind := "cookie"
	if auth.BearerToken(tok) != nil {
		kind = "token"
	}
	fmt.Fprintf(out, "session: logged in (%s, expires %s)\n", kind, tok.Expiry.UTC().Format(time.RFC3339))
	return exitcode.Success
}
