package commands

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"taskr/internal/auth"
	"taskr/internal/exitcode"
	"taskr/internal/service"
)

// Stdin is read for credentials not given as flags. Tests replace it.
var Stdin io.Reader = os.Stdin

func init() {
	Register(&LoginCmd{})
	Register(&SignupCmd{})
}

// credentials holds the --email and --password flags shared by login and signup.
type credentials struct {
	email    string
	password string
}

func (c *credentials) register(fs *flag.FlagSet) {
	fs.StringVar(&c.email, "email", "", "")
	fs.StringVar(&c.password, "password", "", "")
}

// prompt fills in whichever of email and password is missing from Stdin,
// one line each.
func (c credentials) prompt(errOut io.Writer) (email, password string, err error) {
	email, password = c.email, c.password
	if email != "" && password != "" {
		return email, password, nil
	}

	r := bufio.NewReader(Stdin)
	readLine := func(label string) (string, error) {
		fmt.Fprintf(errOut, "%s: ", label)
		line, err := r.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	if email == "" {
		if email, err = readLine("Email"); err != nil {
			return "", "", err
		}
	}
	if password == "" {
		if password, err = readLine("Password"); err != nil {
			return "", "", err
		}
	}
	return email, password, nil
}

// LoginCmd implements the login command.
type LoginCmd struct {
	creds credentials
}

// SetCredentials sets the flag values (for testing).
func (c *LoginCmd) SetCredentials(email, password string) {
	c.creds = credentials{email: email, password: password}
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Log in with email and password" }
func (c *LoginCmd) Usage() string     { return "taskr login [--email <email>] [--password <password>]" }
func (c *LoginCmd) NeedsAuth() bool   { return false }

func (c *LoginCmd) RegisterFlags(fs *flag.FlagSet) { c.creds.register(fs) }

func (c *LoginCmd) Run(ctx context.Context, env *Env, svc service.Service, args []string, out, errOut io.Writer) int {
	if !env.Config.RequiresLogin() {
		return Report(errOut, auth.ErrNoAuthenticator)
	}
	if env.Gate.Authenticated() {
		if !env.Config.Quiet {
			fmt.Fprintln(out, "already logged in")
		}
		return exitcode.Success
	}
	return authenticate(ctx, env, c.creds, env.Gate.Login, out, errOut)
}

// SignupCmd implements the signup command.
type SignupCmd struct {
	creds credentials
}

// SetCredentials sets the flag values (for testing).
func (c *SignupCmd) SetCredentials(email, password string) {
	c.creds = credentials{email: email, password: password}
}

func (c *SignupCmd) Name() string      { return "signup" }
func (c *SignupCmd) Aliases() []string { return []string{"register"} }
func (c *SignupCmd) Synopsis() string  { return "Create an account and log in" }
func (c *SignupCmd) Usage() string     { return "taskr signup [--email <email>] [--password <password>]" }
func (c *SignupCmd) NeedsAuth() bool   { return false }

func (c *SignupCmd) RegisterFlags(fs *flag.FlagSet) { c.creds.register(fs) }

func (c *SignupCmd) Run(ctx context.Context, env *Env, svc service.Service, args []string, out, errOut io.Writer) int {
	if !env.Config.RequiresLogin() {
		return Report(errOut, auth.ErrNoAuthenticator)
	}
	showPrivacyNotice(ctx, env, errOut)
	return authenticate(ctx, env, c.creds, env.Gate.Signup, out, errOut)
}

// authenticate runs one login or signup attempt and reports the result.
func authenticate(ctx context.Context, env *Env, creds credentials,
	attempt func(context.Context, string, string) (auth.Result, error), out, errOut io.Writer) int {

	email, password, err := creds.prompt(errOut)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	res, err := attempt(ctx, email, password)
	if len(res.Fields) > 0 {
		reportFields(errOut, res.Fields)
		return exitcode.UserError
	}
	if err != nil {
		return Report(errOut, err)
	}
	if !res.Authenticated {
		fmt.Fprintf(errOut, "error: %s\n", res.Message)
		return exitcode.AuthError
	}

	if !env.Config.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// showPrivacyNotice prints the notice once. Printing it counts as
// acknowledgment.
func showPrivacyNotice(ctx context.Context, env *Env, errOut io.Writer) {
	prefs, err := env.Preferences(ctx)
	if err != nil {
		env.Logger().Warn("open preferences failed", "err", err)
		return
	}
	if prefs == nil {
		return
	}

	seen, err := prefs.CookieConsent(ctx)
	if err != nil {
		env.Logger().Warn("read cookie consent failed", "err", err)
		return
	}
	if seen {
		return
	}

	fmt.Fprintf(errOut, "note: %s\n", auth.PrivacyNotice)
	if err := prefs.AcceptCookieConsent(ctx); err != nil {
		env.Logger().Warn("store cookie consent failed", "err", err)
	}
}
