package commands

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"taskr/internal/auth"
	"taskr/internal/exitcode"
	"taskr/internal/service"
)

// Report prints err as an "error: ..." line and returns the matching exit
// code.
func Report(errOut io.Writer, err error) int {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		reportFields(errOut, verr.Fields)
		return exitcode.UserError
	case errors.Is(err, service.ErrNotFound):
		fmt.Fprintln(errOut, "error: task not found")
		return exitcode.UserError
	case errors.Is(err, auth.ErrNoAuthenticator):
		fmt.Fprintln(errOut, "error: the local backend has no login")
		return exitcode.UserError
	case errors.Is(err, service.ErrUnauthorized):
		fmt.Fprintf(errOut, "error: auth error: %v\n", err)
		return exitcode.AuthError
	default:
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
}

// reportFields prints one line per field, sorted by field name.
func reportFields(errOut io.Writer, fields map[string]string) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(errOut, "error: %s: %s\n", name, fields[name])
	}
}
