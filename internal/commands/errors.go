package commands

import (
	"errors"
	"fmt"
	"io"

	"todo/internal/exitcode"
	"todo/internal/output"
	"todo/internal/service"
	"todo/internal/tasklist"
)

// usageError is bad command-line input.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// report prints err to errOut and returns the exit code for its kind.
func report(errOut io.Writer, err error) int {
	var (
		ve *service.ValidationError
		ue *usageError
	)
	switch {
	case errors.As(err, &ve):
		fmt.Fprintln(errOut, "error: invalid input")
		output.FormatFieldErrors(errOut, ve)
		return exitcode.UserError
	case errors.As(err, &ue):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	case errors.Is(err, service.ErrAuth):
		fmt.Fprintf(errOut, "error: %v (run: todo login)\n", err)
		return exitcode.AuthError
	case errors.Is(err, tasklist.ErrNotConfirmed):
		fmt.Fprintln(errOut, "error: not deleted")
		return exitcode.UserError
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, tasklist.ErrUnknownTask),
		errors.Is(err, ErrTaskRefRequired),
		errors.Is(err, ErrRefOutOfRange):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	default:
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
}
