// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates bad input: usage, validation, unknown task, declined prompt.
	UserError = 1

	// AuthError indicates a missing, invalid or expired session.
	AuthError = 2

	// BackendError indicates a remote store or network failure.
	BackendError = 3
)
