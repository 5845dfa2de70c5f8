package main

import "fmt"

// Exit codes for the strikts CLI
const (
	// ExitSuccess indicates the command did what was asked
	ExitSuccess = 0

	// ExitFailure indicates a negative answer: a required variable is
	// missing, `env has` found nothing, or a glob matched no paths
	ExitFailure = 1

	// ExitParseError indicates a malformed .env file
	ExitParseError = 2

	// ExitConfigError indicates an unreadable or invalid config file
	ExitConfigError = 3

	// ExitFileError indicates a required .env file does not exist
	ExitFileError = 4

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64

	// ExitTimeout indicates exec hit --timeout (same as timeout(1))
	ExitTimeout = 124

	// ExitCannotRun indicates exec could not start the command
	ExitCannotRun = 127
)

// exitError signals a specific exit code without calling os.Exit inside a
// command. Err may be nil when the command already reported its outcome.
type exitError struct {
	Code int
	Err  error
}

func (e *exitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *exitError) Unwrap() error {
	return e.Err
}

func usageError(err error) error {
	return &exitError{Code: ExitUsageError, Err: err}
}

// silentExit reports code with no message.
func silentExit(code int) error {
	return &exitError{Code: code}
}
