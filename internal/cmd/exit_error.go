package cmd

import "fmt"

// Process exit codes
const (
	ExitOK      = 0
	ExitFailure = 1
)

// ExitError carries a non-zero exit code out of a RunE handler.
type ExitError struct {
	Code int
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// UsageError reports a bad command line. The usage text is printed with it.
type UsageError struct {
	Err error
}

// Error returns the error message for UsageError.
func (e *UsageError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *UsageError) Unwrap() error {
	return e.Err
}
