package cli

import (
	"errors"
	"fmt"
)

const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// UsageError reports invalid or missing command line input.
type UsageError struct {
	Command string
	Err     error
}

func (e *UsageError) Error() string {
	return e.Err.Error()
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

// Hint tells the user where to find the usage.
func (e *UsageError) Hint() string {
	return fmt.Sprintf("please check and use %s --help for more information", e.Command)
}

func usageErrorf(command string, format string, args ...interface{}) error {
	return &UsageError{Command: command, Err: fmt.Errorf(format, args...)}
}

// ExitCode maps the error returned by a command to the process status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var usage *UsageError
	if errors.As(err, &usage) {
		return ExitUsage
	}
	return ExitFailure
}
