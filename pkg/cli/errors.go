package cli

import (
	"errors"
	"fmt"
)

// Process exit codes used by the jsonrules command.
const (
	ExitOK               = 0
	ExitError            = 1
	ExitValidationFailed = 2
)

// ConfigError represents an error in configuration.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config error: %s", e.Message)
	}
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

// CommandError represents an error from a command execution.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// FailedError reports that a command ran to completion but its subject did
// not pass: data that broke a ruleset, or a ruleset with lint errors.
type FailedError struct {
	Subject string
	Count   int
}

func (e *FailedError) Error() string {
	if e.Count == 1 {
		return fmt.Sprintf("%s: 1 error", e.Subject)
	}
	return fmt.Sprintf("%s: %d errors", e.Subject, e.Count)
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
	}
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
	}
}

// NewFailedError creates a new FailedError.
func NewFailedError(subject string, count int) *FailedError {
	return &FailedError{
		Subject: subject,
		Count:   count,
	}
}

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var failed *FailedError
	if errors.As(err, &failed) {
		return ExitValidationFailed
	}
	return ExitError
}
