package cli

import (
	"errors"
	"fmt"
	"testing"
)

func TestConfigError(t *testing.T) {
	tests := []struct {
		name string
		err  *ConfigError
		want string
	}{
		{
			name: "with field",
			err:  &ConfigError{Field: "server.listen_address", Message: "missing required field"},
			want: "config error in server.listen_address: missing required field",
		},
		{
			name: "without field",
			err:  &ConfigError{Message: "file not found"},
			want: "config error: file not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewConfigError(t *testing.T) {
	err := NewConfigError("field", "message")
	if err.Field != "field" {
		t.Errorf("Field = %q, want %q", err.Field, "field")
	}
	if err.Message != "message" {
		t.Errorf("Message = %q, want %q", err.Message, "message")
	}
}

func TestCommandError(t *testing.T) {
	underlyingErr := errors.New("underlying error")
	err := NewCommandError("serve", underlyingErr)

	expected := "command serve failed: underlying error"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
	if !errors.Is(err, underlyingErr) {
		t.Error("errors.Is() should find the underlying error")
	}
}

func TestFailedError(t *testing.T) {
	if got := NewFailedError("person", 1).Error(); got != "person: 1 error" {
		t.Errorf("Error() = %q, want %q", got, "person: 1 error")
	}
	if got := NewFailedError("person", 3).Error(); got != "person: 3 errors" {
		t.Errorf("Error() = %q, want %q", got, "person: 3 errors")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"generic", errors.New("boom"), ExitError},
		{"config", NewConfigError("", "bad"), ExitError},
		{"failed", NewFailedError("person", 2), ExitValidationFailed},
		{"wrapped failed", fmt.Errorf("validate: %w", NewFailedError("person", 2)), ExitValidationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
