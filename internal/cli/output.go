package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/mirror/internal/inspect"
	"github.com/roach88/mirror/internal/model"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Query or test failure (absent descendant, failing scenario, invalid world)
	ExitCommandError = 2 // Command error (missing files, bad references, store unavailable)
)

// CLI error codes. World load errors keep their model codes.
const (
	ErrCodeGeneric      = "E001"
	ErrCodeBadRef       = "E301"
	ErrCodeUnknownValue = "E302"
	ErrCodeNotFound     = "E303"
	ErrCodeStore        = "E401"
	ErrCodeServe        = "E402"
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E302", or a world load code
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs data in the configured format. In text mode text renders
// it; a nil text prints data with fmt.
func (f *OutputFormatter) Success(data any, text func(w io.Writer)) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	if text == nil {
		fmt.Fprintln(f.Writer, data)
		return nil
	}
	text(f.Writer)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	return nil
}

// Fail reports err in the configured format and returns the ExitError the
// command should return.
func (f *OutputFormatter) Fail(err error) error {
	code, exit := classify(err)
	msg, details := err.Error(), any(nil)
	var le *model.LoadError
	if errors.As(err, &le) {
		msg, details = loadErrorDetails(le)
	}
	if outErr := f.Error(code, msg, details); outErr != nil {
		return outErr
	}
	return WrapExitError(exit, "command failed", err)
}

// classify maps an error to its CLI error code and exit code.
func classify(err error) (string, int) {
	var le *model.LoadError
	switch {
	case errors.As(err, &le):
		if le.Code == model.ErrCodeNotFound {
			return le.Code, ExitCommandError
		}
		return le.Code, ExitFailure
	case errors.Is(err, inspect.ErrBadRef):
		return ErrCodeBadRef, ExitCommandError
	case errors.Is(err, inspect.ErrUnknownValue):
		return ErrCodeUnknownValue, ExitCommandError
	case errors.Is(err, inspect.ErrNotFound):
		return ErrCodeNotFound, ExitFailure
	case errors.Is(err, inspect.ErrNoStore):
		return ErrCodeStore, ExitCommandError
	default:
		return ErrCodeGeneric, ExitCommandError
	}
}

// loadErrorDetails splits a world load error into a message without its
// code and the location details.
func loadErrorDetails(le *model.LoadError) (string, any) {
	msg := le.Message
	details := map[string]any{}
	if le.Path != "" {
		msg = le.Path + ": " + msg
		details["path"] = le.Path
	}
	if le.Pos.IsValid() {
		msg = fmt.Sprintf("%s:%d:%d: %s", le.Pos.Filename(), le.Pos.Line(), le.Pos.Column(), msg)
		details["file"] = le.Pos.Filename()
		details["line"] = le.Pos.Line()
		details["column"] = le.Pos.Column()
	}
	if len(details) == 0 {
		return msg, nil
	}
	return msg, details
}
