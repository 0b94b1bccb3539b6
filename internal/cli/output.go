package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/trainaudit/internal/snapshot"
	"github.com/roach88/trainaudit/internal/timeline"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Audit gate or check failure (verdict at --fail-on, scenarios failed, malformed week in validate)
	ExitCommandError = 2 // Command error (invalid paths, malformed input, bad profile, archive errors)
)

// Error codes not produced by the timeline loader.
const (
	ErrCodeGeneric      = "E001" // Unclassified error
	ErrCodeWeekNotFound = "E006" // Requested week not in timeline
	ErrCodeProfile      = "E101" // Profile failed to load or validate
	ErrCodeArchive      = "E301" // Archive open/read/write failure
	ErrCodeMetrics      = "E302" // Metrics textfile write failure
	ErrCodeScenarios    = "E401" // Scenario directory failed to load
	ErrCodeGate         = "E_VERDICT_GATE"
	ErrCodeCheckFailed  = "E_CHECK_FAILED"
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
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
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string      `json:"status"`           // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`   // success payload
	Error  *CLIError   `json:"error,omitempty"`  // error details
	RunID  string      `json:"run_id,omitempty"` // audit run correlation
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string      `json:"code"`              // "E003", "E201", etc.
	Message string      `json:"message"`           // human-readable message
	Details interface{} `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	// Human-readable text output
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	// Human-readable error
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// Fail writes an error response and returns an ExitError carrying exitCode.
// The formatter has already reported the error, so callers return the
// ExitError as is.
func (f *OutputFormatter) Fail(exitCode int, code, message string, details interface{}, err error) error {
	if werr := f.Error(code, message, details); werr != nil {
		return WrapExitError(ExitCommandError, "write error response", werr)
	}
	return WrapExitError(exitCode, fmt.Sprintf("%s: %s", code, message), err)
}

// describeLoadError maps a timeline load failure onto an error code, a message
// and details naming the offending file and field.
func describeLoadError(err error) (string, string, interface{}) {
	var loadErr *timeline.LoadError
	if !errors.As(err, &loadErr) {
		return ErrCodeGeneric, err.Error(), nil
	}

	details := map[string]string{}
	if loadErr.Path != "" {
		details["path"] = loadErr.Path
	}
	var malformed *snapshot.MalformedSnapshotError
	if errors.As(err, &malformed) {
		if malformed.Field != "" {
			details["field"] = malformed.Field
		}
		details["reason"] = malformed.Reason
	}
	message := loadErr.Message
	if loadErr.Err != nil {
		message = fmt.Sprintf("%s: %v", loadErr.Message, loadErr.Err)
	}
	if len(details) == 0 {
		return loadErr.Code, message, nil
	}
	return loadErr.Code, message, details
}
