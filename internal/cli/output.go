package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/openpdk/sg13/internal/device"
	"github.com/openpdk/sg13/internal/pcell"
	"github.com/openpdk/sg13/internal/regress"
	"github.com/openpdk/sg13/internal/tech"
	"github.com/openpdk/sg13/internal/verify"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Device failure (rule violation, mismatch, missing snapshot)
	ExitCommandError = 2 // Command error (bad flags, unreadable files, database errors)
)

// Error codes reported in CLI output.
const (
	ErrCodeGeneric       = "E001"
	ErrCodeValidation    = "E101"
	ErrCodeDesignRule    = "E102"
	ErrCodeUnknownLayer  = "E103"
	ErrCodePortPlacement = "E104"
	ErrCodeMismatch      = "E201"
	ErrCodeMissingRef    = "E202"
)

// ExitError carries a specific exit code out of a command.
type ExitError struct {
	Code    int
	Message string
	Err     error
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

// NewExitError creates an ExitError with the given code and message.
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

// errCode maps a domain error to its reported code.
func errCode(err error) string {
	var (
		ve *device.ValidationError
		uk *device.UnknownKindError
		dr *pcell.DesignRuleViolation
		ul *tech.UnknownLayerError
		pp *pcell.PortPlacementError
		mm *verify.MismatchError
		mr *regress.MissingReferenceError
	)
	switch {
	case errors.As(err, &ve), errors.As(err, &uk):
		return ErrCodeValidation
	case errors.As(err, &dr):
		return ErrCodeDesignRule
	case errors.As(err, &ul):
		return ErrCodeUnknownLayer
	case errors.As(err, &pp):
		return ErrCodePortPlacement
	case errors.As(err, &mm):
		return ErrCodeMismatch
	case errors.As(err, &mr):
		return ErrCodeMissingRef
	default:
		return ErrCodeGeneric
	}
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose output (defaults to Writer)
	Verbose   bool
}

func newFormatter(opts *RootOptions, out, errOut io.Writer) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    out,
		ErrWriter: errOut,
		Verbose:   opts.Verbose,
	}
}

// CLIResponse is the standard JSON response shape for CLI output.
type CLIResponse struct {
	Status string      `json:"status"`          // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`  // success payload
	Error  *CLIError   `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(CLIResponse{Status: "ok", Data: data})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
	if f.Format == "json" {
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// VerboseLog outputs a message only when verbose mode is enabled.
// When format is JSON, verbose lines go to ErrWriter so they cannot
// corrupt the JSON stream.
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

// fail prints a domain error and returns an ExitError with the
// matching exit code. Device failures exit 1, everything else 2.
func fail(formatter *OutputFormatter, err error) error {
	code := errCode(err)
	_ = formatter.Error(code, err.Error(), nil)
	exit := ExitCommandError
	switch code {
	case ErrCodeValidation, ErrCodeDesignRule, ErrCodePortPlacement, ErrCodeMismatch, ErrCodeMissingRef:
		exit = ExitFailure
	}
	return NewExitError(exit, fmt.Sprintf("%s: %s", code, err.Error()))
}
