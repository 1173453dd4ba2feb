package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// TargetNotFound indicates one or more target members do not exist in the source root
	TargetNotFound ErrorCode = "TARGET_NOT_FOUND"
	// TargetInvalid indicates a target signature could not be parsed
	TargetInvalid ErrorCode = "TARGET_INVALID"
	// ParseFailed indicates a source file could not be parsed
	ParseFailed ErrorCode = "PARSE_FAILED"
	// ParserUnavailable indicates the binary was built without the tree-sitter parser
	ParserUnavailable ErrorCode = "PARSER_UNAVAILABLE"
	// CheckerFailed indicates the external type-checker could not run
	CheckerFailed ErrorCode = "CHECKER_FAILED"
	// CheckerTimeout indicates the external type-checker exceeded its deadline
	CheckerTimeout ErrorCode = "CHECKER_TIMEOUT"
	// BudgetExhausted indicates the correction loop ran out of iterations
	BudgetExhausted ErrorCode = "BUDGET_EXHAUSTED"
	// InvariantViolation indicates a structural assumption about the tree did not hold
	InvariantViolation ErrorCode = "INVARIANT_VIOLATION"
	// ConfigInvalid indicates the configuration failed validation
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// StorageFailed indicates the run journal could not be read or written
	StorageFailed ErrorCode = "STORAGE_FAILED"
	// OutputFailed indicates the slice could not be written
	OutputFailed ErrorCode = "OUTPUT_FAILED"
	// Cancelled indicates the run was interrupted before it finished
	Cancelled ErrorCode = "CANCELLED"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// InstallTool suggests installing a tool
	InstallTool FixActionType = "install-tool"
	// EditConfig suggests changing a configuration value
	EditConfig FixActionType = "edit-config"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Safe        bool          `json:"safe,omitempty"`
	Description string        `json:"description,omitempty"`
	Tool        string        `json:"tool,omitempty"`
	Key         string        `json:"key,omitempty"`
}

// SliceError represents an error with code, message, and suggestions
type SliceError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error       // Underlying error (not exported to JSON)
}

// New creates a new SliceError with the default fixes for its code
func New(code ErrorCode, message string, cause error) *SliceError {
	return &SliceError{
		Code:           code,
		Message:        message,
		cause:          cause,
		SuggestedFixes: GetSuggestedFixes(code),
	}
}

// Newf creates a new SliceError with a formatted message and no cause
func Newf(code ErrorCode, format string, args ...interface{}) *SliceError {
	return New(code, fmt.Sprintf(format, args...), nil)
}

// Error implements the error interface
func (e *SliceError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *SliceError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *SliceError) WithDetails(details interface{}) *SliceError {
	e.Details = details
	return e
}

// CodeOf returns the code of the first SliceError in err's chain, or
// InternalError when there is none.
func CodeOf(err error) ErrorCode {
	var se *SliceError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return InternalError
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code ErrorCode) bool {
	var se *SliceError
	for err != nil {
		if !stderrors.As(err, &se) {
			return false
		}
		if se.Code == code {
			return true
		}
		err = se.cause
	}
	return false
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	TargetNotFound: {
		{
			Type:        RunCommand,
			Command:     "grep -rn '<member name>' <root>",
			Safe:        true,
			Description: "Check the spelling of the type and member, including parameter simple names",
		},
	},
	ParserUnavailable: {
		{
			Type:        RunCommand,
			Command:     "CGO_ENABLED=1 go build ./cmd/jslice",
			Safe:        true,
			Description: "Rebuild with cgo enabled to include the Java parser",
		},
	},
	CheckerFailed: {
		{
			Type:        InstallTool,
			Tool:        "javac",
			Description: "Install a JDK or point oracle.javac at an existing javac",
		},
		{
			Type:        EditConfig,
			Key:         "oracle.enabled",
			Description: "Disable the correction loop to emit the uncorrected slice",
		},
	},
	CheckerTimeout: {
		{
			Type:        EditConfig,
			Key:         "oracle.timeout",
			Description: "Raise the per-invocation type-checker timeout",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
