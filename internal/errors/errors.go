// Package errors provides the error definitions shared by the laneguard hook
// pipeline. Inner packages return ordinary wrapped errors built from these
// types; the hook dispatcher is the only place they are recovered from.
//
// # Error Types
//
//   - HookError: a failure while handling one hook event, tagged with the
//     event name and the pipeline step that failed
//   - StateError: a failure reading or writing the coordination state file,
//     tagged with the file path
//
// # Usage
//
//	err := errors.NewStateError("write", path, errors.ErrStateWrite).WithCause(ioErr)
//	if errors.Is(err, errors.ErrStateWrite) { ... }
//
//	var hookErr *errors.HookError
//	if errors.As(err, &hookErr) { log.Warn("hook failed", "event", hookErr.Event) }
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

// Coordination state sentinel errors
var (
	// ErrEmptySessionKey indicates that an event carried no usable session id.
	ErrEmptySessionKey = New("empty session key")
	// ErrStateCorrupted indicates that the persisted state could not be parsed.
	ErrStateCorrupted = New("coordination state corrupted")
	// ErrStateWrite indicates that the state file could not be written.
	ErrStateWrite = New("coordination state write failed")
	// ErrStatePath indicates that no state file location could be resolved.
	ErrStatePath = New("coordination state path unresolved")
)

// Hook pipeline sentinel errors
var (
	// ErrPayloadRead indicates that the hook payload could not be read.
	ErrPayloadRead = New("hook payload read failed")
	// ErrPayloadTooLarge indicates that the hook payload exceeded the read limit.
	ErrPayloadTooLarge = New("hook payload too large")
	// ErrHandlerPanic indicates that an event handler panicked.
	ErrHandlerPanic = New("hook handler panicked")
)

// -----------------------------------------------------------------------------
// HookError
// -----------------------------------------------------------------------------

// HookError represents a failure while processing one hook event.
//
// Example:
//
//	err := errors.NewHookError("PreToolUse", "save", cause)
//	fmt.Println(err) // "hook error [event=PreToolUse, op=save]: <cause>"
type HookError struct {
	Event string
	Op    string
	Err   error
}

// NewHookError creates a new HookError.
func NewHookError(event, op string, cause error) *HookError {
	return &HookError{Event: event, Op: op, Err: cause}
}

// Error returns the formatted error message.
func (e *HookError) Error() string {
	var parts []string
	if e.Event != "" {
		parts = append(parts, fmt.Sprintf("event=%s", e.Event))
	}
	if e.Op != "" {
		parts = append(parts, fmt.Sprintf("op=%s", e.Op))
	}

	prefix := "hook error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("hook error [%s]", strings.Join(parts, ", "))
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", prefix, e.Err)
	}
	return prefix
}

// Unwrap returns the underlying error.
func (e *HookError) Unwrap() error {
	return e.Err
}

// -----------------------------------------------------------------------------
// StateError
// -----------------------------------------------------------------------------

// StateError represents a failure touching the coordination state file.
type StateError struct {
	Op   string
	Path string
	kind error
	err  error
}

// NewStateError creates a StateError classified by one of the state sentinels.
func NewStateError(op, path string, kind error) *StateError {
	return &StateError{Op: op, Path: path, kind: kind}
}

// WithCause attaches the underlying I/O or decode error.
func (e *StateError) WithCause(cause error) *StateError {
	e.err = cause
	return e
}

// Error returns the formatted error message.
func (e *StateError) Error() string {
	msg := fmt.Sprintf("state %s [path=%s]", e.Op, e.Path)
	if e.kind != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.kind)
	}
	if e.err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.err)
	}
	return msg
}

// Unwrap exposes both the classifying sentinel and the cause to errors.Is.
func (e *StateError) Unwrap() []error {
	var errs []error
	if e.kind != nil {
		errs = append(errs, e.kind)
	}
	if e.err != nil {
		errs = append(errs, e.err)
	}
	return errs
}

// -----------------------------------------------------------------------------
// Convenience Constructors
// -----------------------------------------------------------------------------

// Wrap wraps an error with additional context message.
//
// Example:
//
//	err := errors.Wrap(baseErr, "failed to load state")
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
