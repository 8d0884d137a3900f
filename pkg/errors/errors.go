package errors

import (
	"fmt"
	"os"
)

// EngineError is the interface implemented by all Starling errors.
type EngineError interface {
	error // Embed the standard error interface
	Pos() Position
	Kind() string // e.g., "Runtime", "Limit"
	// Message returns the specific error message without position info.
	// This might be useful if the caller wants to format the error differently.
	Message() string
	Unwrap() error // For error wrapping support (errors.Is/As)
}

// --- Concrete Error Types ---

// RuntimeError represents a script-level failure during VM execution: an
// uncaught thrown value, a bad call target, and so on. Engine bugs are not
// RuntimeErrors; those panic (see pkg/vm).
type RuntimeError struct {
	Position
	Msg   string
	Cause error // Underlying cause, if any
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("Runtime Error at %s: %s", e.Position, e.Msg)
}
func (e *RuntimeError) Pos() Position   { return e.Position }
func (e *RuntimeError) Kind() string    { return "Runtime" }
func (e *RuntimeError) Message() string { return e.Msg }
func (e *RuntimeError) Unwrap() error   { return e.Cause }
func (e *RuntimeError) CausedBy(cause error) *RuntimeError {
	e.Cause = cause
	return e
}

// LimitError represents a resource limit being hit: call-stack depth,
// register-stack exhaustion, loop iteration budget.
type LimitError struct {
	Position
	Msg   string
	Cause error
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("Limit Error at %s: %s", e.Position, e.Msg)
}
func (e *LimitError) Pos() Position   { return e.Position }
func (e *LimitError) Kind() string    { return "Limit" }
func (e *LimitError) Message() string { return e.Msg }
func (e *LimitError) Unwrap() error   { return e.Cause }
func (e *LimitError) CausedBy(cause error) *LimitError {
	e.Cause = cause
	return e
}

// --- Error Reporting ---

// DisplayErrors prints a list of engine errors to stderr in a user-friendly
// format.
func DisplayErrors(errs []EngineError) {
	for _, err := range errs {
		fmt.Fprintf(os.Stderr, "%s Error at %s: %s\n", err.Kind(), err.Pos(), err.Message())
	}
}
