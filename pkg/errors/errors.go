// Package errors provides structured error handling for navstack.
//
// Faults raised while an owner's action queue runs an operation are wrapped
// in a [NavError] (or a [PanicError] for recovered panics) and sent to an
// [ErrorHandler]. The queue never stops because of a fault; reporting is the
// only way a failed navigation becomes visible.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindPrecondition indicates a caller passed invalid arguments, such as an
	// out-of-range show index or a screen that is not attached where
	// attachment is required.
	KindPrecondition
	// KindNotFound indicates pop or popTo found nothing to remove.
	KindNotFound
	// KindInvertedRange indicates a popTo target that sits above the top screen.
	KindInvertedRange
	// KindCommit indicates the container rejected a commit.
	KindCommit
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindPrecondition:
		return "precondition"
	case KindNotFound:
		return "not_found"
	case KindInvertedRange:
		return "inverted_range"
	case KindCommit:
		return "commit"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// Sentinel errors. Use errors.Is to test for them.
var (
	// ErrPrecondition is wrapped by every precondition violation.
	ErrPrecondition = errors.New("precondition violated")

	// ErrNotAttached indicates a screen is not in any container the operation can see.
	ErrNotAttached = fmt.Errorf("%w: screen not attached", ErrPrecondition)

	// ErrShowIndexOutOfRange indicates loadMultipleRoots got a 1-based index outside the screen list.
	ErrShowIndexOutOfRange = fmt.Errorf("%w: show index out of range", ErrPrecondition)

	// ErrCommitted indicates a transaction was committed twice.
	ErrCommitted = errors.New("transaction already committed")
)

// Precondition returns an error wrapping ErrPrecondition with a formatted message.
func Precondition(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPrecondition, fmt.Sprintf(format, args...))
}

// CommitError marks a failure returned by a container's commit primitive.
type CommitError struct {
	// Container is the id of the container that rejected the batch.
	Container string
	// Err is the underlying error.
	Err error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("commit to %s: %v", e.Container, e.Err)
}

func (e *CommitError) Unwrap() error {
	return e.Err
}

// KindOf classifies err. Panics are never classified here since they are not
// errors until wrapped in a PanicError.
func KindOf(err error) ErrorKind {
	var navErr *NavError
	var commitErr *CommitError
	switch {
	case err == nil:
		return KindUnknown
	case errors.As(err, &navErr):
		return navErr.Kind
	case errors.As(err, &commitErr), errors.Is(err, ErrCommitted):
		return KindCommit
	case errors.Is(err, ErrPrecondition):
		return KindPrecondition
	default:
		return KindUnknown
	}
}

// NavError represents a structured error raised by a navigation operation.
type NavError struct {
	// Op is the operation that failed (e.g., "navigation.Push").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Container is the container id involved, if known.
	Container string
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *NavError) Error() string {
	if e.Container != "" {
		return fmt.Sprintf("%s [%s] container=%s: %v", e.Op, e.Kind, e.Container, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *NavError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "navigation.Pop").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ErrorHandler receives faults reported by navigation owners.
type ErrorHandler interface {
	// HandleError is called when an operation returns an error.
	HandleError(err *NavError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
