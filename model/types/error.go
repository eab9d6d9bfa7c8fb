// Package types holds the error taxonomy shared across the engine. The four
// categories mirror how callers must react: NotFound, InvalidState and
// InvalidInput are synchronous caller errors that leave state untouched;
// UpstreamFailure marks a collaborator failure that fails the owning task.
package types

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates an unknown task id.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState indicates an operation illegal for the current task status.
	ErrInvalidState = errors.New("invalid state")
	// ErrInvalidInput indicates a rejected argument (empty feedback text,
	// non-positive iteration bound).
	ErrInvalidInput = errors.New("invalid input")
	// ErrUpstream indicates a content capability call failed or timed out.
	ErrUpstream = errors.New("upstream failure")
)

// NewNotFoundError returns a NotFound error for the given task id.
func NewNotFoundError(id string) error {
	return fmt.Errorf("task %v: %w", id, ErrNotFound)
}

// NewInvalidStateError describes an operation rejected for the task's status.
func NewInvalidStateError(op, status string) error {
	return fmt.Errorf("%v not allowed in status %v: %w", op, status, ErrInvalidState)
}

// NewInvalidInputError wraps a validation failure message.
func NewInvalidInputError(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidInput)...)
}

// NewUpstreamError attributes a collaborator failure to a workflow step.
func NewUpstreamError(step string, err error) error {
	return fmt.Errorf("%v step: %v: %w", step, err, ErrUpstream)
}

// IsNotFound reports whether err belongs to the NotFound category.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsInvalidState reports whether err belongs to the InvalidState category.
func IsInvalidState(err error) bool { return errors.Is(err, ErrInvalidState) }

// IsInvalidInput reports whether err belongs to the InvalidInput category.
func IsInvalidInput(err error) bool { return errors.Is(err, ErrInvalidInput) }

// IsUpstream reports whether err belongs to the UpstreamFailure category.
func IsUpstream(err error) bool { return errors.Is(err, ErrUpstream) }
