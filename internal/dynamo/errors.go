package dynamo

import "errors"

// Domain errors for scene operations.
var (
	// ErrInvalidState indicates a vector or body with NaN or Inf components.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrDuplicateBody indicates an attempt to register a second body under an id.
	ErrDuplicateBody = errors.New("dynamo: body already registered for id")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrDisposed indicates the scene was torn down.
	ErrDisposed = errors.New("dynamo: scene disposed")
)

// BodyError wraps an error with the id of the body it concerns.
type BodyError struct {
	ID      string
	Wrapped error
}

func (e *BodyError) Error() string {
	return e.ID + ": " + e.Wrapped.Error()
}

func (e *BodyError) Unwrap() error {
	return e.Wrapped
}
