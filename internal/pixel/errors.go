package pixel

import (
	"errors"
	"fmt"
)

var (
	// ErrShapeMismatch is returned when buffers expected to match disagree in size or channels.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrBounds is returned for a coordinate or channel outside the extent.
	ErrBounds = errors.New("out of bounds")

	// ErrType is returned when an operation is given an unsupported channel layout.
	ErrType = errors.New("unsupported channel layout")

	// ErrUnsupportedType is returned when no factory is registered for a representation.
	ErrUnsupportedType = errors.New("unsupported representation")

	// ErrConfig is returned for an invalid algorithm parameter.
	ErrConfig = errors.New("invalid configuration")

	// ErrState is returned when a runtime invariant is violated.
	ErrState = errors.New("invalid state")

	// ErrRange is returned by explicit range checks for samples outside the layout.
	ErrRange = errors.New("value outside layout range")
)

// RequireLayout fails with ErrType unless b uses one of the accepted layouts.
func RequireLayout(b Buffer, accepted ...*Layout) error {
	l := b.Layout()
	for _, a := range accepted {
		if l == a {
			return nil
		}
	}
	return fmt.Errorf("%w: got %s", ErrType, l.Name())
}
