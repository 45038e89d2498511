package rigid

import (
	"errors"
	"fmt"
)

// Configuration errors.
var (
	// ErrNegativeMass indicates a body was given a negative mass.
	ErrNegativeMass = errors.New("rigid: negative mass")

	// ErrZeroAxis indicates a joint axis or plane normal of zero length.
	ErrZeroAxis = errors.New("rigid: zero-length axis")

	// ErrNonPositiveDt indicates a timestep that is zero or negative.
	ErrNonPositiveDt = errors.New("rigid: timestep must be positive")

	// ErrInvalidShape indicates a non-positive radius, extent or height.
	ErrInvalidShape = errors.New("rigid: invalid shape dimensions")

	// ErrInvalidParameter indicates a simulation parameter out of range.
	ErrInvalidParameter = errors.New("rigid: parameter out of valid range")

	// ErrSameBody indicates a joint connecting a body to itself.
	ErrSameBody = errors.New("rigid: joint connects a body to itself")

	// ErrIndexOutOfRange indicates a mutation naming a body or joint that
	// does not exist.
	ErrIndexOutOfRange = errors.New("rigid: index out of range")
)

// ConfigurationError reports invalid construction or configuration input.
type ConfigurationError struct {
	Op    string
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func configErr(op, field string, err error) error {
	return &ConfigurationError{Op: op, Field: field, Err: err}
}
