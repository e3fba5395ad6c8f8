package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput reports malformed data reaching the engine: an empty point set,
	// mismatched dimensions, non-finite features or a membership matrix that is not
	// row-stochastic.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidParameter reports configuration outside its valid domain.
	ErrInvalidParameter = errors.New("invalid parameter")
)

func Input(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, a...))
}

func Parameter(format string, a ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParameter, fmt.Sprintf(format, a...))
}
