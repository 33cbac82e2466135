package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Configuration errors are raised before any generation or scoring starts
	ErrConfiguration    = errors.New("invalid configuration")
	ErrUnknownTest      = fmt.Errorf("%w: unknown test", ErrConfiguration)
	ErrUnknownGenerator = fmt.Errorf("%w: unknown generator", ErrConfiguration)
	ErrInvalidParameter = fmt.Errorf("%w: invalid parameter", ErrConfiguration)

	// Data errors
	ErrInsufficientData = errors.New("insufficient data for analysis")

	// External source errors (OS entropy, out-of-process generators)
	ErrExternalSource   = errors.New("external source failure")
	ErrExternalTimeout  = fmt.Errorf("%w: timeout", ErrExternalSource)
	ErrMalformedOutput  = fmt.Errorf("%w: malformed output", ErrExternalSource)
	ErrProcessExit      = fmt.Errorf("%w: non-zero exit", ErrExternalSource)
	ErrEntropyExhausted = fmt.Errorf("%w: entropy read failed", ErrExternalSource)

	// Anything else that goes wrong while generating or scoring
	ErrExecution = errors.New("execution failed")

	// Not found errors
	ErrNotFound           = errors.New("resource not found")
	ErrResultNotFound     = fmt.Errorf("%w: test result", ErrNotFound)
	ErrComparisonNotFound = fmt.Errorf("%w: comparison", ErrNotFound)
)

// Error constructors with context
func NewConfigurationError(field string, reason string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidParameter, field, reason)
}

func NewInsufficientDataError(test string, have, need int) error {
	return fmt.Errorf("%w: %s needs at least %d samples, got %d", ErrInsufficientData, test, need, have)
}

func NewExternalSourceError(source string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrExternalSource, source, err)
}

func NewExecutionError(operation string, cause interface{}) error {
	return fmt.Errorf("%w: %s: %v", ErrExecution, operation, cause)
}

// Error checking helpers
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

func IsInsufficientDataError(err error) bool {
	return errors.Is(err, ErrInsufficientData)
}

func IsExternalSourceError(err error) bool {
	return errors.Is(err, ErrExternalSource)
}

func IsExecutionError(err error) bool {
	return errors.Is(err, ErrExecution)
}

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
