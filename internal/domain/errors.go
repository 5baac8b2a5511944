package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is matched by every ConfigurationError.
	ErrConfiguration = errors.New("invalid match configuration")
	// ErrInvalidStateTransition is matched by every InvalidStateTransitionError.
	ErrInvalidStateTransition = errors.New("invalid state transition")
)

// ConfigurationError reports a match configuration that cannot start a half.
type ConfigurationError struct {
	Field string
	Value any
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid match configuration: %s = %v", e.Field, e.Value)
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// InvalidStateTransitionError reports an operation the current match state does not support.
type InvalidStateTransitionError struct {
	State     string
	Operation string
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("invalid state transition: %s not supported in state %s", e.Operation, e.State)
}

func (e *InvalidStateTransitionError) Unwrap() error { return ErrInvalidStateTransition }
