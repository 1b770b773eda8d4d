package builtin

import "errors"

var (
	// ErrDivisionByZero is returned by operation nodes dividing by zero.
	// The result is invalidated.
	ErrDivisionByZero = errors.New("builtin: division by zero")

	// ErrUnknownOperator is returned when an operation node is given an
	// operator it does not support.
	ErrUnknownOperator = errors.New("builtin: unknown operator")

	// ErrInvalidConfig is returned when a node configuration cannot be used.
	ErrInvalidConfig = errors.New("builtin: invalid config")
)
