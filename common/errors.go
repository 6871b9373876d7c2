package common

import (
	"errors"
)

// Common error constants
var (
	// ErrInvalidConfig is returned when an invalid configuration is provided
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrRegistrationNotFound is returned when no registration exists for a data source name
	ErrRegistrationNotFound = errors.New("dq registration not found")

	// ErrDuplicateRegistration is returned when a registration already exists for a data source name
	ErrDuplicateRegistration = errors.New("dq registration already exists")

	// ErrInvalidRegistration is returned when a registration payload is malformed or fails validation
	ErrInvalidRegistration = errors.New("invalid dq registration")
)
