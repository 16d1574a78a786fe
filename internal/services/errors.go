package services

import "errors"

// Failure taxonomy for the booking and payment flow. Handlers map these to
// HTTP status codes with errors.Is; everything else is a 500.
var (
	// ErrValidation covers bad input: party size out of bounds, inactive
	// package, malformed dates, unknown enum values
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized is returned when the requester may not act on the
	// resource (wrong owner, missing admin role)
	ErrUnauthorized = errors.New("unauthorized access")

	// ErrNotFound is returned when a booking or package does not exist
	ErrNotFound = errors.New("record not found")

	// ErrInvalidState is returned when the operation is not legal from the
	// booking's current state, e.g. initiating payment on a paid booking
	ErrInvalidState = errors.New("operation not allowed in current state")

	// ErrPaymentGateway wraps upstream gateway failures; safe to retry
	ErrPaymentGateway = errors.New("payment gateway error")

	// ErrPaymentNotCompleted is returned when the gateway reports the
	// session as not paid during confirmation
	ErrPaymentNotCompleted = errors.New("payment not completed")

	// ErrSecurityViolation marks owner/session mismatches. Callers must log
	// it and answer with a generic message that reveals nothing about the
	// booking.
	ErrSecurityViolation = errors.New("security violation")
)
