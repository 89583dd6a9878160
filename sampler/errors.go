package sampler

import "errors"

var (
	// ErrInvalidArgument is a caller mistake (page size <= 0, empty category).
	// Retrying with the same input fails again.
	ErrInvalidArgument = errors.New("sampler: invalid argument")

	// ErrDataUnavailable wraps store failures, deadlines and cancellation.
	// Safe to retry with identical input.
	ErrDataUnavailable = errors.New("sampler: data unavailable")

	// ErrSessionBusy is returned by Session.Next while another call is in flight.
	ErrSessionBusy = errors.New("sampler: session busy")
)
