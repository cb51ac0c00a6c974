package domain

import "errors"

var (
	ErrInvalidID       = errors.New("invalid id")
	ErrOrderRefMissing = errors.New("order reference required")
	ErrDeviceNotFound  = errors.New("device not found")
	// ErrBookingOverlap means the storage-layer exclusion guard rejected
	// a second booked/active entry for the same device and window. The
	// allocator is expected to have checked availability first, so this
	// is an integration error, not something the engine recovers from.
	ErrBookingOverlap = errors.New("device already booked for overlapping window")
)
