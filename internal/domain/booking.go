package domain

import "time"

type BookingStatus string

const (
	BookingStatusBooked BookingStatus = "booked"
	BookingStatusActive BookingStatus = "active"
	// Completed and cancelled entries are written by external
	// collaborators (handover/return flows), never by the engine.
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// BookingEntry pins one physical device to one order for one window.
// At most one booked/active entry may exist per device and overlapping
// window; the storage layer enforces this with an exclusion constraint.
type BookingEntry struct {
	ID                     string
	DeviceID               string
	OrderReferenceID       string
	OrderDetailReferenceID string
	WindowStart            time.Time
	WindowEnd              time.Time
	Status                 BookingStatus
	CreatedAt              time.Time
}

// BusyBookingStatuses are the entry states that make a device
// unavailable for an overlapping window.
var BusyBookingStatuses = []BookingStatus{
	BookingStatusBooked,
	BookingStatusActive,
}

// Allocation pairs a picked physical device with the order line it
// fulfils. The window comes from the parent order; either bound may be
// missing on provisional input, in which case the allocation is skipped.
type Allocation struct {
	DeviceID               string
	OrderReferenceID       string
	OrderDetailReferenceID string
	WindowStart            *time.Time
	WindowEnd              *time.Time
}
