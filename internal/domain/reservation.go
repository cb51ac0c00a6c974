package domain

import "time"

type ReservationStatus string

const (
	ReservationStatusPendingReview ReservationStatus = "pending_review"
	ReservationStatusUnderReview   ReservationStatus = "under_review"
	ReservationStatusConfirmed     ReservationStatus = "confirmed"
	ReservationStatusCancelled     ReservationStatus = "cancelled"
	ReservationStatusExpired       ReservationStatus = "expired"
)

// Reservation is a soft, model-level quantity hold backing one order line.
// Only Status and ExpiresAt ever change after creation; terminal rows are
// kept for audit instead of being deleted.
type Reservation struct {
	ID                     string
	OrderReferenceID       string
	OrderDetailReferenceID string
	DeviceModelID          string
	Quantity               int
	WindowStart            time.Time
	WindowEnd              time.Time
	Status                 ReservationStatus
	// ExpiresAt is only meaningful while the reservation is pending or
	// under review; transitions out of those states null it.
	ExpiresAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ReviewableStatuses are the source states MoveToUnderReview accepts.
// Expired is included on purpose: a late staff action revives an
// abandoned hold rather than erroring.
var ReviewableStatuses = []ReservationStatus{
	ReservationStatusPendingReview,
	ReservationStatusUnderReview,
	ReservationStatusExpired,
}

// ConfirmableStatuses are the source states MarkConfirmed accepts.
var ConfirmableStatuses = []ReservationStatus{
	ReservationStatusPendingReview,
	ReservationStatusUnderReview,
	ReservationStatusConfirmed,
}

// ExpirableStatuses are the only states the sweeper may move to expired.
var ExpirableStatuses = []ReservationStatus{
	ReservationStatusPendingReview,
	ReservationStatusUnderReview,
}

// ConservativeBlockingStatuses is the default blocking set for
// availability: anything a customer-facing caller must treat as
// competing for capacity.
var ConservativeBlockingStatuses = []ReservationStatus{
	ReservationStatusPendingReview,
	ReservationStatusUnderReview,
	ReservationStatusConfirmed,
}

// TechnicianBlockingStatuses is the narrower set used by operational
// staff doing allocation work: only staff-acknowledged holds compete.
var TechnicianBlockingStatuses = []ReservationStatus{
	ReservationStatusUnderReview,
}
