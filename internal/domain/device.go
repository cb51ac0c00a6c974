package domain

import "time"

type DeviceStatus string

const (
	DeviceStatusAvailable               DeviceStatus = "available"
	DeviceStatusReservedPendingHandover DeviceStatus = "reserved_pending_handover"
	DeviceStatusUnderMaintenance        DeviceStatus = "under_maintenance"
	DeviceStatusDamaged                 DeviceStatus = "damaged"
	DeviceStatusLost                    DeviceStatus = "lost"
	DeviceStatusRetired                 DeviceStatus = "retired"
)

// Device is a read-only inventory fact owned by an external
// collaborator; the engine counts devices but never mutates them.
type Device struct {
	ID            string
	DeviceModelID string
	Status        DeviceStatus
	CreatedAt     time.Time
}

// EligibleDeviceStatuses is the default allow-list of device states
// counted toward availability.
var EligibleDeviceStatuses = []DeviceStatus{
	DeviceStatusAvailable,
	DeviceStatusReservedPendingHandover,
}
