package app

import (
	"context"
	"time"

	"github.com/TuilaBo/TechRent-Backend-sub001/internal/domain"
)

// DeviceRepository reads the externally-owned device inventory.
type DeviceRepository interface {
	// ListDeviceIDsByModel returns ids of the model's devices whose
	// status is in statuses.
	ListDeviceIDsByModel(ctx context.Context, modelID string, statuses []domain.DeviceStatus) ([]string, error)
}

// BusyDeviceFinder is the slice of the booking calendar the calculator
// needs: which devices of a model have a blocking entry in the window.
type BusyDeviceFinder interface {
	FindBusyDeviceIDs(ctx context.Context, modelID string, start, end time.Time, statuses []domain.BookingStatus) (map[string]struct{}, error)
}

// ReservedQuantityCounter is implemented by the reservation ledger.
type ReservedQuantityCounter interface {
	CountReservedQuantityByStatus(ctx context.Context, modelID string, start, end time.Time, statuses []domain.ReservationStatus) (int, error)
}

// AvailabilityPolicy holds the configurable status tables: which device
// states count as sellable inventory and which reservation states
// block capacity per caller role.
type AvailabilityPolicy struct {
	EligibleDeviceStatuses     []domain.DeviceStatus
	DefaultBlockingStatuses    []domain.ReservationStatus
	TechnicianBlockingStatuses []domain.ReservationStatus
}

func DefaultAvailabilityPolicy() AvailabilityPolicy {
	return AvailabilityPolicy{
		EligibleDeviceStatuses:     domain.EligibleDeviceStatuses,
		DefaultBlockingStatuses:    domain.ConservativeBlockingStatuses,
		TechnicianBlockingStatuses: domain.TechnicianBlockingStatuses,
	}
}

// BlockingStatuses resolves the reservation statuses that compete for
// capacity from the caller's role. Technicians checking stock for
// their own allocation work only race staff-acknowledged holds; every
// other caller gets the conservative set to avoid oversell.
func (p AvailabilityPolicy) BlockingStatuses(role domain.CallerRole) []domain.ReservationStatus {
	if role == domain.RoleTechnician {
		return p.TechnicianBlockingStatuses
	}
	return p.DefaultBlockingStatuses
}

// AvailabilityService answers "how many units of model M are free for
// [start, end)?" by combining inventory facts, hard bookings and soft
// holds. It is read-only and never holds inventory itself.
type AvailabilityService struct {
	devices      DeviceRepository
	bookings     BusyDeviceFinder
	reservations ReservedQuantityCounter
	policy       AvailabilityPolicy
}

func NewAvailabilityService(devices DeviceRepository, bookings BusyDeviceFinder, reservations ReservedQuantityCounter, policy AvailabilityPolicy) *AvailabilityService {
	return &AvailabilityService{
		devices:      devices,
		bookings:     bookings,
		reservations: reservations,
		policy:       policy,
	}
}

// AvailableCountByModel returns the number of free units, never
// negative. Callers wanting a safety buffer around the window (QC or
// handover turnaround) must pad start/end themselves; no implicit
// margin is applied here.
func (s *AvailabilityService) AvailableCountByModel(ctx context.Context, modelID string, start, end time.Time, role domain.CallerRole) (int, error) {
	if modelID == "" || !domain.ValidWindow(start, end) {
		return 0, nil
	}

	eligible, err := s.devices.ListDeviceIDsByModel(ctx, modelID, s.policy.EligibleDeviceStatuses)
	if err != nil {
		return 0, err
	}
	if len(eligible) == 0 {
		return 0, nil
	}

	busy, err := s.bookings.FindBusyDeviceIDs(ctx, modelID, start, end, domain.BusyBookingStatuses)
	if err != nil {
		return 0, err
	}

	free := 0
	for _, id := range eligible {
		if _, taken := busy[id]; !taken {
			free++
		}
	}

	reserved, err := s.reservations.CountReservedQuantityByStatus(ctx, modelID, start, end, s.policy.BlockingStatuses(role))
	if err != nil {
		return 0, err
	}

	free -= reserved
	if free < 0 {
		free = 0
	}
	return free, nil
}

// CheckAvailability reports whether quantity units fit in the window.
// A non-positive quantity is "nothing to report" and yields false.
func (s *AvailabilityService) CheckAvailability(ctx context.Context, modelID string, start, end time.Time, quantity int, role domain.CallerRole) (bool, error) {
	if quantity <= 0 {
		return false, nil
	}
	available, err := s.AvailableCountByModel(ctx, modelID, start, end, role)
	if err != nil {
		return false, err
	}
	return quantity <= available, nil
}
