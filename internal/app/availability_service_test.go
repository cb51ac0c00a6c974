package app

import (
	"context"
	"testing"
	"time"

	"github.com/TuilaBo/TechRent-Backend-sub001/internal/domain"
)

func TestAvailabilityService_AvailableCountByModel(t *testing.T) {
	t.Parallel()

	d1 := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	d3 := d1.AddDate(0, 0, 2)
	d5 := d1.AddDate(0, 0, 4)
	d7 := d1.AddDate(0, 0, 6)

	t.Run("invalid input yields zero", func(t *testing.T) {
		svc := NewAvailabilityService(
			&fakeDeviceRepo{devices: map[string][]fakeDevice{}},
			&fakeBusyFinder{},
			&fakeReservedCounter{},
			DefaultAvailabilityPolicy(),
		)

		if n, err := svc.AvailableCountByModel(context.Background(), "", d1, d3, domain.RoleDefault); err != nil || n != 0 {
			t.Fatalf("expected 0/nil for empty model, got %d/%v", n, err)
		}
		if n, err := svc.AvailableCountByModel(context.Background(), "m1", d3, d1, domain.RoleDefault); err != nil || n != 0 {
			t.Fatalf("expected 0/nil for inverted window, got %d/%v", n, err)
		}
		if n, err := svc.AvailableCountByModel(context.Background(), "m1", d1, d1, domain.RoleDefault); err != nil || n != 0 {
			t.Fatalf("expected 0/nil for empty window, got %d/%v", n, err)
		}
	})

	t.Run("hard booking blocks only the covered window", func(t *testing.T) {
		svc := NewAvailabilityService(
			&fakeDeviceRepo{devices: map[string][]fakeDevice{
				"m1": {{id: "dev-1", status: domain.DeviceStatusAvailable}},
			}},
			&fakeBusyFinder{entries: []fakeBookingEntry{
				{deviceID: "dev-1", modelID: "m1", start: d1, end: d3, status: domain.BookingStatusBooked},
			}},
			&fakeReservedCounter{},
			DefaultAvailabilityPolicy(),
		)

		n, err := svc.AvailableCountByModel(context.Background(), "m1", d1, d3, domain.RoleDefault)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if n != 0 {
			t.Fatalf("expected 0 for fully booked window, got %d", n)
		}

		n, err = svc.AvailableCountByModel(context.Background(), "m1", d5, d7, domain.RoleDefault)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if n != 1 {
			t.Fatalf("expected 1 for disjoint window, got %d", n)
		}
	})

	t.Run("ineligible devices never count", func(t *testing.T) {
		svc := NewAvailabilityService(
			&fakeDeviceRepo{devices: map[string][]fakeDevice{
				"m1": {
					{id: "dev-1", status: domain.DeviceStatusAvailable},
					{id: "dev-2", status: domain.DeviceStatusDamaged},
					{id: "dev-3", status: domain.DeviceStatusRetired},
					{id: "dev-4", status: domain.DeviceStatusReservedPendingHandover},
				},
			}},
			&fakeBusyFinder{},
			&fakeReservedCounter{},
			DefaultAvailabilityPolicy(),
		)

		n, err := svc.AvailableCountByModel(context.Background(), "m1", d1, d3, domain.RoleDefault)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if n != 2 {
			t.Fatalf("expected 2 eligible devices, got %d", n)
		}
	})

	t.Run("confirmed holds block customers but not technicians", func(t *testing.T) {
		svc := NewAvailabilityService(
			&fakeDeviceRepo{devices: map[string][]fakeDevice{
				"m1": {
					{id: "dev-1", status: domain.DeviceStatusAvailable},
					{id: "dev-2", status: domain.DeviceStatusAvailable},
				},
			}},
			&fakeBusyFinder{},
			&fakeReservedCounter{reservations: []fakeReservationRow{
				{modelID: "m1", quantity: 1, start: d1, end: d3, status: domain.ReservationStatusConfirmed},
			}},
			DefaultAvailabilityPolicy(),
		)

		n, err := svc.AvailableCountByModel(context.Background(), "m1", d1, d3, domain.RoleDefault)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if n != 1 {
			t.Fatalf("expected 1 under conservative view, got %d", n)
		}

		n, err = svc.AvailableCountByModel(context.Background(), "m1", d1, d3, domain.RoleTechnician)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if n != 2 {
			t.Fatalf("expected 2 under technician view, got %d", n)
		}
	})

	t.Run("result clamps at zero on overcommit", func(t *testing.T) {
		svc := NewAvailabilityService(
			&fakeDeviceRepo{devices: map[string][]fakeDevice{
				"m1": {{id: "dev-1", status: domain.DeviceStatusAvailable}},
			}},
			&fakeBusyFinder{},
			&fakeReservedCounter{reservations: []fakeReservationRow{
				{modelID: "m1", quantity: 5, start: d1, end: d3, status: domain.ReservationStatusPendingReview},
			}},
			DefaultAvailabilityPolicy(),
		)

		n, err := svc.AvailableCountByModel(context.Background(), "m1", d1, d3, domain.RoleDefault)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if n != 0 {
			t.Fatalf("expected clamp to 0, got %d", n)
		}
	})
}

func TestAvailabilityService_CheckAvailability(t *testing.T) {
	t.Parallel()

	d1 := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	d3 := d1.AddDate(0, 0, 2)

	svc := NewAvailabilityService(
		&fakeDeviceRepo{devices: map[string][]fakeDevice{
			"m1": {
				{id: "dev-1", status: domain.DeviceStatusAvailable},
				{id: "dev-2", status: domain.DeviceStatusAvailable},
			},
		}},
		&fakeBusyFinder{},
		&fakeReservedCounter{reservations: []fakeReservationRow{
			{modelID: "m1", quantity: 1, start: d1, end: d3, status: domain.ReservationStatusUnderReview},
		}},
		DefaultAvailabilityPolicy(),
	)

	ok, err := svc.CheckAvailability(context.Background(), "m1", d1, d3, 1, domain.RoleDefault)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !ok {
		t.Fatalf("expected 1 unit to fit")
	}

	ok, err = svc.CheckAvailability(context.Background(), "m1", d1, d3, 2, domain.RoleDefault)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if ok {
		t.Fatalf("expected 2 units not to fit")
	}

	ok, err = svc.CheckAvailability(context.Background(), "m1", d1, d3, 0, domain.RoleDefault)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if ok {
		t.Fatalf("expected false for non-positive quantity")
	}
}

type fakeDevice struct {
	id     string
	status domain.DeviceStatus
}

type fakeDeviceRepo struct {
	devices map[string][]fakeDevice
}

func (f *fakeDeviceRepo) ListDeviceIDsByModel(_ context.Context, modelID string, statuses []domain.DeviceStatus) ([]string, error) {
	var out []string
	for _, d := range f.devices[modelID] {
		for _, s := range statuses {
			if d.status == s {
				out = append(out, d.id)
				break
			}
		}
	}
	return out, nil
}

type fakeBookingEntry struct {
	deviceID   string
	modelID    string
	start, end time.Time
	status     domain.BookingStatus
}

type fakeBusyFinder struct {
	entries []fakeBookingEntry
}

func (f *fakeBusyFinder) FindBusyDeviceIDs(_ context.Context, modelID string, start, end time.Time, statuses []domain.BookingStatus) (map[string]struct{}, error) {
	busy := make(map[string]struct{})
	for _, e := range f.entries {
		if e.modelID != modelID {
			continue
		}
		if !domain.Overlaps(e.start, e.end, start, end) {
			continue
		}
		for _, s := range statuses {
			if e.status == s {
				busy[e.deviceID] = struct{}{}
				break
			}
		}
	}
	return busy, nil
}

type fakeReservationRow struct {
	modelID    string
	quantity   int
	start, end time.Time
	status     domain.ReservationStatus
}

type fakeReservedCounter struct {
	reservations []fakeReservationRow
}

func (f *fakeReservedCounter) CountReservedQuantityByStatus(_ context.Context, modelID string, start, end time.Time, statuses []domain.ReservationStatus) (int, error) {
	total := 0
	for _, r := range f.reservations {
		if r.modelID != modelID {
			continue
		}
		if !domain.Overlaps(r.start, r.end, start, end) {
			continue
		}
		if !statusIn(r.status, statuses) {
			continue
		}
		total += r.quantity
	}
	return total, nil
}
