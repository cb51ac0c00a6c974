package app

import (
	"context"
	"log/slog"

	"github.com/TuilaBo/TechRent-Backend-sub001/internal/clock"
	"github.com/TuilaBo/TechRent-Backend-sub001/internal/domain"
)

// BookingRepository is the storage surface of the hard booking
// calendar. The overlap invariant (one booked/active entry per device
// and window) is enforced by the storage layer itself.
type BookingRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	CreateEntry(ctx context.Context, e domain.BookingEntry) error
	DeleteByOrder(ctx context.Context, orderRef string) (int64, error)
	ListByOrder(ctx context.Context, orderRef string) ([]domain.BookingEntry, error)
}

// BookingService materializes device-to-order commitments once
// physical units have been picked after quality control.
type BookingService struct {
	repo   BookingRepository
	clock  clock.Clock
	logger *slog.Logger
}

func NewBookingService(repo BookingRepository, clk clock.Clock, logger *slog.Logger) *BookingService {
	if logger == nil {
		logger = slog.Default()
	}
	return &BookingService{
		repo:   repo,
		clock:  clk,
		logger: logger,
	}
}

// CreateBookingsForAllocations inserts one booked entry per valid
// allocation. Allocations without a device or with an incomplete order
// window are skipped individually and logged; this is a best-effort
// bulk insert over possibly-incomplete input, not all-or-nothing.
//
// The allocator is expected to have confirmed availability first. If
// an insert still collides with an existing booked/active entry for
// the same device and window, the storage guard rejects it and the
// batch fails with ErrBookingOverlap.
func (s *BookingService) CreateBookingsForAllocations(ctx context.Context, allocations []domain.Allocation) error {
	now := s.clock.Now()

	usable := make([]domain.BookingEntry, 0, len(allocations))
	for _, a := range allocations {
		if a.DeviceID == "" {
			s.logger.Warn("skipping allocation: no device",
				"order_ref", a.OrderReferenceID, "order_detail_ref", a.OrderDetailReferenceID)
			continue
		}
		if a.WindowStart == nil || a.WindowEnd == nil {
			s.logger.Warn("skipping allocation: order window incomplete",
				"order_ref", a.OrderReferenceID, "order_detail_ref", a.OrderDetailReferenceID, "device_id", a.DeviceID)
			continue
		}

		usable = append(usable, domain.BookingEntry{
			ID:                     newID(),
			DeviceID:               a.DeviceID,
			OrderReferenceID:       a.OrderReferenceID,
			OrderDetailReferenceID: a.OrderDetailReferenceID,
			WindowStart:            *a.WindowStart,
			WindowEnd:              *a.WindowEnd,
			Status:                 domain.BookingStatusBooked,
			CreatedAt:              now,
		})
	}

	if len(usable) == 0 {
		return nil
	}

	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		for _, e := range usable {
			if err := s.repo.CreateEntry(txCtx, e); err != nil {
				return err
			}
		}
		return nil
	})
}

// ClearBookingsForOrder deletes every entry for the order so the
// allocation can be redone, e.g. after failed QC. Safe to call when no
// entries exist.
func (s *BookingService) ClearBookingsForOrder(ctx context.Context, orderRef string) error {
	if orderRef == "" {
		return domain.ErrOrderRefMissing
	}
	n, err := s.repo.DeleteByOrder(ctx, orderRef)
	if err != nil {
		return err
	}
	s.logger.Info("bookings cleared", "order_ref", orderRef, "count", n)
	return nil
}

// ListBookingsByOrder returns the order's calendar entries.
func (s *BookingService) ListBookingsByOrder(ctx context.Context, orderRef string) ([]domain.BookingEntry, error) {
	if orderRef == "" {
		return nil, domain.ErrOrderRefMissing
	}
	return s.repo.ListByOrder(ctx, orderRef)
}
