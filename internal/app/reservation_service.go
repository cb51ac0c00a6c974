package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/TuilaBo/TechRent-Backend-sub001/internal/clock"
	"github.com/TuilaBo/TechRent-Backend-sub001/internal/domain"
)

// ReservationRepository is the storage surface of the reservation
// ledger. Status transitions are single set-based updates guarded by a
// source-status predicate so concurrent callers cannot race into an
// invalid intermediate state.
type ReservationRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	CreateReservation(ctx context.Context, r domain.Reservation) error
	// UpdateStatusByOrder moves every reservation of the order whose
	// status is in from (all statuses when from is empty) to the target
	// status, setting expires_at to expiresAt. Returns rows affected.
	UpdateStatusByOrder(ctx context.Context, orderRef string, from []domain.ReservationStatus, to domain.ReservationStatus, expiresAt *time.Time) (int64, error)
	// ExpireDue moves pending/under-review reservations with
	// expires_at <= now to expired. Returns rows affected.
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
	// SumQuantityByStatus sums quantity over reservations of the model
	// whose window overlaps [start, end) and whose status is in statuses.
	SumQuantityByStatus(ctx context.Context, modelID string, start, end time.Time, statuses []domain.ReservationStatus) (int, error)
	ListByOrder(ctx context.Context, orderRef string) ([]domain.Reservation, error)
}

// ReservationService owns the soft-hold state machine.
type ReservationService struct {
	repo    ReservationRepository
	clock   clock.Clock
	logger  *slog.Logger
	holdTTL time.Duration
}

const defaultHoldTTL = 30 * time.Minute

func NewReservationService(repo ReservationRepository, clk clock.Clock, logger *slog.Logger, opts ...ReservationServiceOption) *ReservationService {
	if logger == nil {
		logger = slog.Default()
	}
	svc := &ReservationService{
		repo:    repo,
		clock:   clk,
		logger:  logger,
		holdTTL: defaultHoldTTL,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type ReservationServiceOption func(*ReservationService)

// WithHoldTTL overrides how long a new pending hold lives before the
// sweeper may reclaim it.
func WithHoldTTL(d time.Duration) ReservationServiceOption {
	return func(s *ReservationService) {
		if d > 0 {
			s.holdTTL = d
		}
	}
}

// CreatePendingReservations inserts one pending_review hold per usable
// order line. Lines missing a model, with non-positive quantity, or
// whose order lacks either window bound are skipped and logged; orders
// in progress routinely mix complete and provisional lines, so partial
// success is the expected outcome, not a failure.
func (s *ReservationService) CreatePendingReservations(ctx context.Context, order domain.OrderRef, lines []domain.OrderLine) error {
	if order.ID == "" {
		return domain.ErrOrderRefMissing
	}

	now := s.clock.Now()
	expiresAt := now.Add(s.holdTTL)

	usable := make([]domain.Reservation, 0, len(lines))
	for _, line := range lines {
		if !order.HasWindow() {
			s.logger.Warn("skipping reservation: order window incomplete",
				"order_ref", order.ID, "order_detail_ref", line.ID)
			continue
		}
		if line.DeviceModelID == "" {
			s.logger.Warn("skipping reservation: line has no device model",
				"order_ref", order.ID, "order_detail_ref", line.ID)
			continue
		}
		if line.Quantity < 1 {
			s.logger.Warn("skipping reservation: non-positive quantity",
				"order_ref", order.ID, "order_detail_ref", line.ID, "quantity", line.Quantity)
			continue
		}

		exp := expiresAt
		usable = append(usable, domain.Reservation{
			ID:                     newID(),
			OrderReferenceID:       order.ID,
			OrderDetailReferenceID: line.ID,
			DeviceModelID:          line.DeviceModelID,
			Quantity:               line.Quantity,
			WindowStart:            *order.WindowStart,
			WindowEnd:              *order.WindowEnd,
			Status:                 domain.ReservationStatusPendingReview,
			ExpiresAt:              &exp,
			CreatedAt:              now,
			UpdatedAt:              now,
		})
	}

	if len(usable) == 0 {
		return nil
	}

	return s.repo.WithTx(ctx, func(txCtx context.Context) error {
		for _, r := range usable {
			if err := s.repo.CreateReservation(txCtx, r); err != nil {
				return err
			}
		}
		return nil
	})
}

// MoveToUnderReview bulk-transitions the order's pending, under-review
// and expired holds to under_review and clears their expiry. Calling it
// twice changes nothing the second time.
func (s *ReservationService) MoveToUnderReview(ctx context.Context, orderRef string) error {
	if orderRef == "" {
		return domain.ErrOrderRefMissing
	}
	n, err := s.repo.UpdateStatusByOrder(ctx, orderRef, domain.ReviewableStatuses, domain.ReservationStatusUnderReview, nil)
	if err != nil {
		return err
	}
	s.logger.Info("reservations moved to under_review", "order_ref", orderRef, "count", n)
	return nil
}

// MarkConfirmed bulk-transitions the order's holds to confirmed.
// Confirmed holds are terminal for capacity accounting: the inventory
// they held now lives in the hard booking calendar.
func (s *ReservationService) MarkConfirmed(ctx context.Context, orderRef string) error {
	if orderRef == "" {
		return domain.ErrOrderRefMissing
	}
	n, err := s.repo.UpdateStatusByOrder(ctx, orderRef, domain.ConfirmableStatuses, domain.ReservationStatusConfirmed, nil)
	if err != nil {
		return err
	}
	s.logger.Info("reservations confirmed", "order_ref", orderRef, "count", n)
	return nil
}

// CancelReservations overrides every reservation of the order to
// cancelled regardless of current status. The missing source-state
// guard is deliberate: cancellation must always succeed.
func (s *ReservationService) CancelReservations(ctx context.Context, orderRef string) error {
	if orderRef == "" {
		return domain.ErrOrderRefMissing
	}
	n, err := s.repo.UpdateStatusByOrder(ctx, orderRef, nil, domain.ReservationStatusCancelled, nil)
	if err != nil {
		return err
	}
	s.logger.Info("reservations cancelled", "order_ref", orderRef, "count", n)
	return nil
}

// ExpireReservations sweeps every overdue pending/under-review hold to
// expired in one set-based update, releasing its held capacity.
func (s *ReservationService) ExpireReservations(ctx context.Context) (int64, error) {
	return s.repo.ExpireDue(ctx, s.clock.Now())
}

// CountActiveReservedQuantity sums held quantity for the model over the
// conservative blocking set. Empty model or inverted window is "nothing
// to report" and yields zero.
func (s *ReservationService) CountActiveReservedQuantity(ctx context.Context, modelID string, start, end time.Time) (int, error) {
	return s.CountReservedQuantityByStatus(ctx, modelID, start, end, domain.ConservativeBlockingStatuses)
}

// CountReservedQuantityByStatus sums held quantity against a
// caller-supplied status set, enabling role-sensitive views.
func (s *ReservationService) CountReservedQuantityByStatus(ctx context.Context, modelID string, start, end time.Time, statuses []domain.ReservationStatus) (int, error) {
	if modelID == "" || !domain.ValidWindow(start, end) || len(statuses) == 0 {
		return 0, nil
	}
	return s.repo.SumQuantityByStatus(ctx, modelID, start, end, statuses)
}

// ListReservationsByOrder returns the order's reservations, all
// statuses included; terminal rows are kept for audit.
func (s *ReservationService) ListReservationsByOrder(ctx context.Context, orderRef string) ([]domain.Reservation, error) {
	if orderRef == "" {
		return nil, domain.ErrOrderRefMissing
	}
	return s.repo.ListByOrder(ctx, orderRef)
}
