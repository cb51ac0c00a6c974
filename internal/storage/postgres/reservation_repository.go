package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/TuilaBo/TechRent-Backend-sub001/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReservationRepository struct {
	pool *pgxpool.Pool
}

func NewReservationRepository(pool *pgxpool.Pool) *ReservationRepository {
	return &ReservationRepository{pool: pool}
}

func (r *ReservationRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *ReservationRepository) CreateReservation(ctx context.Context, res domain.Reservation) error {
	const stmt = `
INSERT INTO reservations (id, order_reference_id, order_detail_reference_id, device_model_id,
	quantity, window_start, window_end, status, expires_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.exec(ctx, stmt,
		res.ID,
		res.OrderReferenceID,
		res.OrderDetailReferenceID,
		res.DeviceModelID,
		res.Quantity,
		res.WindowStart,
		res.WindowEnd,
		res.Status,
		res.ExpiresAt,
		res.CreatedAt,
		res.UpdatedAt,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create reservation: %w", err)
	}
	return nil
}

// UpdateStatusByOrder is one guarded set-based update; concurrent
// callers cannot observe a partial transition. An empty from set means
// no source-status predicate (unconditional override).
func (r *ReservationRepository) UpdateStatusByOrder(ctx context.Context, orderRef string, from []domain.ReservationStatus, to domain.ReservationStatus, expiresAt *time.Time) (int64, error) {
	var (
		tag pgconn.CommandTag
		err error
	)
	if len(from) == 0 {
		const stmt = `
UPDATE reservations
SET status = $2, expires_at = $3, updated_at = NOW()
WHERE order_reference_id = $1`
		tag, err = r.exec(ctx, stmt, orderRef, to, expiresAt)
	} else {
		const stmt = `
UPDATE reservations
SET status = $2, expires_at = $3, updated_at = NOW()
WHERE order_reference_id = $1 AND status = ANY($4)`
		tag, err = r.exec(ctx, stmt, orderRef, to, expiresAt, reservationStatusStrings(from))
	}
	if err != nil {
		return 0, fmt.Errorf("update reservation status: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *ReservationRepository) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	const stmt = `
UPDATE reservations
SET status = $1, updated_at = NOW()
WHERE status = ANY($2) AND expires_at IS NOT NULL AND expires_at <= $3`

	tag, err := r.exec(ctx, stmt,
		domain.ReservationStatusExpired,
		reservationStatusStrings(domain.ExpirableStatuses),
		now,
	)
	if err != nil {
		return 0, fmt.Errorf("expire reservations: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *ReservationRepository) SumQuantityByStatus(ctx context.Context, modelID string, start, end time.Time, statuses []domain.ReservationStatus) (int, error) {
	const query = `
SELECT COALESCE(SUM(quantity), 0)
FROM reservations
WHERE device_model_id = $1
  AND status = ANY($2)
  AND window_start < $4
  AND window_end > $3`

	var total int
	err := r.queryRow(ctx, query, modelID, reservationStatusStrings(statuses), start, end).Scan(&total)
	if err != nil {
		if isInvalidUUID(err) {
			return 0, domain.ErrInvalidID
		}
		return 0, fmt.Errorf("sum reserved quantity: %w", err)
	}
	return total, nil
}

func (r *ReservationRepository) ListByOrder(ctx context.Context, orderRef string) ([]domain.Reservation, error) {
	const query = `
SELECT id, order_reference_id, order_detail_reference_id, device_model_id,
	quantity, window_start, window_end, status, expires_at, created_at, updated_at
FROM reservations
WHERE order_reference_id = $1
ORDER BY created_at, id`

	rows, err := r.query(ctx, query, orderRef)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		var res domain.Reservation
		if err := rows.Scan(
			&res.ID,
			&res.OrderReferenceID,
			&res.OrderDetailReferenceID,
			&res.DeviceModelID,
			&res.Quantity,
			&res.WindowStart,
			&res.WindowEnd,
			&res.Status,
			&res.ExpiresAt,
			&res.CreatedAt,
			&res.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	return out, nil
}

func reservationStatusStrings(statuses []domain.ReservationStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}

func (r *ReservationRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *ReservationRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *ReservationRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
