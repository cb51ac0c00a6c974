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

type BookingRepository struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) *BookingRepository {
	return &BookingRepository{pool: pool}
}

func (r *BookingRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

func (r *BookingRepository) CreateEntry(ctx context.Context, e domain.BookingEntry) error {
	const stmt = `
INSERT INTO booking_entries (id, device_id, order_reference_id, order_detail_reference_id,
	window_start, window_end, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.exec(ctx, stmt,
		e.ID,
		e.DeviceID,
		e.OrderReferenceID,
		e.OrderDetailReferenceID,
		e.WindowStart,
		e.WindowEnd,
		e.Status,
		e.CreatedAt,
	)
	if err != nil {
		if isExclusionViolation(err) {
			return domain.ErrBookingOverlap
		}
		if isForeignKeyViolation(err) {
			return domain.ErrDeviceNotFound
		}
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return fmt.Errorf("create booking entry: %w", err)
	}
	return nil
}

func (r *BookingRepository) DeleteByOrder(ctx context.Context, orderRef string) (int64, error) {
	const stmt = `DELETE FROM booking_entries WHERE order_reference_id = $1`

	tag, err := r.exec(ctx, stmt, orderRef)
	if err != nil {
		return 0, fmt.Errorf("delete booking entries: %w", err)
	}
	return tag.RowsAffected(), nil
}

// FindBusyDeviceIDs returns the model's devices holding an entry in one
// of statuses that overlaps [start, end).
func (r *BookingRepository) FindBusyDeviceIDs(ctx context.Context, modelID string, start, end time.Time, statuses []domain.BookingStatus) (map[string]struct{}, error) {
	const query = `
SELECT DISTINCT b.device_id
FROM booking_entries b
JOIN devices d ON d.id = b.device_id
WHERE d.device_model_id = $1
  AND b.status = ANY($2)
  AND b.window_start < $4
  AND b.window_end > $3`

	rows, err := r.query(ctx, query, modelID, bookingStatusStrings(statuses), start, end)
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("find busy devices: %w", err)
	}
	defer rows.Close()

	busy := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan busy device: %w", err)
		}
		busy[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("find busy devices: %w", err)
	}
	return busy, nil
}

func (r *BookingRepository) ListByOrder(ctx context.Context, orderRef string) ([]domain.BookingEntry, error) {
	const query = `
SELECT id, device_id, order_reference_id, order_detail_reference_id,
	window_start, window_end, status, created_at
FROM booking_entries
WHERE order_reference_id = $1
ORDER BY created_at, id`

	rows, err := r.query(ctx, query, orderRef)
	if err != nil {
		return nil, fmt.Errorf("list booking entries: %w", err)
	}
	defer rows.Close()

	var out []domain.BookingEntry
	for rows.Next() {
		var e domain.BookingEntry
		if err := rows.Scan(
			&e.ID,
			&e.DeviceID,
			&e.OrderReferenceID,
			&e.OrderDetailReferenceID,
			&e.WindowStart,
			&e.WindowEnd,
			&e.Status,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan booking entry: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list booking entries: %w", err)
	}
	return out, nil
}

func bookingStatusStrings(statuses []domain.BookingStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}

func (r *BookingRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *BookingRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
