package postgres

import (
	"context"
	"fmt"

	"github.com/TuilaBo/TechRent-Backend-sub001/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DeviceRepository reads the device inventory. The engine never writes
// this table; rows are owned by the surrounding inventory system.
type DeviceRepository struct {
	pool *pgxpool.Pool
}

func NewDeviceRepository(pool *pgxpool.Pool) *DeviceRepository {
	return &DeviceRepository{pool: pool}
}

func (r *DeviceRepository) ListDeviceIDsByModel(ctx context.Context, modelID string, statuses []domain.DeviceStatus) ([]string, error) {
	const query = `
SELECT id
FROM devices
WHERE device_model_id = $1 AND status = ANY($2)
ORDER BY id`

	rows, err := r.query(ctx, query, modelID, deviceStatusStrings(statuses))
	if err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list devices: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan device id: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, fmt.Errorf("list devices: %w", err)
	}
	return out, nil
}

func deviceStatusStrings(statuses []domain.DeviceStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}

func (r *DeviceRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
