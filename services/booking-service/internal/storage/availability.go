package storage

import (
	"context"

	"github.com/bookline/bookline/libs/db"
	"github.com/bookline/bookline/services/booking-service/internal/model"
)

// AvailabilityStore reads provider windows from the shared schema. It is
// the fallback when no availability gRPC endpoint is configured.
type AvailabilityStore struct {
	pool *db.Pool
}

func NewAvailabilityStore(pool *db.Pool) *AvailabilityStore {
	return &AvailabilityStore{pool: pool}
}

func (s *AvailabilityStore) ListWindows(ctx context.Context, providerID, date string) ([]model.AvailabilityWindow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id::text, provider_id::text, to_char(day, 'YYYY-MM-DD'), start_time, end_time, is_open
		FROM availability_windows
		WHERE provider_id = $1 AND day = $2::date
		ORDER BY start_time ASC
	`, providerID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var windows []model.AvailabilityWindow
	for rows.Next() {
		var w model.AvailabilityWindow
		if err := rows.Scan(&w.ID, &w.ProviderID, &w.Date, &w.Window.Start, &w.Window.End, &w.Open); err != nil {
			return nil, err
		}
		windows = append(windows, w)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return windows, nil
}
