package storage

import (
	"context"

	"github.com/bookline/bookline/libs/db"
	"github.com/bookline/bookline/services/booking-service/internal/model"
)

// ServiceCatalog reads the live catalog row a booking snapshots from.
type ServiceCatalog struct {
	pool *db.Pool
}

func NewServiceCatalog(pool *db.Pool) *ServiceCatalog {
	return &ServiceCatalog{pool: pool}
}

func (c *ServiceCatalog) Snapshot(ctx context.Context, serviceID string) (model.ServiceSnapshot, error) {
	var snap model.ServiceSnapshot
	err := c.pool.QueryRow(ctx, `
		SELECT id::text, provider_id::text, name, duration_minutes, buffer_minutes, price::text
		FROM services
		WHERE id = $1 AND active
	`, serviceID).Scan(
		&snap.ServiceID,
		&snap.ProviderID,
		&snap.Name,
		&snap.DurationMinutes,
		&snap.BufferMinutes,
		&snap.Price,
	)
	if err != nil {
		return model.ServiceSnapshot{}, mapError(err)
	}
	return snap, nil
}
