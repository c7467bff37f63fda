// Package storage owns the provider-facing tables: availability windows
// and the service catalog. booking-service reads the same tables through
// its own store when the gRPC path is disabled.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/bookline/bookline/libs/db"
)

var ErrNotFound = errors.New("not found")

type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

type AvailabilityWindow struct {
	ID         string
	ProviderID string
	Day        string
	StartTime  time.Time
	EndTime    time.Time
	Open       bool
}

func (r *Repository) CreateWindow(ctx context.Context, w AvailabilityWindow) (string, error) {
	id := uuid.NewString()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO availability_windows (id, provider_id, day, start_time, end_time, is_open)
		VALUES ($1, $2, $3::date, $4, $5, $6)
	`, id, w.ProviderID, w.Day, w.StartTime, w.EndTime, w.Open)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Repository) ListWindows(ctx context.Context, providerID, day string) ([]AvailabilityWindow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, provider_id::text, to_char(day, 'YYYY-MM-DD'), start_time, end_time, is_open
		FROM availability_windows
		WHERE provider_id = $1 AND day = $2::date
		ORDER BY start_time ASC
	`, providerID, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var windows []AvailabilityWindow
	for rows.Next() {
		var w AvailabilityWindow
		if err := rows.Scan(&w.ID, &w.ProviderID, &w.Day, &w.StartTime, &w.EndTime, &w.Open); err != nil {
			return nil, err
		}
		windows = append(windows, w)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return windows, nil
}

// DeleteWindow removes one window, scoped to its owner so a provider
// cannot delete another provider's schedule by guessing IDs.
func (r *Repository) DeleteWindow(ctx context.Context, id, providerID string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM availability_windows
		WHERE id = $1 AND provider_id = $2
	`, id, providerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type ServiceSpec struct {
	ID           string
	ProviderID   string
	Name         string
	Description  string
	Category     string
	DurationMins int
	BufferMins   int
	Price        string
	Active       bool
	CreatedAt    time.Time
}

func (r *Repository) CreateService(ctx context.Context, spec ServiceSpec) (string, error) {
	id := uuid.NewString()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO services (id, provider_id, name, description, category, duration_minutes, buffer_minutes, price, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, true)
	`, id, spec.ProviderID, spec.Name, spec.Description, spec.Category, spec.DurationMins, spec.BufferMins, spec.Price)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *Repository) UpdateService(ctx context.Context, spec ServiceSpec) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE services
		SET name = $3,
			description = $4,
			category = $5,
			duration_minutes = $6,
			buffer_minutes = $7,
			price = $8,
			updated_at = now()
		WHERE id = $1 AND provider_id = $2
	`, spec.ID, spec.ProviderID, spec.Name, spec.Description, spec.Category, spec.DurationMins, spec.BufferMins, spec.Price)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeactivateService hides a service from the public catalog. Existing
// reservations keep their snapshot and are untouched.
func (r *Repository) DeactivateService(ctx context.Context, id, providerID string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE services
		SET active = false, updated_at = now()
		WHERE id = $1 AND provider_id = $2
	`, id, providerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) GetService(ctx context.Context, id string) (ServiceSpec, error) {
	var spec ServiceSpec
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, provider_id::text, name, COALESCE(description, ''), COALESCE(category, ''),
			duration_minutes, buffer_minutes, price::text, active, created_at
		FROM services
		WHERE id = $1
	`, id).Scan(
		&spec.ID, &spec.ProviderID, &spec.Name, &spec.Description, &spec.Category,
		&spec.DurationMins, &spec.BufferMins, &spec.Price, &spec.Active, &spec.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return ServiceSpec{}, ErrNotFound
	}
	if err != nil {
		return ServiceSpec{}, err
	}
	return spec, nil
}

// ListServices returns the provider's full catalog including inactive
// rows; activeOnly narrows to the public view.
func (r *Repository) ListServices(ctx context.Context, providerID string, activeOnly bool) ([]ServiceSpec, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, provider_id::text, name, COALESCE(description, ''), COALESCE(category, ''),
			duration_minutes, buffer_minutes, price::text, active, created_at
		FROM services
		WHERE ($1 = '' OR provider_id = $1)
			AND (NOT $2 OR active)
		ORDER BY created_at DESC
	`, providerID, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var specs []ServiceSpec
	for rows.Next() {
		var spec ServiceSpec
		if err := rows.Scan(
			&spec.ID, &spec.ProviderID, &spec.Name, &spec.Description, &spec.Category,
			&spec.DurationMins, &spec.BufferMins, &spec.Price, &spec.Active, &spec.CreatedAt,
		); err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return specs, nil
}
