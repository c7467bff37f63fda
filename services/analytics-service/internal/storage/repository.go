// Package storage maintains the analytics read model: daily aggregate
// rows fed by reservation events, plus direct reads of the reservation
// and availability tables for per-user views.
package storage

import (
	"context"
	"time"

	"github.com/bookline/bookline/libs/db"
	"github.com/bookline/bookline/services/analytics-service/internal/metrics"
)

type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) ApplyDelta(ctx context.Context, d metrics.Delta) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO daily_metrics
			(day, provider_id, service_id, service_name, booked, rescheduled, cancelled, completed, deleted, booked_minutes)
		VALUES ($1::date, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (day, provider_id, service_id) DO UPDATE SET
			booked = daily_metrics.booked + EXCLUDED.booked,
			rescheduled = daily_metrics.rescheduled + EXCLUDED.rescheduled,
			cancelled = daily_metrics.cancelled + EXCLUDED.cancelled,
			completed = daily_metrics.completed + EXCLUDED.completed,
			deleted = daily_metrics.deleted + EXCLUDED.deleted,
			booked_minutes = daily_metrics.booked_minutes + EXCLUDED.booked_minutes,
			service_name = EXCLUDED.service_name,
			updated_at = now()
	`, d.Day, d.ProviderID, d.ServiceID, d.ServiceName,
		d.Booked, d.Rescheduled, d.Cancelled, d.Completed, d.Deleted, d.BookedMinutes)
	return err
}

type Totals struct {
	Booked      int `json:"booked"`
	Rescheduled int `json:"rescheduled"`
	Cancelled   int `json:"cancelled"`
	Completed   int `json:"completed"`
	Deleted     int `json:"deleted"`
}

func (r *Repository) AdminTotals(ctx context.Context) (Totals, error) {
	return r.totals(ctx, "")
}

func (r *Repository) ProviderTotals(ctx context.Context, providerID string) (Totals, error) {
	return r.totals(ctx, providerID)
}

func (r *Repository) totals(ctx context.Context, providerID string) (Totals, error) {
	var t Totals
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(booked), 0), COALESCE(SUM(rescheduled), 0),
			COALESCE(SUM(cancelled), 0), COALESCE(SUM(completed), 0), COALESCE(SUM(deleted), 0)
		FROM daily_metrics
		WHERE ($1 = '' OR provider_id = $1)
	`, providerID).Scan(&t.Booked, &t.Rescheduled, &t.Cancelled, &t.Completed, &t.Deleted)
	return t, err
}

type ServiceCount struct {
	ServiceID   string `json:"service_id"`
	ServiceName string `json:"service_name"`
	Booked      int    `json:"booked"`
}

func (r *Repository) TopServices(ctx context.Context, days, limit int) ([]ServiceCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT service_id::text, MAX(service_name), SUM(booked)::int
		FROM daily_metrics
		WHERE day >= current_date - $1::int
		GROUP BY service_id
		ORDER BY SUM(booked) DESC
		LIMIT $2
	`, days, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ServiceCount
	for rows.Next() {
		var sc ServiceCount
		if err := rows.Scan(&sc.ServiceID, &sc.ServiceName, &sc.Booked); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// BookingTrend returns day->booked counts over the window; providerID
// empty means all providers. The handler zero-fills missing days.
func (r *Repository) BookingTrend(ctx context.Context, providerID string, days int) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT to_char(day, 'YYYY-MM-DD'), SUM(booked)::int
		FROM daily_metrics
		WHERE day >= current_date - $2::int
			AND ($1 = '' OR provider_id = $1)
		GROUP BY day
	`, providerID, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var day string
		var n int
		if err := rows.Scan(&day, &n); err != nil {
			return nil, err
		}
		counts[day] = n
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return counts, nil
}

func (r *Repository) ProviderBookedMinutes(ctx context.Context, providerID string, days int) (int, error) {
	var mins int
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(booked_minutes), 0)
		FROM daily_metrics
		WHERE provider_id = $1 AND day >= current_date - $2::int
	`, providerID, days).Scan(&mins)
	return mins, err
}

func (r *Repository) ProviderOpenMinutes(ctx context.Context, providerID string, days int) (int, error) {
	var mins int
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(EXTRACT(EPOCH FROM (end_time - start_time)) / 60), 0)::int
		FROM availability_windows
		WHERE provider_id = $1
			AND is_open
			AND day >= current_date - $2::int
			AND day <= current_date
	`, providerID, days).Scan(&mins)
	return mins, err
}

type ReservationRow struct {
	ReservationID string    `json:"reservation_id"`
	ServiceName   string    `json:"service_name"`
	ProviderID    string    `json:"provider_id"`
	CustomerID    string    `json:"customer_id"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Status        string    `json:"status"`
}

const reservationRowColumns = `
	id::text, service_name, provider_id::text, customer_id::text, start_time, end_time, status`

// CustomerBucket selects which slice of a customer's history to return.
type CustomerBucket string

const (
	BucketUpcoming  CustomerBucket = "upcoming"
	BucketPast      CustomerBucket = "past"
	BucketCancelled CustomerBucket = "cancelled"
)

func (r *Repository) CustomerReservations(ctx context.Context, customerID string, bucket CustomerBucket, limit int) ([]ReservationRow, error) {
	if limit <= 0 {
		limit = 50
	}

	var cond, order string
	switch bucket {
	case BucketUpcoming:
		cond = `status IN ('pending', 'confirmed') AND start_time > now()`
		order = `start_time ASC`
	case BucketPast:
		cond = `status <> 'cancelled' AND start_time <= now()`
		order = `start_time DESC`
	default:
		cond = `status = 'cancelled'`
		order = `start_time DESC`
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+reservationRowColumns+`
		FROM reservations
		WHERE customer_id = $1 AND `+cond+`
		ORDER BY `+order+`
		LIMIT $2
	`, customerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ReservationRow
	for rows.Next() {
		var row ReservationRow
		if err := rows.Scan(&row.ReservationID, &row.ServiceName, &row.ProviderID, &row.CustomerID, &row.StartTime, &row.EndTime, &row.Status); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// ForEachReservation streams all reservations to fn, newest first. Used by
// the CSV export so the full set never sits in memory.
func (r *Repository) ForEachReservation(ctx context.Context, fn func(ReservationRow) error) error {
	rows, err := r.pool.Query(ctx, `
		SELECT `+reservationRowColumns+`
		FROM reservations
		ORDER BY start_time DESC
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var row ReservationRow
		if err := rows.Scan(&row.ReservationID, &row.ServiceName, &row.ProviderID, &row.CustomerID, &row.StartTime, &row.EndTime, &row.Status); err != nil {
			return err
		}
		if err := fn(row); err != nil {
			return err
		}
	}
	return rows.Err()
}
