// Package storage maps reservation state onto Postgres. The service
// snapshot taken at booking time is denormalized onto the reservation row
// so conflict checks never depend on the live catalog.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/bookline/bookline/libs/db"
	"github.com/bookline/bookline/services/booking-service/internal/booking"
	"github.com/bookline/bookline/services/booking-service/internal/model"
	"github.com/bookline/bookline/services/booking-service/internal/outbox"
)

const reservationColumns = `
	id::text, service_id::text, provider_id::text, customer_id::text,
	start_time, end_time, status,
	service_name, duration_minutes, buffer_minutes, price::text,
	COALESCE(cancellation_reason, ''), created_at, updated_at`

type ReservationStore struct {
	pool   *db.Pool
	outbox *outbox.Repository
}

func NewReservationStore(pool *db.Pool, ob *outbox.Repository) *ReservationStore {
	return &ReservationStore{pool: pool, outbox: ob}
}

// InTx runs fn in a single transaction and maps serialization failures and
// deadlocks so callers can retry them.
func (s *ReservationStore) InTx(ctx context.Context, fn func(booking.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return mapError(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&reservationTx{tx: tx, outbox: s.outbox}); err != nil {
		return mapError(err)
	}
	return mapError(tx.Commit(ctx))
}

func (s *ReservationStore) Get(ctx context.Context, id string) (model.Reservation, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE id = $1
	`, id)
	return scanReservation(row)
}

func (s *ReservationStore) ListForActor(ctx context.Context, actor model.Actor, limit int) ([]model.Reservation, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE `
	args := []any{limit}
	switch actor.Role {
	case model.RoleAdmin:
		query += `true`
	case model.RoleProvider:
		query += `provider_id = $2`
		args = append(args, actor.ID)
	default:
		query += `customer_id = $2`
		args = append(args, actor.ID)
	}
	query += `
		ORDER BY start_time DESC
		LIMIT $1`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()
	return collectReservations(rows)
}

func (s *ReservationStore) ListActiveForProvider(ctx context.Context, providerID, excludeID string) ([]model.Reservation, error) {
	rows, err := s.pool.Query(ctx, activeForProviderQuery, providerID, excludeID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()
	return collectReservations(rows)
}

const activeForProviderQuery = `
	SELECT ` + reservationColumns + `
	FROM reservations
	WHERE provider_id = $1
		AND status <> 'cancelled'
		AND ($2 = '' OR id::text <> $2)
	ORDER BY start_time ASC`

type reservationTx struct {
	tx     pgx.Tx
	outbox *outbox.Repository
}

// LockProvider serializes all booking mutations for one provider within
// this transaction. The lock is released at commit or rollback.
func (t *reservationTx) LockProvider(ctx context.Context, providerID string) error {
	_, err := t.tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, providerID)
	return err
}

func (t *reservationTx) Get(ctx context.Context, id string) (model.Reservation, error) {
	row := t.tx.QueryRow(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE id = $1
		FOR UPDATE
	`, id)
	return scanReservation(row)
}

func (t *reservationTx) ListActiveForProvider(ctx context.Context, providerID, excludeID string) ([]model.Reservation, error) {
	rows, err := t.tx.Query(ctx, activeForProviderQuery, providerID, excludeID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()
	return collectReservations(rows)
}

func (t *reservationTx) Persist(ctx context.Context, res *model.Reservation) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO reservations
			(id, service_id, provider_id, customer_id, start_time, end_time, status,
			service_name, duration_minutes, buffer_minutes, price,
			cancellation_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NULLIF($12, ''), $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			status = EXCLUDED.status,
			cancellation_reason = EXCLUDED.cancellation_reason,
			updated_at = EXCLUDED.updated_at
	`, res.ID, res.ServiceID, res.ProviderID, res.CustomerID,
		res.Window.Start, res.Window.End, res.Status,
		res.Service.Name, res.Service.DurationMinutes, res.Service.BufferMinutes, res.Service.Price,
		res.Reason, res.CreatedAt, res.UpdatedAt)
	return err
}

func (t *reservationTx) Delete(ctx context.Context, id string) error {
	tag, err := t.tx.Exec(ctx, `DELETE FROM reservations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return booking.ErrNotFound
	}
	return nil
}

func (t *reservationTx) AppendEvent(ctx context.Context, res model.Reservation, event model.EventType) error {
	evt, err := outbox.NewReservationEvent(res, event)
	if err != nil {
		return err
	}
	return t.outbox.Insert(ctx, t.tx, evt)
}

func scanReservation(row pgx.Row) (model.Reservation, error) {
	var res model.Reservation
	err := row.Scan(
		&res.ID,
		&res.ServiceID,
		&res.ProviderID,
		&res.CustomerID,
		&res.Window.Start,
		&res.Window.End,
		&res.Status,
		&res.Service.Name,
		&res.Service.DurationMinutes,
		&res.Service.BufferMinutes,
		&res.Service.Price,
		&res.Reason,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	if err != nil {
		return model.Reservation{}, mapError(err)
	}
	res.Service.ServiceID = res.ServiceID
	res.Service.ProviderID = res.ProviderID
	return res, nil
}

func collectReservations(rows pgx.Rows) ([]model.Reservation, error) {
	var out []model.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	if rows.Err() != nil {
		return nil, mapError(rows.Err())
	}
	return out, nil
}

// mapError translates driver errors into the orchestrator's sentinels.
// Domain errors returned by transaction callbacks pass through unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return booking.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Serialization failure or deadlock victim; safe to retry.
		if pgErr.Code == "40001" || pgErr.Code == "40P01" {
			return fmt.Errorf("%w: %s", booking.ErrTxConflict, pgErr.Code)
		}
	}
	return err
}
