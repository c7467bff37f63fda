package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/bookline/bookline/libs/db"
)

var ErrNoContact = errors.New("no contact on file")

type Notification struct {
	ReservationID string
	Recipient     string // user id
	Channel       string // email or sms
	Kind          string // booked, updated, cancelled, deleted, reminder
	Address       string
	Subject       string
	Body          string
	Status        string // sent or failed
}

type Contact struct {
	UserID string
	Email  string
	Phone  string
}

type Repository struct {
	pool *db.Pool
}

func NewRepository(pool *db.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Insert(ctx context.Context, n Notification) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notifications (reservation_id, recipient, channel, kind, address, subject, body, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, n.ReservationID, n.Recipient, n.Channel, n.Kind, n.Address, n.Subject, n.Body, n.Status)
	return err
}

func (r *Repository) GetContact(ctx context.Context, userID string) (Contact, error) {
	var c Contact
	err := r.pool.QueryRow(ctx, `
		SELECT user_id::text, COALESCE(email, ''), COALESCE(phone, '')
		FROM user_contacts
		WHERE user_id = $1
	`, userID).Scan(&c.UserID, &c.Email, &c.Phone)
	if errors.Is(err, pgx.ErrNoRows) {
		return Contact{}, ErrNoContact
	}
	if err != nil {
		return Contact{}, err
	}
	return c, nil
}

// ReminderCandidate is an upcoming pending or confirmed reservation inside
// the reminder window that has not been reminded yet.
type ReminderCandidate struct {
	ReservationID string
	CustomerID    string
	ServiceName   string
	StartTime     time.Time
}

// FetchReminderDue locks candidate rows so concurrent workers split the
// batch. The anti-join on notifications is the dedupe; the worker inserts
// the reminder row in the same transaction.
func (r *Repository) FetchReminderDue(ctx context.Context, tx pgx.Tx, window time.Duration, limit int) ([]ReminderCandidate, error) {
	rows, err := tx.Query(ctx, `
		SELECT r.id::text, r.customer_id::text, r.service_name, r.start_time
		FROM reservations r
		WHERE r.status IN ('pending', 'confirmed')
			AND r.start_time > now()
			AND r.start_time <= now() + $1
			AND NOT EXISTS (
				SELECT 1 FROM notifications n
				WHERE n.reservation_id = r.id AND n.kind = 'reminder'
			)
		ORDER BY r.start_time
		LIMIT $2
		FOR UPDATE OF r SKIP LOCKED
	`, window, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var due []ReminderCandidate
	for rows.Next() {
		var c ReminderCandidate
		if err := rows.Scan(&c.ReservationID, &c.CustomerID, &c.ServiceName, &c.StartTime); err != nil {
			return nil, err
		}
		due = append(due, c)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return due, nil
}

// InsertTx records a notification inside the worker's transaction.
func (r *Repository) InsertTx(ctx context.Context, tx pgx.Tx, n Notification) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO notifications (reservation_id, recipient, channel, kind, address, subject, body, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, n.ReservationID, n.Recipient, n.Channel, n.Kind, n.Address, n.Subject, n.Body, n.Status)
	return err
}
