// Package reminders sends the day-before reminder for confirmed
// reservations. Dedupe comes from the reminder notification row inserted
// in the same transaction as the fetch.
package reminders

import (
	"context"
	"log/slog"
	"time"

	"github.com/bookline/bookline/libs/db"
	"github.com/bookline/bookline/services/notification-service/internal/email"
	"github.com/bookline/bookline/services/notification-service/internal/notify"
	"github.com/bookline/bookline/services/notification-service/internal/outbox"
	"github.com/bookline/bookline/services/notification-service/internal/storage"
)

type Worker struct {
	pool      *db.Pool
	repo      *storage.Repository
	outbox    *outbox.Repository
	sender    email.Sender
	logger    *slog.Logger
	interval  time.Duration
	window    time.Duration
	batchSize int
}

type Config struct {
	Interval  time.Duration
	Window    time.Duration
	BatchSize int
}

func NewWorker(pool *db.Pool, repo *storage.Repository, outboxRepo *outbox.Repository, sender email.Sender, logger *slog.Logger, cfg Config) *Worker {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.Window <= 0 {
		cfg.Window = 24 * time.Hour
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	return &Worker{
		pool:      pool,
		repo:      repo,
		outbox:    outboxRepo,
		sender:    sender,
		logger:    logger,
		interval:  cfg.Interval,
		window:    cfg.Window,
		batchSize: cfg.BatchSize,
	}
}

func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.processBatch(ctx); err != nil {
				w.logger.Error("reminder batch failed", "err", err)
			}
		}
	}
}

func (w *Worker) processBatch(ctx context.Context) error {
	tx, err := w.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	due, err := w.repo.FetchReminderDue(ctx, tx, w.window, w.batchSize)
	if err != nil {
		return err
	}
	if len(due) == 0 {
		return tx.Commit(ctx)
	}

	for _, c := range due {
		contact, err := w.repo.GetContact(ctx, c.CustomerID)
		if err != nil || contact.Email == "" {
			// No address: record the skip so the candidate is not
			// refetched every tick.
			w.logger.Warn("reminder skipped, no contact", "reservation_id", c.ReservationID)
			if err := w.repo.InsertTx(ctx, tx, reminderRow(c, "", "", "", "failed")); err != nil {
				return err
			}
			continue
		}

		msg := notify.Reminder(c.ServiceName, c.StartTime)
		status := "sent"
		if err := w.sender.Send(contact.Email, msg.Subject, msg.Body); err != nil {
			w.logger.Error("reminder send failed", "err", err, "reservation_id", c.ReservationID)
			status = "failed"
		}

		if err := w.repo.InsertTx(ctx, tx, reminderRow(c, contact.Email, msg.Subject, msg.Body, status)); err != nil {
			return err
		}

		var evt outbox.Event
		if status == "sent" {
			evt, err = outbox.SentEvent(c.ReservationID, c.CustomerID, "email", "reminder")
		} else {
			evt, err = outbox.FailedEvent(c.ReservationID, c.CustomerID, "email", "reminder", "smtp send failed")
		}
		if err != nil {
			return err
		}
		if err := w.outbox.Insert(ctx, tx, evt); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func reminderRow(c storage.ReminderCandidate, address, subject, body, status string) storage.Notification {
	return storage.Notification{
		ReservationID: c.ReservationID,
		Recipient:     c.CustomerID,
		Channel:       "email",
		Kind:          "reminder",
		Address:       address,
		Subject:       subject,
		Body:          body,
		Status:        status,
	}
}
