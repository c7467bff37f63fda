// Package booking orchestrates reservation operations: it composes the
// conflict engine, the lifecycle rules and the authorization policy over
// the stores, owns transactional boundaries, and emits exactly one domain
// event per successful mutation.
package booking

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"

	"github.com/bookline/bookline/services/booking-service/internal/authz"
	"github.com/bookline/bookline/services/booking-service/internal/conflict"
	"github.com/bookline/bookline/services/booking-service/internal/lifecycle"
	"github.com/bookline/bookline/services/booking-service/internal/model"
)

var (
	// ErrNotFound covers missing reservations and missing catalog services.
	ErrNotFound = errors.New("not found")
	// ErrTxConflict marks a transient commit conflict (serialization
	// failure, deadlock victim). The orchestrator retries these with
	// bounded backoff before giving up.
	ErrTxConflict = errors.New("transaction conflict")
)

const dateLayout = "2006-01-02"

// Tx is the per-transaction view of reservation state. Implementations
// must make all writes atomic with the transaction.
type Tx interface {
	// LockProvider serializes read-check-write sequences per provider for
	// the rest of the transaction.
	LockProvider(ctx context.Context, providerID string) error
	// Get loads one reservation and locks its row for update.
	Get(ctx context.Context, id string) (model.Reservation, error)
	// ListActiveForProvider returns the provider's non-cancelled
	// reservations, excluding excludeID when non-empty.
	ListActiveForProvider(ctx context.Context, providerID, excludeID string) ([]model.Reservation, error)
	Persist(ctx context.Context, res *model.Reservation) error
	Delete(ctx context.Context, id string) error
	// AppendEvent stages a domain event atomically with the mutation.
	AppendEvent(ctx context.Context, res model.Reservation, event model.EventType) error
}

type Store interface {
	InTx(ctx context.Context, fn func(Tx) error) error
	Get(ctx context.Context, id string) (model.Reservation, error)
	ListForActor(ctx context.Context, actor model.Actor, limit int) ([]model.Reservation, error)
	ListActiveForProvider(ctx context.Context, providerID, excludeID string) ([]model.Reservation, error)
}

// AvailabilityStore is the read-only view of provider windows for a date.
// Lock-free reads are fine here; correctness comes from the provider lock
// plus overlap check at commit time.
type AvailabilityStore interface {
	ListWindows(ctx context.Context, providerID, date string) ([]model.AvailabilityWindow, error)
}

// ServiceCatalog takes the immutable service snapshot used for conflict
// checking.
type ServiceCatalog interface {
	Snapshot(ctx context.Context, serviceID string) (model.ServiceSnapshot, error)
}

type Config struct {
	Store        Store
	Availability AvailabilityStore
	Catalog      ServiceCatalog
	Logger       *slog.Logger
	Rules        lifecycle.Rules
	// Clock defaults to UTC wall time; injected in tests.
	Clock func() time.Time
	// MaxCommitAttempts bounds retries of transient commit conflicts.
	MaxCommitAttempts uint
}

type Service struct {
	store        Store
	availability AvailabilityStore
	catalog      ServiceCatalog
	logger       *slog.Logger
	rules        lifecycle.Rules
	clock        func() time.Time
	maxAttempts  uint
}

func New(cfg Config) *Service {
	clock := cfg.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	attempts := cfg.MaxCommitAttempts
	if attempts == 0 {
		attempts = 3
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:        cfg.Store,
		availability: cfg.Availability,
		catalog:      cfg.Catalog,
		logger:       logger,
		rules:        cfg.Rules,
		clock:        clock,
		maxAttempts:  attempts,
	}
}

// Create books a new pending reservation for the acting customer.
func (s *Service) Create(ctx context.Context, actor model.Actor, serviceID string, start time.Time) (model.Reservation, error) {
	if err := authz.Authorize(actor, authz.ActionCreate, nil); err != nil {
		return model.Reservation{}, err
	}

	snap, err := s.catalog.Snapshot(ctx, serviceID)
	if err != nil {
		return model.Reservation{}, err
	}

	res := model.Reservation{
		ID:         uuid.NewString(),
		ServiceID:  snap.ServiceID,
		ProviderID: snap.ProviderID,
		CustomerID: actor.ID,
		Status:     model.StatusPending,
		Service:    snap,
	}
	if err := authz.Authorize(actor, authz.ActionCreate, &res); err != nil {
		return model.Reservation{}, err
	}

	windows, err := s.availability.ListWindows(ctx, snap.ProviderID, start.UTC().Format(dateLayout))
	if err != nil {
		return model.Reservation{}, err
	}

	err = s.inTx(ctx, func(tx Tx) error {
		if err := tx.LockProvider(ctx, snap.ProviderID); err != nil {
			return err
		}
		existing, err := tx.ListActiveForProvider(ctx, snap.ProviderID, "")
		if err != nil {
			return err
		}

		now := s.clock()
		verdict, err := conflict.Evaluate(conflict.Input{
			Start:    start,
			Service:  snap,
			Windows:  windows,
			Existing: existing,
			Now:      now,
		})
		if err != nil {
			return err
		}

		res.Window = verdict.Window
		res.CreatedAt = now
		res.UpdatedAt = now
		if err := tx.Persist(ctx, &res); err != nil {
			return err
		}
		return tx.AppendEvent(ctx, res, model.EventBooked)
	})
	if err != nil {
		return model.Reservation{}, err
	}

	s.logger.Info("reservation booked",
		"reservation_id", res.ID,
		"provider_id", res.ProviderID,
		"start", res.Window.Start,
	)
	return res, nil
}

// Reschedule moves an existing reservation to a new start, resetting it to
// pending for re-approval. The service snapshot is unchanged.
func (s *Service) Reschedule(ctx context.Context, actor model.Actor, reservationID string, newStart time.Time) (model.Reservation, error) {
	// Unlocked pre-read to learn the provider before fetching windows;
	// the transactional re-read below is authoritative.
	prior, err := s.store.Get(ctx, reservationID)
	if err != nil {
		return model.Reservation{}, err
	}
	if err := authz.Authorize(actor, authz.ActionReschedule, &prior); err != nil {
		return model.Reservation{}, err
	}

	windows, err := s.availability.ListWindows(ctx, prior.ProviderID, newStart.UTC().Format(dateLayout))
	if err != nil {
		return model.Reservation{}, err
	}

	var res model.Reservation
	err = s.inTx(ctx, func(tx Tx) error {
		if err := tx.LockProvider(ctx, prior.ProviderID); err != nil {
			return err
		}
		cur, err := tx.Get(ctx, reservationID)
		if err != nil {
			return err
		}
		if err := authz.Authorize(actor, authz.ActionReschedule, &cur); err != nil {
			return err
		}

		now := s.clock()
		if err := s.rules.CheckReschedule(cur, actor, now); err != nil {
			return err
		}

		existing, err := tx.ListActiveForProvider(ctx, cur.ProviderID, cur.ID)
		if err != nil {
			return err
		}
		verdict, err := conflict.Evaluate(conflict.Input{
			Start:    newStart,
			Service:  cur.Service,
			Windows:  windows,
			Existing: existing,
			Now:      now,
		})
		if err != nil {
			return err
		}

		cur.Window = verdict.Window
		cur.Status = model.StatusPending
		cur.UpdatedAt = now
		if err := tx.Persist(ctx, &cur); err != nil {
			return err
		}
		if err := tx.AppendEvent(ctx, cur, model.EventUpdated); err != nil {
			return err
		}
		res = cur
		return nil
	})
	if err != nil {
		return model.Reservation{}, err
	}

	s.logger.Info("reservation rescheduled", "reservation_id", res.ID, "start", res.Window.Start)
	return res, nil
}

// Cancel moves a reservation to its terminal cancelled state, recording
// the reason.
func (s *Service) Cancel(ctx context.Context, actor model.Actor, reservationID, reason string) error {
	err := s.inTx(ctx, func(tx Tx) error {
		cur, err := tx.Get(ctx, reservationID)
		if err != nil {
			return err
		}
		if err := authz.Authorize(actor, authz.ActionCancel, &cur); err != nil {
			return err
		}

		now := s.clock()
		if err := s.rules.CheckCancel(cur, actor, now); err != nil {
			return err
		}

		cur.Status = model.StatusCancelled
		cur.Reason = reason
		cur.UpdatedAt = now
		if err := tx.Persist(ctx, &cur); err != nil {
			return err
		}
		return tx.AppendEvent(ctx, cur, model.EventCancelled)
	})
	if err != nil {
		return err
	}

	s.logger.Info("reservation cancelled", "reservation_id", reservationID)
	return nil
}

// ChangeStatus lets the owning provider (or an admin) move a reservation
// to confirmed, rejected or completed.
func (s *Service) ChangeStatus(ctx context.Context, actor model.Actor, reservationID string, newStatus model.Status) error {
	switch newStatus {
	case model.StatusConfirmed, model.StatusRejected, model.StatusCompleted:
	default:
		return lifecycle.ErrInvalidTransition
	}

	err := s.inTx(ctx, func(tx Tx) error {
		cur, err := tx.Get(ctx, reservationID)
		if err != nil {
			return err
		}
		if err := authz.Authorize(actor, authz.ActionSetStatus, &cur); err != nil {
			return err
		}
		if !lifecycle.CanTransition(cur.Status, newStatus) {
			return lifecycle.ErrInvalidTransition
		}

		cur.Status = newStatus
		cur.UpdatedAt = s.clock()
		if err := tx.Persist(ctx, &cur); err != nil {
			return err
		}
		return tx.AppendEvent(ctx, cur, model.EventUpdated)
	})
	if err != nil {
		return err
	}

	s.logger.Info("reservation status changed", "reservation_id", reservationID, "status", newStatus)
	return nil
}

// Delete physically removes a reservation. Admin-only; normal flows end in
// cancelled instead.
func (s *Service) Delete(ctx context.Context, actor model.Actor, reservationID string) error {
	err := s.inTx(ctx, func(tx Tx) error {
		cur, err := tx.Get(ctx, reservationID)
		if err != nil {
			return err
		}
		if err := authz.Authorize(actor, authz.ActionDelete, &cur); err != nil {
			return err
		}
		if err := tx.AppendEvent(ctx, cur, model.EventDeleted); err != nil {
			return err
		}
		return tx.Delete(ctx, cur.ID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("reservation deleted", "reservation_id", reservationID)
	return nil
}

// Get returns one reservation to a party of it.
func (s *Service) Get(ctx context.Context, actor model.Actor, reservationID string) (model.Reservation, error) {
	res, err := s.store.Get(ctx, reservationID)
	if err != nil {
		return model.Reservation{}, err
	}
	if err := authz.Authorize(actor, authz.ActionView, &res); err != nil {
		return model.Reservation{}, err
	}
	return res, nil
}

// List returns the actor's reservations: own bookings for customers, own
// calendar for providers, everything for admins.
func (s *Service) List(ctx context.Context, actor model.Actor, limit int) ([]model.Reservation, error) {
	if actor.ID == "" || !actor.Role.Valid() {
		return nil, authz.ErrForbidden
	}
	return s.store.ListForActor(ctx, actor, limit)
}

// FreeSlots enumerates open slots for a service on a date. Public; the
// result is advisory and revalidated on Create.
func (s *Service) FreeSlots(ctx context.Context, serviceID, date string, step time.Duration) ([]model.TimeWindow, error) {
	snap, err := s.catalog.Snapshot(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	windows, err := s.availability.ListWindows(ctx, snap.ProviderID, date)
	if err != nil {
		return nil, err
	}
	existing, err := s.store.ListActiveForProvider(ctx, snap.ProviderID, "")
	if err != nil {
		return nil, err
	}
	return conflict.FreeSlots(snap, windows, existing, step, s.clock()), nil
}

// inTx runs fn in a store transaction, retrying transient commit conflicts
// with exponential backoff. Domain rejections are permanent and surface
// unchanged; nothing is committed for them.
func (s *Service) inTx(ctx context.Context, fn func(Tx) error) error {
	op := func() (struct{}, error) {
		err := s.store.InTx(ctx, fn)
		if err != nil && !errors.Is(err, ErrTxConflict) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond

	_, err := backoff.Retry(ctx, op, backoff.WithBackOff(b), backoff.WithMaxTries(s.maxAttempts))
	return err
}
