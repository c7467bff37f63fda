// Package lifecycle owns reservation status transitions and the
// time-windowed reschedule/cancel policies.
package lifecycle

import (
	"errors"
	"time"

	"github.com/bookline/bookline/services/booking-service/internal/model"
)

var (
	// ErrInvalidTransition means the requested status is not reachable
	// from the current one. Terminal states accept nothing.
	ErrInvalidTransition = errors.New("status transition not allowed")
	// ErrPolicyWindow means the action was attempted inside its protected
	// notice window. Distinct from authorization failure: the actor may
	// act, just not right now.
	ErrPolicyWindow = errors.New("action attempted inside its notice window")
)

// Rules holds the notice windows. Zero values fall back to the defaults:
// reschedule 24h ahead, cancel 2h ahead. Admins bypass both.
type Rules struct {
	RescheduleNotice time.Duration
	CancelNotice     time.Duration
}

const (
	DefaultRescheduleNotice = 24 * time.Hour
	DefaultCancelNotice     = 2 * time.Hour
)

func (r Rules) rescheduleNotice() time.Duration {
	if r.RescheduleNotice > 0 {
		return r.RescheduleNotice
	}
	return DefaultRescheduleNotice
}

func (r Rules) cancelNotice() time.Duration {
	if r.CancelNotice > 0 {
		return r.CancelNotice
	}
	return DefaultCancelNotice
}

// CanTransition reports whether to is reachable from from. Pending and
// confirmed reservations may move anywhere (back to pending only via
// reschedule); terminal states are frozen.
func CanTransition(from, to model.Status) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if from.Terminal() {
		return false
	}
	return true
}

// CheckReschedule enforces the reschedule notice window against the
// reservation's current start. Admins are exempt.
func (r Rules) CheckReschedule(res model.Reservation, actor model.Actor, now time.Time) error {
	if res.Status.Terminal() {
		return ErrInvalidTransition
	}
	if actor.Role == model.RoleAdmin {
		return nil
	}
	if res.Window.Start.Sub(now) < r.rescheduleNotice() {
		return ErrPolicyWindow
	}
	return nil
}

// CheckCancel enforces the cancellation notice window. Admins are exempt.
func (r Rules) CheckCancel(res model.Reservation, actor model.Actor, now time.Time) error {
	if res.Status.Terminal() {
		return ErrInvalidTransition
	}
	if actor.Role == model.RoleAdmin {
		return nil
	}
	if res.Window.Start.Sub(now) < r.cancelNotice() {
		return ErrPolicyWindow
	}
	return nil
}
