// Package authz is the single authorization policy for reservation
// operations. Every role/ownership decision lives here rather than being
// scattered across handlers.
package authz

import (
	"errors"
	"fmt"

	"github.com/bookline/bookline/services/booking-service/internal/model"
)

// ErrForbidden means the actor may never perform this action on this
// resource, as opposed to "not right now" (policy window) or "this time
// doesn't work" (conflict).
var ErrForbidden = errors.New("forbidden")

type Action string

const (
	ActionCreate     Action = "create"
	ActionReschedule Action = "reschedule"
	ActionCancel     Action = "cancel"
	ActionSetStatus  Action = "set-status"
	ActionDelete     Action = "delete"
	ActionView       Action = "view"
)

// Authorize decides whether actor may perform action on res. For
// ActionCreate, res carries the prospective reservation (provider and
// customer already assigned). The returned error wraps ErrForbidden with
// the specific denial reason.
func Authorize(actor model.Actor, action Action, res *model.Reservation) error {
	if actor.ID == "" || !actor.Role.Valid() {
		return fmt.Errorf("%w: unknown actor", ErrForbidden)
	}
	if actor.Role == model.RoleAdmin {
		return nil
	}

	switch action {
	case ActionCreate:
		if actor.Role != model.RoleCustomer {
			return fmt.Errorf("%w: only customers may book", ErrForbidden)
		}
		if res != nil && res.ProviderID == actor.ID {
			return fmt.Errorf("%w: providers cannot book their own services", ErrForbidden)
		}
		return nil

	case ActionReschedule:
		if actor.Role != model.RoleCustomer || res == nil || res.CustomerID != actor.ID {
			return fmt.Errorf("%w: only the booking customer may reschedule", ErrForbidden)
		}
		return nil

	case ActionCancel:
		if res == nil {
			return fmt.Errorf("%w: no reservation", ErrForbidden)
		}
		if actor.Role == model.RoleCustomer && res.CustomerID == actor.ID {
			return nil
		}
		if actor.Role == model.RoleProvider && res.ProviderID == actor.ID {
			return nil
		}
		return fmt.Errorf("%w: only the booking customer or the provider may cancel", ErrForbidden)

	case ActionSetStatus:
		if actor.Role != model.RoleProvider || res == nil || res.ProviderID != actor.ID {
			return fmt.Errorf("%w: only the owning provider may change status", ErrForbidden)
		}
		return nil

	case ActionDelete:
		return fmt.Errorf("%w: deletion is an administrative action", ErrForbidden)

	case ActionView:
		if res == nil {
			return fmt.Errorf("%w: no reservation", ErrForbidden)
		}
		if res.CustomerID == actor.ID || res.ProviderID == actor.ID {
			return nil
		}
		return fmt.Errorf("%w: not a party to this reservation", ErrForbidden)
	}

	return fmt.Errorf("%w: unknown action %q", ErrForbidden, action)
}
