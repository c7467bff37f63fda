package authz

import (
	"errors"
	"testing"

	"github.com/bookline/bookline/services/booking-service/internal/model"
)

func TestAuthorize(t *testing.T) {
	res := &model.Reservation{
		ID:         "res-1",
		ProviderID: "prov-1",
		CustomerID: "cust-1",
	}

	customer := model.Actor{ID: "cust-1", Role: model.RoleCustomer}
	otherCustomer := model.Actor{ID: "cust-2", Role: model.RoleCustomer}
	provider := model.Actor{ID: "prov-1", Role: model.RoleProvider}
	otherProvider := model.Actor{ID: "prov-2", Role: model.RoleProvider}
	admin := model.Actor{ID: "adm-1", Role: model.RoleAdmin}

	cases := []struct {
		name   string
		actor  model.Actor
		action Action
		allow  bool
	}{
		{"customer creates", customer, ActionCreate, true},
		{"provider creates", provider, ActionCreate, false},
		{"admin creates", admin, ActionCreate, true},

		{"owning customer reschedules", customer, ActionReschedule, true},
		{"other customer reschedules", otherCustomer, ActionReschedule, false},
		{"provider reschedules", provider, ActionReschedule, false},
		{"admin reschedules", admin, ActionReschedule, true},

		{"owning customer cancels", customer, ActionCancel, true},
		{"owning provider cancels", provider, ActionCancel, true},
		{"other provider cancels", otherProvider, ActionCancel, false},
		{"admin cancels", admin, ActionCancel, true},

		{"owning provider sets status", provider, ActionSetStatus, true},
		{"other provider sets status", otherProvider, ActionSetStatus, false},
		{"customer sets status", customer, ActionSetStatus, false},
		{"admin sets status", admin, ActionSetStatus, true},

		{"customer deletes", customer, ActionDelete, false},
		{"provider deletes", provider, ActionDelete, false},
		{"admin deletes", admin, ActionDelete, true},

		{"owning customer views", customer, ActionView, true},
		{"other customer views", otherCustomer, ActionView, false},
		{"owning provider views", provider, ActionView, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := Authorize(c.actor, c.action, res)
			if c.allow && err != nil {
				t.Fatalf("expected allow, got %v", err)
			}
			if !c.allow {
				if !errors.Is(err, ErrForbidden) {
					t.Fatalf("expected ErrForbidden, got %v", err)
				}
			}
		})
	}
}

func TestAuthorize_SelfBooking(t *testing.T) {
	// A customer account that owns the service cannot book it.
	res := &model.Reservation{ProviderID: "user-1", CustomerID: "user-1"}
	actor := model.Actor{ID: "user-1", Role: model.RoleCustomer}
	if err := Authorize(actor, ActionCreate, res); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for self-booking, got %v", err)
	}
}

func TestAuthorize_UnknownActor(t *testing.T) {
	if err := Authorize(model.Actor{}, ActionView, &model.Reservation{}); !errors.Is(err, ErrForbidden) {
		t.Fatal("expected ErrForbidden for empty actor")
	}
	if err := Authorize(model.Actor{ID: "x", Role: "superuser"}, ActionView, &model.Reservation{}); !errors.Is(err, ErrForbidden) {
		t.Fatal("expected ErrForbidden for unknown role")
	}
}
