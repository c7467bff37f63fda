package lifecycle

import (
	"errors"
	"testing"
	"time"

	"github.com/bookline/bookline/services/booking-service/internal/model"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to model.Status
		want     bool
	}{
		{model.StatusPending, model.StatusConfirmed, true},
		{model.StatusPending, model.StatusRejected, true},
		{model.StatusPending, model.StatusCompleted, true},
		{model.StatusPending, model.StatusCancelled, true},
		{model.StatusConfirmed, model.StatusCompleted, true},
		{model.StatusConfirmed, model.StatusCancelled, true},
		{model.StatusConfirmed, model.StatusPending, true}, // reschedule reset
		{model.StatusCancelled, model.StatusConfirmed, false},
		{model.StatusRejected, model.StatusPending, false},
		{model.StatusCompleted, model.StatusCancelled, false},
		{model.StatusPending, model.Status("archived"), false},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestCheckReschedule(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	customer := model.Actor{ID: "cust-1", Role: model.RoleCustomer}
	admin := model.Actor{ID: "adm-1", Role: model.RoleAdmin}
	var rules Rules

	res := model.Reservation{
		Status: model.StatusConfirmed,
		Window: model.TimeWindow{Start: now.Add(1 * time.Hour), End: now.Add(90 * time.Minute)},
	}

	if err := rules.CheckReschedule(res, customer, now); !errors.Is(err, ErrPolicyWindow) {
		t.Fatalf("expected ErrPolicyWindow 1h before start, got %v", err)
	}
	if err := rules.CheckReschedule(res, admin, now); err != nil {
		t.Fatalf("admin must bypass the notice window, got %v", err)
	}

	res.Window.Start = now.Add(25 * time.Hour)
	if err := rules.CheckReschedule(res, customer, now); err != nil {
		t.Fatalf("expected reschedule >24h ahead to pass, got %v", err)
	}

	res.Status = model.StatusCancelled
	if err := rules.CheckReschedule(res, admin, now); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("terminal reservation must not be reschedulable, got %v", err)
	}
}

func TestCheckCancel(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	customer := model.Actor{ID: "cust-1", Role: model.RoleCustomer}
	admin := model.Actor{ID: "adm-1", Role: model.RoleAdmin}
	var rules Rules

	res := model.Reservation{
		Status: model.StatusPending,
		Window: model.TimeWindow{Start: now.Add(30 * time.Minute), End: now.Add(time.Hour)},
	}

	if err := rules.CheckCancel(res, customer, now); !errors.Is(err, ErrPolicyWindow) {
		t.Fatalf("expected ErrPolicyWindow 30m before start, got %v", err)
	}
	if err := rules.CheckCancel(res, admin, now); err != nil {
		t.Fatalf("admin must bypass the notice window, got %v", err)
	}

	res.Window.Start = now.Add(3 * time.Hour)
	if err := rules.CheckCancel(res, customer, now); err != nil {
		t.Fatalf("expected cancel >2h ahead to pass, got %v", err)
	}

	res.Status = model.StatusCompleted
	if err := rules.CheckCancel(res, customer, now); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("completed reservation must not be cancellable, got %v", err)
	}
}

func TestCustomNoticeWindows(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	customer := model.Actor{ID: "cust-1", Role: model.RoleCustomer}
	rules := Rules{RescheduleNotice: time.Hour, CancelNotice: 15 * time.Minute}

	res := model.Reservation{
		Status: model.StatusPending,
		Window: model.TimeWindow{Start: now.Add(2 * time.Hour), End: now.Add(150 * time.Minute)},
	}

	if err := rules.CheckReschedule(res, customer, now); err != nil {
		t.Fatalf("expected pass with 1h custom notice, got %v", err)
	}
	if err := rules.CheckCancel(res, customer, now); err != nil {
		t.Fatalf("expected pass with 15m custom notice, got %v", err)
	}
}
