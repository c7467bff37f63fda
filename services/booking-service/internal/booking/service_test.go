package booking_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bookline/bookline/services/booking-service/internal/authz"
	"github.com/bookline/bookline/services/booking-service/internal/booking"
	"github.com/bookline/bookline/services/booking-service/internal/conflict"
	"github.com/bookline/bookline/services/booking-service/internal/lifecycle"
	"github.com/bookline/bookline/services/booking-service/internal/model"
)

var testNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

const testDate = "2026-09-02"

func at(hour, min int) time.Time {
	return time.Date(2026, 9, 2, hour, min, 0, 0, time.UTC)
}

type eventRecord struct {
	event model.EventType
	res   model.Reservation
}

type memStore struct {
	res     map[string]model.Reservation
	events  []eventRecord
	txFails int
}

func newMemStore() *memStore {
	return &memStore{res: map[string]model.Reservation{}}
}

func (m *memStore) InTx(_ context.Context, fn func(booking.Tx) error) error {
	if m.txFails > 0 {
		m.txFails--
		return booking.ErrTxConflict
	}
	snapshot := make(map[string]model.Reservation, len(m.res))
	for k, v := range m.res {
		snapshot[k] = v
	}
	staged := len(m.events)
	if err := fn(m); err != nil {
		m.res = snapshot
		m.events = m.events[:staged]
		return err
	}
	return nil
}

func (m *memStore) LockProvider(context.Context, string) error { return nil }

func (m *memStore) Get(_ context.Context, id string) (model.Reservation, error) {
	res, ok := m.res[id]
	if !ok {
		return model.Reservation{}, booking.ErrNotFound
	}
	return res, nil
}

func (m *memStore) ListActiveForProvider(_ context.Context, providerID, excludeID string) ([]model.Reservation, error) {
	var out []model.Reservation
	for _, r := range m.res {
		if r.ProviderID != providerID || r.ID == excludeID || r.Status == model.StatusCancelled {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *memStore) ListForActor(_ context.Context, actor model.Actor, _ int) ([]model.Reservation, error) {
	var out []model.Reservation
	for _, r := range m.res {
		switch actor.Role {
		case model.RoleAdmin:
			out = append(out, r)
		case model.RoleProvider:
			if r.ProviderID == actor.ID {
				out = append(out, r)
			}
		case model.RoleCustomer:
			if r.CustomerID == actor.ID {
				out = append(out, r)
			}
		}
	}
	return out, nil
}

func (m *memStore) Persist(_ context.Context, res *model.Reservation) error {
	m.res[res.ID] = *res
	return nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	delete(m.res, id)
	return nil
}

func (m *memStore) AppendEvent(_ context.Context, res model.Reservation, event model.EventType) error {
	m.events = append(m.events, eventRecord{event: event, res: res})
	return nil
}

type memAvailability struct {
	windows map[string][]model.AvailabilityWindow
}

func (m *memAvailability) ListWindows(_ context.Context, _, date string) ([]model.AvailabilityWindow, error) {
	return m.windows[date], nil
}

type memCatalog struct {
	services map[string]model.ServiceSnapshot
}

func (m *memCatalog) Snapshot(_ context.Context, serviceID string) (model.ServiceSnapshot, error) {
	snap, ok := m.services[serviceID]
	if !ok {
		return model.ServiceSnapshot{}, booking.ErrNotFound
	}
	return snap, nil
}

var (
	customer      = model.Actor{ID: "cust-1", Role: model.RoleCustomer}
	otherCustomer = model.Actor{ID: "cust-2", Role: model.RoleCustomer}
	provider      = model.Actor{ID: "prov-1", Role: model.RoleProvider}
	admin         = model.Actor{ID: "adm-1", Role: model.RoleAdmin}
)

func testSnapshot() model.ServiceSnapshot {
	return model.ServiceSnapshot{
		ServiceID:       "svc-1",
		ProviderID:      "prov-1",
		Name:            "Deep Tissue Massage",
		DurationMinutes: 30,
		BufferMinutes:   10,
		Price:           "45.00",
	}
}

type fixture struct {
	svc   *booking.Service
	store *memStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newMemStore()
	avail := &memAvailability{windows: map[string][]model.AvailabilityWindow{
		testDate: {
			{ID: "w-1", ProviderID: "prov-1", Date: testDate, Open: true,
				Window: model.TimeWindow{Start: at(9, 0), End: at(17, 0)}},
		},
	}}
	catalog := &memCatalog{services: map[string]model.ServiceSnapshot{"svc-1": testSnapshot()}}
	svc := booking.New(booking.Config{
		Store:        store,
		Availability: avail,
		Catalog:      catalog,
		Clock:        func() time.Time { return testNow },
	})
	return &fixture{svc: svc, store: store}
}

func (f *fixture) seed(t *testing.T, id string, customerID string, start time.Time, status model.Status) model.Reservation {
	t.Helper()
	snap := testSnapshot()
	res := model.Reservation{
		ID:         id,
		ServiceID:  snap.ServiceID,
		ProviderID: snap.ProviderID,
		CustomerID: customerID,
		Window:     model.TimeWindow{Start: start, End: start.Add(snap.Duration())},
		Status:     status,
		Service:    snap,
		CreatedAt:  testNow.Add(-time.Hour),
		UpdatedAt:  testNow.Add(-time.Hour),
	}
	f.store.res[id] = res
	return res
}

func TestCreate_BooksPendingReservation(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Create(context.Background(), customer, "svc-1", at(10, 0))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if res.Status != model.StatusPending {
		t.Errorf("status = %s, want pending", res.Status)
	}
	if !res.Window.End.Equal(at(10, 30)) {
		t.Errorf("end = %v, want 10:30", res.Window.End)
	}
	if got := len(f.store.events); got != 1 {
		t.Fatalf("events = %d, want 1", got)
	}
	if f.store.events[0].event != model.EventBooked {
		t.Errorf("event = %s, want %s", f.store.events[0].event, model.EventBooked)
	}
	if _, ok := f.store.res[res.ID]; !ok {
		t.Error("reservation not persisted")
	}
}

func TestCreate_RejectsCollisionWithoutSideEffects(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "r-1", "cust-2", at(10, 0), model.StatusConfirmed)

	_, err := f.svc.Create(context.Background(), customer, "svc-1", at(10, 15))
	if !errors.Is(err, conflict.ErrSlotCollision) {
		t.Fatalf("err = %v, want ErrSlotCollision", err)
	}
	if got := len(f.store.res); got != 1 {
		t.Errorf("reservations = %d, want only the seeded one", got)
	}
	if got := len(f.store.events); got != 0 {
		t.Errorf("events = %d, want 0 on rejection", got)
	}
}

func TestCreate_RejectsOutsideAvailability(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), customer, "svc-1", at(7, 0))
	if !errors.Is(err, conflict.ErrOutsideAvailability) {
		t.Fatalf("err = %v, want ErrOutsideAvailability", err)
	}
}

func TestCreate_RejectsNonCustomerRoles(t *testing.T) {
	f := newFixture(t)

	if _, err := f.svc.Create(context.Background(), provider, "svc-1", at(10, 0)); !errors.Is(err, authz.ErrForbidden) {
		t.Errorf("provider create err = %v, want ErrForbidden", err)
	}
}

func TestCreate_RejectsProviderBookingOwnService(t *testing.T) {
	f := newFixture(t)

	self := model.Actor{ID: "prov-1", Role: model.RoleCustomer}
	if _, err := f.svc.Create(context.Background(), self, "svc-1", at(10, 0)); !errors.Is(err, authz.ErrForbidden) {
		t.Errorf("self-booking err = %v, want ErrForbidden", err)
	}
}

func TestCreate_UnknownServiceIsNotFound(t *testing.T) {
	f := newFixture(t)

	if _, err := f.svc.Create(context.Background(), customer, "svc-nope", at(10, 0)); !errors.Is(err, booking.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestReschedule_ResetsToPendingAndEmitsUpdated(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "r-1", customer.ID, at(10, 0), model.StatusConfirmed)

	res, err := f.svc.Reschedule(context.Background(), customer, "r-1", at(14, 0))
	if err != nil {
		t.Fatalf("Reschedule: %v", err)
	}
	if res.Status != model.StatusPending {
		t.Errorf("status = %s, want pending after reschedule", res.Status)
	}
	if !res.Window.Start.Equal(at(14, 0)) || !res.Window.End.Equal(at(14, 30)) {
		t.Errorf("window = %v..%v, want 14:00..14:30", res.Window.Start, res.Window.End)
	}
	if len(f.store.events) != 1 || f.store.events[0].event != model.EventUpdated {
		t.Errorf("events = %+v, want one updated event", f.store.events)
	}
}

func TestReschedule_InsideNoticeWindowRejected(t *testing.T) {
	f := newFixture(t)
	// Starts 2h from now, inside the 24h reschedule notice.
	f.seed(t, "r-1", customer.ID, testNow.Add(2*time.Hour), model.StatusConfirmed)

	_, err := f.svc.Reschedule(context.Background(), customer, "r-1", at(14, 0))
	if !errors.Is(err, lifecycle.ErrPolicyWindow) {
		t.Fatalf("err = %v, want ErrPolicyWindow", err)
	}
	if f.store.res["r-1"].Status != model.StatusConfirmed {
		t.Error("reservation mutated despite policy rejection")
	}
	if len(f.store.events) != 0 {
		t.Error("event emitted despite policy rejection")
	}
}

func TestReschedule_AdminBypassesNotice(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "r-1", customer.ID, testNow.Add(2*time.Hour), model.StatusConfirmed)

	if _, err := f.svc.Reschedule(context.Background(), admin, "r-1", at(14, 0)); err != nil {
		t.Fatalf("admin reschedule: %v", err)
	}
}

func TestReschedule_ForeignCustomerForbiddenBeforePolicy(t *testing.T) {
	f := newFixture(t)
	// Inside the notice window too; authorization must win.
	f.seed(t, "r-1", customer.ID, testNow.Add(2*time.Hour), model.StatusConfirmed)

	_, err := f.svc.Reschedule(context.Background(), otherCustomer, "r-1", at(14, 0))
	if !errors.Is(err, authz.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden before policy check", err)
	}
}

func TestCancel_RecordsReasonAndEmitsEvent(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "r-1", customer.ID, at(10, 0), model.StatusConfirmed)

	if err := f.svc.Cancel(context.Background(), customer, "r-1", "flight moved"); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	got := f.store.res["r-1"]
	if got.Status != model.StatusCancelled {
		t.Errorf("status = %s, want cancelled", got.Status)
	}
	if got.Reason != "flight moved" {
		t.Errorf("reason = %q", got.Reason)
	}
	if len(f.store.events) != 1 || f.store.events[0].event != model.EventCancelled {
		t.Errorf("events = %+v, want one cancelled event", f.store.events)
	}
}

func TestCancel_TerminalStateRejected(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "r-1", customer.ID, at(10, 0), model.StatusCompleted)

	err := f.svc.Cancel(context.Background(), customer, "r-1", "")
	if !errors.Is(err, lifecycle.ErrInvalidTransition) {
		t.Fatalf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestCancel_ProviderMayCancelOwnCalendar(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "r-1", customer.ID, at(10, 0), model.StatusConfirmed)

	if err := f.svc.Cancel(context.Background(), provider, "r-1", "equipment failure"); err != nil {
		t.Fatalf("provider cancel: %v", err)
	}
}

func TestChangeStatus_ProviderConfirms(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "r-1", customer.ID, at(10, 0), model.StatusPending)

	if err := f.svc.ChangeStatus(context.Background(), provider, "r-1", model.StatusConfirmed); err != nil {
		t.Fatalf("ChangeStatus: %v", err)
	}
	if got := f.store.res["r-1"].Status; got != model.StatusConfirmed {
		t.Errorf("status = %s, want confirmed", got)
	}
	if len(f.store.events) != 1 || f.store.events[0].event != model.EventUpdated {
		t.Errorf("events = %+v, want one updated event", f.store.events)
	}
}

func TestChangeStatus_RejectsDisallowedTargets(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "r-1", customer.ID, at(10, 0), model.StatusPending)

	for _, target := range []model.Status{model.StatusPending, model.StatusCancelled, model.Status("bogus")} {
		if err := f.svc.ChangeStatus(context.Background(), provider, "r-1", target); !errors.Is(err, lifecycle.ErrInvalidTransition) {
			t.Errorf("target %q: err = %v, want ErrInvalidTransition", target, err)
		}
	}
}

func TestChangeStatus_CustomerForbidden(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "r-1", customer.ID, at(10, 0), model.StatusPending)

	if err := f.svc.ChangeStatus(context.Background(), customer, "r-1", model.StatusConfirmed); !errors.Is(err, authz.ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
}

func TestChangeStatus_TerminalIsFrozen(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "r-1", customer.ID, at(10, 0), model.StatusRejected)

	if err := f.svc.ChangeStatus(context.Background(), provider, "r-1", model.StatusConfirmed); !errors.Is(err, lifecycle.ErrInvalidTransition) {
		t.Errorf("err = %v, want ErrInvalidTransition", err)
	}
}

func TestDelete_AdminOnly(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "r-1", customer.ID, at(10, 0), model.StatusCancelled)

	if err := f.svc.Delete(context.Background(), provider, "r-1"); !errors.Is(err, authz.ErrForbidden) {
		t.Fatalf("provider delete err = %v, want ErrForbidden", err)
	}
	if err := f.svc.Delete(context.Background(), admin, "r-1"); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if _, ok := f.store.res["r-1"]; ok {
		t.Error("reservation still present after delete")
	}
	if len(f.store.events) != 1 || f.store.events[0].event != model.EventDeleted {
		t.Errorf("events = %+v, want one deleted event", f.store.events)
	}
}

func TestGet_RequiresParty(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "r-1", customer.ID, at(10, 0), model.StatusPending)

	if _, err := f.svc.Get(context.Background(), otherCustomer, "r-1"); !errors.Is(err, authz.ErrForbidden) {
		t.Errorf("stranger get err = %v, want ErrForbidden", err)
	}
	if _, err := f.svc.Get(context.Background(), customer, "r-1"); err != nil {
		t.Errorf("owner get: %v", err)
	}
	if _, err := f.svc.Get(context.Background(), provider, "r-1"); err != nil {
		t.Errorf("provider get: %v", err)
	}
}

func TestList_ScopedByRole(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "r-1", customer.ID, at(10, 0), model.StatusPending)
	f.seed(t, "r-2", otherCustomer.ID, at(11, 0), model.StatusPending)

	own, err := f.svc.List(context.Background(), customer, 50)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(own) != 1 || own[0].ID != "r-1" {
		t.Errorf("customer list = %+v, want only r-1", own)
	}

	all, err := f.svc.List(context.Background(), admin, 50)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("admin list = %d entries, want 2", len(all))
	}
}

func TestCreate_RetriesTransientTxConflicts(t *testing.T) {
	f := newFixture(t)
	f.store.txFails = 2

	if _, err := f.svc.Create(context.Background(), customer, "svc-1", at(10, 0)); err != nil {
		t.Fatalf("Create after retries: %v", err)
	}
	if len(f.store.events) != 1 {
		t.Errorf("events = %d, want exactly 1 despite retries", len(f.store.events))
	}
}

func TestCreate_ExhaustedRetriesSurfaceConflict(t *testing.T) {
	f := newFixture(t)
	f.store.txFails = 10

	_, err := f.svc.Create(context.Background(), customer, "svc-1", at(10, 0))
	if !errors.Is(err, booking.ErrTxConflict) {
		t.Fatalf("err = %v, want ErrTxConflict", err)
	}
}

func TestFreeSlots_ExcludesBookedRanges(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "r-1", otherCustomer.ID, at(9, 0), model.StatusConfirmed)

	slots, err := f.svc.FreeSlots(context.Background(), "svc-1", testDate, 30*time.Minute)
	if err != nil {
		t.Fatalf("FreeSlots: %v", err)
	}
	for _, s := range slots {
		// 09:00..09:30 booking plus 10m buffer blocks starts before 09:40.
		if s.Start.Before(at(9, 40)) {
			t.Errorf("slot %v overlaps booked range", s.Start)
		}
	}
	if len(slots) == 0 {
		t.Fatal("no slots returned")
	}
}
