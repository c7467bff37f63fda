package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bookline/bookline/services/booking-service/internal/booking"
	"github.com/bookline/bookline/services/booking-service/internal/model"
)

var handlerNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func hat(hour, min int) time.Time {
	return time.Date(2026, 9, 2, hour, min, 0, 0, time.UTC)
}

type stubStore struct {
	res    map[string]model.Reservation
	events int
}

func (s *stubStore) InTx(_ context.Context, fn func(booking.Tx) error) error { return fn(s) }
func (s *stubStore) LockProvider(context.Context, string) error              { return nil }

func (s *stubStore) Get(_ context.Context, id string) (model.Reservation, error) {
	res, ok := s.res[id]
	if !ok {
		return model.Reservation{}, booking.ErrNotFound
	}
	return res, nil
}

func (s *stubStore) ListActiveForProvider(_ context.Context, providerID, excludeID string) ([]model.Reservation, error) {
	var out []model.Reservation
	for _, r := range s.res {
		if r.ProviderID == providerID && r.ID != excludeID && r.Status != model.StatusCancelled {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubStore) ListForActor(_ context.Context, actor model.Actor, _ int) ([]model.Reservation, error) {
	var out []model.Reservation
	for _, r := range s.res {
		if actor.Role == model.RoleAdmin || r.CustomerID == actor.ID || r.ProviderID == actor.ID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *stubStore) Persist(_ context.Context, res *model.Reservation) error {
	s.res[res.ID] = *res
	return nil
}

func (s *stubStore) Delete(_ context.Context, id string) error {
	delete(s.res, id)
	return nil
}

func (s *stubStore) AppendEvent(context.Context, model.Reservation, model.EventType) error {
	s.events++
	return nil
}

type stubAvailability struct{}

func (stubAvailability) ListWindows(_ context.Context, _, date string) ([]model.AvailabilityWindow, error) {
	if date != "2026-09-02" {
		return nil, nil
	}
	return []model.AvailabilityWindow{
		{ID: "w-1", ProviderID: "prov-1", Date: date, Open: true,
			Window: model.TimeWindow{Start: hat(9, 0), End: hat(17, 0)}},
	}, nil
}

type stubCatalog struct{}

func (stubCatalog) Snapshot(_ context.Context, serviceID string) (model.ServiceSnapshot, error) {
	if serviceID != "svc-1" {
		return model.ServiceSnapshot{}, booking.ErrNotFound
	}
	return model.ServiceSnapshot{
		ServiceID:       "svc-1",
		ProviderID:      "prov-1",
		Name:            "Consultation",
		DurationMinutes: 30,
		BufferMinutes:   10,
	}, nil
}

func newTestHandler(store *stubStore) *ReservationHandler {
	svc := booking.New(booking.Config{
		Store:        store,
		Availability: stubAvailability{},
		Catalog:      stubCatalog{},
		Clock:        func() time.Time { return handlerNow },
	})
	return NewReservationHandler(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func doRequest(h *ReservationHandler, method, path, body string, asActor bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if asActor {
		req.Header.Set(HeaderActorID, "cust-1")
		req.Header.Set(HeaderActorRole, "customer")
	}
	rec := httptest.NewRecorder()

	mux := http.NewServeMux()
	h.Register(mux)
	mux.ServeHTTP(rec, req)
	return rec
}

func TestBook_Success(t *testing.T) {
	store := &stubStore{res: map[string]model.Reservation{}}
	h := newTestHandler(store)

	rec := doRequest(h, http.MethodPost, "/api/v1/reservations/book",
		`{"service_id":"svc-1","start_time":"2026-09-02T10:00:00Z"}`, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"status":"pending"`) {
		t.Errorf("body = %s, want pending reservation", rec.Body.String())
	}
	if store.events != 1 {
		t.Errorf("events = %d, want 1", store.events)
	}
}

func TestBook_RequiresActorHeaders(t *testing.T) {
	h := newTestHandler(&stubStore{res: map[string]model.Reservation{}})

	rec := doRequest(h, http.MethodPost, "/api/v1/reservations/book",
		`{"service_id":"svc-1","start_time":"2026-09-02T10:00:00Z"}`, false)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestBook_DomainErrorMapping(t *testing.T) {
	seeded := model.Reservation{
		ID: "r-1", ServiceID: "svc-1", ProviderID: "prov-1", CustomerID: "cust-2",
		Window: model.TimeWindow{Start: hat(10, 0), End: hat(10, 30)},
		Status: model.StatusConfirmed,
		Service: model.ServiceSnapshot{ServiceID: "svc-1", ProviderID: "prov-1",
			DurationMinutes: 30, BufferMinutes: 10},
	}

	tests := []struct {
		name string
		body string
		want int
	}{
		{"collision", `{"service_id":"svc-1","start_time":"2026-09-02T10:15:00Z"}`, http.StatusConflict},
		{"outside availability", `{"service_id":"svc-1","start_time":"2026-09-02T07:00:00Z"}`, http.StatusUnprocessableEntity},
		{"past start", `{"service_id":"svc-1","start_time":"2026-08-30T10:00:00Z"}`, http.StatusUnprocessableEntity},
		{"unknown service", `{"service_id":"svc-nope","start_time":"2026-09-02T10:00:00Z"}`, http.StatusNotFound},
		{"bad time", `{"service_id":"svc-1","start_time":"tomorrow"}`, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestHandler(&stubStore{res: map[string]model.Reservation{"r-1": seeded}})
			rec := doRequest(h, http.MethodPost, "/api/v1/reservations/book", tc.body, true)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tc.want, rec.Body.String())
			}
		})
	}
}

func TestCancel_PolicyWindowMapsTo422(t *testing.T) {
	store := &stubStore{res: map[string]model.Reservation{
		"r-1": {
			ID: "r-1", ServiceID: "svc-1", ProviderID: "prov-1", CustomerID: "cust-1",
			// One hour out, inside the 2h cancellation notice.
			Window: model.TimeWindow{Start: handlerNow.Add(time.Hour), End: handlerNow.Add(90 * time.Minute)},
			Status: model.StatusConfirmed,
		},
	}}
	h := newTestHandler(store)

	rec := doRequest(h, http.MethodPost, "/api/v1/reservations/cancel",
		`{"reservation_id":"r-1","reason":"sick"}`, true)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422 (body %s)", rec.Code, rec.Body.String())
	}
}

func TestDelete_ForbiddenForCustomer(t *testing.T) {
	store := &stubStore{res: map[string]model.Reservation{
		"r-1": {ID: "r-1", ProviderID: "prov-1", CustomerID: "cust-1", Status: model.StatusCancelled},
	}}
	h := newTestHandler(store)

	rec := doRequest(h, http.MethodPost, "/api/v1/reservations/delete",
		`{"reservation_id":"r-1"}`, true)
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestSlots_PublicEndpoint(t *testing.T) {
	h := newTestHandler(&stubStore{res: map[string]model.Reservation{}})

	rec := doRequest(h, http.MethodGet, "/api/v1/public/slots?service_id=svc-1&date=2026-09-02", "", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "2026-09-02T09:00:00Z") {
		t.Errorf("body = %s, want first slot at 09:00", rec.Body.String())
	}
}

func TestList_RejectsWrongMethod(t *testing.T) {
	h := newTestHandler(&stubStore{res: map[string]model.Reservation{}})

	rec := doRequest(h, http.MethodPost, "/api/v1/reservations", "", true)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}
