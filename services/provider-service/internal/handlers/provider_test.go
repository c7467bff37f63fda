package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestResolveOwner(t *testing.T) {
	tests := []struct {
		name      string
		act       actor
		requested string
		wantOwner string
		wantOK    bool
	}{
		{"provider acts on self", actor{ID: "p-1", Role: "provider"}, "", "p-1", true},
		{"provider names self explicitly", actor{ID: "p-1", Role: "provider"}, "p-1", "p-1", true},
		{"provider cannot name another", actor{ID: "p-1", Role: "provider"}, "p-2", "", false},
		{"admin must name a provider", actor{ID: "a-1", Role: "admin"}, "", "", false},
		{"admin names any provider", actor{ID: "a-1", Role: "admin"}, "p-2", "p-2", true},
		{"customer never owns", actor{ID: "c-1", Role: "customer"}, "c-1", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			owner, ok := tc.act.resolveOwner(tc.requested)
			if ok != tc.wantOK || owner != tc.wantOwner {
				t.Errorf("resolveOwner(%q) = (%q, %v), want (%q, %v)", tc.requested, owner, ok, tc.wantOwner, tc.wantOK)
			}
		})
	}
}

func TestValidateService(t *testing.T) {
	valid := serviceRequest{Name: "Haircut", DurationMinutes: 30, BufferMinutes: 5, Price: "20.00"}
	if msg := validateService(valid); msg != "" {
		t.Errorf("valid request rejected: %s", msg)
	}

	for _, tc := range []struct {
		name string
		req  serviceRequest
	}{
		{"empty name", serviceRequest{DurationMinutes: 30, Price: "20.00"}},
		{"zero duration", serviceRequest{Name: "x", Price: "20.00"}},
		{"negative buffer", serviceRequest{Name: "x", DurationMinutes: 30, BufferMinutes: -1, Price: "20.00"}},
		{"empty price", serviceRequest{Name: "x", DurationMinutes: 30}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if validateService(tc.req) == "" {
				t.Error("invalid request accepted")
			}
		})
	}
}

// Gating runs before any repository access, so a nil repo is safe here.
func TestCreateService_GatingBeforeStorage(t *testing.T) {
	h := New(nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	tests := []struct {
		name string
		id   string
		role string
		body string
		want int
	}{
		{"no identity", "", "", `{}`, http.StatusUnauthorized},
		{"customer forbidden", "c-1", "customer", `{"name":"x","duration_minutes":30,"price":"1"}`, http.StatusForbidden},
		{"provider naming another forbidden", "p-1", "provider", `{"provider_id":"p-2","name":"x","duration_minutes":30,"price":"1"}`, http.StatusForbidden},
		{"admin without provider_id forbidden", "a-1", "admin", `{"name":"x","duration_minutes":30,"price":"1"}`, http.StatusForbidden},
		{"provider invalid payload", "p-1", "provider", `{"name":"","duration_minutes":30,"price":"1"}`, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/provider/services", strings.NewReader(tc.body))
			if tc.id != "" {
				req.Header.Set(HeaderActorID, tc.id)
				req.Header.Set(HeaderActorRole, tc.role)
			}
			rec := httptest.NewRecorder()
			h.CreateService(rec, req)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}
