package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bookline/bookline/services/analytics-service/internal/cache"
)

// The gating paths never reach storage, so a nil repository is fine; a
// panic would fail the test anyway.
func newTestHandler() *DashboardHandler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewDashboardHandler(nil, cache.New("", logger, 0), logger)
}

func TestDashboardGating(t *testing.T) {
	h := newTestHandler()
	mux := http.NewServeMux()
	h.Register(mux)

	tests := []struct {
		name   string
		method string
		path   string
		id     string
		role   string
		want   int
	}{
		{"no identity", http.MethodGet, "/api/v1/dashboard/admin", "", "", http.StatusUnauthorized},
		{"customer on admin", http.MethodGet, "/api/v1/dashboard/admin", "cus-1", "customer", http.StatusForbidden},
		{"provider on admin", http.MethodGet, "/api/v1/dashboard/admin", "prov-1", "provider", http.StatusForbidden},
		{"customer on provider", http.MethodGet, "/api/v1/dashboard/provider", "cus-1", "customer", http.StatusForbidden},
		{"admin without provider_id", http.MethodGet, "/api/v1/dashboard/provider", "adm-1", "admin", http.StatusBadRequest},
		{"provider on customer", http.MethodGet, "/api/v1/dashboard/customer", "prov-1", "provider", http.StatusForbidden},
		{"admin without customer_id", http.MethodGet, "/api/v1/dashboard/customer", "adm-1", "admin", http.StatusBadRequest},
		{"customer on export", http.MethodGet, "/api/v1/dashboard/export", "cus-1", "customer", http.StatusForbidden},
		{"post rejected", http.MethodPost, "/api/v1/dashboard/admin", "adm-1", "admin", http.StatusMethodNotAllowed},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			if tc.id != "" {
				req.Header.Set(HeaderActorID, tc.id)
				req.Header.Set(HeaderActorRole, tc.role)
			}
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Fatalf("%s %s: got %d, want %d", tc.method, tc.path, rec.Code, tc.want)
			}
		})
	}
}
