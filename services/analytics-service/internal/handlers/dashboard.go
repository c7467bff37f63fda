package handlers

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bookline/bookline/services/analytics-service/internal/cache"
	"github.com/bookline/bookline/services/analytics-service/internal/metrics"
	"github.com/bookline/bookline/services/analytics-service/internal/storage"
)

const (
	HeaderActorID   = "X-Actor-Id"
	HeaderActorRole = "X-Actor-Role"
)

type DashboardHandler struct {
	repo   *storage.Repository
	cache  *cache.Cache
	logger *slog.Logger
	clock  func() time.Time
}

func NewDashboardHandler(repo *storage.Repository, c *cache.Cache, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		repo:   repo,
		cache:  c,
		logger: logger,
		clock:  func() time.Time { return time.Now().UTC() },
	}
}

func (h *DashboardHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/dashboard/admin", h.Admin)
	mux.HandleFunc("/api/v1/dashboard/provider", h.Provider)
	mux.HandleFunc("/api/v1/dashboard/customer", h.Customer)
	mux.HandleFunc("/api/v1/dashboard/export", h.ExportCSV)
}

// Admin returns platform-wide totals, the 90-day top services and the
// 30-day booking trend.
func (h *DashboardHandler) Admin(w http.ResponseWriter, r *http.Request) {
	id, role, ok := h.actor(w, r)
	if !ok {
		return
	}
	if role != "admin" {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	_ = id

	raw, err := h.cache.Fetch(r.Context(), "admin", func(ctx context.Context) (any, error) {
		totals, err := h.repo.AdminTotals(ctx)
		if err != nil {
			return nil, err
		}
		top, err := h.repo.TopServices(ctx, 90, 10)
		if err != nil {
			return nil, err
		}
		counts, err := h.repo.BookingTrend(ctx, "", 30)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"totals":       totals,
			"top_services": top,
			"trend_30d":    metrics.FillDays(h.clock(), 30, counts),
		}, nil
	})
	if err != nil {
		h.serverError(w, "failed to build admin dashboard", err)
		return
	}
	h.writeRaw(w, raw)
}

// Provider returns the acting provider's totals, 7-day utilization and
// 7-day trend. Admins may inspect any provider via ?provider_id=.
func (h *DashboardHandler) Provider(w http.ResponseWriter, r *http.Request) {
	id, role, ok := h.actor(w, r)
	if !ok {
		return
	}

	providerID := id
	switch role {
	case "provider":
	case "admin":
		providerID = strings.TrimSpace(r.URL.Query().Get("provider_id"))
		if providerID == "" {
			http.Error(w, "provider_id required", http.StatusBadRequest)
			return
		}
	default:
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	raw, err := h.cache.Fetch(r.Context(), "provider:"+providerID, func(ctx context.Context) (any, error) {
		totals, err := h.repo.ProviderTotals(ctx, providerID)
		if err != nil {
			return nil, err
		}
		booked, err := h.repo.ProviderBookedMinutes(ctx, providerID, 7)
		if err != nil {
			return nil, err
		}
		open, err := h.repo.ProviderOpenMinutes(ctx, providerID, 7)
		if err != nil {
			return nil, err
		}
		counts, err := h.repo.BookingTrend(ctx, providerID, 7)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"totals":              totals,
			"utilization_7d_pct":  metrics.Utilization(booked, open),
			"booked_minutes_7d":   booked,
			"open_minutes_7d":     open,
			"trend_7d":            metrics.FillDays(h.clock(), 7, counts),
		}, nil
	})
	if err != nil {
		h.serverError(w, "failed to build provider dashboard", err)
		return
	}
	h.writeRaw(w, raw)
}

// Customer returns the acting customer's upcoming, past and cancelled
// reservations. Not cached: per-user and already a cheap indexed read.
func (h *DashboardHandler) Customer(w http.ResponseWriter, r *http.Request) {
	id, role, ok := h.actor(w, r)
	if !ok {
		return
	}
	if role != "customer" && role != "admin" {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	customerID := id
	if role == "admin" {
		customerID = strings.TrimSpace(r.URL.Query().Get("customer_id"))
		if customerID == "" {
			http.Error(w, "customer_id required", http.StatusBadRequest)
			return
		}
	}

	ctx := r.Context()
	upcoming, err := h.repo.CustomerReservations(ctx, customerID, storage.BucketUpcoming, 50)
	if err != nil {
		h.serverError(w, "failed to load reservations", err)
		return
	}
	past, err := h.repo.CustomerReservations(ctx, customerID, storage.BucketPast, 50)
	if err != nil {
		h.serverError(w, "failed to load reservations", err)
		return
	}
	cancelled, err := h.repo.CustomerReservations(ctx, customerID, storage.BucketCancelled, 50)
	if err != nil {
		h.serverError(w, "failed to load reservations", err)
		return
	}

	h.writeJSON(w, map[string]any{
		"upcoming":  upcoming,
		"past":      past,
		"cancelled": cancelled,
	})
}

// ExportCSV streams every reservation as CSV. Admin only.
func (h *DashboardHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	_, role, ok := h.actor(w, r)
	if !ok {
		return
	}
	if role != "admin" {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="reservations.csv"`)

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"reservation_id", "service_name", "provider_id", "customer_id", "start_time", "end_time", "status"})

	err := h.repo.ForEachReservation(r.Context(), func(row storage.ReservationRow) error {
		return cw.Write([]string{
			row.ReservationID,
			row.ServiceName,
			row.ProviderID,
			row.CustomerID,
			row.StartTime.UTC().Format(time.RFC3339),
			row.EndTime.UTC().Format(time.RFC3339),
			row.Status,
		})
	})
	if err != nil {
		// Headers are gone; log and truncate.
		h.logger.Error("csv export failed", "err", err)
		return
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		h.logger.Error("csv flush failed", "err", err)
	}
}

func (h *DashboardHandler) actor(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return "", "", false
	}
	id := strings.TrimSpace(r.Header.Get(HeaderActorID))
	role := strings.TrimSpace(r.Header.Get(HeaderActorRole))
	if id == "" || role == "" {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return "", "", false
	}
	return id, role, true
}

func (h *DashboardHandler) serverError(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, "err", err)
	http.Error(w, msg, http.StatusInternalServerError)
}

func (h *DashboardHandler) writeRaw(w http.ResponseWriter, raw []byte) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(raw)
}

func (h *DashboardHandler) writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to write response", "err", err)
	}
}
