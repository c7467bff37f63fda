package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bookline/bookline/services/provider-service/internal/storage"
)

// Actor identity headers stamped by the gateway.
const (
	HeaderActorID   = "X-Actor-Id"
	HeaderActorRole = "X-Actor-Role"
)

type ProviderHandler struct {
	repo   *storage.Repository
	logger *slog.Logger
}

func New(repo *storage.Repository, logger *slog.Logger) *ProviderHandler {
	return &ProviderHandler{repo: repo, logger: logger}
}

type actor struct {
	ID   string
	Role string
}

func (a actor) admin() bool { return a.Role == "admin" }

// resolveOwner decides which provider a mutation applies to: providers act
// on themselves, admins may name any provider.
func (a actor) resolveOwner(requested string) (string, bool) {
	if a.admin() {
		if requested == "" {
			return "", false
		}
		return requested, true
	}
	if a.Role != "provider" {
		return "", false
	}
	if requested != "" && requested != a.ID {
		return "", false
	}
	return a.ID, true
}

type createWindowRequest struct {
	ProviderID string `json:"provider_id,omitempty"`
	Date       string `json:"date"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Open       *bool  `json:"is_open,omitempty"`
}

type windowItem struct {
	ID         string `json:"id"`
	ProviderID string `json:"provider_id"`
	Date       string `json:"date"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Open       bool   `json:"is_open"`
}

type serviceRequest struct {
	ServiceID       string `json:"service_id,omitempty"`
	ProviderID      string `json:"provider_id,omitempty"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	Category        string `json:"category"`
	DurationMinutes int    `json:"duration_minutes"`
	BufferMinutes   int    `json:"buffer_minutes"`
	Price           string `json:"price"`
}

type serviceItem struct {
	ServiceID       string `json:"service_id"`
	ProviderID      string `json:"provider_id"`
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	Category        string `json:"category,omitempty"`
	DurationMinutes int    `json:"duration_minutes"`
	BufferMinutes   int    `json:"buffer_minutes"`
	Price           string `json:"price"`
	Active          bool   `json:"active"`
}

func toServiceItem(spec storage.ServiceSpec) serviceItem {
	return serviceItem{
		ServiceID:       spec.ID,
		ProviderID:      spec.ProviderID,
		Name:            spec.Name,
		Description:     spec.Description,
		Category:        spec.Category,
		DurationMinutes: spec.DurationMins,
		BufferMinutes:   spec.BufferMins,
		Price:           spec.Price,
		Active:          spec.Active,
	}
}

func (h *ProviderHandler) CreateWindow(w http.ResponseWriter, r *http.Request) {
	act, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req createWindowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}

	owner, ok := act.resolveOwner(strings.TrimSpace(req.ProviderID))
	if !ok {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}
	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		http.Error(w, "invalid start_time", http.StatusBadRequest)
		return
	}
	end, err := time.Parse(time.RFC3339, req.EndTime)
	if err != nil {
		http.Error(w, "invalid end_time", http.StatusBadRequest)
		return
	}
	if !end.After(start) {
		http.Error(w, "end_time must be after start_time", http.StatusBadRequest)
		return
	}

	open := true
	if req.Open != nil {
		open = *req.Open
	}

	id, err := h.repo.CreateWindow(r.Context(), storage.AvailabilityWindow{
		ProviderID: owner,
		Day:        req.Date,
		StartTime:  start,
		EndTime:    end,
		Open:       open,
	})
	if err != nil {
		h.serverError(w, "failed to create window", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *ProviderHandler) ListWindows(w http.ResponseWriter, r *http.Request) {
	act, ok := h.actor(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	owner, ok := act.resolveOwner(strings.TrimSpace(q.Get("provider_id")))
	if !ok {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	day := strings.TrimSpace(q.Get("date"))
	if _, err := time.Parse("2006-01-02", day); err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}

	windows, err := h.repo.ListWindows(r.Context(), owner, day)
	if err != nil {
		h.serverError(w, "failed to list windows", err)
		return
	}

	items := make([]windowItem, 0, len(windows))
	for _, win := range windows {
		items = append(items, windowItem{
			ID:         win.ID,
			ProviderID: win.ProviderID,
			Date:       win.Day,
			StartTime:  win.StartTime.UTC().Format(time.RFC3339),
			EndTime:    win.EndTime.UTC().Format(time.RFC3339),
			Open:       win.Open,
		})
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"windows": items})
}

func (h *ProviderHandler) DeleteWindow(w http.ResponseWriter, r *http.Request) {
	act, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req struct {
		ID         string `json:"id"`
		ProviderID string `json:"provider_id,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.ID) == "" {
		http.Error(w, "id required", http.StatusBadRequest)
		return
	}
	owner, ok := act.resolveOwner(strings.TrimSpace(req.ProviderID))
	if !ok {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	if err := h.repo.DeleteWindow(r.Context(), req.ID, owner); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "window not found", http.StatusNotFound)
			return
		}
		h.serverError(w, "failed to delete window", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProviderHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	act, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req serviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	owner, ok := act.resolveOwner(strings.TrimSpace(req.ProviderID))
	if !ok {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	if msg := validateService(req); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	id, err := h.repo.CreateService(r.Context(), storage.ServiceSpec{
		ProviderID:   owner,
		Name:         strings.TrimSpace(req.Name),
		Description:  strings.TrimSpace(req.Description),
		Category:     strings.TrimSpace(req.Category),
		DurationMins: req.DurationMinutes,
		BufferMins:   req.BufferMinutes,
		Price:        strings.TrimSpace(req.Price),
	})
	if err != nil {
		h.serverError(w, "failed to create service", err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]string{"service_id": id})
}

func (h *ProviderHandler) UpdateService(w http.ResponseWriter, r *http.Request) {
	act, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req serviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.ServiceID) == "" {
		http.Error(w, "service_id required", http.StatusBadRequest)
		return
	}
	owner, ok := act.resolveOwner(strings.TrimSpace(req.ProviderID))
	if !ok {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	if msg := validateService(req); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	err := h.repo.UpdateService(r.Context(), storage.ServiceSpec{
		ID:           req.ServiceID,
		ProviderID:   owner,
		Name:         strings.TrimSpace(req.Name),
		Description:  strings.TrimSpace(req.Description),
		Category:     strings.TrimSpace(req.Category),
		DurationMins: req.DurationMinutes,
		BufferMins:   req.BufferMinutes,
		Price:        strings.TrimSpace(req.Price),
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "service not found", http.StatusNotFound)
			return
		}
		h.serverError(w, "failed to update service", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProviderHandler) DeactivateService(w http.ResponseWriter, r *http.Request) {
	act, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req struct {
		ServiceID  string `json:"service_id"`
		ProviderID string `json:"provider_id,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.ServiceID) == "" {
		http.Error(w, "service_id required", http.StatusBadRequest)
		return
	}
	owner, ok := act.resolveOwner(strings.TrimSpace(req.ProviderID))
	if !ok {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	if err := h.repo.DeactivateService(r.Context(), req.ServiceID, owner); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, "service not found", http.StatusNotFound)
			return
		}
		h.serverError(w, "failed to deactivate service", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ProviderHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	act, ok := h.actor(w, r)
	if !ok {
		return
	}

	owner, ok := act.resolveOwner(strings.TrimSpace(r.URL.Query().Get("provider_id")))
	if !ok {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	specs, err := h.repo.ListServices(r.Context(), owner, false)
	if err != nil {
		h.serverError(w, "failed to list services", err)
		return
	}
	items := make([]serviceItem, 0, len(specs))
	for _, spec := range specs {
		items = append(items, toServiceItem(spec))
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"services": items})
}

// PublicServices is the unauthenticated catalog browse used by customers
// before booking. Only active services are visible.
func (h *ProviderHandler) PublicServices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	specs, err := h.repo.ListServices(r.Context(), strings.TrimSpace(r.URL.Query().Get("provider_id")), true)
	if err != nil {
		h.serverError(w, "failed to list services", err)
		return
	}
	items := make([]serviceItem, 0, len(specs))
	for _, spec := range specs {
		items = append(items, toServiceItem(spec))
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"services": items})
}

func validateService(req serviceRequest) string {
	if strings.TrimSpace(req.Name) == "" {
		return "name required"
	}
	if req.DurationMinutes <= 0 {
		return "duration_minutes must be positive"
	}
	if req.BufferMinutes < 0 {
		return "buffer_minutes must not be negative"
	}
	if strings.TrimSpace(req.Price) == "" {
		return "price required"
	}
	return ""
}

func (h *ProviderHandler) actor(w http.ResponseWriter, r *http.Request) (actor, bool) {
	act := actor{
		ID:   strings.TrimSpace(r.Header.Get(HeaderActorID)),
		Role: strings.TrimSpace(r.Header.Get(HeaderActorRole)),
	}
	if act.ID == "" || act.Role == "" {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return actor{}, false
	}
	return act, true
}

func (h *ProviderHandler) serverError(w http.ResponseWriter, msg string, err error) {
	h.logger.Error(msg, "err", err)
	http.Error(w, msg, http.StatusInternalServerError)
}

func (h *ProviderHandler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to write response", "err", err)
	}
}
