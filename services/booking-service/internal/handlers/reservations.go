package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bookline/bookline/services/booking-service/internal/authz"
	"github.com/bookline/bookline/services/booking-service/internal/booking"
	"github.com/bookline/bookline/services/booking-service/internal/conflict"
	"github.com/bookline/bookline/services/booking-service/internal/lifecycle"
	"github.com/bookline/bookline/services/booking-service/internal/model"
)

// Actor identity headers stamped by the gateway after JWT verification.
const (
	HeaderActorID   = "X-Actor-Id"
	HeaderActorRole = "X-Actor-Role"
)

type ReservationHandler struct {
	svc    *booking.Service
	logger *slog.Logger
}

func NewReservationHandler(svc *booking.Service, logger *slog.Logger) *ReservationHandler {
	return &ReservationHandler{svc: svc, logger: logger}
}

func (h *ReservationHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/reservations/book", h.Book)
	mux.HandleFunc("/api/v1/reservations/reschedule", h.Reschedule)
	mux.HandleFunc("/api/v1/reservations/cancel", h.Cancel)
	mux.HandleFunc("/api/v1/reservations/status", h.ChangeStatus)
	mux.HandleFunc("/api/v1/reservations/delete", h.Delete)
	mux.HandleFunc("/api/v1/reservations/get", h.Get)
	mux.HandleFunc("/api/v1/reservations", h.List)
	mux.HandleFunc("/api/v1/public/slots", h.Slots)
}

type bookRequest struct {
	ServiceID string `json:"service_id"`
	StartTime string `json:"start_time"`
}

type rescheduleRequest struct {
	ReservationID string `json:"reservation_id"`
	StartTime     string `json:"start_time"`
}

type cancelRequest struct {
	ReservationID string `json:"reservation_id"`
	Reason        string `json:"reason"`
}

type changeStatusRequest struct {
	ReservationID string `json:"reservation_id"`
	Status        string `json:"status"`
}

type deleteRequest struct {
	ReservationID string `json:"reservation_id"`
}

type reservationItem struct {
	ReservationID string `json:"reservation_id"`
	ServiceID     string `json:"service_id"`
	ServiceName   string `json:"service_name"`
	ProviderID    string `json:"provider_id"`
	CustomerID    string `json:"customer_id"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	Status        string `json:"status"`
	Reason        string `json:"reason,omitempty"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

type slotItem struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func toItem(res model.Reservation) reservationItem {
	return reservationItem{
		ReservationID: res.ID,
		ServiceID:     res.ServiceID,
		ServiceName:   res.Service.Name,
		ProviderID:    res.ProviderID,
		CustomerID:    res.CustomerID,
		StartTime:     res.Window.Start.UTC().Format(time.RFC3339),
		EndTime:       res.Window.End.UTC().Format(time.RFC3339),
		Status:        string(res.Status),
		Reason:        res.Reason,
		CreatedAt:     res.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:     res.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *ReservationHandler) Book(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req bookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	req.ServiceID = strings.TrimSpace(req.ServiceID)
	if req.ServiceID == "" {
		http.Error(w, "service_id required", http.StatusBadRequest)
		return
	}
	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		http.Error(w, "invalid start_time", http.StatusBadRequest)
		return
	}

	res, err := h.svc.Create(r.Context(), actor, req.ServiceID, start)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, toItem(res))
}

func (h *ReservationHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req rescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.ReservationID) == "" {
		http.Error(w, "reservation_id required", http.StatusBadRequest)
		return
	}
	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		http.Error(w, "invalid start_time", http.StatusBadRequest)
		return
	}

	res, err := h.svc.Reschedule(r.Context(), actor, req.ReservationID, start)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toItem(res))
}

func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.ReservationID) == "" {
		http.Error(w, "reservation_id required", http.StatusBadRequest)
		return
	}

	if err := h.svc.Cancel(r.Context(), actor, req.ReservationID, strings.TrimSpace(req.Reason)); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{
		"reservation_id": req.ReservationID,
		"status":         string(model.StatusCancelled),
	})
}

func (h *ReservationHandler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req changeStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.ReservationID) == "" {
		http.Error(w, "reservation_id required", http.StatusBadRequest)
		return
	}

	if err := h.svc.ChangeStatus(r.Context(), actor, req.ReservationID, model.Status(req.Status)); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{
		"reservation_id": req.ReservationID,
		"status":         req.Status,
	})
}

func (h *ReservationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.ReservationID) == "" {
		http.Error(w, "reservation_id required", http.StatusBadRequest)
		return
	}

	if err := h.svc.Delete(r.Context(), actor, req.ReservationID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ReservationHandler) Get(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		http.Error(w, "id required", http.StatusBadRequest)
		return
	}

	res, err := h.svc.Get(r.Context(), actor, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, toItem(res))
}

func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	reservations, err := h.svc.List(r.Context(), actor, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	items := make([]reservationItem, 0, len(reservations))
	for _, res := range reservations {
		items = append(items, toItem(res))
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"reservations": items})
}

// Slots is public: no actor required. Results are advisory and re-checked
// on booking.
func (h *ReservationHandler) Slots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	q := r.URL.Query()
	serviceID := strings.TrimSpace(q.Get("service_id"))
	date := strings.TrimSpace(q.Get("date"))
	if serviceID == "" || date == "" {
		http.Error(w, "service_id and date are required", http.StatusBadRequest)
		return
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}

	step := 15 * time.Minute
	if raw := q.Get("step_minutes"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "invalid step_minutes", http.StatusBadRequest)
			return
		}
		step = time.Duration(parsed) * time.Minute
	}

	slots, err := h.svc.FreeSlots(r.Context(), serviceID, date, step)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	items := make([]slotItem, 0, len(slots))
	for _, s := range slots {
		items = append(items, slotItem{
			StartTime: s.Start.UTC().Format(time.RFC3339),
			EndTime:   s.End.UTC().Format(time.RFC3339),
		})
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"slots": items})
}

func (h *ReservationHandler) actor(w http.ResponseWriter, r *http.Request) (model.Actor, bool) {
	actor := model.Actor{
		ID:   strings.TrimSpace(r.Header.Get(HeaderActorID)),
		Role: model.Role(strings.TrimSpace(r.Header.Get(HeaderActorRole))),
	}
	if actor.ID == "" || !actor.Role.Valid() {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return model.Actor{}, false
	}
	return actor, true
}

func (h *ReservationHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, authz.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, booking.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, conflict.ErrSlotCollision):
		http.Error(w, "slot already booked", http.StatusConflict)
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		http.Error(w, "invalid status transition", http.StatusConflict)
	case errors.Is(err, conflict.ErrPastBooking):
		http.Error(w, "start time is in the past", http.StatusUnprocessableEntity)
	case errors.Is(err, conflict.ErrOutsideAvailability):
		http.Error(w, "outside provider availability", http.StatusUnprocessableEntity)
	case errors.Is(err, lifecycle.ErrPolicyWindow):
		http.Error(w, "too close to start time", http.StatusUnprocessableEntity)
	case errors.Is(err, booking.ErrTxConflict):
		http.Error(w, "temporary contention, retry", http.StatusServiceUnavailable)
	default:
		h.logger.Error("reservation request failed", "path", r.URL.Path, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (h *ReservationHandler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("failed to write response", "err", err)
	}
}
