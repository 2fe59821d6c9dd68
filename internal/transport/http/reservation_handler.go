package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/mfrancon/roomreserve/internal/service"
)

type ReservationHandler struct {
	svc *service.ReservationService
	responder
}

func NewReservationHandler(svc *service.ReservationService, logger *zap.Logger) *ReservationHandler {
	return &ReservationHandler{svc: svc, responder: newResponder(logger)}
}

type createReservationRequest struct {
	UserID      int64 `json:"user_id"`
	Reservation struct {
		RoomID         int64     `json:"room_id"`
		Title          string    `json:"title"`
		StartsAt       time.Time `json:"starts_at"`
		EndsAt         time.Time `json:"ends_at"`
		Recurring      string    `json:"recurring"`
		RecurringUntil string    `json:"recurring_until"`
	} `json:"reservation"`
}

// Create admits a booking request.
// Success: 201 with every created reservation in occurrence order.
// Rule violations: 422 with the violation messages of the first invalid
// occurrence; nothing was written.
func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}

	if req.Reservation.StartsAt.IsZero() || req.Reservation.EndsAt.IsZero() {
		h.badRequest(w, "starts_at and ends_at are required")
		return
	}

	in := service.CreateReservationInput{
		RoomID:    req.Reservation.RoomID,
		UserID:    req.UserID,
		Title:     req.Reservation.Title,
		StartsAt:  req.Reservation.StartsAt,
		EndsAt:    req.Reservation.EndsAt,
		Recurring: req.Reservation.Recurring,
	}
	if req.Reservation.RecurringUntil != "" {
		until, err := time.ParseInLocation("2006-01-02", req.Reservation.RecurringUntil, req.Reservation.StartsAt.Location())
		if err != nil {
			h.badRequest(w, "recurring_until must be a date in YYYY-MM-DD format")
			return
		}
		in.RecurringUntil = &until
	}

	created, err := h.svc.Create(r.Context(), in)
	if err != nil {
		if vs, ok := violationsOf(err); ok {
			h.writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": vs.Messages()})
			return
		}
		h.serviceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]any{"reservations": created})
}

// Cancel applies the lead-time gate to one reservation.
func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	res, err := h.svc.Cancel(r.Context(), id)
	if err != nil {
		if vs, ok := violationsOf(err); ok {
			h.writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": vs.Messages()[0]})
			return
		}
		h.serviceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"reservation": res})
}

func (h *ReservationHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	res, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"reservation": res})
}

func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	reservations, err := h.svc.List(r.Context())
	if err != nil {
		h.serviceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"reservations": reservations})
}

func (h *ReservationHandler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.badRequest(w, "invalid reservation id")
		return 0, false
	}
	return id, true
}
