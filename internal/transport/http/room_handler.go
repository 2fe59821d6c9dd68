package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/mfrancon/roomreserve/internal/model"
	"github.com/mfrancon/roomreserve/internal/service"
)

type RoomHandler struct {
	rooms        *service.RoomService
	reservations *service.ReservationService
	responder
}

func NewRoomHandler(rooms *service.RoomService, reservations *service.ReservationService, logger *zap.Logger) *RoomHandler {
	return &RoomHandler{rooms: rooms, reservations: reservations, responder: newResponder(logger)}
}

type createRoomRequest struct {
	UserID int64 `json:"user_id"`
	Room   struct {
		Name               string `json:"name"`
		Capacity           int    `json:"capacity"`
		HasProjector       bool   `json:"has_projector"`
		HasVideoConference bool   `json:"has_video_conference"`
		Floor              int    `json:"floor"`
	} `json:"room"`
}

func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}

	room := &model.Room{
		Name:               req.Room.Name,
		Capacity:           req.Room.Capacity,
		HasProjector:       req.Room.HasProjector,
		HasVideoConference: req.Room.HasVideoConference,
		Floor:              req.Room.Floor,
	}

	if err := h.rooms.Create(r.Context(), req.UserID, room); err != nil {
		if vs, ok := violationsOf(err); ok {
			h.writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": vs.Messages()})
			return
		}
		h.serviceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]any{"room": room})
}

func (h *RoomHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	room, err := h.rooms.Get(r.Context(), id)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"room": room})
}

func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.rooms.List(r.Context())
	if err != nil {
		h.serviceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"rooms": rooms})
}

// Availability reports the room's one-hour slots for a calendar date.
func (h *RoomHandler) Availability(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	date, err := time.Parse("2006-01-02", r.URL.Query().Get("date"))
	if err != nil {
		h.badRequest(w, "date must be in YYYY-MM-DD format")
		return
	}

	slots, err := h.reservations.Availability(r.Context(), id, date)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"availability": slots})
}

func (h *RoomHandler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.badRequest(w, "invalid room id")
		return 0, false
	}
	return id, true
}
