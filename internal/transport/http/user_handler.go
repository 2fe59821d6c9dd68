package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/mfrancon/roomreserve/internal/model"
	"github.com/mfrancon/roomreserve/internal/service"
)

type UserHandler struct {
	users *service.UserService
	responder
}

func NewUserHandler(users *service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{users: users, responder: newResponder(logger)}
}

type createUserRequest struct {
	User struct {
		Name               string `json:"name"`
		Email              string `json:"email"`
		Department         string `json:"department"`
		MaxCapacityAllowed int    `json:"max_capacity_allowed"`
		IsAdmin            bool   `json:"is_admin"`
	} `json:"user"`
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}

	user := &model.User{
		Name:               req.User.Name,
		Email:              req.User.Email,
		Department:         req.User.Department,
		MaxCapacityAllowed: req.User.MaxCapacityAllowed,
		IsAdmin:            req.User.IsAdmin,
	}

	if err := h.users.Create(r.Context(), user); err != nil {
		if vs, ok := violationsOf(err); ok {
			h.writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": vs.Messages()})
			return
		}
		h.serviceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]any{"user": user})
}

func (h *UserHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.badRequest(w, "invalid user id")
		return
	}

	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		h.serviceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		h.serviceError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"users": users})
}
