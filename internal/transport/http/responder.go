package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/mfrancon/roomreserve/internal/service"
	"github.com/mfrancon/roomreserve/internal/validation"
)

type responder struct {
	logger *zap.Logger
}

func newResponder(logger *zap.Logger) responder {
	return responder{logger: logger}
}

func (r responder) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (r responder) badRequest(w http.ResponseWriter, message string) {
	r.writeJSON(w, http.StatusBadRequest, map[string]string{"error": message})
}

// serviceError maps the error taxonomy shared by every handler: missing
// resources, forbidden actions, and everything that is not a rule violation.
// Violations are shaped per endpoint, so handlers deal with them first.
func (r responder) serviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		r.writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, service.ErrForbidden):
		r.writeJSON(w, http.StatusForbidden, map[string]string{"error": "Only admins can create rooms"})
	default:
		r.logger.Error("Request failed", zap.Error(err))
		r.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func violationsOf(err error) (validation.Violations, bool) {
	var vErr *validation.Error
	if errors.As(err, &vErr) {
		return vErr.Violations, true
	}
	return nil, false
}
