// Package http is the thin transport over the reservation engine: it decodes
// requests into service inputs and shapes results back into JSON.
package http

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

type RouterConfig struct {
	Reservations *ReservationHandler
	Rooms        *RoomHandler
	Users        *UserHandler
	Logger       *zap.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Reservations != nil {
		mux.HandleFunc("GET /reservations", cfg.Reservations.List)
		mux.HandleFunc("POST /reservations", cfg.Reservations.Create)
		mux.HandleFunc("GET /reservations/{id}", cfg.Reservations.Show)
		mux.HandleFunc("POST /reservations/{id}/cancel", cfg.Reservations.Cancel)
	}

	if cfg.Rooms != nil {
		mux.HandleFunc("GET /rooms", cfg.Rooms.List)
		mux.HandleFunc("POST /rooms", cfg.Rooms.Create)
		mux.HandleFunc("GET /rooms/{id}", cfg.Rooms.Show)
		mux.HandleFunc("GET /rooms/{id}/availability", cfg.Rooms.Availability)
	}

	if cfg.Users != nil {
		mux.HandleFunc("GET /users", cfg.Users.List)
		mux.HandleFunc("POST /users", cfg.Users.Create)
		mux.HandleFunc("GET /users/{id}", cfg.Users.Show)
	}

	var handler http.Handler = mux
	if cfg.Logger != nil {
		handler = requestLogging(cfg.Logger, handler)
	}
	return handler
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func requestLogging(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		logger.Info("Request handled",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(started)),
		)
	})
}
