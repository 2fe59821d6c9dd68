package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mfrancon/roomreserve/internal/model"
	"github.com/mfrancon/roomreserve/internal/service"
	"github.com/mfrancon/roomreserve/internal/testfixtures"
	"github.com/mfrancon/roomreserve/internal/validation"
)

var (
	friday = time.Date(2026, time.September, 4, 8, 0, 0, 0, time.UTC)
	monday = time.Date(2026, time.September, 7, 10, 0, 0, 0, time.UTC)
)

type testServer struct {
	handler http.Handler

	reservations *testfixtures.MemReservationStore
	clock        *testfixtures.Clock
	room         *model.Room
	user         *model.User
	admin        *model.User
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	reservations := testfixtures.NewMemReservationStore()
	rooms := testfixtures.NewMemRoomStore()
	users := testfixtures.NewMemUserStore()
	clk := testfixtures.NewClock(friday)
	logger := zap.NewNop()

	s := &testServer{
		reservations: reservations,
		clock:        clk,
		room:         rooms.Add(model.Room{Name: "Boardroom", Capacity: 8}),
		user:         users.Add(model.User{Name: "Dana", Email: "dana@example.com", MaxCapacityAllowed: 10}),
		admin:        users.Add(model.User{Name: "Sam", Email: "sam@example.com", IsAdmin: true}),
	}

	reservationSvc := service.NewReservationService(reservations, rooms, users, validation.New(clk), clk, logger)
	s.handler = NewRouter(RouterConfig{
		Reservations: NewReservationHandler(reservationSvc, logger),
		Rooms:        NewRoomHandler(service.NewRoomService(rooms, users, logger), reservationSvc, logger),
		Users:        NewUserHandler(service.NewUserService(users, logger), logger),
	})
	return s
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	return payload
}

func TestCreateReservationEndpoint(t *testing.T) {
	s := newTestServer(t)
	body := fmt.Sprintf(`{
		"user_id": %d,
		"reservation": {
			"room_id": %d,
			"starts_at": "2026-09-07T10:00:00Z",
			"ends_at": "2026-09-07T11:00:00Z",
			"title": "Team meeting"
		}
	}`, s.user.ID, s.room.ID)

	w := s.do(t, http.MethodPost, "/reservations", body)

	require.Equal(t, http.StatusCreated, w.Code)
	payload := decode(t, w)
	created := payload["reservations"].([]any)
	require.Len(t, created, 1)
	first := created[0].(map[string]any)
	assert.Equal(t, float64(s.room.ID), first["room_id"])
	assert.Equal(t, float64(s.user.ID), first["user_id"])
	assert.Nil(t, first["cancelled_at"])
}

func TestCreateReservationEndpointRecurring(t *testing.T) {
	s := newTestServer(t)
	body := fmt.Sprintf(`{
		"user_id": %d,
		"reservation": {
			"room_id": %d,
			"starts_at": "2026-09-07T10:00:00Z",
			"ends_at": "2026-09-07T11:00:00Z",
			"recurring": "weekly",
			"recurring_until": "2026-09-21",
			"title": "Weekly standup"
		}
	}`, s.user.ID, s.room.ID)

	w := s.do(t, http.MethodPost, "/reservations", body)

	require.Equal(t, http.StatusCreated, w.Code)
	payload := decode(t, w)
	assert.Len(t, payload["reservations"].([]any), 3)
}

func TestCreateReservationEndpointRejectsWeekendSeries(t *testing.T) {
	s := newTestServer(t)
	body := fmt.Sprintf(`{
		"user_id": %d,
		"reservation": {
			"room_id": %d,
			"starts_at": "2026-09-12T10:00:00Z",
			"ends_at": "2026-09-12T11:00:00Z",
			"recurring": "weekly",
			"recurring_until": "2026-09-12",
			"title": "Weekend meeting"
		}
	}`, s.user.ID, s.room.ID)

	w := s.do(t, http.MethodPost, "/reservations", body)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	payload := decode(t, w)
	assert.Contains(t, payload["errors"], "reservations must be on weekdays")
	assert.Zero(t, s.reservations.Count())
}

func TestCreateReservationEndpointBadBody(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/reservations", `{"user_id": "not a number"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateReservationEndpointUnknownRoom(t *testing.T) {
	s := newTestServer(t)
	body := fmt.Sprintf(`{
		"user_id": %d,
		"reservation": {
			"room_id": 999,
			"starts_at": "2026-09-07T10:00:00Z",
			"ends_at": "2026-09-07T11:00:00Z"
		}
	}`, s.user.ID)

	w := s.do(t, http.MethodPost, "/reservations", body)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCancelReservationEndpoint(t *testing.T) {
	s := newTestServer(t)
	res := s.reservations.Add(model.Reservation{
		RoomID:   s.room.ID,
		UserID:   s.user.ID,
		StartsAt: monday,
		EndsAt:   monday.Add(time.Hour),
	})

	w := s.do(t, http.MethodPost, fmt.Sprintf("/reservations/%d/cancel", res.ID), "")

	require.Equal(t, http.StatusOK, w.Code)
	payload := decode(t, w)
	reservation := payload["reservation"].(map[string]any)
	assert.NotNil(t, reservation["cancelled_at"])
}

func TestCancelReservationEndpointTooLate(t *testing.T) {
	s := newTestServer(t)
	res := s.reservations.Add(model.Reservation{
		RoomID:   s.room.ID,
		UserID:   s.user.ID,
		StartsAt: monday,
		EndsAt:   monday.Add(time.Hour),
	})
	s.clock.Set(monday.Add(-30 * time.Minute))

	w := s.do(t, http.MethodPost, fmt.Sprintf("/reservations/%d/cancel", res.ID), "")

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	payload := decode(t, w)
	assert.Equal(t,
		"A reservation can only be cancelled if there are more than 60 minutes until its start time.",
		payload["error"])
}

func TestAvailabilityEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.reservations.Add(model.Reservation{
		RoomID:   s.room.ID,
		UserID:   s.user.ID,
		StartsAt: monday,
		EndsAt:   monday.Add(2 * time.Hour),
	})

	w := s.do(t, http.MethodGet, fmt.Sprintf("/rooms/%d/availability?date=2026-09-07", s.room.ID), "")

	require.Equal(t, http.StatusOK, w.Code)
	payload := decode(t, w)
	slots := payload["availability"].([]any)
	require.Len(t, slots, 9)
	first := slots[0].(map[string]any)
	assert.Equal(t, "09:00", first["start_time"])
	assert.Equal(t, true, first["available"])
	taken := slots[1].(map[string]any)
	assert.Equal(t, false, taken["available"])
}

func TestAvailabilityEndpointBadDate(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, fmt.Sprintf("/rooms/%d/availability?date=next-monday", s.room.ID), "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateRoomEndpoint(t *testing.T) {
	s := newTestServer(t)

	t.Run("admin", func(t *testing.T) {
		body := fmt.Sprintf(`{"user_id": %d, "room": {"name": "Annex", "capacity": 4, "floor": 2}}`, s.admin.ID)
		w := s.do(t, http.MethodPost, "/rooms", body)

		require.Equal(t, http.StatusCreated, w.Code)
		payload := decode(t, w)
		room := payload["room"].(map[string]any)
		assert.Equal(t, "Annex", room["name"])
		assert.NotZero(t, room["id"])
	})

	t.Run("non-admin", func(t *testing.T) {
		body := fmt.Sprintf(`{"user_id": %d, "room": {"name": "Annex", "capacity": 4}}`, s.user.ID)
		w := s.do(t, http.MethodPost, "/rooms", body)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("invalid", func(t *testing.T) {
		body := fmt.Sprintf(`{"user_id": %d, "room": {"name": "", "capacity": 0}}`, s.admin.ID)
		w := s.do(t, http.MethodPost, "/rooms", body)

		require.Equal(t, http.StatusUnprocessableEntity, w.Code)
		payload := decode(t, w)
		assert.Len(t, payload["errors"], 2)
	})
}

func TestCreateUserEndpoint(t *testing.T) {
	s := newTestServer(t)
	body := `{"user": {"name": "Ana", "email": "ana@example.com", "max_capacity_allowed": 6}}`

	w := s.do(t, http.MethodPost, "/users", body)

	require.Equal(t, http.StatusCreated, w.Code)
	payload := decode(t, w)
	user := payload["user"].(map[string]any)
	assert.Equal(t, "ana@example.com", user["email"])
}
