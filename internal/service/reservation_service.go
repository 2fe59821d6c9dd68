package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mfrancon/roomreserve/internal/clock"
	"github.com/mfrancon/roomreserve/internal/model"
	"github.com/mfrancon/roomreserve/internal/recurrence"
	"github.com/mfrancon/roomreserve/internal/validation"
)

const cancellationLeadTime = 60 * time.Minute

const (
	businessOpenHour  = 9
	businessCloseHour = 18
)

// ReservationService is the admission engine: it expands a booking request
// into occurrences, validates each one under the room's exclusive lock, and
// commits the whole set atomically. It also owns the cancellation gate and
// the availability calculator.
type ReservationService struct {
	store     ReservationStore
	rooms     RoomStore
	users     UserStore
	validator *validation.Validator
	clock     clock.Clock
	logger    *zap.Logger
}

func NewReservationService(
	store ReservationStore,
	rooms RoomStore,
	users UserStore,
	validator *validation.Validator,
	clk clock.Clock,
	logger *zap.Logger,
) *ReservationService {
	return &ReservationService{
		store:     store,
		rooms:     rooms,
		users:     users,
		validator: validator,
		clock:     clk,
		logger:    logger,
	}
}

type CreateReservationInput struct {
	RoomID   int64
	UserID   int64
	Title    string
	StartsAt time.Time
	EndsAt   time.Time

	// Recurring is "", "daily" or "weekly". RecurringUntil carries the
	// inclusive last calendar date of the series and must be set iff
	// Recurring is.
	Recurring      string
	RecurringUntil *time.Time
}

// Create admits a booking request. On success it returns every created
// reservation in occurrence order. On rejection it returns a
// *validation.Error holding the violations of the first invalid occurrence;
// nothing is written in that case.
func (s *ReservationService) Create(ctx context.Context, in CreateReservationInput) ([]*model.Reservation, error) {
	user, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", in.UserID, ErrNotFound)
	}

	room, err := s.rooms.GetByID(ctx, in.RoomID)
	if err != nil {
		return nil, fmt.Errorf("get room: %w", err)
	}
	if room == nil {
		return nil, fmt.Errorf("room %d: %w", in.RoomID, ErrNotFound)
	}

	if vs := validation.CheckRecurrence(in.Recurring, in.RecurringUntil != nil); len(vs) > 0 {
		return nil, &validation.Error{Violations: vs}
	}

	occurrences, exhausted := s.expand(in)

	tx, err := s.store.BeginRoomTx(ctx, in.RoomID)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Validate every occurrence before staging any row, so occurrences of
	// the same batch do not count against each other's quota. The first
	// invalid occurrence rejects the whole batch.
	for _, occ := range occurrences {
		vs, err := s.validator.Occurrence(ctx, tx, occ, user, room)
		if err != nil {
			return nil, fmt.Errorf("validate occurrence: %w", err)
		}
		if len(vs) > 0 {
			return nil, &validation.Error{Violations: vs}
		}
	}

	// A series that expanded to nothing creates nothing. Its representative
	// occurrence exists only to surface a violation of its own; when it
	// validated clean, the end date is the problem.
	if exhausted {
		return nil, &validation.Error{Violations: validation.Violations{
			{Field: "recurring_until", Message: "must be on or after the start date"},
		}}
	}

	var recurring *string
	var until *time.Time
	var groupID *uuid.UUID
	if in.Recurring != "" {
		recurring = &in.Recurring
		u := dateIn(*in.RecurringUntil, in.StartsAt.Location())
		until = &u
		gid := uuid.New()
		groupID = &gid
	}

	created := make([]*model.Reservation, 0, len(occurrences))
	for _, occ := range occurrences {
		res := &model.Reservation{
			RoomID:           in.RoomID,
			UserID:           in.UserID,
			Title:            in.Title,
			StartsAt:         occ.Start,
			EndsAt:           occ.End,
			Recurring:        recurring,
			RecurringUntil:   until,
			RecurringGroupID: groupID,
		}
		if err := tx.Insert(ctx, res); err != nil {
			return nil, err
		}
		created = append(created, res)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	s.logger.Info("Reservations created",
		zap.Int64("room_id", in.RoomID),
		zap.Int64("user_id", in.UserID),
		zap.Int("count", len(created)),
		zap.String("recurring", in.Recurring),
	)

	return created, nil
}

// expand turns the request into its candidate occurrences. A non-recurring
// request bypasses the stepping loop entirely. A recurring series that
// filtered down to nothing yields one representative occurrence built from
// the raw input, flagged exhausted: it is validated so the caller gets a
// real violation instead of a silent empty success, but it is never saved.
func (s *ReservationService) expand(in CreateReservationInput) ([]recurrence.Occurrence, bool) {
	if in.Recurring == "" {
		return recurrence.Single(in.StartsAt, in.EndsAt), false
	}

	until := dateIn(*in.RecurringUntil, in.StartsAt.Location())
	occurrences := recurrence.Expand(in.StartsAt, in.EndsAt, in.Recurring, until)
	if len(occurrences) == 0 {
		return recurrence.Single(in.StartsAt, in.EndsAt), true
	}
	return occurrences, false
}

// Cancel applies the lead-time gate: a reservation may be cancelled only
// while more than 60 minutes remain before its start.
func (s *ReservationService) Cancel(ctx context.Context, id int64) (*model.Reservation, error) {
	res, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get reservation: %w", err)
	}
	if res == nil {
		return nil, fmt.Errorf("reservation %d: %w", id, ErrNotFound)
	}

	if res.CancelledAt != nil {
		return nil, &validation.Error{Violations: validation.Violations{
			{Field: validation.FieldBase, Message: "reservation is already cancelled"},
		}}
	}

	now := s.clock.Now()
	if !now.Before(res.StartsAt.Add(-cancellationLeadTime)) {
		return nil, &validation.Error{Violations: validation.Violations{
			{Field: validation.FieldBase, Message: "A reservation can only be cancelled if there are more than 60 minutes until its start time."},
		}}
	}

	updated, err := s.store.Cancel(ctx, id, now)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, fmt.Errorf("reservation %d: %w", id, ErrNotFound)
	}

	s.logger.Info("Reservation cancelled",
		zap.Int64("reservation_id", id),
		zap.Int64("room_id", updated.RoomID),
	)

	return updated, nil
}

// Get returns one reservation.
func (s *ReservationService) Get(ctx context.Context, id int64) (*model.Reservation, error) {
	res, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, fmt.Errorf("reservation %d: %w", id, ErrNotFound)
	}
	return res, nil
}

// List returns every reservation ordered by start time.
func (s *ReservationService) List(ctx context.Context) ([]*model.Reservation, error) {
	return s.store.List(ctx)
}

// AvailabilitySlot reports one hour of a room's business day.
type AvailabilitySlot struct {
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Available bool   `json:"available"`
}

// Availability partitions the business day into one-hour slots and marks
// each slot free or taken. It reads committed state without the room lock;
// a slightly stale answer only ever gates a write, and writes are serialized
// by the lock themselves.
func (s *ReservationService) Availability(ctx context.Context, roomID int64, date time.Time) ([]AvailabilitySlot, error) {
	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("get room: %w", err)
	}
	if room == nil {
		return nil, fmt.Errorf("room %d: %w", roomID, ErrNotFound)
	}

	y, m, d := date.Date()
	slots := make([]AvailabilitySlot, 0, businessCloseHour-businessOpenHour)

	for hour := businessOpenHour; hour < businessCloseHour; hour++ {
		slotStart := time.Date(y, m, d, hour, 0, 0, 0, date.Location())
		slotEnd := slotStart.Add(time.Hour)

		taken, err := s.store.OverlapExists(ctx, roomID, slotStart, slotEnd)
		if err != nil {
			return nil, err
		}

		slots = append(slots, AvailabilitySlot{
			StartTime: slotStart.Format("15:04"),
			EndTime:   slotEnd.Format("15:04"),
			Available: !taken,
		})
	}

	return slots, nil
}

func dateIn(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
