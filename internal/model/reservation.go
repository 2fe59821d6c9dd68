package model

import (
	"time"

	"github.com/google/uuid"
)

// Recurrence frequencies accepted on a reservation.
const (
	RecurringDaily  = "daily"
	RecurringWeekly = "weekly"
)

type Reservation struct {
	ID     int64  `json:"id"`
	RoomID int64  `json:"room_id"`
	UserID int64  `json:"user_id"`
	Title  string `json:"title"`

	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`

	// Recurring is nil for one-off reservations. When set, RecurringUntil is
	// the inclusive last calendar date of the series and RecurringGroupID
	// links every row materialized from the same request.
	Recurring        *string    `json:"recurring"`
	RecurringUntil   *time.Time `json:"recurring_until"`
	RecurringGroupID *uuid.UUID `json:"recurring_group_id,omitempty"`

	// CancelledAt is nil while the reservation is active. Rows are never
	// deleted.
	CancelledAt *time.Time `json:"cancelled_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Active reports whether the reservation still occupies its room.
func (r *Reservation) Active() bool {
	return r.CancelledAt == nil
}
