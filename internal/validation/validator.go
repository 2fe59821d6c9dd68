// Package validation evaluates a reservation occurrence against every
// business rule and reports the full violation list, not just the first hit.
package validation

import (
	"context"
	"time"

	"github.com/mfrancon/roomreserve/internal/clock"
	"github.com/mfrancon/roomreserve/internal/model"
	"github.com/mfrancon/roomreserve/internal/recurrence"
)

const (
	maxDuration           = 4 * time.Hour
	businessOpenHour      = 9
	businessCloseHour     = 18
	maxFutureReservations = 3
)

// Store answers the storage-backed questions the rule set asks. During
// admission it is bound to the transaction holding the room lock; the
// availability path binds it to plain pool reads.
type Store interface {
	OverlapExists(ctx context.Context, roomID int64, start, end time.Time) (bool, error)
	CountFutureActive(ctx context.Context, userID int64, after time.Time) (int, error)
}

type Validator struct {
	clock clock.Clock
}

func New(c clock.Clock) *Validator {
	return &Validator{clock: c}
}

// CheckRecurrence verifies the coupling between the recurrence frequency and
// its end date. These violations reject a request before expansion.
func CheckRecurrence(recurring string, hasUntil bool) Violations {
	var vs Violations

	if recurring == "" {
		if hasUntil {
			vs = vs.add("recurring_until", "can't be set without a recurring frequency")
		}
		return vs
	}

	if recurring != model.RecurringDaily && recurring != model.RecurringWeekly {
		vs = vs.add("recurring", "is not included in the list")
	}
	if !hasUntil {
		vs = vs.add("recurring_until", "can't be blank")
	}
	return vs
}

// Occurrence runs every rule against one occurrence. Rules are independent:
// an earlier failure never suppresses a later check, and a rule whose
// precondition is missing is skipped rather than failed. Storage errors from
// the overlap and quota checks abort validation entirely.
func (v *Validator) Occurrence(ctx context.Context, store Store, occ recurrence.Occurrence, user *model.User, room *model.Room) (Violations, error) {
	var vs Violations

	vs = append(vs, checkOrdering(occ)...)
	vs = append(vs, checkDuration(occ)...)
	vs = append(vs, checkBusinessHours(occ)...)
	vs = append(vs, checkCapacity(user, room)...)

	quota, err := v.checkQuota(ctx, store, user)
	if err != nil {
		return nil, err
	}
	vs = append(vs, quota...)

	overlap, err := checkOverlap(ctx, store, occ, room)
	if err != nil {
		return nil, err
	}
	vs = append(vs, overlap...)

	return vs, nil
}

func checkOrdering(occ recurrence.Occurrence) Violations {
	if occ.Start.IsZero() || occ.End.IsZero() {
		return nil
	}
	if !occ.End.After(occ.Start) {
		return Violations{{Field: "ends_at", Message: "must be after start time"}}
	}
	return nil
}

func checkDuration(occ recurrence.Occurrence) Violations {
	if occ.Start.IsZero() || occ.End.IsZero() {
		return nil
	}
	if occ.End.After(occ.Start.Add(maxDuration)) {
		return Violations{{Field: "ends_at", Message: "reservation cannot exceed 4 hours"}}
	}
	return nil
}

func checkBusinessHours(occ recurrence.Occurrence) Violations {
	if occ.Start.IsZero() || occ.End.IsZero() {
		return nil
	}

	if isWeekend(occ.Start.Weekday()) || isWeekend(occ.End.Weekday()) {
		return Violations{{Field: FieldBase, Message: "reservations must be on weekdays"}}
	}

	var vs Violations
	if occ.Start.Hour() < businessOpenHour {
		vs = vs.add("starts_at", "must be at or after 9:00 AM")
	}
	// Ending exactly at 18:00 is allowed; any minute past it is not.
	if occ.End.Hour() > businessCloseHour || (occ.End.Hour() == businessCloseHour && occ.End.Minute() > 0) {
		vs = vs.add("ends_at", "must be at or before 6:00 PM")
	}
	return vs
}

func checkCapacity(user *model.User, room *model.Room) Violations {
	if user == nil || room == nil || user.IsAdmin {
		return nil
	}
	if room.Capacity > user.MaxCapacityAllowed {
		return Violations{{Field: "room", Message: "capacity exceeds user's maximum allowed capacity"}}
	}
	return nil
}

func (v *Validator) checkQuota(ctx context.Context, store Store, user *model.User) (Violations, error) {
	if user == nil || user.IsAdmin {
		return nil, nil
	}
	count, err := store.CountFutureActive(ctx, user.ID, v.clock.Now())
	if err != nil {
		return nil, err
	}
	if count >= maxFutureReservations {
		return Violations{{Field: FieldBase, Message: "cannot have more than 3 future reservations"}}, nil
	}
	return nil, nil
}

func checkOverlap(ctx context.Context, store Store, occ recurrence.Occurrence, room *model.Room) (Violations, error) {
	if room == nil || occ.Start.IsZero() || occ.End.IsZero() {
		return nil, nil
	}
	overlaps, err := store.OverlapExists(ctx, room.ID, occ.Start, occ.End)
	if err != nil {
		return nil, err
	}
	if overlaps {
		return Violations{{Field: FieldBase, Message: "Room is already booked during this time"}}, nil
	}
	return nil, nil
}

func isWeekend(day time.Weekday) bool {
	return day == time.Saturday || day == time.Sunday
}
