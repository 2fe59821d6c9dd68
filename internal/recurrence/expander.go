// Package recurrence expands a booking request into the concrete occurrences
// it materializes as.
package recurrence

import "time"

// Occurrence is one concrete interval derived from a booking request.
type Occurrence struct {
	Start time.Time
	End   time.Time
}

// Single wraps a non-recurring request as its only occurrence. This path
// never enters the stepping loop; weekday validity of a one-off request is
// the validator's job.
func Single(start, end time.Time) []Occurrence {
	return []Occurrence{{Start: start, End: end}}
}

// Expand steps the original interval forward by one day ("daily") or seven
// days ("weekly") while the occurrence's calendar date is on or before until,
// keeping the duration fixed.
//
// Occurrences that start on a weekend are dropped from the series rather
// than reported invalid; only a single request (or a series that filtered
// down to nothing) is rejected through the weekday rule. The two paths are
// deliberately separate.
//
// The result may be empty; callers decide how to surface that.
func Expand(start, end time.Time, frequency string, until time.Time) []Occurrence {
	stepDays := 0
	switch frequency {
	case "daily":
		stepDays = 1
	case "weekly":
		stepDays = 7
	default:
		return nil
	}

	duration := end.Sub(start)
	lastDate := dateOf(until, start.Location())

	var occurrences []Occurrence
	for current := start; !dateOf(current, current.Location()).After(lastDate); current = current.AddDate(0, 0, stepDays) {
		if isWeekend(current.Weekday()) {
			continue
		}
		occurrences = append(occurrences, Occurrence{
			Start: current,
			End:   current.Add(duration),
		})
	}

	return occurrences
}

func dateOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func isWeekend(day time.Weekday) bool {
	return day == time.Saturday || day == time.Sunday
}
