package schedule

import "time"

// Salon opening window. Candidate starts are discretized on a fixed grid
// regardless of service duration; the last candidate begins one step before
// closing, so a long service may run past the nominal closing time.
const (
	OpeningHour     = 9
	ClosingHour     = 18
	SlotStepMinutes = 30
)

type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// CandidateStarts enumerates the grid of bookable start instants for a day,
// ascending, in the day's location.
func CandidateStarts(day time.Time) []time.Time {
	loc := day.Location()
	open := time.Date(day.Year(), day.Month(), day.Day(), OpeningHour, 0, 0, 0, loc)
	close := time.Date(day.Year(), day.Month(), day.Day(), ClosingHour, 0, 0, 0, loc)

	var starts []time.Time
	for cur := open; cur.Before(close); cur = cur.Add(SlotStepMinutes * time.Minute) {
		starts = append(starts, cur)
	}
	return starts
}

// Overlaps reports whether the half-open intervals [s1,e1) and [s2,e2)
// intersect.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && e1.After(s2)
}

// ISOWeekday maps time.Weekday onto the 1=Monday..7=Sunday convention used
// by the working_hours table.
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}
