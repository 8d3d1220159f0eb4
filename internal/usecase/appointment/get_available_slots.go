package appointment

import (
	"context"
	"time"

	"github.com/zighstudio/salon-scheduler/internal/catalog"
	"github.com/zighstudio/salon-scheduler/internal/domain/schedule"
	"github.com/zighstudio/salon-scheduler/internal/models"
)

type GetAvailableSlots struct {
	repo    schedule.Repository
	catalog *catalog.Catalog
}

func NewGetAvailableSlots(
	repo schedule.Repository,
	cat *catalog.Catalog,
) *GetAvailableSlots {
	return &GetAvailableSlots{
		repo:    repo,
		catalog: cat,
	}
}

// Execute enumerates free slots for a day, ascending by start. With an
// employee the check is scoped to that employee's bookings; without one it is
// salon-wide: any booked appointment blocks the candidate, and working
// hours are not consulted, so a "free" salon-wide slot may still have nobody
// rostered to work it.
func (uc *GetAvailableSlots) Execute(
	ctx context.Context,
	date time.Time,
	serviceID uint,
	employeeID *uint,
) ([]schedule.Slot, error) {

	svc, err := uc.catalog.ByID(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	duration := time.Duration(svc.DurationMinutes) * time.Minute

	loc := date.Location()
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	dayEnd := dayStart.Add(24 * time.Hour)

	booked, err := uc.repo.ListDayAppointments(ctx, employeeID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	slots := []schedule.Slot{}
	for _, start := range schedule.CandidateStarts(date) {
		end := start.Add(duration)

		if !overlapsAny(booked, start, end) {
			slots = append(slots, schedule.Slot{Start: start, End: end})
		}
	}

	return slots, nil
}

func overlapsAny(booked []models.Appointment, start, end time.Time) bool {
	for _, ap := range booked {
		if schedule.Overlaps(start, end, ap.StartTime, ap.EndTime) {
			return true
		}
	}
	return false
}
