package appointment

import (
	"context"
	"time"

	"github.com/zighstudio/salon-scheduler/internal/domain/schedule"
	"github.com/zighstudio/salon-scheduler/internal/models"
)

type FindAppointments struct {
	repo schedule.Repository
}

func NewFindAppointments(repo schedule.Repository) *FindAppointments {
	return &FindAppointments{repo: repo}
}

func (uc *FindAppointments) ByID(ctx context.Context, id uint) (*models.Appointment, error) {
	return uc.repo.GetAppointment(ctx, id)
}

func (uc *FindAppointments) All(
	ctx context.Context,
	f schedule.AppointmentFilter,
) ([]models.Appointment, int64, error) {
	return uc.repo.ListAppointments(ctx, f)
}

func (uc *FindAppointments) History(
	ctx context.Context,
	appointmentID uint,
) ([]models.AppointmentHistory, error) {

	if _, err := uc.repo.GetAppointment(ctx, appointmentID); err != nil {
		return nil, err
	}
	return uc.repo.ListHistory(ctx, appointmentID)
}

// HasConflict exposes the overlap predicate to callers that only need the
// boolean, e.g. a reschedule form probing a window before submitting.
func (uc *FindAppointments) HasConflict(
	ctx context.Context,
	employeeID uint,
	start, end time.Time,
	excludeAppointmentID uint,
) (bool, error) {

	count, err := uc.repo.CountOverlapping(ctx, &employeeID, start, end, excludeAppointmentID)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
