package appointment

import (
	"context"

	"github.com/zighstudio/salon-scheduler/internal/domain/schedule"
	"github.com/zighstudio/salon-scheduler/internal/models"
)

// CancelAppointment rides the status machinery; the reason lands on the row,
// in the history entry's transaction and in the notification body. Cancelling
// twice surfaces as already_cancelled rather than a silent no-op.
type CancelAppointment struct {
	update *UpdateAppointmentStatus
}

func NewCancelAppointment(update *UpdateAppointmentStatus) *CancelAppointment {
	return &CancelAppointment{update: update}
}

func (uc *CancelAppointment) Execute(
	ctx context.Context,
	appointmentID uint,
	actorID *uint,
	reason string,
) (*models.Appointment, error) {

	return uc.update.Execute(ctx, UpdateStatusInput{
		AppointmentID: appointmentID,
		NewStatus:     schedule.StatusCancelled,
		ActorID:       actorID,
		Reason:        reason,
	})
}
