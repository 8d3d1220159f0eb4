package appointment

import (
	"context"
	"time"

	"github.com/zighstudio/salon-scheduler/internal/audit"
	"github.com/zighstudio/salon-scheduler/internal/domain/schedule"
	"github.com/zighstudio/salon-scheduler/internal/models"
	"github.com/zighstudio/salon-scheduler/internal/notify"
)

type UpdateStatusInput struct {
	AppointmentID uint
	NewStatus     schedule.Status
	ActorID       *uint
	Reason        string
}

type UpdateAppointmentStatus struct {
	repo  schedule.Repository
	audit *audit.Dispatcher
}

func NewUpdateAppointmentStatus(
	repo schedule.Repository,
	audit *audit.Dispatcher,
) *UpdateAppointmentStatus {
	return &UpdateAppointmentStatus{
		repo:  repo,
		audit: audit,
	}
}

// Execute drives the status state machine. Status write, history append and
// (when the target status notifies the client) the notification insert are
// one atomic unit: a status change is never observable without its history
// entry.
func (uc *UpdateAppointmentStatus) Execute(
	ctx context.Context,
	in UpdateStatusInput,
) (*models.Appointment, error) {

	ap, err := uc.repo.GetAppointment(ctx, in.AppointmentID)
	if err != nil {
		return nil, err
	}

	oldStatus := schedule.Status(ap.Status)
	if err := schedule.CanTransition(oldStatus, in.NewStatus); err != nil {
		return nil, err
	}

	err = uc.repo.InTx(ctx, func(tx schedule.Repository) error {
		ap.Status = string(in.NewStatus)
		if in.NewStatus == schedule.StatusCancelled {
			ap.CancelReason = in.Reason
		}

		if err := tx.SaveAppointment(ctx, ap); err != nil {
			return err
		}

		hist := &models.AppointmentHistory{
			AppointmentID: ap.ID,
			Action:        models.HistoryActionStatusChanged,
			OldValue:      string(oldStatus),
			NewValue:      string(in.NewStatus),
			ChangedBy:     in.ActorID,
		}
		if err := tx.AppendHistory(ctx, hist); err != nil {
			return err
		}

		if n := notify.ForStatus(ap, in.NewStatus, in.Reason, time.Now()); n != nil {
			return tx.CreateNotification(ctx, n)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   in.ActorID,
		Action:   "appointment_status_" + string(in.NewStatus),
		Entity:   "appointment",
		EntityID: &ap.ID,
	})

	return ap, nil
}
