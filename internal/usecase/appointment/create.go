package appointment

import (
	"context"
	"time"

	"github.com/zighstudio/salon-scheduler/internal/audit"
	"github.com/zighstudio/salon-scheduler/internal/catalog"
	"github.com/zighstudio/salon-scheduler/internal/domain/schedule"
	"github.com/zighstudio/salon-scheduler/internal/httperr"
	"github.com/zighstudio/salon-scheduler/internal/models"
	"github.com/zighstudio/salon-scheduler/internal/notify"
)

// ======================================================
// INPUT
// ======================================================

type CreateAppointmentInput struct {
	ClientUserID uint
	ServiceID    uint
	Start        time.Time
	EmployeeID   *uint
	Notes        string
}

// ======================================================
// USE CASE
// ======================================================

type CreateAppointment struct {
	repo    schedule.Repository
	catalog *catalog.Catalog
	audit   *audit.Dispatcher
}

func NewCreateAppointment(
	repo schedule.Repository,
	cat *catalog.Catalog,
	audit *audit.Dispatcher,
) *CreateAppointment {
	return &CreateAppointment{
		repo:    repo,
		catalog: cat,
		audit:   audit,
	}
}

// Execute books an appointment. The conflict check and the two inserts
// (appointment + confirmation notification) share one transaction: no
// booking is ever committed without its notification queued, and two
// concurrent requests for the same employee/window cannot both pass.
func (uc *CreateAppointment) Execute(
	ctx context.Context,
	in CreateAppointmentInput,
) (*models.Appointment, error) {

	svc, err := uc.catalog.ActiveByID(ctx, in.ServiceID)
	if err != nil {
		return nil, err
	}

	end := in.Start.Add(time.Duration(svc.DurationMinutes) * time.Minute)

	ap := &models.Appointment{
		ClientUserID: in.ClientUserID,
		EmployeeID:   in.EmployeeID,
		ServiceID:    svc.ID,
		StartTime:    in.Start,
		EndTime:      end,
		Status:       string(schedule.InitialStatus(in.EmployeeID != nil)),
		Notes:        in.Notes,
	}

	err = uc.repo.InTx(ctx, func(tx schedule.Repository) error {
		if in.EmployeeID != nil {
			count, err := tx.CountOverlapping(ctx, in.EmployeeID, in.Start, end, 0)
			if err != nil {
				return err
			}
			if count > 0 {
				return httperr.ConflictErr(
					"time_conflict",
					"L'employé a déjà un rendez-vous sur cette plage horaire.",
				)
			}
		}

		if err := tx.CreateAppointment(ctx, ap); err != nil {
			return err
		}

		return tx.CreateNotification(ctx, notify.Confirmation(ap, time.Now()))
	})

	if err != nil {
		if httperr.IsExclusionConflict(err) {
			return nil, httperr.ConflictErr(
				"time_conflict",
				"L'employé a déjà un rendez-vous sur cette plage horaire.",
			)
		}
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &in.ClientUserID,
		Action:   "appointment_created",
		Entity:   "appointment",
		EntityID: &ap.ID,
	})

	return ap, nil
}
