package appointment

import (
	"context"
	"time"

	"github.com/zighstudio/salon-scheduler/internal/audit"
	"github.com/zighstudio/salon-scheduler/internal/domain/schedule"
	"github.com/zighstudio/salon-scheduler/internal/httperr"
	"github.com/zighstudio/salon-scheduler/internal/models"
	"github.com/zighstudio/salon-scheduler/internal/notify"
)

type AssignAutoEmployee struct {
	repo  schedule.Repository
	audit *audit.Dispatcher
}

func NewAssignAutoEmployee(
	repo schedule.Repository,
	audit *audit.Dispatcher,
) *AssignAutoEmployee {
	return &AssignAutoEmployee{
		repo:  repo,
		audit: audit,
	}
}

// Execute picks the first available employee for a pending, unassigned
// appointment: available flag set, active user account, working-hours window
// covering the booking, no conflicting appointment. Candidates are ordered by
// name so the choice is deterministic. Assignment and the transition to
// confirmed commit together.
func (uc *AssignAutoEmployee) Execute(
	ctx context.Context,
	appointmentID uint,
) (*models.Appointment, error) {

	ap, err := uc.repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	if ap.EmployeeID != nil {
		return nil, httperr.InvalidStateErr(
			"employee_already_assigned",
			"Ce rendez-vous a déjà un employé assigné.",
		)
	}
	if schedule.Status(ap.Status) != schedule.StatusPending {
		return nil, httperr.InvalidStateErr(
			"appointment_not_pending",
			"Seul un rendez-vous en attente peut être assigné.",
		)
	}

	weekday := schedule.ISOWeekday(ap.StartTime)
	startHM := ap.StartTime.Format("15:04")
	endHM := ap.EndTime.Format("15:04")

	candidates, err := uc.repo.ListCandidateEmployees(ctx, weekday, startHM, endHM)
	if err != nil {
		return nil, err
	}

	var chosen *models.Employee

	err = uc.repo.InTx(ctx, func(tx schedule.Repository) error {
		for i := range candidates {
			cand := &candidates[i]

			count, err := tx.CountOverlapping(ctx, &cand.ID, ap.StartTime, ap.EndTime, ap.ID)
			if err != nil {
				return err
			}
			if count > 0 {
				continue
			}

			chosen = cand
			break
		}

		if chosen == nil {
			return httperr.ErrBusiness(
				httperr.KindNoAvailableEmployee,
				"no_available_employee",
				"Aucun employé disponible pour ce créneau.",
			)
		}

		oldStatus := ap.Status
		ap.EmployeeID = &chosen.ID
		ap.Status = string(schedule.StatusConfirmed)

		if err := tx.SaveAppointment(ctx, ap); err != nil {
			return err
		}

		hist := &models.AppointmentHistory{
			AppointmentID: ap.ID,
			Action:        models.HistoryActionStatusChanged,
			OldValue:      oldStatus,
			NewValue:      ap.Status,
		}
		if err := tx.AppendHistory(ctx, hist); err != nil {
			return err
		}

		return tx.CreateNotification(ctx, notify.Confirmation(ap, time.Now()))
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		Action:   "appointment_auto_assigned",
		Entity:   "appointment",
		EntityID: &ap.ID,
		Metadata: map[string]any{"employee_id": chosen.ID},
	})

	return uc.repo.GetAppointment(ctx, ap.ID)
}
