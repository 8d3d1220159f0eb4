package schedule

import (
	"context"
	"time"

	"github.com/zighstudio/salon-scheduler/internal/models"
)

// AppointmentFilter narrows ListAppointments. Zero values mean "no filter".
type AppointmentFilter struct {
	Status       string
	EmployeeID   *uint
	ClientUserID *uint
	DateFrom     *time.Time
	DateTo       *time.Time
	Page         int
	Limit        int
}

type Repository interface {
	// InTx runs fn against a repository bound to one transaction. Conflict
	// check and write for the same employee/window must share a transaction
	// so the store serializes concurrent writers.
	InTx(ctx context.Context, fn func(Repository) error) error

	GetAppointment(ctx context.Context, id uint) (*models.Appointment, error)
	CreateAppointment(ctx context.Context, ap *models.Appointment) error
	SaveAppointment(ctx context.Context, ap *models.Appointment) error
	ListAppointments(ctx context.Context, f AppointmentFilter) ([]models.Appointment, int64, error)

	// CountOverlapping counts pending/confirmed appointments intersecting
	// [start,end). employeeID nil means salon-wide; excludeID skips an
	// appointment's own row when rescheduling it.
	CountOverlapping(ctx context.Context, employeeID *uint, start, end time.Time, excludeID uint) (int64, error)

	ListDayAppointments(ctx context.Context, employeeID *uint, dayStart, dayEnd time.Time) ([]models.Appointment, error)

	AppendHistory(ctx context.Context, h *models.AppointmentHistory) error
	ListHistory(ctx context.Context, appointmentID uint) ([]models.AppointmentHistory, error)

	CreateNotification(ctx context.Context, n *models.Notification) error

	// ListCandidateEmployees returns available employees with active user
	// accounts whose working-hours window for weekday covers [startHM,endHM],
	// ordered by name for deterministic auto-assignment.
	ListCandidateEmployees(ctx context.Context, weekday int, startHM, endHM string) ([]models.Employee, error)

	GetWorkingHours(ctx context.Context, employeeID uint, weekday int) (*models.WorkingHours, error)
}
