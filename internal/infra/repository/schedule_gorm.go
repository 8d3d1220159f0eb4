package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zighstudio/salon-scheduler/internal/domain/schedule"
	"github.com/zighstudio/salon-scheduler/internal/httperr"
	"github.com/zighstudio/salon-scheduler/internal/models"
)

type ScheduleGormRepository struct {
	db *gorm.DB
}

func NewScheduleGormRepository(db *gorm.DB) *ScheduleGormRepository {
	return &ScheduleGormRepository{db: db}
}

// --------------------------------------------------
// Transactions
// --------------------------------------------------

func (r *ScheduleGormRepository) InTx(
	ctx context.Context,
	fn func(schedule.Repository) error,
) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ScheduleGormRepository{db: tx})
	})
}

// --------------------------------------------------
// Appointments
// --------------------------------------------------

func (r *ScheduleGormRepository) GetAppointment(
	ctx context.Context,
	id uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Service").
		Preload("Employee").
		Preload("Employee.User").
		First(&ap, id).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, httperr.NotFoundErr("appointment_not_found", "Rendez-vous non trouvé.")
	}
	if err != nil {
		return nil, err
	}

	return &ap, nil
}

func (r *ScheduleGormRepository) CreateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return r.db.WithContext(ctx).Create(ap).Error
}

func (r *ScheduleGormRepository) SaveAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {
	return r.db.WithContext(ctx).Save(ap).Error
}

func (r *ScheduleGormRepository) ListAppointments(
	ctx context.Context,
	f schedule.AppointmentFilter,
) ([]models.Appointment, int64, error) {

	page := f.Page
	if page <= 0 {
		page = 1
	}
	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	q := r.db.WithContext(ctx).Model(&models.Appointment{})

	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.EmployeeID != nil {
		q = q.Where("employee_id = ?", *f.EmployeeID)
	}
	if f.ClientUserID != nil {
		q = q.Where("client_user_id = ?", *f.ClientUserID)
	}
	if f.DateFrom != nil {
		q = q.Where("start_time >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		q = q.Where("start_time < ?", *f.DateTo)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var aps []models.Appointment
	err := q.
		Preload("Client").
		Preload("Service").
		Preload("Employee").
		Preload("Employee.User").
		Order("start_time DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&aps).Error
	if err != nil {
		return nil, 0, err
	}

	return aps, total, nil
}

// --------------------------------------------------
// Conflicts
// --------------------------------------------------

func (r *ScheduleGormRepository) CountOverlapping(
	ctx context.Context,
	employeeID *uint,
	start time.Time,
	end time.Time,
	excludeID uint,
) (int64, error) {

	q := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where(
			"status IN ? AND start_time < ? AND end_time > ?",
			schedule.ActiveStatuses(), end, start,
		)

	// sqlite has no SELECT ... FOR UPDATE; its writer lock covers the
	// whole database anyway.
	if r.db.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	if employeeID != nil {
		q = q.Where("employee_id = ?", *employeeID)
	}
	if excludeID != 0 {
		q = q.Where("id != ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ScheduleGormRepository) ListDayAppointments(
	ctx context.Context,
	employeeID *uint,
	dayStart time.Time,
	dayEnd time.Time,
) ([]models.Appointment, error) {

	q := r.db.WithContext(ctx).
		Select("id", "employee_id", "start_time", "end_time").
		Where(
			"status IN ? AND start_time >= ? AND start_time < ?",
			schedule.ActiveStatuses(), dayStart, dayEnd,
		)

	if employeeID != nil {
		q = q.Where("employee_id = ?", *employeeID)
	}

	var aps []models.Appointment
	if err := q.Order("start_time ASC").Find(&aps).Error; err != nil {
		return nil, err
	}
	return aps, nil
}

// --------------------------------------------------
// History / notifications
// --------------------------------------------------

func (r *ScheduleGormRepository) AppendHistory(
	ctx context.Context,
	h *models.AppointmentHistory,
) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *ScheduleGormRepository) ListHistory(
	ctx context.Context,
	appointmentID uint,
) ([]models.AppointmentHistory, error) {

	var entries []models.AppointmentHistory
	err := r.db.WithContext(ctx).
		Where("appointment_id = ?", appointmentID).
		Order("changed_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *ScheduleGormRepository) CreateNotification(
	ctx context.Context,
	n *models.Notification,
) error {
	return r.db.WithContext(ctx).Create(n).Error
}

// --------------------------------------------------
// Employees
// --------------------------------------------------

func (r *ScheduleGormRepository) ListCandidateEmployees(
	ctx context.Context,
	weekday int,
	startHM string,
	endHM string,
) ([]models.Employee, error) {

	var employees []models.Employee
	err := r.db.WithContext(ctx).
		Joins("JOIN users ON users.id = employees.user_id").
		Joins("JOIN working_hours ON working_hours.employee_id = employees.id").
		Where("employees.is_available = ?", true).
		Where("users.is_active = ?", true).
		Where("working_hours.weekday = ?", weekday).
		Where("working_hours.start_time <= ? AND working_hours.end_time >= ?", startHM, endHM).
		Preload("User").
		Order("users.first_name ASC, users.last_name ASC").
		Find(&employees).Error
	if err != nil {
		return nil, err
	}
	return employees, nil
}

func (r *ScheduleGormRepository) GetWorkingHours(
	ctx context.Context,
	employeeID uint,
	weekday int,
) (*models.WorkingHours, error) {

	var wh models.WorkingHours
	err := r.db.WithContext(ctx).
		Where("employee_id = ? AND weekday = ?", employeeID, weekday).
		First(&wh).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, httperr.NotFoundErr("working_hours_not_found", "Horaires non trouvés pour ce jour.")
	}
	if err != nil {
		return nil, err
	}

	return &wh, nil
}

// Compile-time check
var _ schedule.Repository = (*ScheduleGormRepository)(nil)
