package dto

import (
	"time"

	"github.com/zighstudio/salon-scheduler/internal/models"
)

type AppointmentDTO struct {
	ID           uint      `json:"id"`
	ServiceID    uint      `json:"service_id"`
	ServiceName  string    `json:"service_name"`
	ClientName   string    `json:"client_name"`
	ClientEmail  string    `json:"client_email"`
	ClientPhone  string    `json:"client_phone"`
	EmployeeID   *uint     `json:"employee_id"`
	EmployeeName string    `json:"employee_name,omitempty"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	Status       string    `json:"status"`
	Notes        string    `json:"notes"`
	CancelReason string    `json:"cancel_reason,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func FromAppointment(ap *models.Appointment) AppointmentDTO {
	out := AppointmentDTO{
		ID:           ap.ID,
		ServiceID:    ap.ServiceID,
		ServiceName:  ap.Service.Name,
		ClientName:   ap.Client.FullName(),
		ClientEmail:  ap.Client.Email,
		ClientPhone:  ap.Client.Phone,
		EmployeeID:   ap.EmployeeID,
		StartTime:    ap.StartTime,
		EndTime:      ap.EndTime,
		Status:       ap.Status,
		Notes:        ap.Notes,
		CancelReason: ap.CancelReason,
		CreatedAt:    ap.CreatedAt,
	}

	if ap.Employee != nil {
		out.EmployeeName = ap.Employee.User.FullName()
	}

	return out
}

func FromAppointments(aps []models.Appointment) []AppointmentDTO {
	out := make([]AppointmentDTO, 0, len(aps))
	for i := range aps {
		out = append(out, FromAppointment(&aps[i]))
	}
	return out
}
