package models

import "time"

// WorkingHours holds one weekday window per employee. Weekday follows the
// ISO convention: 1=Monday .. 7=Sunday. An employee without a row for a
// weekday does not work that day.
type WorkingHours struct {
	ID uint `gorm:"primaryKey" json:"id"`

	EmployeeID uint `gorm:"uniqueIndex:idx_working_hours_employee_weekday;not null" json:"employee_id"`
	Weekday    int  `gorm:"uniqueIndex:idx_working_hours_employee_weekday;not null" json:"weekday"`

	StartTime string `gorm:"size:5;not null" json:"start_time"`
	EndTime   string `gorm:"size:5;not null" json:"end_time"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
