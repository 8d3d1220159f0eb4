package models

import "time"

const HistoryActionStatusChanged = "status_changed"

// AppointmentHistory is an append-only log. Rows are written inside the same
// transaction as the status change they record and are never updated.
type AppointmentHistory struct {
	ID uint `gorm:"primaryKey" json:"id"`

	AppointmentID uint   `gorm:"not null;index" json:"appointment_id"`
	Action        string `gorm:"size:30;not null" json:"action"`

	OldValue string `gorm:"size:20" json:"old_value"`
	NewValue string `gorm:"size:20" json:"new_value"`

	// Nil for system-driven changes.
	ChangedBy *uint `json:"changed_by"`

	ChangedAt time.Time `gorm:"autoCreateTime" json:"changed_at"`
}
