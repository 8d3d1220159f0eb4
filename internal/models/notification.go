package models

import "time"

const (
	NotificationTypeConfirmation = "confirmation"
	NotificationTypeCancellation = "cancellation"
	NotificationTypeCompletion   = "completion"
	NotificationTypeReminder     = "reminder"
)

const (
	NotificationPending = "pending"
	NotificationSent    = "sent"
	NotificationFailed  = "failed"
)

// Notification rows are written by the scheduling engine in the same
// transaction as the appointment mutation that triggers them. Delivery is
// owned by the notify dispatcher; its failures never touch appointments.
type Notification struct {
	ID uint `gorm:"primaryKey" json:"id"`

	AppointmentID uint `gorm:"not null;index" json:"appointment_id"`

	UserID uint `gorm:"not null" json:"user_id"`
	User   User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`

	// Type is set at creation and decides how the dispatcher renders the
	// message; it is never inferred from the subject text.
	Type    string `gorm:"size:20;not null" json:"type"`
	Channel string `gorm:"size:10;default:'email'" json:"channel"`

	Subject string `gorm:"size:100" json:"subject"`
	Body    string `gorm:"type:text" json:"body"`

	ScheduledAt time.Time  `gorm:"index" json:"scheduled_at"`
	Status      string     `gorm:"size:10;default:'pending';index" json:"status"`
	Attempts    int        `gorm:"default:0" json:"attempts"`
	SentAt      *time.Time `json:"sent_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
