package models

import "time"

// MinServiceDurationMinutes is the smallest bookable service duration.
const MinServiceDurationMinutes = 15

type Service struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"size:255" json:"description"`

	DurationMinutes int     `gorm:"not null" json:"duration_minutes"`
	Price           float64 `gorm:"type:numeric(10,2);not null" json:"price"`

	// Soft delete: deactivated services stay referenced by past appointments.
	IsActive bool `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
