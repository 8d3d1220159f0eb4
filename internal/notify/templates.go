package notify

import (
	"time"

	"github.com/zighstudio/salon-scheduler/internal/domain/schedule"
	"github.com/zighstudio/salon-scheduler/internal/models"
)

const dateFormat = "02/01/2006 à 15:04"

func newNotification(ap *models.Appointment, typ, subject, body string, scheduledAt time.Time) *models.Notification {
	return &models.Notification{
		AppointmentID: ap.ID,
		UserID:        ap.ClientUserID,
		Type:          typ,
		Channel:       "email",
		Subject:       subject,
		Body:          body,
		ScheduledAt:   scheduledAt,
		Status:        models.NotificationPending,
	}
}

// Confirmation is queued in the same transaction as appointment creation.
func Confirmation(ap *models.Appointment, now time.Time) *models.Notification {
	return newNotification(
		ap,
		models.NotificationTypeConfirmation,
		"Confirmation de rendez-vous",
		"Votre rendez-vous a été confirmé pour le "+ap.StartTime.Format(dateFormat)+".",
		now,
	)
}

func Cancellation(ap *models.Appointment, reason string, now time.Time) *models.Notification {
	body := "Votre rendez-vous du " + ap.StartTime.Format(dateFormat) + " a été annulé."
	if reason != "" {
		body += " Raison: " + reason
	}
	return newNotification(ap, models.NotificationTypeCancellation, "Rendez-vous annulé", body, now)
}

func Completion(ap *models.Appointment, now time.Time) *models.Notification {
	return newNotification(
		ap,
		models.NotificationTypeCompletion,
		"Rendez-vous terminé",
		"Votre rendez-vous du "+ap.StartTime.Format(dateFormat)+" a été marqué comme terminé.",
		now,
	)
}

func Reminder(ap *models.Appointment, scheduledAt time.Time) *models.Notification {
	return newNotification(
		ap,
		models.NotificationTypeReminder,
		"Rappel de rendez-vous",
		"Rappel: votre rendez-vous est prévu demain le "+ap.StartTime.Format(dateFormat)+".",
		scheduledAt,
	)
}

// ForStatus returns the notification a status transition should enqueue, or
// nil for transitions that notify nobody (no_show, back to pending).
func ForStatus(ap *models.Appointment, status schedule.Status, reason string, now time.Time) *models.Notification {
	switch status {
	case schedule.StatusConfirmed:
		return Confirmation(ap, now)
	case schedule.StatusCancelled:
		return Cancellation(ap, reason, now)
	case schedule.StatusCompleted:
		return Completion(ap, now)
	default:
		return nil
	}
}
