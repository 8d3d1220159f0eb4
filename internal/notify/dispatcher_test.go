package notify

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/zighstudio/salon-scheduler/internal/models"
)

func setupNotifyDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Service{},
		&models.Appointment{},
		&models.Notification{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedNotification(t *testing.T, db *gorm.DB, status string, scheduledAt time.Time) models.Notification {
	u := models.User{FirstName: "Claire", LastName: "Petit", Email: fmt.Sprintf("c%d@example.com", time.Now().UnixNano()), PasswordHash: "x", Role: models.RoleClient, IsActive: true}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	n := models.Notification{
		AppointmentID: 1,
		UserID:        u.ID,
		Type:          models.NotificationTypeConfirmation,
		Channel:       "email",
		Subject:       "Confirmation de rendez-vous",
		Body:          "test",
		ScheduledAt:   scheduledAt,
		Status:        status,
	}
	if err := db.Create(&n).Error; err != nil {
		t.Fatalf("seed notification: %v", err)
	}
	return n
}

type failingSender struct{}

func (failingSender) Send(context.Context, *models.Notification) error {
	return errors.New("smtp down")
}

type countingSender struct{ sent int }

func (s *countingSender) Send(context.Context, *models.Notification) error {
	s.sent++
	return nil
}

func TestProcessPendingMarksSent(t *testing.T) {
	db := setupNotifyDB(t)
	now := time.Now()
	n := seedNotification(t, db, models.NotificationPending, now.Add(-time.Minute))

	sender := &countingSender{}
	d := NewDispatcher(db, sender, zerolog.Nop())

	if err := d.ProcessPending(context.Background(), now); err != nil {
		t.Fatalf("process: %v", err)
	}
	if sender.sent != 1 {
		t.Fatalf("expected one delivery, got %d", sender.sent)
	}

	var stored models.Notification
	db.First(&stored, n.ID)
	if stored.Status != models.NotificationSent {
		t.Fatalf("expected sent, got %s", stored.Status)
	}
	if stored.SentAt == nil {
		t.Fatal("sent_at not recorded")
	}
}

func TestProcessPendingSkipsFutureRows(t *testing.T) {
	db := setupNotifyDB(t)
	now := time.Now()
	seedNotification(t, db, models.NotificationPending, now.Add(time.Hour))

	sender := &countingSender{}
	d := NewDispatcher(db, sender, zerolog.Nop())

	if err := d.ProcessPending(context.Background(), now); err != nil {
		t.Fatalf("process: %v", err)
	}
	if sender.sent != 0 {
		t.Fatalf("future row delivered early")
	}
}

func TestProcessPendingGivesUpAfterThreeAttempts(t *testing.T) {
	db := setupNotifyDB(t)
	now := time.Now()
	n := seedNotification(t, db, models.NotificationPending, now.Add(-time.Minute))

	d := NewDispatcher(db, failingSender{}, zerolog.Nop())

	for i := 1; i <= 3; i++ {
		if err := d.ProcessPending(context.Background(), now); err != nil {
			t.Fatalf("process %d: %v", i, err)
		}

		var stored models.Notification
		db.First(&stored, n.ID)
		if stored.Attempts != i {
			t.Fatalf("after round %d expected %d attempts, got %d", i, i, stored.Attempts)
		}
		if i < 3 && stored.Status != models.NotificationPending {
			t.Fatalf("row should stay pending until the cap, got %s", stored.Status)
		}
		if i == 3 && stored.Status != models.NotificationFailed {
			t.Fatalf("row should be failed at the cap, got %s", stored.Status)
		}
	}

	// A failed row is never retried.
	if err := d.ProcessPending(context.Background(), now); err != nil {
		t.Fatalf("process: %v", err)
	}
	var stored models.Notification
	db.First(&stored, n.ID)
	if stored.Attempts != 3 {
		t.Fatalf("failed row retried, attempts %d", stored.Attempts)
	}
}

func TestScheduleRemindersOncePerDay(t *testing.T) {
	db := setupNotifyDB(t)
	now := time.Now()

	u := models.User{FirstName: "Claire", LastName: "Petit", Email: "claire@example.com", PasswordHash: "x", Role: models.RoleClient, IsActive: true}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	tomorrow := now.Add(24 * time.Hour)
	ap := models.Appointment{
		ClientUserID: u.ID,
		ServiceID:    1,
		StartTime:    tomorrow,
		EndTime:      tomorrow.Add(30 * time.Minute),
		Status:       "confirmed",
	}
	if err := db.Create(&ap).Error; err != nil {
		t.Fatalf("seed appointment: %v", err)
	}

	d := NewDispatcher(db, &countingSender{}, zerolog.Nop())

	n, err := d.ScheduleReminders(context.Background(), now)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected one reminder, got %d", n)
	}

	var reminder models.Notification
	if err := db.Where("appointment_id = ? AND type = ?", ap.ID, models.NotificationTypeReminder).First(&reminder).Error; err != nil {
		t.Fatalf("reminder row missing: %v", err)
	}
	if reminder.ScheduledAt.Hour() != 18 {
		t.Fatalf("reminder should deliver at 18:00, got %s", reminder.ScheduledAt.Format("15:04"))
	}

	// Second run the same day is a no-op.
	n, err = d.ScheduleReminders(context.Background(), now)
	if err != nil {
		t.Fatalf("second schedule: %v", err)
	}
	if n != 0 {
		t.Fatalf("reminder duplicated, got %d", n)
	}
}

func TestScheduleRemindersIgnoresCancelled(t *testing.T) {
	db := setupNotifyDB(t)
	now := time.Now()

	u := models.User{FirstName: "Claire", LastName: "Petit", Email: "claire@example.com", PasswordHash: "x", Role: models.RoleClient, IsActive: true}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	tomorrow := now.Add(24 * time.Hour)
	ap := models.Appointment{
		ClientUserID: u.ID,
		ServiceID:    1,
		StartTime:    tomorrow,
		EndTime:      tomorrow.Add(30 * time.Minute),
		Status:       "cancelled",
	}
	if err := db.Create(&ap).Error; err != nil {
		t.Fatalf("seed appointment: %v", err)
	}

	d := NewDispatcher(db, &countingSender{}, zerolog.Nop())
	n, err := d.ScheduleReminders(context.Background(), now)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	if n != 0 {
		t.Fatalf("cancelled booking got a reminder")
	}
}

func TestCleanupOld(t *testing.T) {
	db := setupNotifyDB(t)
	now := time.Now()

	oldSent := seedNotification(t, db, models.NotificationSent, now)
	sentAt := now.AddDate(0, 0, -40)
	db.Model(&oldSent).Update("sent_at", sentAt)

	freshSent := seedNotification(t, db, models.NotificationSent, now)
	recent := now.AddDate(0, 0, -2)
	db.Model(&freshSent).Update("sent_at", recent)

	oldFailed := seedNotification(t, db, models.NotificationFailed, now)
	db.Model(&oldFailed).Update("created_at", now.AddDate(0, 0, -10))

	d := NewDispatcher(db, &countingSender{}, zerolog.Nop())
	if err := d.CleanupOld(context.Background(), now); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	var remaining []models.Notification
	db.Find(&remaining)
	if len(remaining) != 1 {
		t.Fatalf("expected one surviving row, got %d", len(remaining))
	}
	if remaining[0].ID != freshSent.ID {
		t.Fatalf("wrong row survived cleanup")
	}
}
