package notify

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/zighstudio/salon-scheduler/internal/domain/schedule"
	"github.com/zighstudio/salon-scheduler/internal/models"
)

const (
	batchSize   = 10
	maxAttempts = 3
)

// Sender delivers one rendered notification. The engine never calls it;
// delivery and its retries live entirely on this side of the table.
type Sender interface {
	Send(ctx context.Context, n *models.Notification) error
}

// LogSender stands in for a real mail transport: it logs the message and
// reports success. Deployments plug an SMTP-backed Sender here.
type LogSender struct {
	Log zerolog.Logger
}

func (s LogSender) Send(_ context.Context, n *models.Notification) error {
	s.Log.Info().
		Uint("notification_id", n.ID).
		Str("type", n.Type).
		Str("recipient", n.User.Email).
		Str("subject", n.Subject).
		Msg("notification delivered")
	return nil
}

// Dispatcher owns the delivery lifecycle of notification rows written by the
// scheduling engine: poll pending, send, mark sent/failed, give up after
// repeated failures. It also schedules next-day reminders and purges old rows.
type Dispatcher struct {
	db     *gorm.DB
	sender Sender
	log    zerolog.Logger
	stop   chan struct{}
}

func NewDispatcher(db *gorm.DB, sender Sender, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		db:     db,
		sender: sender,
		log:    log,
		stop:   make(chan struct{}),
	}
}

// Start launches the poll loop and the daily maintenance loop.
func (d *Dispatcher) Start(pollInterval time.Duration) {
	go func() {
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := d.ProcessPending(context.Background(), time.Now()); err != nil {
					d.log.Error().Err(err).Msg("notification processing failed")
				}
			case <-d.stop:
				return
			}
		}
	}()

	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				now := time.Now()
				if n, err := d.ScheduleReminders(context.Background(), now); err != nil {
					d.log.Error().Err(err).Msg("reminder scheduling failed")
				} else {
					d.log.Info().Int("count", n).Msg("reminders scheduled")
				}
				if err := d.CleanupOld(context.Background(), now); err != nil {
					d.log.Error().Err(err).Msg("notification cleanup failed")
				}
			case <-d.stop:
				return
			}
		}
	}()
}

func (d *Dispatcher) Stop() {
	close(d.stop)
}

// ProcessPending delivers one batch of due notifications. A failed send
// increments the attempt count and flips the row to failed once attempts
// reach the cap; appointment state is never touched.
func (d *Dispatcher) ProcessPending(ctx context.Context, now time.Time) error {
	var pending []models.Notification
	err := d.db.WithContext(ctx).
		Preload("User").
		Where("status = ? AND scheduled_at <= ?", models.NotificationPending, now).
		Order("created_at ASC").
		Limit(batchSize).
		Find(&pending).Error
	if err != nil {
		return err
	}

	for i := range pending {
		n := &pending[i]

		if err := d.sender.Send(ctx, n); err != nil {
			d.log.Warn().Err(err).Uint("notification_id", n.ID).Msg("notification send failed")

			n.Attempts++
			n.Status = models.NotificationPending
			if n.Attempts >= maxAttempts {
				n.Status = models.NotificationFailed
			}
			if err := d.db.WithContext(ctx).Save(n).Error; err != nil {
				return err
			}
			continue
		}

		sentAt := now
		n.Status = models.NotificationSent
		n.SentAt = &sentAt
		if err := d.db.WithContext(ctx).Save(n).Error; err != nil {
			return err
		}
	}

	return nil
}

// ScheduleReminders enqueues a reminder for each of tomorrow's pending or
// confirmed appointments, at most once per appointment per day, delivered
// at 18:00 today.
func (d *Dispatcher) ScheduleReminders(ctx context.Context, now time.Time) (int, error) {
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	tomorrow := today.Add(24 * time.Hour)
	dayAfter := tomorrow.Add(24 * time.Hour)

	var appointments []models.Appointment
	err := d.db.WithContext(ctx).
		Where("status IN ? AND start_time >= ? AND start_time < ?",
			schedule.ActiveStatuses(), tomorrow, dayAfter).
		Find(&appointments).Error
	if err != nil {
		return 0, err
	}

	deliverAt := time.Date(now.Year(), now.Month(), now.Day(), 18, 0, 0, 0, loc)

	scheduled := 0
	for i := range appointments {
		ap := &appointments[i]

		var existing int64
		err := d.db.WithContext(ctx).
			Model(&models.Notification{}).
			Where("appointment_id = ? AND type = ? AND created_at >= ?",
				ap.ID, models.NotificationTypeReminder, today).
			Count(&existing).Error
		if err != nil {
			return scheduled, err
		}
		if existing > 0 {
			continue
		}

		if err := d.db.WithContext(ctx).Create(Reminder(ap, deliverAt)).Error; err != nil {
			return scheduled, err
		}
		scheduled++
	}

	return scheduled, nil
}

// CleanupOld removes delivered rows older than 30 days and permanently
// failed rows older than 7 days.
func (d *Dispatcher) CleanupOld(ctx context.Context, now time.Time) error {
	err := d.db.WithContext(ctx).
		Where("status = ? AND sent_at < ?", models.NotificationSent, now.AddDate(0, 0, -30)).
		Delete(&models.Notification{}).Error
	if err != nil {
		return err
	}

	return d.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", models.NotificationFailed, now.AddDate(0, 0, -7)).
		Delete(&models.Notification{}).Error
}
