package db

import (
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/zighstudio/salon-scheduler/internal/config"
	"github.com/zighstudio/salon-scheduler/internal/models"
)

func NewDB(cfg *config.Config, log zerolog.Logger) *gorm.DB {
	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt: true,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to get sql.DB")
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate")
	}

	return db
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Service{},
		&models.Employee{},
		&models.WorkingHours{},
		&models.Appointment{},
		&models.AppointmentHistory{},
		&models.Notification{},
		&models.AuditLog{},
	); err != nil {
		return err
	}

	// Database-side overlap guard: two concurrent inserts for the same
	// employee and window must not both commit, even if each passed the
	// application-level conflict check before the other's row was visible.
	// Only Postgres supports exclusion constraints; the sqlite databases
	// used in tests rely on the in-transaction locked check alone.
	if db.Dialector.Name() == "postgres" {
		for _, stmt := range []string{
			`CREATE EXTENSION IF NOT EXISTS btree_gist`,
			`ALTER TABLE appointments DROP CONSTRAINT IF EXISTS appointments_employee_no_overlap`,
			AppointmentsNoOverlapDDL,
		} {
			if err := db.Exec(stmt).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

// AppointmentsNoOverlapDDL serializes concurrent bookings at the store.
// gorm migrates time.Time columns as timestamptz, so the range type must be
// tstzrange; tsrange would not resolve against these columns.
const AppointmentsNoOverlapDDL = `
    ALTER TABLE appointments
    ADD CONSTRAINT appointments_employee_no_overlap
    EXCLUDE USING gist (
        employee_id WITH =,
        tstzrange(start_time, end_time) WITH &&
    )
    WHERE (employee_id IS NOT NULL AND status IN ('pending', 'confirmed'))
`
