package db

import (
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/zighstudio/salon-scheduler/internal/models"
)

func openSqlite(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	return db
}

func TestMigrateCreatesSchema(t *testing.T) {
	db := openSqlite(t)

	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	for _, model := range []any{
		&models.User{},
		&models.Service{},
		&models.Employee{},
		&models.WorkingHours{},
		&models.Appointment{},
		&models.AppointmentHistory{},
		&models.Notification{},
		&models.AuditLog{},
	} {
		if !db.Migrator().HasTable(model) {
			t.Errorf("missing table for %T", model)
		}
	}

	// Re-running must be a no-op, the constraint DDL included.
	if err := Migrate(db); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestOverlapConstraintMatchesColumnTypes(t *testing.T) {
	// gorm maps time.Time to timestamptz on Postgres; tsrange has no
	// overload for those columns, so the DDL would fail to apply and the
	// store would lose its overlap guard.
	if !strings.Contains(AppointmentsNoOverlapDDL, "tstzrange(start_time, end_time)") {
		t.Fatal("overlap constraint must use tstzrange over the timestamptz columns")
	}
	if !strings.Contains(AppointmentsNoOverlapDDL, "'pending', 'confirmed'") {
		t.Fatal("overlap constraint must only cover statuses that block bookings")
	}
	if !strings.Contains(AppointmentsNoOverlapDDL, "employee_id IS NOT NULL") {
		t.Fatal("unassigned bookings must not exclude each other")
	}
}
