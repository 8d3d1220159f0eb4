package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/zighstudio/salon-scheduler/internal/audit"
	"github.com/zighstudio/salon-scheduler/internal/catalog"
	infraRepo "github.com/zighstudio/salon-scheduler/internal/infra/repository"
	"github.com/zighstudio/salon-scheduler/internal/middleware"
	"github.com/zighstudio/salon-scheduler/internal/models"
	ucAppointment "github.com/zighstudio/salon-scheduler/internal/usecase/appointment"
)

func setupHandlerDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Service{},
		&models.Employee{},
		&models.WorkingHours{},
		&models.Appointment{},
		&models.AppointmentHistory{},
		&models.Notification{},
		&models.AuditLog{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// fakeAuth stands in for the JWT middleware in handler tests.
func fakeAuth(userID uint, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Set(middleware.ContextUserRole, role)
		c.Next()
	}
}

type handlerFixture struct {
	db          *gorm.DB
	catalog     *catalog.Catalog
	appointment *AppointmentHandler
	service     *ServiceHandler
	employee    *EmployeeHandler
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	db := setupHandlerDB(t)
	repo := infraRepo.NewScheduleGormRepository(db)
	cat := catalog.New(db, nil)
	disp := audit.NewDispatcher(audit.New(db), zerolog.Nop())

	update := ucAppointment.NewUpdateAppointmentStatus(repo, disp)
	find := ucAppointment.NewFindAppointments(repo)

	ah := NewAppointmentHandler(
		db,
		time.UTC,
		ucAppointment.NewCreateAppointment(repo, cat, disp),
		update,
		ucAppointment.NewCancelAppointment(update),
		ucAppointment.NewAssignAutoEmployee(repo, disp),
		ucAppointment.NewGetAvailableSlots(repo, cat),
		find,
	)

	return &handlerFixture{
		db:          db,
		catalog:     cat,
		appointment: ah,
		service:     NewServiceHandler(db, cat),
		employee:    NewEmployeeHandler(db, time.UTC, repo, find),
	}
}

func seedHandlerService(t *testing.T, db *gorm.DB, name string, minutes int) models.Service {
	s := models.Service{Name: name, DurationMinutes: minutes, Price: 30, IsActive: true}
	if err := db.Create(&s).Error; err != nil {
		t.Fatalf("seed service: %v", err)
	}
	return s
}

func seedHandlerUser(t *testing.T, db *gorm.DB, role string) models.User {
	u := models.User{
		FirstName:    "Claire",
		LastName:     "Petit",
		Email:        fmt.Sprintf("%s-%s@example.com", role, t.Name()),
		PasswordHash: "x",
		Role:         role,
		IsActive:     true,
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func TestServiceDeleteBlockedByActiveBookings(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := newHandlerFixture(t)

	svc := seedHandlerService(t, f.db, "Coupe homme", 30)
	client := seedHandlerUser(t, f.db, models.RoleClient)

	ap := models.Appointment{
		ClientUserID: client.ID,
		ServiceID:    svc.ID,
		StartTime:    time.Now().Add(48 * time.Hour),
		EndTime:      time.Now().Add(48*time.Hour + 30*time.Minute),
		Status:       "confirmed",
	}
	if err := f.db.Create(&ap).Error; err != nil {
		t.Fatalf("seed appointment: %v", err)
	}

	r := gin.New()
	r.DELETE("/services/:id", f.service.Delete)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/services/%d", svc.ID), nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 while bookings reference the service, got %d", w.Code)
	}

	// Cancelled bookings no longer block.
	f.db.Model(&ap).Update("status", "cancelled")

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/services/%d", svc.ID), nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected delete to pass, got %d: %s", w.Code, w.Body.String())
	}

	var stored models.Service
	f.db.First(&stored, svc.ID)
	if stored.IsActive {
		t.Fatal("delete should deactivate, not keep active")
	}
}

func TestServiceUpdateCannotDeactivateWithActiveBookings(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := newHandlerFixture(t)

	svc := seedHandlerService(t, f.db, "Coupe homme", 30)
	client := seedHandlerUser(t, f.db, models.RoleClient)

	ap := models.Appointment{
		ClientUserID: client.ID,
		ServiceID:    svc.ID,
		StartTime:    time.Now().Add(48 * time.Hour),
		EndTime:      time.Now().Add(48*time.Hour + 30*time.Minute),
		Status:       "confirmed",
	}
	if err := f.db.Create(&ap).Error; err != nil {
		t.Fatalf("seed appointment: %v", err)
	}

	r := gin.New()
	r.PUT("/services/:id", f.service.Update)

	// Deactivation through update is the delete guard's side door.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/services/%d", svc.ID),
		strings.NewReader(`{"is_active": false}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 while bookings reference the service, got %d: %s", w.Code, w.Body.String())
	}
	var stored models.Service
	f.db.First(&stored, svc.ID)
	if !stored.IsActive {
		t.Fatal("service deactivated despite active bookings")
	}

	// Other fields still update while the flag is guarded.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPut, fmt.Sprintf("/services/%d", svc.ID),
		strings.NewReader(`{"price": 40}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("price update should pass, got %d: %s", w.Code, w.Body.String())
	}

	// Once the booking is cancelled the flag can flip.
	f.db.Model(&ap).Update("status", "cancelled")

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPut, fmt.Sprintf("/services/%d", svc.ID),
		strings.NewReader(`{"is_active": false}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected deactivation to pass, got %d: %s", w.Code, w.Body.String())
	}
	f.db.First(&stored, svc.ID)
	if stored.IsActive {
		t.Fatal("service should be inactive")
	}
}

func TestCreateAppointmentRejectsPastStart(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := newHandlerFixture(t)

	svc := seedHandlerService(t, f.db, "Coupe homme", 30)
	client := seedHandlerUser(t, f.db, models.RoleClient)

	r := gin.New()
	r.POST("/appointments", fakeAuth(client.ID, models.RoleClient), f.appointment.Create)

	past := time.Now().Add(-2 * time.Hour).Format("2006-01-02 15:04")
	body := fmt.Sprintf(`{"service_id": %d, "start_datetime": %q}`, svc.ID, past)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a past start, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "start_in_past") {
		t.Fatalf("expected start_in_past code, got %s", w.Body.String())
	}
}

func TestClientCannotBookForAnotherClient(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := newHandlerFixture(t)

	svc := seedHandlerService(t, f.db, "Coupe homme", 30)
	client := seedHandlerUser(t, f.db, models.RoleClient)

	r := gin.New()
	r.POST("/appointments", fakeAuth(client.ID, models.RoleClient), f.appointment.Create)

	future := time.Now().Add(48 * time.Hour).Format("2006-01-02 15:04")
	body := fmt.Sprintf(`{"client_user_id": %d, "service_id": %d, "start_datetime": %q}`,
		client.ID+100, svc.ID, future)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/appointments", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAvailabilityEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := newHandlerFixture(t)

	svc := seedHandlerService(t, f.db, "Coupe homme", 30)

	r := gin.New()
	r.GET("/availability/:service_id", f.appointment.Availability)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/availability/%d?date=2026-03-16", svc.ID), nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "available_slots") {
		t.Fatalf("missing available_slots in %s", w.Body.String())
	}

	// Missing date parameter.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/availability/%d", svc.ID), nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without a date, got %d", w.Code)
	}
}

func TestAddWorkingHoursDuplicateDay(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := newHandlerFixture(t)

	coiffeur := seedHandlerUser(t, f.db, models.RoleCoiffeur)
	emp := models.Employee{UserID: coiffeur.ID, HireDate: time.Now(), IsAvailable: true}
	if err := f.db.Create(&emp).Error; err != nil {
		t.Fatalf("seed employee: %v", err)
	}

	r := gin.New()
	r.POST("/employees/:id/working-hours", f.employee.AddWorkingHours)

	body := `{"weekday": 2, "start_time": "09:00", "end_time": "17:00"}`

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/employees/%d/working-hours", emp.ID), strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/employees/%d/working-hours", emp.ID), strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 for a duplicate weekday, got %d", w.Code)
	}
}

func TestDeleteEmployeeBlockedByUpcomingBookings(t *testing.T) {
	gin.SetMode(gin.TestMode)
	f := newHandlerFixture(t)

	coiffeur := seedHandlerUser(t, f.db, models.RoleCoiffeur)
	emp := models.Employee{UserID: coiffeur.ID, HireDate: time.Now(), IsAvailable: true}
	if err := f.db.Create(&emp).Error; err != nil {
		t.Fatalf("seed employee: %v", err)
	}
	svc := seedHandlerService(t, f.db, "Coupe homme", 30)

	start := time.Now().Add(48 * time.Hour)
	ap := models.Appointment{
		ClientUserID: coiffeur.ID,
		EmployeeID:   &emp.ID,
		ServiceID:    svc.ID,
		StartTime:    start,
		EndTime:      start.Add(30 * time.Minute),
		Status:       "confirmed",
	}
	if err := f.db.Create(&ap).Error; err != nil {
		t.Fatalf("seed appointment: %v", err)
	}

	r := gin.New()
	r.DELETE("/employees/:id", f.employee.Delete)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/employees/%d", emp.ID), nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409 with upcoming bookings, got %d", w.Code)
	}
}
