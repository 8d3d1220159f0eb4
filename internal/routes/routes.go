package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/zighstudio/salon-scheduler/internal/audit"
	"github.com/zighstudio/salon-scheduler/internal/catalog"
	"github.com/zighstudio/salon-scheduler/internal/config"
	"github.com/zighstudio/salon-scheduler/internal/handlers"
	infraRepo "github.com/zighstudio/salon-scheduler/internal/infra/repository"
	"github.com/zighstudio/salon-scheduler/internal/middleware"
	"github.com/zighstudio/salon-scheduler/internal/models"
	ucAppointment "github.com/zighstudio/salon-scheduler/internal/usecase/appointment"

	"github.com/rs/zerolog"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, rdb *redis.Client, cfg *config.Config, loc *time.Location, log zerolog.Logger) {

	// ======================================================
	// MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.RequestID())
	r.Use(middleware.CORSMiddleware())

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	scheduleRepo := infraRepo.NewScheduleGormRepository(db)
	serviceCatalog := catalog.New(db, rdb)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger, log)

	// ======================================================
	// USE CASES - APPOINTMENTS
	// ======================================================
	createAppointmentUC := ucAppointment.NewCreateAppointment(
		scheduleRepo,
		serviceCatalog,
		auditDispatcher,
	)

	updateStatusUC := ucAppointment.NewUpdateAppointmentStatus(
		scheduleRepo,
		auditDispatcher,
	)

	cancelAppointmentUC := ucAppointment.NewCancelAppointment(
		updateStatusUC,
	)

	assignAutoUC := ucAppointment.NewAssignAutoEmployee(
		scheduleRepo,
		auditDispatcher,
	)

	availableSlotsUC := ucAppointment.NewGetAvailableSlots(
		scheduleRepo,
		serviceCatalog,
	)

	findAppointmentsUC := ucAppointment.NewFindAppointments(scheduleRepo)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg)
	meHandler := handlers.NewMeHandler(db)

	serviceHandler := handlers.NewServiceHandler(db, serviceCatalog)
	employeeHandler := handlers.NewEmployeeHandler(db, loc, scheduleRepo, findAppointmentsUC)

	appointmentHandler := handlers.NewAppointmentHandler(
		db,
		loc,
		createAppointmentUC,
		updateStatusUC,
		cancelAppointmentUC,
		assignAutoUC,
		availableSlotsUC,
		findAppointmentsUC,
	)

	auditLogsHandler := handlers.NewAuditLogsHandler(db)

	staffOnly := middleware.RequireRoles(models.RoleAdmin, models.RoleManager)
	staffOrCoiffeur := middleware.RequireRoles(models.RoleAdmin, models.RoleManager, models.RoleCoiffeur)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// PUBLIC
		// ------------------------------
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		api.GET("/services", serviceHandler.List)
		api.GET("/services/:id", serviceHandler.Get)

		api.GET("/availability/:service_id", appointmentHandler.Availability)

		// ------------------------------
		// AUTHENTICATED
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			secured.GET("/me", meHandler.GetMe)

			// ------------------------------
			// APPOINTMENTS
			// ------------------------------
			secured.POST("/appointments", appointmentHandler.Create)
			secured.GET("/appointments/me", appointmentHandler.ListMine)
			secured.GET("/appointments/:id", appointmentHandler.Get)
			secured.GET("/appointments/:id/history", appointmentHandler.History)
			secured.DELETE("/appointments/:id", appointmentHandler.Cancel)

			secured.GET("/appointments", staffOrCoiffeur, appointmentHandler.List)
			secured.PATCH("/appointments/:id/status", staffOrCoiffeur, appointmentHandler.UpdateStatus)
			secured.POST("/appointments/:id/assign", staffOnly, appointmentHandler.Assign)

			// ------------------------------
			// SERVICES (ADMIN)
			// ------------------------------
			secured.POST("/services", staffOnly, serviceHandler.Create)
			secured.PUT("/services/:id", staffOnly, serviceHandler.Update)
			secured.DELETE("/services/:id", staffOnly, serviceHandler.Delete)

			// ------------------------------
			// EMPLOYEES (ADMIN)
			// ------------------------------
			secured.GET("/employees", staffOrCoiffeur, employeeHandler.List)
			secured.GET("/employees/available", staffOrCoiffeur, employeeHandler.Available)
			secured.GET("/employees/:id", staffOrCoiffeur, employeeHandler.Get)
			secured.POST("/employees", staffOnly, employeeHandler.Create)
			secured.PATCH("/employees/:id", staffOnly, employeeHandler.Update)
			secured.DELETE("/employees/:id", staffOnly, employeeHandler.Delete)

			secured.POST("/employees/:id/working-hours", staffOnly, employeeHandler.AddWorkingHours)
			secured.PUT("/employees/:id/working-hours/:day", staffOnly, employeeHandler.UpdateWorkingHours)
			secured.DELETE("/employees/:id/working-hours/:day", staffOnly, employeeHandler.DeleteWorkingHours)

			// ------------------------------
			// AUDIT
			// ------------------------------
			secured.GET("/audit-logs", staffOnly, auditLogsHandler.List)
		}
	}
}
