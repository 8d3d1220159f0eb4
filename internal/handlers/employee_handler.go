package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/zighstudio/salon-scheduler/internal/domain/schedule"
	"github.com/zighstudio/salon-scheduler/internal/httperr"
	"github.com/zighstudio/salon-scheduler/internal/httpresp"
	"github.com/zighstudio/salon-scheduler/internal/models"
	ucAppointment "github.com/zighstudio/salon-scheduler/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type EmployeeHandler struct {
	db   *gorm.DB
	loc  *time.Location
	repo schedule.Repository
	find *ucAppointment.FindAppointments
}

func NewEmployeeHandler(db *gorm.DB, loc *time.Location, repo schedule.Repository, find *ucAppointment.FindAppointments) *EmployeeHandler {
	return &EmployeeHandler{db: db, loc: loc, repo: repo, find: find}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateEmployeeRequest struct {
	UserID      uint   `json:"user_id" binding:"required"`
	HireDate    string `json:"hire_date"`
	IsAvailable *bool  `json:"is_available"`
	Note        string `json:"note"`
}

type UpdateEmployeeRequest struct {
	IsAvailable *bool   `json:"is_available"`
	Note        *string `json:"note"`
}

type WorkingHoursRequest struct {
	Weekday   int    `json:"weekday" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

type UpdateWorkingHoursRequest struct {
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
}

func validHoursWindow(startHM, endHM string) bool {
	start, err := parseTimeOfDay(startHM)
	if err != nil {
		return false
	}
	end, err := parseTimeOfDay(endHM)
	if err != nil {
		return false
	}
	return start.Before(end)
}

// ======================================================
// CRUD
// ======================================================

func (h *EmployeeHandler) List(c *gin.Context) {
	var employees []models.Employee
	err := h.db.WithContext(c.Request.Context()).
		Preload("User").
		Joins("JOIN users ON users.id = employees.user_id").
		Order("users.first_name ASC, users.last_name ASC").
		Find(&employees).Error
	if err != nil {
		httperr.Internal(c, "internal_error", "Erreur serveur.")
		return
	}

	httpresp.OK(c, gin.H{"employees": employees})
}

func (h *EmployeeHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var emp models.Employee
	err := h.db.WithContext(c.Request.Context()).Preload("User").First(&emp, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httperr.NotFound(c, "employee_not_found", "Employé non trouvé.")
		return
	}
	if err != nil {
		httperr.Internal(c, "internal_error", "Erreur serveur.")
		return
	}

	var hours []models.WorkingHours
	h.db.WithContext(c.Request.Context()).
		Where("employee_id = ?", emp.ID).
		Order("weekday ASC").
		Find(&hours)

	httpresp.OK(c, gin.H{"employee": emp, "working_hours": hours})
}

func (h *EmployeeHandler) Create(c *gin.Context) {
	var req CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Données invalides.")
		return
	}

	var user models.User
	err := h.db.WithContext(c.Request.Context()).First(&user, req.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httperr.NotFound(c, "user_not_found", "Utilisateur non trouvé.")
		return
	}
	if err != nil {
		httperr.Internal(c, "internal_error", "Erreur serveur.")
		return
	}

	if user.Role != models.RoleCoiffeur && user.Role != models.RoleManager {
		httperr.BadRequest(c, "invalid_role", "Seul un coiffeur ou un manager peut être employé.")
		return
	}

	var existing int64
	h.db.WithContext(c.Request.Context()).
		Model(&models.Employee{}).
		Where("user_id = ?", req.UserID).
		Count(&existing)
	if existing > 0 {
		httperr.Conflict(c, "employee_already_exists", "Cet utilisateur est déjà employé.")
		return
	}

	hireDate := time.Now()
	if req.HireDate != "" {
		d, err := parseDate(h.loc, req.HireDate)
		if err != nil {
			httperr.BadRequest(c, "invalid_date", "Date d'embauche invalide.")
			return
		}
		hireDate = d
	}

	emp := models.Employee{
		UserID:      req.UserID,
		HireDate:    hireDate,
		IsAvailable: true,
		Note:        req.Note,
	}
	if req.IsAvailable != nil {
		emp.IsAvailable = *req.IsAvailable
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&emp).Error; err != nil {
		httperr.Internal(c, "internal_error", "Erreur serveur.")
		return
	}

	h.db.WithContext(c.Request.Context()).Preload("User").First(&emp, emp.ID)
	c.JSON(201, emp)
}

func (h *EmployeeHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Données invalides.")
		return
	}

	var emp models.Employee
	err := h.db.WithContext(c.Request.Context()).First(&emp, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httperr.NotFound(c, "employee_not_found", "Employé non trouvé.")
		return
	}
	if err != nil {
		httperr.Internal(c, "internal_error", "Erreur serveur.")
		return
	}

	if req.IsAvailable != nil {
		emp.IsAvailable = *req.IsAvailable
	}
	if req.Note != nil {
		emp.Note = *req.Note
	}

	if err := h.db.WithContext(c.Request.Context()).Save(&emp).Error; err != nil {
		httperr.Internal(c, "internal_error", "Erreur serveur.")
		return
	}

	h.db.WithContext(c.Request.Context()).Preload("User").First(&emp, emp.ID)
	httpresp.OK(c, emp)
}

// Delete removes an employee. Blocked while active appointments still point
// at them, so assignments never dangle.
func (h *EmployeeHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var emp models.Employee
	err := h.db.WithContext(c.Request.Context()).First(&emp, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httperr.NotFound(c, "employee_not_found", "Employé non trouvé.")
		return
	}
	if err != nil {
		httperr.Internal(c, "internal_error", "Erreur serveur.")
		return
	}

	var active int64
	err = h.db.WithContext(c.Request.Context()).
		Model(&models.Appointment{}).
		Where("employee_id = ? AND status IN ? AND start_time > ?",
			emp.ID, schedule.ActiveStatuses(), time.Now()).
		Count(&active).Error
	if err != nil {
		httperr.Internal(c, "internal_error", "Erreur serveur.")
		return
	}
	if active > 0 {
		httperr.Conflict(c, "employee_has_appointments", "Des rendez-vous à venir sont assignés à cet employé.")
		return
	}

	err = h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("employee_id = ?", emp.ID).Delete(&models.WorkingHours{}).Error; err != nil {
			return err
		}
		return tx.Delete(&emp).Error
	})
	if err != nil {
		httperr.Internal(c, "internal_error", "Erreur serveur.")
		return
	}

	httpresp.OK(c, gin.H{"message": "Employé supprimé."})
}

// ======================================================
// WORKING HOURS
// ======================================================

func (h *EmployeeHandler) AddWorkingHours(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req WorkingHoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Données invalides.")
		return
	}

	if req.Weekday < 1 || req.Weekday > 7 {
		httperr.BadRequest(c, "invalid_weekday", "Le jour doit être entre 1 (lundi) et 7 (dimanche).")
		return
	}
	if !validHoursWindow(req.StartTime, req.EndTime) {
		httperr.BadRequest(c, "invalid_hours", "Plage horaire invalide.")
		return
	}

	var emp models.Employee
	if err := h.db.WithContext(c.Request.Context()).First(&emp, id).Error; err != nil {
		httperr.NotFound(c, "employee_not_found", "Employé non trouvé.")
		return
	}

	var existing int64
	h.db.WithContext(c.Request.Context()).
		Model(&models.WorkingHours{}).
		Where("employee_id = ? AND weekday = ?", emp.ID, req.Weekday).
		Count(&existing)
	if existing > 0 {
		httperr.Conflict(c, "working_hours_exist", "Des horaires existent déjà pour ce jour.")
		return
	}

	wh := models.WorkingHours{
		EmployeeID: emp.ID,
		Weekday:    req.Weekday,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&wh).Error; err != nil {
		httperr.Internal(c, "internal_error", "Erreur serveur.")
		return
	}

	c.JSON(201, wh)
}

func (h *EmployeeHandler) UpdateWorkingHours(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	weekday, ok := pathWeekday(c)
	if !ok {
		return
	}

	var req UpdateWorkingHoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Données invalides.")
		return
	}
	if !validHoursWindow(req.StartTime, req.EndTime) {
		httperr.BadRequest(c, "invalid_hours", "Plage horaire invalide.")
		return
	}

	wh, err := h.repo.GetWorkingHours(c.Request.Context(), id, weekday)
	if err != nil {
		httperr.WriteBusiness(c, err)
		return
	}

	wh.StartTime = req.StartTime
	wh.EndTime = req.EndTime

	if err := h.db.WithContext(c.Request.Context()).Save(wh).Error; err != nil {
		httperr.Internal(c, "internal_error", "Erreur serveur.")
		return
	}

	httpresp.OK(c, wh)
}

func (h *EmployeeHandler) DeleteWorkingHours(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	weekday, ok := pathWeekday(c)
	if !ok {
		return
	}

	res := h.db.WithContext(c.Request.Context()).
		Where("employee_id = ? AND weekday = ?", id, weekday).
		Delete(&models.WorkingHours{})
	if res.Error != nil {
		httperr.Internal(c, "internal_error", "Erreur serveur.")
		return
	}
	if res.RowsAffected == 0 {
		httperr.NotFound(c, "working_hours_not_found", "Aucun horaire pour ce jour.")
		return
	}

	httpresp.OK(c, gin.H{"message": "Horaires supprimés."})
}

// ======================================================
// AVAILABILITY
// ======================================================

// Available lists employees free for a given window: rostered that weekday,
// marked available, and without a conflicting appointment.
func (h *EmployeeHandler) Available(c *gin.Context) {
	dateStr := c.Query("date")
	startStr := c.Query("start_time")
	endStr := c.Query("end_time")
	if dateStr == "" || startStr == "" || endStr == "" {
		httperr.BadRequest(c, "missing_params", "Paramètres date, start_time et end_time requis.")
		return
	}

	date, err := parseDate(h.loc, dateStr)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Date invalide.")
		return
	}
	if !validHoursWindow(startStr, endStr) {
		httperr.BadRequest(c, "invalid_hours", "Plage horaire invalide.")
		return
	}

	start, err := parseDateTime(h.loc, dateStr+" "+startStr)
	if err != nil {
		httperr.BadRequest(c, "invalid_hours", "Plage horaire invalide.")
		return
	}
	end, err := parseDateTime(h.loc, dateStr+" "+endStr)
	if err != nil {
		httperr.BadRequest(c, "invalid_hours", "Plage horaire invalide.")
		return
	}

	candidates, err := h.repo.ListCandidateEmployees(
		c.Request.Context(), schedule.ISOWeekday(date), startStr, endStr)
	if err != nil {
		httperr.Internal(c, "internal_error", "Erreur serveur.")
		return
	}

	free := make([]models.Employee, 0, len(candidates))
	for _, emp := range candidates {
		conflict, err := h.find.HasConflict(c.Request.Context(), emp.ID, start, end, 0)
		if err != nil {
			httperr.Internal(c, "internal_error", "Erreur serveur.")
			return
		}
		if !conflict {
			free = append(free, emp)
		}
	}

	httpresp.OK(c, gin.H{"employees": free})
}
