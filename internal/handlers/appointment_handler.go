package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/zighstudio/salon-scheduler/internal/domain/schedule"
	"github.com/zighstudio/salon-scheduler/internal/dto"
	"github.com/zighstudio/salon-scheduler/internal/httperr"
	"github.com/zighstudio/salon-scheduler/internal/httpresp"
	"github.com/zighstudio/salon-scheduler/internal/middleware"
	"github.com/zighstudio/salon-scheduler/internal/models"
	ucAppointment "github.com/zighstudio/salon-scheduler/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	db  *gorm.DB
	loc *time.Location

	create     *ucAppointment.CreateAppointment
	updateStat *ucAppointment.UpdateAppointmentStatus
	cancel     *ucAppointment.CancelAppointment
	assign     *ucAppointment.AssignAutoEmployee
	slots      *ucAppointment.GetAvailableSlots
	find       *ucAppointment.FindAppointments
}

func NewAppointmentHandler(
	db *gorm.DB,
	loc *time.Location,
	create *ucAppointment.CreateAppointment,
	updateStat *ucAppointment.UpdateAppointmentStatus,
	cancel *ucAppointment.CancelAppointment,
	assign *ucAppointment.AssignAutoEmployee,
	slots *ucAppointment.GetAvailableSlots,
	find *ucAppointment.FindAppointments,
) *AppointmentHandler {
	return &AppointmentHandler{
		db:         db,
		loc:        loc,
		create:     create,
		updateStat: updateStat,
		cancel:     cancel,
		assign:     assign,
		slots:      slots,
		find:       find,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateAppointmentRequest struct {
	ClientUserID  uint   `json:"client_user_id"`
	ServiceID     uint   `json:"service_id" binding:"required"`
	StartDatetime string `json:"start_datetime" binding:"required"`
	EmployeeID    *uint  `json:"employee_id"`
	Notes         string `json:"notes"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

// ======================================================
// HELPERS
// ======================================================

func currentUser(c *gin.Context) (uint, string) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	role, _ := c.MustGet(middleware.ContextUserRole).(string)
	return userID, role
}

func isStaff(role string) bool {
	return role == models.RoleAdmin || role == models.RoleManager
}

// employeeIDForUser resolves the employee row behind a coiffeur account, so
// coiffeurs only ever see their own agenda.
func (h *AppointmentHandler) employeeIDForUser(userID uint) *uint {
	var emp models.Employee
	if err := h.db.Where("user_id = ?", userID).First(&emp).Error; err != nil {
		return nil
	}
	return &emp.ID
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		httperr.BadRequest(c, "invalid_id", "Identifiant invalide.")
		return 0, false
	}
	return uint(id), true
}

func pathWeekday(c *gin.Context) (int, bool) {
	day, err := strconv.Atoi(c.Param("day"))
	if err != nil || day < 1 || day > 7 {
		httperr.BadRequest(c, "invalid_weekday", "Le jour doit être entre 1 (lundi) et 7 (dimanche).")
		return 0, false
	}
	return day, true
}

// ======================================================
// CREATE
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	userID, role := currentUser(c)

	var req CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Données invalides.")
		return
	}

	clientID := req.ClientUserID
	if clientID == 0 {
		clientID = userID
	}
	if !isStaff(role) && clientID != userID {
		httperr.Forbidden(c, "access_denied", "Accès refusé.")
		return
	}

	start, err := parseDateTime(h.loc, req.StartDatetime)
	if err != nil {
		httperr.BadRequest(c, "invalid_datetime", "Date ou heure invalide.")
		return
	}

	// Recency is a boundary concern: the engine accepts any instant, the
	// API does not book the past.
	if !start.After(time.Now()) {
		httperr.BadRequest(c, "start_in_past", "Le rendez-vous doit être dans le futur.")
		return
	}

	ap, err := h.create.Execute(c.Request.Context(), ucAppointment.CreateAppointmentInput{
		ClientUserID: clientID,
		ServiceID:    req.ServiceID,
		Start:        start,
		EmployeeID:   req.EmployeeID,
		Notes:        req.Notes,
	})
	if err != nil {
		httperr.WriteBusiness(c, err)
		return
	}

	full, err := h.find.ByID(c.Request.Context(), ap.ID)
	if err != nil {
		httperr.WriteBusiness(c, err)
		return
	}

	c.JSON(201, dto.FromAppointment(full))
}

// ======================================================
// READ
// ======================================================

func (h *AppointmentHandler) Get(c *gin.Context) {
	userID, role := currentUser(c)

	id, ok := pathID(c)
	if !ok {
		return
	}

	ap, err := h.find.ByID(c.Request.Context(), id)
	if err != nil {
		httperr.WriteBusiness(c, err)
		return
	}

	canAccess := isStaff(role) || ap.ClientUserID == userID
	if !canAccess && role == models.RoleCoiffeur {
		if empID := h.employeeIDForUser(userID); empID != nil && ap.EmployeeID != nil && *empID == *ap.EmployeeID {
			canAccess = true
		}
	}

	if !canAccess {
		httperr.Forbidden(c, "access_denied", "Accès refusé.")
		return
	}

	httpresp.OK(c, dto.FromAppointment(ap))
}

func (h *AppointmentHandler) List(c *gin.Context) {
	userID, role := currentUser(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	f := schedule.AppointmentFilter{
		Status: c.Query("status"),
		Page:   page,
		Limit:  limit,
	}

	if v := c.Query("employee_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 32); err == nil {
			eid := uint(id)
			f.EmployeeID = &eid
		}
	}
	if v := c.Query("client_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 32); err == nil {
			cid := uint(id)
			f.ClientUserID = &cid
		}
	}
	if v := c.Query("date_from"); v != "" {
		if d, err := parseDate(h.loc, v); err == nil {
			f.DateFrom = &d
		}
	}
	if v := c.Query("date_to"); v != "" {
		if d, err := parseDate(h.loc, v); err == nil {
			end := d.Add(24 * time.Hour)
			f.DateTo = &end
		}
	}

	// Coiffeurs are pinned to their own agenda whatever the query says.
	if role == models.RoleCoiffeur {
		f.EmployeeID = h.employeeIDForUser(userID)
	}

	aps, total, err := h.find.All(c.Request.Context(), f)
	if err != nil {
		httperr.WriteBusiness(c, err)
		return
	}

	httpresp.List(c, dto.FromAppointments(aps), total, f.Page, f.Limit)
}

func (h *AppointmentHandler) ListMine(c *gin.Context) {
	userID, _ := currentUser(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	f := schedule.AppointmentFilter{
		Status:       c.Query("status"),
		ClientUserID: &userID,
		Page:         page,
		Limit:        limit,
	}

	aps, total, err := h.find.All(c.Request.Context(), f)
	if err != nil {
		httperr.WriteBusiness(c, err)
		return
	}

	httpresp.List(c, dto.FromAppointments(aps), total, f.Page, f.Limit)
}

// ======================================================
// STATUS
// ======================================================

func (h *AppointmentHandler) UpdateStatus(c *gin.Context) {
	userID, role := currentUser(c)

	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Données invalides.")
		return
	}

	newStatus := schedule.Status(req.Status)
	if !schedule.IsValidStatus(newStatus) {
		httperr.BadRequest(c, "invalid_status", "Statut inconnu.")
		return
	}

	ap, err := h.find.ByID(c.Request.Context(), id)
	if err != nil {
		httperr.WriteBusiness(c, err)
		return
	}

	canUpdate := isStaff(role)
	if !canUpdate && role == models.RoleCoiffeur {
		if empID := h.employeeIDForUser(userID); empID != nil && ap.EmployeeID != nil && *empID == *ap.EmployeeID {
			canUpdate = true
		}
	}
	if !canUpdate {
		httperr.Forbidden(c, "access_denied", "Accès refusé.")
		return
	}

	updated, err := h.updateStat.Execute(c.Request.Context(), ucAppointment.UpdateStatusInput{
		AppointmentID: id,
		NewStatus:     newStatus,
		ActorID:       &userID,
		Reason:        req.Reason,
	})
	if err != nil {
		httperr.WriteBusiness(c, err)
		return
	}

	httpresp.OK(c, dto.FromAppointment(updated))
}

// ======================================================
// AUTO-ASSIGN
// ======================================================

func (h *AppointmentHandler) Assign(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	ap, err := h.assign.Execute(c.Request.Context(), id)
	if err != nil {
		httperr.WriteBusiness(c, err)
		return
	}

	httpresp.OK(c, dto.FromAppointment(ap))
}

// ======================================================
// CANCEL
// ======================================================

func (h *AppointmentHandler) Cancel(c *gin.Context) {
	userID, role := currentUser(c)

	id, ok := pathID(c)
	if !ok {
		return
	}

	ap, err := h.find.ByID(c.Request.Context(), id)
	if err != nil {
		httperr.WriteBusiness(c, err)
		return
	}

	if !isStaff(role) && ap.ClientUserID != userID {
		httperr.Forbidden(c, "access_denied", "Accès refusé.")
		return
	}

	var req CancelRequest
	_ = c.ShouldBindJSON(&req)

	cancelled, err := h.cancel.Execute(c.Request.Context(), id, &userID, req.Reason)
	if err != nil {
		httperr.WriteBusiness(c, err)
		return
	}

	httpresp.OK(c, dto.FromAppointment(cancelled))
}

// ======================================================
// HISTORY
// ======================================================

func (h *AppointmentHandler) History(c *gin.Context) {
	userID, role := currentUser(c)

	id, ok := pathID(c)
	if !ok {
		return
	}

	ap, err := h.find.ByID(c.Request.Context(), id)
	if err != nil {
		httperr.WriteBusiness(c, err)
		return
	}

	if !isStaff(role) && ap.ClientUserID != userID {
		httperr.Forbidden(c, "access_denied", "Accès refusé.")
		return
	}

	history, err := h.find.History(c.Request.Context(), id)
	if err != nil {
		httperr.WriteBusiness(c, err)
		return
	}

	c.JSON(200, gin.H{"history": history})
}

// ======================================================
// AVAILABILITY (public)
// ======================================================

func (h *AppointmentHandler) Availability(c *gin.Context) {
	serviceID, err := strconv.ParseUint(c.Param("service_id"), 10, 32)
	if err != nil || serviceID == 0 {
		httperr.BadRequest(c, "invalid_id", "Identifiant invalide.")
		return
	}

	dateStr := c.Query("date")
	if dateStr == "" {
		httperr.BadRequest(c, "missing_date", "Date requise.")
		return
	}

	date, err := parseDate(h.loc, dateStr)
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Date invalide.")
		return
	}

	var employeeID *uint
	if v := c.Query("employee_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			httperr.BadRequest(c, "invalid_employee_id", "Identifiant d'employé invalide.")
			return
		}
		eid := uint(id)
		employeeID = &eid
	}

	slots, err := h.slots.Execute(c.Request.Context(), date, uint(serviceID), employeeID)
	if err != nil {
		httperr.WriteBusiness(c, err)
		return
	}

	c.JSON(200, gin.H{
		"service_id":      serviceID,
		"date":            dateStr,
		"available_slots": slots,
	})
}
