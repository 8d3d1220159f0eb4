package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/zighstudio/salon-scheduler/internal/catalog"
	"github.com/zighstudio/salon-scheduler/internal/domain/schedule"
	"github.com/zighstudio/salon-scheduler/internal/httperr"
	"github.com/zighstudio/salon-scheduler/internal/httpresp"
	"github.com/zighstudio/salon-scheduler/internal/models"
)

// ======================================================
// HANDLER
// ======================================================

type ServiceHandler struct {
	db      *gorm.DB
	catalog *catalog.Catalog
}

func NewServiceHandler(db *gorm.DB, cat *catalog.Catalog) *ServiceHandler {
	return &ServiceHandler{db: db, catalog: cat}
}

// ======================================================
// REQUESTS
// ======================================================

type CreateServiceRequest struct {
	Name            string  `json:"name" binding:"required"`
	Description     string  `json:"description"`
	DurationMinutes int     `json:"duration_minutes" binding:"required"`
	Price           float64 `json:"price" binding:"required"`
}

type UpdateServiceRequest struct {
	Name            *string  `json:"name"`
	Description     *string  `json:"description"`
	DurationMinutes *int     `json:"duration_minutes"`
	Price           *float64 `json:"price"`
	IsActive        *bool    `json:"is_active"`
}

// activeBookings counts the pending/confirmed appointments still referencing
// a service. A service with any of them cannot be deactivated.
func (h *ServiceHandler) activeBookings(c *gin.Context, serviceID uint) (int64, error) {
	var n int64
	err := h.db.WithContext(c.Request.Context()).
		Model(&models.Appointment{}).
		Where("service_id = ? AND status IN ?", serviceID, schedule.ActiveStatuses()).
		Count(&n).Error
	return n, err
}

// ======================================================
// PUBLIC READ
// ======================================================

// List returns active services only. Staff pass ?all=true to include
// deactivated ones.
func (h *ServiceHandler) List(c *gin.Context) {
	activeOnly := c.Query("all") != "true"

	services, err := h.catalog.List(c.Request.Context(), activeOnly)
	if err != nil {
		httperr.Internal(c, "internal_error", "Erreur serveur.")
		return
	}

	httpresp.OK(c, gin.H{"services": services})
}

func (h *ServiceHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	svc, err := h.catalog.ByID(c.Request.Context(), id)
	if err != nil {
		httperr.WriteBusiness(c, err)
		return
	}

	httpresp.OK(c, svc)
}

// ======================================================
// ADMIN MUTATIONS
// ======================================================

func (h *ServiceHandler) Create(c *gin.Context) {
	var req CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Données invalides.")
		return
	}

	if req.DurationMinutes < models.MinServiceDurationMinutes {
		httperr.BadRequest(c, "invalid_duration", "Durée de service trop courte.")
		return
	}
	if req.Price < 0 {
		httperr.BadRequest(c, "invalid_price", "Prix invalide.")
		return
	}

	svc := models.Service{
		Name:            req.Name,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		Price:           req.Price,
		IsActive:        true,
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&svc).Error; err != nil {
		httperr.Internal(c, "internal_error", "Erreur serveur.")
		return
	}

	c.JSON(201, svc)
}

func (h *ServiceHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Données invalides.")
		return
	}

	var svc models.Service
	if err := h.db.WithContext(c.Request.Context()).First(&svc, id).Error; err != nil {
		httperr.NotFound(c, "service_not_found", "Service non trouvé.")
		return
	}

	if req.Name != nil {
		svc.Name = *req.Name
	}
	if req.Description != nil {
		svc.Description = *req.Description
	}
	if req.DurationMinutes != nil {
		if *req.DurationMinutes < models.MinServiceDurationMinutes {
			httperr.BadRequest(c, "invalid_duration", "Durée de service trop courte.")
			return
		}
		svc.DurationMinutes = *req.DurationMinutes
	}
	if req.Price != nil {
		if *req.Price < 0 {
			httperr.BadRequest(c, "invalid_price", "Prix invalide.")
			return
		}
		svc.Price = *req.Price
	}
	if req.IsActive != nil {
		// Deactivation through update obeys the same guard as delete.
		if svc.IsActive && !*req.IsActive {
			active, err := h.activeBookings(c, svc.ID)
			if err != nil {
				httperr.Internal(c, "internal_error", "Erreur serveur.")
				return
			}
			if active > 0 {
				httperr.Conflict(c, "service_in_use", "Des rendez-vous actifs utilisent ce service.")
				return
			}
		}
		svc.IsActive = *req.IsActive
	}

	if err := h.db.WithContext(c.Request.Context()).Save(&svc).Error; err != nil {
		httperr.Internal(c, "internal_error", "Erreur serveur.")
		return
	}

	h.catalog.Invalidate(c.Request.Context(), svc.ID)
	httpresp.OK(c, svc)
}

// Delete deactivates a service. Services with upcoming bookings stay active
// so those bookings remain coherent.
func (h *ServiceHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var svc models.Service
	if err := h.db.WithContext(c.Request.Context()).First(&svc, id).Error; err != nil {
		httperr.NotFound(c, "service_not_found", "Service non trouvé.")
		return
	}

	active, err := h.activeBookings(c, svc.ID)
	if err != nil {
		httperr.Internal(c, "internal_error", "Erreur serveur.")
		return
	}
	if active > 0 {
		httperr.Conflict(c, "service_in_use", "Des rendez-vous actifs utilisent ce service.")
		return
	}

	svc.IsActive = false
	if err := h.db.WithContext(c.Request.Context()).Save(&svc).Error; err != nil {
		httperr.Internal(c, "internal_error", "Erreur serveur.")
		return
	}

	h.catalog.Invalidate(c.Request.Context(), svc.ID)
	httpresp.OK(c, gin.H{"message": "Service désactivé."})
}
