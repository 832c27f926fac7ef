package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	leasingapp "github.com/rently/backend/internal/application/leasing"
	"github.com/rently/backend/internal/domain/identity"
)

// PropertyHandler handles property API endpoints
type PropertyHandler struct {
	BaseHandler
	propertyService *leasingapp.PropertyService
	unitService     *leasingapp.UnitService
}

// NewPropertyHandler creates a new PropertyHandler
func NewPropertyHandler(propertyService *leasingapp.PropertyService, unitService *leasingapp.UnitService) *PropertyHandler {
	return &PropertyHandler{
		propertyService: propertyService,
		unitService:     unitService,
	}
}

// RegisterRoutes registers property routes on the given group
func (h *PropertyHandler) RegisterRoutes(rg *gin.RouterGroup) {
	properties := rg.Group("/properties")
	{
		properties.POST("", h.Create)
		properties.GET("", h.List)
		properties.GET("/:id", h.GetByID)
		properties.POST("/:id/refresh-stats", h.RefreshStats)
		properties.GET("/:id/units", h.ListUnits)
		properties.GET("/:id/expiring-leases", h.ExpiringLeases)
	}
}

// Create handles POST /properties
func (h *PropertyHandler) Create(c *gin.Context) {
	principal, ok := h.getPrincipal(c)
	if !ok {
		return
	}

	var req leasingapp.CreatePropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	property, err := h.propertyService.CreateProperty(c.Request.Context(), principal, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, property)
}

// GetByID handles GET /properties/:id
func (h *PropertyHandler) GetByID(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid property ID format")
		return
	}

	property, err := h.propertyService.GetProperty(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, property)
}

// List handles GET /properties. Landlords see their own portfolio;
// other roles must name the landlord explicitly.
func (h *PropertyHandler) List(c *gin.Context) {
	principal, ok := h.getPrincipal(c)
	if !ok {
		return
	}

	landlordID := principal.ID
	if raw := c.Query("landlord_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid landlord ID format")
			return
		}
		landlordID = parsed
	} else if principal.Role != identity.RoleLandlord {
		h.BadRequest(c, "landlord_id query parameter is required")
		return
	}

	properties, err := h.propertyService.ListByLandlord(c.Request.Context(), landlordID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, properties)
}

// RefreshStats handles POST /properties/:id/refresh-stats
func (h *PropertyHandler) RefreshStats(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid property ID format")
		return
	}

	property, err := h.propertyService.RefreshStats(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, property)
}

// ListUnits handles GET /properties/:id/units
func (h *PropertyHandler) ListUnits(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid property ID format")
		return
	}

	units, err := h.unitService.ListUnitsByProperty(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, units)
}

// ExpiringLeases handles GET /properties/:id/expiring-leases
func (h *PropertyHandler) ExpiringLeases(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid property ID format")
		return
	}

	days := 30
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.BadRequest(c, "days must be a positive integer")
			return
		}
		days = parsed
	}

	units, err := h.unitService.ListExpiringLeases(c.Request.Context(), id, days)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, units)
}
