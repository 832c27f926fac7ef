package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	leasingapp "github.com/rently/backend/internal/application/leasing"
	"github.com/rently/backend/internal/domain/identity"
	"github.com/rently/backend/internal/domain/leasing"
)

// UnitHandler handles unit and tenancy API endpoints
type UnitHandler struct {
	BaseHandler
	unitService    *leasingapp.UnitService
	tenancyService *leasingapp.TenancyService
	tenantService  *leasingapp.TenantService
}

// NewUnitHandler creates a new UnitHandler
func NewUnitHandler(
	unitService *leasingapp.UnitService,
	tenancyService *leasingapp.TenancyService,
	tenantService *leasingapp.TenantService,
) *UnitHandler {
	return &UnitHandler{
		unitService:    unitService,
		tenancyService: tenancyService,
		tenantService:  tenantService,
	}
}

// AssignTenantRequest represents a request to place a tenant in a unit
type AssignTenantRequest struct {
	TenantID   uuid.UUID  `json:"tenant_id" binding:"required"`
	LeaseStart *time.Time `json:"lease_start,omitempty"`
	LeaseEnd   *time.Time `json:"lease_end,omitempty"`
}

// EndTenancyRequest represents a request to vacate a unit
type EndTenancyRequest struct {
	EndDate *time.Time `json:"end_date,omitempty"`
}

// RegisterRoutes registers unit routes on the given group
func (h *UnitHandler) RegisterRoutes(rg *gin.RouterGroup) {
	units := rg.Group("/units")
	{
		units.POST("", h.Create)
		units.GET("/:id", h.GetByID)
		units.DELETE("/:id", h.Delete)
		units.GET("/:id/history", h.History)
		units.POST("/:id/tenant", h.AssignTenant)
		units.DELETE("/:id/tenant", h.EndTenancy)
		units.POST("/:id/tenant/evict", h.EvictTenant)
		units.POST("/:id/maintenance", h.StartMaintenance)
		units.DELETE("/:id/maintenance", h.EndMaintenance)
	}
}

// Create handles POST /units
func (h *UnitHandler) Create(c *gin.Context) {
	principal, ok := h.getPrincipal(c)
	if !ok {
		return
	}

	var req leasingapp.CreateUnitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	unit, err := h.unitService.CreateUnit(c.Request.Context(), principal, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, unit)
}

// GetByID handles GET /units/:id
func (h *UnitHandler) GetByID(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid unit ID format")
		return
	}

	unit, err := h.unitService.GetUnit(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, unit)
}

// Delete handles DELETE /units/:id
func (h *UnitHandler) Delete(c *gin.Context) {
	principal, ok := h.getPrincipal(c)
	if !ok {
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid unit ID format")
		return
	}

	if err := h.unitService.DeleteUnit(c.Request.Context(), principal, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// AssignTenant handles POST /units/:id/tenant. Assigning over a sitting
// tenant displaces them first.
func (h *UnitHandler) AssignTenant(c *gin.Context) {
	principal, ok := h.getPrincipal(c)
	if !ok {
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid unit ID format")
		return
	}

	var req AssignTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	leaseStart := time.Now()
	if req.LeaseStart != nil {
		leaseStart = *req.LeaseStart
	}

	unit, err := h.tenancyService.AssignTenant(c.Request.Context(), principal, id, req.TenantID, leaseStart, req.LeaseEnd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, unit)
}

// EndTenancy handles DELETE /units/:id/tenant
func (h *UnitHandler) EndTenancy(c *gin.Context) {
	principal, ok := h.getPrincipal(c)
	if !ok {
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid unit ID format")
		return
	}

	var req EndTenancyRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.tenancyService.EndTenancy(c.Request.Context(), principal, id, req.EndDate); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// EvictTenant handles POST /units/:id/tenant/evict
func (h *UnitHandler) EvictTenant(c *gin.Context) {
	principal, ok := h.getPrincipal(c)
	if !ok {
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid unit ID format")
		return
	}

	var req EndTenancyRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.tenancyService.EvictTenant(c.Request.Context(), principal, id, req.EndDate); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// History handles GET /units/:id/history
func (h *UnitHandler) History(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid unit ID format")
		return
	}

	records, err := h.tenantService.TenancyHistory(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, records)
}

// StartMaintenance handles POST /units/:id/maintenance
func (h *UnitHandler) StartMaintenance(c *gin.Context) {
	h.transitionMaintenance(c, h.unitService.StartMaintenance)
}

// EndMaintenance handles DELETE /units/:id/maintenance
func (h *UnitHandler) EndMaintenance(c *gin.Context) {
	h.transitionMaintenance(c, h.unitService.EndMaintenance)
}

func (h *UnitHandler) transitionMaintenance(
	c *gin.Context,
	transition func(ctx context.Context, principal identity.Principal, unitID uuid.UUID) (*leasing.Unit, error),
) {
	principal, ok := h.getPrincipal(c)
	if !ok {
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid unit ID format")
		return
	}

	unit, err := transition(c.Request.Context(), principal, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, unit)
}
