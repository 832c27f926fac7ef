package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	billingapp "github.com/rently/backend/internal/application/billing"
	leasingapp "github.com/rently/backend/internal/application/leasing"
	"github.com/rently/backend/internal/domain/identity"
)

// TenantHandler handles tenant API endpoints
type TenantHandler struct {
	BaseHandler
	tenantService  *leasingapp.TenantService
	invoiceService *billingapp.InvoiceService
	paymentService *billingapp.PaymentService
}

// NewTenantHandler creates a new TenantHandler
func NewTenantHandler(
	tenantService *leasingapp.TenantService,
	invoiceService *billingapp.InvoiceService,
	paymentService *billingapp.PaymentService,
) *TenantHandler {
	return &TenantHandler{
		tenantService:  tenantService,
		invoiceService: invoiceService,
		paymentService: paymentService,
	}
}

// RegisterRoutes registers tenant routes on the given group
func (h *TenantHandler) RegisterRoutes(rg *gin.RouterGroup) {
	tenants := rg.Group("/tenants")
	{
		tenants.POST("", h.Create)
		tenants.GET("", h.List)
		tenants.GET("/:id", h.GetByID)
		tenants.POST("/:id/verify", h.VerifyResidency)
		tenants.GET("/:id/invoices", h.ListInvoices)
		tenants.GET("/:id/payments", h.ListPayments)
		tenants.GET("/:id/balance", h.OutstandingBalance)
	}
}

// Create handles POST /tenants
func (h *TenantHandler) Create(c *gin.Context) {
	principal, ok := h.getPrincipal(c)
	if !ok {
		return
	}

	var req leasingapp.CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	tenant, err := h.tenantService.CreateTenant(c.Request.Context(), principal, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, tenant)
}

// GetByID handles GET /tenants/:id
func (h *TenantHandler) GetByID(c *gin.Context) {
	principal, ok := h.getPrincipal(c)
	if !ok {
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID format")
		return
	}

	tenant, err := h.tenantService.GetTenant(c.Request.Context(), principal, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tenant)
}

// List handles GET /tenants. Landlords see their own tenants; staff
// must pass a landlord_id query parameter.
func (h *TenantHandler) List(c *gin.Context) {
	principal, ok := h.getPrincipal(c)
	if !ok {
		return
	}

	landlordID := principal.ID
	if raw := c.Query("landlord_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid landlord_id format")
			return
		}
		landlordID = parsed
	} else if principal.Role != identity.RoleLandlord {
		h.BadRequest(c, "landlord_id query parameter is required")
		return
	}

	tenants, err := h.tenantService.ListByLandlord(c.Request.Context(), landlordID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tenants)
}

// VerifyResidency handles POST /tenants/:id/verify. It cross-checks the
// tenant's recorded unit against the unit's recorded occupant.
func (h *TenantHandler) VerifyResidency(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID format")
		return
	}

	if err := h.tenantService.VerifyResidency(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"verified": true})
}

// ListInvoices handles GET /tenants/:id/invoices
func (h *TenantHandler) ListInvoices(c *gin.Context) {
	principal, ok := h.getPrincipal(c)
	if !ok {
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID format")
		return
	}

	filter, err := bindListRequest(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.invoiceService.ListByTenant(c.Request.Context(), principal, id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// ListPayments handles GET /tenants/:id/payments
func (h *TenantHandler) ListPayments(c *gin.Context) {
	principal, ok := h.getPrincipal(c)
	if !ok {
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID format")
		return
	}

	filter, err := bindListRequest(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.paymentService.ListByTenant(c.Request.Context(), principal, id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// OutstandingBalance handles GET /tenants/:id/balance
func (h *TenantHandler) OutstandingBalance(c *gin.Context) {
	principal, ok := h.getPrincipal(c)
	if !ok {
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID format")
		return
	}

	balance, err := h.invoiceService.OutstandingBalance(c.Request.Context(), principal, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"tenant_id": id, "balance": balance})
}
