package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	billingapp "github.com/rently/backend/internal/application/billing"
	"github.com/rently/backend/internal/domain/billing"
	"github.com/rently/backend/internal/domain/identity"
)

// InvoiceHandler handles invoice API endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService *billingapp.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *billingapp.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// RegisterRoutes registers invoice routes on the given group
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/invoices")
	{
		invoices.POST("", h.Create)
		invoices.GET("/:id", h.GetByID)
		invoices.POST("/:id/late-fee", h.ApplyLateFee)
		invoices.POST("/:id/mark-paid", h.MarkPaid)
		invoices.POST("/:id/cancel", h.Cancel)
	}
}

// Create handles POST /invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	principal, ok := h.getPrincipal(c)
	if !ok {
		return
	}

	var req billingapp.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), principal, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, invoice)
}

// GetByID handles GET /invoices/:id
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// ApplyLateFee handles POST /invoices/:id/late-fee
func (h *InvoiceHandler) ApplyLateFee(c *gin.Context) {
	h.transition(c, h.invoiceService.ApplyLateFee)
}

// MarkPaid handles POST /invoices/:id/mark-paid
func (h *InvoiceHandler) MarkPaid(c *gin.Context) {
	h.transition(c, h.invoiceService.MarkPaid)
}

// Cancel handles POST /invoices/:id/cancel
func (h *InvoiceHandler) Cancel(c *gin.Context) {
	h.transition(c, h.invoiceService.CancelInvoice)
}

func (h *InvoiceHandler) transition(
	c *gin.Context,
	transition func(ctx context.Context, principal identity.Principal, invoiceID uuid.UUID) (*billing.Invoice, error),
) {
	principal, ok := h.getPrincipal(c)
	if !ok {
		return
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID format")
		return
	}

	invoice, err := transition(c.Request.Context(), principal, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}
