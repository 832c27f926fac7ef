package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	billingapp "github.com/rently/backend/internal/application/billing"
	"github.com/rently/backend/internal/domain/identity"
	"github.com/rently/backend/internal/interfaces/http/dto"
)

// BillingRunHandler exposes manual triggers for the scheduled billing jobs
type BillingRunHandler struct {
	BaseHandler
	billingRunService *billingapp.BillingRunService
}

// NewBillingRunHandler creates a new BillingRunHandler
func NewBillingRunHandler(billingRunService *billingapp.BillingRunService) *BillingRunHandler {
	return &BillingRunHandler{billingRunService: billingRunService}
}

// RegisterRoutes registers billing run routes on the given group
func (h *BillingRunHandler) RegisterRoutes(rg *gin.RouterGroup) {
	runs := rg.Group("/billing/runs")
	{
		runs.POST("/invoices", h.TriggerInvoiceRun)
		runs.POST("/overdue", h.TriggerOverdueScan)
	}
}

// TriggerInvoiceRun handles POST /billing/runs/invoices
func (h *BillingRunHandler) TriggerInvoiceRun(c *gin.Context) {
	h.trigger(c, h.billingRunService.GenerateMonthlyInvoices, "generated")
}

// TriggerOverdueScan handles POST /billing/runs/overdue
func (h *BillingRunHandler) TriggerOverdueScan(c *gin.Context) {
	h.trigger(c, h.billingRunService.CheckOverdueInvoices, "marked_overdue")
}

func (h *BillingRunHandler) trigger(
	c *gin.Context,
	run func(ctx context.Context, asOf time.Time) (int, error),
	resultKey string,
) {
	principal, ok := h.getPrincipal(c)
	if !ok {
		return
	}
	if principal.Role != identity.RoleAdmin {
		h.Error(c, http.StatusForbidden, dto.ErrCodeForbidden, "Only administrators may trigger billing runs")
		return
	}

	count, err := run(c.Request.Context(), time.Now())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{resultKey: count})
}
