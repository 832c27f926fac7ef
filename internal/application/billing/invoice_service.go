package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rently/backend/internal/domain/billing"
	"github.com/rently/backend/internal/domain/identity"
	"github.com/rently/backend/internal/domain/leasing"
	"github.com/rently/backend/internal/domain/shared"
	"github.com/rently/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// Notifier delivers a message to a tenant's phone. Delivery is
// best-effort from the ledger's point of view: failures are logged and
// never abort the billing operation that triggered them.
type Notifier interface {
	Send(ctx context.Context, phone, message string) (string, error)
}

// InvoiceItemInput is a single line in an invoice creation request
type InvoiceItemInput struct {
	Description string  `json:"description" binding:"required"`
	Amount      float64 `json:"amount" binding:"required"`
	ItemType    string  `json:"item_type" binding:"required"`
}

// CreateInvoiceRequest carries the input for creating an invoice
type CreateInvoiceRequest struct {
	TenantID uuid.UUID          `json:"tenant_id" binding:"required"`
	UnitID   uuid.UUID          `json:"unit_id" binding:"required"`
	DueDate  time.Time          `json:"due_date" binding:"required"`
	Amount   float64            `json:"amount" binding:"required,gt=0"`
	Items    []InvoiceItemInput `json:"items"`
}

// InvoiceService handles the invoice lifecycle
type InvoiceService struct {
	invoiceRepo billing.InvoiceRepository
	tenantRepo  leasing.TenantRepository
	unitRepo    leasing.UnitRepository
	notifier    Notifier
	logger      *zap.Logger
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo billing.InvoiceRepository,
	tenantRepo leasing.TenantRepository,
	unitRepo leasing.UnitRepository,
	notifier Notifier,
	logger *zap.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		tenantRepo:  tenantRepo,
		unitRepo:    unitRepo,
		notifier:    notifier,
		logger:      logger,
	}
}

// CreateInvoice creates and issues an invoice for a tenant's unit. The
// tenant must currently occupy the unit and the due date cannot be in
// the past. The invoice number is reserved inside the create
// transaction. An SMS is sent best-effort after the invoice commits.
func (s *InvoiceService) CreateInvoice(ctx context.Context, principal identity.Principal, req CreateInvoiceRequest) (*billing.Invoice, error) {
	if !principal.CanManageBilling() {
		return nil, shared.ErrForbidden
	}

	tenant, err := s.tenantRepo.FindByID(ctx, req.TenantID)
	if err != nil {
		return nil, err
	}
	unit, err := s.unitRepo.FindByID(ctx, req.UnitID)
	if err != nil {
		return nil, err
	}

	if unit.CurrentTenantID == nil || *unit.CurrentTenantID != tenant.ID {
		return nil, shared.NewValidationError("Tenant is not currently assigned to this unit")
	}
	if req.DueDate.Before(time.Now().Truncate(24 * time.Hour)) {
		return nil, shared.NewValidationError("Due date cannot be in the past")
	}

	items := make([]billing.InvoiceItem, 0, len(req.Items))
	for _, in := range req.Items {
		item, err := billing.NewInvoiceItem(in.Description, valueobject.NewMoneyKESFromFloat(in.Amount), billing.ItemType(in.ItemType))
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	invoice, err := billing.NewInvoice(tenant.ID, unit.ID, req.DueDate, valueobject.NewMoneyKESFromFloat(req.Amount), items)
	if err != nil {
		return nil, err
	}

	previous, err := s.invoiceRepo.SumOutstandingByTenant(ctx, tenant.ID)
	if err != nil {
		return nil, err
	}
	invoice.WithPreviousBalance(valueobject.NewMoneyKES(previous))

	if err := invoice.Send(); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return nil, err
	}

	s.logger.Info("Invoice created",
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("amount", invoice.Amount.String()))

	s.notifyInvoice(ctx, tenant.Phone, invoice)

	return invoice, nil
}

// ApplyLateFee manually triggers the late-fee calculation for an
// invoice. The fee is applied at most once over the invoice lifetime,
// so repeated calls are harmless.
func (s *InvoiceService) ApplyLateFee(ctx context.Context, principal identity.Principal, invoiceID uuid.UUID) (*billing.Invoice, error) {
	if !principal.CanManageBilling() {
		return nil, shared.ErrForbidden
	}

	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if !invoice.ApplyLateFee(time.Now()) {
		return invoice, nil
	}
	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		return nil, err
	}

	s.logger.Info("Late fee applied",
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("late_fee", invoice.LateFee.String()),
		zap.String("balance", invoice.Balance.String()))

	return invoice, nil
}

// MarkPaid forces an invoice to PAID as a manual correction
func (s *InvoiceService) MarkPaid(ctx context.Context, principal identity.Principal, invoiceID uuid.UUID) (*billing.Invoice, error) {
	if !principal.CanManageBilling() {
		return nil, shared.ErrForbidden
	}

	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := invoice.MarkPaid(); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		return nil, err
	}

	s.logger.Warn("Invoice marked paid by override",
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("remaining_balance", invoice.Balance.String()),
		zap.String("principal_id", principal.ID.String()))

	return invoice, nil
}

// CancelInvoice voids a not-yet-paid invoice
func (s *InvoiceService) CancelInvoice(ctx context.Context, principal identity.Principal, invoiceID uuid.UUID) (*billing.Invoice, error) {
	if !principal.CanManageBilling() {
		return nil, shared.ErrForbidden
	}

	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := invoice.Cancel(); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

// GetInvoice fetches an invoice by ID
func (s *InvoiceService) GetInvoice(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	return s.invoiceRepo.FindByID(ctx, id)
}

// ListByTenant returns a tenant's invoices, scoped by the caller's
// visibility
func (s *InvoiceService) ListByTenant(ctx context.Context, principal identity.Principal, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[billing.Invoice], error) {
	if !principal.CanViewTenant(tenantID) {
		return nil, shared.ErrForbidden
	}
	return s.invoiceRepo.FindByTenant(ctx, tenantID, filter)
}

// OutstandingBalance totals a tenant's outstanding invoice balances
func (s *InvoiceService) OutstandingBalance(ctx context.Context, principal identity.Principal, tenantID uuid.UUID) (valueobject.Money, error) {
	if !principal.CanViewTenant(tenantID) {
		return valueobject.ZeroKES(), shared.ErrForbidden
	}
	sum, err := s.invoiceRepo.SumOutstandingByTenant(ctx, tenantID)
	if err != nil {
		return valueobject.ZeroKES(), err
	}
	return valueobject.NewMoneyKES(sum), nil
}

// notifyInvoice sends the invoice SMS best-effort, never failing the
// caller
func (s *InvoiceService) notifyInvoice(ctx context.Context, phone string, invoice *billing.Invoice) {
	if s.notifier == nil || phone == "" {
		return
	}
	msg := fmt.Sprintf("Invoice %s for %s is due on %s.",
		invoice.InvoiceNumber, invoice.GetAmountMoney().String(), invoice.DueDate.Format("02 Jan 2006"))
	if _, err := s.notifier.Send(ctx, phone, msg); err != nil {
		s.logger.Warn("Invoice notification failed",
			zap.String("invoice_number", invoice.InvoiceNumber),
			zap.Error(err))
	}
}
