package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rently/backend/internal/domain/billing"
	"github.com/rently/backend/internal/domain/identity"
	"github.com/rently/backend/internal/domain/leasing"
	"github.com/rently/backend/internal/domain/shared"
	"github.com/rently/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RecordPaymentRequest carries the input for recording a payment
type RecordPaymentRequest struct {
	TenantID    uuid.UUID  `json:"tenant_id" binding:"required"`
	UnitID      uuid.UUID  `json:"unit_id" binding:"required"`
	Amount      float64    `json:"amount" binding:"required,gt=0"`
	Method      string     `json:"method" binding:"required"`
	PaymentType string     `json:"payment_type" binding:"required"`
	PaidDate    *time.Time `json:"paid_date,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Notes       string     `json:"notes,omitempty"`
}

// PaymentService records payments against a tenant's outstanding
// balance. A payment stores a point-in-time snapshot of the balance it
// left behind; which specific invoice the money offsets is decided by
// the billing workflow downstream, not here.
type PaymentService struct {
	paymentRepo billing.PaymentRepository
	invoiceRepo billing.InvoiceRepository
	tenantRepo  leasing.TenantRepository
	unitRepo    leasing.UnitRepository
	logger      *zap.Logger
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	paymentRepo billing.PaymentRepository,
	invoiceRepo billing.InvoiceRepository,
	tenantRepo leasing.TenantRepository,
	unitRepo leasing.UnitRepository,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		paymentRepo: paymentRepo,
		invoiceRepo: invoiceRepo,
		tenantRepo:  tenantRepo,
		unitRepo:    unitRepo,
		logger:      logger,
	}
}

// RecordPayment writes a payment to the ledger. BalanceAfter is the sum
// of the tenant's outstanding invoice balances minus the payment amount,
// frozen at this moment; the payment status is derived from the paid
// date and that snapshot. The tenant's cached balance is refreshed to
// the same figure, floored at zero.
func (s *PaymentService) RecordPayment(ctx context.Context, principal identity.Principal, req RecordPaymentRequest) (*billing.Payment, error) {
	if !principal.CanManageBilling() {
		return nil, shared.ErrForbidden
	}

	tenant, err := s.tenantRepo.FindByID(ctx, req.TenantID)
	if err != nil {
		return nil, err
	}
	if _, err := s.unitRepo.FindByID(ctx, req.UnitID); err != nil {
		return nil, err
	}

	payment, err := billing.NewPayment(tenant.ID, req.UnitID,
		valueobject.NewMoneyKESFromFloat(req.Amount),
		billing.PaymentMethod(req.Method), billing.PaymentType(req.PaymentType))
	if err != nil {
		return nil, err
	}
	payment.Notes = req.Notes
	if req.PaidDate != nil {
		payment.MarkReceived(*req.PaidDate)
	}
	if req.DueDate != nil {
		payment.SetDueDate(*req.DueDate)
	}

	outstanding, err := s.invoiceRepo.SumOutstandingByTenant(ctx, tenant.ID)
	if err != nil {
		return nil, err
	}
	balanceAfter := outstanding.Sub(payment.Amount)
	payment.SetBalanceAfter(balanceAfter)
	payment.DeriveStatus(time.Now())

	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		return nil, err
	}
	payment.AddDomainEvent(billing.NewPaymentRecordedEvent(payment))

	tenant.SetBalanceDue(decimal.Max(balanceAfter, decimal.Zero))
	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		s.logger.Error("Failed to refresh tenant balance after payment",
			zap.String("tenant_id", tenant.ID.String()),
			zap.String("payment_reference", payment.Reference),
			zap.Error(err))
	}

	s.logger.Info("Payment recorded",
		zap.String("reference", payment.Reference),
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("amount", payment.Amount.String()),
		zap.String("balance_after", payment.BalanceAfter.String()),
		zap.String("status", string(payment.Status)))

	return payment, nil
}

// RefreshStatus re-derives a payment's status and saves it. PENDING
// payments flip to LATE once their due date passes, so this runs on
// every save rather than only at creation.
func (s *PaymentService) RefreshStatus(ctx context.Context, paymentID uuid.UUID) (*billing.Payment, error) {
	payment, err := s.paymentRepo.FindByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	before := payment.Status
	payment.DeriveStatus(time.Now())
	if payment.Status == before {
		return payment, nil
	}
	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// GetPayment fetches a payment by ID
func (s *PaymentService) GetPayment(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	return s.paymentRepo.FindByID(ctx, id)
}

// ListByTenant returns a tenant's payments, scoped by the caller's
// visibility
func (s *PaymentService) ListByTenant(ctx context.Context, principal identity.Principal, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[billing.Payment], error) {
	if !principal.CanViewTenant(tenantID) {
		return nil, shared.ErrForbidden
	}
	return s.paymentRepo.FindByTenant(ctx, tenantID, filter)
}
