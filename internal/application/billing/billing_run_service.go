package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rently/backend/internal/domain/billing"
	"github.com/rently/backend/internal/domain/leasing"
	"github.com/rently/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
)

// rent invoices fall due this many days after generation
const invoiceDueDays = 5

// BillingRunService runs the periodic billing jobs. Both jobs are
// idempotent and re-runnable: a failure on one tenant or invoice is
// logged with enough context to re-run and never aborts the rest of the
// batch.
type BillingRunService struct {
	invoiceRepo billing.InvoiceRepository
	tenantRepo  leasing.TenantRepository
	unitRepo    leasing.UnitRepository
	notifier    Notifier
	logger      *zap.Logger
}

// NewBillingRunService creates a new BillingRunService
func NewBillingRunService(
	invoiceRepo billing.InvoiceRepository,
	tenantRepo leasing.TenantRepository,
	unitRepo leasing.UnitRepository,
	notifier Notifier,
	logger *zap.Logger,
) *BillingRunService {
	return &BillingRunService{
		invoiceRepo: invoiceRepo,
		tenantRepo:  tenantRepo,
		unitRepo:    unitRepo,
		notifier:    notifier,
		logger:      logger,
	}
}

// GenerateMonthlyInvoices creates a rent invoice for every ACTIVE
// tenant with a unit, skipping tenants already invoiced this month.
// Invoices are issued SENT immediately, due in five days, with a single
// RENT line for the unit's rent. Returns the number created.
// Re-running within the same month only fills gaps left by earlier
// failures.
func (s *BillingRunService) GenerateMonthlyInvoices(ctx context.Context, asOf time.Time) (int, error) {
	tenants, err := s.tenantRepo.FindActiveWithUnit(ctx)
	if err != nil {
		return 0, err
	}

	s.logger.Info("Monthly invoice run started",
		zap.Time("as_of", asOf),
		zap.Int("candidate_tenants", len(tenants)))

	created := 0
	for i := range tenants {
		tenant := &tenants[i]
		switch err := s.generateForTenant(ctx, tenant, asOf); {
		case errors.Is(err, errSkipped):
			continue
		case err != nil:
			s.logger.Error("Invoice generation failed for tenant",
				zap.String("tenant_id", tenant.ID.String()),
				zap.Error(err))
			continue
		}
		created++
	}

	s.logger.Info("Monthly invoice run finished",
		zap.Time("as_of", asOf),
		zap.Int("created", created))

	return created, nil
}

// errSkipped marks tenants legitimately passed over in a run
var errSkipped = errors.New("skipped")

func (s *BillingRunService) generateForTenant(ctx context.Context, tenant *leasing.Tenant, asOf time.Time) error {
	exists, err := s.invoiceRepo.ExistsForTenantInMonth(ctx, tenant.ID, asOf)
	if err != nil {
		return err
	}
	if exists {
		s.logger.Debug("Tenant already invoiced this month",
			zap.String("tenant_id", tenant.ID.String()))
		return errSkipped
	}

	if tenant.CurrentUnitID == nil {
		return errSkipped
	}
	unit, err := s.unitRepo.FindByID(ctx, *tenant.CurrentUnitID)
	if err != nil {
		return err
	}
	// stale back-reference: the unit no longer agrees that this tenant
	// occupies it
	if unit.CurrentTenantID == nil || *unit.CurrentTenantID != tenant.ID {
		s.logger.Error("Tenant unit back-reference is stale, skipping",
			zap.String("tenant_id", tenant.ID.String()),
			zap.String("unit_id", unit.ID.String()))
		return errSkipped
	}

	rent := unit.GetRentMoney()
	item, err := billing.NewInvoiceItem(
		fmt.Sprintf("Rent for %s, %s", unit.UnitNumber, asOf.Format("January 2006")),
		rent, billing.ItemTypeRent)
	if err != nil {
		return err
	}

	invoice, err := billing.NewInvoice(tenant.ID, unit.ID, asOf.AddDate(0, 0, invoiceDueDays), rent, []billing.InvoiceItem{item})
	if err != nil {
		return err
	}

	previous, err := s.invoiceRepo.SumOutstandingByTenant(ctx, tenant.ID)
	if err != nil {
		return err
	}
	invoice.WithPreviousBalance(valueobject.NewMoneyKES(previous))

	if err := invoice.Send(); err != nil {
		return err
	}
	if err := s.invoiceRepo.Create(ctx, invoice); err != nil {
		return err
	}

	s.logger.Info("Monthly invoice created",
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("amount", invoice.Amount.String()))

	s.notifyTenant(ctx, tenant.Phone, invoice)
	return nil
}

// CheckOverdueInvoices marks SENT invoices past due as OVERDUE and
// applies the one-time late fee. Invoices already charged a fee are
// never returned by the repository query, so re-runs are no-ops for
// them. Returns the number of invoices charged.
func (s *BillingRunService) CheckOverdueInvoices(ctx context.Context, asOf time.Time) (int, error) {
	invoices, err := s.invoiceRepo.FindDueForLateFee(ctx, asOf)
	if err != nil {
		return 0, err
	}

	s.logger.Info("Overdue scan started",
		zap.Time("as_of", asOf),
		zap.Int("candidates", len(invoices)))

	charged := 0
	for i := range invoices {
		invoice := &invoices[i]
		if err := invoice.MarkOverdue(asOf); err != nil {
			s.logger.Error("Failed to mark invoice overdue",
				zap.String("invoice_number", invoice.InvoiceNumber),
				zap.Error(err))
			continue
		}
		if !invoice.ApplyLateFee(asOf) {
			continue
		}
		if err := s.invoiceRepo.SaveWithLock(ctx, invoice); err != nil {
			s.logger.Error("Failed to save overdue invoice",
				zap.String("invoice_number", invoice.InvoiceNumber),
				zap.Error(err))
			continue
		}
		charged++

		s.logger.Info("Late fee charged",
			zap.String("invoice_number", invoice.InvoiceNumber),
			zap.String("late_fee", invoice.LateFee.String()),
			zap.String("balance", invoice.Balance.String()))
	}

	s.logger.Info("Overdue scan finished",
		zap.Time("as_of", asOf),
		zap.Int("charged", charged))

	return charged, nil
}

func (s *BillingRunService) notifyTenant(ctx context.Context, phone string, invoice *billing.Invoice) {
	if s.notifier == nil || phone == "" {
		return
	}
	msg := fmt.Sprintf("Your rent invoice %s for %s is due on %s.",
		invoice.InvoiceNumber, invoice.GetAmountMoney().String(), invoice.DueDate.Format("02 Jan 2006"))
	if _, err := s.notifier.Send(ctx, phone, msg); err != nil {
		s.logger.Warn("Invoice notification failed",
			zap.String("invoice_number", invoice.InvoiceNumber),
			zap.Error(err))
	}
}
