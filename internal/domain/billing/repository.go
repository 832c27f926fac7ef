package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rently/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InvoiceRepository defines persistence operations for invoices
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindByNumber(ctx context.Context, number string) (*Invoice, error)
	FindByTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[Invoice], error)
	// FindOutstandingByTenant returns the tenant's SENT, OVERDUE and
	// PARTIALLY_PAID invoices
	FindOutstandingByTenant(ctx context.Context, tenantID uuid.UUID) ([]Invoice, error)
	// SumOutstandingByTenant totals the balances of the tenant's
	// outstanding invoices
	SumOutstandingByTenant(ctx context.Context, tenantID uuid.UUID) (decimal.Decimal, error)
	// FindDueForLateFee returns SENT and OVERDUE invoices past due as of
	// the given time that have not yet been charged a late fee
	FindDueForLateFee(ctx context.Context, asOf time.Time) ([]Invoice, error)
	// ExistsForTenantInMonth reports whether the tenant already has an
	// invoice created in the given calendar month
	ExistsForTenantInMonth(ctx context.Context, tenantID uuid.UUID, month time.Time) (bool, error)
	// Create persists a new invoice and assigns its number from the
	// monthly sequence inside the same transaction, so concurrent creates
	// never produce a duplicate
	Create(ctx context.Context, invoice *Invoice) error
	Save(ctx context.Context, invoice *Invoice) error
	// SaveWithLock saves with an optimistic version check and returns a
	// conflict error when the invoice was modified concurrently
	SaveWithLock(ctx context.Context, invoice *Invoice) error
}

// PaymentRepository defines persistence operations for payments
type PaymentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	FindByReference(ctx context.Context, reference string) (*Payment, error)
	FindByTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[Payment], error)
	Save(ctx context.Context, payment *Payment) error
}
