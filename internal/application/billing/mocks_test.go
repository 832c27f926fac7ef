package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rently/backend/internal/domain/billing"
	"github.com/rently/backend/internal/domain/leasing"
	"github.com/rently/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// mockInvoiceRepo is a mock implementation of billing.InvoiceRepository
type mockInvoiceRepo struct {
	mock.Mock
}

func (m *mockInvoiceRepo) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *mockInvoiceRepo) FindByNumber(ctx context.Context, number string) (*billing.Invoice, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *mockInvoiceRepo) FindByTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[billing.Invoice], error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[billing.Invoice]), args.Error(1)
}

func (m *mockInvoiceRepo) FindOutstandingByTenant(ctx context.Context, tenantID uuid.UUID) ([]billing.Invoice, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *mockInvoiceRepo) SumOutstandingByTenant(ctx context.Context, tenantID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockInvoiceRepo) FindDueForLateFee(ctx context.Context, asOf time.Time) ([]billing.Invoice, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *mockInvoiceRepo) ExistsForTenantInMonth(ctx context.Context, tenantID uuid.UUID, month time.Time) (bool, error) {
	args := m.Called(ctx, tenantID, month)
	return args.Bool(0), args.Error(1)
}

func (m *mockInvoiceRepo) Create(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *mockInvoiceRepo) Save(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *mockInvoiceRepo) SaveWithLock(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

// mockPaymentRepo is a mock implementation of billing.PaymentRepository
type mockPaymentRepo struct {
	mock.Mock
}

func (m *mockPaymentRepo) FindByID(ctx context.Context, id uuid.UUID) (*billing.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Payment), args.Error(1)
}

func (m *mockPaymentRepo) FindByReference(ctx context.Context, reference string) (*billing.Payment, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Payment), args.Error(1)
}

func (m *mockPaymentRepo) FindByTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[billing.Payment], error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Paginated[billing.Payment]), args.Error(1)
}

func (m *mockPaymentRepo) Save(ctx context.Context, payment *billing.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

// mockTenantRepo is a mock implementation of leasing.TenantRepository
type mockTenantRepo struct {
	mock.Mock
}

func (m *mockTenantRepo) FindByID(ctx context.Context, id uuid.UUID) (*leasing.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*leasing.Tenant), args.Error(1)
}

func (m *mockTenantRepo) FindByLandlord(ctx context.Context, landlordID uuid.UUID) ([]leasing.Tenant, error) {
	args := m.Called(ctx, landlordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]leasing.Tenant), args.Error(1)
}

func (m *mockTenantRepo) FindActiveWithUnit(ctx context.Context) ([]leasing.Tenant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]leasing.Tenant), args.Error(1)
}

func (m *mockTenantRepo) Save(ctx context.Context, tenant *leasing.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *mockTenantRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// mockUnitRepo is a mock implementation of leasing.UnitRepository
type mockUnitRepo struct {
	mock.Mock
}

func (m *mockUnitRepo) FindByID(ctx context.Context, id uuid.UUID) (*leasing.Unit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*leasing.Unit), args.Error(1)
}

func (m *mockUnitRepo) FindByProperty(ctx context.Context, propertyID uuid.UUID) ([]leasing.Unit, error) {
	args := m.Called(ctx, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]leasing.Unit), args.Error(1)
}

func (m *mockUnitRepo) FindExpiringLeases(ctx context.Context, propertyID uuid.UUID, cutoff time.Time) ([]leasing.Unit, error) {
	args := m.Called(ctx, propertyID, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]leasing.Unit), args.Error(1)
}

func (m *mockUnitRepo) Save(ctx context.Context, unit *leasing.Unit) error {
	args := m.Called(ctx, unit)
	return args.Error(0)
}

func (m *mockUnitRepo) SaveWithLock(ctx context.Context, unit *leasing.Unit) error {
	args := m.Called(ctx, unit)
	return args.Error(0)
}

func (m *mockUnitRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// mockNotifier is a mock implementation of Notifier
type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Send(ctx context.Context, phone, message string) (string, error) {
	args := m.Called(ctx, phone, message)
	return args.String(0), args.Error(1)
}
