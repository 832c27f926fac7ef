package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rently/backend/internal/domain/billing"
	"github.com/rently/backend/internal/domain/identity"
	"github.com/rently/backend/internal/domain/leasing"
	"github.com/rently/backend/internal/domain/shared"
	"github.com/rently/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type invoiceFixture struct {
	invoiceRepo *mockInvoiceRepo
	tenantRepo  *mockTenantRepo
	unitRepo    *mockUnitRepo
	notifier    *mockNotifier
	service     *InvoiceService
}

func newInvoiceFixture() *invoiceFixture {
	f := &invoiceFixture{
		invoiceRepo: &mockInvoiceRepo{},
		tenantRepo:  &mockTenantRepo{},
		unitRepo:    &mockUnitRepo{},
		notifier:    &mockNotifier{},
	}
	f.service = NewInvoiceService(f.invoiceRepo, f.tenantRepo, f.unitRepo, f.notifier, zap.NewNop())
	return f
}

func occupiedUnitAndTenant(t *testing.T, rent float64) (*leasing.Unit, *leasing.Tenant) {
	tenant, err := leasing.NewTenant(uuid.New(), "Jane Wanjiku", "+254712345678")
	require.NoError(t, err)
	unit, err := leasing.NewUnit(uuid.New(), "A-101", "2BR", valueobject.NewMoneyKESFromFloat(rent))
	require.NoError(t, err)

	moveIn := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, unit.Occupy(tenant.ID, moveIn, nil))
	require.NoError(t, tenant.MoveIn(unit.ID, moveIn))
	return unit, tenant
}

func billingPrincipal() identity.Principal {
	return identity.NewPrincipal(uuid.New(), identity.RoleAgent)
}

func TestInvoiceService_CreateInvoice(t *testing.T) {
	f := newInvoiceFixture()
	ctx := context.Background()
	unit, tenant := occupiedUnitAndTenant(t, 1500)

	f.tenantRepo.On("FindByID", ctx, tenant.ID).Return(tenant, nil)
	f.unitRepo.On("FindByID", ctx, unit.ID).Return(unit, nil)
	f.invoiceRepo.On("SumOutstandingByTenant", ctx, tenant.ID).Return(decimal.NewFromInt(200), nil)
	f.invoiceRepo.On("Create", ctx, mock.AnythingOfType("*billing.Invoice")).Return(nil)
	f.notifier.On("Send", ctx, tenant.Phone, mock.AnythingOfType("string")).Return("msg-1", nil)

	req := CreateInvoiceRequest{
		TenantID: tenant.ID,
		UnitID:   unit.ID,
		DueDate:  time.Now().AddDate(0, 0, 5),
		Amount:   1500,
		Items: []InvoiceItemInput{
			{Description: "Monthly rent", Amount: 1500, ItemType: "RENT"},
		},
	}

	invoice, err := f.service.CreateInvoice(ctx, billingPrincipal(), req)
	require.NoError(t, err)

	assert.Equal(t, billing.InvoiceStatusSent, invoice.Status)
	assert.True(t, invoice.Balance.Equal(decimal.NewFromInt(1500)))
	assert.True(t, invoice.PreviousBalance.Equal(decimal.NewFromInt(200)))
	require.Len(t, invoice.Items, 1)
	f.notifier.AssertCalled(t, "Send", ctx, tenant.Phone, mock.AnythingOfType("string"))
}

func TestInvoiceService_CreateInvoice_TenantNotAssigned(t *testing.T) {
	f := newInvoiceFixture()
	ctx := context.Background()
	unit, _ := occupiedUnitAndTenant(t, 1500)
	other, err := leasing.NewTenant(uuid.New(), "Peter Otieno", "+254722000000")
	require.NoError(t, err)

	f.tenantRepo.On("FindByID", ctx, other.ID).Return(other, nil)
	f.unitRepo.On("FindByID", ctx, unit.ID).Return(unit, nil)

	req := CreateInvoiceRequest{
		TenantID: other.ID,
		UnitID:   unit.ID,
		DueDate:  time.Now().AddDate(0, 0, 5),
		Amount:   1500,
	}

	_, err = f.service.CreateInvoice(ctx, billingPrincipal(), req)
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_ERROR", domainErr.Code)
	f.invoiceRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestInvoiceService_CreateInvoice_PastDueDate(t *testing.T) {
	f := newInvoiceFixture()
	ctx := context.Background()
	unit, tenant := occupiedUnitAndTenant(t, 1500)

	f.tenantRepo.On("FindByID", ctx, tenant.ID).Return(tenant, nil)
	f.unitRepo.On("FindByID", ctx, unit.ID).Return(unit, nil)

	req := CreateInvoiceRequest{
		TenantID: tenant.ID,
		UnitID:   unit.ID,
		DueDate:  time.Now().AddDate(0, 0, -3),
		Amount:   1500,
	}

	_, err := f.service.CreateInvoice(ctx, billingPrincipal(), req)
	require.Error(t, err)
	f.invoiceRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestInvoiceService_CreateInvoice_NotificationFailureIgnored(t *testing.T) {
	f := newInvoiceFixture()
	ctx := context.Background()
	unit, tenant := occupiedUnitAndTenant(t, 1500)

	f.tenantRepo.On("FindByID", ctx, tenant.ID).Return(tenant, nil)
	f.unitRepo.On("FindByID", ctx, unit.ID).Return(unit, nil)
	f.invoiceRepo.On("SumOutstandingByTenant", ctx, tenant.ID).Return(decimal.Zero, nil)
	f.invoiceRepo.On("Create", ctx, mock.AnythingOfType("*billing.Invoice")).Return(nil)
	f.notifier.On("Send", ctx, tenant.Phone, mock.AnythingOfType("string")).
		Return("", errors.New("provider unreachable"))

	req := CreateInvoiceRequest{
		TenantID: tenant.ID,
		UnitID:   unit.ID,
		DueDate:  time.Now().AddDate(0, 0, 5),
		Amount:   1500,
	}

	invoice, err := f.service.CreateInvoice(ctx, billingPrincipal(), req)
	require.NoError(t, err)
	assert.Equal(t, billing.InvoiceStatusSent, invoice.Status)
}

func TestInvoiceService_CreateInvoice_Forbidden(t *testing.T) {
	f := newInvoiceFixture()
	ctx := context.Background()

	principal := identity.NewPrincipal(uuid.New(), identity.RoleTenant)
	_, err := f.service.CreateInvoice(ctx, principal, CreateInvoiceRequest{})
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestInvoiceService_ApplyLateFee(t *testing.T) {
	f := newInvoiceFixture()
	ctx := context.Background()

	due := time.Now().AddDate(0, 0, -5)
	invoice, err := billing.NewInvoice(uuid.New(), uuid.New(), due, valueobject.NewMoneyKESFromFloat(1000), nil)
	require.NoError(t, err)
	require.NoError(t, invoice.Send())

	f.invoiceRepo.On("FindByID", ctx, invoice.ID).Return(invoice, nil)
	f.invoiceRepo.On("SaveWithLock", ctx, invoice).Return(nil)

	result, err := f.service.ApplyLateFee(ctx, billingPrincipal(), invoice.ID)
	require.NoError(t, err)
	assert.True(t, result.LateFeeApplied)
	assert.True(t, result.Balance.Equal(decimal.NewFromInt(1100)))

	// second call is a no-op and skips the save
	result, err = f.service.ApplyLateFee(ctx, billingPrincipal(), invoice.ID)
	require.NoError(t, err)
	assert.True(t, result.Balance.Equal(decimal.NewFromInt(1100)))
	f.invoiceRepo.AssertNumberOfCalls(t, "SaveWithLock", 1)
}

func TestInvoiceService_MarkPaid_Override(t *testing.T) {
	f := newInvoiceFixture()
	ctx := context.Background()

	invoice, err := billing.NewInvoice(uuid.New(), uuid.New(), time.Now().AddDate(0, 0, 5), valueobject.NewMoneyKESFromFloat(1000), nil)
	require.NoError(t, err)
	require.NoError(t, invoice.Send())

	f.invoiceRepo.On("FindByID", ctx, invoice.ID).Return(invoice, nil)
	f.invoiceRepo.On("SaveWithLock", ctx, invoice).Return(nil)

	result, err := f.service.MarkPaid(ctx, billingPrincipal(), invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.InvoiceStatusPaid, result.Status)
	assert.True(t, result.Balance.Equal(decimal.NewFromInt(1000)))
}
