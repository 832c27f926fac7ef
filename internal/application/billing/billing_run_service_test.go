package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rently/backend/internal/domain/billing"
	"github.com/rently/backend/internal/domain/leasing"
	"github.com/rently/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type billingRunFixture struct {
	invoiceRepo *mockInvoiceRepo
	tenantRepo  *mockTenantRepo
	unitRepo    *mockUnitRepo
	notifier    *mockNotifier
	service     *BillingRunService
}

func newBillingRunFixture() *billingRunFixture {
	f := &billingRunFixture{
		invoiceRepo: &mockInvoiceRepo{},
		tenantRepo:  &mockTenantRepo{},
		unitRepo:    &mockUnitRepo{},
		notifier:    &mockNotifier{},
	}
	f.service = NewBillingRunService(f.invoiceRepo, f.tenantRepo, f.unitRepo, f.notifier, zap.NewNop())
	return f
}

func TestBillingRunService_GenerateMonthlyInvoices(t *testing.T) {
	f := newBillingRunFixture()
	ctx := context.Background()
	asOf := time.Date(2024, 2, 1, 6, 0, 0, 0, time.UTC)

	unitA, tenantA := occupiedUnitAndTenant(t, 1200)
	_, tenantB := occupiedUnitAndTenant(t, 800)

	f.tenantRepo.On("FindActiveWithUnit", ctx).Return([]leasing.Tenant{*tenantA, *tenantB}, nil)

	// tenantA gets invoiced, tenantB was already invoiced this month
	f.invoiceRepo.On("ExistsForTenantInMonth", ctx, tenantA.ID, asOf).Return(false, nil)
	f.invoiceRepo.On("ExistsForTenantInMonth", ctx, tenantB.ID, asOf).Return(true, nil)
	f.unitRepo.On("FindByID", ctx, unitA.ID).Return(unitA, nil)
	f.invoiceRepo.On("SumOutstandingByTenant", ctx, tenantA.ID).Return(decimal.Zero, nil)

	var created *billing.Invoice
	f.invoiceRepo.On("Create", ctx, mock.AnythingOfType("*billing.Invoice")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*billing.Invoice)
		}).Return(nil)
	f.notifier.On("Send", ctx, tenantA.Phone, mock.AnythingOfType("string")).Return("msg-1", nil)

	count, err := f.service.GenerateMonthlyInvoices(ctx, asOf)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NotNil(t, created)
	assert.Equal(t, billing.InvoiceStatusSent, created.Status)
	assert.Equal(t, tenantA.ID, created.TenantID)
	assert.True(t, created.Amount.Equal(decimal.NewFromInt(1200)))
	assert.Equal(t, asOf.AddDate(0, 0, 5), created.DueDate)
	require.Len(t, created.Items, 1)
	assert.Equal(t, billing.ItemTypeRent, created.Items[0].ItemType)
}

func TestBillingRunService_GenerateMonthlyInvoices_StalePointerSkipped(t *testing.T) {
	f := newBillingRunFixture()
	ctx := context.Background()
	asOf := time.Date(2024, 2, 1, 6, 0, 0, 0, time.UTC)

	// the unit no longer points back at the tenant
	tenant, err := leasing.NewTenant(uuid.New(), "Jane Wanjiku", "+254712345678")
	require.NoError(t, err)
	unit, err := leasing.NewUnit(uuid.New(), "A-101", "2BR", valueobject.NewMoneyKESFromFloat(1200))
	require.NoError(t, err)
	require.NoError(t, tenant.MoveIn(unit.ID, asOf.AddDate(0, -2, 0)))

	f.tenantRepo.On("FindActiveWithUnit", ctx).Return([]leasing.Tenant{*tenant}, nil)
	f.invoiceRepo.On("ExistsForTenantInMonth", ctx, tenant.ID, asOf).Return(false, nil)
	f.unitRepo.On("FindByID", ctx, unit.ID).Return(unit, nil)

	count, err := f.service.GenerateMonthlyInvoices(ctx, asOf)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	f.invoiceRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestBillingRunService_GenerateMonthlyInvoices_FailureDoesNotAbortRun(t *testing.T) {
	f := newBillingRunFixture()
	ctx := context.Background()
	asOf := time.Date(2024, 2, 1, 6, 0, 0, 0, time.UTC)

	unitA, tenantA := occupiedUnitAndTenant(t, 1200)
	unitB, tenantB := occupiedUnitAndTenant(t, 800)

	f.tenantRepo.On("FindActiveWithUnit", ctx).Return([]leasing.Tenant{*tenantA, *tenantB}, nil)
	f.invoiceRepo.On("ExistsForTenantInMonth", ctx, mock.Anything, asOf).Return(false, nil)
	f.unitRepo.On("FindByID", ctx, unitA.ID).Return(unitA, nil)
	f.unitRepo.On("FindByID", ctx, unitB.ID).Return(unitB, nil)
	f.invoiceRepo.On("SumOutstandingByTenant", ctx, mock.Anything).Return(decimal.Zero, nil)

	// the first create blows up, the second succeeds
	f.invoiceRepo.On("Create", ctx, mock.MatchedBy(func(inv *billing.Invoice) bool {
		return inv.TenantID == tenantA.ID
	})).Return(errors.New("sequence conflict"))
	f.invoiceRepo.On("Create", ctx, mock.MatchedBy(func(inv *billing.Invoice) bool {
		return inv.TenantID == tenantB.ID
	})).Return(nil)
	f.notifier.On("Send", ctx, mock.Anything, mock.Anything).Return("msg-1", nil)

	count, err := f.service.GenerateMonthlyInvoices(ctx, asOf)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestBillingRunService_CheckOverdueInvoices(t *testing.T) {
	f := newBillingRunFixture()
	ctx := context.Background()
	due := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	asOf := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	invoice, err := billing.NewInvoice(uuid.New(), uuid.New(), due, valueobject.NewMoneyKESFromFloat(1000), nil)
	require.NoError(t, err)
	require.NoError(t, invoice.Send())

	f.invoiceRepo.On("FindDueForLateFee", ctx, asOf).Return([]billing.Invoice{*invoice}, nil)

	var saved *billing.Invoice
	f.invoiceRepo.On("SaveWithLock", ctx, mock.AnythingOfType("*billing.Invoice")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(*billing.Invoice)
		}).Return(nil)

	charged, err := f.service.CheckOverdueInvoices(ctx, asOf)
	require.NoError(t, err)
	assert.Equal(t, 1, charged)

	require.NotNil(t, saved)
	assert.Equal(t, billing.InvoiceStatusOverdue, saved.Status)
	assert.True(t, saved.LateFee.Equal(decimal.NewFromInt(100)))
	assert.True(t, saved.Balance.Equal(decimal.NewFromInt(1100)))
	assert.True(t, saved.LateFeeApplied)
}

func TestBillingRunService_CheckOverdueInvoices_SecondRunNoop(t *testing.T) {
	// invoices already charged a fee never come back from the query
	f := newBillingRunFixture()
	ctx := context.Background()
	asOf := time.Date(2024, 1, 11, 0, 0, 0, 0, time.UTC)

	f.invoiceRepo.On("FindDueForLateFee", ctx, asOf).Return([]billing.Invoice{}, nil)

	charged, err := f.service.CheckOverdueInvoices(ctx, asOf)
	require.NoError(t, err)
	assert.Equal(t, 0, charged)
	f.invoiceRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
}
