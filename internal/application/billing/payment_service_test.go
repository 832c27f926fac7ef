package billing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rently/backend/internal/domain/billing"
	"github.com/rently/backend/internal/domain/identity"
	"github.com/rently/backend/internal/domain/shared"
	"github.com/rently/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type paymentFixture struct {
	paymentRepo *mockPaymentRepo
	invoiceRepo *mockInvoiceRepo
	tenantRepo  *mockTenantRepo
	unitRepo    *mockUnitRepo
	service     *PaymentService
}

func newPaymentFixture() *paymentFixture {
	f := &paymentFixture{
		paymentRepo: &mockPaymentRepo{},
		invoiceRepo: &mockInvoiceRepo{},
		tenantRepo:  &mockTenantRepo{},
		unitRepo:    &mockUnitRepo{},
	}
	f.service = NewPaymentService(f.paymentRepo, f.invoiceRepo, f.tenantRepo, f.unitRepo, zap.NewNop())
	return f
}

func TestPaymentService_RecordPayment_Partial(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()
	unit, tenant := occupiedUnitAndTenant(t, 1500)
	paid := time.Now().AddDate(0, 0, -1)

	f.tenantRepo.On("FindByID", ctx, tenant.ID).Return(tenant, nil)
	f.unitRepo.On("FindByID", ctx, unit.ID).Return(unit, nil)
	f.invoiceRepo.On("SumOutstandingByTenant", ctx, tenant.ID).Return(decimal.NewFromInt(1000), nil)
	f.paymentRepo.On("Save", ctx, mock.AnythingOfType("*billing.Payment")).Return(nil)
	f.tenantRepo.On("Save", ctx, tenant).Return(nil)

	payment, err := f.service.RecordPayment(ctx, billingPrincipal(), RecordPaymentRequest{
		TenantID:    tenant.ID,
		UnitID:      unit.ID,
		Amount:      400,
		Method:      "MPESA",
		PaymentType: "RENT",
		PaidDate:    &paid,
	})
	require.NoError(t, err)

	assert.True(t, payment.BalanceAfter.Equal(decimal.NewFromInt(600)))
	assert.Equal(t, billing.PaymentStatusPartial, payment.Status)
	assert.True(t, tenant.BalanceDue.Equal(decimal.NewFromInt(600)))
}

func TestPaymentService_RecordPayment_ClearsBalance(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()
	unit, tenant := occupiedUnitAndTenant(t, 1500)
	paid := time.Now().AddDate(0, 0, -1)

	f.tenantRepo.On("FindByID", ctx, tenant.ID).Return(tenant, nil)
	f.unitRepo.On("FindByID", ctx, unit.ID).Return(unit, nil)
	f.invoiceRepo.On("SumOutstandingByTenant", ctx, tenant.ID).Return(decimal.NewFromInt(400), nil)
	f.paymentRepo.On("Save", ctx, mock.AnythingOfType("*billing.Payment")).Return(nil)
	f.tenantRepo.On("Save", ctx, tenant).Return(nil)

	payment, err := f.service.RecordPayment(ctx, billingPrincipal(), RecordPaymentRequest{
		TenantID:    tenant.ID,
		UnitID:      unit.ID,
		Amount:      400,
		Method:      "BANK",
		PaymentType: "RENT",
		PaidDate:    &paid,
	})
	require.NoError(t, err)

	assert.True(t, payment.BalanceAfter.IsZero())
	assert.Equal(t, billing.PaymentStatusPaid, payment.Status)
	assert.True(t, tenant.BalanceDue.IsZero())
}

func TestPaymentService_RecordPayment_OverpaymentFloorsTenantBalance(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()
	unit, tenant := occupiedUnitAndTenant(t, 1500)
	paid := time.Now()

	f.tenantRepo.On("FindByID", ctx, tenant.ID).Return(tenant, nil)
	f.unitRepo.On("FindByID", ctx, unit.ID).Return(unit, nil)
	f.invoiceRepo.On("SumOutstandingByTenant", ctx, tenant.ID).Return(decimal.NewFromInt(300), nil)
	f.paymentRepo.On("Save", ctx, mock.AnythingOfType("*billing.Payment")).Return(nil)
	f.tenantRepo.On("Save", ctx, tenant).Return(nil)

	payment, err := f.service.RecordPayment(ctx, billingPrincipal(), RecordPaymentRequest{
		TenantID:    tenant.ID,
		UnitID:      unit.ID,
		Amount:      500,
		Method:      "CASH",
		PaymentType: "RENT",
		PaidDate:    &paid,
	})
	require.NoError(t, err)

	// the snapshot keeps the credit, the cached tenant balance does not
	assert.True(t, payment.BalanceAfter.Equal(decimal.NewFromInt(-200)))
	assert.Equal(t, billing.PaymentStatusPaid, payment.Status)
	assert.True(t, tenant.BalanceDue.IsZero())
}

func TestPaymentService_RecordPayment_InvalidMethod(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()
	unit, tenant := occupiedUnitAndTenant(t, 1500)

	f.tenantRepo.On("FindByID", ctx, tenant.ID).Return(tenant, nil)
	f.unitRepo.On("FindByID", ctx, unit.ID).Return(unit, nil)

	_, err := f.service.RecordPayment(ctx, billingPrincipal(), RecordPaymentRequest{
		TenantID:    tenant.ID,
		UnitID:      unit.ID,
		Amount:      500,
		Method:      "CHEQUE",
		PaymentType: "RENT",
	})
	require.Error(t, err)
	f.paymentRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestPaymentService_RecordPayment_Forbidden(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()

	principal := identity.NewPrincipal(uuid.New(), identity.RoleTenant)
	_, err := f.service.RecordPayment(ctx, principal, RecordPaymentRequest{})
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

func TestPaymentService_RefreshStatus_FlipsPendingToLate(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()
	unit, tenant := occupiedUnitAndTenant(t, 1500)

	payment, err := billing.NewPayment(tenant.ID, unit.ID,
		valueobject.NewMoneyKESFromFloat(500), billing.PaymentMethodMpesa, billing.PaymentTypeRent)
	require.NoError(t, err)
	due := time.Now().AddDate(0, 0, -2)
	payment.SetDueDate(due)
	payment.DeriveStatus(due.AddDate(0, 0, -1))
	require.Equal(t, billing.PaymentStatusPending, payment.Status)

	f.paymentRepo.On("FindByID", ctx, payment.ID).Return(payment, nil)
	f.paymentRepo.On("Save", ctx, payment).Return(nil)

	refreshed, err := f.service.RefreshStatus(ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, billing.PaymentStatusLate, refreshed.Status)
}
