package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rently/backend/internal/domain/billing"
	"github.com/rently/backend/internal/domain/shared"
	"github.com/rently/backend/internal/domain/shared/valueobject"
	"github.com/rently/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupBillingTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.InvoiceModel{}, &models.PaymentModel{})
	require.NoError(t, err)

	return db
}

func newTestInvoice(t *testing.T, tenantID uuid.UUID, amount float64, dueDate time.Time) *billing.Invoice {
	rent := valueobject.NewMoneyKESFromFloat(amount)
	item, err := billing.NewInvoiceItem("Monthly rent", rent, billing.ItemTypeRent)
	require.NoError(t, err)

	invoice, err := billing.NewInvoice(tenantID, uuid.New(), dueDate, rent, []billing.InvoiceItem{item})
	require.NoError(t, err)
	require.NoError(t, invoice.Send())
	return invoice
}

func TestInvoiceRepository_Create_AssignsSequentialNumbers(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	first := newTestInvoice(t, uuid.New(), 15000, time.Now().AddDate(0, 0, 5))
	require.NoError(t, repo.Create(ctx, first))

	second := newTestInvoice(t, uuid.New(), 20000, time.Now().AddDate(0, 0, 5))
	require.NoError(t, repo.Create(ctx, second))

	period := first.CreatedAt
	assert.Equal(t, billing.FormatInvoiceNumber(period, 1), first.InvoiceNumber)
	assert.Equal(t, billing.FormatInvoiceNumber(period, 2), second.InvoiceNumber)

	found, err := repo.FindByNumber(ctx, first.InvoiceNumber)
	require.NoError(t, err)
	assert.Equal(t, first.ID, found.ID)
	require.Len(t, found.Items, 1)
	assert.Equal(t, billing.ItemTypeRent, found.Items[0].ItemType)
}

func TestInvoiceRepository_FindByNumber_NotFound(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormInvoiceRepository(db)

	_, err := repo.FindByNumber(context.Background(), "INV-202601-9999")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestInvoiceRepository_SumOutstandingByTenant(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	due := time.Now().AddDate(0, 0, 5)

	require.NoError(t, repo.Create(ctx, newTestInvoice(t, tenantID, 15000, due)))
	require.NoError(t, repo.Create(ctx, newTestInvoice(t, tenantID, 2500, due)))

	paid := newTestInvoice(t, tenantID, 9000, due)
	require.NoError(t, paid.MarkPaid())
	require.NoError(t, repo.Create(ctx, paid))

	require.NoError(t, repo.Create(ctx, newTestInvoice(t, uuid.New(), 40000, due)))

	sum, err := repo.SumOutstandingByTenant(ctx, tenantID)
	require.NoError(t, err)
	assert.True(t, sum.Equal(valueobject.NewMoneyKESFromFloat(17500).Amount()),
		"expected 17500, got %s", sum)

	outstanding, err := repo.FindOutstandingByTenant(ctx, tenantID)
	require.NoError(t, err)
	assert.Len(t, outstanding, 2)
}

func TestInvoiceRepository_SumOutstandingByTenant_Empty(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormInvoiceRepository(db)

	sum, err := repo.SumOutstandingByTenant(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.True(t, sum.IsZero())
}

func TestInvoiceRepository_FindDueForLateFee(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	asOf := time.Now()

	pastDue := newTestInvoice(t, uuid.New(), 15000, asOf.AddDate(0, 0, -3))
	require.NoError(t, repo.Create(ctx, pastDue))

	notDue := newTestInvoice(t, uuid.New(), 15000, asOf.AddDate(0, 0, 5))
	require.NoError(t, repo.Create(ctx, notDue))

	charged := newTestInvoice(t, uuid.New(), 15000, asOf.AddDate(0, 0, -10))
	require.NoError(t, charged.MarkOverdue(asOf))
	charged.ApplyLateFee(asOf)
	require.NoError(t, repo.Create(ctx, charged))

	invoices, err := repo.FindDueForLateFee(ctx, asOf)
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, pastDue.ID, invoices[0].ID)
}

func TestInvoiceRepository_ExistsForTenantInMonth(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	require.NoError(t, repo.Create(ctx, newTestInvoice(t, tenantID, 15000, time.Now().AddDate(0, 0, 5))))

	exists, err := repo.ExistsForTenantInMonth(ctx, tenantID, time.Now())
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsForTenantInMonth(ctx, tenantID, time.Now().AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.ExistsForTenantInMonth(ctx, uuid.New(), time.Now())
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestInvoiceRepository_SaveWithLock(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	invoice := newTestInvoice(t, uuid.New(), 15000, time.Now().AddDate(0, 0, -1))
	require.NoError(t, repo.Create(ctx, invoice))

	t.Run("persists a late fee", func(t *testing.T) {
		fresh, err := repo.FindByID(ctx, invoice.ID)
		require.NoError(t, err)
		require.NoError(t, fresh.MarkOverdue(time.Now()))
		require.True(t, fresh.ApplyLateFee(time.Now()))

		require.NoError(t, repo.SaveWithLock(ctx, fresh))

		stored, err := repo.FindByID(ctx, invoice.ID)
		require.NoError(t, err)
		assert.Equal(t, billing.InvoiceStatusOverdue, stored.Status)
		assert.True(t, stored.LateFeeApplied)
		assert.True(t, stored.LateFee.IsPositive())
	})

	t.Run("rejects stale version", func(t *testing.T) {
		winner, err := repo.FindByID(ctx, invoice.ID)
		require.NoError(t, err)
		stale, err := repo.FindByID(ctx, invoice.ID)
		require.NoError(t, err)

		require.NoError(t, winner.MarkPaid())
		require.NoError(t, repo.SaveWithLock(ctx, winner))

		require.NoError(t, stale.MarkPaid())
		err = repo.SaveWithLock(ctx, stale)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})
}

func TestInvoiceRepository_FindByTenant_Pagination(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(ctx, newTestInvoice(t, tenantID, 15000, time.Now().AddDate(0, 0, i))))
	}

	filter := shared.DefaultFilter()
	filter.PageSize = 2
	filter.OrderBy = "due_date"
	filter.OrderDir = "asc"

	page, err := repo.FindByTenant(ctx, tenantID, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.Total)
	assert.Equal(t, 3, page.TotalPages)
	require.Len(t, page.Items, 2)
	assert.True(t, page.Items[0].DueDate.Before(page.Items[1].DueDate))
}
