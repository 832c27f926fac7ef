package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rently/backend/internal/domain/billing"
	"github.com/rently/backend/internal/domain/shared"
	"github.com/rently/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// invoiceNumberLockKey is the advisory lock key serializing invoice
// number assignment across concurrent transactions.
const invoiceNumberLockKey = 815042

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice by its ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds an invoice by its invoice number
func (r *GormInvoiceRepository) FindByNumber(ctx context.Context, number string) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("invoice_number = ?", number).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByTenant finds invoices for a tenant with pagination
func (r *GormInvoiceRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[billing.Invoice], error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("tenant_id = ?", tenantID).
		Count(&total).Error; err != nil {
		return nil, err
	}

	var invoiceModels []models.InvoiceModel
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where("tenant_id = ?", tenantID)
	query = applyFilter(query, filter)
	if err := query.Find(&invoiceModels).Error; err != nil {
		return nil, err
	}

	invoices := make([]billing.Invoice, len(invoiceModels))
	for i, model := range invoiceModels {
		invoices[i] = *model.ToDomain()
	}
	result := shared.NewPaginated(invoices, total, filter.Page, filter.PageSize)
	return &result, nil
}

// FindOutstandingByTenant finds the tenant's outstanding invoices,
// oldest due first
func (r *GormInvoiceRepository) FindOutstandingByTenant(ctx context.Context, tenantID uuid.UUID) ([]billing.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND status IN ?", tenantID, billing.OutstandingStatuses()).
		Order("due_date ASC").
		Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	invoices := make([]billing.Invoice, len(invoiceModels))
	for i, model := range invoiceModels {
		invoices[i] = *model.ToDomain()
	}
	return invoices, nil
}

// SumOutstandingByTenant totals the balances of the tenant's
// outstanding invoices
func (r *GormInvoiceRepository) SumOutstandingByTenant(ctx context.Context, tenantID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.NullDecimal
	if err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("tenant_id = ? AND status IN ?", tenantID, billing.OutstandingStatuses()).
		Select("COALESCE(SUM(balance), 0)").
		Scan(&sum).Error; err != nil {
		return decimal.Zero, err
	}
	if !sum.Valid {
		return decimal.Zero, nil
	}
	return sum.Decimal, nil
}

// FindDueForLateFee finds SENT and OVERDUE invoices past due as of the
// given time that have not been charged a late fee yet
func (r *GormInvoiceRepository) FindDueForLateFee(ctx context.Context, asOf time.Time) ([]billing.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Where("status IN ? AND due_date < ? AND late_fee_applied = ?",
			[]billing.InvoiceStatus{billing.InvoiceStatusSent, billing.InvoiceStatusOverdue}, asOf, false).
		Order("due_date ASC").
		Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	invoices := make([]billing.Invoice, len(invoiceModels))
	for i, model := range invoiceModels {
		invoices[i] = *model.ToDomain()
	}
	return invoices, nil
}

// ExistsForTenantInMonth reports whether the tenant already has an
// invoice created in the given calendar month
func (r *GormInvoiceRepository) ExistsForTenantInMonth(ctx context.Context, tenantID uuid.UUID, month time.Time) (bool, error) {
	start := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, month.Location())
	end := start.AddDate(0, 1, 0)

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("tenant_id = ? AND created_at >= ? AND created_at < ?", tenantID, start, end).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create persists a new invoice, assigning its number from the monthly
// sequence inside the same transaction. The advisory lock serializes
// concurrent creates so the sequence never yields a duplicate.
func (r *GormInvoiceRepository) Create(ctx context.Context, invoice *billing.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			if err := tx.Exec("SELECT pg_advisory_xact_lock(?)", invoiceNumberLockKey).Error; err != nil {
				return err
			}
		}

		period := invoice.CreatedAt
		prefix := billing.InvoiceNumberPrefix(period)

		// Length before value: "...-10000" must outrank "...-9999"
		var numbers []string
		if err := tx.Model(&models.InvoiceModel{}).
			Where("invoice_number LIKE ?", prefix+"%").
			Order("length(invoice_number) DESC, invoice_number DESC").
			Limit(1).
			Pluck("invoice_number", &numbers).Error; err != nil {
			return err
		}
		sequence := 1
		if len(numbers) > 0 {
			sequence = billing.ParseInvoiceSequence(numbers[0]) + 1
		}
		if err := invoice.AssignNumber(billing.FormatInvoiceNumber(period, sequence)); err != nil {
			return err
		}

		model := &models.InvoiceModel{}
		model.FromDomain(invoice)
		if err := tx.Create(model).Error; err != nil {
			return err
		}
		invoice.MarkStored()
		return nil
	})
}

// Save creates or updates an invoice
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	model := &models.InvoiceModel{}
	model.FromDomain(invoice)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, invoice *billing.Invoice) error {
	model := &models.InvoiceModel{}
	model.FromDomain(invoice)
	result := r.db.WithContext(ctx).
		Model(model).
		Select("*").Omit("id", "created_at").
		Where("id = ? AND version = ?", invoice.ID, invoice.StoredVersion()).
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	invoice.MarkStored()
	return nil
}
