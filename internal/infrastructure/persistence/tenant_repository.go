package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rently/backend/internal/domain/leasing"
	"github.com/rently/backend/internal/domain/shared"
	"github.com/rently/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTenantRepository implements TenantRepository using GORM
type GormTenantRepository struct {
	db *gorm.DB
}

// NewGormTenantRepository creates a new GormTenantRepository
func NewGormTenantRepository(db *gorm.DB) *GormTenantRepository {
	return &GormTenantRepository{db: db}
}

// FindByID finds a tenant by their ID
func (r *GormTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*leasing.Tenant, error) {
	var model models.TenantModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByLandlord finds all tenants belonging to a landlord
func (r *GormTenantRepository) FindByLandlord(ctx context.Context, landlordID uuid.UUID) ([]leasing.Tenant, error) {
	var tenantModels []models.TenantModel
	if err := r.db.WithContext(ctx).
		Where("landlord_id = ?", landlordID).
		Order("full_name ASC").
		Find(&tenantModels).Error; err != nil {
		return nil, err
	}
	tenants := make([]leasing.Tenant, len(tenantModels))
	for i, model := range tenantModels {
		tenants[i] = *model.ToDomain()
	}
	return tenants, nil
}

// FindActiveWithUnit finds active tenants currently assigned to a unit.
// This is the population the monthly invoice run walks.
func (r *GormTenantRepository) FindActiveWithUnit(ctx context.Context) ([]leasing.Tenant, error) {
	var tenantModels []models.TenantModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND current_unit_id IS NOT NULL", leasing.TenantStatusActive).
		Order("created_at ASC").
		Find(&tenantModels).Error; err != nil {
		return nil, err
	}
	tenants := make([]leasing.Tenant, len(tenantModels))
	for i, model := range tenantModels {
		tenants[i] = *model.ToDomain()
	}
	return tenants, nil
}

// Save creates or updates a tenant
func (r *GormTenantRepository) Save(ctx context.Context, tenant *leasing.Tenant) error {
	model := &models.TenantModel{}
	model.FromDomain(tenant)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes a tenant
func (r *GormTenantRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.TenantModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
