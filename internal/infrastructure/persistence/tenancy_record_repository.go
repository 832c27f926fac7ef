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

// GormTenancyRecordRepository implements TenancyRecordRepository using GORM
type GormTenancyRecordRepository struct {
	db *gorm.DB
}

// NewGormTenancyRecordRepository creates a new GormTenancyRecordRepository
func NewGormTenancyRecordRepository(db *gorm.DB) *GormTenancyRecordRepository {
	return &GormTenancyRecordRepository{db: db}
}

// FindByID finds a tenancy record by its ID
func (r *GormTenancyRecordRepository) FindByID(ctx context.Context, id uuid.UUID) (*leasing.TenancyRecord, error) {
	var model models.TenancyRecordModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByUnit returns the full occupancy history of a unit, newest first
func (r *GormTenancyRecordRepository) FindByUnit(ctx context.Context, unitID uuid.UUID) ([]leasing.TenancyRecord, error) {
	var recordModels []models.TenancyRecordModel
	if err := r.db.WithContext(ctx).
		Where("unit_id = ?", unitID).
		Order("start_date DESC").
		Find(&recordModels).Error; err != nil {
		return nil, err
	}
	records := make([]leasing.TenancyRecord, len(recordModels))
	for i, model := range recordModels {
		records[i] = *model.ToDomain()
	}
	return records, nil
}

// FindOpenByUnit returns the single open record for the unit
func (r *GormTenancyRecordRepository) FindOpenByUnit(ctx context.Context, unitID uuid.UUID) (*leasing.TenancyRecord, error) {
	var model models.TenancyRecordModel
	if err := r.db.WithContext(ctx).
		Where("unit_id = ? AND end_date IS NULL", unitID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// CountOpenByUnit counts open records for the unit. Anything other
// than 0 or 1 is a history integrity violation.
func (r *GormTenancyRecordRepository) CountOpenByUnit(ctx context.Context, unitID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.TenancyRecordModel{}).
		Where("unit_id = ? AND end_date IS NULL", unitID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a tenancy record
func (r *GormTenancyRecordRepository) Save(ctx context.Context, record *leasing.TenancyRecord) error {
	model := &models.TenancyRecordModel{}
	model.FromDomain(record)
	return r.db.WithContext(ctx).Save(model).Error
}
