package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rently/backend/internal/domain/leasing"
	"github.com/rently/backend/internal/domain/shared"
	"github.com/rently/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormUnitRepository implements UnitRepository using GORM
type GormUnitRepository struct {
	db *gorm.DB
}

// NewGormUnitRepository creates a new GormUnitRepository
func NewGormUnitRepository(db *gorm.DB) *GormUnitRepository {
	return &GormUnitRepository{db: db}
}

// FindByID finds a unit by its ID
func (r *GormUnitRepository) FindByID(ctx context.Context, id uuid.UUID) (*leasing.Unit, error) {
	var model models.UnitModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByProperty finds all units belonging to a property
func (r *GormUnitRepository) FindByProperty(ctx context.Context, propertyID uuid.UUID) ([]leasing.Unit, error) {
	var unitModels []models.UnitModel
	if err := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("unit_number ASC").
		Find(&unitModels).Error; err != nil {
		return nil, err
	}
	units := make([]leasing.Unit, len(unitModels))
	for i, model := range unitModels {
		units[i] = *model.ToDomain()
	}
	return units, nil
}

// FindExpiringLeases finds occupied units whose lease ends before the
// cutoff. A zero propertyID searches across all properties.
func (r *GormUnitRepository) FindExpiringLeases(ctx context.Context, propertyID uuid.UUID, cutoff time.Time) ([]leasing.Unit, error) {
	var unitModels []models.UnitModel
	query := r.db.WithContext(ctx).
		Where("status = ? AND lease_end IS NOT NULL AND lease_end <= ?", leasing.OccupancyStateOccupied, cutoff)
	if propertyID != uuid.Nil {
		query = query.Where("property_id = ?", propertyID)
	}
	if err := query.Order("lease_end ASC").Find(&unitModels).Error; err != nil {
		return nil, err
	}
	units := make([]leasing.Unit, len(unitModels))
	for i, model := range unitModels {
		units[i] = *model.ToDomain()
	}
	return units, nil
}

// Save creates or updates a unit
func (r *GormUnitRepository) Save(ctx context.Context, unit *leasing.Unit) error {
	model := &models.UnitModel{}
	model.FromDomain(unit)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock saves with optimistic locking
func (r *GormUnitRepository) SaveWithLock(ctx context.Context, unit *leasing.Unit) error {
	return saveUnitLocked(r.db.WithContext(ctx), unit)
}

// Delete removes a unit
func (r *GormUnitRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.UnitModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// saveUnitLocked writes a unit with an optimistic version check. An
// aggregate that was never persisted is inserted; anything hydrated from
// storage must still match the version it was loaded at to win the
// write. The loaded version is the anchor, not Version minus one, since
// a single call may advance the unit through several transitions, as a
// displacement does with Vacate followed by Occupy.
func saveUnitLocked(tx *gorm.DB, unit *leasing.Unit) error {
	model := &models.UnitModel{}
	model.FromDomain(unit)
	if unit.StoredVersion() == 0 {
		if err := tx.Create(model).Error; err != nil {
			return err
		}
		unit.MarkStored()
		return nil
	}
	result := tx.Model(model).
		Select("*").Omit("id", "created_at").
		Where("id = ? AND version = ?", unit.ID, unit.StoredVersion()).
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	unit.MarkStored()
	return nil
}
