package persistence

import (
	"context"

	"github.com/rently/backend/internal/domain/leasing"
	"github.com/rently/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTenancyWriter implements TenancyWriter using GORM. SaveChange
// writes every record touched by an assignment or termination in one
// transaction, so the unit, the tenants, the history records and the
// property statistics can never drift apart.
type GormTenancyWriter struct {
	db *gorm.DB
}

// NewGormTenancyWriter creates a new GormTenancyWriter
func NewGormTenancyWriter(db *gorm.DB) *GormTenancyWriter {
	return &GormTenancyWriter{db: db}
}

// SaveChange persists a TenancyChange atomically. The unit write
// carries the optimistic version check, so of two racing changes for
// the same unit exactly one commits and the other sees a concurrency
// conflict.
func (w *GormTenancyWriter) SaveChange(ctx context.Context, change *leasing.TenancyChange) error {
	return w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if change.Unit != nil {
			if err := saveUnitLocked(tx, change.Unit); err != nil {
				return err
			}
		}
		if change.DisplacedTenant != nil {
			if err := saveTenant(tx, change.DisplacedTenant); err != nil {
				return err
			}
		}
		if change.Tenant != nil {
			if err := saveTenant(tx, change.Tenant); err != nil {
				return err
			}
		}
		if change.ClosedRecord != nil {
			if err := saveRecord(tx, change.ClosedRecord); err != nil {
				return err
			}
		}
		if change.OpenedRecord != nil {
			if err := saveRecord(tx, change.OpenedRecord); err != nil {
				return err
			}
		}
		if change.Property != nil {
			model := &models.PropertyModel{}
			model.FromDomain(change.Property)
			if err := tx.Save(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func saveTenant(tx *gorm.DB, tenant *leasing.Tenant) error {
	model := &models.TenantModel{}
	model.FromDomain(tenant)
	return tx.Save(model).Error
}

func saveRecord(tx *gorm.DB, record *leasing.TenancyRecord) error {
	model := &models.TenancyRecordModel{}
	model.FromDomain(record)
	return tx.Save(model).Error
}
