package leasing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PropertyRepository defines persistence operations for properties
type PropertyRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Property, error)
	FindByLandlord(ctx context.Context, landlordID uuid.UUID) ([]Property, error)
	Save(ctx context.Context, property *Property) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// UnitRepository defines persistence operations for units
type UnitRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Unit, error)
	FindByProperty(ctx context.Context, propertyID uuid.UUID) ([]Unit, error)
	// FindExpiringLeases returns occupied units whose lease ends before the cutoff
	FindExpiringLeases(ctx context.Context, propertyID uuid.UUID, cutoff time.Time) ([]Unit, error)
	Save(ctx context.Context, unit *Unit) error
	// SaveWithLock saves with an optimistic version check and returns a
	// conflict error when the unit was modified concurrently
	SaveWithLock(ctx context.Context, unit *Unit) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// TenantRepository defines persistence operations for tenants
type TenantRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	FindByLandlord(ctx context.Context, landlordID uuid.UUID) ([]Tenant, error)
	// FindActiveWithUnit returns tenants with status ACTIVE and a non-nil
	// unit back-reference: the population the monthly invoice run walks
	FindActiveWithUnit(ctx context.Context) ([]Tenant, error)
	Save(ctx context.Context, tenant *Tenant) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// TenancyRecordRepository defines persistence operations for the
// append-only occupancy history
type TenancyRecordRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*TenancyRecord, error)
	FindByUnit(ctx context.Context, unitID uuid.UUID) ([]TenancyRecord, error)
	// FindOpenByUnit returns the single open record for the unit, or a
	// not-found error when the unit is vacant
	FindOpenByUnit(ctx context.Context, unitID uuid.UUID) (*TenancyRecord, error)
	CountOpenByUnit(ctx context.Context, unitID uuid.UUID) (int64, error)
	Save(ctx context.Context, record *TenancyRecord) error
}

// TenancyChange captures every record mutated by a single assignment or
// termination so the persistence layer can write them atomically: the
// unit, the tenants whose residency changed, the history records opened
// and closed, and the property with its recomputed statistics.
type TenancyChange struct {
	Unit            *Unit
	Tenant          *Tenant        // incoming tenant, nil on termination
	DisplacedTenant *Tenant        // tenant moved out, nil if the unit was vacant
	OpenedRecord    *TenancyRecord // new open history record, nil on termination
	ClosedRecord    *TenancyRecord // history record closed, nil if none was open
	Property        *Property      // property with recomputed statistics
}

// TenancyWriter persists a TenancyChange as one all-or-nothing
// transaction. The unit write carries an optimistic version check so
// exactly one of two racing assignments for the same unit commits.
type TenancyWriter interface {
	SaveChange(ctx context.Context, change *TenancyChange) error
}
