package leasing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rently/backend/internal/domain/identity"
	"github.com/rently/backend/internal/domain/leasing"
	"github.com/rently/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// TenancyService orchestrates tenant assignment and termination. Every
// mutation is collected into a single TenancyChange and persisted
// atomically, with the property statistics recomputed in the same
// transaction so aggregate reads are consistent immediately after the
// call returns.
type TenancyService struct {
	unitRepo   leasing.UnitRepository
	tenantRepo leasing.TenantRepository
	propRepo   leasing.PropertyRepository
	recordRepo leasing.TenancyRecordRepository
	writer     leasing.TenancyWriter
	logger     *zap.Logger
}

// NewTenancyService creates a new TenancyService
func NewTenancyService(
	unitRepo leasing.UnitRepository,
	tenantRepo leasing.TenantRepository,
	propRepo leasing.PropertyRepository,
	recordRepo leasing.TenancyRecordRepository,
	writer leasing.TenancyWriter,
	logger *zap.Logger,
) *TenancyService {
	return &TenancyService{
		unitRepo:   unitRepo,
		tenantRepo: tenantRepo,
		propRepo:   propRepo,
		recordRepo: recordRepo,
		writer:     writer,
		logger:     logger,
	}
}

// AssignTenant binds a tenant to a unit. If the unit already holds a
// tenant, the sitting tenant is moved out first: their history record is
// closed and their status reverts to PAST before the new tenant is
// bound, so the unit never carries two open history records.
func (s *TenancyService) AssignTenant(ctx context.Context, principal identity.Principal, unitID, tenantID uuid.UUID, leaseStart time.Time, leaseEnd *time.Time) (*leasing.Unit, error) {
	if !principal.CanManageTenancies() {
		return nil, shared.ErrForbidden
	}

	unit, err := s.unitRepo.FindByID(ctx, unitID)
	if err != nil {
		return nil, err
	}
	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if leaseStart.IsZero() {
		leaseStart = time.Now()
	}

	change := &leasing.TenancyChange{Unit: unit, Tenant: tenant}

	if unit.IsOccupied() {
		if *unit.CurrentTenantID == tenantID {
			return nil, shared.NewValidationError("Tenant is already assigned to this unit")
		}
		if err := s.displaceSittingTenant(ctx, unit, change, leaseStart, false); err != nil {
			return nil, err
		}
		unit.Vacate(leaseStart)
	}

	if err := unit.Occupy(tenantID, leaseStart, leaseEnd); err != nil {
		return nil, err
	}
	if err := tenant.MoveIn(unit.ID, leaseStart); err != nil {
		return nil, err
	}

	record, err := leasing.NewTenancyRecord(unit.ID, tenantID, leaseStart)
	if err != nil {
		return nil, err
	}
	change.OpenedRecord = record

	property, err := s.recomputeProperty(ctx, unit)
	if err != nil {
		return nil, err
	}
	change.Property = property

	if err := s.writer.SaveChange(ctx, change); err != nil {
		return nil, err
	}

	s.logger.Info("Tenant assigned",
		zap.String("unit_id", unit.ID.String()),
		zap.String("tenant_id", tenantID.String()),
		zap.Time("lease_start", leaseStart))

	return unit, nil
}

// EndTenancy terminates a unit's current tenancy. It is a no-op when
// the unit has no tenant.
func (s *TenancyService) EndTenancy(ctx context.Context, principal identity.Principal, unitID uuid.UUID, endDate *time.Time) error {
	return s.endOccupancy(ctx, principal, unitID, endDate, false)
}

// EvictTenant terminates the tenancy for cause. The displaced tenant is
// marked EVICTED rather than PAST, so removal for cause stays visible
// on their record. Evicting a unit with no tenant is an error.
func (s *TenancyService) EvictTenant(ctx context.Context, principal identity.Principal, unitID uuid.UUID, endDate *time.Time) error {
	return s.endOccupancy(ctx, principal, unitID, endDate, true)
}

func (s *TenancyService) endOccupancy(ctx context.Context, principal identity.Principal, unitID uuid.UUID, endDate *time.Time, evict bool) error {
	if !principal.CanManageTenancies() {
		return shared.ErrForbidden
	}

	unit, err := s.unitRepo.FindByID(ctx, unitID)
	if err != nil {
		return err
	}
	if !unit.IsOccupied() {
		if evict {
			return shared.NewDomainError("INVALID_STATE", "Unit has no tenant to evict")
		}
		s.logger.Debug("End tenancy skipped, unit is not occupied",
			zap.String("unit_id", unitID.String()))
		return nil
	}

	end := time.Now()
	if endDate != nil {
		end = *endDate
	}

	change := &leasing.TenancyChange{Unit: unit}
	if err := s.displaceSittingTenant(ctx, unit, change, end, evict); err != nil {
		return err
	}
	change.Tenant = change.DisplacedTenant
	change.DisplacedTenant = nil
	unit.Vacate(end)

	property, err := s.recomputeProperty(ctx, unit)
	if err != nil {
		return err
	}
	change.Property = property

	if err := s.writer.SaveChange(ctx, change); err != nil {
		return err
	}

	s.logger.Info("Tenancy ended",
		zap.String("unit_id", unit.ID.String()),
		zap.Time("end_date", end),
		zap.Bool("evicted", evict))

	return nil
}

// displaceSittingTenant moves the unit's current tenant out: their open
// history record is closed and their residency goes to PAST, or EVICTED
// when the removal is for cause. The mutated records are attached to
// the change; nothing is persisted here.
func (s *TenancyService) displaceSittingTenant(ctx context.Context, unit *leasing.Unit, change *leasing.TenancyChange, end time.Time, evict bool) error {
	sittingID := *unit.CurrentTenantID

	sitting, err := s.tenantRepo.FindByID(ctx, sittingID)
	if err != nil {
		return err
	}
	if evict {
		sitting.Evict(end)
	} else {
		sitting.MoveOut(end)
	}
	change.DisplacedTenant = sitting

	record, err := s.recordRepo.FindOpenByUnit(ctx, unit.ID)
	switch {
	case err == nil:
		if err := record.Close(end); err != nil {
			return err
		}
		change.ClosedRecord = record
	case errors.Is(err, shared.ErrNotFound):
		// occupied unit without an open history record: log the invariant
		// violation and carry on, the new record restores consistency
		s.logger.Error("Occupied unit has no open tenancy record",
			zap.String("unit_id", unit.ID.String()),
			zap.String("tenant_id", sittingID.String()))
	default:
		return err
	}

	return nil
}

// recomputeProperty recalculates the property statistics from all of
// its units, substituting the in-memory mutated unit for its stale
// stored copy
func (s *TenancyService) recomputeProperty(ctx context.Context, unit *leasing.Unit) (*leasing.Property, error) {
	property, err := s.propRepo.FindByID(ctx, unit.PropertyID)
	if err != nil {
		return nil, err
	}
	units, err := s.unitRepo.FindByProperty(ctx, unit.PropertyID)
	if err != nil {
		return nil, err
	}
	for i := range units {
		if units[i].ID == unit.ID {
			units[i] = *unit
		}
	}
	property.RecalculateStats(units)
	return property, nil
}
