package leasing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rently/backend/internal/domain/identity"
	"github.com/rently/backend/internal/domain/leasing"
	"github.com/rently/backend/internal/domain/shared"
	"github.com/rently/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateUnitRequest carries the input for creating a unit
type CreateUnitRequest struct {
	PropertyID uuid.UUID `json:"property_id" binding:"required"`
	UnitNumber string    `json:"unit_number" binding:"required"`
	UnitType   string    `json:"unit_type"`
	Floor      *int      `json:"floor,omitempty"`
	Size       float64   `json:"size,omitempty"`
	Rent       float64   `json:"rent" binding:"required,gt=0"`
	Deposit    float64   `json:"deposit"`
}

// UnitService handles unit management. Every mutation that can change a
// property's occupancy or revenue figures recomputes the property
// statistics in the same transaction.
type UnitService struct {
	unitRepo leasing.UnitRepository
	propRepo leasing.PropertyRepository
	writer   leasing.TenancyWriter
	logger   *zap.Logger
}

// NewUnitService creates a new UnitService
func NewUnitService(
	unitRepo leasing.UnitRepository,
	propRepo leasing.PropertyRepository,
	writer leasing.TenancyWriter,
	logger *zap.Logger,
) *UnitService {
	return &UnitService{
		unitRepo: unitRepo,
		propRepo: propRepo,
		writer:   writer,
		logger:   logger,
	}
}

// CreateUnit adds a unit to a property and refreshes the property
// statistics
func (s *UnitService) CreateUnit(ctx context.Context, principal identity.Principal, req CreateUnitRequest) (*leasing.Unit, error) {
	if !principal.CanManageTenancies() {
		return nil, shared.ErrForbidden
	}

	property, err := s.propRepo.FindByID(ctx, req.PropertyID)
	if err != nil {
		return nil, err
	}

	unit, err := leasing.NewUnit(property.ID, req.UnitNumber, req.UnitType, valueobject.NewMoneyKESFromFloat(req.Rent))
	if err != nil {
		return nil, err
	}
	unit.Floor = req.Floor
	if req.Size > 0 {
		unit.Size = decimal.NewFromFloat(req.Size)
	}
	if req.Deposit > 0 {
		unit.Deposit = valueobject.NewMoneyKESFromFloat(req.Deposit).Amount()
	}

	units, err := s.unitRepo.FindByProperty(ctx, property.ID)
	if err != nil {
		return nil, err
	}
	units = append(units, *unit)
	property.RecalculateStats(units)

	change := &leasing.TenancyChange{Unit: unit, Property: property}
	if err := s.writer.SaveChange(ctx, change); err != nil {
		return nil, err
	}

	s.logger.Info("Unit created",
		zap.String("unit_id", unit.ID.String()),
		zap.String("property_id", property.ID.String()),
		zap.String("unit_number", unit.UnitNumber))

	return unit, nil
}

// GetUnit fetches a unit by ID
func (s *UnitService) GetUnit(ctx context.Context, id uuid.UUID) (*leasing.Unit, error) {
	return s.unitRepo.FindByID(ctx, id)
}

// ListUnitsByProperty returns all units belonging to a property
func (s *UnitService) ListUnitsByProperty(ctx context.Context, propertyID uuid.UUID) ([]leasing.Unit, error) {
	return s.unitRepo.FindByProperty(ctx, propertyID)
}

// StartMaintenance takes a vacant unit out of service
func (s *UnitService) StartMaintenance(ctx context.Context, principal identity.Principal, unitID uuid.UUID) (*leasing.Unit, error) {
	return s.transitionMaintenance(ctx, principal, unitID, (*leasing.Unit).StartMaintenance)
}

// EndMaintenance returns a unit from maintenance to the vacant pool
func (s *UnitService) EndMaintenance(ctx context.Context, principal identity.Principal, unitID uuid.UUID) (*leasing.Unit, error) {
	return s.transitionMaintenance(ctx, principal, unitID, (*leasing.Unit).EndMaintenance)
}

func (s *UnitService) transitionMaintenance(ctx context.Context, principal identity.Principal, unitID uuid.UUID, transition func(*leasing.Unit) error) (*leasing.Unit, error) {
	if !principal.CanManageTenancies() {
		return nil, shared.ErrForbidden
	}

	unit, err := s.unitRepo.FindByID(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if err := transition(unit); err != nil {
		return nil, err
	}

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

	change := &leasing.TenancyChange{Unit: unit, Property: property}
	if err := s.writer.SaveChange(ctx, change); err != nil {
		return nil, err
	}

	s.logger.Info("Unit maintenance state changed",
		zap.String("unit_id", unit.ID.String()),
		zap.String("status", unit.Status.String()))

	return unit, nil
}

// DeleteUnit removes a vacant unit and refreshes the property
// statistics. Occupied units cannot be deleted.
func (s *UnitService) DeleteUnit(ctx context.Context, principal identity.Principal, unitID uuid.UUID) error {
	if !principal.CanManageTenancies() {
		return shared.ErrForbidden
	}

	unit, err := s.unitRepo.FindByID(ctx, unitID)
	if err != nil {
		return err
	}
	if unit.IsOccupied() {
		return shared.NewDomainError("INVALID_STATE", "Cannot delete an occupied unit")
	}

	if err := s.unitRepo.Delete(ctx, unitID); err != nil {
		return err
	}

	property, err := s.propRepo.FindByID(ctx, unit.PropertyID)
	if err != nil {
		return err
	}
	units, err := s.unitRepo.FindByProperty(ctx, unit.PropertyID)
	if err != nil {
		return err
	}
	remaining := units[:0]
	for _, u := range units {
		if u.ID != unitID {
			remaining = append(remaining, u)
		}
	}
	property.RecalculateStats(remaining)
	if err := s.propRepo.Save(ctx, property); err != nil {
		return err
	}

	s.logger.Info("Unit deleted", zap.String("unit_id", unitID.String()))
	return nil
}

// ListExpiringLeases returns occupied units of a property whose lease
// ends within the given number of days
func (s *UnitService) ListExpiringLeases(ctx context.Context, propertyID uuid.UUID, days int) ([]leasing.Unit, error) {
	if days <= 0 {
		days = 30
	}
	cutoff := time.Now().AddDate(0, 0, days)
	return s.unitRepo.FindExpiringLeases(ctx, propertyID, cutoff)
}
