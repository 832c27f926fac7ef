package leasing

import (
	"context"

	"github.com/google/uuid"
	"github.com/rently/backend/internal/domain/identity"
	"github.com/rently/backend/internal/domain/leasing"
	"github.com/rently/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CreatePropertyRequest carries the input for creating a property
type CreatePropertyRequest struct {
	LandlordID   uuid.UUID  `json:"landlord_id" binding:"required"`
	AgentID      *uuid.UUID `json:"agent_id,omitempty"`
	Name         string     `json:"name" binding:"required"`
	Address      string     `json:"address" binding:"required"`
	PropertyType string     `json:"property_type" binding:"required"`
}

// PropertyService handles property management
type PropertyService struct {
	propRepo leasing.PropertyRepository
	unitRepo leasing.UnitRepository
	logger   *zap.Logger
}

// NewPropertyService creates a new PropertyService
func NewPropertyService(propRepo leasing.PropertyRepository, unitRepo leasing.UnitRepository, logger *zap.Logger) *PropertyService {
	return &PropertyService{
		propRepo: propRepo,
		unitRepo: unitRepo,
		logger:   logger,
	}
}

// CreateProperty registers a new property
func (s *PropertyService) CreateProperty(ctx context.Context, principal identity.Principal, req CreatePropertyRequest) (*leasing.Property, error) {
	if !principal.CanManageTenancies() {
		return nil, shared.ErrForbidden
	}

	property, err := leasing.NewProperty(req.LandlordID, req.Name, req.Address, leasing.PropertyType(req.PropertyType))
	if err != nil {
		return nil, err
	}
	property.AgentID = req.AgentID

	if err := s.propRepo.Save(ctx, property); err != nil {
		return nil, err
	}

	s.logger.Info("Property created",
		zap.String("property_id", property.ID.String()),
		zap.String("name", property.Name))

	return property, nil
}

// GetProperty fetches a property by ID
func (s *PropertyService) GetProperty(ctx context.Context, id uuid.UUID) (*leasing.Property, error) {
	return s.propRepo.FindByID(ctx, id)
}

// ListByLandlord returns the landlord's properties
func (s *PropertyService) ListByLandlord(ctx context.Context, landlordID uuid.UUID) ([]leasing.Property, error) {
	return s.propRepo.FindByLandlord(ctx, landlordID)
}

// RefreshStats forces a recomputation of a property's cached
// statistics from its units. Useful after out-of-band data fixes.
func (s *PropertyService) RefreshStats(ctx context.Context, id uuid.UUID) (*leasing.Property, error) {
	property, err := s.propRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	units, err := s.unitRepo.FindByProperty(ctx, id)
	if err != nil {
		return nil, err
	}
	property.RecalculateStats(units)
	if err := s.propRepo.Save(ctx, property); err != nil {
		return nil, err
	}
	return property, nil
}
