package leasing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rently/backend/internal/domain/identity"
	"github.com/rently/backend/internal/domain/leasing"
	"github.com/rently/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CreateTenantRequest carries the input for registering a tenant
type CreateTenantRequest struct {
	LandlordID uuid.UUID `json:"landlord_id" binding:"required"`
	FullName   string    `json:"full_name" binding:"required"`
	Phone      string    `json:"phone" binding:"omitempty,msisdn"`
	Notes      string    `json:"notes,omitempty"`
}

// TenantService handles tenant registration and residency queries
type TenantService struct {
	tenantRepo leasing.TenantRepository
	unitRepo   leasing.UnitRepository
	recordRepo leasing.TenancyRecordRepository
	logger     *zap.Logger
}

// NewTenantService creates a new TenantService
func NewTenantService(
	tenantRepo leasing.TenantRepository,
	unitRepo leasing.UnitRepository,
	recordRepo leasing.TenancyRecordRepository,
	logger *zap.Logger,
) *TenantService {
	return &TenantService{
		tenantRepo: tenantRepo,
		unitRepo:   unitRepo,
		recordRepo: recordRepo,
		logger:     logger,
	}
}

// CreateTenant registers a new applicant tenant
func (s *TenantService) CreateTenant(ctx context.Context, principal identity.Principal, req CreateTenantRequest) (*leasing.Tenant, error) {
	if !principal.CanManageTenancies() {
		return nil, shared.ErrForbidden
	}

	tenant, err := leasing.NewTenant(req.LandlordID, req.FullName, req.Phone)
	if err != nil {
		return nil, err
	}
	tenant.Notes = req.Notes

	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		return nil, err
	}

	s.logger.Info("Tenant registered",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("landlord_id", req.LandlordID.String()))

	return tenant, nil
}

// GetTenant fetches a tenant, scoped by the caller's visibility
func (s *TenantService) GetTenant(ctx context.Context, principal identity.Principal, id uuid.UUID) (*leasing.Tenant, error) {
	if !principal.CanViewTenant(id) {
		return nil, shared.ErrForbidden
	}
	return s.tenantRepo.FindByID(ctx, id)
}

// ListByLandlord returns the landlord's tenants
func (s *TenantService) ListByLandlord(ctx context.Context, landlordID uuid.UUID) ([]leasing.Tenant, error) {
	return s.tenantRepo.FindByLandlord(ctx, landlordID)
}

// TenancyHistory returns a unit's occupancy intervals, most recent last
func (s *TenantService) TenancyHistory(ctx context.Context, unitID uuid.UUID) ([]leasing.TenancyRecord, error) {
	return s.recordRepo.FindByUnit(ctx, unitID)
}

// VerifyResidency cross-checks the unit and tenant pointers for a
// tenant with a unit back-reference. Disagreement is surfaced as an
// integrity error, never repaired.
func (s *TenantService) VerifyResidency(ctx context.Context, tenantID uuid.UUID) error {
	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return err
	}
	if !tenant.HasUnit() {
		return nil
	}
	unit, err := s.unitRepo.FindByID(ctx, *tenant.CurrentUnitID)
	if err != nil {
		return err
	}
	if unit.CurrentTenantID == nil || *unit.CurrentTenantID != tenant.ID {
		s.logger.Error("Residency pointers disagree",
			zap.String("tenant_id", tenant.ID.String()),
			zap.String("unit_id", unit.ID.String()),
			zap.Time("checked_at", time.Now()))
		return shared.NewIntegrityError("Unit tenant pointer disagrees with tenant unit pointer")
	}
	return nil
}
