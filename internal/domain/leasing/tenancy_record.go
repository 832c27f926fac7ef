package leasing

import (
	"time"

	"github.com/google/uuid"
	"github.com/rently/backend/internal/domain/shared"
)

// TenancyRecord is one interval in a unit's occupancy history. Records
// are append-only: a record is opened on assignment with a nil End,
// closed once on termination or reassignment, and never mutated after
// that. At most one record per unit is open at any time.
type TenancyRecord struct {
	shared.BaseEntity
	UnitID   uuid.UUID  `json:"unit_id"`
	TenantID uuid.UUID  `json:"tenant_id"`
	Start    time.Time  `json:"start"`
	End      *time.Time `json:"end,omitempty"`
}

// NewTenancyRecord opens a new occupancy interval for the unit
func NewTenancyRecord(unitID, tenantID uuid.UUID, start time.Time) (*TenancyRecord, error) {
	if unitID == uuid.Nil {
		return nil, shared.NewValidationError("Unit ID cannot be empty")
	}
	if tenantID == uuid.Nil {
		return nil, shared.NewValidationError("Tenant ID cannot be empty")
	}

	return &TenancyRecord{
		BaseEntity: shared.NewBaseEntity(),
		UnitID:     unitID,
		TenantID:   tenantID,
		Start:      start,
	}, nil
}

// Close ends the occupancy interval. A record can be closed only once.
func (r *TenancyRecord) Close(end time.Time) error {
	if r.End != nil {
		return shared.NewDomainError("INVALID_STATE", "Tenancy record is already closed")
	}
	if end.Before(r.Start) {
		return shared.NewValidationError("Tenancy end cannot be before its start")
	}
	r.End = &end
	r.Touch()
	return nil
}

// IsOpen returns true if the interval has not been closed
func (r *TenancyRecord) IsOpen() bool {
	return r.End == nil
}

// Duration returns the length of the interval; open records run to now
func (r *TenancyRecord) Duration() time.Duration {
	if r.End != nil {
		return r.End.Sub(r.Start)
	}
	return time.Since(r.Start)
}
