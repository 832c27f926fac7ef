package leasing

import (
	"time"

	"github.com/google/uuid"
	"github.com/rently/backend/internal/domain/shared"
)

// TenantAssignedEvent is raised when a tenant is bound to a unit
type TenantAssignedEvent struct {
	shared.BaseDomainEvent
	UnitID     uuid.UUID  `json:"unit_id"`
	UnitNumber string     `json:"unit_number"`
	PropertyID uuid.UUID  `json:"property_id"`
	TenantID   uuid.UUID  `json:"tenant_id"`
	LeaseStart time.Time  `json:"lease_start"`
	LeaseEnd   *time.Time `json:"lease_end,omitempty"`
}

// EventType returns the event type name
func (e *TenantAssignedEvent) EventType() string {
	return "TenantAssigned"
}

// NewTenantAssignedEvent creates a new TenantAssignedEvent
func NewTenantAssignedEvent(u *Unit, tenantID uuid.UUID, leaseStart time.Time, leaseEnd *time.Time) *TenantAssignedEvent {
	return &TenantAssignedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("TenantAssigned", "Unit", u.ID),
		UnitID:          u.ID,
		UnitNumber:      u.UnitNumber,
		PropertyID:      u.PropertyID,
		TenantID:        tenantID,
		LeaseStart:      leaseStart,
		LeaseEnd:        leaseEnd,
	}
}

// TenancyEndedEvent is raised when a unit's current tenancy is ended,
// either explicitly or by displacement during reassignment
type TenancyEndedEvent struct {
	shared.BaseDomainEvent
	UnitID     uuid.UUID `json:"unit_id"`
	UnitNumber string    `json:"unit_number"`
	PropertyID uuid.UUID `json:"property_id"`
	TenantID   uuid.UUID `json:"tenant_id"`
	EndDate    time.Time `json:"end_date"`
}

// EventType returns the event type name
func (e *TenancyEndedEvent) EventType() string {
	return "TenancyEnded"
}

// NewTenancyEndedEvent creates a new TenancyEndedEvent
func NewTenancyEndedEvent(u *Unit, tenantID uuid.UUID, endDate time.Time) *TenancyEndedEvent {
	return &TenancyEndedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("TenancyEnded", "Unit", u.ID),
		UnitID:          u.ID,
		UnitNumber:      u.UnitNumber,
		PropertyID:      u.PropertyID,
		TenantID:        tenantID,
		EndDate:         endDate,
	}
}
