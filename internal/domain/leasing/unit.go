package leasing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rently/backend/internal/domain/shared"
	"github.com/rently/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// OccupancyState represents the occupancy state of a unit
type OccupancyState string

const (
	OccupancyStateVacant      OccupancyState = "VACANT"
	OccupancyStateOccupied    OccupancyState = "OCCUPIED"
	OccupancyStateMaintenance OccupancyState = "MAINTENANCE"
)

// IsValid checks if the state is a valid OccupancyState
func (s OccupancyState) IsValid() bool {
	switch s {
	case OccupancyStateVacant, OccupancyStateOccupied, OccupancyStateMaintenance:
		return true
	}
	return false
}

// String returns the string representation of OccupancyState
func (s OccupancyState) String() string {
	return string(s)
}

// Unit represents a rentable unit aggregate root. Occupancy is mutated
// only through Occupy, Vacate and the maintenance transitions so the
// tenant-pointer invariant (CurrentTenantID set iff OCCUPIED) always holds.
type Unit struct {
	shared.BaseAggregateRoot
	PropertyID      uuid.UUID       `json:"property_id"`
	UnitNumber      string          `json:"unit_number"`
	UnitType        string          `json:"unit_type"` // e.g. "2BR/2BA/OK"
	Floor           *int            `json:"floor,omitempty"`
	Size            decimal.Decimal `json:"size"`
	Rent            decimal.Decimal `json:"rent"`
	Deposit         decimal.Decimal `json:"deposit"`
	Status          OccupancyState  `json:"status"`
	CurrentTenantID *uuid.UUID      `json:"current_tenant_id,omitempty"`
	LeaseStart      *time.Time      `json:"lease_start,omitempty"`
	LeaseEnd        *time.Time      `json:"lease_end,omitempty"`
}

// NewUnit creates a new vacant unit
func NewUnit(propertyID uuid.UUID, unitNumber, unitType string, rent valueobject.Money) (*Unit, error) {
	if propertyID == uuid.Nil {
		return nil, shared.NewValidationError("Property ID cannot be empty")
	}
	if unitNumber == "" {
		return nil, shared.NewValidationError("Unit number cannot be empty")
	}
	if rent.IsNegative() {
		return nil, shared.NewValidationError("Rent cannot be negative")
	}

	return &Unit{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PropertyID:        propertyID,
		UnitNumber:        unitNumber,
		UnitType:          unitType,
		Size:              decimal.Zero,
		Rent:              rent.Amount(),
		Deposit:           decimal.Zero,
		Status:            OccupancyStateVacant,
	}, nil
}

// Occupy binds a tenant to the unit and opens the lease window.
// The unit must be vacant: callers displace any sitting tenant first.
func (u *Unit) Occupy(tenantID uuid.UUID, leaseStart time.Time, leaseEnd *time.Time) error {
	if tenantID == uuid.Nil {
		return shared.NewValidationError("Tenant ID cannot be empty")
	}
	if u.Status == OccupancyStateMaintenance {
		return shared.NewDomainError("INVALID_STATE", "Cannot assign a tenant to a unit under maintenance")
	}
	if u.Status == OccupancyStateOccupied {
		return shared.NewDomainError("INVALID_STATE", "Unit is already occupied; end the current tenancy first")
	}
	if leaseEnd != nil && leaseEnd.Before(leaseStart) {
		return shared.NewValidationError("Lease end cannot be before lease start")
	}

	u.Status = OccupancyStateOccupied
	u.CurrentTenantID = &tenantID
	u.LeaseStart = &leaseStart
	u.LeaseEnd = leaseEnd
	u.Touch()
	u.IncrementVersion()

	u.AddDomainEvent(NewTenantAssignedEvent(u, tenantID, leaseStart, leaseEnd))

	return nil
}

// Vacate clears the current tenant and the lease window. Returns the
// displaced tenant ID, or uuid.Nil if the unit had no tenant.
func (u *Unit) Vacate(endDate time.Time) uuid.UUID {
	if u.CurrentTenantID == nil {
		return uuid.Nil
	}

	displaced := *u.CurrentTenantID
	u.CurrentTenantID = nil
	u.Status = OccupancyStateVacant
	u.LeaseStart = nil
	u.LeaseEnd = nil
	u.Touch()
	u.IncrementVersion()

	u.AddDomainEvent(NewTenancyEndedEvent(u, displaced, endDate))

	return displaced
}

// StartMaintenance moves a vacant unit into maintenance
func (u *Unit) StartMaintenance() error {
	if u.Status != OccupancyStateVacant {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot start maintenance on a %s unit", u.Status))
	}
	u.Status = OccupancyStateMaintenance
	u.Touch()
	u.IncrementVersion()
	return nil
}

// EndMaintenance returns a maintenance unit to vacant
func (u *Unit) EndMaintenance() error {
	if u.Status != OccupancyStateMaintenance {
		return shared.NewDomainError("INVALID_STATE", "Unit is not under maintenance")
	}
	u.Status = OccupancyStateVacant
	u.Touch()
	u.IncrementVersion()
	return nil
}

// CheckIntegrity verifies the tenant-pointer invariant:
// CurrentTenantID is set if and only if the unit is OCCUPIED.
func (u *Unit) CheckIntegrity() error {
	occupied := u.Status == OccupancyStateOccupied
	hasTenant := u.CurrentTenantID != nil
	if occupied != hasTenant {
		return shared.NewIntegrityError(fmt.Sprintf(
			"Unit %s is %s but tenant pointer presence is %t", u.UnitNumber, u.Status, hasTenant))
	}
	if u.LeaseStart != nil && u.LeaseEnd != nil && u.LeaseEnd.Before(*u.LeaseStart) {
		return shared.NewIntegrityError(fmt.Sprintf(
			"Unit %s has lease end before lease start", u.UnitNumber))
	}
	return nil
}

// IsOccupied returns true if a tenant currently holds the unit
func (u *Unit) IsOccupied() bool {
	return u.Status == OccupancyStateOccupied
}

// IsVacant returns true if the unit is vacant
func (u *Unit) IsVacant() bool {
	return u.Status == OccupancyStateVacant
}

// UnderMaintenance returns true if the unit is under maintenance
func (u *Unit) UnderMaintenance() bool {
	return u.Status == OccupancyStateMaintenance
}

// GetRentMoney returns the monthly rent as Money
func (u *Unit) GetRentMoney() valueobject.Money {
	return valueobject.NewMoneyKES(u.Rent)
}

// LeaseExpiresWithin reports whether an occupied unit's lease ends within
// the given number of days from now
func (u *Unit) LeaseExpiresWithin(days int) bool {
	if !u.IsOccupied() || u.LeaseEnd == nil {
		return false
	}
	return u.LeaseEnd.Before(time.Now().AddDate(0, 0, days))
}
