package leasing

import (
	"time"

	"github.com/google/uuid"
	"github.com/rently/backend/internal/domain/shared"
	"github.com/rently/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// TenantStatus represents the residency status of a tenant
type TenantStatus string

const (
	TenantStatusApplicant TenantStatus = "APPLICANT"
	TenantStatusActive    TenantStatus = "ACTIVE"
	TenantStatusPast      TenantStatus = "PAST"
	TenantStatusEvicted   TenantStatus = "EVICTED"
)

// IsValid checks if the status is a valid TenantStatus
func (s TenantStatus) IsValid() bool {
	switch s {
	case TenantStatusApplicant, TenantStatusActive, TenantStatusPast, TenantStatusEvicted:
		return true
	}
	return false
}

// String returns the string representation of TenantStatus
func (s TenantStatus) String() string {
	return string(s)
}

// Tenant represents a rental tenant aggregate root. CurrentUnitID is a
// weak back-reference kept in sync with Unit.CurrentTenantID by the
// tenancy service; residency status changes only through MoveIn, MoveOut
// and Evict.
type Tenant struct {
	shared.BaseAggregateRoot
	LandlordID    uuid.UUID       `json:"landlord_id"`
	FullName      string          `json:"full_name"`
	Phone         string          `json:"phone"`
	Status        TenantStatus    `json:"status"`
	CurrentUnitID *uuid.UUID      `json:"current_unit_id,omitempty"`
	MoveInDate    *time.Time      `json:"move_in_date,omitempty"`
	MoveOutDate   *time.Time      `json:"move_out_date,omitempty"`
	BalanceDue    decimal.Decimal `json:"balance_due"` // cached aggregate of outstanding invoices
	Notes         string          `json:"notes,omitempty"`
}

// NewTenant creates a new applicant tenant
func NewTenant(landlordID uuid.UUID, fullName, phone string) (*Tenant, error) {
	if fullName == "" {
		return nil, shared.NewValidationError("Tenant name cannot be empty")
	}

	return &Tenant{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		LandlordID:        landlordID,
		FullName:          fullName,
		Phone:             phone,
		Status:            TenantStatusApplicant,
		BalanceDue:        decimal.Zero,
	}, nil
}

// MoveIn marks the tenant active in the given unit
func (t *Tenant) MoveIn(unitID uuid.UUID, moveIn time.Time) error {
	if unitID == uuid.Nil {
		return shared.NewValidationError("Unit ID cannot be empty")
	}
	t.CurrentUnitID = &unitID
	t.Status = TenantStatusActive
	t.MoveInDate = &moveIn
	t.MoveOutDate = nil
	t.Touch()
	t.IncrementVersion()
	return nil
}

// MoveOut clears the unit back-reference and marks the tenant PAST
func (t *Tenant) MoveOut(moveOut time.Time) {
	t.CurrentUnitID = nil
	t.Status = TenantStatusPast
	t.MoveOutDate = &moveOut
	t.Touch()
	t.IncrementVersion()
}

// Evict clears the unit back-reference and marks the tenant EVICTED
func (t *Tenant) Evict(moveOut time.Time) {
	t.CurrentUnitID = nil
	t.Status = TenantStatusEvicted
	t.MoveOutDate = &moveOut
	t.Touch()
	t.IncrementVersion()
}

// SetBalanceDue refreshes the cached outstanding balance
func (t *Tenant) SetBalanceDue(balance decimal.Decimal) {
	t.BalanceDue = balance
	t.Touch()
	t.IncrementVersion()
}

// GetBalanceDueMoney returns the cached outstanding balance as Money
func (t *Tenant) GetBalanceDueMoney() valueobject.Money {
	return valueobject.NewMoneyKES(t.BalanceDue)
}

// IsActive returns true if the tenant currently rents a unit
func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}

// HasUnit returns true if the tenant has a unit back-reference
func (t *Tenant) HasUnit() bool {
	return t.CurrentUnitID != nil
}
