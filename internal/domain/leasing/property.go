package leasing

import (
	"github.com/google/uuid"
	"github.com/rently/backend/internal/domain/shared"
	"github.com/rently/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PropertyType classifies a property
type PropertyType string

const (
	PropertyTypeResidential PropertyType = "RESIDENTIAL"
	PropertyTypeCommercial  PropertyType = "COMMERCIAL"
	PropertyTypeMixedUse    PropertyType = "MIXED_USE"
)

// IsValid checks if the property type is valid
func (t PropertyType) IsValid() bool {
	switch t {
	case PropertyTypeResidential, PropertyTypeCommercial, PropertyTypeMixedUse:
		return true
	}
	return false
}

// PropertyStats holds the derived unit and revenue statistics of a
// property. The fields are fully derived from the property's units:
// recomputed, never edited independently.
type PropertyStats struct {
	TotalUnits              int             `json:"total_units"`
	OccupiedUnits           int             `json:"occupied_units"`
	VacantUnits             int             `json:"vacant_units"`
	MaintenanceUnits        int             `json:"maintenance_units"`
	PotentialMonthlyRevenue decimal.Decimal `json:"potential_monthly_revenue"`
	ActualMonthlyRevenue    decimal.Decimal `json:"actual_monthly_revenue"`
	OccupancyRate           decimal.Decimal `json:"occupancy_rate"` // percentage 0-100
}

// Property represents a rental property aggregate root. It owns its
// units' cached statistics; RecalculateStats is invoked synchronously by
// every operation that creates, deletes or re-states a unit.
type Property struct {
	shared.BaseAggregateRoot
	LandlordID   uuid.UUID    `json:"landlord_id"`
	AgentID      *uuid.UUID   `json:"agent_id,omitempty"`
	Name         string       `json:"name"`
	Address      string       `json:"address"`
	PropertyType PropertyType `json:"property_type"`
	Stats        PropertyStats
}

// NewProperty creates a new property with zeroed statistics
func NewProperty(landlordID uuid.UUID, name, address string, propertyType PropertyType) (*Property, error) {
	if landlordID == uuid.Nil {
		return nil, shared.NewValidationError("Landlord ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewValidationError("Property name cannot be empty")
	}
	if !propertyType.IsValid() {
		return nil, shared.NewValidationError("Property type is not valid")
	}

	return &Property{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		LandlordID:        landlordID,
		Name:              name,
		Address:           address,
		PropertyType:      propertyType,
		Stats: PropertyStats{
			PotentialMonthlyRevenue: decimal.Zero,
			ActualMonthlyRevenue:    decimal.Zero,
			OccupancyRate:           decimal.Zero,
		},
	}, nil
}

// RecalculateStats recomputes the cached statistics from the given
// units. It is idempotent and has no side effect beyond replacing the
// cached fields. Potential revenue sums rent over all units; actual
// revenue sums rent over occupied units only. The occupancy rate is 0
// for a property with no units.
func (p *Property) RecalculateStats(units []Unit) {
	stats := PropertyStats{
		PotentialMonthlyRevenue: decimal.Zero,
		ActualMonthlyRevenue:    decimal.Zero,
		OccupancyRate:           decimal.Zero,
	}

	for i := range units {
		u := &units[i]
		stats.TotalUnits++
		stats.PotentialMonthlyRevenue = stats.PotentialMonthlyRevenue.Add(u.Rent)

		switch u.Status {
		case OccupancyStateOccupied:
			stats.OccupiedUnits++
			stats.ActualMonthlyRevenue = stats.ActualMonthlyRevenue.Add(u.Rent)
		case OccupancyStateVacant:
			stats.VacantUnits++
		case OccupancyStateMaintenance:
			stats.MaintenanceUnits++
		}
	}

	if stats.TotalUnits > 0 {
		stats.OccupancyRate = decimal.NewFromInt(int64(stats.OccupiedUnits)).
			Div(decimal.NewFromInt(int64(stats.TotalUnits))).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}

	p.Stats = stats
	p.Touch()
	p.IncrementVersion()
}

// CheckStatsIntegrity verifies occupied+vacant+maintenance == total
func (p *Property) CheckStatsIntegrity() error {
	s := p.Stats
	if s.OccupiedUnits+s.VacantUnits+s.MaintenanceUnits != s.TotalUnits {
		return shared.NewIntegrityError("Property unit counts do not sum to total units")
	}
	return nil
}

// VacancyRate returns the percentage of units that are vacant
func (p *Property) VacancyRate() decimal.Decimal {
	if p.Stats.TotalUnits == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(p.Stats.VacantUnits)).
		Div(decimal.NewFromInt(int64(p.Stats.TotalUnits))).
		Mul(decimal.NewFromInt(100)).
		Round(2)
}

// GetPotentialRevenueMoney returns potential monthly revenue as Money
func (p *Property) GetPotentialRevenueMoney() valueobject.Money {
	return valueobject.NewMoneyKES(p.Stats.PotentialMonthlyRevenue)
}

// GetActualRevenueMoney returns actual monthly revenue as Money
func (p *Property) GetActualRevenueMoney() valueobject.Money {
	return valueobject.NewMoneyKES(p.Stats.ActualMonthlyRevenue)
}
