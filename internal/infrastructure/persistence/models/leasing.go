package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/rently/backend/internal/domain/leasing"
	"github.com/shopspring/decimal"
)

// PropertyModel is the persistence model for the Property aggregate root.
// The stats columns are a cache written every time a unit of the
// property is created, deleted or re-stated.
type PropertyModel struct {
	AggregateModel
	LandlordID              uuid.UUID            `gorm:"type:uuid;not null;index"`
	AgentID                 *uuid.UUID           `gorm:"type:uuid;index"`
	Name                    string               `gorm:"type:varchar(200);not null"`
	Address                 string               `gorm:"type:varchar(500);not null"`
	PropertyType            leasing.PropertyType `gorm:"type:varchar(20);not null"`
	TotalUnits              int                  `gorm:"not null;default:0"`
	OccupiedUnits           int                  `gorm:"not null;default:0"`
	VacantUnits             int                  `gorm:"not null;default:0"`
	MaintenanceUnits        int                  `gorm:"not null;default:0"`
	PotentialMonthlyRevenue decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0"`
	ActualMonthlyRevenue    decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0"`
	OccupancyRate           decimal.Decimal      `gorm:"type:decimal(5,2);not null;default:0"`
}

// TableName returns the table name for GORM
func (PropertyModel) TableName() string {
	return "properties"
}

// ToDomain converts the persistence model to a domain Property
func (m *PropertyModel) ToDomain() *leasing.Property {
	return &leasing.Property{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		LandlordID:        m.LandlordID,
		AgentID:           m.AgentID,
		Name:              m.Name,
		Address:           m.Address,
		PropertyType:      m.PropertyType,
		Stats: leasing.PropertyStats{
			TotalUnits:              m.TotalUnits,
			OccupiedUnits:           m.OccupiedUnits,
			VacantUnits:             m.VacantUnits,
			MaintenanceUnits:        m.MaintenanceUnits,
			PotentialMonthlyRevenue: m.PotentialMonthlyRevenue,
			ActualMonthlyRevenue:    m.ActualMonthlyRevenue,
			OccupancyRate:           m.OccupancyRate,
		},
	}
}

// FromDomain populates the persistence model from a domain Property
func (m *PropertyModel) FromDomain(p *leasing.Property) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.LandlordID = p.LandlordID
	m.AgentID = p.AgentID
	m.Name = p.Name
	m.Address = p.Address
	m.PropertyType = p.PropertyType
	m.TotalUnits = p.Stats.TotalUnits
	m.OccupiedUnits = p.Stats.OccupiedUnits
	m.VacantUnits = p.Stats.VacantUnits
	m.MaintenanceUnits = p.Stats.MaintenanceUnits
	m.PotentialMonthlyRevenue = p.Stats.PotentialMonthlyRevenue
	m.ActualMonthlyRevenue = p.Stats.ActualMonthlyRevenue
	m.OccupancyRate = p.Stats.OccupancyRate
}

// UnitModel is the persistence model for the Unit aggregate root
type UnitModel struct {
	AggregateModel
	PropertyID      uuid.UUID              `gorm:"type:uuid;not null;uniqueIndex:idx_units_property_number,priority:1"`
	UnitNumber      string                 `gorm:"type:varchar(50);not null;uniqueIndex:idx_units_property_number,priority:2"`
	UnitType        string                 `gorm:"type:varchar(50)"`
	Floor           *int                   ``
	Size            decimal.Decimal        `gorm:"type:decimal(10,2);not null;default:0"`
	Rent            decimal.Decimal        `gorm:"type:decimal(18,2);not null"`
	Deposit         decimal.Decimal        `gorm:"type:decimal(18,2);not null;default:0"`
	Status          leasing.OccupancyState `gorm:"type:varchar(20);not null;default:'VACANT';index"`
	CurrentTenantID *uuid.UUID             `gorm:"type:uuid;index"`
	LeaseStart      *time.Time             ``
	LeaseEnd        *time.Time             `gorm:"index"`
}

// TableName returns the table name for GORM
func (UnitModel) TableName() string {
	return "units"
}

// ToDomain converts the persistence model to a domain Unit
func (m *UnitModel) ToDomain() *leasing.Unit {
	return &leasing.Unit{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		PropertyID:        m.PropertyID,
		UnitNumber:        m.UnitNumber,
		UnitType:          m.UnitType,
		Floor:             m.Floor,
		Size:              m.Size,
		Rent:              m.Rent,
		Deposit:           m.Deposit,
		Status:            m.Status,
		CurrentTenantID:   m.CurrentTenantID,
		LeaseStart:        m.LeaseStart,
		LeaseEnd:          m.LeaseEnd,
	}
}

// FromDomain populates the persistence model from a domain Unit
func (m *UnitModel) FromDomain(u *leasing.Unit) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.PropertyID = u.PropertyID
	m.UnitNumber = u.UnitNumber
	m.UnitType = u.UnitType
	m.Floor = u.Floor
	m.Size = u.Size
	m.Rent = u.Rent
	m.Deposit = u.Deposit
	m.Status = u.Status
	m.CurrentTenantID = u.CurrentTenantID
	m.LeaseStart = u.LeaseStart
	m.LeaseEnd = u.LeaseEnd
}

// TenantModel is the persistence model for the Tenant aggregate root
type TenantModel struct {
	AggregateModel
	LandlordID    uuid.UUID            `gorm:"type:uuid;not null;index"`
	FullName      string               `gorm:"type:varchar(200);not null"`
	Phone         string               `gorm:"type:varchar(20);index"`
	Status        leasing.TenantStatus `gorm:"type:varchar(20);not null;default:'APPLICANT';index"`
	CurrentUnitID *uuid.UUID           `gorm:"type:uuid;index"`
	MoveInDate    *time.Time           ``
	MoveOutDate   *time.Time           ``
	BalanceDue    decimal.Decimal      `gorm:"type:decimal(18,2);not null;default:0"`
	Notes         string               `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (TenantModel) TableName() string {
	return "tenants"
}

// ToDomain converts the persistence model to a domain Tenant
func (m *TenantModel) ToDomain() *leasing.Tenant {
	return &leasing.Tenant{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		LandlordID:        m.LandlordID,
		FullName:          m.FullName,
		Phone:             m.Phone,
		Status:            m.Status,
		CurrentUnitID:     m.CurrentUnitID,
		MoveInDate:        m.MoveInDate,
		MoveOutDate:       m.MoveOutDate,
		BalanceDue:        m.BalanceDue,
		Notes:             m.Notes,
	}
}

// FromDomain populates the persistence model from a domain Tenant
func (m *TenantModel) FromDomain(t *leasing.Tenant) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.LandlordID = t.LandlordID
	m.FullName = t.FullName
	m.Phone = t.Phone
	m.Status = t.Status
	m.CurrentUnitID = t.CurrentUnitID
	m.MoveInDate = t.MoveInDate
	m.MoveOutDate = t.MoveOutDate
	m.BalanceDue = t.BalanceDue
	m.Notes = t.Notes
}

// TenancyRecordModel is the persistence model for the append-only
// occupancy history. EndDate null marks the single open record a unit
// may have.
type TenancyRecordModel struct {
	BaseModel
	UnitID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	TenantID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	StartDate time.Time  `gorm:"not null"`
	EndDate   *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (TenancyRecordModel) TableName() string {
	return "tenancy_records"
}

// ToDomain converts the persistence model to a domain TenancyRecord
func (m *TenancyRecordModel) ToDomain() *leasing.TenancyRecord {
	return &leasing.TenancyRecord{
		BaseEntity: m.ToDomainBaseEntity(),
		UnitID:     m.UnitID,
		TenantID:   m.TenantID,
		Start:      m.StartDate,
		End:        m.EndDate,
	}
}

// FromDomain populates the persistence model from a domain TenancyRecord
func (m *TenancyRecordModel) FromDomain(r *leasing.TenancyRecord) {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.UnitID = r.UnitID
	m.TenantID = r.TenantID
	m.StartDate = r.Start
	m.EndDate = r.End
}
