package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/rently/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
// Line items are stored as a JSONB document: they are immutable once the
// invoice exists and are only ever read back as a whole.
type InvoiceModel struct {
	AggregateModel
	InvoiceNumber   string                `gorm:"type:varchar(30);not null;uniqueIndex"`
	TenantID        uuid.UUID             `gorm:"type:uuid;not null;index"`
	UnitID          uuid.UUID             `gorm:"type:uuid;not null;index"`
	DueDate         time.Time             `gorm:"not null;index"`
	Amount          decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	Balance         decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	LateFee         decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	LateFeeApplied  bool                  `gorm:"not null;default:false"`
	PreviousBalance decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	Status          billing.InvoiceStatus `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	Items           billing.InvoiceItems  `gorm:"type:jsonb;default:'[]'"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	return &billing.Invoice{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		InvoiceNumber:     m.InvoiceNumber,
		TenantID:          m.TenantID,
		UnitID:            m.UnitID,
		DueDate:           m.DueDate,
		Amount:            m.Amount,
		Balance:           m.Balance,
		LateFee:           m.LateFee,
		LateFeeApplied:    m.LateFeeApplied,
		PreviousBalance:   m.PreviousBalance,
		Status:            m.Status,
		Items:             m.Items,
	}
}

// FromDomain populates the persistence model from a domain Invoice
func (m *InvoiceModel) FromDomain(inv *billing.Invoice) {
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	m.InvoiceNumber = inv.InvoiceNumber
	m.TenantID = inv.TenantID
	m.UnitID = inv.UnitID
	m.DueDate = inv.DueDate
	m.Amount = inv.Amount
	m.Balance = inv.Balance
	m.LateFee = inv.LateFee
	m.LateFeeApplied = inv.LateFeeApplied
	m.PreviousBalance = inv.PreviousBalance
	m.Status = inv.Status
	m.Items = inv.Items
}

// PaymentModel is the persistence model for the Payment aggregate root
type PaymentModel struct {
	AggregateModel
	Reference    string                `gorm:"type:varchar(60);not null;uniqueIndex"`
	TenantID     uuid.UUID             `gorm:"type:uuid;not null;index"`
	UnitID       uuid.UUID             `gorm:"type:uuid;not null;index"`
	PropertyID   *uuid.UUID            `gorm:"type:uuid;index"`
	Amount       decimal.Decimal       `gorm:"type:decimal(18,2);not null"`
	DueDate      *time.Time            ``
	PaidDate     *time.Time            `gorm:"index"`
	Method       billing.PaymentMethod `gorm:"type:varchar(10);not null"`
	PaymentType  billing.PaymentType   `gorm:"type:varchar(10);not null"`
	Status       billing.PaymentStatus `gorm:"type:varchar(10);not null;default:'PENDING';index"`
	BalanceAfter decimal.Decimal       `gorm:"type:decimal(18,2);not null;default:0"`
	Notes        string                `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment
func (m *PaymentModel) ToDomain() *billing.Payment {
	return &billing.Payment{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Reference:         m.Reference,
		TenantID:          m.TenantID,
		UnitID:            m.UnitID,
		PropertyID:        m.PropertyID,
		Amount:            m.Amount,
		DueDate:           m.DueDate,
		PaidDate:          m.PaidDate,
		Method:            m.Method,
		PaymentType:       m.PaymentType,
		Status:            m.Status,
		BalanceAfter:      m.BalanceAfter,
		Notes:             m.Notes,
	}
}

// FromDomain populates the persistence model from a domain Payment
func (m *PaymentModel) FromDomain(p *billing.Payment) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Reference = p.Reference
	m.TenantID = p.TenantID
	m.UnitID = p.UnitID
	m.PropertyID = p.PropertyID
	m.Amount = p.Amount
	m.DueDate = p.DueDate
	m.PaidDate = p.PaidDate
	m.Method = p.Method
	m.PaymentType = p.PaymentType
	m.Status = p.Status
	m.BalanceAfter = p.BalanceAfter
	m.Notes = p.Notes
}
