package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/rently/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InvoiceSentEvent is raised when an invoice is issued to a tenant
type InvoiceSentEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	TenantID      uuid.UUID       `json:"tenant_id"`
	UnitID        uuid.UUID       `json:"unit_id"`
	Amount        decimal.Decimal `json:"amount"`
	DueDate       time.Time       `json:"due_date"`
}

// EventType returns the event type name
func (e *InvoiceSentEvent) EventType() string {
	return "InvoiceSent"
}

// NewInvoiceSentEvent creates a new InvoiceSentEvent
func NewInvoiceSentEvent(inv *Invoice) *InvoiceSentEvent {
	return &InvoiceSentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceSent", "Invoice", inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		TenantID:        inv.TenantID,
		UnitID:          inv.UnitID,
		Amount:          inv.Amount,
		DueDate:         inv.DueDate,
	}
}

// LateFeeAppliedEvent is raised when the overdue surcharge is added to
// an invoice balance
type LateFeeAppliedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	TenantID      uuid.UUID       `json:"tenant_id"`
	LateFee       decimal.Decimal `json:"late_fee"`
	NewBalance    decimal.Decimal `json:"new_balance"`
}

// EventType returns the event type name
func (e *LateFeeAppliedEvent) EventType() string {
	return "LateFeeApplied"
}

// NewLateFeeAppliedEvent creates a new LateFeeAppliedEvent
func NewLateFeeAppliedEvent(inv *Invoice) *LateFeeAppliedEvent {
	return &LateFeeAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("LateFeeApplied", "Invoice", inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		TenantID:        inv.TenantID,
		LateFee:         inv.LateFee,
		NewBalance:      inv.Balance,
	}
}

// PaymentRecordedEvent is raised when a payment is written to the ledger
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	PaymentID    uuid.UUID       `json:"payment_id"`
	Reference    string          `json:"reference"`
	TenantID     uuid.UUID       `json:"tenant_id"`
	UnitID       uuid.UUID       `json:"unit_id"`
	Amount       decimal.Decimal `json:"amount"`
	Method       PaymentMethod   `json:"method"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
}

// EventType returns the event type name
func (e *PaymentRecordedEvent) EventType() string {
	return "PaymentRecorded"
}

// NewPaymentRecordedEvent creates a new PaymentRecordedEvent
func NewPaymentRecordedEvent(p *Payment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentRecorded", "Payment", p.ID),
		PaymentID:       p.ID,
		Reference:       p.Reference,
		TenantID:        p.TenantID,
		UnitID:          p.UnitID,
		Amount:          p.Amount,
		Method:          p.Method,
		BalanceAfter:    p.BalanceAfter,
	}
}
