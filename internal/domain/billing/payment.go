package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rently/backend/internal/domain/shared"
	"github.com/rently/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PaymentMethod is the channel a payment arrived through
type PaymentMethod string

const (
	PaymentMethodMpesa PaymentMethod = "MPESA"
	PaymentMethodBank  PaymentMethod = "BANK"
	PaymentMethodCash  PaymentMethod = "CASH"
)

// IsValid checks if the payment method is valid
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodMpesa, PaymentMethodBank, PaymentMethodCash:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// PaymentType classifies what the payment is for
type PaymentType string

const (
	PaymentTypeRent    PaymentType = "RENT"
	PaymentTypeDeposit PaymentType = "DEPOSIT"
	PaymentTypeUtility PaymentType = "UTILITY"
)

// IsValid checks if the payment type is valid
func (t PaymentType) IsValid() bool {
	switch t {
	case PaymentTypeRent, PaymentTypeDeposit, PaymentTypeUtility:
		return true
	}
	return false
}

// PaymentStatus is derived from the paid date and the balance snapshot,
// never set directly by callers
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusLate    PaymentStatus = "LATE"
	PaymentStatusPartial PaymentStatus = "PARTIAL"
)

// IsValid checks if the payment status is valid
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusLate, PaymentStatusPartial:
		return true
	}
	return false
}

// Payment records money received from a tenant. BalanceAfter is a
// snapshot of the tenant's total outstanding balance taken at recording
// time; it is never recomputed when later invoices or payments change
// the ledger.
type Payment struct {
	shared.BaseAggregateRoot
	Reference    string          `json:"reference"`
	TenantID     uuid.UUID       `json:"tenant_id"`
	UnitID       uuid.UUID       `json:"unit_id"`
	PropertyID   *uuid.UUID      `json:"property_id,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	DueDate      *time.Time      `json:"due_date,omitempty"`
	PaidDate     *time.Time      `json:"paid_date,omitempty"`
	Method       PaymentMethod   `json:"method"`
	PaymentType  PaymentType     `json:"payment_type"`
	Status       PaymentStatus   `json:"status"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
	Notes        string          `json:"notes"`
}

// NewPayment creates a payment record. The balance snapshot and the
// derived status are filled in by the recording service once the
// tenant's outstanding invoices have been totalled.
func NewPayment(tenantID, unitID uuid.UUID, amount valueobject.Money, method PaymentMethod, paymentType PaymentType) (*Payment, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewValidationError("Tenant ID cannot be empty")
	}
	if unitID == uuid.Nil {
		return nil, shared.NewValidationError("Unit ID cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("Payment amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewValidationError("Payment method is not valid")
	}
	if !paymentType.IsValid() {
		return nil, shared.NewValidationError("Payment type is not valid")
	}

	p := &Payment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TenantID:          tenantID,
		UnitID:            unitID,
		Amount:            amount.Amount(),
		Method:            method,
		PaymentType:       paymentType,
		Status:            PaymentStatusPending,
		BalanceAfter:      decimal.Zero,
	}
	p.Reference = formatPaymentReference(unitID, tenantID, p.GetCreatedAt())
	return p, nil
}

// MarkReceived sets the date the money actually arrived
func (p *Payment) MarkReceived(paidDate time.Time) {
	p.PaidDate = &paidDate
	p.Touch()
}

// SetDueDate sets the date the payment was expected by
func (p *Payment) SetDueDate(dueDate time.Time) {
	p.DueDate = &dueDate
	p.Touch()
}

// SetBalanceAfter stores the outstanding-balance snapshot taken when
// the payment was recorded
func (p *Payment) SetBalanceAfter(balance decimal.Decimal) {
	p.BalanceAfter = balance
	p.Touch()
}

// DeriveStatus recomputes the payment status from the paid date, the
// balance snapshot and the due date. A received payment that left a
// positive balance is PARTIAL; one that cleared the balance is PAID.
// An unreceived payment past its due date is LATE, otherwise PENDING.
func (p *Payment) DeriveStatus(asOf time.Time) PaymentStatus {
	if p.PaidDate != nil {
		if p.BalanceAfter.IsPositive() {
			p.Status = PaymentStatusPartial
		} else {
			p.Status = PaymentStatusPaid
		}
	} else if p.DueDate != nil && asOf.After(*p.DueDate) {
		p.Status = PaymentStatusLate
	} else {
		p.Status = PaymentStatusPending
	}
	return p.Status
}

// GetAmountMoney returns the payment amount as Money
func (p *Payment) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyKES(p.Amount)
}

// GetBalanceAfterMoney returns the balance snapshot as Money
func (p *Payment) GetBalanceAfterMoney() valueobject.Money {
	return valueobject.NewMoneyKES(p.BalanceAfter)
}

// formatPaymentReference builds a human-readable payment reference,
// e.g. "PAY-U1a2b3c4d-Tdeadbeef-20240105150405"
func formatPaymentReference(unitID, tenantID uuid.UUID, at time.Time) string {
	return fmt.Sprintf("PAY-U%s-T%s-%s",
		shortID(unitID), shortID(tenantID), at.UTC().Format("20060102150405"))
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}
