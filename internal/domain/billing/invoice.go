package billing

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rently/backend/internal/domain/shared"
	"github.com/rently/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the lifecycle status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "DRAFT"
	InvoiceStatusSent          InvoiceStatus = "SENT"
	InvoiceStatusOverdue       InvoiceStatus = "OVERDUE"
	InvoiceStatusPartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	InvoiceStatusPaid          InvoiceStatus = "PAID"
	InvoiceStatusCancelled     InvoiceStatus = "CANCELLED"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusOverdue,
		InvoiceStatusPartiallyPaid, InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the invoice is in a terminal state
func (s InvoiceStatus) IsTerminal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusCancelled
}

// IsOutstanding returns true if the invoice still carries a collectible
// balance: the set the payment snapshot and the overdue scanner walk
func (s InvoiceStatus) IsOutstanding() bool {
	return s == InvoiceStatusSent || s == InvoiceStatusOverdue || s == InvoiceStatusPartiallyPaid
}

// OutstandingStatuses returns the statuses counted into a tenant's
// outstanding balance
func OutstandingStatuses() []InvoiceStatus {
	return []InvoiceStatus{InvoiceStatusSent, InvoiceStatusOverdue, InvoiceStatusPartiallyPaid}
}

// ItemType classifies an invoice line item
type ItemType string

const (
	ItemTypeRent    ItemType = "RENT"
	ItemTypeUtility ItemType = "UTILITY"
	ItemTypeDeposit ItemType = "DEPOSIT"
	ItemTypePenalty ItemType = "PENALTY"
	ItemTypeOther   ItemType = "OTHER"
)

// IsValid checks if the item type is valid
func (t ItemType) IsValid() bool {
	switch t {
	case ItemTypeRent, ItemTypeUtility, ItemTypeDeposit, ItemTypePenalty, ItemTypeOther:
		return true
	}
	return false
}

// InvoiceItem is an immutable line within the Invoice aggregate. Items
// are an informational breakdown: Invoice.Amount stays the authoritative
// billed total and item amounts need not sum to it.
type InvoiceItem struct {
	ID          uuid.UUID       `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	ItemType    ItemType        `json:"item_type"`
}

// NewInvoiceItem creates a new invoice line item
func NewInvoiceItem(description string, amount valueobject.Money, itemType ItemType) (InvoiceItem, error) {
	if description == "" {
		return InvoiceItem{}, shared.NewValidationError("Item description cannot be empty")
	}
	if !itemType.IsValid() {
		return InvoiceItem{}, shared.NewValidationError("Item type is not valid")
	}
	return InvoiceItem{
		ID:          uuid.New(),
		Description: description,
		Amount:      amount.Amount(),
		ItemType:    itemType,
	}, nil
}

// InvoiceItems is a slice of InvoiceItem that implements GORM
// Scanner/Valuer for JSONB storage
type InvoiceItems []InvoiceItem

// Value implements driver.Valuer interface for GORM to store as JSONB
func (items InvoiceItems) Value() (driver.Value, error) {
	if items == nil {
		return "[]", nil
	}
	return json.Marshal(items)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (items *InvoiceItems) Scan(value interface{}) error {
	if value == nil {
		*items = InvoiceItems{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan InvoiceItems: unsupported type")
	}

	if len(bytes) == 0 {
		*items = InvoiceItems{}
		return nil
	}

	return json.Unmarshal(bytes, items)
}

// lateFeePercent is the one-time surcharge applied to an overdue balance
var lateFeePercent = decimal.NewFromInt(10)

// Invoice represents a billing invoice aggregate root. Amount is the
// billed total; Balance is what remains owed. Once SENT an invoice is
// never deleted; PAID and CANCELLED are terminal.
type Invoice struct {
	shared.BaseAggregateRoot
	InvoiceNumber   string          `json:"invoice_number"`
	TenantID        uuid.UUID       `json:"tenant_id"`
	UnitID          uuid.UUID       `json:"unit_id"`
	DueDate         time.Time       `json:"due_date"`
	Amount          decimal.Decimal `json:"amount"`
	Balance         decimal.Decimal `json:"balance"`
	LateFee         decimal.Decimal `json:"late_fee"`
	LateFeeApplied  bool            `json:"late_fee_applied"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	Status          InvoiceStatus   `json:"status"`
	Items           InvoiceItems    `json:"items"`
}

// NewInvoice creates a new DRAFT invoice. The invoice number is assigned
// by the repository when the invoice is first persisted, inside the same
// transaction that reserves the monthly sequence. Balance starts equal
// to Amount.
func NewInvoice(tenantID, unitID uuid.UUID, dueDate time.Time, amount valueobject.Money, items []InvoiceItem) (*Invoice, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewValidationError("Tenant ID cannot be empty")
	}
	if unitID == uuid.Nil {
		return nil, shared.NewValidationError("Unit ID cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("Invoice amount must be positive")
	}

	inv := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TenantID:          tenantID,
		UnitID:            unitID,
		DueDate:           dueDate,
		Amount:            amount.Amount(),
		Balance:           amount.Amount(),
		LateFee:           decimal.Zero,
		PreviousBalance:   decimal.Zero,
		Status:            InvoiceStatusDraft,
		Items:             items,
	}

	return inv, nil
}

// AssignNumber sets the generated invoice number. It can be assigned
// exactly once.
func (inv *Invoice) AssignNumber(number string) error {
	if inv.InvoiceNumber != "" {
		return shared.NewDomainError("INVALID_STATE", "Invoice number is already assigned")
	}
	if number == "" {
		return shared.NewValidationError("Invoice number cannot be empty")
	}
	inv.InvoiceNumber = number
	return nil
}

// WithPreviousBalance carries forward an unpaid balance from earlier
// billing periods
func (inv *Invoice) WithPreviousBalance(balance valueobject.Money) *Invoice {
	inv.PreviousBalance = balance.Amount()
	return inv
}

// Send moves a DRAFT invoice to SENT
func (inv *Invoice) Send() error {
	if inv.Status != InvoiceStatusDraft {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot send invoice in %s status", inv.Status))
	}
	inv.Status = InvoiceStatusSent
	inv.Touch()
	inv.IncrementVersion()
	inv.AddDomainEvent(NewInvoiceSentEvent(inv))
	return nil
}

// MarkOverdue flags a SENT invoice as OVERDUE when its due date has
// passed. Already-overdue invoices stay overdue.
func (inv *Invoice) MarkOverdue(asOf time.Time) error {
	if inv.Status == InvoiceStatusOverdue {
		return nil
	}
	if inv.Status != InvoiceStatusSent {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Cannot mark invoice in %s status overdue", inv.Status))
	}
	if !asOf.After(inv.DueDate) {
		return shared.NewValidationError("Invoice is not yet past its due date")
	}
	inv.Status = InvoiceStatusOverdue
	inv.Touch()
	inv.IncrementVersion()
	return nil
}

// ApplyLateFee adds the one-time late fee (10% of the current balance)
// to an overdue balance. It is idempotent across the invoice lifetime:
// the fee is applied at most once, and calls outside the applicable
// window are no-ops. Returns true when the fee was applied.
func (inv *Invoice) ApplyLateFee(asOf time.Time) bool {
	if inv.LateFeeApplied {
		return false
	}
	if inv.Status != InvoiceStatusSent && inv.Status != InvoiceStatusOverdue {
		return false
	}
	if !asOf.After(inv.DueDate) {
		return false
	}

	fee := inv.Balance.Mul(lateFeePercent).Div(decimal.NewFromInt(100)).Round(2)
	inv.LateFee = fee
	inv.Balance = inv.Balance.Add(fee)
	inv.LateFeeApplied = true
	inv.Touch()
	inv.IncrementVersion()
	inv.AddDomainEvent(NewLateFeeAppliedEvent(inv))
	return true
}

// MarkPaid is an administrative override that forces the invoice to
// PAID regardless of its remaining balance. It is not a derived
// transition: use it only for manual corrections.
func (inv *Invoice) MarkPaid() error {
	if inv.Status == InvoiceStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Cannot mark a cancelled invoice paid")
	}
	inv.Status = InvoiceStatusPaid
	inv.Touch()
	inv.IncrementVersion()
	return nil
}

// Cancel voids a not-yet-paid invoice. CANCELLED is terminal.
func (inv *Invoice) Cancel() error {
	if inv.Status == InvoiceStatusPaid {
		return shared.NewDomainError("INVALID_STATE", "Cannot cancel a paid invoice")
	}
	if inv.Status == InvoiceStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Invoice is already cancelled")
	}
	inv.Status = InvoiceStatusCancelled
	inv.Touch()
	inv.IncrementVersion()
	return nil
}

// CheckIntegrity verifies the balance and late-fee invariants
func (inv *Invoice) CheckIntegrity() error {
	if inv.Balance.IsNegative() {
		return shared.NewIntegrityError(fmt.Sprintf("Invoice %s has negative balance", inv.InvoiceNumber))
	}
	if inv.LateFeeApplied && !inv.LateFee.IsPositive() {
		return shared.NewIntegrityError(fmt.Sprintf("Invoice %s flags a late fee that was never added", inv.InvoiceNumber))
	}
	if inv.Balance.IsZero() && inv.Status != InvoiceStatusPaid {
		return shared.NewIntegrityError(fmt.Sprintf("Invoice %s has zero balance but is not paid", inv.InvoiceNumber))
	}
	return nil
}

// IsOverdue returns true if the invoice is outstanding and past due
func (inv *Invoice) IsOverdue(asOf time.Time) bool {
	return inv.Status.IsOutstanding() && asOf.After(inv.DueDate)
}

// GetBalanceMoney returns the remaining balance as Money
func (inv *Invoice) GetBalanceMoney() valueobject.Money {
	return valueobject.NewMoneyKES(inv.Balance)
}

// GetAmountMoney returns the billed total as Money
func (inv *Invoice) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyKES(inv.Amount)
}

// invoiceNumberLayout is the period portion of the invoice number scheme
const invoiceNumberLayout = "200601"

// InvoiceNumberPrefix returns the number prefix for a billing period,
// e.g. "INV-202401-"
func InvoiceNumberPrefix(period time.Time) string {
	return fmt.Sprintf("INV-%s-", period.Format(invoiceNumberLayout))
}

// FormatInvoiceNumber renders an invoice number for the period and
// sequence, e.g. "INV-202401-0042". The sequence resets monthly.
func FormatInvoiceNumber(period time.Time, sequence int) string {
	return fmt.Sprintf("%s%04d", InvoiceNumberPrefix(period), sequence)
}

// ParseInvoiceSequence extracts the numeric sequence from an invoice
// number. It takes everything after the final dash, so a month that
// outgrows the four-digit padding keeps counting instead of wrapping.
// Returns 0 for an empty or malformed number.
func ParseInvoiceSequence(number string) int {
	idx := strings.LastIndex(number, "-")
	if idx < 0 || idx == len(number)-1 {
		return 0
	}
	seq, err := strconv.Atoi(number[idx+1:])
	if err != nil {
		return 0
	}
	return seq
}
