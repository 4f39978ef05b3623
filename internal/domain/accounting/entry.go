package accounting

import (
	"time"

	"github.com/bizbook/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReferenceType links a posting back to its originating document
type ReferenceType string

const (
	ReferenceTypeInvoice    ReferenceType = "invoice"
	ReferenceTypePayment    ReferenceType = "payment"
	ReferenceTypeCreditNote ReferenceType = "credit_note"
)

// IsValid checks if the reference type is valid
func (t ReferenceType) IsValid() bool {
	switch t {
	case ReferenceTypeInvoice, ReferenceTypePayment, ReferenceTypeCreditNote:
		return true
	}
	return false
}

// Entry is an immutable double-entry ledger posting. Exactly one of
// Debit/Credit is positive and the other is exactly zero. Entries are
// append-only: a reversal is achieved by posting offsetting entries under
// the credit-note reference type, never by mutating or deleting the
// originals.
type Entry struct {
	shared.BaseEntity
	TenantID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	BranchID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	AccountID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	PartnerID     *uuid.UUID      `gorm:"type:uuid;index"` // Customer or supplier, when attributable
	EntryDate     time.Time       `gorm:"not null;index"`
	Debit         decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Credit        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	ReferenceType ReferenceType   `gorm:"type:varchar(20);not null;index:idx_entry_reference"`
	ReferenceID   uuid.UUID       `gorm:"type:uuid;not null;index:idx_entry_reference"`
	Description   string          `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (Entry) TableName() string {
	return "account_entries"
}

// NewDebit creates a debit posting
func NewDebit(tenantID, branchID, accountID uuid.UUID, amount decimal.Decimal, refType ReferenceType, refID uuid.UUID, description string) (*Entry, error) {
	return newEntry(tenantID, branchID, accountID, amount, decimal.Zero, refType, refID, description)
}

// NewCredit creates a credit posting
func NewCredit(tenantID, branchID, accountID uuid.UUID, amount decimal.Decimal, refType ReferenceType, refID uuid.UUID, description string) (*Entry, error) {
	return newEntry(tenantID, branchID, accountID, decimal.Zero, amount, refType, refID, description)
}

func newEntry(tenantID, branchID, accountID uuid.UUID, debit, credit decimal.Decimal, refType ReferenceType, refID uuid.UUID, description string) (*Entry, error) {
	if accountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Account ID cannot be empty")
	}
	if !refType.IsValid() {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Unknown reference type: "+string(refType))
	}
	if refID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Reference ID cannot be empty")
	}

	debit = debit.Round(2)
	credit = credit.Round(2)

	if debit.IsNegative() || credit.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Posting amounts cannot be negative")
	}
	if debit.IsZero() == credit.IsZero() {
		// Both zero, or both positive: neither is a valid posting.
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Exactly one of debit/credit must be positive")
	}

	return &Entry{
		BaseEntity:    shared.NewBaseEntity(),
		TenantID:      tenantID,
		BranchID:      branchID,
		AccountID:     accountID,
		EntryDate:     time.Now(),
		Debit:         debit,
		Credit:        credit,
		ReferenceType: refType,
		ReferenceID:   refID,
		Description:   description,
	}, nil
}

// WithPartner attributes the posting to a customer/supplier
func (e *Entry) WithPartner(partnerID uuid.UUID) *Entry {
	e.PartnerID = &partnerID
	return e
}

// WithDate overrides the posting date (defaults to now)
func (e *Entry) WithDate(date time.Time) *Entry {
	e.EntryDate = date
	return e
}

// Amount returns the absolute amount of the posting
func (e *Entry) Amount() decimal.Decimal {
	if e.Debit.IsPositive() {
		return e.Debit
	}
	return e.Credit
}

// IsDebit returns true if the entry is a debit posting
func (e *Entry) IsDebit() bool {
	return e.Debit.IsPositive()
}

// SumEntries returns the total debits and credits of a posting set
func SumEntries(entries []*Entry) (debits, credits decimal.Decimal) {
	debits, credits = decimal.Zero, decimal.Zero
	for _, e := range entries {
		debits = debits.Add(e.Debit)
		credits = credits.Add(e.Credit)
	}
	return debits, credits
}
