package accounting

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountRepository is the Ledger Account Registry: the sole source of truth
// for whether a (tenant, code) account exists.
type AccountRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	FindByCode(ctx context.Context, tenantID uuid.UUID, code string) (*Account, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]Account, error)
	// GetOrCreate returns the account for (tenantID, code), creating it on
	// first use. Implementations must be safe under concurrent first-use:
	// when two postings race to create the same code, exactly one insert
	// wins and the loser resolves to the winner via a retry-read, never
	// surfacing the unique-constraint violation to the caller.
	GetOrCreate(ctx context.Context, tenantID uuid.UUID, code, name string, accountType AccountType) (*Account, error)
	Save(ctx context.Context, account *Account) error
}

// AccountBalance is the net position of one account over a reference set
type AccountBalance struct {
	AccountID uuid.UUID
	Debits    decimal.Decimal
	Credits   decimal.Decimal
}

// EntryRepository persists immutable ledger postings
type EntryRepository interface {
	// CreateBatch appends a set of postings; entries are never updated
	CreateBatch(ctx context.Context, entries []*Entry) error
	FindByReference(ctx context.Context, tenantID uuid.UUID, refType ReferenceType, refID uuid.UUID) ([]Entry, error)
	// FindByDocument returns every posting whose reference ID matches,
	// regardless of reference type (invoice + payments + credit note).
	FindByDocument(ctx context.Context, tenantID, refID uuid.UUID) ([]Entry, error)
	// DeleteByReference removes the postings of one reference. Only the
	// financial-update path uses this, to replace an invoice's postings
	// inside the same transaction that re-posts them.
	DeleteByReference(ctx context.Context, tenantID uuid.UUID, refType ReferenceType, refID uuid.UUID) error
	// BalancesByAccount sums debits/credits per account over a date range
	BalancesByAccount(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]AccountBalance, error)
}
