package persistence

import (
	"context"
	"time"

	"github.com/bizbook/backend/internal/domain/accounting"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormEntryRepository implements EntryRepository using GORM. Postings are
// append-only; the single delete path exists for the financial-update
// flow, which replaces an invoice's postings inside one transaction.
type GormEntryRepository struct {
	db *gorm.DB
}

// NewGormEntryRepository creates a new GormEntryRepository
func NewGormEntryRepository(db *gorm.DB) *GormEntryRepository {
	return &GormEntryRepository{db: db}
}

// CreateBatch appends a set of postings
func (r *GormEntryRepository) CreateBatch(ctx context.Context, entries []*accounting.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(entries).Error
}

// FindByReference returns the postings of one reference, oldest first
func (r *GormEntryRepository) FindByReference(ctx context.Context, tenantID uuid.UUID, refType accounting.ReferenceType, refID uuid.UUID) ([]accounting.Entry, error) {
	var entries []accounting.Entry
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND reference_type = ? AND reference_id = ?", tenantID, refType, refID).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// FindByDocument returns every posting whose reference ID matches,
// regardless of reference type
func (r *GormEntryRepository) FindByDocument(ctx context.Context, tenantID, refID uuid.UUID) ([]accounting.Entry, error) {
	var entries []accounting.Entry
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND reference_id = ?", tenantID, refID).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// DeleteByReference removes the postings of one reference
func (r *GormEntryRepository) DeleteByReference(ctx context.Context, tenantID uuid.UUID, refType accounting.ReferenceType, refID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND reference_type = ? AND reference_id = ?", tenantID, refType, refID).
		Delete(&accounting.Entry{}).Error
}

// BalancesByAccount sums debits and credits per account over a date range
func (r *GormEntryRepository) BalancesByAccount(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]accounting.AccountBalance, error) {
	var balances []accounting.AccountBalance
	err := r.db.WithContext(ctx).
		Model(&accounting.Entry{}).
		Select("account_id, COALESCE(SUM(debit), 0) as debits, COALESCE(SUM(credit), 0) as credits").
		Where("tenant_id = ? AND entry_date >= ? AND entry_date <= ?", tenantID, from, to).
		Group("account_id").
		Scan(&balances).Error
	if err != nil {
		return nil, err
	}
	return balances, nil
}

// Ensure GormEntryRepository implements EntryRepository
var _ accounting.EntryRepository = (*GormEntryRepository)(nil)
