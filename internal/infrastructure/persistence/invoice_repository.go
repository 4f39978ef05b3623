package persistence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bizbook/backend/internal/domain/invoice"
	"github.com/bizbook/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const invoiceNumberPrefix = "INV-"

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db     *gorm.DB
	loaded *versionTracker
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db, loaded: newVersionTracker()}
}

// FindByID finds an invoice (with items) by ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	var inv invoice.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&inv, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	r.loaded.record(inv.ID, inv.Version)
	return &inv, nil
}

// FindByIDForTenant finds an invoice by ID within a tenant
func (r *GormInvoiceRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*invoice.Invoice, error) {
	var inv invoice.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	r.loaded.record(inv.ID, inv.Version)
	return &inv, nil
}

// FindByNumber finds an invoice by its number within a tenant
func (r *GormInvoiceRepository) FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*invoice.Invoice, error) {
	var inv invoice.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND invoice_number = ?", tenantID, strings.ToUpper(strings.TrimSpace(number))).
		First(&inv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	r.loaded.record(inv.ID, inv.Version)
	return &inv, nil
}

// FindAllForTenant finds invoices for a tenant with filtering
func (r *GormInvoiceRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]invoice.Invoice, error) {
	return r.findWhere(ctx, filter, "tenant_id = ?", tenantID)
}

// FindByCustomer finds invoices for a customer
func (r *GormInvoiceRepository) FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, filter shared.Filter) ([]invoice.Invoice, error) {
	return r.findWhere(ctx, filter, "tenant_id = ? AND customer_id = ?", tenantID, customerID)
}

// FindByStatus finds invoices in a given lifecycle state
func (r *GormInvoiceRepository) FindByStatus(ctx context.Context, tenantID uuid.UUID, status invoice.InvoiceStatus, filter shared.Filter) ([]invoice.Invoice, error) {
	return r.findWhere(ctx, filter, "tenant_id = ? AND status = ?", tenantID, status)
}

func (r *GormInvoiceRepository) findWhere(ctx context.Context, filter shared.Filter, cond string, args ...interface{}) ([]invoice.Invoice, error) {
	var invoices []invoice.Invoice
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&invoice.Invoice{}).Where(cond, args...),
		filter,
	)
	if err := query.Preload("Items").Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// Save creates or updates an invoice and its items. Items are replaced
// wholesale: an invoice's lines are a snapshot, not independently
// addressable rows.
func (r *GormInvoiceRepository) Save(ctx context.Context, inv *invoice.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Omit("Items").
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				UpdateAll: true,
			}).
			Create(inv).Error; err != nil {
			// Two transactions can allocate the same invoice number; the
			// loser's insert trips the unique index and must be retried
			// so it re-reads the sequence.
			if isUniqueViolation(err, "idx_invoice_tenant_number") {
				return shared.ErrConcurrencyConflict
			}
			return err
		}
		return r.saveItems(tx, inv)
	})
}

// SaveWithLock saves with optimistic locking against the version the row
// carried when it was loaded. Returns shared.ErrConcurrencyConflict if
// another transaction has modified the invoice in the meantime.
func (r *GormInvoiceRepository) SaveWithLock(ctx context.Context, inv *invoice.Invoice) error {
	expected := r.loaded.get(inv.ID, inv.Version-1)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&invoice.Invoice{}).
			Where("id = ? AND version = ?", inv.ID, expected).
			Select("*").Omit("id", "created_at", clause.Associations).
			Updates(inv)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		r.loaded.record(inv.ID, inv.Version)
		return r.saveItems(tx, inv)
	})
}

func (r *GormInvoiceRepository) saveItems(tx *gorm.DB, inv *invoice.Invoice) error {
	if err := tx.Where("invoice_id = ?", inv.ID).Delete(&invoice.Item{}).Error; err != nil {
		return err
	}
	if len(inv.Items) == 0 {
		return nil
	}
	items := make([]invoice.Item, len(inv.Items))
	copy(items, inv.Items)
	return tx.Create(&items).Error
}

// CountForTenant counts invoices for a tenant
func (r *GormInvoiceRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&invoice.Invoice{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// NextInvoiceNumber allocates the next sequential number for the tenant.
// Numbering continues after the highest number ever assigned; cancelled
// invoices keep their row, so their numbers are never reused.
func (r *GormInvoiceRepository) NextInvoiceNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	var numbers []string
	err := r.db.WithContext(ctx).
		Model(&invoice.Invoice{}).
		Where("tenant_id = ? AND invoice_number LIKE ?", tenantID, invoiceNumberPrefix+"%").
		Order("invoice_number DESC").
		Limit(1).
		Pluck("invoice_number", &numbers).Error
	if err != nil {
		return "", err
	}

	next := 1
	if len(numbers) > 0 {
		if n, parseErr := strconv.Atoi(strings.TrimPrefix(numbers[0], invoiceNumberPrefix)); parseErr == nil {
			next = n + 1
		}
	}
	return fmt.Sprintf("%s%06d", invoiceNumberPrefix, next), nil
}

func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, InvoiceSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	return query
}

func (r *GormInvoiceRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("invoice_number ILIKE ? OR customer_name ILIKE ?", pattern, pattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "payment_status":
			query = query.Where("payment_status = ?", value)
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "branch_id":
			query = query.Where("branch_id = ?", value)
		case "date_from":
			query = query.Where("invoice_date >= ?", value)
		case "date_to":
			query = query.Where("invoice_date <= ?", value)
		}
	}
	return query
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ invoice.InvoiceRepository = (*GormInvoiceRepository)(nil)
