package persistence

import (
	"context"

	"github.com/bizbook/backend/internal/domain/report"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSalesRecordRepository implements SalesRecordRepository using GORM
type GormSalesRecordRepository struct {
	db *gorm.DB
}

// NewGormSalesRecordRepository creates a new GormSalesRecordRepository
func NewGormSalesRecordRepository(db *gorm.DB) *GormSalesRecordRepository {
	return &GormSalesRecordRepository{db: db}
}

// SaveBatch inserts the projection rows for one invoice
func (r *GormSalesRecordRepository) SaveBatch(ctx context.Context, records []*report.SalesRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(records).Error
}

// DeleteByInvoice removes an invoice's rows
func (r *GormSalesRecordRepository) DeleteByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("tenant_id = ? AND invoice_id = ?", tenantID, invoiceID).
		Delete(&report.SalesRecord{}).Error
}

// MarkCancelledByInvoice flips an invoice's rows to cancelled
func (r *GormSalesRecordRepository) MarkCancelledByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&report.SalesRecord{}).
		Where("tenant_id = ? AND invoice_id = ?", tenantID, invoiceID).
		Update("status", report.SalesRecordCancelled).Error
}

// FindByInvoice returns the rows projected from one invoice
func (r *GormSalesRecordRepository) FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]report.SalesRecord, error) {
	var records []report.SalesRecord
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND invoice_id = ?", tenantID, invoiceID).
		Order("created_at ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Ensure GormSalesRecordRepository implements SalesRecordRepository
var _ report.SalesRecordRepository = (*GormSalesRecordRepository)(nil)
