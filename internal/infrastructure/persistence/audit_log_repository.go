package persistence

import (
	"context"

	"github.com/bizbook/backend/internal/domain/invoice"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAuditLogRepository implements AuditLogRepository using GORM.
// The trail is append-only; there is deliberately no update or delete.
type GormAuditLogRepository struct {
	db *gorm.DB
}

// NewGormAuditLogRepository creates a new GormAuditLogRepository
func NewGormAuditLogRepository(db *gorm.DB) *GormAuditLogRepository {
	return &GormAuditLogRepository{db: db}
}

// Save appends an audit entry
func (r *GormAuditLogRepository) Save(ctx context.Context, entry *invoice.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindByInvoice returns the trail for one invoice, oldest first
func (r *GormAuditLogRepository) FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]invoice.AuditLog, error) {
	var entries []invoice.AuditLog
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND invoice_id = ?", tenantID, invoiceID).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Ensure GormAuditLogRepository implements AuditLogRepository
var _ invoice.AuditLogRepository = (*GormAuditLogRepository)(nil)
