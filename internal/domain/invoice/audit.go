package invoice

import (
	"time"

	"github.com/google/uuid"
)

// Audit actions recorded against invoices
const (
	AuditActionCreated      = "created"
	AuditActionUpdated      = "updated"
	AuditActionCancelled    = "cancelled"
	AuditActionPaymentAdded = "payment_added"
	AuditActionConverted    = "converted"
)

// AuditLog is an append-only trail entry for one invoice action. Details
// holds a JSON snapshot of whatever the action changed.
type AuditLog struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TenantID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	InvoiceID uuid.UUID  `gorm:"type:uuid;not null;index"`
	Action    string     `gorm:"type:varchar(50);not null"`
	ActorID   *uuid.UUID `gorm:"type:uuid"`
	Details   string     `gorm:"type:jsonb;default:'{}'"`
	CreatedAt time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AuditLog) TableName() string {
	return "invoice_audit_logs"
}

// NewAuditLog creates an audit trail entry
func NewAuditLog(tenantID, invoiceID uuid.UUID, action, details string) *AuditLog {
	if details == "" {
		details = "{}"
	}
	return &AuditLog{
		ID:        uuid.New(),
		TenantID:  tenantID,
		InvoiceID: invoiceID,
		Action:    action,
		Details:   details,
		CreatedAt: time.Now(),
	}
}

// WithActor attributes the entry to a user
func (a *AuditLog) WithActor(actorID uuid.UUID) *AuditLog {
	a.ActorID = &actorID
	return a
}
