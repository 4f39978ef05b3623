package invoice

import (
	"context"

	"github.com/bizbook/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// FindByID finds an invoice (with items) by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByIDForTenant finds an invoice by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Invoice, error)

	// FindByNumber finds an invoice by its number within a tenant
	FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*Invoice, error)

	// FindAllForTenant finds invoices for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Invoice, error)

	// FindByCustomer finds invoices for a customer
	FindByCustomer(ctx context.Context, tenantID, customerID uuid.UUID, filter shared.Filter) ([]Invoice, error)

	// FindByStatus finds invoices in a given lifecycle state
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status InvoiceStatus, filter shared.Filter) ([]Invoice, error)

	// Save creates or updates an invoice and its items
	Save(ctx context.Context, inv *Invoice) error

	// SaveWithLock saves with optimistic locking (version check).
	// Returns shared.ErrConcurrencyConflict if the version has changed.
	SaveWithLock(ctx context.Context, inv *Invoice) error

	// CountForTenant counts invoices for a tenant
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// NextInvoiceNumber allocates the next sequential number for the
	// tenant in the form INV-000001. Numbering continues after the
	// highest number ever assigned; cancellations leave gaps.
	NextInvoiceNumber(ctx context.Context, tenantID uuid.UUID) (string, error)
}

// PaymentRepository persists settlements against invoices
type PaymentRepository interface {
	// Save appends a payment record
	Save(ctx context.Context, payment *Payment) error

	// FindByID finds a payment by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByInvoice returns all payments against one invoice, oldest first
	FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]Payment, error)

	// SumByInvoice totals the payments recorded against one invoice
	SumByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (decimal.Decimal, error)
}

// AuditLogRepository persists the append-only invoice audit trail
type AuditLogRepository interface {
	// Save appends an audit entry
	Save(ctx context.Context, entry *AuditLog) error

	// FindByInvoice returns the trail for one invoice, oldest first
	FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]AuditLog, error)
}
