package invoice

import (
	"context"

	"github.com/bizbook/backend/internal/domain/accounting"
	"github.com/bizbook/backend/internal/domain/catalog"
	"github.com/bizbook/backend/internal/domain/inventory"
	"github.com/bizbook/backend/internal/domain/invoice"
	"github.com/bizbook/backend/internal/domain/partner"
	"github.com/bizbook/backend/internal/domain/report"
	"github.com/bizbook/backend/internal/domain/shared"
)

// TransactionScope provides transactional access to every repository an
// invoice lifecycle transition touches. A transition runs entirely inside
// one Execute call: stock movement, journal postings, customer figures,
// the aggregate itself and its outbox events commit or roll back together.
type TransactionScope interface {
	// Execute runs fn within a database transaction. An error from fn
	// rolls the transaction back; success commits it.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the repositories scoped to the
// current transaction. Sales records are included even though their write
// is best-effort: a projection failure is logged and swallowed by the
// caller rather than surfaced from fn.
type TransactionalRepositories interface {
	Invoices() invoice.InvoiceRepository
	Payments() invoice.PaymentRepository
	AuditLogs() invoice.AuditLogRepository
	Customers() partner.CustomerRepository
	Products() catalog.ProductRepository
	Stock() inventory.StockItemRepository
	Accounts() accounting.AccountRepository
	Entries() accounting.EntryRepository
	SalesRecords() report.SalesRecordRepository

	// SaveEvents appends domain events to the transactional outbox so
	// they are delivered only if the surrounding transaction commits
	SaveEvents(ctx context.Context, events ...shared.DomainEvent) error
}
