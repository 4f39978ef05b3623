package persistence

import (
	"context"

	appinvoice "github.com/bizbook/backend/internal/application/invoice"
	"github.com/bizbook/backend/internal/domain/accounting"
	"github.com/bizbook/backend/internal/domain/catalog"
	"github.com/bizbook/backend/internal/domain/inventory"
	"github.com/bizbook/backend/internal/domain/invoice"
	"github.com/bizbook/backend/internal/domain/partner"
	"github.com/bizbook/backend/internal/domain/report"
	"github.com/bizbook/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// EventWriter persists domain events to the transactional outbox within
// the given transaction. The outbox publisher in infrastructure/event
// satisfies this.
type EventWriter interface {
	PublishWithTx(ctx context.Context, tx *gorm.DB, events ...shared.DomainEvent) error
}

// GormTransactionScope implements the invoice application layer's
// TransactionScope using GORM transactions. Every repository handed to
// the callback shares one transaction, so an invoice transition's stock
// movement, postings, customer figures and outbox events commit or roll
// back as one unit.
type GormTransactionScope struct {
	db     *gorm.DB
	events EventWriter
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB, events EventWriter) *GormTransactionScope {
	return &GormTransactionScope{db: db, events: events}
}

// Execute runs the given function within a database transaction. An error
// from fn rolls the transaction back; success commits it. Serialization
// failures and deadlocks come back as shared.ErrConcurrencyConflict so
// the caller's retry loop treats them like optimistic-lock conflicts.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appinvoice.TransactionalRepositories) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newGormTransactionalRepositories(tx, s.events))
	})
	return translateConflict(err)
}

// gormTransactionalRepositories provides access to all repositories within
// a transaction. Repositories are constructed once per transaction so the
// optimistic-lock bookkeeping in the invoice and customer repositories
// survives across accessor calls.
type gormTransactionalRepositories struct {
	tx     *gorm.DB
	events EventWriter

	invoices     *GormInvoiceRepository
	payments     *GormPaymentRepository
	auditLogs    *GormAuditLogRepository
	customers    *GormCustomerRepository
	products     *GormProductRepository
	stock        *GormStockItemRepository
	accounts     *GormAccountRepository
	entries      *GormEntryRepository
	salesRecords *GormSalesRecordRepository
}

func newGormTransactionalRepositories(tx *gorm.DB, events EventWriter) *gormTransactionalRepositories {
	return &gormTransactionalRepositories{
		tx:           tx,
		events:       events,
		invoices:     NewGormInvoiceRepository(tx),
		payments:     NewGormPaymentRepository(tx),
		auditLogs:    NewGormAuditLogRepository(tx),
		customers:    NewGormCustomerRepository(tx),
		products:     NewGormProductRepository(tx),
		stock:        NewGormStockItemRepository(tx),
		accounts:     NewGormAccountRepository(tx),
		entries:      NewGormEntryRepository(tx),
		salesRecords: NewGormSalesRecordRepository(tx),
	}
}

// Invoices returns the invoice repository scoped to the current transaction
func (r *gormTransactionalRepositories) Invoices() invoice.InvoiceRepository {
	return r.invoices
}

// Payments returns the payment repository scoped to the current transaction
func (r *gormTransactionalRepositories) Payments() invoice.PaymentRepository {
	return r.payments
}

// AuditLogs returns the audit log repository scoped to the current transaction
func (r *gormTransactionalRepositories) AuditLogs() invoice.AuditLogRepository {
	return r.auditLogs
}

// Customers returns the customer repository scoped to the current transaction
func (r *gormTransactionalRepositories) Customers() partner.CustomerRepository {
	return r.customers
}

// Products returns the product repository scoped to the current transaction
func (r *gormTransactionalRepositories) Products() catalog.ProductRepository {
	return r.products
}

// Stock returns the stock item repository scoped to the current transaction
func (r *gormTransactionalRepositories) Stock() inventory.StockItemRepository {
	return r.stock
}

// Accounts returns the ledger account repository scoped to the current transaction
func (r *gormTransactionalRepositories) Accounts() accounting.AccountRepository {
	return r.accounts
}

// Entries returns the ledger entry repository scoped to the current transaction
func (r *gormTransactionalRepositories) Entries() accounting.EntryRepository {
	return r.entries
}

// SalesRecords returns the sales record repository scoped to the current transaction
func (r *gormTransactionalRepositories) SalesRecords() report.SalesRecordRepository {
	return r.salesRecords
}

// SaveEvents appends domain events to the transactional outbox so they are
// delivered only if the surrounding transaction commits
func (r *gormTransactionalRepositories) SaveEvents(ctx context.Context, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	return r.events.PublishWithTx(ctx, r.tx, events...)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appinvoice.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormTransactionalRepositories implements TransactionalRepositories
var _ appinvoice.TransactionalRepositories = (*gormTransactionalRepositories)(nil)
