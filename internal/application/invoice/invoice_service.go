package invoice

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bizbook/backend/internal/domain/accounting"
	"github.com/bizbook/backend/internal/domain/catalog"
	"github.com/bizbook/backend/internal/domain/inventory"
	"github.com/bizbook/backend/internal/domain/invoice"
	"github.com/bizbook/backend/internal/domain/partner"
	"github.com/bizbook/backend/internal/domain/report"
	"github.com/bizbook/backend/internal/domain/shared"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InvoiceService orchestrates the invoice lifecycle. Every transition runs
// inside one transaction scope: stock movement, journal postings, customer
// receivable figures, the invoice itself and its outbox events commit
// together or not at all. Conflicting concurrent transitions retry up to
// three times before surfacing the conflict.
type InvoiceService struct {
	scope    TransactionScope
	logger   *zap.Logger
	validate *validator.Validate
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(scope TransactionScope, logger *zap.Logger) *InvoiceService {
	return &InvoiceService{
		scope:    scope,
		logger:   logger,
		validate: validator.New(),
	}
}

// Create creates an invoice. With AsDraft the invoice parks without
// financial effects; otherwise it is issued immediately: stock reduced,
// journal posted, customer receivable recorded, and any paid-at-creation
// amount settled in the same transaction.
func (s *InvoiceService) Create(ctx context.Context, tenantID uuid.UUID, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.NewDomainError("VALIDATION_FAILED", err.Error())
	}
	if req.PaidAmount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Paid amount cannot be negative")
	}
	if req.PaidAmount.IsPositive() && req.PaymentMethod == "" {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method is required when paying at creation")
	}
	if req.AsDraft && req.PaidAmount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_STATE", "A draft cannot take payments")
	}

	var resp InvoiceResponse
	err := runAtomic(ctx, s.scope, func(repos TransactionalRepositories) error {
		customer, err := repos.Customers().FindByIDForTenant(ctx, tenantID, req.CustomerID)
		if err != nil {
			return err
		}

		inv, err := invoice.NewInvoice(tenantID, req.BranchID, customer.ID, customer.Name, req.InvoiceDate)
		if err != nil {
			return err
		}

		products, err := s.addItemsFromCatalog(ctx, repos, inv, req.Items)
		if err != nil {
			return err
		}
		if err := inv.SetCharges(req.Shipping, req.Discount, req.RoundOff); err != nil {
			return err
		}
		if req.DueDate != nil {
			if err := inv.SetDueDate(*req.DueDate); err != nil {
				return err
			}
		}
		if req.Notes != "" {
			inv.SetNotes(req.Notes)
		}

		if req.AsDraft {
			if err := repos.Invoices().Save(ctx, inv); err != nil {
				return err
			}
			if err := repos.AuditLogs().Save(ctx, auditEntry(inv, invoice.AuditActionCreated, map[string]any{"status": inv.Status})); err != nil {
				return err
			}
			if err := s.flushEvents(ctx, repos, inv, nil); err != nil {
				return err
			}
			resp = ToInvoiceResponse(inv)
			return nil
		}

		if err := s.issueInvoice(ctx, repos, inv, customer); err != nil {
			return err
		}

		if req.PaidAmount.IsPositive() {
			if req.PaidAmount.GreaterThan(inv.GrandTotal) {
				return shared.NewDomainError("OVERPAYMENT", "Paid amount cannot exceed the invoice grand total")
			}
			if _, err := s.settlePayment(ctx, repos, inv, customer, req.PaidAmount, req.PaymentMethod, req.InvoiceDate, ""); err != nil {
				return err
			}
		}

		if err := repos.Invoices().Save(ctx, inv); err != nil {
			return err
		}
		if err := repos.Customers().SaveWithLock(ctx, customer); err != nil {
			return err
		}
		if err := repos.AuditLogs().Save(ctx, auditEntry(inv, invoice.AuditActionCreated, map[string]any{
			"invoice_number": inv.InvoiceNumber,
			"grand_total":    inv.GrandTotal,
			"paid_amount":    inv.PaidAmount,
		})); err != nil {
			return err
		}

		s.projectSalesRecords(ctx, repos, inv, products)

		if err := s.flushEvents(ctx, repos, inv, customer); err != nil {
			return err
		}
		resp = ToInvoiceResponse(inv)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Update patches an invoice. Drafts accept any change freely. Issued
// invoices split two ways: descriptive-only changes (notes, due date) are
// a plain save, while financial changes replace the invoice's footprint
// step by step: old stock restored, new stock validated and reduced, old
// postings deleted, the customer's old contribution reversed, totals
// recomputed, a fresh journal posted and the projection rewritten.
func (s *InvoiceService) Update(ctx context.Context, tenantID, invoiceID uuid.UUID, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.NewDomainError("VALIDATION_FAILED", err.Error())
	}

	var resp InvoiceResponse
	err := runAtomic(ctx, s.scope, func(repos TransactionalRepositories) error {
		inv, err := repos.Invoices().FindByIDForTenant(ctx, tenantID, invoiceID)
		if err != nil {
			return err
		}

		if inv.IsCancelled() {
			return &shared.InvalidTransitionError{From: inv.Status.String(), Action: "update"}
		}

		if inv.IsDraft() {
			if err := s.patchDraft(ctx, repos, inv, req); err != nil {
				return err
			}
		} else if !req.HasFinancialChanges() {
			if err := applyDescriptiveFields(inv, req); err != nil {
				return err
			}
			if err := repos.Invoices().SaveWithLock(ctx, inv); err != nil {
				return err
			}
		} else {
			if err := s.replaceFinancials(ctx, repos, inv, req); err != nil {
				return err
			}
		}

		if err := repos.AuditLogs().Save(ctx, auditEntry(inv, invoice.AuditActionUpdated, map[string]any{
			"grand_total": inv.GrandTotal,
			"status":      inv.Status,
		})); err != nil {
			return err
		}
		if err := s.flushEvents(ctx, repos, inv, nil); err != nil {
			return err
		}
		resp = ToInvoiceResponse(inv)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Cancel moves an invoice to the terminal cancelled state. For issued
// invoices the financial footprint is undone: stock restored (unless the
// restock flag says otherwise), a credit-note journal posted mirroring
// the original, the customer's contribution reversed and the projection
// rows removed. Drafts simply flip state.
func (s *InvoiceService) Cancel(ctx context.Context, tenantID, invoiceID uuid.UUID, req CancelInvoiceRequest) (*InvoiceResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.NewDomainError("VALIDATION_FAILED", err.Error())
	}

	var resp InvoiceResponse
	err := runAtomic(ctx, s.scope, func(repos TransactionalRepositories) error {
		inv, err := repos.Invoices().FindByIDForTenant(ctx, tenantID, invoiceID)
		if err != nil {
			return err
		}
		// The terminal-state check must precede the reversals below;
		// inv.Cancel would only reject after they had run.
		if inv.IsCancelled() {
			return &shared.InvalidTransitionError{From: inv.Status.String(), Action: "cancel"}
		}

		wasDraft := inv.IsDraft()
		restock := !wasDraft && req.ShouldRestock()

		var customer *partner.Customer
		if !wasDraft {
			customer, err = repos.Customers().FindByIDForTenant(ctx, tenantID, inv.CustomerID)
			if err != nil {
				return err
			}

			if restock {
				ledger := inventory.NewStockLedger(repos.Stock())
				if err := ledger.Restore(ctx, tenantID, inv.BranchID, stockLines(inv)); err != nil {
					return err
				}
				if err := repos.SaveEvents(ctx, ledger.PullEvents()...); err != nil {
					return err
				}
			}

			journal := accounting.NewJournalService(repos.Accounts(), repos.Entries())
			if _, err := journal.ReverseInvoiceJournal(ctx, tenantID, journalInput(inv)); err != nil {
				return err
			}

			if err := customer.ReversePurchase(inv.GrandTotal, inv.BalanceAmount); err != nil {
				return err
			}

			// The projection keeps cancelled history; aggregation skips
			// rows in this status.
			if err := repos.SalesRecords().MarkCancelledByInvoice(ctx, tenantID, inv.ID); err != nil {
				s.logger.Warn("sales record cancellation failed",
					zap.String("invoice_id", inv.ID.String()),
					zap.Error(err))
			}
		}

		if err := inv.Cancel(req.Reason, restock); err != nil {
			return err
		}

		if err := repos.Invoices().SaveWithLock(ctx, inv); err != nil {
			return err
		}
		if customer != nil {
			if err := repos.Customers().SaveWithLock(ctx, customer); err != nil {
				return err
			}
		}
		if err := repos.AuditLogs().Save(ctx, auditEntry(inv, invoice.AuditActionCancelled, map[string]any{
			"reason":    req.Reason,
			"restocked": restock,
		})); err != nil {
			return err
		}
		if err := s.flushEvents(ctx, repos, inv, customer); err != nil {
			return err
		}
		resp = ToInvoiceResponse(inv)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// AddPayment settles an amount against an issued invoice. The amount must
// be positive and cumulative payments never exceed the grand total; the
// settlement journal and the customer's receivable move in the same
// transaction. Reaching zero balance flips the invoice to paid.
func (s *InvoiceService) AddPayment(ctx context.Context, tenantID, invoiceID uuid.UUID, req AddPaymentRequest) (*PaymentResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.NewDomainError("VALIDATION_FAILED", err.Error())
	}

	var resp PaymentResponse
	err := runAtomic(ctx, s.scope, func(repos TransactionalRepositories) error {
		inv, err := repos.Invoices().FindByIDForTenant(ctx, tenantID, invoiceID)
		if err != nil {
			return err
		}
		customer, err := repos.Customers().FindByIDForTenant(ctx, tenantID, inv.CustomerID)
		if err != nil {
			return err
		}

		payment, err := s.settlePayment(ctx, repos, inv, customer, req.Amount, req.Method, req.PaymentDate, req.Reference)
		if err != nil {
			return err
		}

		if err := repos.Invoices().SaveWithLock(ctx, inv); err != nil {
			return err
		}
		if err := repos.Customers().SaveWithLock(ctx, customer); err != nil {
			return err
		}
		if err := repos.AuditLogs().Save(ctx, auditEntry(inv, invoice.AuditActionPaymentAdded, map[string]any{
			"amount":  req.Amount,
			"method":  payment.Method,
			"balance": inv.BalanceAmount,
		})); err != nil {
			return err
		}
		if err := s.flushEvents(ctx, repos, inv, customer); err != nil {
			return err
		}
		resp = ToPaymentResponse(payment)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// ConvertDraft issues a draft under the next sequential invoice number,
// keeping the prices and costs snapshotted when the draft was written.
// Stock, journal and receivable effects take hold at conversion time.
func (s *InvoiceService) ConvertDraft(ctx context.Context, tenantID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	var resp InvoiceResponse
	err := runAtomic(ctx, s.scope, func(repos TransactionalRepositories) error {
		inv, err := repos.Invoices().FindByIDForTenant(ctx, tenantID, invoiceID)
		if err != nil {
			return err
		}
		if !inv.IsDraft() {
			return &shared.InvalidTransitionError{From: inv.Status.String(), Action: "convert"}
		}
		customer, err := repos.Customers().FindByIDForTenant(ctx, tenantID, inv.CustomerID)
		if err != nil {
			return err
		}

		if err := s.issueInvoice(ctx, repos, inv, customer); err != nil {
			return err
		}
		inv.AddDomainEvent(invoice.NewDraftConvertedEvent(inv))

		if err := repos.Invoices().SaveWithLock(ctx, inv); err != nil {
			return err
		}
		if err := repos.Customers().SaveWithLock(ctx, customer); err != nil {
			return err
		}
		if err := repos.AuditLogs().Save(ctx, auditEntry(inv, invoice.AuditActionConverted, map[string]any{
			"invoice_number": inv.InvoiceNumber,
		})); err != nil {
			return err
		}

		s.projectSalesRecords(ctx, repos, inv, nil)

		if err := s.flushEvents(ctx, repos, inv, customer); err != nil {
			return err
		}
		resp = ToInvoiceResponse(inv)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetByID retrieves an invoice by ID
func (s *InvoiceService) GetByID(ctx context.Context, tenantID, invoiceID uuid.UUID) (*InvoiceResponse, error) {
	var resp InvoiceResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		inv, err := repos.Invoices().FindByIDForTenant(ctx, tenantID, invoiceID)
		if err != nil {
			return err
		}
		resp = ToInvoiceResponse(inv)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetByNumber retrieves an invoice by its number
func (s *InvoiceService) GetByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*InvoiceResponse, error) {
	var resp InvoiceResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		inv, err := repos.Invoices().FindByNumber(ctx, tenantID, number)
		if err != nil {
			return err
		}
		resp = ToInvoiceResponse(inv)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// List retrieves one page of a tenant's invoices. Zero paging and
// ordering values fall back to the defaults.
func (s *InvoiceService) List(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (*shared.Paginated[InvoiceResponse], error) {
	defaults := shared.DefaultFilter()
	if filter.Page <= 0 {
		filter.Page = defaults.Page
	}
	if filter.PageSize <= 0 {
		filter.PageSize = defaults.PageSize
	}
	if filter.OrderBy == "" {
		filter.OrderBy = defaults.OrderBy
		filter.OrderDir = defaults.OrderDir
	}

	var out []InvoiceResponse
	var total int64
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		invoices, err := repos.Invoices().FindAllForTenant(ctx, tenantID, filter)
		if err != nil {
			return err
		}
		total, err = repos.Invoices().CountForTenant(ctx, tenantID, filter)
		if err != nil {
			return err
		}
		out = make([]InvoiceResponse, 0, len(invoices))
		for idx := range invoices {
			out = append(out, ToInvoiceResponse(&invoices[idx]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(out, total, filter.Page, filter.PageSize)
	return &page, nil
}

// ListPayments returns the settlements recorded against one invoice
func (s *InvoiceService) ListPayments(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]PaymentResponse, error) {
	var out []PaymentResponse
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		payments, err := repos.Payments().FindByInvoice(ctx, tenantID, invoiceID)
		if err != nil {
			return err
		}
		out = make([]PaymentResponse, 0, len(payments))
		for idx := range payments {
			out = append(out, ToPaymentResponse(&payments[idx]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetAuditTrail returns the audit entries for one invoice, oldest first
func (s *InvoiceService) GetAuditTrail(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]invoice.AuditLog, error) {
	var out []invoice.AuditLog
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		out, err = repos.AuditLogs().FindByInvoice(ctx, tenantID, invoiceID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// addItemsFromCatalog resolves requested lines against the catalog and
// adds them to the invoice with price, tax and cost snapshots. Returns
// the products keyed by ID for later projection enrichment.
func (s *InvoiceService) addItemsFromCatalog(ctx context.Context, repos TransactionalRepositories, inv *invoice.Invoice, items []InvoiceItemRequest) (map[uuid.UUID]*catalog.Product, error) {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	products, err := repos.Products().FindByIDs(ctx, inv.TenantID, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for idx := range products {
		byID[products[idx].ID] = &products[idx]
	}

	for _, item := range items {
		product, ok := byID[item.ProductID]
		if !ok {
			return nil, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found: "+item.ProductID.String())
		}
		if !product.IsActive() {
			return nil, shared.NewDomainError("PRODUCT_INACTIVE", "Product is not active: "+product.Name)
		}

		price := product.SellingPrice
		if item.UnitPrice != nil {
			price = *item.UnitPrice
		}
		if _, err := inv.AddItem(product.ID, product.Name, product.SKU, item.Quantity, price, product.TaxRate, product.CostPrice); err != nil {
			return nil, err
		}
	}
	return byID, nil
}

// issueInvoice performs the shared issue sequence: allocate the number,
// reduce stock under the conditional-decrement guard, transition the
// aggregate, post the revenue journal and record the customer purchase.
func (s *InvoiceService) issueInvoice(ctx context.Context, repos TransactionalRepositories, inv *invoice.Invoice, customer *partner.Customer) error {
	number, err := repos.Invoices().NextInvoiceNumber(ctx, inv.TenantID)
	if err != nil {
		return err
	}

	ledger := inventory.NewStockLedger(repos.Stock())
	if err := ledger.Reduce(ctx, inv.TenantID, inv.BranchID, stockLines(inv)); err != nil {
		return err
	}
	if err := repos.SaveEvents(ctx, ledger.PullEvents()...); err != nil {
		return err
	}

	if err := inv.Issue(number); err != nil {
		return err
	}

	journal := accounting.NewJournalService(repos.Accounts(), repos.Entries())
	if _, err := journal.PostInvoiceJournal(ctx, inv.TenantID, journalInput(inv)); err != nil {
		return err
	}

	return customer.RecordPurchase(inv.GrandTotal, inv.GrandTotal)
}

// settlePayment performs the shared payment sequence against an already
// loaded invoice and customer. Callers persist both aggregates.
func (s *InvoiceService) settlePayment(ctx context.Context, repos TransactionalRepositories, inv *invoice.Invoice, customer *partner.Customer, amount decimal.Decimal, method string, date time.Time, reference string) (*invoice.Payment, error) {
	if err := inv.ApplyPayment(amount); err != nil {
		return nil, err
	}

	payment, err := invoice.NewPayment(inv.TenantID, inv.BranchID, inv.ID, inv.CustomerID, amount, method, date)
	if err != nil {
		return nil, err
	}
	if reference != "" {
		payment.WithReference(reference)
	}
	if err := repos.Payments().Save(ctx, payment); err != nil {
		return nil, err
	}

	journal := accounting.NewJournalService(repos.Accounts(), repos.Entries())
	if _, err := journal.PostPaymentJournal(ctx, inv.TenantID, accounting.PaymentJournalInput{
		PaymentID:     payment.ID,
		InvoiceNumber: inv.InvoiceNumber,
		BranchID:      inv.BranchID,
		CustomerID:    inv.CustomerID,
		Amount:        amount,
		Method:        method,
		Date:          payment.PaymentDate,
	}); err != nil {
		return nil, err
	}

	if err := customer.RecordPayment(amount.Round(2)); err != nil {
		return nil, err
	}
	return payment, nil
}

// patchDraft applies any requested change to a draft, items included.
// Drafts have no financial footprint so nothing is restored or reposted.
func (s *InvoiceService) patchDraft(ctx context.Context, repos TransactionalRepositories, inv *invoice.Invoice, req UpdateInvoiceRequest) error {
	if req.Items != nil {
		inv.Items = inv.Items[:0]
		if _, err := s.addItemsFromCatalog(ctx, repos, inv, req.Items); err != nil {
			return err
		}
	}
	if err := applyCharges(inv, req); err != nil {
		return err
	}
	if err := applyDescriptiveFields(inv, req); err != nil {
		return err
	}
	return repos.Invoices().SaveWithLock(ctx, inv)
}

// replaceFinancials swaps an issued invoice's financial footprint for the
// requested one, in the fixed order: restore old stock, reduce new stock,
// delete old postings, reverse the customer contribution, recompute, post
// fresh and re-record. Payments already taken stay and must still fit
// under the new grand total.
func (s *InvoiceService) replaceFinancials(ctx context.Context, repos TransactionalRepositories, inv *invoice.Invoice, req UpdateInvoiceRequest) error {
	customer, err := repos.Customers().FindByIDForTenant(ctx, inv.TenantID, inv.CustomerID)
	if err != nil {
		return err
	}

	oldGrandTotal := inv.GrandTotal
	oldOutstanding := inv.BalanceAmount
	ledger := inventory.NewStockLedger(repos.Stock())
	journal := accounting.NewJournalService(repos.Accounts(), repos.Entries())

	var products map[uuid.UUID]*catalog.Product
	if req.Items != nil {
		if err := ledger.Restore(ctx, inv.TenantID, inv.BranchID, stockLines(inv)); err != nil {
			return err
		}

		replacement, err := invoice.NewInvoice(inv.TenantID, inv.BranchID, inv.CustomerID, inv.CustomerName, inv.InvoiceDate)
		if err != nil {
			return err
		}
		products, err = s.addItemsFromCatalog(ctx, repos, replacement, req.Items)
		if err != nil {
			return err
		}

		if err := ledger.Reduce(ctx, inv.TenantID, inv.BranchID, stockLines(replacement)); err != nil {
			return err
		}
		if err := inv.ReplaceItems(replacement.Items); err != nil {
			return err
		}
		if err := repos.SaveEvents(ctx, ledger.PullEvents()...); err != nil {
			return err
		}
	}

	if err := journal.DeleteInvoiceJournal(ctx, inv.TenantID, inv.ID); err != nil {
		return err
	}
	if err := customer.ReversePurchase(oldGrandTotal, oldOutstanding); err != nil {
		return err
	}

	if err := applyCharges(inv, req); err != nil {
		return err
	}
	if err := applyDescriptiveFields(inv, req); err != nil {
		return err
	}
	if inv.PaidAmount.GreaterThan(inv.GrandTotal) {
		return shared.NewDomainError("OVERPAYMENT", "Existing payments exceed the updated grand total")
	}

	if _, err := journal.PostInvoiceJournal(ctx, inv.TenantID, journalInput(inv)); err != nil {
		return err
	}
	if err := customer.RecordPurchase(inv.GrandTotal, inv.BalanceAmount); err != nil {
		return err
	}

	inv.AddDomainEvent(invoice.NewInvoiceUpdatedEvent(inv))

	if err := repos.Invoices().SaveWithLock(ctx, inv); err != nil {
		return err
	}
	if err := repos.Customers().SaveWithLock(ctx, customer); err != nil {
		return err
	}
	if err := repos.SaveEvents(ctx, customer.GetDomainEvents()...); err != nil {
		return err
	}
	customer.ClearDomainEvents()

	if err := repos.SalesRecords().DeleteByInvoice(ctx, inv.TenantID, inv.ID); err != nil {
		s.logger.Warn("sales record cleanup failed",
			zap.String("invoice_id", inv.ID.String()),
			zap.Error(err))
	} else {
		s.projectSalesRecords(ctx, repos, inv, products)
	}
	return nil
}

// projectSalesRecords writes the sales projection for an issued invoice.
// The write is best-effort: failures are logged and never abort the
// surrounding transition.
func (s *InvoiceService) projectSalesRecords(ctx context.Context, repos TransactionalRepositories, inv *invoice.Invoice, products map[uuid.UUID]*catalog.Product) {
	records, err := buildSalesRecords(inv, products)
	if err == nil {
		err = repos.SalesRecords().SaveBatch(ctx, records)
	}
	if err != nil {
		s.logger.Warn("sales record projection failed",
			zap.String("invoice_id", inv.ID.String()),
			zap.String("invoice_number", inv.InvoiceNumber),
			zap.Error(err))
	}
}

// flushEvents saves pending domain events to the outbox and clears them
func (s *InvoiceService) flushEvents(ctx context.Context, repos TransactionalRepositories, inv *invoice.Invoice, customer *partner.Customer) error {
	events := inv.GetDomainEvents()
	if customer != nil {
		events = append(events, customer.GetDomainEvents()...)
	}
	if len(events) > 0 {
		if err := repos.SaveEvents(ctx, events...); err != nil {
			return err
		}
	}
	inv.ClearDomainEvents()
	if customer != nil {
		customer.ClearDomainEvents()
	}
	return nil
}

// applyCharges merges requested charges with the invoice's current ones
func applyCharges(inv *invoice.Invoice, req UpdateInvoiceRequest) error {
	shipping := inv.ShippingCharges
	discount := inv.DiscountAmount
	roundOff := inv.RoundOff
	if req.Shipping != nil {
		shipping = *req.Shipping
	}
	if req.Discount != nil {
		discount = *req.Discount
	}
	if req.RoundOff != nil {
		roundOff = *req.RoundOff
	}
	return inv.SetCharges(shipping, discount, roundOff)
}

func applyDescriptiveFields(inv *invoice.Invoice, req UpdateInvoiceRequest) error {
	if req.DueDate != nil {
		if err := inv.SetDueDate(*req.DueDate); err != nil {
			return err
		}
	}
	if req.Notes != nil {
		inv.SetNotes(*req.Notes)
	}
	return nil
}

// stockLines maps invoice lines to the quantities the stock ledger moves
func stockLines(inv *invoice.Invoice) []inventory.LineQuantity {
	lines := make([]inventory.LineQuantity, 0, len(inv.Items))
	for idx := range inv.Items {
		lines = append(lines, inventory.LineQuantity{
			ProductID:   inv.Items[idx].ProductID,
			ProductName: inv.Items[idx].ProductName,
			Quantity:    inv.Items[idx].Quantity,
		})
	}
	return lines
}

// journalInput maps the invoice's figures to the posting engine's input
func journalInput(inv *invoice.Invoice) accounting.InvoiceJournalInput {
	return accounting.InvoiceJournalInput{
		InvoiceID:     inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		BranchID:      inv.BranchID,
		CustomerID:    inv.CustomerID,
		GrandTotal:    inv.GrandTotal,
		TotalTax:      inv.TotalTax,
		TotalCOGS:     inv.TotalCost,
		Date:          inv.InvoiceDate,
	}
}

// buildSalesRecords projects invoice lines to sales records, allocating
// the order-level discount across lines in proportion to line revenue.
// The last line takes the rounding remainder so the allocation sums back
// to the invoice discount exactly.
func buildSalesRecords(inv *invoice.Invoice, products map[uuid.UUID]*catalog.Product) ([]*report.SalesRecord, error) {
	records := make([]*report.SalesRecord, 0, len(inv.Items))
	allocated := decimal.Zero

	for idx := range inv.Items {
		item := &inv.Items[idx]

		var lineDiscount decimal.Decimal
		if inv.DiscountAmount.IsPositive() && inv.Subtotal.IsPositive() {
			if idx == len(inv.Items)-1 {
				lineDiscount = inv.DiscountAmount.Sub(allocated)
			} else {
				lineDiscount = inv.DiscountAmount.Mul(item.NetAmount()).Div(inv.Subtotal).Round(2)
				allocated = allocated.Add(lineDiscount)
			}
		}

		record, err := report.NewSalesRecord(
			inv.TenantID, inv.BranchID, inv.ID, inv.CustomerID, item.ProductID,
			inv.InvoiceNumber, inv.CustomerName, item.ProductName,
			item.Quantity, item.UnitPrice, item.NetAmount().Add(item.TaxAmount),
			item.TaxAmount, lineDiscount, item.CostAmount(), inv.InvoiceDate,
		)
		if err != nil {
			return nil, err
		}
		if product, ok := products[item.ProductID]; ok {
			record.WithProductDetails(product.SKU, product.CategoryID, product.CategoryName)
		} else {
			record.ProductSKU = item.SKU
		}
		records = append(records, record)
	}
	return records, nil
}

func auditEntry(inv *invoice.Invoice, action string, details map[string]any) *invoice.AuditLog {
	payload, err := json.Marshal(details)
	if err != nil {
		payload = []byte("{}")
	}
	return invoice.NewAuditLog(inv.TenantID, inv.ID, action, string(payload))
}
