package invoice

import (
	"context"
	"fmt"
	"time"

	"github.com/bizbook/backend/internal/domain/accounting"
	"github.com/bizbook/backend/internal/domain/catalog"
	"github.com/bizbook/backend/internal/domain/inventory"
	"github.com/bizbook/backend/internal/domain/invoice"
	"github.com/bizbook/backend/internal/domain/partner"
	"github.com/bizbook/backend/internal/domain/report"
	"github.com/bizbook/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// memStore is an in-memory TransactionScope for service tests. It has no
// rollback: tests either assert on success state or only on the returned
// error after a failure.
type memStore struct {
	invoices     map[uuid.UUID]*invoice.Invoice
	payments     []*invoice.Payment
	auditLogs    []*invoice.AuditLog
	customers    map[uuid.UUID]*partner.Customer
	products     map[uuid.UUID]*catalog.Product
	stock        map[string]*inventory.StockItem
	accounts     map[string]*accounting.Account
	entries      []*accounting.Entry
	salesRecords []*report.SalesRecord
	events       []shared.DomainEvent

	highestNumber int
	salesErr      error
}

func newMemStore() *memStore {
	return &memStore{
		invoices:  make(map[uuid.UUID]*invoice.Invoice),
		customers: make(map[uuid.UUID]*partner.Customer),
		products:  make(map[uuid.UUID]*catalog.Product),
		stock:     make(map[string]*inventory.StockItem),
		accounts:  make(map[string]*accounting.Account),
	}
}

func (s *memStore) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(&memRepos{store: s})
}

func (s *memStore) stockKey(branchID, productID uuid.UUID) string {
	return branchID.String() + "|" + productID.String()
}

func (s *memStore) stockQuantity(branchID, productID uuid.UUID) decimal.Decimal {
	if item, ok := s.stock[s.stockKey(branchID, productID)]; ok {
		return item.Quantity
	}
	return decimal.Zero
}

func (s *memStore) seedStock(tenantID, branchID, productID uuid.UUID, quantity decimal.Decimal) {
	item, _ := inventory.NewStockItem(tenantID, branchID, productID)
	item.Quantity = quantity
	s.stock[s.stockKey(branchID, productID)] = item
}

// entryNetByCode folds debit minus credit per account code over a set of
// postings, resolving account IDs through the registry.
func (s *memStore) entryNetByCode() map[string]decimal.Decimal {
	codeByID := make(map[uuid.UUID]string, len(s.accounts))
	for code, account := range s.accounts {
		codeByID[account.ID] = code
	}
	net := make(map[string]decimal.Decimal)
	for _, entry := range s.entries {
		code := codeByID[entry.AccountID]
		net[code] = net[code].Add(entry.Debit).Sub(entry.Credit)
	}
	return net
}

type memRepos struct {
	store *memStore
}

func (r *memRepos) Invoices() invoice.InvoiceRepository        { return &memInvoiceRepo{r.store} }
func (r *memRepos) Payments() invoice.PaymentRepository        { return &memPaymentRepo{r.store} }
func (r *memRepos) AuditLogs() invoice.AuditLogRepository      { return &memAuditRepo{r.store} }
func (r *memRepos) Customers() partner.CustomerRepository      { return &memCustomerRepo{r.store} }
func (r *memRepos) Products() catalog.ProductRepository        { return &memProductRepo{r.store} }
func (r *memRepos) Stock() inventory.StockItemRepository       { return &memStockRepo{r.store} }
func (r *memRepos) Accounts() accounting.AccountRepository     { return &memAccountRepo{r.store} }
func (r *memRepos) Entries() accounting.EntryRepository        { return &memEntryRepo{r.store} }
func (r *memRepos) SalesRecords() report.SalesRecordRepository { return &memSalesRecordRepo{r.store} }

func (r *memRepos) SaveEvents(_ context.Context, events ...shared.DomainEvent) error {
	r.store.events = append(r.store.events, events...)
	return nil
}

type memInvoiceRepo struct{ store *memStore }

func (r *memInvoiceRepo) FindByID(_ context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	if inv, ok := r.store.invoices[id]; ok {
		return inv, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memInvoiceRepo) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*invoice.Invoice, error) {
	inv, err := r.FindByID(ctx, id)
	if err != nil || inv.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return inv, nil
}

func (r *memInvoiceRepo) FindByNumber(_ context.Context, tenantID uuid.UUID, number string) (*invoice.Invoice, error) {
	for _, inv := range r.store.invoices {
		if inv.TenantID == tenantID && inv.InvoiceNumber == number {
			return inv, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memInvoiceRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]invoice.Invoice, error) {
	var out []invoice.Invoice
	for _, inv := range r.store.invoices {
		if inv.TenantID == tenantID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (r *memInvoiceRepo) FindByCustomer(_ context.Context, tenantID, customerID uuid.UUID, _ shared.Filter) ([]invoice.Invoice, error) {
	var out []invoice.Invoice
	for _, inv := range r.store.invoices {
		if inv.TenantID == tenantID && inv.CustomerID == customerID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (r *memInvoiceRepo) FindByStatus(_ context.Context, tenantID uuid.UUID, status invoice.InvoiceStatus, _ shared.Filter) ([]invoice.Invoice, error) {
	var out []invoice.Invoice
	for _, inv := range r.store.invoices {
		if inv.TenantID == tenantID && inv.Status == status {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (r *memInvoiceRepo) Save(_ context.Context, inv *invoice.Invoice) error {
	r.store.invoices[inv.ID] = inv
	return nil
}

func (r *memInvoiceRepo) SaveWithLock(_ context.Context, inv *invoice.Invoice) error {
	r.store.invoices[inv.ID] = inv
	return nil
}

func (r *memInvoiceRepo) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	invoices, err := r.FindAllForTenant(ctx, tenantID, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(invoices)), nil
}

func (r *memInvoiceRepo) NextInvoiceNumber(_ context.Context, _ uuid.UUID) (string, error) {
	r.store.highestNumber++
	return fmt.Sprintf("INV-%06d", r.store.highestNumber), nil
}

type memPaymentRepo struct{ store *memStore }

func (r *memPaymentRepo) Save(_ context.Context, payment *invoice.Payment) error {
	r.store.payments = append(r.store.payments, payment)
	return nil
}

func (r *memPaymentRepo) FindByID(_ context.Context, id uuid.UUID) (*invoice.Payment, error) {
	for _, p := range r.store.payments {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memPaymentRepo) FindByInvoice(_ context.Context, tenantID, invoiceID uuid.UUID) ([]invoice.Payment, error) {
	var out []invoice.Payment
	for _, p := range r.store.payments {
		if p.TenantID == tenantID && p.InvoiceID == invoiceID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memPaymentRepo) SumByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) (decimal.Decimal, error) {
	payments, err := r.FindByInvoice(ctx, tenantID, invoiceID)
	if err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for idx := range payments {
		sum = sum.Add(payments[idx].Amount)
	}
	return sum, nil
}

type memAuditRepo struct{ store *memStore }

func (r *memAuditRepo) Save(_ context.Context, entry *invoice.AuditLog) error {
	r.store.auditLogs = append(r.store.auditLogs, entry)
	return nil
}

func (r *memAuditRepo) FindByInvoice(_ context.Context, tenantID, invoiceID uuid.UUID) ([]invoice.AuditLog, error) {
	var out []invoice.AuditLog
	for _, entry := range r.store.auditLogs {
		if entry.TenantID == tenantID && entry.InvoiceID == invoiceID {
			out = append(out, *entry)
		}
	}
	return out, nil
}

type memCustomerRepo struct{ store *memStore }

func (r *memCustomerRepo) FindByID(_ context.Context, id uuid.UUID) (*partner.Customer, error) {
	if c, ok := r.store.customers[id]; ok {
		return c, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memCustomerRepo) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Customer, error) {
	c, err := r.FindByID(ctx, id)
	if err != nil || c.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return c, nil
}

func (r *memCustomerRepo) FindByCode(_ context.Context, tenantID uuid.UUID, code string) (*partner.Customer, error) {
	for _, c := range r.store.customers {
		if c.TenantID == tenantID && c.Code == code {
			return c, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memCustomerRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]partner.Customer, error) {
	var out []partner.Customer
	for _, c := range r.store.customers {
		if c.TenantID == tenantID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *memCustomerRepo) ExistsByCode(ctx context.Context, tenantID uuid.UUID, code string) (bool, error) {
	_, err := r.FindByCode(ctx, tenantID, code)
	return err == nil, nil
}

func (r *memCustomerRepo) Save(_ context.Context, customer *partner.Customer) error {
	r.store.customers[customer.ID] = customer
	return nil
}

func (r *memCustomerRepo) SaveWithLock(_ context.Context, customer *partner.Customer) error {
	r.store.customers[customer.ID] = customer
	return nil
}

type memProductRepo struct{ store *memStore }

func (r *memProductRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	if p, ok := r.store.products[id]; ok {
		return p, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memProductRepo) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	p, err := r.FindByID(ctx, id)
	if err != nil || p.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return p, nil
}

func (r *memProductRepo) FindByIDs(_ context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]catalog.Product, error) {
	var out []catalog.Product
	for _, id := range ids {
		if p, ok := r.store.products[id]; ok && p.TenantID == tenantID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memProductRepo) FindBySKU(_ context.Context, tenantID uuid.UUID, sku string) (*catalog.Product, error) {
	for _, p := range r.store.products {
		if p.TenantID == tenantID && p.SKU == sku {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memProductRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID, _ shared.Filter) ([]catalog.Product, error) {
	var out []catalog.Product
	for _, p := range r.store.products {
		if p.TenantID == tenantID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memProductRepo) Save(_ context.Context, product *catalog.Product) error {
	r.store.products[product.ID] = product
	return nil
}

type memStockRepo struct{ store *memStore }

func (r *memStockRepo) FindByID(_ context.Context, id uuid.UUID) (*inventory.StockItem, error) {
	for _, item := range r.store.stock {
		if item.ID == id {
			return item, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memStockRepo) FindByBranchAndProduct(_ context.Context, _, branchID, productID uuid.UUID) (*inventory.StockItem, error) {
	if item, ok := r.store.stock[r.store.stockKey(branchID, productID)]; ok {
		return item, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memStockRepo) FindByBranch(_ context.Context, tenantID, branchID uuid.UUID, _ shared.Filter) ([]inventory.StockItem, error) {
	var out []inventory.StockItem
	for _, item := range r.store.stock {
		if item.TenantID == tenantID && item.BranchID == branchID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *memStockRepo) GetOrCreate(_ context.Context, tenantID, branchID, productID uuid.UUID) (*inventory.StockItem, error) {
	key := r.store.stockKey(branchID, productID)
	if item, ok := r.store.stock[key]; ok {
		return item, nil
	}
	item, err := inventory.NewStockItem(tenantID, branchID, productID)
	if err != nil {
		return nil, err
	}
	r.store.stock[key] = item
	return item, nil
}

func (r *memStockRepo) DecrementIfAvailable(_ context.Context, _, branchID, productID uuid.UUID, quantity decimal.Decimal) (bool, error) {
	item, ok := r.store.stock[r.store.stockKey(branchID, productID)]
	if !ok || item.Quantity.LessThan(quantity) {
		return false, nil
	}
	item.Quantity = item.Quantity.Sub(quantity)
	return true, nil
}

func (r *memStockRepo) Increment(ctx context.Context, tenantID, branchID, productID uuid.UUID, quantity decimal.Decimal) error {
	item, err := r.GetOrCreate(ctx, tenantID, branchID, productID)
	if err != nil {
		return err
	}
	item.Quantity = item.Quantity.Add(quantity)
	return nil
}

func (r *memStockRepo) Save(_ context.Context, item *inventory.StockItem) error {
	r.store.stock[r.store.stockKey(item.BranchID, item.ProductID)] = item
	return nil
}

type memAccountRepo struct{ store *memStore }

func (r *memAccountRepo) FindByID(_ context.Context, id uuid.UUID) (*accounting.Account, error) {
	for _, account := range r.store.accounts {
		if account.ID == id {
			return account, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memAccountRepo) FindByCode(_ context.Context, tenantID uuid.UUID, code string) (*accounting.Account, error) {
	if account, ok := r.store.accounts[code]; ok && account.TenantID == tenantID {
		return account, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memAccountRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID) ([]accounting.Account, error) {
	var out []accounting.Account
	for _, account := range r.store.accounts {
		if account.TenantID == tenantID {
			out = append(out, *account)
		}
	}
	return out, nil
}

func (r *memAccountRepo) GetOrCreate(_ context.Context, tenantID uuid.UUID, code, name string, accountType accounting.AccountType) (*accounting.Account, error) {
	if account, ok := r.store.accounts[code]; ok {
		return account, nil
	}
	account, err := accounting.NewAccount(tenantID, code, name, accountType)
	if err != nil {
		return nil, err
	}
	r.store.accounts[code] = account
	return account, nil
}

func (r *memAccountRepo) Save(_ context.Context, account *accounting.Account) error {
	r.store.accounts[account.Code] = account
	return nil
}

type memEntryRepo struct{ store *memStore }

func (r *memEntryRepo) CreateBatch(_ context.Context, entries []*accounting.Entry) error {
	r.store.entries = append(r.store.entries, entries...)
	return nil
}

func (r *memEntryRepo) FindByReference(_ context.Context, tenantID uuid.UUID, refType accounting.ReferenceType, refID uuid.UUID) ([]accounting.Entry, error) {
	var out []accounting.Entry
	for _, entry := range r.store.entries {
		if entry.TenantID == tenantID && entry.ReferenceType == refType && entry.ReferenceID == refID {
			out = append(out, *entry)
		}
	}
	return out, nil
}

func (r *memEntryRepo) FindByDocument(_ context.Context, tenantID, refID uuid.UUID) ([]accounting.Entry, error) {
	var out []accounting.Entry
	for _, entry := range r.store.entries {
		if entry.TenantID == tenantID && entry.ReferenceID == refID {
			out = append(out, *entry)
		}
	}
	return out, nil
}

func (r *memEntryRepo) DeleteByReference(_ context.Context, tenantID uuid.UUID, refType accounting.ReferenceType, refID uuid.UUID) error {
	kept := r.store.entries[:0]
	for _, entry := range r.store.entries {
		if entry.TenantID == tenantID && entry.ReferenceType == refType && entry.ReferenceID == refID {
			continue
		}
		kept = append(kept, entry)
	}
	r.store.entries = kept
	return nil
}

func (r *memEntryRepo) BalancesByAccount(_ context.Context, _ uuid.UUID, _, _ time.Time) ([]accounting.AccountBalance, error) {
	return nil, nil
}

type memSalesRecordRepo struct{ store *memStore }

func (r *memSalesRecordRepo) SaveBatch(_ context.Context, records []*report.SalesRecord) error {
	if r.store.salesErr != nil {
		return r.store.salesErr
	}
	r.store.salesRecords = append(r.store.salesRecords, records...)
	return nil
}

func (r *memSalesRecordRepo) DeleteByInvoice(_ context.Context, tenantID, invoiceID uuid.UUID) error {
	kept := r.store.salesRecords[:0]
	for _, record := range r.store.salesRecords {
		if record.TenantID == tenantID && record.InvoiceID == invoiceID {
			continue
		}
		kept = append(kept, record)
	}
	r.store.salesRecords = kept
	return nil
}

func (r *memSalesRecordRepo) MarkCancelledByInvoice(_ context.Context, tenantID, invoiceID uuid.UUID) error {
	for _, record := range r.store.salesRecords {
		if record.TenantID == tenantID && record.InvoiceID == invoiceID {
			record.Status = report.SalesRecordCancelled
		}
	}
	return nil
}

func (r *memSalesRecordRepo) FindByInvoice(_ context.Context, tenantID, invoiceID uuid.UUID) ([]report.SalesRecord, error) {
	var out []report.SalesRecord
	for _, record := range r.store.salesRecords {
		if record.TenantID == tenantID && record.InvoiceID == invoiceID {
			out = append(out, *record)
		}
	}
	return out, nil
}
