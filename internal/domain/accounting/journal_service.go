package accounting

import (
	"context"
	"fmt"
	"time"

	"github.com/bizbook/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceJournalInput carries the financial figures of an invoice into the
// posting engine. The caller resolves them from the invoice aggregate; the
// engine never reaches back into the invoice context.
type InvoiceJournalInput struct {
	InvoiceID     uuid.UUID
	InvoiceNumber string
	BranchID      uuid.UUID
	CustomerID    uuid.UUID
	GrandTotal    decimal.Decimal
	TotalTax      decimal.Decimal
	TotalCOGS     decimal.Decimal // Σ quantity × cost-price snapshot across items
	Date          time.Time
}

// PaymentJournalInput carries a settled payment into the posting engine
type PaymentJournalInput struct {
	PaymentID     uuid.UUID
	InvoiceNumber string
	BranchID      uuid.UUID
	CustomerID    uuid.UUID
	Amount        decimal.Decimal
	Method        string // cash | bank | upi | card
	Date          time.Time
}

// JournalService is the posting engine. Given a completed invoice it
// produces a balanced set of debit/credit postings (revenue recognition,
// tax liability, COGS/inventory, accounts receivable) and, on cancellation,
// their exact mirror image under the credit-note reference type.
//
// It is constructed over transaction-scoped repositories so that lazy
// account creation and the posting batch commit atomically with the rest of
// the lifecycle transition.
type JournalService struct {
	accounts AccountRepository
	entries  EntryRepository
}

// NewJournalService creates a new JournalService
func NewJournalService(accounts AccountRepository, entries EntryRepository) *JournalService {
	return &JournalService{accounts: accounts, entries: entries}
}

// PostInvoiceJournal posts the revenue journal for a non-draft invoice:
//
//	debit  Accounts Receivable  grandTotal
//	credit Sales                grandTotal − totalTax
//	credit Tax Payable          totalTax        (only if tax > 0)
//	debit  Cost of Goods Sold   totalCOGS       (only if COGS > 0)
//	credit Inventory Asset      totalCOGS       (only if COGS > 0)
func (s *JournalService) PostInvoiceJournal(ctx context.Context, tenantID uuid.UUID, in InvoiceJournalInput) ([]*Entry, error) {
	grandTotal := in.GrandTotal.Round(2)
	tax := in.TotalTax.Round(2)
	cogs := in.TotalCOGS.Round(2)

	if grandTotal.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Invoice grand total must be positive to post")
	}
	if tax.IsNegative() || cogs.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Tax and COGS cannot be negative")
	}

	receivable, err := s.accounts.GetOrCreate(ctx, tenantID, AccountCodeReceivable, "Accounts Receivable", AccountTypeAsset)
	if err != nil {
		return nil, err
	}
	sales, err := s.accounts.GetOrCreate(ctx, tenantID, AccountCodeSales, "Sales", AccountTypeIncome)
	if err != nil {
		return nil, err
	}

	desc := fmt.Sprintf("Invoice %s", in.InvoiceNumber)
	entries := make([]*Entry, 0, 5)

	arDebit, err := NewDebit(tenantID, in.BranchID, receivable.ID, grandTotal, ReferenceTypeInvoice, in.InvoiceID, desc)
	if err != nil {
		return nil, err
	}
	entries = append(entries, arDebit.WithPartner(in.CustomerID).WithDate(in.Date))

	salesCredit, err := NewCredit(tenantID, in.BranchID, sales.ID, grandTotal.Sub(tax), ReferenceTypeInvoice, in.InvoiceID, desc)
	if err != nil {
		return nil, err
	}
	entries = append(entries, salesCredit.WithDate(in.Date))

	if tax.IsPositive() {
		taxPayable, err := s.accounts.GetOrCreate(ctx, tenantID, AccountCodeTaxPayable, "Tax Payable", AccountTypeLiability)
		if err != nil {
			return nil, err
		}
		taxCredit, err := NewCredit(tenantID, in.BranchID, taxPayable.ID, tax, ReferenceTypeInvoice, in.InvoiceID, desc+" tax")
		if err != nil {
			return nil, err
		}
		entries = append(entries, taxCredit.WithDate(in.Date))
	}

	if cogs.IsPositive() {
		cogsEntries, err := s.costEntries(ctx, tenantID, in, cogs, false)
		if err != nil {
			return nil, err
		}
		entries = append(entries, cogsEntries...)
	}

	if err := s.appendBalanced(ctx, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// ReverseInvoiceJournal posts the exact mirror image of the invoice journal
// under the credit-note reference type, fully undoing the financial effect
// without touching the original postings.
func (s *JournalService) ReverseInvoiceJournal(ctx context.Context, tenantID uuid.UUID, in InvoiceJournalInput) ([]*Entry, error) {
	grandTotal := in.GrandTotal.Round(2)
	tax := in.TotalTax.Round(2)
	cogs := in.TotalCOGS.Round(2)

	if grandTotal.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Invoice grand total must be positive to reverse")
	}

	receivable, err := s.accounts.GetOrCreate(ctx, tenantID, AccountCodeReceivable, "Accounts Receivable", AccountTypeAsset)
	if err != nil {
		return nil, err
	}
	sales, err := s.accounts.GetOrCreate(ctx, tenantID, AccountCodeSales, "Sales", AccountTypeIncome)
	if err != nil {
		return nil, err
	}

	desc := fmt.Sprintf("Credit note for invoice %s", in.InvoiceNumber)
	entries := make([]*Entry, 0, 5)

	salesDebit, err := NewDebit(tenantID, in.BranchID, sales.ID, grandTotal.Sub(tax), ReferenceTypeCreditNote, in.InvoiceID, desc)
	if err != nil {
		return nil, err
	}
	entries = append(entries, salesDebit.WithDate(in.Date))

	if tax.IsPositive() {
		taxPayable, err := s.accounts.GetOrCreate(ctx, tenantID, AccountCodeTaxPayable, "Tax Payable", AccountTypeLiability)
		if err != nil {
			return nil, err
		}
		taxDebit, err := NewDebit(tenantID, in.BranchID, taxPayable.ID, tax, ReferenceTypeCreditNote, in.InvoiceID, desc+" tax")
		if err != nil {
			return nil, err
		}
		entries = append(entries, taxDebit.WithDate(in.Date))
	}

	arCredit, err := NewCredit(tenantID, in.BranchID, receivable.ID, grandTotal, ReferenceTypeCreditNote, in.InvoiceID, desc)
	if err != nil {
		return nil, err
	}
	entries = append(entries, arCredit.WithPartner(in.CustomerID).WithDate(in.Date))

	if cogs.IsPositive() {
		cogsEntries, err := s.costEntries(ctx, tenantID, in, cogs, true)
		if err != nil {
			return nil, err
		}
		entries = append(entries, cogsEntries...)
	}

	if err := s.appendBalanced(ctx, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// PostPaymentJournal posts the settlement pair for one payment: the asset
// account chosen by payment method is debited and Accounts Receivable is
// credited for the payment amount.
func (s *JournalService) PostPaymentJournal(ctx context.Context, tenantID uuid.UUID, in PaymentJournalInput) ([]*Entry, error) {
	amount := in.Amount.Round(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}

	code, name, err := SettlementAccountForMethod(in.Method)
	if err != nil {
		return nil, err
	}

	settlement, err := s.accounts.GetOrCreate(ctx, tenantID, code, name, AccountTypeAsset)
	if err != nil {
		return nil, err
	}
	receivable, err := s.accounts.GetOrCreate(ctx, tenantID, AccountCodeReceivable, "Accounts Receivable", AccountTypeAsset)
	if err != nil {
		return nil, err
	}

	desc := fmt.Sprintf("Payment for invoice %s", in.InvoiceNumber)

	debit, err := NewDebit(tenantID, in.BranchID, settlement.ID, amount, ReferenceTypePayment, in.PaymentID, desc)
	if err != nil {
		return nil, err
	}
	credit, err := NewCredit(tenantID, in.BranchID, receivable.ID, amount, ReferenceTypePayment, in.PaymentID, desc)
	if err != nil {
		return nil, err
	}

	entries := []*Entry{debit.WithDate(in.Date), credit.WithPartner(in.CustomerID).WithDate(in.Date)}
	if err := s.appendBalanced(ctx, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// DeleteInvoiceJournal removes the invoice-reference postings of one
// invoice. Only the financial-update path calls this, inside the same
// transaction that re-posts the journal for the new totals.
func (s *JournalService) DeleteInvoiceJournal(ctx context.Context, tenantID, invoiceID uuid.UUID) error {
	return s.entries.DeleteByReference(ctx, tenantID, ReferenceTypeInvoice, invoiceID)
}

// costEntries builds the COGS/Inventory pair, or its mirror for reversals
func (s *JournalService) costEntries(ctx context.Context, tenantID uuid.UUID, in InvoiceJournalInput, cogs decimal.Decimal, reversal bool) ([]*Entry, error) {
	inventory, err := s.accounts.GetOrCreate(ctx, tenantID, AccountCodeInventory, "Inventory Asset", AccountTypeAsset)
	if err != nil {
		return nil, err
	}
	cogsAccount, err := s.accounts.GetOrCreate(ctx, tenantID, AccountCodeCOGS, "Cost of Goods Sold", AccountTypeExpense)
	if err != nil {
		return nil, err
	}

	if reversal {
		desc := fmt.Sprintf("Cost reversal for invoice %s", in.InvoiceNumber)
		invDebit, err := NewDebit(tenantID, in.BranchID, inventory.ID, cogs, ReferenceTypeCreditNote, in.InvoiceID, desc)
		if err != nil {
			return nil, err
		}
		cogsCredit, err := NewCredit(tenantID, in.BranchID, cogsAccount.ID, cogs, ReferenceTypeCreditNote, in.InvoiceID, desc)
		if err != nil {
			return nil, err
		}
		return []*Entry{invDebit.WithDate(in.Date), cogsCredit.WithDate(in.Date)}, nil
	}

	desc := fmt.Sprintf("Cost of sale for invoice %s", in.InvoiceNumber)
	cogsDebit, err := NewDebit(tenantID, in.BranchID, cogsAccount.ID, cogs, ReferenceTypeInvoice, in.InvoiceID, desc)
	if err != nil {
		return nil, err
	}
	invCredit, err := NewCredit(tenantID, in.BranchID, inventory.ID, cogs, ReferenceTypeInvoice, in.InvoiceID, desc)
	if err != nil {
		return nil, err
	}
	return []*Entry{cogsDebit.WithDate(in.Date), invCredit.WithDate(in.Date)}, nil
}

// appendBalanced verifies the posting set balances, then appends it
func (s *JournalService) appendBalanced(ctx context.Context, entries []*Entry) error {
	debits, credits := SumEntries(entries)
	if !debits.Equal(credits) {
		return shared.ErrUnbalancedJournal
	}
	return s.entries.CreateBatch(ctx, entries)
}
