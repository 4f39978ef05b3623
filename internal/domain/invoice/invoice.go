package invoice

import (
	"fmt"
	"time"

	"github.com/bizbook/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the lifecycle state of an invoice
type InvoiceStatus string

const (
	StatusDraft     InvoiceStatus = "draft"
	StatusIssued    InvoiceStatus = "issued"
	StatusPaid      InvoiceStatus = "paid"
	StatusCancelled InvoiceStatus = "cancelled"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusIssued, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// Cancelled is terminal and reachable from every non-terminal state.
func (s InvoiceStatus) CanTransitionTo(target InvoiceStatus) bool {
	switch s {
	case StatusDraft:
		return target == StatusIssued || target == StatusCancelled
	case StatusIssued:
		return target == StatusPaid || target == StatusCancelled
	case StatusPaid:
		return target == StatusCancelled
	case StatusCancelled:
		return false
	}
	return false
}

// PaymentStatus tracks how much of the invoice has been settled
type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusPaid    PaymentStatus = "paid"
)

// PaymentMethod values accepted on payments
const (
	MethodCash = "cash"
	MethodBank = "bank"
	MethodUPI  = "upi"
	MethodCard = "card"
)

// Item is a line on an invoice. UnitPrice, TaxRate and CostPrice are
// snapshots taken from the product at the time the line was written;
// later catalog changes never alter an existing invoice.
type Item struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	SKU         string          `gorm:"type:varchar(100)"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	TaxRate     decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	TaxAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	CostPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	LineTotal   decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the table name for GORM
func (Item) TableName() string {
	return "invoice_items"
}

// NewItem creates an invoice line with price, tax and cost snapshots
func NewItem(invoiceID, productID uuid.UUID, productName, sku string, quantity, unitPrice, taxRate, costPrice decimal.Decimal) (*Item, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if taxRate.IsNegative() || taxRate.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError("INVALID_TAX_RATE", "Tax rate must be between 0 and 100")
	}
	if costPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Cost price cannot be negative")
	}

	now := time.Now()
	item := &Item{
		ID:          uuid.New(),
		InvoiceID:   invoiceID,
		ProductID:   productID,
		ProductName: productName,
		SKU:         sku,
		Quantity:    quantity,
		UnitPrice:   unitPrice.Round(2),
		TaxRate:     taxRate,
		CostPrice:   costPrice.Round(2),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	item.recalculate()
	return item, nil
}

func (i *Item) recalculate() {
	net := i.Quantity.Mul(i.UnitPrice)
	i.TaxAmount = net.Mul(i.TaxRate).Div(decimal.NewFromInt(100)).Round(2)
	i.LineTotal = net.Round(2)
}

// NetAmount returns quantity × unit price, before tax
func (i *Item) NetAmount() decimal.Decimal {
	return i.LineTotal
}

// CostAmount returns quantity × cost price snapshot
func (i *Item) CostAmount() decimal.Decimal {
	return i.Quantity.Mul(i.CostPrice).Round(2)
}

// Invoice is the aggregate root of the billing context. It owns its lines,
// its running totals and the draft/issued/paid/cancelled state machine.
//
// The totals obey two invariants at every point in the lifecycle:
//
//	GrandTotal  == Subtotal + ShippingCharges + TotalTax − DiscountAmount + RoundOff
//	BalanceAmount == GrandTotal − PaidAmount, never negative
type Invoice struct {
	shared.TenantAggregateRoot
	BranchID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceNumber   string          `gorm:"type:varchar(50);index:idx_invoice_tenant_number"`
	CustomerID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	CustomerName    string          `gorm:"type:varchar(200);not null"`
	InvoiceDate     time.Time       `gorm:"not null"`
	DueDate         *time.Time      ``
	Items           []Item          `gorm:"foreignKey:InvoiceID;references:ID"`
	Subtotal        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	ShippingCharges decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalTax        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	DiscountAmount  decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	RoundOff        decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	GrandTotal      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	PaidAmount      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	BalanceAmount   decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalCost       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Status          InvoiceStatus   `gorm:"type:varchar(20);not null;default:'draft';index"`
	PaymentStatus   PaymentStatus   `gorm:"type:varchar(20);not null;default:'unpaid'"`
	Notes           string          `gorm:"type:text"`
	CancelReason    string          `gorm:"type:varchar(500)"`
	IssuedAt        *time.Time      ``
	CancelledAt     *time.Time      ``
}

// TableName returns the table name for GORM
func (Invoice) TableName() string {
	return "invoices"
}

// NewInvoice creates an invoice in draft state. Issue moves it to issued
// once it has lines and a number.
func NewInvoice(tenantID, branchID, customerID uuid.UUID, customerName string, invoiceDate time.Time) (*Invoice, error) {
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if customerName == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}
	if invoiceDate.IsZero() {
		invoiceDate = time.Now()
	}

	inv := &Invoice{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		BranchID:            branchID,
		CustomerID:          customerID,
		CustomerName:        customerName,
		InvoiceDate:         invoiceDate,
		Items:               make([]Item, 0),
		Subtotal:            decimal.Zero,
		ShippingCharges:     decimal.Zero,
		TotalTax:            decimal.Zero,
		DiscountAmount:      decimal.Zero,
		RoundOff:            decimal.Zero,
		GrandTotal:          decimal.Zero,
		PaidAmount:          decimal.Zero,
		BalanceAmount:       decimal.Zero,
		TotalCost:           decimal.Zero,
		Status:              StatusDraft,
		PaymentStatus:       PaymentStatusUnpaid,
	}

	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))
	return inv, nil
}

// AddItem adds a line to the invoice. Allowed while the invoice has not
// been cancelled; the financial-update path uses it on issued invoices
// after clearing the old lines.
func (inv *Invoice) AddItem(productID uuid.UUID, productName, sku string, quantity, unitPrice, taxRate, costPrice decimal.Decimal) (*Item, error) {
	if inv.Status == StatusCancelled {
		return nil, &shared.InvalidTransitionError{From: inv.Status.String(), Action: "add item"}
	}
	for _, item := range inv.Items {
		if item.ProductID == productID {
			return nil, shared.NewDomainError("DUPLICATE_PRODUCT", "Product already on invoice, update its quantity instead")
		}
	}

	item, err := NewItem(inv.ID, productID, productName, sku, quantity, unitPrice, taxRate, costPrice)
	if err != nil {
		return nil, err
	}

	inv.Items = append(inv.Items, *item)
	inv.recalculateTotals()
	inv.touch()
	return item, nil
}

// ReplaceItems swaps the full line set, keeping totals consistent. The
// update path uses this after restoring old stock and validating the new.
func (inv *Invoice) ReplaceItems(items []Item) error {
	if inv.Status == StatusCancelled {
		return &shared.InvalidTransitionError{From: inv.Status.String(), Action: "replace items"}
	}
	if len(items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Invoice must have at least one item")
	}
	seen := make(map[uuid.UUID]bool, len(items))
	for idx := range items {
		if seen[items[idx].ProductID] {
			return shared.NewDomainError("DUPLICATE_PRODUCT", "Duplicate product on invoice")
		}
		seen[items[idx].ProductID] = true
		items[idx].InvoiceID = inv.ID
	}

	inv.Items = items
	inv.recalculateTotals()
	inv.touch()
	return nil
}

// UpdateItemQuantity changes one line's quantity and recomputes its
// snapshot-derived amounts
func (inv *Invoice) UpdateItemQuantity(itemID uuid.UUID, quantity decimal.Decimal) error {
	if inv.Status == StatusCancelled {
		return &shared.InvalidTransitionError{From: inv.Status.String(), Action: "update item"}
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	for idx := range inv.Items {
		if inv.Items[idx].ID == itemID {
			inv.Items[idx].Quantity = quantity
			inv.Items[idx].recalculate()
			inv.Items[idx].UpdatedAt = time.Now()
			inv.recalculateTotals()
			inv.touch()
			return nil
		}
	}
	return shared.NewDomainError("ITEM_NOT_FOUND", "Invoice item not found")
}

// RemoveItem removes a line from the invoice
func (inv *Invoice) RemoveItem(itemID uuid.UUID) error {
	if inv.Status == StatusCancelled {
		return &shared.InvalidTransitionError{From: inv.Status.String(), Action: "remove item"}
	}
	for idx, item := range inv.Items {
		if item.ID == itemID {
			inv.Items = append(inv.Items[:idx], inv.Items[idx+1:]...)
			inv.recalculateTotals()
			inv.touch()
			return nil
		}
	}
	return shared.NewDomainError("ITEM_NOT_FOUND", "Invoice item not found")
}

// SetCharges sets shipping, order-level discount and round-off, then
// recomputes the grand total
func (inv *Invoice) SetCharges(shipping, discount, roundOff decimal.Decimal) error {
	if inv.Status == StatusCancelled {
		return &shared.InvalidTransitionError{From: inv.Status.String(), Action: "set charges"}
	}
	if shipping.IsNegative() {
		return shared.NewDomainError("INVALID_SHIPPING", "Shipping charges cannot be negative")
	}
	if discount.IsNegative() {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot be negative")
	}
	if roundOff.Abs().GreaterThan(decimal.NewFromInt(1)) {
		return shared.NewDomainError("INVALID_ROUND_OFF", "Round-off cannot exceed one unit of currency")
	}

	prospective := inv.Subtotal.
		Add(shipping.Round(2)).
		Add(inv.TotalTax).
		Sub(discount.Round(2)).
		Add(roundOff.Round(2))
	if prospective.IsNegative() {
		return shared.NewDomainError("INVALID_DISCOUNT", "Discount cannot exceed the invoice total")
	}

	inv.ShippingCharges = shipping.Round(2)
	inv.DiscountAmount = discount.Round(2)
	inv.RoundOff = roundOff.Round(2)
	inv.recalculateTotals()
	inv.touch()
	return nil
}

// SetDueDate sets the payment due date
func (inv *Invoice) SetDueDate(due time.Time) error {
	if due.Before(inv.InvoiceDate) {
		return shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot precede the invoice date")
	}
	inv.DueDate = &due
	inv.touch()
	return nil
}

// SetNotes sets free-form notes
func (inv *Invoice) SetNotes(notes string) {
	inv.Notes = notes
	inv.touch()
}

// Issue transitions the invoice from draft to issued under the given
// invoice number. An issued invoice affects stock, the ledger and the
// customer's receivable; those effects belong to the application service.
func (inv *Invoice) Issue(invoiceNumber string) error {
	if !inv.Status.CanTransitionTo(StatusIssued) {
		return &shared.InvalidTransitionError{From: inv.Status.String(), Action: "issue"}
	}
	if invoiceNumber == "" {
		return shared.NewDomainError("INVALID_NUMBER", "Invoice number cannot be empty")
	}
	if len(inv.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot issue an invoice without items")
	}
	if inv.GrandTotal.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Invoice grand total must be positive")
	}

	now := time.Now()
	inv.InvoiceNumber = invoiceNumber
	inv.Status = StatusIssued
	inv.IssuedAt = &now
	inv.touch()

	inv.AddDomainEvent(NewInvoiceIssuedEvent(inv))
	return nil
}

// ApplyPayment records a settled amount against the invoice. The amount
// must be positive and cumulative payments can never exceed the grand
// total. Crossing to zero balance moves the invoice to paid.
func (inv *Invoice) ApplyPayment(amount decimal.Decimal) error {
	if inv.Status != StatusIssued {
		return &shared.InvalidTransitionError{From: inv.Status.String(), Action: "add payment"}
	}
	amount = amount.Round(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if inv.PaidAmount.Add(amount).GreaterThan(inv.GrandTotal) {
		return shared.NewDomainError("OVERPAYMENT", fmt.Sprintf("Payment of %s exceeds the outstanding balance of %s", amount, inv.BalanceAmount))
	}

	inv.PaidAmount = inv.PaidAmount.Add(amount)
	inv.refreshPaymentState()
	inv.touch()

	inv.AddDomainEvent(NewPaymentAddedEvent(inv, amount))
	return nil
}

// Cancel moves the invoice to the terminal cancelled state. Financial and
// stock reversals are orchestrated by the application service.
func (inv *Invoice) Cancel(reason string, restocked bool) error {
	if !inv.Status.CanTransitionTo(StatusCancelled) {
		return &shared.InvalidTransitionError{From: inv.Status.String(), Action: "cancel"}
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	wasIssued := inv.Status != StatusDraft
	now := time.Now()
	inv.Status = StatusCancelled
	inv.CancelReason = reason
	inv.CancelledAt = &now
	inv.touch()

	inv.AddDomainEvent(NewInvoiceCancelledEvent(inv, wasIssued, restocked))
	return nil
}

// recalculateTotals recomputes every derived figure from the lines and
// order-level charges
func (inv *Invoice) recalculateTotals() {
	subtotal := decimal.Zero
	tax := decimal.Zero
	cost := decimal.Zero
	for idx := range inv.Items {
		subtotal = subtotal.Add(inv.Items[idx].NetAmount())
		tax = tax.Add(inv.Items[idx].TaxAmount)
		cost = cost.Add(inv.Items[idx].CostAmount())
	}

	inv.Subtotal = subtotal.Round(2)
	inv.TotalTax = tax.Round(2)
	inv.TotalCost = cost.Round(2)
	inv.GrandTotal = inv.Subtotal.
		Add(inv.ShippingCharges).
		Add(inv.TotalTax).
		Sub(inv.DiscountAmount).
		Add(inv.RoundOff).
		Round(2)
	inv.refreshPaymentState()
}

// refreshPaymentState derives BalanceAmount, PaymentStatus and the
// issued→paid transition from PaidAmount and GrandTotal
func (inv *Invoice) refreshPaymentState() {
	inv.BalanceAmount = inv.GrandTotal.Sub(inv.PaidAmount).Round(2)
	if inv.BalanceAmount.IsNegative() {
		inv.BalanceAmount = decimal.Zero
	}

	switch {
	case inv.PaidAmount.IsZero():
		inv.PaymentStatus = PaymentStatusUnpaid
	case inv.BalanceAmount.IsPositive():
		inv.PaymentStatus = PaymentStatusPartial
	default:
		inv.PaymentStatus = PaymentStatusPaid
	}

	if inv.Status == StatusIssued && inv.PaymentStatus == PaymentStatusPaid {
		inv.Status = StatusPaid
	}
}

func (inv *Invoice) touch() {
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
}

// IsDraft returns true if the invoice has not been issued
func (inv *Invoice) IsDraft() bool {
	return inv.Status == StatusDraft
}

// IsCancelled returns true if the invoice is cancelled
func (inv *Invoice) IsCancelled() bool {
	return inv.Status == StatusCancelled
}

// IsTerminal returns true if no further transitions are possible
func (inv *Invoice) IsTerminal() bool {
	return inv.Status == StatusCancelled
}

// IsFullyPaid returns true once the balance reaches zero
func (inv *Invoice) IsFullyPaid() bool {
	return inv.PaymentStatus == PaymentStatusPaid
}

// ItemCount returns the number of lines on the invoice
func (inv *Invoice) ItemCount() int {
	return len(inv.Items)
}

// GetItemByProduct returns the line for a product, or nil
func (inv *Invoice) GetItemByProduct(productID uuid.UUID) *Item {
	for idx := range inv.Items {
		if inv.Items[idx].ProductID == productID {
			return &inv.Items[idx]
		}
	}
	return nil
}
