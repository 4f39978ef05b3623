package invoice

import (
	"github.com/bizbook/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeInvoice = "Invoice"

// Event type constants
const (
	EventTypeInvoiceCreated   = "InvoiceCreated"
	EventTypeInvoiceIssued    = "InvoiceIssued"
	EventTypeInvoiceUpdated   = "InvoiceUpdated"
	EventTypeInvoiceCancelled = "InvoiceCancelled"
	EventTypePaymentAdded     = "PaymentAdded"
	EventTypeDraftConverted   = "DraftConverted"
)

// ItemInfo carries line information on invoice events
type ItemInfo struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

func itemInfos(inv *Invoice) []ItemInfo {
	infos := make([]ItemInfo, 0, len(inv.Items))
	for idx := range inv.Items {
		infos = append(infos, ItemInfo{
			ProductID:   inv.Items[idx].ProductID,
			ProductName: inv.Items[idx].ProductName,
			Quantity:    inv.Items[idx].Quantity,
			UnitPrice:   inv.Items[idx].UnitPrice,
			LineTotal:   inv.Items[idx].LineTotal,
		})
	}
	return infos
}

// InvoiceCreatedEvent is raised when an invoice enters the system, draft
// or otherwise
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceID    uuid.UUID     `json:"invoice_id"`
	BranchID     uuid.UUID     `json:"branch_id"`
	CustomerID   uuid.UUID     `json:"customer_id"`
	CustomerName string        `json:"customer_name"`
	Status       InvoiceStatus `json:"status"`
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(inv *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCreated, AggregateTypeInvoice, inv.ID, inv.TenantID),
		InvoiceID:       inv.ID,
		BranchID:        inv.BranchID,
		CustomerID:      inv.CustomerID,
		CustomerName:    inv.CustomerName,
		Status:          inv.Status,
	}
}

// InvoiceIssuedEvent is raised when an invoice becomes issued and its
// financial effects (stock, journal, receivable) take hold
type InvoiceIssuedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	BranchID      uuid.UUID       `json:"branch_id"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	TotalTax      decimal.Decimal `json:"total_tax"`
	Items         []ItemInfo      `json:"items"`
}

// NewInvoiceIssuedEvent creates a new InvoiceIssuedEvent
func NewInvoiceIssuedEvent(inv *Invoice) *InvoiceIssuedEvent {
	return &InvoiceIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceIssued, AggregateTypeInvoice, inv.ID, inv.TenantID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		BranchID:        inv.BranchID,
		CustomerID:      inv.CustomerID,
		GrandTotal:      inv.GrandTotal,
		TotalTax:        inv.TotalTax,
		Items:           itemInfos(inv),
	}
}

// InvoiceUpdatedEvent is raised after a financial update replaced the
// invoice's lines, stock movements and postings
type InvoiceUpdatedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	BalanceAmount decimal.Decimal `json:"balance_amount"`
	Items         []ItemInfo      `json:"items"`
}

// NewInvoiceUpdatedEvent creates a new InvoiceUpdatedEvent
func NewInvoiceUpdatedEvent(inv *Invoice) *InvoiceUpdatedEvent {
	return &InvoiceUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceUpdated, AggregateTypeInvoice, inv.ID, inv.TenantID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		GrandTotal:      inv.GrandTotal,
		BalanceAmount:   inv.BalanceAmount,
		Items:           itemInfos(inv),
	}
}

// InvoiceCancelledEvent is raised when an invoice reaches the terminal
// cancelled state. WasIssued tells subscribers whether financial effects
// existed and were reversed.
type InvoiceCancelledEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
	Reason        string    `json:"reason"`
	WasIssued     bool      `json:"was_issued"`
	Restocked     bool      `json:"restocked"`
}

// NewInvoiceCancelledEvent creates a new InvoiceCancelledEvent
func NewInvoiceCancelledEvent(inv *Invoice, wasIssued, restocked bool) *InvoiceCancelledEvent {
	return &InvoiceCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCancelled, AggregateTypeInvoice, inv.ID, inv.TenantID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		Reason:          inv.CancelReason,
		WasIssued:       wasIssued,
		Restocked:       restocked,
	}
}

// PaymentAddedEvent is raised when a payment is applied to an invoice
type PaymentAddedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	Amount        decimal.Decimal `json:"amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	BalanceAmount decimal.Decimal `json:"balance_amount"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
}

// NewPaymentAddedEvent creates a new PaymentAddedEvent
func NewPaymentAddedEvent(inv *Invoice, amount decimal.Decimal) *PaymentAddedEvent {
	return &PaymentAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentAdded, AggregateTypeInvoice, inv.ID, inv.TenantID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		Amount:          amount,
		PaidAmount:      inv.PaidAmount,
		BalanceAmount:   inv.BalanceAmount,
		PaymentStatus:   inv.PaymentStatus,
	}
}

// DraftConvertedEvent is raised when a draft is issued under a freshly
// assigned invoice number
type DraftConvertedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
}

// NewDraftConvertedEvent creates a new DraftConvertedEvent
func NewDraftConvertedEvent(inv *Invoice) *DraftConvertedEvent {
	return &DraftConvertedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDraftConverted, AggregateTypeInvoice, inv.ID, inv.TenantID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
	}
}
