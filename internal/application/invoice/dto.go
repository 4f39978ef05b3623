package invoice

import (
	"time"

	"github.com/bizbook/backend/internal/domain/invoice"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateInvoiceRequest creates an invoice, as a draft or directly issued.
// Prices, tax rates and costs are snapshotted from the catalog at this
// moment; UnitPrice on a line overrides the catalog selling price.
type CreateInvoiceRequest struct {
	BranchID      uuid.UUID            `json:"branch_id" validate:"required"`
	CustomerID    uuid.UUID            `json:"customer_id" validate:"required"`
	InvoiceDate   time.Time            `json:"invoice_date"`
	DueDate       *time.Time           `json:"due_date"`
	Items         []InvoiceItemRequest `json:"items" validate:"required,min=1,dive"`
	Shipping      decimal.Decimal      `json:"shipping"`
	Discount      decimal.Decimal      `json:"discount"`
	RoundOff      decimal.Decimal      `json:"round_off"`
	PaidAmount    decimal.Decimal      `json:"paid_amount"`
	PaymentMethod string               `json:"payment_method" validate:"omitempty,oneof=cash bank upi card"`
	Notes         string               `json:"notes" validate:"max=2000"`
	AsDraft       bool                 `json:"as_draft"`
}

// InvoiceItemRequest is one requested line
type InvoiceItemRequest struct {
	ProductID uuid.UUID        `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal  `json:"quantity" validate:"required"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

// UpdateInvoiceRequest patches an invoice. Nil fields are left untouched.
// A non-nil Items triggers the financial-update path on issued invoices:
// old stock restored, new stock validated and reduced, postings replaced.
type UpdateInvoiceRequest struct {
	Items    []InvoiceItemRequest `json:"items" validate:"omitempty,min=1,dive"`
	Shipping *decimal.Decimal     `json:"shipping"`
	Discount *decimal.Decimal     `json:"discount"`
	RoundOff *decimal.Decimal     `json:"round_off"`
	DueDate  *time.Time           `json:"due_date"`
	Notes    *string              `json:"notes" validate:"omitempty,max=2000"`
}

// HasFinancialChanges reports whether the request touches lines or
// order-level charges rather than only descriptive fields
func (r UpdateInvoiceRequest) HasFinancialChanges() bool {
	return r.Items != nil || r.Shipping != nil || r.Discount != nil || r.RoundOff != nil
}

// CancelInvoiceRequest cancels an invoice. Restock defaults to true when
// nil; pass false for goods that never left or will not return.
type CancelInvoiceRequest struct {
	Reason  string `json:"reason" validate:"required,min=1,max=500"`
	Restock *bool  `json:"restock"`
}

// ShouldRestock resolves the restock flag with its default
func (r CancelInvoiceRequest) ShouldRestock() bool {
	return r.Restock == nil || *r.Restock
}

// AddPaymentRequest applies a settlement to an issued invoice
type AddPaymentRequest struct {
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	Method      string          `json:"method" validate:"required,oneof=cash bank upi card"`
	PaymentDate time.Time       `json:"payment_date"`
	Reference   string          `json:"reference" validate:"max=100"`
}

// InvoiceItemResponse is one line on an invoice response
type InvoiceItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// InvoiceResponse is the full invoice view
type InvoiceResponse struct {
	ID              uuid.UUID             `json:"id"`
	InvoiceNumber   string                `json:"invoice_number,omitempty"`
	BranchID        uuid.UUID             `json:"branch_id"`
	CustomerID      uuid.UUID             `json:"customer_id"`
	CustomerName    string                `json:"customer_name"`
	InvoiceDate     time.Time             `json:"invoice_date"`
	DueDate         *time.Time            `json:"due_date,omitempty"`
	Items           []InvoiceItemResponse `json:"items"`
	Subtotal        decimal.Decimal       `json:"subtotal"`
	ShippingCharges decimal.Decimal       `json:"shipping_charges"`
	TotalTax        decimal.Decimal       `json:"total_tax"`
	DiscountAmount  decimal.Decimal       `json:"discount_amount"`
	RoundOff        decimal.Decimal       `json:"round_off"`
	GrandTotal      decimal.Decimal       `json:"grand_total"`
	PaidAmount      decimal.Decimal       `json:"paid_amount"`
	BalanceAmount   decimal.Decimal       `json:"balance_amount"`
	Status          string                `json:"status"`
	PaymentStatus   string                `json:"payment_status"`
	Notes           string                `json:"notes,omitempty"`
	CancelReason    string                `json:"cancel_reason,omitempty"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

// PaymentResponse is one settlement record
type PaymentResponse struct {
	ID          uuid.UUID       `json:"id"`
	InvoiceID   uuid.UUID       `json:"invoice_id"`
	Amount      decimal.Decimal `json:"amount"`
	Method      string          `json:"method"`
	PaymentDate time.Time       `json:"payment_date"`
	Reference   string          `json:"reference,omitempty"`
}

// ToInvoiceResponse maps the aggregate to its response view
func ToInvoiceResponse(inv *invoice.Invoice) InvoiceResponse {
	items := make([]InvoiceItemResponse, 0, len(inv.Items))
	for idx := range inv.Items {
		item := &inv.Items[idx]
		items = append(items, InvoiceItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			SKU:         item.SKU,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TaxRate:     item.TaxRate,
			TaxAmount:   item.TaxAmount,
			LineTotal:   item.LineTotal,
		})
	}

	return InvoiceResponse{
		ID:              inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		BranchID:        inv.BranchID,
		CustomerID:      inv.CustomerID,
		CustomerName:    inv.CustomerName,
		InvoiceDate:     inv.InvoiceDate,
		DueDate:         inv.DueDate,
		Items:           items,
		Subtotal:        inv.Subtotal,
		ShippingCharges: inv.ShippingCharges,
		TotalTax:        inv.TotalTax,
		DiscountAmount:  inv.DiscountAmount,
		RoundOff:        inv.RoundOff,
		GrandTotal:      inv.GrandTotal,
		PaidAmount:      inv.PaidAmount,
		BalanceAmount:   inv.BalanceAmount,
		Status:          inv.Status.String(),
		PaymentStatus:   string(inv.PaymentStatus),
		Notes:           inv.Notes,
		CancelReason:    inv.CancelReason,
		CreatedAt:       inv.CreatedAt,
		UpdatedAt:       inv.UpdatedAt,
	}
}

// ToPaymentResponse maps a payment to its response view
func ToPaymentResponse(p *invoice.Payment) PaymentResponse {
	return PaymentResponse{
		ID:          p.ID,
		InvoiceID:   p.InvoiceID,
		Amount:      p.Amount,
		Method:      p.Method,
		PaymentDate: p.PaymentDate,
		Reference:   p.Reference,
	}
}
