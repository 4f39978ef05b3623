package invoice

import (
	"strings"
	"time"

	"github.com/bizbook/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment is one settlement against an invoice. Payments are append-only;
// corrections happen by cancelling the invoice, never by editing a payment.
type Payment struct {
	shared.BaseEntity
	TenantID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	BranchID    uuid.UUID       `gorm:"type:uuid;not null"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	CustomerID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Method      string          `gorm:"type:varchar(20);not null"`
	PaymentDate time.Time       `gorm:"not null"`
	Reference   string          `gorm:"type:varchar(100)"`
	Notes       string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Payment) TableName() string {
	return "invoice_payments"
}

// NewPayment records a settlement. The invoice aggregate has already
// validated the amount against its balance; this guards the record itself.
func NewPayment(tenantID, branchID, invoiceID, customerID uuid.UUID, amount decimal.Decimal, method string, paymentDate time.Time) (*Payment, error) {
	if invoiceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}
	amount = amount.Round(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	method = strings.ToLower(method)
	switch method {
	case MethodCash, MethodBank, MethodUPI, MethodCard:
	default:
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unknown payment method: "+method)
	}
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}

	return &Payment{
		BaseEntity:  shared.NewBaseEntity(),
		TenantID:    tenantID,
		BranchID:    branchID,
		InvoiceID:   invoiceID,
		CustomerID:  customerID,
		Amount:      amount,
		Method:      method,
		PaymentDate: paymentDate,
	}, nil
}

// WithReference attaches an external reference (UTR, cheque number)
func (p *Payment) WithReference(reference string) *Payment {
	p.Reference = reference
	return p
}
