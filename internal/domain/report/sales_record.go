package report

import (
	"time"

	"github.com/bizbook/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SalesRecordStatus mirrors the source invoice's lifecycle in the
// projection. Cancelled rows stay in place as history instead of being
// deleted, and profit aggregation skips them.
type SalesRecordStatus string

const (
	SalesRecordActive    SalesRecordStatus = "active"
	SalesRecordCancelled SalesRecordStatus = "cancelled"
)

// SalesRecord is a denormalized read model: one row per invoice line,
// written when an invoice is issued and rewritten when its financials
// change. The profit engine aggregates over these rows so it never joins
// back into the invoice tables.
//
// Cost carries the cost-price snapshot taken at invoicing time; catalog
// price changes after the sale never shift historical profit.
type SalesRecord struct {
	ID            uuid.UUID         `gorm:"type:uuid;primaryKey"`
	TenantID      uuid.UUID         `gorm:"type:uuid;not null;index:idx_sales_record_tenant_date"`
	BranchID      uuid.UUID         `gorm:"type:uuid;not null;index"`
	InvoiceID     uuid.UUID         `gorm:"type:uuid;not null;index"`
	InvoiceNumber string            `gorm:"type:varchar(50);not null"`
	CustomerID    uuid.UUID         `gorm:"type:uuid;not null;index"`
	CustomerName  string            `gorm:"type:varchar(200);not null"`
	ProductID     uuid.UUID         `gorm:"type:uuid;not null;index"`
	ProductSKU    string            `gorm:"type:varchar(100)"`
	ProductName   string            `gorm:"type:varchar(200);not null"`
	CategoryID    *uuid.UUID        `gorm:"type:uuid;index"`
	CategoryName  string            `gorm:"type:varchar(200)"`
	Quantity      decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	UnitPrice     decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	Revenue       decimal.Decimal   `gorm:"type:decimal(18,2);not null"`
	Tax           decimal.Decimal   `gorm:"type:decimal(18,2);not null;default:0"`
	Discount      decimal.Decimal   `gorm:"type:decimal(18,2);not null;default:0"`
	Cost          decimal.Decimal   `gorm:"type:decimal(18,2);not null;default:0"`
	Status        SalesRecordStatus `gorm:"type:varchar(20);not null;default:'active';index"`
	RecordDate    time.Time         `gorm:"not null;index:idx_sales_record_tenant_date"`
	CreatedAt     time.Time
}

// TableName returns the table name for GORM
func (SalesRecord) TableName() string {
	return "sales_records"
}

// NewSalesRecord creates a projection row for one invoice line
func NewSalesRecord(tenantID, branchID, invoiceID, customerID, productID uuid.UUID, invoiceNumber, customerName, productName string, quantity, unitPrice, revenue, tax, discount, cost decimal.Decimal, recordDate time.Time) (*SalesRecord, error) {
	if invoiceID == uuid.Nil || productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_RECORD", "Sales record requires an invoice and a product")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if revenue.IsNegative() || tax.IsNegative() || discount.IsNegative() || cost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Sales record amounts cannot be negative")
	}

	return &SalesRecord{
		ID:            uuid.New(),
		TenantID:      tenantID,
		BranchID:      branchID,
		InvoiceID:     invoiceID,
		InvoiceNumber: invoiceNumber,
		CustomerID:    customerID,
		CustomerName:  customerName,
		ProductID:     productID,
		ProductName:   productName,
		Quantity:      quantity,
		UnitPrice:     unitPrice.Round(2),
		Revenue:       revenue.Round(2),
		Tax:           tax.Round(2),
		Discount:      discount.Round(2),
		Cost:          cost.Round(2),
		Status:        SalesRecordActive,
		RecordDate:    recordDate,
		CreatedAt:     time.Now(),
	}, nil
}

// WithProductDetails attaches SKU and category information
func (r *SalesRecord) WithProductDetails(sku string, categoryID *uuid.UUID, categoryName string) *SalesRecord {
	r.ProductSKU = sku
	r.CategoryID = categoryID
	r.CategoryName = categoryName
	return r
}
