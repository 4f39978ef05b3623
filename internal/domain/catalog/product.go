package catalog

import (
	"strings"
	"time"

	"github.com/bizbook/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductStatus represents the status of a product
type ProductStatus string

const (
	ProductStatusActive       ProductStatus = "active"
	ProductStatusInactive     ProductStatus = "inactive"
	ProductStatusDiscontinued ProductStatus = "discontinued"
)

// Product represents a sellable product/SKU. It is the source of the
// cost-price snapshot taken onto invoice line items at sale time; the
// invoice never reads the product's cost again after that.
type Product struct {
	shared.TenantAggregateRoot
	SKU          string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_product_tenant_sku,priority:2"`
	Name         string          `gorm:"type:varchar(200);not null"`
	CategoryID   *uuid.UUID      `gorm:"type:uuid;index"`
	CategoryName string          `gorm:"type:varchar(100)"`
	CostPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Current purchase cost
	SellingPrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TaxRate      decimal.Decimal `gorm:"type:decimal(8,4);not null;default:0"` // Default tax percentage
	Status       ProductStatus   `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product
func NewProduct(tenantID uuid.UUID, sku, name string) (*Product, error) {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "Product SKU cannot be empty")
	}
	if len(sku) > 50 {
		return nil, shared.NewDomainError("INVALID_SKU", "Product SKU cannot exceed 50 characters")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}

	return &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SKU:                 strings.ToUpper(sku),
		Name:                name,
		CostPrice:           decimal.Zero,
		SellingPrice:        decimal.Zero,
		TaxRate:             decimal.Zero,
		Status:              ProductStatusActive,
	}, nil
}

// SetPrices updates the product's cost and selling prices
func (p *Product) SetPrices(costPrice, sellingPrice decimal.Decimal) error {
	if costPrice.IsNegative() {
		return shared.NewDomainError("INVALID_COST", "Cost price cannot be negative")
	}
	if sellingPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Selling price cannot be negative")
	}
	p.CostPrice = costPrice
	p.SellingPrice = sellingPrice
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// SetTaxRate updates the default tax rate percentage
func (p *Product) SetTaxRate(rate decimal.Decimal) error {
	if rate.IsNegative() {
		return shared.NewDomainError("INVALID_TAX_RATE", "Tax rate cannot be negative")
	}
	p.TaxRate = rate
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// SetCategory assigns the product to a category
func (p *Product) SetCategory(categoryID uuid.UUID, categoryName string) {
	p.CategoryID = &categoryID
	p.CategoryName = categoryName
	p.UpdatedAt = time.Now()
}

// IsActive returns true if the product can be sold
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// Deactivate marks the product as inactive
func (p *Product) Deactivate() {
	p.Status = ProductStatusInactive
	p.UpdatedAt = time.Now()
}
