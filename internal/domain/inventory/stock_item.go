package inventory

import (
	"github.com/bizbook/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockItem is the per-product, per-branch stock quantity record.
// The composite identifier is TenantID + BranchID + ProductID.
//
// Quantity is never mutated through the aggregate directly: sales-path
// decrements go through StockItemRepository.DecrementIfAvailable, a single
// conditional update that is the race-free correctness boundary. The
// invariant quantity >= 0 is enforced by that guard, not by validation here.
type StockItem struct {
	shared.TenantAggregateRoot
	BranchID  uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_item_branch_product,priority:2"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_item_branch_product,priority:3"`
	Quantity  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (StockItem) TableName() string {
	return "stock_items"
}

// NewStockItem creates a new stock record for a branch-product combination
func NewStockItem(tenantID, branchID, productID uuid.UUID) (*StockItem, error) {
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}

	return &StockItem{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		BranchID:            branchID,
		ProductID:           productID,
		Quantity:            decimal.Zero,
	}, nil
}

// CanFulfill returns true if the recorded quantity covers the requested one.
// This is advisory only; the guarded decrement is authoritative.
func (i *StockItem) CanFulfill(quantity decimal.Decimal) bool {
	return i.Quantity.GreaterThanOrEqual(quantity)
}
