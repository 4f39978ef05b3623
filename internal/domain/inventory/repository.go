package inventory

import (
	"context"

	"github.com/bizbook/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockItemRepository defines the persistence interface for stock records.
//
// DecrementIfAvailable and Increment are the only write paths used by the
// sales flow. DecrementIfAvailable must be implemented as a single
// conditional update (quantity = quantity - ? WHERE quantity >= ?) so that
// concurrent sales of the last unit serialize on the database row instead
// of racing through a read-then-write.
type StockItemRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*StockItem, error)
	FindByBranchAndProduct(ctx context.Context, tenantID, branchID, productID uuid.UUID) (*StockItem, error)
	FindByBranch(ctx context.Context, tenantID, branchID uuid.UUID, filter shared.Filter) ([]StockItem, error)
	// GetOrCreate returns the existing record or creates a zero-quantity one,
	// tolerating concurrent first-writers via the unique index.
	GetOrCreate(ctx context.Context, tenantID, branchID, productID uuid.UUID) (*StockItem, error)
	// DecrementIfAvailable atomically decrements the quantity if at least
	// the requested quantity is available. Returns false if the guard
	// matched no rows (insufficient stock or unknown product).
	DecrementIfAvailable(ctx context.Context, tenantID, branchID, productID uuid.UUID, quantity decimal.Decimal) (bool, error)
	// Increment unconditionally adds quantity back, creating the record if
	// it does not exist. Used when reversing a prior valid decrement.
	Increment(ctx context.Context, tenantID, branchID, productID uuid.UUID, quantity decimal.Decimal) error
	Save(ctx context.Context, item *StockItem) error
}
