package inventory

import (
	"github.com/bizbook/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	EventTypeStockReduced  = "StockReduced"
	EventTypeStockRestored = "StockRestored"

	AggregateTypeStock = "Stock"
)

// Movement is one product line of a stock event payload
type Movement struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// StockReducedEvent is published after stock was decremented for a sale
type StockReducedEvent struct {
	shared.BaseDomainEvent
	BranchID uuid.UUID  `json:"branch_id"`
	Items    []Movement `json:"items"`
}

// NewStockReducedEvent creates a new StockReducedEvent
func NewStockReducedEvent(tenantID, branchID uuid.UUID, lines []LineQuantity) *StockReducedEvent {
	return &StockReducedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockReduced, AggregateTypeStock, branchID, tenantID),
		BranchID:        branchID,
		Items:           movements(lines),
	}
}

// StockRestoredEvent is published after stock was returned to the shelf,
// either by a cancellation restock or an invoice rework.
type StockRestoredEvent struct {
	shared.BaseDomainEvent
	BranchID uuid.UUID  `json:"branch_id"`
	Items    []Movement `json:"items"`
}

// NewStockRestoredEvent creates a new StockRestoredEvent
func NewStockRestoredEvent(tenantID, branchID uuid.UUID, lines []LineQuantity) *StockRestoredEvent {
	return &StockRestoredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockRestored, AggregateTypeStock, branchID, tenantID),
		BranchID:        branchID,
		Items:           movements(lines),
	}
}

func movements(lines []LineQuantity) []Movement {
	items := make([]Movement, len(lines))
	for i, line := range lines {
		items[i] = Movement{
			ProductID:   line.ProductID,
			ProductName: line.ProductName,
			Quantity:    line.Quantity,
		}
	}
	return items
}
