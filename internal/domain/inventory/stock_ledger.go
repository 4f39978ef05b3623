package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/bizbook/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineQuantity names a product and the quantity a line item moves
type LineQuantity struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    decimal.Decimal
}

// AvailabilityResult is the outcome of a read-only stock pre-check
type AvailabilityResult struct {
	IsValid  bool
	Errors   []string
	Warnings []string
}

// StockLedger performs guarded stock movements for invoice line items.
// It is a domain service constructed over a (typically transaction-scoped)
// StockItemRepository.
type StockLedger struct {
	repo   StockItemRepository
	events []shared.DomainEvent
}

// NewStockLedger creates a new StockLedger
func NewStockLedger(repo StockItemRepository) *StockLedger {
	return &StockLedger{repo: repo}
}

// PullEvents returns the movement events recorded since the last call and
// clears them. Callers hand them to the outbox inside the same transaction
// as the movement itself.
func (l *StockLedger) PullEvents() []shared.DomainEvent {
	events := l.events
	l.events = nil
	return events
}

// ValidateAvailability checks current quantities for every line and reports
// all shortfalls at once. It exists to fail fast with a descriptive error
// before other side effects begin; Reduce's conditional decrement remains
// the actual correctness boundary.
func (l *StockLedger) ValidateAvailability(ctx context.Context, tenantID, branchID uuid.UUID, lines []LineQuantity) (*AvailabilityResult, error) {
	result := &AvailabilityResult{IsValid: true}

	for _, line := range lines {
		if line.Quantity.LessThanOrEqual(decimal.Zero) {
			result.IsValid = false
			result.Errors = append(result.Errors,
				fmt.Sprintf("invalid quantity %s for %s", line.Quantity.String(), line.ProductName))
			continue
		}

		item, err := l.repo.FindByBranchAndProduct(ctx, tenantID, branchID, line.ProductID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				result.IsValid = false
				result.Errors = append(result.Errors,
					fmt.Sprintf("no stock record for %s at this branch", line.ProductName))
				continue
			}
			return nil, err
		}

		if !item.CanFulfill(line.Quantity) {
			result.IsValid = false
			result.Errors = append(result.Errors, (&shared.InsufficientStockError{
				ProductID:   line.ProductID.String(),
				ProductName: line.ProductName,
				Available:   item.Quantity,
				Required:    line.Quantity,
			}).Error())
		} else if item.Quantity.Sub(line.Quantity).LessThan(line.Quantity) {
			// Remaining stock after this sale would not cover another sale
			// of the same size.
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("stock for %s is running low", line.ProductName))
		}
	}

	return result, nil
}

// Reduce atomically decrements stock for every line. The first line whose
// guard matches no rows aborts with *shared.InsufficientStockError; the
// enclosing transaction rolls back any decrements already applied.
func (l *StockLedger) Reduce(ctx context.Context, tenantID, branchID uuid.UUID, lines []LineQuantity) error {
	for _, line := range lines {
		if line.Quantity.LessThanOrEqual(decimal.Zero) {
			return shared.NewDomainError("INVALID_QUANTITY", "Stock reduction quantity must be positive")
		}

		ok, err := l.repo.DecrementIfAvailable(ctx, tenantID, branchID, line.ProductID, line.Quantity)
		if err != nil {
			return err
		}
		if !ok {
			insufficient := &shared.InsufficientStockError{
				ProductID:   line.ProductID.String(),
				ProductName: line.ProductName,
				Required:    line.Quantity,
			}
			// Best effort: name the available quantity in the error
			if item, findErr := l.repo.FindByBranchAndProduct(ctx, tenantID, branchID, line.ProductID); findErr == nil {
				insufficient.Available = item.Quantity
			}
			return insufficient
		}
	}
	if len(lines) > 0 {
		l.events = append(l.events, NewStockReducedEvent(tenantID, branchID, lines))
	}
	return nil
}

// Restore unconditionally increments stock for every line, creating missing
// records. It undoes a prior valid Reduce and therefore has no upper bound
// check.
func (l *StockLedger) Restore(ctx context.Context, tenantID, branchID uuid.UUID, lines []LineQuantity) error {
	for _, line := range lines {
		if line.Quantity.LessThanOrEqual(decimal.Zero) {
			return shared.NewDomainError("INVALID_QUANTITY", "Stock restore quantity must be positive")
		}
		if err := l.repo.Increment(ctx, tenantID, branchID, line.ProductID, line.Quantity); err != nil {
			return err
		}
	}
	if len(lines) > 0 {
		l.events = append(l.events, NewStockRestoredEvent(tenantID, branchID, lines))
	}
	return nil
}
