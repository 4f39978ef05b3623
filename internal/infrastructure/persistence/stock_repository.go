package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/bizbook/backend/internal/domain/inventory"
	"github.com/bizbook/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStockItemRepository implements StockItemRepository using GORM.
//
// The sales path never does read-modify-write on quantities: decrements go
// through a single guarded UPDATE so concurrent sales of the last unit
// serialize on the row instead of racing.
type GormStockItemRepository struct {
	db *gorm.DB
}

// NewGormStockItemRepository creates a new GormStockItemRepository
func NewGormStockItemRepository(db *gorm.DB) *GormStockItemRepository {
	return &GormStockItemRepository{db: db}
}

// FindByID finds a stock record by its ID
func (r *GormStockItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.StockItem, error) {
	var item inventory.StockItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByBranchAndProduct finds the stock record for a branch-product combination
func (r *GormStockItemRepository) FindByBranchAndProduct(ctx context.Context, tenantID, branchID, productID uuid.UUID) (*inventory.StockItem, error) {
	var item inventory.StockItem
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND branch_id = ? AND product_id = ?", tenantID, branchID, productID).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindByBranch finds all stock records in a branch
func (r *GormStockItemRepository) FindByBranch(ctx context.Context, tenantID, branchID uuid.UUID, filter shared.Filter) ([]inventory.StockItem, error) {
	var items []inventory.StockItem
	query := r.db.WithContext(ctx).
		Model(&inventory.StockItem{}).
		Where("tenant_id = ? AND branch_id = ?", tenantID, branchID)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	orderBy := ValidateSortField(filter.OrderBy, StockSortFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// GetOrCreate returns the existing record or creates a zero-quantity one.
// The insert tolerates a concurrent first-writer via the unique index on
// (tenant, branch, product); the loser of that race resolves to the
// winner's row on the follow-up read.
func (r *GormStockItemRepository) GetOrCreate(ctx context.Context, tenantID, branchID, productID uuid.UUID) (*inventory.StockItem, error) {
	item, err := r.FindByBranchAndProduct(ctx, tenantID, branchID, productID)
	if err == nil {
		return item, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	fresh, err := inventory.NewStockItem(tenantID, branchID, productID)
	if err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(fresh).Error; err != nil {
		return nil, err
	}
	return r.FindByBranchAndProduct(ctx, tenantID, branchID, productID)
}

// DecrementIfAvailable atomically decrements the quantity if at least the
// requested quantity is available. Returns false if the guard matched no
// rows, which covers both insufficient stock and an unknown product.
func (r *GormStockItemRepository) DecrementIfAvailable(ctx context.Context, tenantID, branchID, productID uuid.UUID, quantity decimal.Decimal) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&inventory.StockItem{}).
		Where("tenant_id = ? AND branch_id = ? AND product_id = ? AND quantity >= ?",
			tenantID, branchID, productID, quantity).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity - ?", quantity),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Increment unconditionally adds quantity back, creating the record if it
// does not exist. Used when reversing a prior valid decrement.
func (r *GormStockItemRepository) Increment(ctx context.Context, tenantID, branchID, productID uuid.UUID, quantity decimal.Decimal) error {
	if _, err := r.GetOrCreate(ctx, tenantID, branchID, productID); err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Model(&inventory.StockItem{}).
		Where("tenant_id = ? AND branch_id = ? AND product_id = ?", tenantID, branchID, productID).
		Updates(map[string]interface{}{
			"quantity":   gorm.Expr("quantity + ?", quantity),
			"updated_at": time.Now(),
		}).Error
}

// Save creates or updates a stock record
func (r *GormStockItemRepository) Save(ctx context.Context, item *inventory.StockItem) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(item).Error
}

// Ensure GormStockItemRepository implements StockItemRepository
var _ inventory.StockItemRepository = (*GormStockItemRepository)(nil)
