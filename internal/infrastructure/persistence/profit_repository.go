package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/bizbook/backend/internal/domain/report"
	"github.com/bizbook/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormProfitRepository implements ProfitRepository with SQL aggregation
// over the sales_records projection. Profit queries never join back into
// the invoice tables.
type GormProfitRepository struct {
	db *gorm.DB
}

// NewGormProfitRepository creates a new GormProfitRepository
func NewGormProfitRepository(db *gorm.DB) *GormProfitRepository {
	return &GormProfitRepository{db: db}
}

type figuresRow struct {
	Revenue  decimal.Decimal
	Tax      decimal.Decimal
	Discount decimal.Decimal
	Cost     decimal.Decimal
}

const figuresSelect = `
	COALESCE(SUM(revenue), 0) as revenue,
	COALESCE(SUM(tax), 0) as tax,
	COALESCE(SUM(discount), 0) as discount,
	COALESCE(SUM(cost), 0) as cost`

// Totals sums the filtered records into one set of figures
func (r *GormProfitRepository) Totals(ctx context.Context, filter report.ProfitFilter) (report.Figures, error) {
	var row figuresRow
	if err := r.scoped(ctx, filter).Select(figuresSelect).Scan(&row).Error; err != nil {
		return report.Figures{}, err
	}
	return report.NewFigures(row.Revenue, row.Tax, row.Discount, row.Cost), nil
}

// Buckets sums the filtered records per time bucket, oldest first
func (r *GormProfitRepository) Buckets(ctx context.Context, filter report.ProfitFilter) ([]report.BucketFigures, error) {
	trunc, err := bucketTrunc(filter.Bucket)
	if err != nil {
		return nil, err
	}

	// Fields are spelled out because gorm's Scan does not promote
	// anonymous embedded struct fields on a plain destination.
	type bucketRow struct {
		PeriodStart time.Time
		Revenue     decimal.Decimal
		Tax         decimal.Decimal
		Discount    decimal.Decimal
		Cost        decimal.Decimal
	}
	var rows []bucketRow

	periodExpr := fmt.Sprintf("DATE_TRUNC('%s', record_date)", trunc)
	err = r.scoped(ctx, filter).
		Select(periodExpr + " as period_start, " + figuresSelect).
		Group(periodExpr).
		Order("period_start ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	buckets := make([]report.BucketFigures, len(rows))
	for i, row := range rows {
		buckets[i] = report.BucketFigures{
			PeriodStart: row.PeriodStart,
			Figures:     report.NewFigures(row.Revenue, row.Tax, row.Discount, row.Cost),
		}
	}
	return buckets, nil
}

// ByDimension sums the filtered records per product, customer or category,
// highest revenue first
func (r *GormProfitRepository) ByDimension(ctx context.Context, filter report.ProfitFilter, groupBy report.GroupBy) ([]report.GroupFigures, error) {
	var keyCol, labelCol string
	switch groupBy {
	case report.GroupByProduct:
		keyCol, labelCol = "product_id", "product_name"
	case report.GroupByCustomer:
		keyCol, labelCol = "customer_id", "customer_name"
	case report.GroupByCategory:
		keyCol, labelCol = "category_id", "category_name"
	default:
		return nil, shared.NewDomainError("INVALID_FILTER", "Unknown group dimension: "+string(groupBy))
	}

	type groupRow struct {
		Key      uuid.UUID
		Label    string
		Quantity decimal.Decimal
		Revenue  decimal.Decimal
		Tax      decimal.Decimal
		Discount decimal.Decimal
		Cost     decimal.Decimal
	}
	var rows []groupRow

	query := r.scoped(ctx, filter).
		Select(fmt.Sprintf("%s as key, %s as label, COALESCE(SUM(quantity), 0) as quantity, %s",
			keyCol, labelCol, figuresSelect)).
		Group(keyCol + ", " + labelCol).
		Order("revenue DESC")
	if groupBy == report.GroupByCategory {
		// Uncategorized lines have no key to group under
		query = query.Where("category_id IS NOT NULL")
	}

	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	groups := make([]report.GroupFigures, len(rows))
	for i, row := range rows {
		groups[i] = report.GroupFigures{
			Key:      row.Key,
			Label:    row.Label,
			Quantity: row.Quantity,
			Figures:  report.NewFigures(row.Revenue, row.Tax, row.Discount, row.Cost),
		}
	}
	return groups, nil
}

func (r *GormProfitRepository) scoped(ctx context.Context, filter report.ProfitFilter) *gorm.DB {
	query := r.db.WithContext(ctx).
		Model(&report.SalesRecord{}).
		Where("tenant_id = ?", filter.TenantID).
		Where("record_date >= ? AND record_date <= ?", filter.From, filter.To)

	// Cancelled rows stay in the table as history; they only count when
	// the caller asks for them.
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	} else {
		query = query.Where("status = ?", report.SalesRecordActive)
	}

	if filter.BranchID != nil {
		query = query.Where("branch_id = ?", *filter.BranchID)
	}
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	return query
}

// bucketTrunc maps a bucket to its DATE_TRUNC granularity. The value is
// interpolated into SQL, so only known constants pass.
func bucketTrunc(bucket report.Bucket) (string, error) {
	switch bucket {
	case "", report.BucketDay:
		return "day", nil
	case report.BucketWeek:
		return "week", nil
	case report.BucketMonth:
		return "month", nil
	case report.BucketQuarter:
		return "quarter", nil
	case report.BucketYear:
		return "year", nil
	}
	return "", shared.NewDomainError("INVALID_FILTER", "Unknown bucket: "+string(bucket))
}

// Ensure GormProfitRepository implements ProfitRepository
var _ report.ProfitRepository = (*GormProfitRepository)(nil)
