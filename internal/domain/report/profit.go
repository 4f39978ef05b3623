package report

import (
	"time"

	"github.com/bizbook/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Bucket is the time granularity of a profit breakdown
type Bucket string

const (
	BucketDay     Bucket = "day"
	BucketWeek    Bucket = "week"
	BucketMonth   Bucket = "month"
	BucketQuarter Bucket = "quarter"
	BucketYear    Bucket = "year"
)

// IsValid checks if the bucket is a known granularity
func (b Bucket) IsValid() bool {
	switch b {
	case BucketDay, BucketWeek, BucketMonth, BucketQuarter, BucketYear:
		return true
	}
	return false
}

// GroupBy is the dimension of a profit breakdown
type GroupBy string

const (
	GroupByProduct  GroupBy = "product"
	GroupByCustomer GroupBy = "customer"
	GroupByCategory GroupBy = "category"
)

// IsValid checks if the dimension is known
func (g GroupBy) IsValid() bool {
	switch g {
	case GroupByProduct, GroupByCustomer, GroupByCategory:
		return true
	}
	return false
}

// Trend direction of profit across consecutive buckets
type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// ProfitFilter scopes a profit query. A nil Status scopes to active
// records; querying cancelled history is opt-in.
type ProfitFilter struct {
	TenantID   uuid.UUID
	BranchID   *uuid.UUID
	From       time.Time
	To         time.Time
	Bucket     Bucket
	ProductID  *uuid.UUID
	CustomerID *uuid.UUID
	CategoryID *uuid.UUID
	Status     *SalesRecordStatus
}

// PreviousPeriod returns the same filter shifted to the window of equal
// length immediately before this one.
func (f ProfitFilter) PreviousPeriod() ProfitFilter {
	span := f.To.Sub(f.From)
	prev := f
	prev.To = f.From.Add(-time.Nanosecond)
	prev.From = prev.To.Add(-span)
	return prev
}

// Validate checks the filter's time range and bucket
func (f ProfitFilter) Validate() error {
	if f.TenantID == uuid.Nil {
		return shared.NewDomainError("INVALID_FILTER", "Tenant ID is required")
	}
	if f.From.IsZero() || f.To.IsZero() || f.To.Before(f.From) {
		return shared.NewDomainError("INVALID_FILTER", "Invalid date range")
	}
	if f.Bucket != "" && !f.Bucket.IsValid() {
		return shared.NewDomainError("INVALID_FILTER", "Unknown bucket: "+string(f.Bucket))
	}
	return nil
}

// Figures is one aggregated profit measurement. Revenue, Tax, Discount
// and Cost come from sales records; the derived values follow:
//
//	GrossProfit = Revenue − Tax − Discount − Cost
//	Margin      = GrossProfit ÷ (Revenue − Tax − Discount) × 100
//	Markup      = GrossProfit ÷ Cost × 100
type Figures struct {
	Revenue     decimal.Decimal `json:"revenue"`
	Tax         decimal.Decimal `json:"tax"`
	Discount    decimal.Decimal `json:"discount"`
	Cost        decimal.Decimal `json:"cost"`
	GrossProfit decimal.Decimal `json:"gross_profit"`
	Margin      decimal.Decimal `json:"margin"`
	Markup      decimal.Decimal `json:"markup"`
}

// NewFigures derives profit, margin and markup from raw sums. Margin is
// zero when net revenue is zero, markup zero when cost is zero.
func NewFigures(revenue, tax, discount, cost decimal.Decimal) Figures {
	f := Figures{
		Revenue:  revenue.Round(2),
		Tax:      tax.Round(2),
		Discount: discount.Round(2),
		Cost:     cost.Round(2),
	}
	netRevenue := f.Revenue.Sub(f.Tax).Sub(f.Discount)
	f.GrossProfit = netRevenue.Sub(f.Cost)

	hundred := decimal.NewFromInt(100)
	if !netRevenue.IsZero() {
		f.Margin = f.GrossProfit.Div(netRevenue).Mul(hundred).Round(2)
	} else {
		f.Margin = decimal.Zero
	}
	if !f.Cost.IsZero() {
		f.Markup = f.GrossProfit.Div(f.Cost).Mul(hundred).Round(2)
	} else {
		f.Markup = decimal.Zero
	}
	return f
}

// BucketFigures is one time bucket of a profit breakdown
type BucketFigures struct {
	PeriodStart time.Time `json:"period_start"`
	Figures
}

// GroupFigures is one dimension value of a profit breakdown
type GroupFigures struct {
	Key      uuid.UUID       `json:"key"`
	Label    string          `json:"label"`
	Quantity decimal.Decimal `json:"quantity"`
	Figures
}

// ProfitSummary is the full answer to a profit query. PreviousTotals
// covers the window of equal length immediately before the queried one,
// and ChangePercent is the gross profit movement between the two.
type ProfitSummary struct {
	PeriodStart    time.Time       `json:"period_start"`
	PeriodEnd      time.Time       `json:"period_end"`
	Totals         Figures         `json:"totals"`
	PreviousTotals Figures         `json:"previous_totals"`
	ChangePercent  decimal.Decimal `json:"change_percent"`
	Buckets        []BucketFigures `json:"buckets,omitempty"`
	Trend          Trend           `json:"trend"`
}

// PeriodChange is the percentage gross profit movement from the previous
// period's figures to the current ones. It is zero when the previous
// period had no gross profit to compare against.
func PeriodChange(previous, current Figures) decimal.Decimal {
	if previous.GrossProfit.IsZero() {
		return decimal.Zero
	}
	return current.GrossProfit.Sub(previous.GrossProfit).
		Div(previous.GrossProfit.Abs()).
		Mul(decimal.NewFromInt(100)).
		Round(2)
}

// ComputeTrend compares the last two buckets of a breakdown. Movements
// within the threshold percentage count as stable.
func ComputeTrend(buckets []BucketFigures, thresholdPercent decimal.Decimal) Trend {
	if len(buckets) < 2 {
		return TrendStable
	}
	prev := buckets[len(buckets)-2].GrossProfit
	last := buckets[len(buckets)-1].GrossProfit

	diff := last.Sub(prev)
	if prev.IsZero() {
		switch {
		case diff.IsPositive():
			return TrendUp
		case diff.IsNegative():
			return TrendDown
		default:
			return TrendStable
		}
	}

	change := diff.Div(prev.Abs()).Mul(decimal.NewFromInt(100))
	switch {
	case change.GreaterThan(thresholdPercent):
		return TrendUp
	case change.LessThan(thresholdPercent.Neg()):
		return TrendDown
	default:
		return TrendStable
	}
}
