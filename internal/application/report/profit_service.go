package report

import (
	"context"
	"time"

	"github.com/bizbook/backend/internal/domain/report"
	"github.com/bizbook/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// defaultTrendThreshold is the percentage movement between the last two
// buckets below which the trend reads as stable.
var defaultTrendThreshold = decimal.NewFromInt(5)

// ProfitService answers profitability queries over the sales projection.
// All figures come from the cost and price snapshots taken when each
// invoice was issued, so reports are stable under later catalog changes.
type ProfitService struct {
	profitRepo report.ProfitRepository
	logger     *zap.Logger
}

// NewProfitService creates a new ProfitService
func NewProfitService(profitRepo report.ProfitRepository, logger *zap.Logger) *ProfitService {
	return &ProfitService{profitRepo: profitRepo, logger: logger}
}

// ProfitQuery is the request for a profit summary or breakdown. Status
// left empty reports on active sales; cancelled history is opt-in.
type ProfitQuery struct {
	BranchID   *uuid.UUID                `json:"branch_id"`
	From       time.Time                 `json:"from"`
	To         time.Time                 `json:"to"`
	Bucket     report.Bucket             `json:"bucket"`
	GroupBy    report.GroupBy            `json:"group_by"`
	ProductID  *uuid.UUID                `json:"product_id"`
	CustomerID *uuid.UUID                `json:"customer_id"`
	CategoryID *uuid.UUID                `json:"category_id"`
	Status     *report.SalesRecordStatus `json:"status"`
}

func (q ProfitQuery) toFilter(tenantID uuid.UUID) report.ProfitFilter {
	bucket := q.Bucket
	if bucket == "" {
		bucket = report.BucketDay
	}
	return report.ProfitFilter{
		TenantID:   tenantID,
		BranchID:   q.BranchID,
		From:       q.From,
		To:         q.To,
		Bucket:     bucket,
		ProductID:  q.ProductID,
		CustomerID: q.CustomerID,
		CategoryID: q.CategoryID,
		Status:     q.Status,
	}
}

// Summary returns the totals, per-bucket series and trend for the
// filtered period, alongside the totals of the equal-length period just
// before it. The bucket defaults to day.
func (s *ProfitService) Summary(ctx context.Context, tenantID uuid.UUID, query ProfitQuery) (*report.ProfitSummary, error) {
	filter := query.toFilter(tenantID)
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	totals, err := s.profitRepo.Totals(ctx, filter)
	if err != nil {
		return nil, err
	}
	previous, err := s.profitRepo.Totals(ctx, filter.PreviousPeriod())
	if err != nil {
		return nil, err
	}
	buckets, err := s.profitRepo.Buckets(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &report.ProfitSummary{
		PeriodStart:    filter.From,
		PeriodEnd:      filter.To,
		Totals:         totals,
		PreviousTotals: previous,
		ChangePercent:  report.PeriodChange(previous, totals),
		Buckets:        buckets,
		Trend:          report.ComputeTrend(buckets, defaultTrendThreshold),
	}, nil
}

// Breakdown returns the filtered period's figures grouped by product,
// customer or category, highest revenue first.
func (s *ProfitService) Breakdown(ctx context.Context, tenantID uuid.UUID, query ProfitQuery) ([]report.GroupFigures, error) {
	if !query.GroupBy.IsValid() {
		return nil, shared.NewDomainError("INVALID_FILTER", "Unknown group dimension: "+string(query.GroupBy))
	}
	filter := query.toFilter(tenantID)
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	return s.profitRepo.ByDimension(ctx, filter, query.GroupBy)
}
