package report

import (
	"context"

	"github.com/google/uuid"
)

// SalesRecordRepository persists the sales projection. Writes happen on
// the invoice lifecycle's best-effort path: a failure here is logged and
// never rolls back the invoice transaction.
type SalesRecordRepository interface {
	// SaveBatch inserts the projection rows for one invoice
	SaveBatch(ctx context.Context, records []*SalesRecord) error

	// DeleteByInvoice removes an invoice's rows, used before rewriting
	// them when an invoice's financials change
	DeleteByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) error

	// MarkCancelledByInvoice flips an invoice's rows to cancelled.
	// Cancellation keeps the projection as history rather than erasing it.
	MarkCancelledByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) error

	// FindByInvoice returns the rows projected from one invoice
	FindByInvoice(ctx context.Context, tenantID, invoiceID uuid.UUID) ([]SalesRecord, error)
}

// ProfitRepository answers aggregation queries over sales records
type ProfitRepository interface {
	// Totals sums the filtered records into one set of figures
	Totals(ctx context.Context, filter ProfitFilter) (Figures, error)

	// Buckets sums the filtered records per time bucket, oldest first
	Buckets(ctx context.Context, filter ProfitFilter) ([]BucketFigures, error)

	// ByDimension sums the filtered records per product, customer or
	// category, highest revenue first
	ByDimension(ctx context.Context, filter ProfitFilter, groupBy GroupBy) ([]GroupFigures, error)
}
