package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/bizbook/backend/internal/domain/report"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupSalesRecordTestDB creates an in-memory SQLite database for testing
func setupSalesRecordTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE sales_records (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			branch_id TEXT NOT NULL,
			invoice_id TEXT NOT NULL,
			invoice_number TEXT NOT NULL,
			customer_id TEXT NOT NULL,
			customer_name TEXT NOT NULL,
			product_id TEXT NOT NULL,
			product_sku TEXT,
			product_name TEXT NOT NULL,
			category_id TEXT,
			category_name TEXT,
			quantity NUMERIC NOT NULL,
			unit_price NUMERIC NOT NULL,
			revenue NUMERIC NOT NULL,
			tax NUMERIC NOT NULL DEFAULT 0,
			discount NUMERIC NOT NULL DEFAULT 0,
			cost NUMERIC NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'active',
			record_date DATETIME NOT NULL,
			created_at DATETIME NOT NULL
		)
	`).Error
	require.NoError(t, err)

	return db
}

func newTestSalesRecord(tenantID, invoiceID uuid.UUID, productName string, revenue string) *report.SalesRecord {
	return &report.SalesRecord{
		ID:            uuid.New(),
		TenantID:      tenantID,
		BranchID:      uuid.New(),
		InvoiceID:     invoiceID,
		InvoiceNumber: "INV-000001",
		CustomerID:    uuid.New(),
		CustomerName:  "Acme Traders",
		ProductID:     uuid.New(),
		ProductSKU:    "SKU-1",
		ProductName:   productName,
		Quantity:      decimal.NewFromInt(2),
		UnitPrice:     decimal.RequireFromString("50.00"),
		Revenue:       decimal.RequireFromString(revenue),
		Tax:           decimal.RequireFromString("18.00"),
		Discount:      decimal.Zero,
		Cost:          decimal.RequireFromString("60.00"),
		Status:        report.SalesRecordActive,
		RecordDate:    time.Now().Truncate(24 * time.Hour),
		CreatedAt:     time.Now(),
	}
}

func TestGormSalesRecordRepository_SaveBatchAndFindByInvoice(t *testing.T) {
	db := setupSalesRecordTestDB(t)
	repo := NewGormSalesRecordRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	invoiceID := uuid.New()

	records := []*report.SalesRecord{
		newTestSalesRecord(tenantID, invoiceID, "Widget", "100.00"),
		newTestSalesRecord(tenantID, invoiceID, "Gadget", "75.00"),
	}
	require.NoError(t, repo.SaveBatch(ctx, records))

	found, err := repo.FindByInvoice(ctx, tenantID, invoiceID)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "INV-000001", found[0].InvoiceNumber)
}

func TestGormSalesRecordRepository_SaveBatch_Empty(t *testing.T) {
	db := setupSalesRecordTestDB(t)
	repo := NewGormSalesRecordRepository(db)

	require.NoError(t, repo.SaveBatch(context.Background(), nil))
}

func TestGormSalesRecordRepository_MarkCancelledByInvoice(t *testing.T) {
	db := setupSalesRecordTestDB(t)
	repo := NewGormSalesRecordRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	invoiceID := uuid.New()
	otherInvoiceID := uuid.New()

	require.NoError(t, repo.SaveBatch(ctx, []*report.SalesRecord{
		newTestSalesRecord(tenantID, invoiceID, "Widget", "100.00"),
		newTestSalesRecord(tenantID, invoiceID, "Gadget", "75.00"),
		newTestSalesRecord(tenantID, otherInvoiceID, "Gizmo", "40.00"),
	}))

	require.NoError(t, repo.MarkCancelledByInvoice(ctx, tenantID, invoiceID))

	// Rows survive cancellation as history.
	cancelled, err := repo.FindByInvoice(ctx, tenantID, invoiceID)
	require.NoError(t, err)
	require.Len(t, cancelled, 2)
	for _, record := range cancelled {
		assert.Equal(t, report.SalesRecordCancelled, record.Status)
	}

	kept, err := repo.FindByInvoice(ctx, tenantID, otherInvoiceID)
	require.NoError(t, err)
	require.Len(t, kept, 1)
	assert.Equal(t, report.SalesRecordActive, kept[0].Status)
}

func TestGormSalesRecordRepository_DeleteByInvoice(t *testing.T) {
	db := setupSalesRecordTestDB(t)
	repo := NewGormSalesRecordRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	invoiceID := uuid.New()
	otherInvoiceID := uuid.New()

	require.NoError(t, repo.SaveBatch(ctx, []*report.SalesRecord{
		newTestSalesRecord(tenantID, invoiceID, "Widget", "100.00"),
		newTestSalesRecord(tenantID, otherInvoiceID, "Gadget", "75.00"),
	}))

	require.NoError(t, repo.DeleteByInvoice(ctx, tenantID, invoiceID))

	gone, err := repo.FindByInvoice(ctx, tenantID, invoiceID)
	require.NoError(t, err)
	assert.Empty(t, gone)

	kept, err := repo.FindByInvoice(ctx, tenantID, otherInvoiceID)
	require.NoError(t, err)
	assert.Len(t, kept, 1)
}
