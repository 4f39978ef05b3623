package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/bizbook/backend/internal/domain/invoice"
	"github.com/bizbook/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func issuedInvoiceFixture(tenantID uuid.UUID, version int) *invoice.Invoice {
	now := time.Now()
	return &invoice.Invoice{
		TenantAggregateRoot: shared.TenantAggregateRoot{
			BaseAggregateRoot: shared.BaseAggregateRoot{
				BaseEntity: shared.BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
				Version:    version,
			},
			TenantID: tenantID,
		},
		BranchID:      uuid.New(),
		InvoiceNumber: "INV-000001",
		CustomerID:    uuid.New(),
		CustomerName:  "Acme Traders",
		InvoiceDate:   now,
		Subtotal:      decimal.RequireFromString("350"),
		TotalTax:      decimal.RequireFromString("63"),
		GrandTotal:    decimal.RequireFromString("413"),
		BalanceAmount: decimal.RequireFromString("413"),
		TotalCost:     decimal.RequireFromString("210"),
		Status:        invoice.StatusIssued,
		PaymentStatus: invoice.PaymentStatusUnpaid,
	}
}

func TestGormInvoiceRepository_NextInvoiceNumber(t *testing.T) {
	t.Run("starts at one for a fresh tenant", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormInvoiceRepository(db)

		tenantID := uuid.New()
		mock.ExpectQuery(`SELECT "invoice_number" FROM "invoices" WHERE tenant_id = \$1 AND invoice_number LIKE \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, "INV-%", 1).
			WillReturnRows(sqlmock.NewRows([]string{"invoice_number"}))

		number, err := repo.NextInvoiceNumber(context.Background(), tenantID)

		assert.NoError(t, err)
		assert.Equal(t, "INV-000001", number)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("continues after the highest assigned number", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormInvoiceRepository(db)

		tenantID := uuid.New()
		mock.ExpectQuery(`SELECT "invoice_number" FROM "invoices" WHERE tenant_id = \$1 AND invoice_number LIKE \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, "INV-%", 1).
			WillReturnRows(sqlmock.NewRows([]string{"invoice_number"}).AddRow("INV-000007"))

		number, err := repo.NextInvoiceNumber(context.Background(), tenantID)

		assert.NoError(t, err)
		assert.Equal(t, "INV-000008", number)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInvoiceRepository_Save(t *testing.T) {
	t.Run("reports a lost number race as a concurrency conflict", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormInvoiceRepository(db)

		inv := issuedInvoiceFixture(uuid.New(), 1)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "invoices"`).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_invoice_tenant_number"})
		mock.ExpectRollback()

		err := repo.Save(context.Background(), inv)

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInvoiceRepository_SaveWithLock(t *testing.T) {
	t.Run("returns conflict when the version check matches no rows", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormInvoiceRepository(db)

		inv := issuedInvoiceFixture(uuid.New(), 2)

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "invoices" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.SaveWithLock(context.Background(), inv)

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rewrites items when the version check passes", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormInvoiceRepository(db)

		inv := issuedInvoiceFixture(uuid.New(), 2)
		item, err := invoice.NewItem(inv.ID, uuid.New(), "Widget", "WID-001",
			decimal.RequireFromString("3"), decimal.RequireFromString("100"),
			decimal.RequireFromString("18"), decimal.RequireFromString("60"))
		assert.NoError(t, err)
		inv.Items = []invoice.Item{*item}

		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "invoices" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`DELETE FROM "invoice_items" WHERE invoice_id = \$1`).
			WithArgs(inv.ID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO "invoice_items"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err = repo.SaveWithLock(context.Background(), inv)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormInvoiceRepository_FindByIDForTenant(t *testing.T) {
	t.Run("returns not found for another tenant's invoice", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormInvoiceRepository(db)

		mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE tenant_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WillReturnError(gorm.ErrRecordNotFound)

		inv, err := repo.FindByIDForTenant(context.Background(), uuid.New(), uuid.New())

		assert.Nil(t, inv)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
