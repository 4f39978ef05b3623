package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/bizbook/backend/internal/domain/accounting"
	"github.com/bizbook/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestGormAccountRepository_GetOrCreate(t *testing.T) {
	t.Run("returns the existing account without inserting", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormAccountRepository(db)

		tenantID := uuid.New()
		accountID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "tenant_id", "code", "name", "type", "version"}).
			AddRow(accountID, tenantID, accounting.AccountCodeReceivable, "Accounts Receivable", "asset", 1)

		mock.ExpectQuery(`SELECT \* FROM "ledger_accounts" WHERE tenant_id = \$1 AND code = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, accounting.AccountCodeReceivable, 1).
			WillReturnRows(rows)

		account, err := repo.GetOrCreate(context.Background(), tenantID, accounting.AccountCodeReceivable, "Accounts Receivable", accounting.AccountTypeAsset)

		assert.NoError(t, err)
		assert.Equal(t, accountID, account.ID)
		assert.Equal(t, accounting.AccountCodeReceivable, account.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("creates the account on first use", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormAccountRepository(db)

		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "ledger_accounts" WHERE tenant_id = \$1 AND code = \$2 ORDER BY .* LIMIT .*`).
			WillReturnError(gorm.ErrRecordNotFound)
		mock.ExpectExec(`INSERT INTO "ledger_accounts"`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`SELECT \* FROM "ledger_accounts" WHERE tenant_id = \$1 AND code = \$2 ORDER BY .* LIMIT .*`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "code", "name", "type", "version"}).
				AddRow(uuid.New(), tenantID, accounting.AccountCodeSales, "Sales", "income", 1))

		account, err := repo.GetOrCreate(context.Background(), tenantID, accounting.AccountCodeSales, "Sales", accounting.AccountTypeIncome)

		assert.NoError(t, err)
		assert.Equal(t, accounting.AccountCodeSales, account.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("loser of a concurrent create resolves to the winner's row", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormAccountRepository(db)

		tenantID := uuid.New()
		winnerID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "ledger_accounts" WHERE tenant_id = \$1 AND code = \$2 ORDER BY .* LIMIT .*`).
			WillReturnError(gorm.ErrRecordNotFound)
		// ON CONFLICT DO NOTHING swallows the duplicate insert
		mock.ExpectExec(`INSERT INTO "ledger_accounts"`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT \* FROM "ledger_accounts" WHERE tenant_id = \$1 AND code = \$2 ORDER BY .* LIMIT .*`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "code", "name", "type", "version"}).
				AddRow(winnerID, tenantID, accounting.AccountCodeCash, "Cash", "asset", 1))

		account, err := repo.GetOrCreate(context.Background(), tenantID, accounting.AccountCodeCash, "Cash", accounting.AccountTypeAsset)

		assert.NoError(t, err)
		assert.Equal(t, winnerID, account.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormAccountRepository_FindByCode(t *testing.T) {
	t.Run("returns not found for an unknown code", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		repo := NewGormAccountRepository(db)

		mock.ExpectQuery(`SELECT \* FROM "ledger_accounts" WHERE tenant_id = \$1 AND code = \$2 ORDER BY .* LIMIT .*`).
			WillReturnError(gorm.ErrRecordNotFound)

		account, err := repo.FindByCode(context.Background(), uuid.New(), "9999")

		assert.Nil(t, account)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
