package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/bizbook/backend/internal/domain/invoice"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupAuditLogTestDB creates an in-memory SQLite database for testing
func setupAuditLogTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE invoice_audit_logs (
			id TEXT PRIMARY KEY,
			tenant_id TEXT NOT NULL,
			invoice_id TEXT NOT NULL,
			action TEXT NOT NULL,
			actor_id TEXT,
			details TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME NOT NULL
		)
	`).Error
	require.NoError(t, err)

	return db
}

func TestGormAuditLogRepository_SaveAndFindByInvoice(t *testing.T) {
	db := setupAuditLogTestDB(t)
	repo := NewGormAuditLogRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	invoiceID := uuid.New()
	actorID := uuid.New()

	first := invoice.NewAuditLog(tenantID, invoiceID, invoice.AuditActionCreated, `{"status":"draft"}`)
	first.CreatedAt = time.Now().Add(-time.Minute)
	second := invoice.NewAuditLog(tenantID, invoiceID, invoice.AuditActionUpdated, "").WithActor(actorID)

	require.NoError(t, repo.Save(ctx, first))
	require.NoError(t, repo.Save(ctx, second))

	trail, err := repo.FindByInvoice(ctx, tenantID, invoiceID)
	require.NoError(t, err)
	require.Len(t, trail, 2)

	assert.Equal(t, invoice.AuditActionCreated, trail[0].Action)
	assert.Equal(t, `{"status":"draft"}`, trail[0].Details)
	assert.Nil(t, trail[0].ActorID)

	assert.Equal(t, invoice.AuditActionUpdated, trail[1].Action)
	assert.Equal(t, "{}", trail[1].Details)
	require.NotNil(t, trail[1].ActorID)
	assert.Equal(t, actorID, *trail[1].ActorID)
}

func TestGormAuditLogRepository_FindByInvoice_ScopedByTenant(t *testing.T) {
	db := setupAuditLogTestDB(t)
	repo := NewGormAuditLogRepository(db)
	ctx := context.Background()

	invoiceID := uuid.New()
	tenantA := uuid.New()
	tenantB := uuid.New()

	require.NoError(t, repo.Save(ctx, invoice.NewAuditLog(tenantA, invoiceID, invoice.AuditActionCreated, "")))

	trail, err := repo.FindByInvoice(ctx, tenantB, invoiceID)
	require.NoError(t, err)
	assert.Empty(t, trail)
}
