package event

import (
	"context"
	"testing"

	"github.com/bizbook/backend/internal/domain/invoice"
	"github.com/bizbook/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestActivityLogHandler_Handle(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	handler := NewActivityLogHandler(zap.New(core))

	tenantID := uuid.New()
	event := &invoice.InvoiceIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(
			invoice.EventTypeInvoiceIssued, invoice.AggregateTypeInvoice, uuid.New(), tenantID),
		InvoiceNumber: "INV-000042",
	}

	require.NoError(t, handler.Handle(context.Background(), event))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "event delivered", entries[0].Message)

	fields := entries[0].ContextMap()
	assert.Equal(t, invoice.EventTypeInvoiceIssued, fields["event_type"])
	assert.Equal(t, tenantID.String(), fields["tenant_id"])
}

func TestActivityLogHandler_EventTypes(t *testing.T) {
	handler := NewActivityLogHandler(zap.NewNop())
	assert.Empty(t, handler.EventTypes())
}
