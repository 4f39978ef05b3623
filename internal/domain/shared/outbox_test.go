package shared

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOutboxEntry() *OutboxEntry {
	event := NewBaseDomainEvent("invoice.created", "Invoice", uuid.New(), uuid.New())
	return NewOutboxEntry(event.TenantID(), &event, []byte(`{}`))
}

func TestNewOutboxEntry(t *testing.T) {
	entry := newTestOutboxEntry()

	assert.Equal(t, OutboxStatusPending, entry.Status)
	assert.Equal(t, "invoice.created", entry.EventType)
	assert.Equal(t, "Invoice", entry.AggregateType)
	assert.Equal(t, 0, entry.RetryCount)
	assert.Equal(t, DefaultMaxRetries, entry.MaxRetries)
}

func TestOutboxEntry_MarkProcessing(t *testing.T) {
	entry := newTestOutboxEntry()

	require.NoError(t, entry.MarkProcessing())
	assert.Equal(t, OutboxStatusProcessing, entry.Status)

	// Processing entries cannot be marked processing again
	assert.Error(t, entry.MarkProcessing())

	entry.MarkSent()
	assert.Error(t, entry.MarkProcessing())
}

func TestOutboxEntry_MarkSent(t *testing.T) {
	entry := newTestOutboxEntry()
	entry.MarkSent()

	assert.Equal(t, OutboxStatusSent, entry.Status)
	require.NotNil(t, entry.ProcessedAt)
}

func TestOutboxEntry_MarkFailed_Backoff(t *testing.T) {
	entry := newTestOutboxEntry()

	entry.MarkFailed("consumer unavailable")
	assert.Equal(t, OutboxStatusFailed, entry.Status)
	assert.Equal(t, 1, entry.RetryCount)
	assert.Equal(t, "consumer unavailable", entry.LastError)
	require.NotNil(t, entry.NextRetryAt)
	assert.True(t, entry.CanRetry())
}

func TestOutboxEntry_DeadLetterAfterMaxRetries(t *testing.T) {
	entry := newTestOutboxEntry()

	for i := 0; i < DefaultMaxRetries; i++ {
		entry.MarkFailed("still failing")
	}

	assert.True(t, entry.IsDead())
	assert.False(t, entry.CanRetry())

	require.NoError(t, entry.ResetForRetry())
	assert.Equal(t, OutboxStatusPending, entry.Status)
	assert.Equal(t, 0, entry.RetryCount)
	assert.Empty(t, entry.LastError)
}

func TestOutboxEntry_ResetForRetry_OnlyDead(t *testing.T) {
	entry := newTestOutboxEntry()
	assert.Error(t, entry.ResetForRetry())
}
