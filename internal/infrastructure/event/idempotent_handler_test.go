package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bizbook/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubIdempotencyStore is an in-memory IdempotencyStore for tests
type stubIdempotencyStore struct {
	mu     sync.Mutex
	seen   map[string]bool
	failOn error
}

func newStubIdempotencyStore() *stubIdempotencyStore {
	return &stubIdempotencyStore{seen: make(map[string]bool)}
}

func (s *stubIdempotencyStore) MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failOn != nil {
		return false, s.failOn
	}
	if s.seen[eventID] {
		return false, nil
	}
	s.seen[eventID] = true
	return true, nil
}

func (s *stubIdempotencyStore) IsProcessed(ctx context.Context, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen[eventID], nil
}

func (s *stubIdempotencyStore) Close() error { return nil }

func TestIdempotentHandler_ProcessesNewEvent(t *testing.T) {
	inner := newTestHandler("InvoiceIssued")
	handler := NewIdempotentHandler(inner, newStubIdempotencyStore(), zap.NewNop())

	event := newTestEvent("InvoiceIssued", uuid.New())
	err := handler.Handle(context.Background(), event)

	require.NoError(t, err)
	assert.Len(t, inner.getHandled(), 1)
	assert.Equal(t, int64(1), handler.GetMetrics().Stats().EventsProcessed)
}

func TestIdempotentHandler_SkipsDuplicateEvent(t *testing.T) {
	inner := newTestHandler("InvoiceIssued")
	handler := NewIdempotentHandler(inner, newStubIdempotencyStore(), zap.NewNop())

	event := newTestEvent("InvoiceIssued", uuid.New())
	require.NoError(t, handler.Handle(context.Background(), event))
	require.NoError(t, handler.Handle(context.Background(), event))

	assert.Len(t, inner.getHandled(), 1)

	stats := handler.GetMetrics().Stats()
	assert.Equal(t, int64(1), stats.EventsProcessed)
	assert.Equal(t, int64(1), stats.EventsDuplicate)
}

func TestIdempotentHandler_DistinctEventsBothProcessed(t *testing.T) {
	inner := newTestHandler("InvoiceIssued")
	handler := NewIdempotentHandler(inner, newStubIdempotencyStore(), zap.NewNop())

	require.NoError(t, handler.Handle(context.Background(), newTestEvent("InvoiceIssued", uuid.New())))
	require.NoError(t, handler.Handle(context.Background(), newTestEvent("InvoiceIssued", uuid.New())))

	assert.Len(t, inner.getHandled(), 2)
}

func TestIdempotentHandler_StoreFailureStillProcesses(t *testing.T) {
	inner := newTestHandler("InvoiceIssued")
	store := newStubIdempotencyStore()
	store.failOn = errors.New("store unavailable")
	handler := NewIdempotentHandler(inner, store, zap.NewNop())

	err := handler.Handle(context.Background(), newTestEvent("InvoiceIssued", uuid.New()))

	require.NoError(t, err)
	assert.Len(t, inner.getHandled(), 1)
}

func TestIdempotentHandler_HandlerErrorPropagates(t *testing.T) {
	inner := newTestHandler("InvoiceIssued")
	inner.setError(errors.New("projection failed"))
	store := newStubIdempotencyStore()
	handler := NewIdempotentHandler(inner, store, zap.NewNop())

	event := newTestEvent("InvoiceIssued", uuid.New())
	err := handler.Handle(context.Background(), event)

	require.Error(t, err)
	assert.Equal(t, int64(1), handler.GetMetrics().Stats().EventsFailed)

	// The key stays marked so rapid redelivery is absorbed until the TTL
	processed, _ := store.IsProcessed(context.Background(), event.EventID().String())
	assert.True(t, processed)
}

func TestIdempotentHandler_Disabled(t *testing.T) {
	inner := newTestHandler("InvoiceIssued")
	handler := NewIdempotentHandler(inner, newStubIdempotencyStore(), zap.NewNop(),
		WithIdempotencyConfig(IdempotencyConfig{Enabled: false}),
	)

	event := newTestEvent("InvoiceIssued", uuid.New())
	require.NoError(t, handler.Handle(context.Background(), event))
	require.NoError(t, handler.Handle(context.Background(), event))

	// Every delivery reaches the inner handler when disabled
	assert.Len(t, inner.getHandled(), 2)
}

func TestIdempotentHandler_EventTypesDelegates(t *testing.T) {
	inner := newTestHandler("InvoiceIssued", "PaymentAdded")
	handler := NewIdempotentHandler(inner, newStubIdempotencyStore(), zap.NewNop())

	assert.Equal(t, []string{"InvoiceIssued", "PaymentAdded"}, handler.EventTypes())
	assert.Equal(t, inner, handler.GetWrappedHandler())
}

func TestWrapHandlersWithIdempotency(t *testing.T) {
	store := newStubIdempotencyStore()
	handlers := WrapHandlersWithIdempotency(
		[]shared.EventHandler{newTestHandler("A"), newTestHandler("B")},
		store,
		zap.NewNop(),
	)

	assert.Len(t, handlers, 2)
	for _, h := range handlers {
		_, ok := h.(*IdempotentHandler)
		assert.True(t, ok)
	}
}
