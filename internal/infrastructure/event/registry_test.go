package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandlerRegistry_Register(t *testing.T) {
	registry := NewHandlerRegistry()

	handler := newTestHandler("InvoiceIssued")
	registry.Register(handler, "InvoiceIssued")

	handlers := registry.GetHandlers("InvoiceIssued")
	assert.Len(t, handlers, 1)
}

func TestHandlerRegistry_Register_MultipleTypes(t *testing.T) {
	registry := NewHandlerRegistry()

	handler := newTestHandler("InvoiceIssued", "InvoiceCancelled")
	registry.Register(handler, "InvoiceIssued", "InvoiceCancelled")

	assert.Len(t, registry.GetHandlers("InvoiceIssued"), 1)
	assert.Len(t, registry.GetHandlers("InvoiceCancelled"), 1)
	assert.Empty(t, registry.GetHandlers("PaymentAdded"))
}

func TestHandlerRegistry_Wildcard(t *testing.T) {
	registry := NewHandlerRegistry()

	wildcard := newTestHandler()
	typed := newTestHandler("InvoiceIssued")
	registry.Register(wildcard)
	registry.Register(typed, "InvoiceIssued")

	// Typed handlers come first, wildcards are appended
	handlers := registry.GetHandlers("InvoiceIssued")
	assert.Len(t, handlers, 2)

	handlers = registry.GetHandlers("SomethingElse")
	assert.Len(t, handlers, 1)
}

func TestHandlerRegistry_Unregister(t *testing.T) {
	registry := NewHandlerRegistry()

	handler := newTestHandler("InvoiceIssued")
	registry.Register(handler, "InvoiceIssued", "InvoiceCancelled")

	registry.Unregister(handler)

	assert.Empty(t, registry.GetHandlers("InvoiceIssued"))
	assert.Empty(t, registry.GetHandlers("InvoiceCancelled"))
}

func TestHandlerRegistry_Unregister_Wildcard(t *testing.T) {
	registry := NewHandlerRegistry()

	wildcard := newTestHandler()
	registry.Register(wildcard)
	registry.Unregister(wildcard)

	assert.Empty(t, registry.GetHandlers("AnyEventType"))
}

func TestHandlerRegistry_GetAllHandlers_Deduplicates(t *testing.T) {
	registry := NewHandlerRegistry()

	handler := newTestHandler("InvoiceIssued", "InvoiceCancelled")
	registry.Register(handler, "InvoiceIssued", "InvoiceCancelled")

	all := registry.GetAllHandlers()
	assert.Len(t, all, 1)
}
