package event

import (
	"github.com/bizbook/backend/internal/domain/inventory"
	"github.com/bizbook/backend/internal/domain/invoice"
	"github.com/bizbook/backend/internal/domain/partner"
)

// RegisterAllEvents registers every domain event type with the serializer.
// The outbox processor needs these registrations to deserialize payloads
// read back from the outbox table.
func RegisterAllEvents(serializer *EventSerializer) {
	// Invoice lifecycle events
	serializer.Register(invoice.EventTypeInvoiceCreated, &invoice.InvoiceCreatedEvent{})
	serializer.Register(invoice.EventTypeInvoiceIssued, &invoice.InvoiceIssuedEvent{})
	serializer.Register(invoice.EventTypeInvoiceUpdated, &invoice.InvoiceUpdatedEvent{})
	serializer.Register(invoice.EventTypeInvoiceCancelled, &invoice.InvoiceCancelledEvent{})
	serializer.Register(invoice.EventTypePaymentAdded, &invoice.PaymentAddedEvent{})
	serializer.Register(invoice.EventTypeDraftConverted, &invoice.DraftConvertedEvent{})

	// Stock movement events
	serializer.Register(inventory.EventTypeStockReduced, &inventory.StockReducedEvent{})
	serializer.Register(inventory.EventTypeStockRestored, &inventory.StockRestoredEvent{})

	// Customer events
	serializer.Register(partner.EventTypeCustomerCreated, &partner.CustomerCreatedEvent{})
	serializer.Register(partner.EventTypeCustomerUpdated, &partner.CustomerUpdatedEvent{})
}
