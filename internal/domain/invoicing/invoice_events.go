package invoicing

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tileshop/backend/internal/domain/shared"
)

// Event type constants
const (
	EventTypeInvoiceCreated = "InvoiceCreated"
	EventTypeInvoiceUpdated = "InvoiceUpdated"
	EventTypeInvoiceDeleted = "InvoiceDeleted"
)

// InvoiceEvent is implemented by every invoice event; subscribers use it to
// find the owning customer
type InvoiceEvent interface {
	shared.DomainEvent
	GetCustomerID() uuid.UUID
}

// InvoiceCreatedEvent is published after a new invoice is stored
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceID      uuid.UUID       `json:"invoice_id"`
	InvoiceNumber  string          `json:"invoice_number"`
	CustomerID     uuid.UUID       `json:"customer_id"`
	GrandTotal     decimal.Decimal `json:"grand_total"`
	PendingBalance decimal.Decimal `json:"pending_balance"`
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(inv *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCreated, AggregateTypeInvoice, inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerID:      inv.CustomerID,
		GrandTotal:      inv.GrandTotal,
		PendingBalance:  inv.PendingBalance,
	}
}

// GetCustomerID returns the owning customer
func (e *InvoiceCreatedEvent) GetCustomerID() uuid.UUID { return e.CustomerID }

// InvoiceUpdatedEvent is published after an invoice was recalculated
type InvoiceUpdatedEvent struct {
	shared.BaseDomainEvent
	InvoiceID      uuid.UUID       `json:"invoice_id"`
	InvoiceNumber  string          `json:"invoice_number"`
	CustomerID     uuid.UUID       `json:"customer_id"`
	Status         Status          `json:"status"`
	PendingBalance decimal.Decimal `json:"pending_balance"`
}

// NewInvoiceUpdatedEvent creates a new InvoiceUpdatedEvent
func NewInvoiceUpdatedEvent(inv *Invoice) *InvoiceUpdatedEvent {
	return &InvoiceUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceUpdated, AggregateTypeInvoice, inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerID:      inv.CustomerID,
		Status:          inv.Status,
		PendingBalance:  inv.PendingBalance,
	}
}

// GetCustomerID returns the owning customer
func (e *InvoiceUpdatedEvent) GetCustomerID() uuid.UUID { return e.CustomerID }

// InvoiceDeletedEvent is published after an invoice was soft-deleted
type InvoiceDeletedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID `json:"invoice_id"`
	InvoiceNumber string    `json:"invoice_number"`
	CustomerID    uuid.UUID `json:"customer_id"`
}

// NewInvoiceDeletedEvent creates a new InvoiceDeletedEvent
func NewInvoiceDeletedEvent(inv *Invoice) *InvoiceDeletedEvent {
	return &InvoiceDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceDeleted, AggregateTypeInvoice, inv.ID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerID:      inv.CustomerID,
	}
}

// GetCustomerID returns the owning customer
func (e *InvoiceDeletedEvent) GetCustomerID() uuid.UUID { return e.CustomerID }
