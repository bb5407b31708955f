package partner

import (
	"github.com/google/uuid"
	"github.com/tileshop/backend/internal/domain/shared"
)

const AggregateTypeCustomer = "Customer"

const (
	EventTypeCustomerCreated = "CustomerCreated"
	EventTypeCustomerUpdated = "CustomerUpdated"
	EventTypeCustomerDeleted = "CustomerDeleted"
)

// CustomerEvent is raised for every change to a customer's record. Pending
// balance changes are not events; they follow the invoice events instead.
type CustomerEvent struct {
	shared.BaseDomainEvent
	CustomerID uuid.UUID `json:"customer_id"`
	Name       string    `json:"name,omitempty"`
	Phone      string    `json:"phone,omitempty"`
}

func newCustomerEvent(eventType string, c *Customer, withContact bool) *CustomerEvent {
	e := &CustomerEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, AggregateTypeCustomer, c.ID),
		CustomerID:      c.ID,
	}
	if withContact {
		e.Name = c.Name
		e.Phone = c.Phone
	}
	return e
}

func NewCustomerCreatedEvent(c *Customer) *CustomerEvent {
	return newCustomerEvent(EventTypeCustomerCreated, c, true)
}

func NewCustomerUpdatedEvent(c *Customer) *CustomerEvent {
	return newCustomerEvent(EventTypeCustomerUpdated, c, true)
}

// NewCustomerDeletedEvent carries only the ID of the soft-deleted customer
func NewCustomerDeletedEvent(c *Customer) *CustomerEvent {
	return newCustomerEvent(EventTypeCustomerDeleted, c, false)
}
