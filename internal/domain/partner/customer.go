package partner

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tileshop/backend/internal/domain/shared"
)

// Customer is a buyer the shop invoices. TotalPending is derived from the
// customer's invoices and is only written through SetTotalPending.
type Customer struct {
	shared.BaseAggregateRoot
	Name         string
	Phone        string
	Address      string
	GSTIN        string
	TotalPending decimal.Decimal
	Deleted      bool
}

// NewCustomer creates a new customer
func NewCustomer(name, phone, address, gstin string) (*Customer, error) {
	c := &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TotalPending:      decimal.Zero,
	}
	if err := c.apply(&name, &phone, &address, &gstin); err != nil {
		return nil, err
	}

	c.AddDomainEvent(NewCustomerCreatedEvent(c))
	return c, nil
}

// Update changes contact details. Nil arguments are left unchanged.
// Invoices already issued keep their own snapshot of these fields.
func (c *Customer) Update(name, phone, address, gstin *string) error {
	if c.Deleted {
		return shared.NotFound("Customer not found")
	}
	if err := c.apply(name, phone, address, gstin); err != nil {
		return err
	}

	c.Touch()
	c.AddDomainEvent(NewCustomerUpdatedEvent(c))
	return nil
}

// SetTotalPending stores the recomputed pending balance
func (c *Customer) SetTotalPending(total decimal.Decimal) {
	c.TotalPending = total
	c.UpdatedAt = time.Now()
}

// SoftDelete marks the customer deleted
func (c *Customer) SoftDelete() error {
	if c.Deleted {
		return shared.NotFound("Customer not found")
	}
	c.Deleted = true
	c.Touch()
	c.AddDomainEvent(NewCustomerDeletedEvent(c))
	return nil
}

func (c *Customer) apply(name, phone, address, gstin *string) error {
	if name != nil {
		n := strings.TrimSpace(*name)
		if n == "" {
			return shared.InvalidInput("Customer name cannot be empty")
		}
		if len(n) > 200 {
			return shared.InvalidInput("Customer name cannot exceed 200 characters")
		}
		c.Name = n
	}
	if phone != nil {
		p := strings.TrimSpace(*phone)
		if p == "" {
			return shared.InvalidInput("Customer phone cannot be empty")
		}
		if len(p) > 50 {
			return shared.InvalidInput("Customer phone cannot exceed 50 characters")
		}
		c.Phone = p
	}
	if address != nil {
		a := strings.TrimSpace(*address)
		if a == "" {
			return shared.InvalidInput("Customer address cannot be empty")
		}
		c.Address = a
	}
	if gstin != nil {
		g := strings.ToUpper(strings.TrimSpace(*gstin))
		if len(g) > 20 {
			return shared.InvalidInput("GSTIN cannot exceed 20 characters")
		}
		c.GSTIN = g
	}
	return nil
}
