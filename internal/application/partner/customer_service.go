package partner

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tileshop/backend/internal/domain/partner"
	"github.com/tileshop/backend/internal/domain/shared"
)

// ErrCustomerNotFound is returned for missing or soft-deleted customers
var ErrCustomerNotFound = shared.NotFound("Customer not found")

// PendingSource sums the outstanding balance of a customer's invoices
type PendingSource interface {
	SumPendingByCustomer(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error)
}

// EventPublisher publishes an aggregate's recorded events
type EventPublisher interface {
	PublishPending(ctx context.Context, aggregate shared.AggregateRoot) error
}

// CustomerService handles customer-related business operations
type CustomerService struct {
	customerRepo partner.CustomerRepository
	pending      PendingSource
	publisher    EventPublisher
}

// NewCustomerService creates a new CustomerService. publisher may be nil.
func NewCustomerService(customerRepo partner.CustomerRepository, pending PendingSource, publisher EventPublisher) *CustomerService {
	return &CustomerService{
		customerRepo: customerRepo,
		pending:      pending,
		publisher:    publisher,
	}
}

// Create creates a new customer
func (s *CustomerService) Create(ctx context.Context, req CreateCustomerRequest) (*CustomerResponse, error) {
	customer, err := partner.NewCustomer(req.Name, req.Phone, req.Address, req.GSTIN)
	if err != nil {
		return nil, err
	}
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}
	s.publish(ctx, customer)

	response := ToCustomerResponse(customer)
	return &response, nil
}

// GetByID retrieves a customer by ID
func (s *CustomerService) GetByID(ctx context.Context, id uuid.UUID) (*CustomerResponse, error) {
	customer, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToCustomerResponse(customer)
	return &response, nil
}

// List retrieves a page of customers
func (s *CustomerService) List(ctx context.Context, filter CustomerListFilter) ([]CustomerResponse, int64, error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
	}.Normalize()

	customers, err := s.customerRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.customerRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToCustomerResponses(customers), total, nil
}

// Update changes contact details. Existing invoices keep their snapshot.
func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, req UpdateCustomerRequest) (*CustomerResponse, error) {
	customer, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := customer.Update(req.Name, req.Phone, req.Address, req.GSTIN); err != nil {
		return nil, err
	}
	if err := s.customerRepo.Save(ctx, customer); err != nil {
		return nil, err
	}
	s.publish(ctx, customer)

	response := ToCustomerResponse(customer)
	return &response, nil
}

// Delete soft-deletes a customer. Their invoices stay readable.
func (s *CustomerService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.customerRepo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return ErrCustomerNotFound
		}
		return err
	}
	return nil
}

// RecalculatePending recomputes total_pending from the customer's invoices
func (s *CustomerService) RecalculatePending(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error) {
	total, err := s.pending.SumPendingByCustomer(ctx, customerID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum pending for customer %s: %w", customerID, err)
	}
	if err := s.customerRepo.UpdateTotalPending(ctx, customerID, total); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return decimal.Zero, ErrCustomerNotFound
		}
		return decimal.Zero, err
	}
	return total, nil
}

// ReconcileAll recomputes total_pending for every active customer and
// returns how many balances had drifted from their invoices.
func (s *CustomerService) ReconcileAll(ctx context.Context) (checked, corrected int, err error) {
	filter := shared.Filter{Page: 1, PageSize: 100, OrderBy: "created_at", OrderDir: "asc"}.Normalize()
	for {
		customers, err := s.customerRepo.FindAll(ctx, filter)
		if err != nil {
			return checked, corrected, err
		}
		for i := range customers {
			total, err := s.RecalculatePending(ctx, customers[i].ID)
			if errors.Is(err, ErrCustomerNotFound) {
				continue
			}
			if err != nil {
				return checked, corrected, err
			}
			checked++
			if !total.Equal(customers[i].TotalPending) {
				corrected++
			}
		}
		if len(customers) < filter.PageSize {
			return checked, corrected, nil
		}
		filter.Page++
	}
}

func (s *CustomerService) find(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	customer, err := s.customerRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return customer, nil
}

func (s *CustomerService) publish(ctx context.Context, customer *partner.Customer) {
	if s.publisher == nil {
		customer.ClearDomainEvents()
		return
	}
	// the in-memory bus only fails on a cancelled context; the write already happened
	_ = s.publisher.PublishPending(ctx, customer)
}
