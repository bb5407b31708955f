package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tileshop/backend/internal/domain/shared"
)

// CustomerRepository defines the interface for customer persistence.
// Lookups never return soft-deleted customers.
type CustomerRepository interface {
	// FindByID finds a non-deleted customer by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)

	// FindAll finds non-deleted customers matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Customer, error)

	// Count counts non-deleted customers matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Save creates or updates a customer
	Save(ctx context.Context, customer *Customer) error

	// SoftDelete flags a customer as deleted
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// UpdateTotalPending writes the derived pending balance
	UpdateTotalPending(ctx context.Context, id uuid.UUID, total decimal.Decimal) error
}
