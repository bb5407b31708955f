package invoicing

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tileshop/backend/internal/domain/shared"
)

// InvoiceRepository defines the interface for invoice persistence.
// Lookups never return soft-deleted invoices.
type InvoiceRepository interface {
	// FindByID finds an invoice with its line items
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByNumber finds an invoice by its "TTS / NNN / FY" number
	FindByNumber(ctx context.Context, number string) (*Invoice, error)

	// FindAll finds invoices matching the filter. Supported filter keys are
	// "status" and "customer_id"; Search matches number and customer name.
	FindAll(ctx context.Context, filter shared.Filter) ([]Invoice, error)

	// Count counts invoices matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Create inserts a new invoice. A duplicate invoice number yields
	// shared.ErrAlreadyExists.
	Create(ctx context.Context, invoice *Invoice) error

	// Save updates an existing invoice and replaces its line items
	Save(ctx context.Context, invoice *Invoice) error

	// SoftDelete flags an invoice as deleted
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// FindNumbersForFinancialYear returns every invoice number of the given
	// financial year, soft-deleted ones included so numbers are never reused
	FindNumbersForFinancialYear(ctx context.Context, fy string) ([]string, error)

	// SumPendingByCustomer sums pending_balance over the customer's
	// non-deleted invoices
	SumPendingByCustomer(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error)
}
