package partner

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tileshop/backend/internal/domain/invoicing"
	"github.com/tileshop/backend/internal/domain/shared"
)

// PendingRecalculator recomputes a customer's derived balance
type PendingRecalculator interface {
	RecalculatePending(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error)
}

// PendingBalanceHandler keeps customer.total_pending in step with invoice
// changes. It runs synchronously on the in-memory bus.
type PendingBalanceHandler struct {
	recalculator PendingRecalculator
	logger       *zap.Logger
}

// NewPendingBalanceHandler creates a new PendingBalanceHandler
func NewPendingBalanceHandler(recalculator PendingRecalculator, logger *zap.Logger) *PendingBalanceHandler {
	return &PendingBalanceHandler{recalculator: recalculator, logger: logger}
}

// EventTypes returns the invoice events that change a balance
func (h *PendingBalanceHandler) EventTypes() []string {
	return []string{
		invoicing.EventTypeInvoiceCreated,
		invoicing.EventTypeInvoiceUpdated,
		invoicing.EventTypeInvoiceDeleted,
	}
}

// Handle recalculates the owning customer's pending balance
func (h *PendingBalanceHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	invoiceEvent, ok := event.(invoicing.InvoiceEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}

	total, err := h.recalculator.RecalculatePending(ctx, invoiceEvent.GetCustomerID())
	if err != nil {
		return err
	}
	h.logger.Debug("customer pending balance recalculated",
		zap.String("customer_id", invoiceEvent.GetCustomerID().String()),
		zap.String("event_type", event.EventType()),
		zap.String("total_pending", total.StringFixed(2)),
	)
	return nil
}

var _ shared.EventHandler = (*PendingBalanceHandler)(nil)
