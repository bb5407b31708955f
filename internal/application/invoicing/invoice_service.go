package invoicing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tileshop/backend/internal/domain/catalog"
	"github.com/tileshop/backend/internal/domain/invoicing"
	"github.com/tileshop/backend/internal/domain/partner"
	"github.com/tileshop/backend/internal/domain/shared"
	"github.com/tileshop/backend/internal/infrastructure/telemetry"
)

// maxAllocationAttempts bounds the scan-and-insert loop when another
// writer takes the number first
const maxAllocationAttempts = 3

// ErrCustomerNotFound is returned when the invoice customer is missing or deleted
var ErrCustomerNotFound = shared.NotFound("Customer not found")

// EventPublisher publishes an aggregate's recorded events
type EventPublisher interface {
	PublishPending(ctx context.Context, aggregate shared.AggregateRoot) error
}

// InvoiceService handles invoice business operations
type InvoiceService struct {
	invoiceRepo  invoicing.InvoiceRepository
	customerRepo partner.CustomerRepository
	tileRepo     catalog.TileRepository
	locker       invoicing.SequenceLocker
	publisher    EventPublisher
	metrics      *telemetry.InvoiceMetrics
	logger       *zap.Logger
	loc          *time.Location
	now          func() time.Time
}

// InvoiceServiceOption configures an InvoiceService
type InvoiceServiceOption func(*InvoiceService)

// WithMetrics records invoice counters
func WithMetrics(m *telemetry.InvoiceMetrics) InvoiceServiceOption {
	return func(s *InvoiceService) { s.metrics = m }
}

// WithLogger sets the service logger
func WithLogger(l *zap.Logger) InvoiceServiceOption {
	return func(s *InvoiceService) { s.logger = l }
}

// WithLocation sets the zone used to pick the financial year
func WithLocation(loc *time.Location) InvoiceServiceOption {
	return func(s *InvoiceService) { s.loc = loc }
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) InvoiceServiceOption {
	return func(s *InvoiceService) { s.now = now }
}

// NewInvoiceService creates a new InvoiceService. publisher may be nil.
func NewInvoiceService(
	invoiceRepo invoicing.InvoiceRepository,
	customerRepo partner.CustomerRepository,
	tileRepo catalog.TileRepository,
	locker invoicing.SequenceLocker,
	publisher EventPublisher,
	opts ...InvoiceServiceOption,
) *InvoiceService {
	s := &InvoiceService{
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		tileRepo:     tileRepo,
		locker:       locker,
		publisher:    publisher,
		logger:       zap.NewNop(),
		loc:          time.Local,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create builds, numbers and stores a new invoice
func (s *InvoiceService) Create(ctx context.Context, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "create",
		telemetry.SpanAttrCustomerID, req.CustomerID.String(),
		telemetry.SpanAttrItemCount, len(req.LineItems),
	)
	defer span.End()

	customer, err := s.customerRepo.FindByID(ctx, req.CustomerID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		telemetry.RecordError(span, err)
		return nil, err
	}
	if customer.Deleted {
		return nil, ErrCustomerNotFound
	}

	items, err := s.buildItems(ctx, req.LineItems)
	if err != nil {
		return nil, err
	}

	date := s.now().In(s.loc)
	if req.InvoiceDate != nil {
		date = req.InvoiceDate.In(s.loc)
	}

	snapshot := invoicing.CustomerSnapshot{
		Name:    customer.Name,
		Phone:   customer.Phone,
		Address: customer.Address,
		GSTIN:   customer.GSTIN,
	}
	details := invoicing.Details{
		ReferenceName: req.ReferenceName,
		Consignee: invoicing.Consignee{
			Name:    req.ConsigneeName,
			Phone:   req.ConsigneePhone,
			Address: req.ConsigneeAddress,
		},
		OverallRemarks:   req.OverallRemarks,
		GSTPercent:       req.GSTPercent,
		Status:           invoicing.Status(req.Status),
		TransportCharges: req.TransportCharges,
		UnloadingCharges: req.UnloadingCharges,
		AmountPaid:       req.AmountPaid,
	}

	inv, err := invoicing.NewInvoice(customer.ID, snapshot, items, details, date)
	if err != nil {
		return nil, err
	}
	if err := s.allocateAndInsert(ctx, inv); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrInvoiceID, inv.ID.String(),
		telemetry.SpanAttrInvoiceNumber, inv.InvoiceNumber,
	)

	s.publish(ctx, inv)
	s.metrics.InvoiceCreated(ctx)

	response := ToInvoiceResponse(inv)
	return &response, nil
}

// Get finds an invoice by UUID or by invoice number
func (s *InvoiceService) Get(ctx context.Context, ref string) (*InvoiceResponse, error) {
	inv, err := s.Find(ctx, ref)
	if err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(inv)
	return &response, nil
}

// Find resolves ref to a non-deleted invoice aggregate
func (s *InvoiceService) Find(ctx context.Context, ref string) (*invoicing.Invoice, error) {
	var (
		inv *invoicing.Invoice
		err error
	)
	if id, parseErr := uuid.Parse(ref); parseErr == nil {
		inv, err = s.invoiceRepo.FindByID(ctx, id)
	} else {
		inv, err = s.invoiceRepo.FindByNumber(ctx, ref)
	}
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, invoicing.ErrInvoiceNotFound
		}
		return nil, err
	}
	if inv.Deleted {
		return nil, invoicing.ErrInvoiceNotFound
	}
	return inv, nil
}

// List retrieves a page of invoices
func (s *InvoiceService) List(ctx context.Context, filter InvoiceListFilter) ([]InvoiceResponse, int64, error) {
	domainFilter := filter.toDomain()

	invoices, err := s.invoiceRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.invoiceRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToInvoiceResponses(invoices), total, nil
}

// Update applies a partial change. Paid invoices are rejected.
func (s *InvoiceService) Update(ctx context.Context, ref string, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "update")
	defer span.End()

	inv, err := s.Find(ctx, ref)
	if err != nil {
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrInvoiceNumber, inv.InvoiceNumber)
	if err := inv.EnsureEditable(); err != nil {
		return nil, err
	}

	changes := invoicing.Changes{
		TransportCharges: req.TransportCharges,
		UnloadingCharges: req.UnloadingCharges,
		AmountPaid:       req.AmountPaid,
		ReferenceName:    req.ReferenceName,
		ConsigneeName:    req.ConsigneeName,
		ConsigneePhone:   req.ConsigneePhone,
		ConsigneeAddress: req.ConsigneeAddress,
		OverallRemarks:   req.OverallRemarks,
		GSTPercent:       req.GSTPercent,
	}
	if req.Status != nil {
		status := invoicing.Status(*req.Status)
		changes.Status = &status
	}
	if req.LineItems != nil {
		items, err := s.buildItems(ctx, req.LineItems)
		if err != nil {
			return nil, err
		}
		changes.Items = items
	}

	if err := inv.Update(changes); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, inv); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.publish(ctx, inv)

	response := ToInvoiceResponse(inv)
	return &response, nil
}

// Delete soft-deletes an invoice. Its number stays reserved.
func (s *InvoiceService) Delete(ctx context.Context, ref string) error {
	inv, err := s.Find(ctx, ref)
	if err != nil {
		return err
	}
	if err := inv.SoftDelete(); err != nil {
		return err
	}
	if err := s.invoiceRepo.SoftDelete(ctx, inv.ID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return invoicing.ErrInvoiceNotFound
		}
		return err
	}
	s.publish(ctx, inv)
	return nil
}

// buildItems validates and calculates line items. Items without coverage
// take coverage and box packing from the tile of the same size.
func (s *InvoiceService) buildItems(ctx context.Context, reqs []LineItemRequest) ([]invoicing.LineItem, error) {
	items := make([]invoicing.LineItem, 0, len(reqs))
	tiles := make(map[string]*catalog.Tile)

	for _, r := range reqs {
		item, err := invoicing.NewLineItem(r.toInput())
		if err != nil {
			return nil, err
		}

		if !item.Coverage.IsPositive() {
			tile, err := s.lookupTile(ctx, tiles, item.Size)
			if err != nil {
				return nil, err
			}
			if tile != nil {
				item.Coverage = tile.Coverage
				item.BoxPacking = tile.BoxPacking
			}
		}

		items = append(items, invoicing.CalculateLineItem(item, item.Coverage))
	}
	return items, nil
}

func (s *InvoiceService) lookupTile(ctx context.Context, cache map[string]*catalog.Tile, size string) (*catalog.Tile, error) {
	if tile, ok := cache[size]; ok {
		return tile, nil
	}
	tile, err := s.tileRepo.FindBySize(ctx, size)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("resolve coverage for size %q: %w", size, err)
		}
		tile = nil
	}
	cache[size] = tile
	return tile, nil
}

// allocateAndInsert picks the next number of the invoice's financial year
// under the sequence lock and inserts. A unique violation means a writer
// outside the lock won the number; the scan is repeated.
func (s *InvoiceService) allocateAndInsert(ctx context.Context, inv *invoicing.Invoice) error {
	fy := invoicing.FinancialYear(inv.InvoiceDate.In(s.loc))

	for attempt := 1; attempt <= maxAllocationAttempts; attempt++ {
		err := s.tryInsert(ctx, inv, fy)
		if err == nil {
			return nil
		}
		if !errors.Is(err, shared.ErrAlreadyExists) {
			return err
		}
		s.logger.Warn("Invoice number taken, retrying",
			zap.String("invoice_number", inv.InvoiceNumber),
			zap.Int("attempt", attempt),
		)
	}
	return invoicing.ErrSequenceBusy
}

func (s *InvoiceService) tryInsert(ctx context.Context, inv *invoicing.Invoice, fy string) (err error) {
	release, err := s.locker.Lock(ctx, fy)
	if err != nil {
		return err
	}
	defer func() {
		if relErr := release(context.WithoutCancel(ctx)); relErr != nil {
			s.logger.Warn("Failed to release sequence lock",
				zap.String("financial_year", fy),
				zap.Error(relErr),
			)
		}
	}()

	numbers, err := s.invoiceRepo.FindNumbersForFinancialYear(ctx, fy)
	if err != nil {
		return fmt.Errorf("scan invoice numbers for %s: %w", fy, err)
	}
	if err := inv.AssignNumber(invoicing.NextInvoiceNumber(numbers, fy)); err != nil {
		return err
	}
	return s.invoiceRepo.Create(ctx, inv)
}

func (s *InvoiceService) publish(ctx context.Context, inv *invoicing.Invoice) {
	if s.publisher == nil {
		inv.ClearDomainEvents()
		return
	}
	if err := s.publisher.PublishPending(ctx, inv); err != nil {
		s.logger.Warn("Failed to publish invoice events",
			zap.String("invoice_number", inv.InvoiceNumber),
			zap.Error(err),
		)
	}
}
