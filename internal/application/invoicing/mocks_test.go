package invoicing

import (
	"context"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/tileshop/backend/internal/domain/catalog"
	"github.com/tileshop/backend/internal/domain/invoicing"
	"github.com/tileshop/backend/internal/domain/partner"
	"github.com/tileshop/backend/internal/domain/shared"
	"github.com/tileshop/backend/internal/infrastructure/printing"
)

// MockInvoiceRepository is a mock implementation of invoicing.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*invoicing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByNumber(ctx context.Context, number string) (*invoicing.Invoice, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]invoicing.Invoice, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]invoicing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) Create(ctx context.Context, invoice *invoicing.Invoice) error {
	return m.Called(ctx, invoice).Error(0)
}

func (m *MockInvoiceRepository) Save(ctx context.Context, invoice *invoicing.Invoice) error {
	return m.Called(ctx, invoice).Error(0)
}

func (m *MockInvoiceRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockInvoiceRepository) FindNumbersForFinancialYear(ctx context.Context, fy string) ([]string, error) {
	args := m.Called(ctx, fy)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockInvoiceRepository) SumPendingByCustomer(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockCustomerRepository is a mock implementation of partner.CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Customer, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	return m.Called(ctx, customer).Error(0)
}

func (m *MockCustomerRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCustomerRepository) UpdateTotalPending(ctx context.Context, id uuid.UUID, total decimal.Decimal) error {
	return m.Called(ctx, id, total).Error(0)
}

// MockTileRepository is a mock implementation of catalog.TileRepository
type MockTileRepository struct {
	mock.Mock
}

func (m *MockTileRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Tile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Tile), args.Error(1)
}

func (m *MockTileRepository) FindBySize(ctx context.Context, size string) (*catalog.Tile, error) {
	args := m.Called(ctx, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Tile), args.Error(1)
}

func (m *MockTileRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Tile, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Tile), args.Error(1)
}

func (m *MockTileRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTileRepository) Save(ctx context.Context, tile *catalog.Tile) error {
	return m.Called(ctx, tile).Error(0)
}

func (m *MockTileRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// countingLocker counts Lock and release calls
type countingLocker struct {
	mu       sync.Mutex
	locks    int
	releases int
	err      error
}

func (l *countingLocker) Lock(_ context.Context, _ string) (func(context.Context) error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	l.locks++
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.releases++
		return nil
	}, nil
}

type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) PublishPending(_ context.Context, aggregate shared.AggregateRoot) error {
	p.events = append(p.events, aggregate.GetDomainEvents()...)
	aggregate.ClearDomainEvents()
	return nil
}

func (p *recordingPublisher) types() []string {
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

// stubRenderer returns fixed bytes or a fixed error
type stubRenderer struct {
	data []byte
	err  error
	docs []*printing.InvoiceDocument
}

func (r *stubRenderer) Render(_ context.Context, doc *printing.InvoiceDocument) (*printing.RenderResult, error) {
	r.docs = append(r.docs, doc)
	if r.err != nil {
		return nil, r.err
	}
	return &printing.RenderResult{PDFData: r.data, PageCount: 1, Strategy: printing.StrategyOverlay}, nil
}

func (r *stubRenderer) Close() error { return nil }

// memoryArchive keeps stored PDFs in a map
type memoryArchive struct {
	files map[string][]byte
	err   error
}

func (a *memoryArchive) Store(_ context.Context, key string, data []byte) (*printing.StoreResult, error) {
	if a.err != nil {
		return nil, a.err
	}
	if a.files == nil {
		a.files = make(map[string][]byte)
	}
	a.files[key] = data
	return &printing.StoreResult{Key: key, Size: int64(len(data))}, nil
}

func (a *memoryArchive) Get(_ context.Context, key string) (io.ReadCloser, error) {
	return nil, printing.ErrArchiveNotFound
}

func (a *memoryArchive) Delete(_ context.Context, key string) error {
	delete(a.files, key)
	return nil
}
