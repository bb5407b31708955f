package invoicing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tileshop/backend/internal/domain/catalog"
	"github.com/tileshop/backend/internal/domain/invoicing"
	"github.com/tileshop/backend/internal/domain/partner"
	"github.com/tileshop/backend/internal/domain/shared"
)

var ist = time.FixedZone("IST", 5*3600+1800)

type serviceFixture struct {
	invoices  *MockInvoiceRepository
	customers *MockCustomerRepository
	tiles     *MockTileRepository
	locker    *countingLocker
	publisher *recordingPublisher
	service   *InvoiceService
}

func newServiceFixture(now time.Time) *serviceFixture {
	f := &serviceFixture{
		invoices:  new(MockInvoiceRepository),
		customers: new(MockCustomerRepository),
		tiles:     new(MockTileRepository),
		locker:    &countingLocker{},
		publisher: &recordingPublisher{},
	}
	f.service = NewInvoiceService(f.invoices, f.customers, f.tiles, f.locker, f.publisher,
		WithLocation(ist),
		WithClock(func() time.Time { return now }),
	)
	return f
}

func testCustomer(t *testing.T) *partner.Customer {
	t.Helper()
	c, err := partner.NewCustomer("Ravi Kumar", "9876543210", "12 MG Road, Vijayawada", "37abcde1234f1z5")
	require.NoError(t, err)
	c.ClearDomainEvents()
	return c
}

func testInvoice(t *testing.T, status invoicing.Status) *invoicing.Invoice {
	t.Helper()
	item, err := invoicing.NewLineItem(invoicing.LineItemInput{
		Location:    "Kitchen",
		TileName:    "Ivory Matt",
		Size:        "600x600",
		BoxQty:      2,
		RatePerSqft: decimal.NewFromInt(40),
		Coverage:    decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	item = invoicing.CalculateLineItem(item, item.Coverage)

	inv, err := invoicing.NewInvoice(uuid.New(), invoicing.CustomerSnapshot{Name: "Ravi Kumar"},
		[]invoicing.LineItem{item}, invoicing.Details{Status: status},
		time.Date(2025, 6, 10, 11, 0, 0, 0, ist))
	require.NoError(t, err)
	require.NoError(t, inv.AssignNumber("TTS / 004 / 2025-26"))
	inv.ClearDomainEvents()
	return inv
}

func TestInvoiceService_Create(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 30, 0, 0, ist)

	t.Run("numbers, calculates and publishes", func(t *testing.T) {
		f := newServiceFixture(now)
		customer := testCustomer(t)
		tile, err := catalog.NewTile("600x600", decimal.NewFromInt(15), 4)
		require.NoError(t, err)

		f.customers.On("FindByID", mock.Anything, customer.ID).Return(customer, nil)
		f.tiles.On("FindBySize", mock.Anything, "600x600").Return(tile, nil).Once()
		f.invoices.On("FindNumbersForFinancialYear", mock.Anything, "2025-26").
			Return([]string{"TTS / 001 / 2025-26", "TTS / 007 / 2025-26"}, nil)
		f.invoices.On("Create", mock.Anything, mock.AnythingOfType("*invoicing.Invoice")).Return(nil)

		resp, err := f.service.Create(context.Background(), CreateInvoiceRequest{
			CustomerID: customer.ID,
			LineItems: []LineItemRequest{
				{
					Location:        "Hall",
					TileName:        "Statuario",
					Size:            "600x600",
					BoxQty:          1,
					ExtraSqft:       decimal.NewFromInt(2),
					RatePerSqft:     decimal.NewFromInt(50),
					DiscountPercent: decimal.NewFromInt(10),
				},
				{TileName: "Statuario", Size: "600x600", BoxQty: 2, RatePerSqft: decimal.NewFromInt(50)},
			},
		})

		require.NoError(t, err)
		assert.Equal(t, "TTS / 008 / 2025-26", resp.InvoiceNumber)
		assert.Equal(t, "Ravi Kumar", resp.CustomerName)
		assert.Equal(t, "37ABCDE1234F1Z5", resp.CustomerGSTIN)
		assert.Equal(t, string(invoicing.StatusDraft), resp.Status)
		require.Len(t, resp.LineItems, 2)

		first := resp.LineItems[0]
		assert.True(t, first.Coverage.Equal(decimal.NewFromInt(15)))
		assert.Equal(t, 4, first.BoxPacking)
		assert.True(t, first.TotalSqft.Equal(decimal.NewFromInt(17)))
		assert.True(t, first.RatePerBox.Equal(decimal.NewFromInt(750)))
		assert.True(t, first.AmountBeforeDiscount.Equal(decimal.NewFromInt(850)))
		assert.True(t, first.DiscountAmount.Equal(decimal.NewFromInt(85)))
		assert.True(t, first.FinalAmount.Equal(decimal.NewFromInt(765)))

		// 765 + 30 sqft x 50
		assert.True(t, resp.Subtotal.Equal(decimal.NewFromInt(2265)))
		assert.True(t, resp.GSTAmount.Equal(decimal.Zero))

		assert.Equal(t, []string{invoicing.EventTypeInvoiceCreated}, f.publisher.types())
		assert.Equal(t, 1, f.locker.locks)
		assert.Equal(t, 1, f.locker.releases)
		f.tiles.AssertExpectations(t)
		f.invoices.AssertExpectations(t)
	})

	t.Run("explicit coverage skips tile lookup", func(t *testing.T) {
		f := newServiceFixture(now)
		customer := testCustomer(t)
		f.customers.On("FindByID", mock.Anything, customer.ID).Return(customer, nil)
		f.invoices.On("FindNumbersForFinancialYear", mock.Anything, "2025-26").Return([]string{}, nil)
		f.invoices.On("Create", mock.Anything, mock.Anything).Return(nil)

		resp, err := f.service.Create(context.Background(), CreateInvoiceRequest{
			CustomerID: customer.ID,
			LineItems: []LineItemRequest{{
				TileName:   "Onyx",
				Size:       "800x1600",
				BoxQty:     2,
				Coverage:   decimal.NewFromInt(10),
				RatePerBox: decimal.NewFromInt(200),
			}},
		})

		require.NoError(t, err)
		assert.Equal(t, "TTS / 001 / 2025-26", resp.InvoiceNumber)
		assert.True(t, resp.LineItems[0].RatePerSqft.Equal(decimal.NewFromInt(20)))
		assert.True(t, resp.LineItems[0].FinalAmount.Equal(decimal.NewFromInt(400)))
		f.tiles.AssertNotCalled(t, "FindBySize", mock.Anything, mock.Anything)
	})

	t.Run("unknown size keeps zero coverage", func(t *testing.T) {
		f := newServiceFixture(now)
		customer := testCustomer(t)
		f.customers.On("FindByID", mock.Anything, customer.ID).Return(customer, nil)
		f.tiles.On("FindBySize", mock.Anything, "custom").Return(nil, shared.ErrNotFound)
		f.invoices.On("FindNumbersForFinancialYear", mock.Anything, "2025-26").Return([]string{}, nil)
		f.invoices.On("Create", mock.Anything, mock.Anything).Return(nil)

		resp, err := f.service.Create(context.Background(), CreateInvoiceRequest{
			CustomerID: customer.ID,
			LineItems: []LineItemRequest{{
				TileName:    "Loose",
				Size:        "custom",
				ExtraSqft:   decimal.NewFromInt(12),
				RatePerSqft: decimal.NewFromInt(30),
			}},
		})

		require.NoError(t, err)
		assert.True(t, resp.LineItems[0].TotalSqft.Equal(decimal.NewFromInt(12)))
		assert.True(t, resp.LineItems[0].RatePerBox.IsZero())
		assert.True(t, resp.LineItems[0].FinalAmount.Equal(decimal.NewFromInt(360)))
	})

	t.Run("march date belongs to previous financial year", func(t *testing.T) {
		f := newServiceFixture(now)
		customer := testCustomer(t)
		date := time.Date(2026, 3, 31, 23, 0, 0, 0, ist)
		f.customers.On("FindByID", mock.Anything, customer.ID).Return(customer, nil)
		f.invoices.On("FindNumbersForFinancialYear", mock.Anything, "2025-26").Return([]string{"TTS / 041 / 2025-26"}, nil)
		f.invoices.On("Create", mock.Anything, mock.Anything).Return(nil)

		resp, err := f.service.Create(context.Background(), CreateInvoiceRequest{
			CustomerID:  customer.ID,
			InvoiceDate: &date,
		})

		require.NoError(t, err)
		assert.Equal(t, "TTS / 042 / 2025-26", resp.InvoiceNumber)
	})

	t.Run("retries after losing the number", func(t *testing.T) {
		f := newServiceFixture(now)
		customer := testCustomer(t)
		f.customers.On("FindByID", mock.Anything, customer.ID).Return(customer, nil)
		f.invoices.On("FindNumbersForFinancialYear", mock.Anything, "2025-26").Return([]string{}, nil).Once()
		f.invoices.On("FindNumbersForFinancialYear", mock.Anything, "2025-26").Return([]string{"TTS / 001 / 2025-26"}, nil).Once()
		f.invoices.On("Create", mock.Anything, mock.Anything).Return(shared.ErrAlreadyExists).Once()
		f.invoices.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

		resp, err := f.service.Create(context.Background(), CreateInvoiceRequest{CustomerID: customer.ID})

		require.NoError(t, err)
		assert.Equal(t, "TTS / 002 / 2025-26", resp.InvoiceNumber)
		assert.Equal(t, 2, f.locker.locks)
		assert.Equal(t, 2, f.locker.releases)
		assert.Len(t, f.publisher.events, 1)
	})

	t.Run("gives up after bounded attempts", func(t *testing.T) {
		f := newServiceFixture(now)
		customer := testCustomer(t)
		f.customers.On("FindByID", mock.Anything, customer.ID).Return(customer, nil)
		f.invoices.On("FindNumbersForFinancialYear", mock.Anything, "2025-26").Return([]string{}, nil)
		f.invoices.On("Create", mock.Anything, mock.Anything).Return(shared.ErrAlreadyExists)

		_, err := f.service.Create(context.Background(), CreateInvoiceRequest{CustomerID: customer.ID})

		assert.ErrorIs(t, err, invoicing.ErrSequenceBusy)
		f.invoices.AssertNumberOfCalls(t, "Create", maxAllocationAttempts)
		assert.Equal(t, f.locker.locks, f.locker.releases)
		assert.Empty(t, f.publisher.events)
	})

	t.Run("lock failure is returned", func(t *testing.T) {
		f := newServiceFixture(now)
		f.locker.err = invoicing.ErrSequenceBusy
		customer := testCustomer(t)
		f.customers.On("FindByID", mock.Anything, customer.ID).Return(customer, nil)

		_, err := f.service.Create(context.Background(), CreateInvoiceRequest{CustomerID: customer.ID})

		assert.ErrorIs(t, err, invoicing.ErrSequenceBusy)
		f.invoices.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("missing customer", func(t *testing.T) {
		f := newServiceFixture(now)
		id := uuid.New()
		f.customers.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

		_, err := f.service.Create(context.Background(), CreateInvoiceRequest{CustomerID: id})

		var domainErr *shared.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, "NOT_FOUND", domainErr.Code)
		assert.Equal(t, "Customer not found", domainErr.Message)
	})

	t.Run("invalid line item", func(t *testing.T) {
		f := newServiceFixture(now)
		customer := testCustomer(t)
		f.customers.On("FindByID", mock.Anything, customer.ID).Return(customer, nil)

		_, err := f.service.Create(context.Background(), CreateInvoiceRequest{
			CustomerID: customer.ID,
			LineItems: []LineItemRequest{{
				TileName:        "Bad",
				Size:            "600x600",
				Coverage:        decimal.NewFromInt(10),
				DiscountPercent: decimal.NewFromInt(120),
			}},
		})

		assert.ErrorIs(t, err, shared.ErrInvalidInput)
		assert.Zero(t, f.locker.locks)
	})
}

func TestInvoiceService_Find(t *testing.T) {
	f := newServiceFixture(time.Now())
	inv := testInvoice(t, invoicing.StatusDraft)

	t.Run("by uuid", func(t *testing.T) {
		f.invoices.On("FindByID", mock.Anything, inv.ID).Return(inv, nil).Once()
		got, err := f.service.Get(context.Background(), inv.ID.String())
		require.NoError(t, err)
		assert.Equal(t, inv.InvoiceNumber, got.InvoiceNumber)
	})

	t.Run("by number", func(t *testing.T) {
		f.invoices.On("FindByNumber", mock.Anything, "TTS / 004 / 2025-26").Return(inv, nil).Once()
		got, err := f.service.Get(context.Background(), "TTS / 004 / 2025-26")
		require.NoError(t, err)
		assert.Equal(t, inv.ID, got.ID)
	})

	t.Run("missing", func(t *testing.T) {
		f.invoices.On("FindByNumber", mock.Anything, "TTS / 999 / 2025-26").Return(nil, shared.ErrNotFound).Once()
		_, err := f.service.Get(context.Background(), "TTS / 999 / 2025-26")
		assert.ErrorIs(t, err, invoicing.ErrInvoiceNotFound)
	})
}

func TestInvoiceService_List(t *testing.T) {
	f := newServiceFixture(time.Now())
	inv := testInvoice(t, invoicing.StatusSent)
	customerID := uuid.New().String()

	matchFilter := mock.MatchedBy(func(filter shared.Filter) bool {
		return filter.Page == 2 && filter.PageSize == 10 &&
			filter.Filters["status"] == "Sent" && filter.Filters["customer_id"] == customerID &&
			filter.Search == "ravi"
	})
	f.invoices.On("FindAll", mock.Anything, matchFilter).Return([]invoicing.Invoice{*inv}, nil)
	f.invoices.On("Count", mock.Anything, matchFilter).Return(int64(11), nil)

	got, total, err := f.service.List(context.Background(), InvoiceListFilter{
		Search:     "ravi",
		Status:     "Sent",
		CustomerID: customerID,
		Page:       2,
		PageSize:   10,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(11), total)
	require.Len(t, got, 1)
	assert.Equal(t, inv.InvoiceNumber, got[0].InvoiceNumber)
}

func TestInvoiceService_Update(t *testing.T) {
	t.Run("paid invoice is immutable", func(t *testing.T) {
		f := newServiceFixture(time.Now())
		inv := testInvoice(t, invoicing.StatusPaid)
		f.invoices.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)

		remarks := "changed"
		_, err := f.service.Update(context.Background(), inv.ID.String(), UpdateInvoiceRequest{OverallRemarks: &remarks})

		assert.ErrorIs(t, err, invoicing.ErrPaidInvoiceImmutable)
		assert.ErrorIs(t, err, shared.ErrForbidden)
		f.invoices.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		assert.Empty(t, f.publisher.events)
	})

	t.Run("recalculates items and totals", func(t *testing.T) {
		f := newServiceFixture(time.Now())
		inv := testInvoice(t, invoicing.StatusDraft)
		f.invoices.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
		f.invoices.On("Save", mock.Anything, inv).Return(nil)

		gst := decimal.NewFromInt(18)
		paid := decimal.NewFromInt(100)
		transport := decimal.NewFromInt(50)
		status := "Sent"
		resp, err := f.service.Update(context.Background(), inv.ID.String(), UpdateInvoiceRequest{
			GSTPercent:       &gst,
			AmountPaid:       &paid,
			TransportCharges: &transport,
			Status:           &status,
			LineItems: []LineItemRequest{{
				TileName:    "Ivory Matt",
				Size:        "600x600",
				BoxQty:      5,
				Coverage:    decimal.NewFromInt(10),
				RatePerSqft: decimal.NewFromInt(10),
			}},
		})

		require.NoError(t, err)
		assert.True(t, resp.Subtotal.Equal(decimal.NewFromInt(500)))
		assert.True(t, resp.GSTAmount.Equal(decimal.NewFromInt(90)))
		assert.True(t, resp.GrandTotal.Equal(decimal.NewFromInt(640)))
		assert.True(t, resp.PendingBalance.Equal(decimal.NewFromInt(540)))
		assert.Equal(t, "Sent", resp.Status)
		assert.Equal(t, []string{invoicing.EventTypeInvoiceUpdated}, f.publisher.types())
	})

	t.Run("absent items are kept", func(t *testing.T) {
		f := newServiceFixture(time.Now())
		inv := testInvoice(t, invoicing.StatusDraft)
		f.invoices.On("FindByID", mock.Anything, inv.ID).Return(inv, nil)
		f.invoices.On("Save", mock.Anything, inv).Return(nil)

		ref := "Site 4"
		resp, err := f.service.Update(context.Background(), inv.ID.String(), UpdateInvoiceRequest{ReferenceName: &ref})

		require.NoError(t, err)
		assert.Len(t, resp.LineItems, 1)
		assert.Equal(t, "Site 4", resp.ReferenceName)
		assert.True(t, resp.Subtotal.Equal(decimal.NewFromInt(800)))
	})
}

func TestInvoiceService_Delete(t *testing.T) {
	f := newServiceFixture(time.Now())
	inv := testInvoice(t, invoicing.StatusDraft)
	f.invoices.On("FindByNumber", mock.Anything, inv.InvoiceNumber).Return(inv, nil)
	f.invoices.On("SoftDelete", mock.Anything, inv.ID).Return(nil)

	require.NoError(t, f.service.Delete(context.Background(), inv.InvoiceNumber))

	assert.True(t, inv.Deleted)
	assert.Equal(t, []string{invoicing.EventTypeInvoiceDeleted}, f.publisher.types())
	f.invoices.AssertExpectations(t)
}
