package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tileshop/backend/internal/domain/invoicing"
	"github.com/tileshop/backend/internal/domain/shared"
)

func testLineItem(t *testing.T, location, size string, boxes int) invoicing.LineItem {
	t.Helper()
	item, err := invoicing.NewLineItem(invoicing.LineItemInput{
		Location:    location,
		Size:        size,
		BoxQty:      boxes,
		RatePerSqft: decimal.NewFromInt(50),
	})
	require.NoError(t, err)
	return invoicing.CalculateLineItem(item, decimal.NewFromInt(10))
}

func newTestInvoice(t *testing.T, customerID uuid.UUID, number string, paid int64, items ...invoicing.LineItem) *invoicing.Invoice {
	t.Helper()
	inv, err := invoicing.NewInvoice(customerID,
		invoicing.CustomerSnapshot{Name: "Ravi Traders", Phone: "9876543210", Address: "12 MG Road"},
		items,
		invoicing.Details{ReferenceName: "Site A", AmountPaid: decimal.NewFromInt(paid)},
		time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	require.NoError(t, inv.AssignNumber(number))
	return inv
}

func TestGormInvoiceRepository_CreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewGormInvoiceRepository(newTestDatabase(t).DB)
	customerID := uuid.New()

	inv := newTestInvoice(t, customerID, "TTS / 001 / 2025-26", 0,
		testLineItem(t, "Kitchen", "2x2", 3),
		testLineItem(t, "Hall", "4x2", 1),
		testLineItem(t, "Kitchen", "1x1", 2),
	)
	require.NoError(t, repo.Create(ctx, inv))

	found, err := repo.FindByNumber(ctx, "TTS / 001 / 2025-26")
	require.NoError(t, err)
	assert.Equal(t, inv.ID, found.ID)
	assert.Equal(t, customerID, found.CustomerID)
	assert.Equal(t, "Ravi Traders", found.Customer.Name)
	assert.Equal(t, invoicing.StatusDraft, found.Status)
	require.Len(t, found.Items, 3)
	assert.Equal(t, "2x2", found.Items[0].Size)
	assert.Equal(t, "4x2", found.Items[1].Size)
	assert.Equal(t, "1x1", found.Items[2].Size)
	assert.True(t, found.GrandTotal.Equal(decimal.NewFromInt(3000)), found.GrandTotal.String())

	byID, err := repo.FindByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "TTS / 001 / 2025-26", byID.InvoiceNumber)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormInvoiceRepository_DuplicateNumber(t *testing.T) {
	ctx := context.Background()
	repo := NewGormInvoiceRepository(newTestDatabase(t).DB)
	customerID := uuid.New()

	require.NoError(t, repo.Create(ctx, newTestInvoice(t, customerID, "TTS / 001 / 2025-26", 0)))
	err := repo.Create(ctx, newTestInvoice(t, customerID, "TTS / 001 / 2025-26", 0))
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestGormInvoiceRepository_FindNumbersForFinancialYear(t *testing.T) {
	ctx := context.Background()
	repo := NewGormInvoiceRepository(newTestDatabase(t).DB)
	customerID := uuid.New()

	first := newTestInvoice(t, customerID, "TTS / 001 / 2025-26", 0)
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, newTestInvoice(t, customerID, "TTS / 002 / 2025-26", 0)))
	require.NoError(t, repo.Create(ctx, newTestInvoice(t, customerID, "TTS / 009 / 2024-25", 0)))
	require.NoError(t, repo.SoftDelete(ctx, first.ID))

	numbers, err := repo.FindNumbersForFinancialYear(ctx, "2025-26")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"TTS / 001 / 2025-26", "TTS / 002 / 2025-26"}, numbers)
	assert.Equal(t, "TTS / 003 / 2025-26", invoicing.NextInvoiceNumber(numbers, "2025-26"))
}

func TestGormInvoiceRepository_SumPendingByCustomer(t *testing.T) {
	ctx := context.Background()
	repo := NewGormInvoiceRepository(newTestDatabase(t).DB)
	customerID := uuid.New()

	total, err := repo.SumPendingByCustomer(ctx, customerID)
	require.NoError(t, err)
	assert.True(t, total.IsZero())

	// 1500 grand total each
	a := newTestInvoice(t, customerID, "TTS / 001 / 2025-26", 500, testLineItem(t, "", "2x2", 3))
	b := newTestInvoice(t, customerID, "TTS / 002 / 2025-26", 0, testLineItem(t, "", "2x2", 3))
	c := newTestInvoice(t, customerID, "TTS / 003 / 2025-26", 0, testLineItem(t, "", "2x2", 3))
	other := newTestInvoice(t, uuid.New(), "TTS / 004 / 2025-26", 0, testLineItem(t, "", "2x2", 3))
	for _, inv := range []*invoicing.Invoice{a, b, c, other} {
		require.NoError(t, repo.Create(ctx, inv))
	}
	require.NoError(t, repo.SoftDelete(ctx, c.ID))

	total, err = repo.SumPendingByCustomer(ctx, customerID)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(2500)), total.String())
}

func TestGormInvoiceRepository_Save(t *testing.T) {
	ctx := context.Background()
	repo := NewGormInvoiceRepository(newTestDatabase(t).DB)

	keep := testLineItem(t, "Hall", "2x2", 1)
	drop := testLineItem(t, "Hall", "4x4", 1)
	inv := newTestInvoice(t, uuid.New(), "TTS / 001 / 2025-26", 0, keep, drop)
	require.NoError(t, repo.Create(ctx, inv))

	stale, err := repo.FindByID(ctx, inv.ID)
	require.NoError(t, err)

	added := testLineItem(t, "Bath", "1x1", 4)
	status := invoicing.StatusSent
	require.NoError(t, inv.Update(invoicing.Changes{
		Items:  []invoicing.LineItem{added, keep},
		Status: &status,
	}))
	require.NoError(t, repo.Save(ctx, inv))

	found, err := repo.FindByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, invoicing.StatusSent, found.Status)
	assert.Equal(t, 2, found.Version)
	require.Len(t, found.Items, 2)
	assert.Equal(t, added.ID, found.Items[0].ID)
	assert.Equal(t, keep.ID, found.Items[1].ID)
	assert.True(t, found.Subtotal.Equal(decimal.NewFromInt(2500)), found.Subtotal.String())

	t.Run("stale version is rejected", func(t *testing.T) {
		remarks := "late edit"
		require.NoError(t, stale.Update(invoicing.Changes{OverallRemarks: &remarks}))
		assert.ErrorIs(t, repo.Save(ctx, stale), shared.ErrConcurrencyConflict)
	})
}

func TestGormInvoiceRepository_FindAll(t *testing.T) {
	ctx := context.Background()
	repo := NewGormInvoiceRepository(newTestDatabase(t).DB)
	customerID := uuid.New()

	a := newTestInvoice(t, customerID, "TTS / 001 / 2025-26", 0)
	b := newTestInvoice(t, customerID, "TTS / 002 / 2025-26", 0)
	b.Customer.Name = "Sharma Builders"
	status := invoicing.StatusPaid
	require.NoError(t, b.Update(invoicing.Changes{Status: &status}))
	c := newTestInvoice(t, uuid.New(), "TTS / 003 / 2025-26", 0)
	for _, inv := range []*invoicing.Invoice{a, b, c} {
		require.NoError(t, repo.Create(ctx, inv))
	}

	byCustomer := shared.Filter{Filters: map[string]interface{}{"customer_id": customerID.String()}}
	invoices, err := repo.FindAll(ctx, byCustomer)
	require.NoError(t, err)
	assert.Len(t, invoices, 2)

	count, err := repo.Count(ctx, byCustomer)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	invoices, err = repo.FindAll(ctx, shared.Filter{Filters: map[string]interface{}{"status": "Paid"}})
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, b.ID, invoices[0].ID)

	invoices, err = repo.FindAll(ctx, shared.Filter{Search: "sharma"})
	require.NoError(t, err)
	require.Len(t, invoices, 1)
	assert.Equal(t, "TTS / 002 / 2025-26", invoices[0].InvoiceNumber)

	invoices, err = repo.FindAll(ctx, shared.Filter{OrderBy: "invoice_number", OrderDir: "desc"})
	require.NoError(t, err)
	require.Len(t, invoices, 3)
	assert.Equal(t, "TTS / 003 / 2025-26", invoices[0].InvoiceNumber)
}
