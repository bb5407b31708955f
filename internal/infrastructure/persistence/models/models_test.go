package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tileshop/backend/internal/domain/catalog"
	"github.com/tileshop/backend/internal/domain/invoicing"
	"github.com/tileshop/backend/internal/domain/partner"
)

func TestTableNames(t *testing.T) {
	assert.Equal(t, "tiles", TileModel{}.TableName())
	assert.Equal(t, "customers", CustomerModel{}.TableName())
	assert.Equal(t, "invoices", InvoiceModel{}.TableName())
	assert.Equal(t, "invoice_line_items", InvoiceLineItemModel{}.TableName())
	assert.Len(t, AllModels(), 4)
}

func TestTileModel_RoundTrip(t *testing.T) {
	tile, err := catalog.NewTile("600x600mm", decimal.NewFromFloat(15.5), 4)
	require.NoError(t, err)

	back := TileModelFromDomain(tile).ToDomain()
	assert.Equal(t, tile.ID, back.ID)
	assert.Equal(t, "600x600mm", back.Size)
	assert.True(t, tile.Coverage.Equal(back.Coverage))
	assert.Equal(t, 4, back.BoxPacking)
	assert.Equal(t, tile.Version, back.Version)
	assert.Empty(t, back.GetDomainEvents())
}

func TestCustomerModel_RoundTrip(t *testing.T) {
	c, err := partner.NewCustomer("Ravi Traders", "9876543210", "12 MG Road", "29abcde1234f1z5")
	require.NoError(t, err)
	c.SetTotalPending(decimal.NewFromInt(1500))

	m := CustomerModelFromDomain(c)
	assert.Equal(t, "29ABCDE1234F1Z5", m.GSTIN)

	back := m.ToDomain()
	assert.Equal(t, c.Name, back.Name)
	assert.True(t, back.TotalPending.Equal(decimal.NewFromInt(1500)))
}

func TestInvoiceModel_ItemsKeepPositionOrder(t *testing.T) {
	customerID := uuid.New()
	items := []invoicing.LineItem{
		{ID: uuid.New(), Location: "Kitchen", Size: "300x300", FinalAmount: decimal.NewFromInt(100)},
		{ID: uuid.New(), Location: "Hall", Size: "600x600", FinalAmount: decimal.NewFromInt(200)},
		{Location: "Kitchen", Size: "300x600", FinalAmount: decimal.NewFromInt(300)},
	}
	inv, err := invoicing.NewInvoice(customerID, invoicing.CustomerSnapshot{Name: "A"}, items,
		invoicing.Details{GSTPercent: decimal.NewFromInt(18)}, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NoError(t, inv.AssignNumber("TTS / 001 / 2025-26"))

	m := InvoiceModelFromDomain(inv)
	require.Len(t, m.Items, 3)
	assert.NotEqual(t, uuid.Nil, m.Items[2].ID, "missing item ids are generated")
	for i, row := range m.Items {
		assert.Equal(t, i, row.Position)
		assert.Equal(t, inv.ID, row.InvoiceID)
	}

	// Rows loaded from the database may arrive unordered.
	m.Items[0], m.Items[2] = m.Items[2], m.Items[0]
	back := m.ToDomain()
	require.Len(t, back.Items, 3)
	assert.Equal(t, "300x300", back.Items[0].Size)
	assert.Equal(t, "600x600", back.Items[1].Size)
	assert.Equal(t, "300x600", back.Items[2].Size)
	assert.Equal(t, "TTS / 001 / 2025-26", back.InvoiceNumber)
	assert.Equal(t, invoicing.StatusDraft, back.Status)
	assert.True(t, back.Subtotal.Equal(decimal.NewFromInt(600)))
	assert.True(t, back.GSTAmount.Equal(decimal.NewFromInt(108)))
}
