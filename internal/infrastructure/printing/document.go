package printing

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tileshop/backend/internal/domain/invoicing"
)

// Party is a printed name/phone/address block
type Party struct {
	Name    string
	Phone   string
	Address string
	GSTIN   string
}

// InvoiceDocument is the print view of an invoice. It is a plain value so
// renderers never reach back into the domain aggregate.
type InvoiceDocument struct {
	Number           string
	Date             time.Time
	Reference        string
	Buyer            Party
	ShipTo           Party
	Items            []invoicing.LineItem
	Subtotal         decimal.Decimal
	TransportCharges decimal.Decimal
	UnloadingCharges decimal.Decimal
	GSTPercent       decimal.Decimal
	GSTAmount        decimal.Decimal
	GrandTotal       decimal.Decimal
	AmountPaid       decimal.Decimal
	PendingBalance   decimal.Decimal
	Remarks          string
	Status           string
}

// NewInvoiceDocument builds the print view. The invoice date is shown in loc;
// a nil loc keeps the stored zone.
func NewInvoiceDocument(inv *invoicing.Invoice, loc *time.Location) *InvoiceDocument {
	date := inv.InvoiceDate
	if loc != nil {
		date = date.In(loc)
	}
	shipTo := inv.ShipTo()

	return &InvoiceDocument{
		Number:    inv.InvoiceNumber,
		Date:      date,
		Reference: inv.ReferenceName,
		Buyer: Party{
			Name:    inv.Customer.Name,
			Phone:   inv.Customer.Phone,
			Address: inv.Customer.Address,
			GSTIN:   inv.Customer.GSTIN,
		},
		ShipTo: Party{
			Name:    shipTo.Name,
			Phone:   shipTo.Phone,
			Address: shipTo.Address,
		},
		Items:            inv.Items,
		Subtotal:         inv.Subtotal,
		TransportCharges: inv.TransportCharges,
		UnloadingCharges: inv.UnloadingCharges,
		GSTPercent:       inv.GSTPercent,
		GSTAmount:        inv.GSTAmount,
		GrandTotal:       inv.GrandTotal,
		AmountPaid:       inv.AmountPaid,
		PendingBalance:   inv.PendingBalance,
		Remarks:          inv.OverallRemarks,
		Status:           string(inv.Status),
	}
}

// GSTApplicable reports whether the GST line shows an amount
func (d *InvoiceDocument) GSTApplicable() bool {
	return d.GSTAmount.IsPositive() || d.GSTPercent.IsPositive()
}

// Sections groups the items the way every renderer prints them
func (d *InvoiceDocument) Sections() []invoicing.Section {
	return invoicing.GroupBySection(d.Items)
}
