package invoicing

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tileshop/backend/internal/domain/shared"
)

// AggregateTypeInvoice is the aggregate type name used in events
const AggregateTypeInvoice = "Invoice"

// Status represents the lifecycle state of an invoice
type Status string

const (
	StatusDraft     Status = "Draft"
	StatusSent      Status = "Sent"
	StatusPaid      Status = "Paid"
	StatusCancelled Status = "Cancelled"
)

// IsValid checks if the status is a known value
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

// ErrPaidInvoiceImmutable is returned for any edit of a Paid invoice
var ErrPaidInvoiceImmutable = shared.Forbidden("Cannot edit a Paid invoice")

// ErrInvoiceNotFound is returned when an invoice is missing or soft-deleted
var ErrInvoiceNotFound = shared.NotFound("Invoice not found")

// CustomerSnapshot is the copy of customer contact fields taken when the
// invoice is created. Later customer edits do not change it.
type CustomerSnapshot struct {
	Name    string
	Phone   string
	Address string
	GSTIN   string
}

// Consignee is the optional ship-to party
type Consignee struct {
	Name    string
	Phone   string
	Address string
}

// Details holds the optional header fields of an invoice
type Details struct {
	ReferenceName    string
	Consignee        Consignee
	OverallRemarks   string
	GSTPercent       decimal.Decimal
	Status           Status
	TransportCharges decimal.Decimal
	UnloadingCharges decimal.Decimal
	AmountPaid       decimal.Decimal
}

// Invoice is the aggregate root for a customer bill.
//
// Subtotal, GSTAmount, GrandTotal and PendingBalance are only ever written
// together by CalculateTotals.
type Invoice struct {
	shared.BaseAggregateRoot
	InvoiceNumber    string
	InvoiceDate      time.Time
	CustomerID       uuid.UUID
	Customer         CustomerSnapshot
	ReferenceName    string
	Consignee        Consignee
	OverallRemarks   string
	GSTPercent       decimal.Decimal
	GSTAmount        decimal.Decimal
	Status           Status
	Items            []LineItem
	TransportCharges decimal.Decimal
	UnloadingCharges decimal.Decimal
	Subtotal         decimal.Decimal
	GrandTotal       decimal.Decimal
	AmountPaid       decimal.Decimal
	PendingBalance   decimal.Decimal
	Deleted          bool
}

// NewInvoice creates a draft invoice from already calculated line items.
// The invoice number is assigned separately by AssignNumber.
func NewInvoice(customerID uuid.UUID, customer CustomerSnapshot, items []LineItem, details Details, invoiceDate time.Time) (*Invoice, error) {
	if customerID == uuid.Nil {
		return nil, shared.InvalidInput("Customer is required")
	}
	if details.Status == "" {
		details.Status = StatusDraft
	}
	if err := validateDetails(details); err != nil {
		return nil, err
	}

	inv := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceDate:       invoiceDate,
		CustomerID:        customerID,
		Customer:          customer,
		Items:             items,
	}
	inv.applyDetails(details)
	inv.CalculateTotals()
	return inv, nil
}

// AssignNumber sets the human readable invoice number. It may be called
// again when an insert lost a race for the number.
func (i *Invoice) AssignNumber(number string) error {
	if _, ok := ParseSequence(number); !ok {
		return shared.InvalidInput("Invalid invoice number: " + number)
	}
	i.InvoiceNumber = number
	i.ClearDomainEvents()
	i.AddDomainEvent(NewInvoiceCreatedEvent(i))
	return nil
}

// CalculateTotals recomputes every derived invoice amount from the items
func (i *Invoice) CalculateTotals() {
	subtotal := decimal.Zero
	for _, item := range i.Items {
		subtotal = subtotal.Add(item.FinalAmount)
	}
	i.Subtotal = subtotal

	if i.GSTPercent.IsPositive() {
		i.GSTAmount = subtotal.Mul(i.GSTPercent).Div(hundred)
	} else {
		i.GSTAmount = decimal.Zero
	}

	i.GrandTotal = i.Subtotal.Add(i.TransportCharges).Add(i.UnloadingCharges).Add(i.GSTAmount)
	i.PendingBalance = i.GrandTotal.Sub(i.AmountPaid)
	i.UpdatedAt = time.Now()
}

// EnsureEditable rejects changes to deleted or Paid invoices
func (i *Invoice) EnsureEditable() error {
	if i.Deleted {
		return ErrInvoiceNotFound
	}
	if i.Status == StatusPaid {
		return ErrPaidInvoiceImmutable
	}
	return nil
}

// Changes is a partial update. Nil fields are left unchanged; Items, when
// non-nil, must already be calculated.
type Changes struct {
	Items            []LineItem
	TransportCharges *decimal.Decimal
	UnloadingCharges *decimal.Decimal
	AmountPaid       *decimal.Decimal
	Status           *Status
	ReferenceName    *string
	ConsigneeName    *string
	ConsigneePhone   *string
	ConsigneeAddress *string
	OverallRemarks   *string
	GSTPercent       *decimal.Decimal
}

// Update applies a partial change and recomputes all totals
func (i *Invoice) Update(c Changes) error {
	if err := i.EnsureEditable(); err != nil {
		return err
	}

	d := i.details()
	if c.TransportCharges != nil {
		d.TransportCharges = *c.TransportCharges
	}
	if c.UnloadingCharges != nil {
		d.UnloadingCharges = *c.UnloadingCharges
	}
	if c.AmountPaid != nil {
		d.AmountPaid = *c.AmountPaid
	}
	if c.Status != nil {
		d.Status = *c.Status
	}
	if c.ReferenceName != nil {
		d.ReferenceName = *c.ReferenceName
	}
	if c.ConsigneeName != nil {
		d.Consignee.Name = *c.ConsigneeName
	}
	if c.ConsigneePhone != nil {
		d.Consignee.Phone = *c.ConsigneePhone
	}
	if c.ConsigneeAddress != nil {
		d.Consignee.Address = *c.ConsigneeAddress
	}
	if c.OverallRemarks != nil {
		d.OverallRemarks = *c.OverallRemarks
	}
	if c.GSTPercent != nil {
		d.GSTPercent = *c.GSTPercent
	}
	if err := validateDetails(d); err != nil {
		return err
	}

	i.applyDetails(d)
	if c.Items != nil {
		i.Items = c.Items
	}
	i.CalculateTotals()
	i.Touch()
	i.AddDomainEvent(NewInvoiceUpdatedEvent(i))
	return nil
}

// SoftDelete marks the invoice deleted
func (i *Invoice) SoftDelete() error {
	if i.Deleted {
		return ErrInvoiceNotFound
	}
	i.Deleted = true
	i.Touch()
	i.AddDomainEvent(NewInvoiceDeletedEvent(i))
	return nil
}

// ShipTo returns the consignee with each empty field falling back to the
// customer snapshot
func (i *Invoice) ShipTo() Consignee {
	c := i.Consignee
	if c.Name == "" {
		c.Name = i.Customer.Name
	}
	if c.Phone == "" {
		c.Phone = i.Customer.Phone
	}
	if c.Address == "" {
		c.Address = i.Customer.Address
	}
	return c
}

// GSTApplicable reports whether the GST line should show an amount rather
// than a placeholder
func (i *Invoice) GSTApplicable() bool {
	return i.GSTAmount.IsPositive() || i.GSTPercent.IsPositive()
}

func (i *Invoice) details() Details {
	return Details{
		ReferenceName:    i.ReferenceName,
		Consignee:        i.Consignee,
		OverallRemarks:   i.OverallRemarks,
		GSTPercent:       i.GSTPercent,
		Status:           i.Status,
		TransportCharges: i.TransportCharges,
		UnloadingCharges: i.UnloadingCharges,
		AmountPaid:       i.AmountPaid,
	}
}

func (i *Invoice) applyDetails(d Details) {
	i.ReferenceName = strings.TrimSpace(d.ReferenceName)
	i.Consignee = Consignee{
		Name:    strings.TrimSpace(d.Consignee.Name),
		Phone:   strings.TrimSpace(d.Consignee.Phone),
		Address: strings.TrimSpace(d.Consignee.Address),
	}
	i.OverallRemarks = strings.TrimSpace(d.OverallRemarks)
	i.GSTPercent = d.GSTPercent
	i.Status = d.Status
	i.TransportCharges = d.TransportCharges
	i.UnloadingCharges = d.UnloadingCharges
	i.AmountPaid = d.AmountPaid
}

func validateDetails(d Details) error {
	if !d.Status.IsValid() {
		return shared.InvalidInput("Invalid invoice status: " + string(d.Status))
	}
	if d.GSTPercent.IsNegative() || d.GSTPercent.GreaterThan(hundred) {
		return shared.InvalidInput("GST percent must be between 0 and 100")
	}
	if d.TransportCharges.IsNegative() || d.UnloadingCharges.IsNegative() {
		return shared.InvalidInput("Charges cannot be negative")
	}
	if d.AmountPaid.IsNegative() {
		return shared.InvalidInput("Amount paid cannot be negative")
	}
	return nil
}
