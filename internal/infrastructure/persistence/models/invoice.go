package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tileshop/backend/internal/domain/invoicing"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
type InvoiceModel struct {
	AggregateModel
	InvoiceNumber    string                 `gorm:"type:varchar(50);not null;uniqueIndex:idx_invoices_number"`
	InvoiceDate      time.Time              `gorm:"not null;index"`
	CustomerID       uuid.UUID              `gorm:"type:varchar(36);not null;index"`
	CustomerName     string                 `gorm:"type:varchar(200);not null"`
	CustomerPhone    string                 `gorm:"type:varchar(50)"`
	CustomerAddress  string                 `gorm:"type:text"`
	CustomerGSTIN    string                 `gorm:"column:customer_gstin;type:varchar(20)"`
	ReferenceName    string                 `gorm:"type:varchar(200)"`
	ConsigneeName    string                 `gorm:"type:varchar(200)"`
	ConsigneePhone   string                 `gorm:"type:varchar(50)"`
	ConsigneeAddress string                 `gorm:"type:text"`
	OverallRemarks   string                 `gorm:"type:text"`
	GSTPercent       decimal.Decimal        `gorm:"column:gst_percent;type:decimal(5,2);not null;default:0"`
	GSTAmount        decimal.Decimal        `gorm:"column:gst_amount;type:decimal(18,4);not null;default:0"`
	Status           string                 `gorm:"type:varchar(20);not null;default:'Draft';index"`
	Items            []InvoiceLineItemModel `gorm:"foreignKey:InvoiceID;references:ID"`
	TransportCharges decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	UnloadingCharges decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	Subtotal         decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	GrandTotal       decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	AmountPaid       decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	PendingBalance   decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	Deleted          bool                   `gorm:"not null;default:false;index"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice. Items come
// back in their stored position order.
func (m *InvoiceModel) ToDomain() *invoicing.Invoice {
	inv := &invoicing.Invoice{
		BaseAggregateRoot: m.root(),
		InvoiceNumber:     m.InvoiceNumber,
		InvoiceDate:       m.InvoiceDate,
		CustomerID:        m.CustomerID,
		Customer: invoicing.CustomerSnapshot{
			Name:    m.CustomerName,
			Phone:   m.CustomerPhone,
			Address: m.CustomerAddress,
			GSTIN:   m.CustomerGSTIN,
		},
		ReferenceName: m.ReferenceName,
		Consignee: invoicing.Consignee{
			Name:    m.ConsigneeName,
			Phone:   m.ConsigneePhone,
			Address: m.ConsigneeAddress,
		},
		OverallRemarks:   m.OverallRemarks,
		GSTPercent:       m.GSTPercent,
		GSTAmount:        m.GSTAmount,
		Status:           invoicing.Status(m.Status),
		TransportCharges: m.TransportCharges,
		UnloadingCharges: m.UnloadingCharges,
		Subtotal:         m.Subtotal,
		GrandTotal:       m.GrandTotal,
		AmountPaid:       m.AmountPaid,
		PendingBalance:   m.PendingBalance,
		Deleted:          m.Deleted,
	}

	items := make([]InvoiceLineItemModel, len(m.Items))
	copy(items, m.Items)
	sort.SliceStable(items, func(a, b int) bool { return items[a].Position < items[b].Position })
	inv.Items = make([]invoicing.LineItem, len(items))
	for i := range items {
		inv.Items[i] = items[i].ToDomain()
	}
	return inv
}

// FromDomain populates the persistence model from a domain Invoice.
func (m *InvoiceModel) FromDomain(inv *invoicing.Invoice) {
	m.setRoot(inv.BaseAggregateRoot)
	m.InvoiceNumber = inv.InvoiceNumber
	m.InvoiceDate = inv.InvoiceDate
	m.CustomerID = inv.CustomerID
	m.CustomerName = inv.Customer.Name
	m.CustomerPhone = inv.Customer.Phone
	m.CustomerAddress = inv.Customer.Address
	m.CustomerGSTIN = inv.Customer.GSTIN
	m.ReferenceName = inv.ReferenceName
	m.ConsigneeName = inv.Consignee.Name
	m.ConsigneePhone = inv.Consignee.Phone
	m.ConsigneeAddress = inv.Consignee.Address
	m.OverallRemarks = inv.OverallRemarks
	m.GSTPercent = inv.GSTPercent
	m.GSTAmount = inv.GSTAmount
	m.Status = string(inv.Status)
	m.TransportCharges = inv.TransportCharges
	m.UnloadingCharges = inv.UnloadingCharges
	m.Subtotal = inv.Subtotal
	m.GrandTotal = inv.GrandTotal
	m.AmountPaid = inv.AmountPaid
	m.PendingBalance = inv.PendingBalance
	m.Deleted = inv.Deleted
	m.Items = make([]InvoiceLineItemModel, len(inv.Items))
	for i := range inv.Items {
		m.Items[i] = InvoiceLineItemModelFromDomain(inv.ID, i, inv.Items[i])
	}
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice.
func InvoiceModelFromDomain(inv *invoicing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// InvoiceLineItemModel is the persistence model for one invoice row.
type InvoiceLineItemModel struct {
	ID                   uuid.UUID       `gorm:"type:varchar(36);primaryKey"`
	InvoiceID            uuid.UUID       `gorm:"type:varchar(36);not null;index"`
	Position             int             `gorm:"not null;default:0"`
	Location             string          `gorm:"type:varchar(100)"`
	TileName             string          `gorm:"type:varchar(200)"`
	TileImage            string          `gorm:"type:text"`
	Size                 string          `gorm:"type:varchar(50);not null"`
	BoxQty               int             `gorm:"not null;default:0"`
	ExtraSqft            decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	RatePerSqft          decimal.Decimal `gorm:"type:decimal(18,6);not null;default:0"`
	RatePerBox           decimal.Decimal `gorm:"type:decimal(18,6);not null;default:0"`
	DiscountPercent      decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	Coverage             decimal.Decimal `gorm:"type:decimal(18,6);not null;default:0"`
	BoxPacking           int             `gorm:"not null;default:0"`
	TotalSqft            decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AmountBeforeDiscount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	DiscountAmount       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	FinalAmount          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (InvoiceLineItemModel) TableName() string {
	return "invoice_line_items"
}

// ToDomain converts the row to a domain LineItem.
func (m *InvoiceLineItemModel) ToDomain() invoicing.LineItem {
	return invoicing.LineItem{
		ID:                   m.ID,
		Location:             m.Location,
		TileName:             m.TileName,
		TileImage:            m.TileImage,
		Size:                 m.Size,
		BoxQty:               m.BoxQty,
		ExtraSqft:            m.ExtraSqft,
		RatePerSqft:          m.RatePerSqft,
		RatePerBox:           m.RatePerBox,
		DiscountPercent:      m.DiscountPercent,
		Coverage:             m.Coverage,
		BoxPacking:           m.BoxPacking,
		TotalSqft:            m.TotalSqft,
		AmountBeforeDiscount: m.AmountBeforeDiscount,
		DiscountAmount:       m.DiscountAmount,
		FinalAmount:          m.FinalAmount,
	}
}

// InvoiceLineItemModelFromDomain maps a LineItem at the given position.
func InvoiceLineItemModelFromDomain(invoiceID uuid.UUID, position int, li invoicing.LineItem) InvoiceLineItemModel {
	id := li.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	return InvoiceLineItemModel{
		ID:                   id,
		InvoiceID:            invoiceID,
		Position:             position,
		Location:             li.Location,
		TileName:             li.TileName,
		TileImage:            li.TileImage,
		Size:                 li.Size,
		BoxQty:               li.BoxQty,
		ExtraSqft:            li.ExtraSqft,
		RatePerSqft:          li.RatePerSqft,
		RatePerBox:           li.RatePerBox,
		DiscountPercent:      li.DiscountPercent,
		Coverage:             li.Coverage,
		BoxPacking:           li.BoxPacking,
		TotalSqft:            li.TotalSqft,
		AmountBeforeDiscount: li.AmountBeforeDiscount,
		DiscountAmount:       li.DiscountAmount,
		FinalAmount:          li.FinalAmount,
	}
}

// AllModels lists every model, in dependency order, for AutoMigrate.
func AllModels() []any {
	return []any{
		&TileModel{},
		&CustomerModel{},
		&InvoiceModel{},
		&InvoiceLineItemModel{},
	}
}
