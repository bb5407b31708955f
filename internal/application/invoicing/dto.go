package invoicing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tileshop/backend/internal/domain/invoicing"
	"github.com/tileshop/backend/internal/domain/shared"
)

// LineItemRequest is one line item as entered on the invoice form
type LineItemRequest struct {
	Location        string          `json:"location" binding:"max=100"`
	TileName        string          `json:"tile_name" binding:"required,min=1,max=200"`
	TileImage       string          `json:"tile_image"`
	Size            string          `json:"size" binding:"required,min=1,max=50"`
	BoxQty          int             `json:"box_qty" binding:"gte=0"`
	ExtraSqft       decimal.Decimal `json:"extra_sqft" binding:"gte=0"`
	RatePerSqft     decimal.Decimal `json:"rate_per_sqft" binding:"gte=0"`
	RatePerBox      decimal.Decimal `json:"rate_per_box" binding:"gte=0"`
	DiscountPercent decimal.Decimal `json:"discount_percent" binding:"gte=0,lte=100"`
	Coverage        decimal.Decimal `json:"coverage" binding:"gte=0"`
	BoxPacking      int             `json:"box_packing" binding:"gte=0"`
}

func (r LineItemRequest) toInput() invoicing.LineItemInput {
	return invoicing.LineItemInput{
		Location:        r.Location,
		TileName:        r.TileName,
		TileImage:       r.TileImage,
		Size:            r.Size,
		BoxQty:          r.BoxQty,
		ExtraSqft:       r.ExtraSqft,
		RatePerSqft:     r.RatePerSqft,
		RatePerBox:      r.RatePerBox,
		DiscountPercent: r.DiscountPercent,
		Coverage:        r.Coverage,
		BoxPacking:      r.BoxPacking,
	}
}

// CreateInvoiceRequest represents a request to create a new invoice
type CreateInvoiceRequest struct {
	CustomerID       uuid.UUID         `json:"customer_id" binding:"required"`
	InvoiceDate      *time.Time        `json:"invoice_date"`
	ReferenceName    string            `json:"reference_name" binding:"max=200"`
	ConsigneeName    string            `json:"consignee_name" binding:"max=200"`
	ConsigneePhone   string            `json:"consignee_phone" binding:"max=50"`
	ConsigneeAddress string            `json:"consignee_address"`
	OverallRemarks   string            `json:"overall_remarks"`
	GSTPercent       decimal.Decimal   `json:"gst_percent" binding:"gte=0"`
	Status           string            `json:"status" binding:"omitempty,oneof=Draft Sent Paid Cancelled"`
	LineItems        []LineItemRequest `json:"line_items" binding:"dive"`
	TransportCharges decimal.Decimal   `json:"transport_charges" binding:"gte=0"`
	UnloadingCharges decimal.Decimal   `json:"unloading_charges" binding:"gte=0"`
	AmountPaid       decimal.Decimal   `json:"amount_paid" binding:"gte=0"`
}

// UpdateInvoiceRequest is a partial update. A present line_items array
// replaces every item; an absent one keeps them.
type UpdateInvoiceRequest struct {
	ReferenceName    *string           `json:"reference_name" binding:"omitempty,max=200"`
	ConsigneeName    *string           `json:"consignee_name" binding:"omitempty,max=200"`
	ConsigneePhone   *string           `json:"consignee_phone" binding:"omitempty,max=50"`
	ConsigneeAddress *string           `json:"consignee_address"`
	OverallRemarks   *string           `json:"overall_remarks"`
	GSTPercent       *decimal.Decimal  `json:"gst_percent" binding:"omitempty,gte=0"`
	Status           *string           `json:"status" binding:"omitempty,oneof=Draft Sent Paid Cancelled"`
	LineItems        []LineItemRequest `json:"line_items" binding:"omitempty,dive"`
	TransportCharges *decimal.Decimal  `json:"transport_charges" binding:"omitempty,gte=0"`
	UnloadingCharges *decimal.Decimal  `json:"unloading_charges" binding:"omitempty,gte=0"`
	AmountPaid       *decimal.Decimal  `json:"amount_paid" binding:"omitempty,gte=0"`
}

// InvoiceListFilter represents filter options for the invoice list
type InvoiceListFilter struct {
	Search     string `form:"search"`
	Status     string `form:"status" binding:"omitempty,oneof=Draft Sent Paid Cancelled"`
	CustomerID string `form:"customer_id" binding:"omitempty,uuid"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string `form:"order_by"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

func (f InvoiceListFilter) toDomain() shared.Filter {
	filters := make(map[string]any)
	if f.Status != "" {
		filters["status"] = f.Status
	}
	if f.CustomerID != "" {
		filters["customer_id"] = f.CustomerID
	}
	return shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
		Search:   f.Search,
		Filters:  filters,
	}.Normalize()
}

// LineItemResponse represents a calculated line item
type LineItemResponse struct {
	ID                   uuid.UUID       `json:"id"`
	Location             string          `json:"location"`
	TileName             string          `json:"tile_name"`
	TileImage            string          `json:"tile_image,omitempty"`
	Size                 string          `json:"size"`
	BoxQty               int             `json:"box_qty"`
	ExtraSqft            decimal.Decimal `json:"extra_sqft"`
	RatePerSqft          decimal.Decimal `json:"rate_per_sqft"`
	RatePerBox           decimal.Decimal `json:"rate_per_box"`
	DiscountPercent      decimal.Decimal `json:"discount_percent"`
	Coverage             decimal.Decimal `json:"coverage"`
	BoxPacking           int             `json:"box_packing"`
	TotalSqft            decimal.Decimal `json:"total_sqft"`
	AmountBeforeDiscount decimal.Decimal `json:"amount_before_discount"`
	DiscountAmount       decimal.Decimal `json:"discount_amount"`
	FinalAmount          decimal.Decimal `json:"final_amount"`
}

// InvoiceResponse represents an invoice in API responses. The human
// number is exposed as invoice_id.
type InvoiceResponse struct {
	ID               uuid.UUID          `json:"id"`
	InvoiceNumber    string             `json:"invoice_id"`
	InvoiceDate      time.Time          `json:"invoice_date"`
	CustomerID       uuid.UUID          `json:"customer_id"`
	CustomerName     string             `json:"customer_name"`
	CustomerPhone    string             `json:"customer_phone"`
	CustomerAddress  string             `json:"customer_address"`
	CustomerGSTIN    string             `json:"customer_gstin,omitempty"`
	ReferenceName    string             `json:"reference_name"`
	ConsigneeName    string             `json:"consignee_name"`
	ConsigneePhone   string             `json:"consignee_phone"`
	ConsigneeAddress string             `json:"consignee_address"`
	OverallRemarks   string             `json:"overall_remarks"`
	GSTPercent       decimal.Decimal    `json:"gst_percent"`
	GSTAmount        decimal.Decimal    `json:"gst_amount"`
	Status           string             `json:"status"`
	LineItems        []LineItemResponse `json:"line_items"`
	TransportCharges decimal.Decimal    `json:"transport_charges"`
	UnloadingCharges decimal.Decimal    `json:"unloading_charges"`
	Subtotal         decimal.Decimal    `json:"subtotal"`
	GrandTotal       decimal.Decimal    `json:"grand_total"`
	AmountPaid       decimal.Decimal    `json:"amount_paid"`
	PendingBalance   decimal.Decimal    `json:"pending_balance"`
	Version          int                `json:"version"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// ToInvoiceResponse converts a domain Invoice to InvoiceResponse
func ToInvoiceResponse(inv *invoicing.Invoice) InvoiceResponse {
	items := make([]LineItemResponse, len(inv.Items))
	for i, li := range inv.Items {
		items[i] = LineItemResponse{
			ID:                   li.ID,
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

	return InvoiceResponse{
		ID:               inv.ID,
		InvoiceNumber:    inv.InvoiceNumber,
		InvoiceDate:      inv.InvoiceDate,
		CustomerID:       inv.CustomerID,
		CustomerName:     inv.Customer.Name,
		CustomerPhone:    inv.Customer.Phone,
		CustomerAddress:  inv.Customer.Address,
		CustomerGSTIN:    inv.Customer.GSTIN,
		ReferenceName:    inv.ReferenceName,
		ConsigneeName:    inv.Consignee.Name,
		ConsigneePhone:   inv.Consignee.Phone,
		ConsigneeAddress: inv.Consignee.Address,
		OverallRemarks:   inv.OverallRemarks,
		GSTPercent:       inv.GSTPercent,
		GSTAmount:        inv.GSTAmount,
		Status:           string(inv.Status),
		LineItems:        items,
		TransportCharges: inv.TransportCharges,
		UnloadingCharges: inv.UnloadingCharges,
		Subtotal:         inv.Subtotal,
		GrandTotal:       inv.GrandTotal,
		AmountPaid:       inv.AmountPaid,
		PendingBalance:   inv.PendingBalance,
		Version:          inv.Version,
		CreatedAt:        inv.CreatedAt,
		UpdatedAt:        inv.UpdatedAt,
	}
}

// ToInvoiceResponses converts a slice of domain Invoices
func ToInvoiceResponses(invoices []invoicing.Invoice) []InvoiceResponse {
	out := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		out[i] = ToInvoiceResponse(&invoices[i])
	}
	return out
}
