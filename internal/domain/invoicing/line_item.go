package invoicing

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tileshop/backend/internal/domain/shared"
)

// DefaultSection is the section label used for items without a location
const DefaultSection = "Items"

var hundred = decimal.NewFromInt(100)

// LineItem is one priced row of an invoice. The four trailing amount fields
// are derived by CalculateLineItem and are never set directly by callers.
type LineItem struct {
	ID              uuid.UUID
	Location        string
	TileName        string
	TileImage       string
	Size            string
	BoxQty          int
	ExtraSqft       decimal.Decimal
	RatePerSqft     decimal.Decimal
	RatePerBox      decimal.Decimal
	DiscountPercent decimal.Decimal
	Coverage        decimal.Decimal
	BoxPacking      int

	TotalSqft            decimal.Decimal
	AmountBeforeDiscount decimal.Decimal
	DiscountAmount       decimal.Decimal
	FinalAmount          decimal.Decimal
}

// LineItemInput carries the user-entered values of a line item
type LineItemInput struct {
	Location        string
	TileName        string
	TileImage       string
	Size            string
	BoxQty          int
	ExtraSqft       decimal.Decimal
	RatePerSqft     decimal.Decimal
	RatePerBox      decimal.Decimal
	DiscountPercent decimal.Decimal
	Coverage        decimal.Decimal
	BoxPacking      int
}

// NewLineItem validates the input ranges and returns an uncalculated item
func NewLineItem(in LineItemInput) (LineItem, error) {
	size := strings.TrimSpace(in.Size)
	if size == "" {
		return LineItem{}, shared.InvalidInput("Line item size is required")
	}
	if in.BoxQty < 0 {
		return LineItem{}, shared.InvalidInput("Box quantity cannot be negative")
	}
	if in.ExtraSqft.IsNegative() {
		return LineItem{}, shared.InvalidInput("Extra sqft cannot be negative")
	}
	if in.RatePerSqft.IsNegative() || in.RatePerBox.IsNegative() {
		return LineItem{}, shared.InvalidInput("Rates cannot be negative")
	}
	if in.DiscountPercent.IsNegative() || in.DiscountPercent.GreaterThan(hundred) {
		return LineItem{}, shared.InvalidInput("Discount percent must be between 0 and 100")
	}
	if in.Coverage.IsNegative() {
		return LineItem{}, shared.InvalidInput("Coverage cannot be negative")
	}
	if in.BoxPacking < 0 {
		return LineItem{}, shared.InvalidInput("Box packing cannot be negative")
	}

	return LineItem{
		ID:              uuid.New(),
		Location:        strings.TrimSpace(in.Location),
		TileName:        strings.TrimSpace(in.TileName),
		TileImage:       in.TileImage,
		Size:            size,
		BoxQty:          in.BoxQty,
		ExtraSqft:       in.ExtraSqft,
		RatePerSqft:     in.RatePerSqft,
		RatePerBox:      in.RatePerBox,
		DiscountPercent: in.DiscountPercent,
		Coverage:        in.Coverage,
		BoxPacking:      in.BoxPacking,
	}, nil
}

// Section returns the grouping label printed above the item
func (li LineItem) Section() string {
	if li.Location == "" {
		return DefaultSection
	}
	return li.Location
}

// HasImage reports whether the item carries an inline thumbnail
func (li LineItem) HasImage() bool {
	return strings.TrimSpace(li.TileImage) != ""
}

// CalculateLineItem derives the missing rate and the four amount fields.
//
// Coverage is the sqft-per-box conversion factor. When it is not positive no
// rate is derived and both rates pass through as given, so an item whose tile
// has no coverage data prices at whatever sqft rate was entered (often zero).
// When both rates are supplied the sqft rate drives the amounts.
func CalculateLineItem(item LineItem, coverage decimal.Decimal) LineItem {
	item.Coverage = coverage
	item.RatePerSqft, item.RatePerBox = reconcileRates(coverage, item.RatePerSqft, item.RatePerBox)

	item.TotalSqft = decimal.NewFromInt(int64(item.BoxQty)).Mul(coverage).Add(item.ExtraSqft)
	item.AmountBeforeDiscount = item.TotalSqft.Mul(item.RatePerSqft)
	item.DiscountAmount = item.AmountBeforeDiscount.Mul(item.DiscountPercent).Div(hundred)
	item.FinalAmount = item.AmountBeforeDiscount.Sub(item.DiscountAmount)
	return item
}

func reconcileRates(coverage, rateSqft, rateBox decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	if !coverage.IsPositive() {
		return rateSqft, rateBox
	}
	switch {
	case rateSqft.IsPositive() && rateBox.IsZero():
		rateBox = rateSqft.Mul(coverage)
	case rateBox.IsPositive() && rateSqft.IsZero():
		rateSqft = rateBox.Div(coverage)
	}
	return rateSqft, rateBox
}
