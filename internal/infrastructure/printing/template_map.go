package printing

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Point is an absolute text anchor. Y is measured from the top of the page
// in points.
type Point struct {
	X        float64 `json:"x"`
	YFromTop float64 `json:"y_from_top"`
}

// Column is a horizontal slot of the item table
type Column struct {
	X     float64 `json:"x"`
	Width float64 `json:"width"`
	// ImgWidth and ImgHeight size the thumbnail box of the image column
	ImgWidth  float64 `json:"img_width,omitempty"`
	ImgHeight float64 `json:"img_height,omitempty"`
}

// MaskBox is the white rectangle painted over a placeholder label baked
// into the template artwork
type MaskBox struct {
	X      float64 `json:"x"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// RowBand describes a section header or section total row
type RowBand struct {
	Height  float64  `json:"height"`
	MaskBox *MaskBox `json:"mask_box,omitempty"`
}

// Pagination holds the vertical limits of the item area
type Pagination struct {
	ContentAreaStartY    float64 `json:"content_area_start_y"`
	ContentAreaEndY      float64 `json:"content_area_end_y"`
	ContinuationPageEndY float64 `json:"continuation_page_end_y"`
	// FinalPageEndY keeps the last page's rows clear of the financial
	// summary. Defaults to content_area_end_y.
	FinalPageEndY float64 `json:"final_page_end_y,omitempty"`
}

// Table holds the item table geometry
type Table struct {
	FirstRowYFromTop   float64           `json:"first_row_y_from_top"`
	RowHeight          float64           `json:"row_height"`
	RowHeightWithImage float64           `json:"row_height_with_image"`
	Columns            map[string]Column `json:"columns"`
	SectionHeader      RowBand           `json:"section_header"`
	SectionTotal       RowBand           `json:"section_total"`
}

// QuotationBox anchors the invoice number, date and reference
type QuotationBox struct {
	NumberValue    Point `json:"quotation_no_value"`
	DateValue      Point `json:"date_value"`
	ReferenceValue Point `json:"reference_name_value"`
}

// PartyBlock anchors a buyer or consignee block
type PartyBlock struct {
	Name         Point  `json:"name"`
	Phone        Point  `json:"phone"`
	AddressLine1 Point  `json:"address_line1"`
	AddressLine2 Point  `json:"address_line2"`
	GSTIN        *Point `json:"gstin,omitempty"`
}

// YAnchor is a single vertical position
type YAnchor struct {
	YFromTop float64 `json:"y_from_top"`
}

// FinancialSummary anchors the footer amounts, all right-aligned at ValueX
type FinancialSummary struct {
	ValueX      float64 `json:"value_x"`
	TotalAmount YAnchor `json:"total_amount"`
	Transport   YAnchor `json:"transport"`
	Unloading   YAnchor `json:"unloading"`
	GST         YAnchor `json:"gst"`
	FinalAmount YAnchor `json:"final_amount"`
}

// RemarksBox is where the overall remarks are word-wrapped
type RemarksBox struct {
	X        float64 `json:"x"`
	YFromTop float64 `json:"y_from_top"`
	MaxWidth float64 `json:"max_width"`
}

// TemplateMap is the coordinate map of the invoice template artwork, in
// points with the origin at the top-left corner
type TemplateMap struct {
	PageWidth        float64          `json:"page_width"`
	PageHeight       float64          `json:"page_height"`
	Pagination       Pagination       `json:"pagination"`
	Table            Table            `json:"table"`
	QuotationBox     QuotationBox     `json:"quotation_box"`
	BuyerSection     PartyBlock       `json:"buyer_section"`
	ConsigneeSection PartyBlock       `json:"consignee_section"`
	FinancialSummary FinancialSummary `json:"financial_summary"`
	OverallRemarks   RemarksBox       `json:"overall_remarks"`
}

// Table column keys
const (
	ColSrNo     = "sr_no"
	ColName     = "name"
	ColImage    = "image"
	ColSize     = "size"
	ColRateBox  = "rate_box"
	ColRateSqft = "rate_sqft"
	ColQuantity = "quantity"
	ColDisc     = "disc"
	ColAmount   = "amount"
)

// RequiredColumns lists every column the item row draws into
var RequiredColumns = []string{ColSrNo, ColName, ColImage, ColSize, ColRateBox, ColRateSqft, ColQuantity, ColDisc, ColAmount}

// LoadTemplateMap reads and validates a template map file
func LoadTemplateMap(path string) (*TemplateMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewRenderError(ErrCodeTemplateMap, "failed to read template map "+path, err)
	}
	return ParseTemplateMap(data)
}

// ParseTemplateMap decodes and validates a template map
func ParseTemplateMap(data []byte) (*TemplateMap, error) {
	var m TemplateMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, NewRenderError(ErrCodeTemplateMap, "failed to parse template map", err)
	}
	m.applyDefaults()
	if err := m.Validate(); err != nil {
		return nil, NewRenderError(ErrCodeTemplateMap, "invalid template map", err)
	}
	return &m, nil
}

func (m *TemplateMap) applyDefaults() {
	if m.Pagination.ContentAreaStartY == 0 {
		m.Pagination.ContentAreaStartY = m.Table.FirstRowYFromTop
	}
	if m.Pagination.ContentAreaEndY == 0 {
		m.Pagination.ContentAreaEndY = 700
	}
	if m.Pagination.ContinuationPageEndY == 0 {
		m.Pagination.ContinuationPageEndY = 780
	}
	if m.Table.SectionHeader.Height == 0 {
		m.Table.SectionHeader.Height = 18
	}
	if m.Table.SectionTotal.Height == 0 {
		m.Table.SectionTotal.Height = 18
	}
	if img, ok := m.Table.Columns[ColImage]; ok {
		if img.ImgWidth == 0 {
			img.ImgWidth = 30
		}
		if img.ImgHeight == 0 {
			img.ImgHeight = 30
		}
		m.Table.Columns[ColImage] = img
	}
}

// Validate checks the geometry the renderer relies on
func (m *TemplateMap) Validate() error {
	var errs []error
	if m.PageWidth <= 0 || m.PageHeight <= 0 {
		errs = append(errs, fmt.Errorf("page size must be positive, got %gx%g", m.PageWidth, m.PageHeight))
	}
	if m.Table.RowHeight <= 0 || m.Table.RowHeightWithImage <= 0 {
		errs = append(errs, errors.New("table row heights must be positive"))
	}
	if m.Table.SectionHeader.Height <= 0 || m.Table.SectionTotal.Height <= 0 {
		errs = append(errs, errors.New("section header and total heights must be positive"))
	}

	var missing []string
	for _, key := range RequiredColumns {
		col, ok := m.Table.Columns[key]
		if !ok {
			missing = append(missing, key)
			continue
		}
		if col.Width <= 0 {
			errs = append(errs, fmt.Errorf("column %s must have a positive width", key))
		}
	}
	if len(missing) > 0 {
		errs = append(errs, fmt.Errorf("missing table columns: %s", strings.Join(missing, ", ")))
	}

	p := m.Pagination
	if p.ContentAreaStartY >= p.ContentAreaEndY {
		errs = append(errs, fmt.Errorf("content_area_start_y (%g) must be below content_area_end_y (%g)", p.ContentAreaStartY, p.ContentAreaEndY))
	}
	if p.ContentAreaStartY >= p.ContinuationPageEndY {
		errs = append(errs, fmt.Errorf("content_area_start_y (%g) must be below continuation_page_end_y (%g)", p.ContentAreaStartY, p.ContinuationPageEndY))
	}
	if p.FinalPageEndY > 0 && p.ContentAreaStartY >= p.FinalPageEndY {
		errs = append(errs, fmt.Errorf("content_area_start_y (%g) must be below final_page_end_y (%g)", p.ContentAreaStartY, p.FinalPageEndY))
	}
	if m.PageHeight > 0 && (p.ContentAreaEndY > m.PageHeight || p.ContinuationPageEndY > m.PageHeight) {
		errs = append(errs, errors.New("content area must end inside the page"))
	}
	if m.OverallRemarks.MaxWidth < 0 {
		errs = append(errs, errors.New("overall_remarks.max_width cannot be negative"))
	}
	return errors.Join(errs...)
}

// LimitFor returns the bottom of the item area on the given 1-based page
func (m *TemplateMap) LimitFor(page int) float64 {
	if page <= 1 {
		return m.Pagination.ContentAreaEndY
	}
	return m.Pagination.ContinuationPageEndY
}

// FinalLimit returns the bottom of the item area on the page that also
// carries the footer
func (m *TemplateMap) FinalLimit() float64 {
	if m.Pagination.FinalPageEndY > 0 {
		return m.Pagination.FinalPageEndY
	}
	return m.Pagination.ContentAreaEndY
}

// Column returns a table column by key
func (m *TemplateMap) Column(key string) Column {
	return m.Table.Columns[key]
}
