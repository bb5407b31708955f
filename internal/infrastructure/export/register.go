// Package export writes the invoice register workbook.
package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/tileshop/backend/internal/domain/invoicing"
)

// ContentType is the MIME type of the register workbook
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	SheetInvoices  = "Invoices"
	SheetLineItems = "Line Items"
)

var (
	invoiceHeadings = []any{
		"Invoice No", "Date", "Customer", "Status",
		"Subtotal", "GST", "Grand Total", "Paid", "Pending",
	}
	itemHeadings = []any{
		"Invoice No", "Section", "Sr", "Tile", "Size", "Boxes",
		"Total Sqft", "Rate/Sqft", "Rate/Box", "Discount %", "Amount",
	}
)

// RegisterWriter renders invoices into an xlsx register. Dates are shown in
// loc, or in their stored zone when loc is nil.
type RegisterWriter struct {
	loc *time.Location
}

func NewRegisterWriter(loc *time.Location) *RegisterWriter {
	return &RegisterWriter{loc: loc}
}

// Write builds the workbook: one row per invoice on the first sheet and the
// line items grouped by section on the second
func (w *RegisterWriter) Write(invoices []invoicing.Invoice) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetInvoices); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetLineItems); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return nil, fmt.Errorf("create money style: %w", err)
	}

	if err := w.writeInvoices(f, invoices, header, money); err != nil {
		return nil, err
	}
	if err := w.writeItems(f, invoices, header, money); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (w *RegisterWriter) writeInvoices(f *excelize.File, invoices []invoicing.Invoice, header, money int) error {
	if err := writeHeader(f, SheetInvoices, invoiceHeadings, header); err != nil {
		return err
	}
	for i, inv := range invoices {
		row := i + 2
		values := []any{
			inv.InvoiceNumber,
			w.date(inv.InvoiceDate),
			inv.Customer.Name,
			string(inv.Status),
			amount(inv.Subtotal),
			amount(inv.GSTAmount),
			amount(inv.GrandTotal),
			amount(inv.AmountPaid),
			amount(inv.PendingBalance),
		}
		if err := setRow(f, SheetInvoices, row, values); err != nil {
			return err
		}
	}
	if len(invoices) > 0 {
		if err := f.SetCellStyle(SheetInvoices, "E2", fmt.Sprintf("I%d", len(invoices)+1), money); err != nil {
			return fmt.Errorf("style amounts: %w", err)
		}
	}
	return f.SetColWidth(SheetInvoices, "A", "C", 24)
}

func (w *RegisterWriter) writeItems(f *excelize.File, invoices []invoicing.Invoice, header, money int) error {
	if err := writeHeader(f, SheetLineItems, itemHeadings, header); err != nil {
		return err
	}
	row := 2
	for _, inv := range invoices {
		for _, section := range invoicing.GroupBySection(inv.Items) {
			for n, item := range section.Items {
				values := []any{
					inv.InvoiceNumber,
					section.Name,
					n + 1,
					item.TileName,
					item.Size,
					item.BoxQty,
					amount(item.TotalSqft),
					amount(item.RatePerSqft),
					amount(item.RatePerBox),
					amount(item.DiscountPercent),
					amount(item.FinalAmount),
				}
				if err := setRow(f, SheetLineItems, row, values); err != nil {
					return err
				}
				row++
			}
		}
	}
	if row > 2 {
		if err := f.SetCellStyle(SheetLineItems, "G2", fmt.Sprintf("K%d", row-1), money); err != nil {
			return fmt.Errorf("style amounts: %w", err)
		}
	}
	return f.SetColWidth(SheetLineItems, "A", "D", 22)
}

func (w *RegisterWriter) date(t time.Time) string {
	if w.loc != nil {
		t = t.In(w.loc)
	}
	return t.Format("02/01/2006")
}

func writeHeader(f *excelize.File, sheet string, headings []any, style int) error {
	if err := setRow(f, sheet, 1, headings); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(headings), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	return f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

// amount rounds for display; the stored decimal keeps full precision
func amount(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
