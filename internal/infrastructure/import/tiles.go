package csvimport

import (
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Tile catalogue columns
const (
	ColumnSize       = "size"
	ColumnCoverage   = "coverage"
	ColumnBoxPacking = "box_packing"
)

// TileRecord is a validated tile row
type TileRecord struct {
	Line       int
	Size       string
	Coverage   decimal.Decimal
	BoxPacking int
}

// TileSheet is the outcome of reading a tile catalogue file. Records holds
// only rows without errors.
type TileSheet struct {
	TotalRows int
	Records   []TileRecord
	Errors    *ErrorCollection
}

// ReadTiles parses a catalogue with columns size, coverage and an optional
// box_packing. Sizes are compared case-insensitively for in-file duplicates.
func ReadTiles(r io.Reader, maxErrors int) (*TileSheet, error) {
	p, err := NewParser(r)
	if err != nil {
		return nil, err
	}

	sheet := &TileSheet{Errors: NewErrorCollection(maxErrors)}
	if missing := p.Missing(ColumnSize, ColumnCoverage); len(missing) > 0 {
		for _, col := range missing {
			sheet.Errors.Addf(1, col, ErrCodeRequiredField, "", "column '%s' is required", col)
		}
		return sheet, nil
	}

	rows, err := p.All()
	if err != nil {
		return nil, err
	}
	sheet.TotalRows = len(rows)

	seen := make(map[string]int, len(rows))
	for _, row := range rows {
		rec, ok := readTile(row, sheet.Errors)
		if !ok {
			continue
		}
		key := strings.ToLower(rec.Size)
		if first, dup := seen[key]; dup {
			sheet.Errors.Addf(row.Line, ColumnSize, ErrCodeDuplicateRow, rec.Size,
				"size '%s' already appears on row %d", rec.Size, first)
			continue
		}
		seen[key] = row.Line
		sheet.Records = append(sheet.Records, rec)
	}
	return sheet, nil
}

func readTile(row *Row, errs *ErrorCollection) (TileRecord, bool) {
	rec := TileRecord{Line: row.Line, Size: row.Get(ColumnSize)}
	ok := true

	if rec.Size == "" {
		errs.Addf(row.Line, ColumnSize, ErrCodeRequiredField, "", "field '%s' is required", ColumnSize)
		ok = false
	} else if len(rec.Size) > 50 {
		errs.Addf(row.Line, ColumnSize, ErrCodeInvalidValue, rec.Size, "size cannot exceed 50 characters")
		ok = false
	}

	raw := row.Get(ColumnCoverage)
	switch cov, err := decimal.NewFromString(raw); {
	case raw == "":
		errs.Addf(row.Line, ColumnCoverage, ErrCodeRequiredField, "", "field '%s' is required", ColumnCoverage)
		ok = false
	case err != nil:
		errs.Addf(row.Line, ColumnCoverage, ErrCodeInvalidNumber, raw, "expected a number")
		ok = false
	case cov.IsNegative():
		errs.Addf(row.Line, ColumnCoverage, ErrCodeInvalidValue, raw, "coverage cannot be negative")
		ok = false
	default:
		rec.Coverage = cov
	}

	if raw := row.Get(ColumnBoxPacking); raw != "" {
		n, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			errs.Addf(row.Line, ColumnBoxPacking, ErrCodeInvalidNumber, raw, "expected a whole number")
			ok = false
		case n < 0:
			errs.Addf(row.Line, ColumnBoxPacking, ErrCodeInvalidValue, raw, "box packing cannot be negative")
			ok = false
		default:
			rec.BoxPacking = n
		}
	}
	return rec, ok
}
