package catalog

import (
	"context"
	"errors"

	"github.com/tileshop/backend/internal/domain/catalog"
	"github.com/tileshop/backend/internal/domain/shared"
	csvimport "github.com/tileshop/backend/internal/infrastructure/import"
)

// ConflictMode decides what happens when an imported size already exists
type ConflictMode string

const (
	ConflictModeSkip   ConflictMode = "skip"
	ConflictModeUpdate ConflictMode = "update"
	ConflictModeFail   ConflictMode = "fail"
)

// IsValid checks if the conflict mode is known
func (m ConflictMode) IsValid() bool {
	switch m {
	case ConflictModeSkip, ConflictModeUpdate, ConflictModeFail:
		return true
	}
	return false
}

// TileImportResult summarises a catalogue import
type TileImportResult struct {
	TotalRows   int                  `json:"total_rows"`
	Created     int                  `json:"created"`
	Updated     int                  `json:"updated"`
	Skipped     int                  `json:"skipped"`
	ErrorRows   int                  `json:"error_rows"`
	Errors      []csvimport.RowError `json:"errors,omitempty"`
	IsTruncated bool                 `json:"is_truncated,omitempty"`
}

// Import applies the valid rows of a parsed sheet. Rows that failed parsing
// are reported but do not stop the others.
func (s *TileService) Import(ctx context.Context, sheet *csvimport.TileSheet, mode ConflictMode) (*TileImportResult, error) {
	if !mode.IsValid() {
		return nil, shared.InvalidInput("conflict_mode must be one of: skip, update, fail")
	}
	errs := sheet.Errors
	if errs == nil {
		errs = csvimport.NewErrorCollection(0)
	}

	result := &TileImportResult{TotalRows: sheet.TotalRows}
	for _, rec := range sheet.Records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.importTile(ctx, rec, mode, result, errs); err != nil {
			return nil, err
		}
	}

	result.ErrorRows = len(errs.Rows())
	result.Errors = errs.Errors()
	result.IsTruncated = errs.IsTruncated()
	return result, nil
}

func (s *TileService) importTile(ctx context.Context, rec csvimport.TileRecord, mode ConflictMode, result *TileImportResult, errs *csvimport.ErrorCollection) error {
	existing, err := s.tileRepo.FindBySize(ctx, rec.Size)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		tile, err := catalog.NewTile(rec.Size, rec.Coverage, rec.BoxPacking)
		if err != nil {
			errs.Addf(rec.Line, "", csvimport.ErrCodeInvalidValue, rec.Size, "%s", err.Error())
			return nil
		}
		if err := s.tileRepo.Save(ctx, tile); err != nil {
			if errors.Is(err, shared.ErrAlreadyExists) {
				errs.Addf(rec.Line, csvimport.ColumnSize, csvimport.ErrCodeConflict, rec.Size, "size '%s' already exists", rec.Size)
				return nil
			}
			return err
		}
		result.Created++
		return nil
	case err != nil:
		return err
	}

	switch mode {
	case ConflictModeSkip:
		result.Skipped++
	case ConflictModeFail:
		errs.Addf(rec.Line, csvimport.ColumnSize, csvimport.ErrCodeConflict, rec.Size, "size '%s' already exists", rec.Size)
	case ConflictModeUpdate:
		coverage, packing := rec.Coverage, rec.BoxPacking
		if err := existing.Update(nil, &coverage, &packing); err != nil {
			errs.Addf(rec.Line, "", csvimport.ErrCodeRowFailed, rec.Size, "%s", err.Error())
			return nil
		}
		if err := s.tileRepo.Save(ctx, existing); err != nil {
			return err
		}
		result.Updated++
	}
	return nil
}
