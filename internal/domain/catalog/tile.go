package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tileshop/backend/internal/domain/shared"
)

// AggregateTypeTile is the aggregate type name used in events
const AggregateTypeTile = "Tile"

// Tile is a tile size definition. Coverage is the sqft of floor area in one
// box and is the conversion factor between per-box and per-sqft pricing.
// Tiles are soft-deleted so invoices that referenced them stay readable.
type Tile struct {
	shared.BaseAggregateRoot
	Size       string
	Coverage   decimal.Decimal
	BoxPacking int
	Deleted    bool
}

// NewTile creates a new tile
func NewTile(size string, coverage decimal.Decimal, boxPacking int) (*Tile, error) {
	size = strings.TrimSpace(size)
	if err := validateSize(size); err != nil {
		return nil, err
	}
	if err := validateCoverage(coverage); err != nil {
		return nil, err
	}
	if err := validateBoxPacking(boxPacking); err != nil {
		return nil, err
	}

	return &Tile{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Size:              size,
		Coverage:          coverage,
		BoxPacking:        boxPacking,
	}, nil
}

// Update applies an administrative correction. Nil arguments are left unchanged.
func (t *Tile) Update(size *string, coverage *decimal.Decimal, boxPacking *int) error {
	if t.Deleted {
		return shared.NotFound("Tile not found")
	}
	if size != nil {
		s := strings.TrimSpace(*size)
		if err := validateSize(s); err != nil {
			return err
		}
		t.Size = s
	}
	if coverage != nil {
		if err := validateCoverage(*coverage); err != nil {
			return err
		}
		t.Coverage = *coverage
	}
	if boxPacking != nil {
		if err := validateBoxPacking(*boxPacking); err != nil {
			return err
		}
		t.BoxPacking = *boxPacking
	}

	t.Touch()
	return nil
}

// SoftDelete marks the tile deleted
func (t *Tile) SoftDelete() error {
	if t.Deleted {
		return shared.NotFound("Tile not found")
	}
	t.Deleted = true
	t.Touch()
	return nil
}

func validateSize(size string) error {
	if size == "" {
		return shared.InvalidInput("Tile size cannot be empty")
	}
	if len(size) > 50 {
		return shared.InvalidInput("Tile size cannot exceed 50 characters")
	}
	return nil
}

func validateCoverage(coverage decimal.Decimal) error {
	if coverage.IsNegative() {
		return shared.InvalidInput("Coverage cannot be negative")
	}
	return nil
}

func validateBoxPacking(boxPacking int) error {
	if boxPacking < 0 {
		return shared.InvalidInput("Box packing cannot be negative")
	}
	return nil
}
