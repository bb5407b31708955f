package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/tileshop/backend/internal/domain/shared"
)

// TileRepository defines the interface for tile persistence.
// Lookups never return soft-deleted tiles.
type TileRepository interface {
	// FindByID finds a non-deleted tile by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Tile, error)

	// FindBySize finds a non-deleted tile by its size label
	FindBySize(ctx context.Context, size string) (*Tile, error)

	// FindAll finds non-deleted tiles matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Tile, error)

	// Count counts non-deleted tiles matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Save creates or updates a tile
	Save(ctx context.Context, tile *Tile) error

	// SoftDelete flags a tile as deleted
	SoftDelete(ctx context.Context, id uuid.UUID) error
}
