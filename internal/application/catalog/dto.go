package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tileshop/backend/internal/domain/catalog"
)

// CreateTileRequest represents a request to create a tile size
type CreateTileRequest struct {
	Size       string          `json:"size" binding:"required,min=1,max=50"`
	Coverage   decimal.Decimal `json:"coverage"`
	BoxPacking int             `json:"box_packing" binding:"gte=0"`
}

// UpdateTileRequest is a partial correction; omitted fields are kept
type UpdateTileRequest struct {
	Size       *string          `json:"size" binding:"omitempty,min=1,max=50"`
	Coverage   *decimal.Decimal `json:"coverage"`
	BoxPacking *int             `json:"box_packing" binding:"omitempty,gte=0"`
}

// TileListFilter represents filter options for the tile list
type TileListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// TileResponse represents a tile in API responses
type TileResponse struct {
	ID         uuid.UUID       `json:"id"`
	Size       string          `json:"size"`
	Coverage   decimal.Decimal `json:"coverage"`
	BoxPacking int             `json:"box_packing"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// TileSizeResponse is the lookup shape used by the invoice form
type TileSizeResponse struct {
	Size       string          `json:"size"`
	Coverage   decimal.Decimal `json:"coverage"`
	BoxPacking int             `json:"box_packing"`
}

// ToTileResponse converts a domain Tile to TileResponse
func ToTileResponse(t *catalog.Tile) TileResponse {
	return TileResponse{
		ID:         t.ID,
		Size:       t.Size,
		Coverage:   t.Coverage,
		BoxPacking: t.BoxPacking,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}

// ToTileResponses converts a slice of domain Tiles
func ToTileResponses(tiles []catalog.Tile) []TileResponse {
	out := make([]TileResponse, len(tiles))
	for i := range tiles {
		out[i] = ToTileResponse(&tiles[i])
	}
	return out
}
