package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/tileshop/backend/internal/domain/catalog"
	"github.com/tileshop/backend/internal/domain/shared"
)

var (
	ErrTileNotFound       = shared.NotFound("Tile not found")
	ErrTileSizeNotFound   = shared.NotFound("Tile with this size not found")
	ErrTileSizeDuplicated = shared.NewDomainError(shared.ErrAlreadyExists.Code, "Tile with this size already exists")
)

// TileService handles tile catalogue operations
type TileService struct {
	tileRepo catalog.TileRepository
}

// NewTileService creates a new TileService
func NewTileService(tileRepo catalog.TileRepository) *TileService {
	return &TileService{tileRepo: tileRepo}
}

// Create adds a tile size. Sizes are unique among non-deleted tiles.
func (s *TileService) Create(ctx context.Context, req CreateTileRequest) (*TileResponse, error) {
	if err := s.ensureSizeFree(ctx, req.Size, uuid.Nil); err != nil {
		return nil, err
	}

	tile, err := catalog.NewTile(req.Size, req.Coverage, req.BoxPacking)
	if err != nil {
		return nil, err
	}
	if err := s.tileRepo.Save(ctx, tile); err != nil {
		return nil, translateSaveError(err)
	}

	response := ToTileResponse(tile)
	return &response, nil
}

// GetByID retrieves a tile by ID
func (s *TileService) GetByID(ctx context.Context, id uuid.UUID) (*TileResponse, error) {
	tile, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToTileResponse(tile)
	return &response, nil
}

// GetBySize looks up coverage and packing for a size label
func (s *TileService) GetBySize(ctx context.Context, size string) (*TileSizeResponse, error) {
	tile, err := s.tileRepo.FindBySize(ctx, strings.TrimSpace(size))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrTileSizeNotFound
		}
		return nil, err
	}
	return &TileSizeResponse{Size: tile.Size, Coverage: tile.Coverage, BoxPacking: tile.BoxPacking}, nil
}

// List retrieves a page of tiles
func (s *TileService) List(ctx context.Context, filter TileListFilter) ([]TileResponse, int64, error) {
	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
	}.Normalize()

	tiles, err := s.tileRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.tileRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToTileResponses(tiles), total, nil
}

// Update applies an administrative correction
func (s *TileService) Update(ctx context.Context, id uuid.UUID, req UpdateTileRequest) (*TileResponse, error) {
	tile, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Size != nil && strings.TrimSpace(*req.Size) != tile.Size {
		if err := s.ensureSizeFree(ctx, *req.Size, tile.ID); err != nil {
			return nil, err
		}
	}

	if err := tile.Update(req.Size, req.Coverage, req.BoxPacking); err != nil {
		return nil, err
	}
	if err := s.tileRepo.Save(ctx, tile); err != nil {
		return nil, translateSaveError(err)
	}

	response := ToTileResponse(tile)
	return &response, nil
}

// Delete soft-deletes a tile
func (s *TileService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.tileRepo.SoftDelete(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return ErrTileNotFound
		}
		return err
	}
	return nil
}

func (s *TileService) find(ctx context.Context, id uuid.UUID) (*catalog.Tile, error) {
	tile, err := s.tileRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrTileNotFound
		}
		return nil, err
	}
	return tile, nil
}

func (s *TileService) ensureSizeFree(ctx context.Context, size string, self uuid.UUID) error {
	existing, err := s.tileRepo.FindBySize(ctx, strings.TrimSpace(size))
	switch {
	case err == nil && existing.ID != self:
		return ErrTileSizeDuplicated
	case err == nil, errors.Is(err, shared.ErrNotFound):
		return nil
	default:
		return err
	}
}

func translateSaveError(err error) error {
	if errors.Is(err, shared.ErrAlreadyExists) {
		return ErrTileSizeDuplicated
	}
	return err
}
