package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tileshop/backend/internal/domain/catalog"
	"github.com/tileshop/backend/internal/domain/shared"
	"github.com/tileshop/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTileRepository implements catalog.TileRepository using GORM
type GormTileRepository struct {
	db *gorm.DB
}

// NewGormTileRepository creates a new GormTileRepository
func NewGormTileRepository(db *gorm.DB) *GormTileRepository {
	return &GormTileRepository{db: db}
}

// FindByID finds a non-deleted tile by its ID
func (r *GormTileRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Tile, error) {
	var model models.TileModel
	if err := r.db.WithContext(ctx).
		Where("id = ? AND deleted = ?", id, false).
		First(&model).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// FindBySize finds the oldest non-deleted tile with the given size
func (r *GormTileRepository) FindBySize(ctx context.Context, size string) (*catalog.Tile, error) {
	var model models.TileModel
	if err := r.db.WithContext(ctx).
		Where("size = ? AND deleted = ?", size, false).
		Order("created_at ASC").
		First(&model).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return model.ToDomain(), nil
}

// FindAll finds non-deleted tiles matching the filter
func (r *GormTileRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Tile, error) {
	var tileModels []models.TileModel
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.TileModel{}), filter, true).
		Find(&tileModels).Error; err != nil {
		return nil, err
	}

	tiles := make([]catalog.Tile, len(tileModels))
	for i := range tileModels {
		tiles[i] = *tileModels[i].ToDomain()
	}
	return tiles, nil
}

// Count counts non-deleted tiles matching the filter
func (r *GormTileRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.TileModel{}), filter, false).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save inserts a new tile (version 1) or updates an existing one with an
// optimistic version check
func (r *GormTileRepository) Save(ctx context.Context, tile *catalog.Tile) error {
	model := models.TileModelFromDomain(tile)
	if tile.Version <= 1 {
		if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
			if isUniqueViolation(err) {
				return shared.ErrAlreadyExists
			}
			return fmt.Errorf("create tile: %w", err)
		}
		return nil
	}

	result := r.db.WithContext(ctx).Model(&models.TileModel{}).
		Where("id = ? AND version = ?", tile.ID, tile.Version-1).
		Updates(map[string]any{
			"size":        model.Size,
			"coverage":    model.Coverage,
			"box_packing": model.BoxPacking,
			"deleted":     model.Deleted,
			"version":     model.Version,
			"updated_at":  model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("update tile: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// SoftDelete flags a tile as deleted
func (r *GormTileRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&models.TileModel{}).
		Where("id = ? AND deleted = ?", id, false).
		Updates(map[string]any{
			"deleted":    true,
			"updated_at": time.Now(),
			"version":    gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormTileRepository) applyFilter(query *gorm.DB, filter shared.Filter, paginate bool) *gorm.DB {
	query = query.Where("deleted = ?", false)

	if filter.Search != "" {
		query = query.Where("LOWER(size) LIKE ? ESCAPE '"+likeEscape+"'", likePattern(filter.Search))
	}
	if !paginate {
		return query
	}

	filter = filter.Normalize()
	sortField := ValidateSortField(filter.OrderBy, TileSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", sortField, sortOrder))

	return query.Offset(filter.Offset()).Limit(filter.PageSize)
}

// Ensure GormTileRepository implements TileRepository
var _ catalog.TileRepository = (*GormTileRepository)(nil)
