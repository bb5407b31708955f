package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tileshop/backend/internal/domain/catalog"
	"github.com/tileshop/backend/internal/domain/shared"
)

func createTestTile(t *testing.T, repo *GormTileRepository, size string, coverage string) *catalog.Tile {
	t.Helper()
	tile, err := catalog.NewTile(size, decimal.RequireFromString(coverage), 4)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), tile))
	return tile
}

func TestGormTileRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("save and find by id", func(t *testing.T) {
		repo := NewGormTileRepository(newTestDatabase(t).DB)
		tile := createTestTile(t, repo, "2x2", "15.5")

		found, err := repo.FindByID(ctx, tile.ID)
		require.NoError(t, err)
		assert.Equal(t, "2x2", found.Size)
		assert.True(t, found.Coverage.Equal(decimal.RequireFromString("15.5")))
		assert.Equal(t, 4, found.BoxPacking)
		assert.Equal(t, 1, found.Version)
	})

	t.Run("find by size returns the oldest tile", func(t *testing.T) {
		repo := NewGormTileRepository(newTestDatabase(t).DB)
		first := createTestTile(t, repo, "4x2", "32")
		time.Sleep(5 * time.Millisecond)
		createTestTile(t, repo, "4x2", "30")

		found, err := repo.FindBySize(ctx, "4x2")
		require.NoError(t, err)
		assert.Equal(t, first.ID, found.ID)

		_, err = repo.FindBySize(ctx, "8x8")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("update bumps the version and detects stale writes", func(t *testing.T) {
		repo := NewGormTileRepository(newTestDatabase(t).DB)
		tile := createTestTile(t, repo, "1x1", "10")

		stale, err := repo.FindByID(ctx, tile.ID)
		require.NoError(t, err)

		coverage := decimal.NewFromInt(11)
		require.NoError(t, tile.Update(nil, &coverage, nil))
		require.NoError(t, repo.Save(ctx, tile))

		found, err := repo.FindByID(ctx, tile.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, found.Version)
		assert.True(t, found.Coverage.Equal(coverage))

		size := "1x1 matt"
		require.NoError(t, stale.Update(&size, nil, nil))
		assert.ErrorIs(t, repo.Save(ctx, stale), shared.ErrConcurrencyConflict)
	})

	t.Run("soft delete hides the tile", func(t *testing.T) {
		repo := NewGormTileRepository(newTestDatabase(t).DB)
		tile := createTestTile(t, repo, "3x3", "9")

		require.NoError(t, repo.SoftDelete(ctx, tile.ID))
		_, err := repo.FindByID(ctx, tile.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.ErrorIs(t, repo.SoftDelete(ctx, tile.ID), shared.ErrNotFound)
	})

	t.Run("find all searches and pages", func(t *testing.T) {
		repo := NewGormTileRepository(newTestDatabase(t).DB)
		createTestTile(t, repo, "2x2", "16")
		createTestTile(t, repo, "2x4", "32")
		createTestTile(t, repo, "10_x", "1")
		deleted := createTestTile(t, repo, "2x8", "64")
		require.NoError(t, repo.SoftDelete(ctx, deleted.ID))

		filter := shared.Filter{Search: "2X", OrderBy: "size", OrderDir: "asc"}
		tiles, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, tiles, 2)
		assert.Equal(t, "2x2", tiles[0].Size)
		assert.Equal(t, "2x4", tiles[1].Size)

		count, err := repo.Count(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)

		// "_" is a LIKE wildcard and must match literally
		tiles, err = repo.FindAll(ctx, shared.Filter{Search: "0_"})
		require.NoError(t, err)
		require.Len(t, tiles, 1)
		assert.Equal(t, "10_x", tiles[0].Size)

		tiles, err = repo.FindAll(ctx, shared.Filter{Page: 2, PageSize: 2, OrderBy: "size", OrderDir: "asc"})
		require.NoError(t, err)
		assert.Len(t, tiles, 1)
	})
}
