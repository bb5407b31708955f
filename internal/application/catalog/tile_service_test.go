package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tileshop/backend/internal/domain/catalog"
	"github.com/tileshop/backend/internal/domain/shared"
)

// MockTileRepository is a mock implementation of catalog.TileRepository
type MockTileRepository struct {
	mock.Mock
}

func (m *MockTileRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Tile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Tile), args.Error(1)
}

func (m *MockTileRepository) FindBySize(ctx context.Context, size string) (*catalog.Tile, error) {
	args := m.Called(ctx, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Tile), args.Error(1)
}

func (m *MockTileRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Tile, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Tile), args.Error(1)
}

func (m *MockTileRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTileRepository) Save(ctx context.Context, tile *catalog.Tile) error {
	return m.Called(ctx, tile).Error(0)
}

func (m *MockTileRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func newTile(t *testing.T, size string) *catalog.Tile {
	t.Helper()
	tile, err := catalog.NewTile(size, decimal.RequireFromString("15.5"), 4)
	require.NoError(t, err)
	return tile
}

func TestTileService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a new size", func(t *testing.T) {
		repo := new(MockTileRepository)
		svc := NewTileService(repo)
		repo.On("FindBySize", ctx, "600x600mm").Return(nil, shared.ErrNotFound)
		repo.On("Save", ctx, mock.AnythingOfType("*catalog.Tile")).Return(nil)

		resp, err := svc.Create(ctx, CreateTileRequest{Size: " 600x600mm ", Coverage: decimal.RequireFromString("15.5"), BoxPacking: 4})
		require.NoError(t, err)
		assert.Equal(t, "600x600mm", resp.Size)
		assert.True(t, resp.Coverage.Equal(decimal.RequireFromString("15.5")))
		assert.Equal(t, 4, resp.BoxPacking)
		repo.AssertExpectations(t)
	})

	t.Run("rejects duplicate size", func(t *testing.T) {
		repo := new(MockTileRepository)
		svc := NewTileService(repo)
		repo.On("FindBySize", ctx, "600x600mm").Return(newTile(t, "600x600mm"), nil)

		_, err := svc.Create(ctx, CreateTileRequest{Size: "600x600mm", Coverage: decimal.NewFromInt(10)})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("maps unique violation from a racing insert", func(t *testing.T) {
		repo := new(MockTileRepository)
		svc := NewTileService(repo)
		repo.On("FindBySize", ctx, "300x300mm").Return(nil, shared.ErrNotFound)
		repo.On("Save", ctx, mock.Anything).Return(shared.ErrAlreadyExists)

		_, err := svc.Create(ctx, CreateTileRequest{Size: "300x300mm", Coverage: decimal.NewFromInt(10)})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "Tile with this size already exists", domainErr.Message)
	})

	t.Run("rejects negative coverage", func(t *testing.T) {
		repo := new(MockTileRepository)
		svc := NewTileService(repo)
		repo.On("FindBySize", ctx, "300x300mm").Return(nil, shared.ErrNotFound)

		_, err := svc.Create(ctx, CreateTileRequest{Size: "300x300mm", Coverage: decimal.NewFromInt(-1)})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestTileService_GetBySize(t *testing.T) {
	ctx := context.Background()
	repo := new(MockTileRepository)
	svc := NewTileService(repo)
	repo.On("FindBySize", ctx, "600x600mm").Return(newTile(t, "600x600mm"), nil)
	repo.On("FindBySize", ctx, "missing").Return(nil, shared.ErrNotFound)

	resp, err := svc.GetBySize(ctx, "600x600mm")
	require.NoError(t, err)
	assert.Equal(t, 4, resp.BoxPacking)

	_, err = svc.GetBySize(ctx, "missing")
	assert.Equal(t, ErrTileSizeNotFound, err)
}

func TestTileService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("partial update keeps other fields", func(t *testing.T) {
		repo := new(MockTileRepository)
		svc := NewTileService(repo)
		tile := newTile(t, "600x600mm")
		repo.On("FindByID", ctx, tile.ID).Return(tile, nil)
		repo.On("Save", ctx, tile).Return(nil)

		packing := 6
		resp, err := svc.Update(ctx, tile.ID, UpdateTileRequest{BoxPacking: &packing})
		require.NoError(t, err)
		assert.Equal(t, 6, resp.BoxPacking)
		assert.Equal(t, "600x600mm", resp.Size)
		assert.Equal(t, 2, tile.Version)
	})

	t.Run("renaming onto an existing size conflicts", func(t *testing.T) {
		repo := new(MockTileRepository)
		svc := NewTileService(repo)
		tile := newTile(t, "600x600mm")
		repo.On("FindByID", ctx, tile.ID).Return(tile, nil)
		repo.On("FindBySize", ctx, "300x300mm").Return(newTile(t, "300x300mm"), nil)

		size := "300x300mm"
		_, err := svc.Update(ctx, tile.ID, UpdateTileRequest{Size: &size})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
	})

	t.Run("missing tile", func(t *testing.T) {
		repo := new(MockTileRepository)
		svc := NewTileService(repo)
		id := uuid.New()
		repo.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		_, err := svc.Update(ctx, id, UpdateTileRequest{})
		assert.Equal(t, ErrTileNotFound, err)
	})
}

func TestTileService_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := new(MockTileRepository)
	svc := NewTileService(repo)

	tiles := []catalog.Tile{*newTile(t, "600x600mm"), *newTile(t, "300x300mm")}
	repo.On("FindAll", ctx, mock.MatchedBy(func(f shared.Filter) bool { return f.Page == 1 && f.PageSize == 20 })).Return(tiles, nil)
	repo.On("Count", ctx, mock.Anything).Return(int64(2), nil)

	list, total, err := svc.List(ctx, TileListFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, int64(2), total)

	id := uuid.New()
	repo.On("SoftDelete", ctx, id).Return(shared.ErrNotFound)
	assert.Equal(t, ErrTileNotFound, svc.Delete(ctx, id))

	failing := uuid.New()
	boom := errors.New("db down")
	repo.On("SoftDelete", ctx, failing).Return(boom)
	assert.ErrorIs(t, svc.Delete(ctx, failing), boom)
}
