package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	catalogapp "github.com/tileshop/backend/internal/application/catalog"
	csvimport "github.com/tileshop/backend/internal/infrastructure/import"
	"github.com/tileshop/backend/internal/interfaces/http/dto"
)

const maxImportFileSize = 2 << 20

// TileHandler handles the tile size catalogue
type TileHandler struct {
	BaseHandler
	tileService *catalogapp.TileService
}

// NewTileHandler creates a new TileHandler
func NewTileHandler(tileService *catalogapp.TileService) *TileHandler {
	return &TileHandler{tileService: tileService}
}

// Create godoc
// @ID           createTile
// @Summary      Create a tile size
// @Description  Register a tile size with its per-box coverage and packing
// @Tags         tiles
// @Accept       json
// @Produce      json
// @Param        request body catalogapp.CreateTileRequest true "Tile"
// @Success      201 {object} APIResponse[catalogapp.TileResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tiles [post]
func (h *TileHandler) Create(c *gin.Context) {
	var req catalogapp.CreateTileRequest
	if !h.BindJSON(c, &req) {
		return
	}

	tile, err := h.tileService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, tile)
}

// List godoc
// @ID           listTiles
// @Summary      List tile sizes
// @Tags         tiles
// @Produce      json
// @Param        search query string false "Size contains"
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Page size" default(20) maximum(100)
// @Success      200 {object} APIResponse[[]catalogapp.TileResponse]
// @Security     BearerAuth
// @Router       /tiles [get]
func (h *TileHandler) List(c *gin.Context) {
	var filter catalogapp.TileListFilter
	if !h.BindQuery(c, &filter) {
		return
	}

	tiles, total, err := h.tileService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, tiles, total, filter.Page, filter.PageSize)
}

// GetBySize godoc
// @ID           getTileBySize
// @Summary      Look up coverage by tile size
// @Description  Used by the invoice form to prefill coverage and box packing
// @Tags         tiles
// @Produce      json
// @Param        size path string true "Tile size, e.g. 2x2"
// @Success      200 {object} APIResponse[catalogapp.TileSizeResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tiles/by-size/{size} [get]
func (h *TileHandler) GetBySize(c *gin.Context) {
	tile, err := h.tileService.GetBySize(c.Request.Context(), c.Param("size"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tile)
}

// GetByID godoc
// @ID           getTileById
// @Summary      Get a tile size
// @Tags         tiles
// @Produce      json
// @Param        id path string true "Tile ID" format(uuid)
// @Success      200 {object} APIResponse[catalogapp.TileResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tiles/{id} [get]
func (h *TileHandler) GetByID(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	tile, err := h.tileService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tile)
}

// Update godoc
// @ID           updateTile
// @Summary      Update a tile size
// @Tags         tiles
// @Accept       json
// @Produce      json
// @Param        id path string true "Tile ID" format(uuid)
// @Param        request body catalogapp.UpdateTileRequest true "Changed fields"
// @Success      200 {object} APIResponse[catalogapp.TileResponse]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tiles/{id} [put]
func (h *TileHandler) Update(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req catalogapp.UpdateTileRequest
	if !h.BindJSON(c, &req) {
		return
	}

	tile, err := h.tileService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tile)
}

// Delete godoc
// @ID           deleteTile
// @Summary      Delete a tile size
// @Tags         tiles
// @Produce      json
// @Param        id path string true "Tile ID" format(uuid)
// @Success      200 {object} APIResponse[dto.MessageResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tiles/{id} [delete]
func (h *TileHandler) Delete(c *gin.Context) {
	id, ok := h.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.tileService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Tile deleted successfully")
}

// Import godoc
// @ID           importTiles
// @Summary      Bulk load tile sizes from CSV
// @Description  Columns size, coverage and optional box_packing. Existing sizes are skipped, updated or reported per conflict_mode.
// @Tags         tiles
// @Accept       multipart/form-data
// @Produce      json
// @Param        file formData file true "CSV file"
// @Param        conflict_mode formData string false "skip | update | fail" default(skip)
// @Success      200 {object} APIResponse[catalogapp.TileImportResult]
// @Failure      400 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /tiles/import [post]
func (h *TileHandler) Import(c *gin.Context) {
	mode := catalogapp.ConflictMode(c.DefaultPostForm("conflict_mode", string(catalogapp.ConflictModeSkip)))
	if !mode.IsValid() {
		h.BadRequest(c, "Invalid conflict_mode, must be one of: skip, update, fail")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		h.BadRequest(c, "file is required")
		return
	}
	defer file.Close()

	if header.Size > maxImportFileSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeValidation, "file exceeds maximum size of 2MB")
		return
	}

	sheet, err := csvimport.ReadTiles(file, 100)
	if err != nil {
		switch {
		case errors.Is(err, csvimport.ErrEmptyFile),
			errors.Is(err, csvimport.ErrInvalidEncoding),
			errors.Is(err, csvimport.ErrMissingHeader):
			h.BadRequest(c, err.Error())
		default:
			h.BadRequest(c, "Malformed CSV: "+err.Error())
		}
		return
	}

	result, err := h.tileService.Import(c.Request.Context(), sheet, mode)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
