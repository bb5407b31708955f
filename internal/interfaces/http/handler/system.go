package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tileshop/backend/internal/infrastructure/logger"
)

const healthPingTimeout = 2 * time.Second

// Pinger reports database reachability. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// SystemHandler serves the root banner and health check
type SystemHandler struct {
	BaseHandler
	db      Pinger
	version string
}

// NewSystemHandler creates a new SystemHandler. db may be nil.
func NewSystemHandler(db Pinger, version string) *SystemHandler {
	if version == "" {
		version = "1.0"
	}
	return &SystemHandler{db: db, version: version}
}

// RootResponse is the API banner
type RootResponse struct {
	Message string `json:"message" example:"Tile Shop Invoicing API"`
	Version string `json:"version" example:"1.0"`
}

// HealthResponse is the health check body
type HealthResponse struct {
	Status   string `json:"status" example:"healthy"`
	Service  string `json:"service" example:"tile-shop-api"`
	Database string `json:"database,omitempty" example:"ok"`
}

// Root godoc
// @ID           getRoot
// @Summary      API banner
// @Tags         system
// @Produce      json
// @Success      200 {object} RootResponse
// @Router       / [get]
func (h *SystemHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, RootResponse{Message: "Tile Shop Invoicing API", Version: h.version})
}

// Health godoc
// @ID           getHealth
// @Summary      Health check
// @Description  Reports 503 when the database does not answer a ping
// @Tags         system
// @Produce      json
// @Success      200 {object} HealthResponse
// @Failure      503 {object} HealthResponse
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{Status: "healthy", Service: "tile-shop-api"}
	if h.db == nil {
		c.JSON(http.StatusOK, resp)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
	defer cancel()
	if err := h.db.PingContext(ctx); err != nil {
		logger.L(c.Request.Context()).Warn("Health check database ping failed", zap.Error(err))
		resp.Status = "unhealthy"
		resp.Database = "unreachable"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	resp.Database = "ok"
	c.JSON(http.StatusOK, resp)
}
