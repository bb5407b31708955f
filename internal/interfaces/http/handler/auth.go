package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tileshop/backend/internal/infrastructure/auth"
	"github.com/tileshop/backend/internal/infrastructure/logger"
	"github.com/tileshop/backend/internal/interfaces/http/middleware"
)

// SessionManager issues and revokes admin tokens
type SessionManager interface {
	Login(username, password string) (*auth.Token, error)
	Logout(ctx context.Context, claims *auth.Claims) error
}

// AuthHandler handles admin login and logout
type AuthHandler struct {
	BaseHandler
	sessions SessionManager
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(sessions SessionManager) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

// LoginRequest holds admin credentials
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=100" example:"admin"`
	Password string `json:"password" binding:"required,max=200" example:"secret"`
}

// Login godoc
// @ID           login
// @Summary      Admin login
// @Description  Exchanges the admin credentials for a bearer token. Rate limited per client IP.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Success      200 {object} APIResponse[auth.Token]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      429 {object} ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	token, err := h.sessions.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			logger.L(c.Request.Context()).Warn("Admin login rejected", zap.String("client_ip", c.ClientIP()))
			h.Unauthorized(c, "Invalid username or password")
			return
		}
		h.HandleError(c, err)
		return
	}
	h.Success(c, token)
}

// Logout godoc
// @ID           logout
// @Summary      Revoke the current token
// @Tags         auth
// @Produce      json
// @Success      200 {object} APIResponse[dto.MessageResponse]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	if err := h.sessions.Logout(c.Request.Context(), claims); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Logged out")
}
