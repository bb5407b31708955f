package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tileshop/backend/internal/infrastructure/auth"
	"github.com/tileshop/backend/internal/interfaces/http/dto"
	"github.com/tileshop/backend/internal/interfaces/http/middleware"
)

type MockSessionManager struct {
	mock.Mock
}

func (m *MockSessionManager) Login(username, password string) (*auth.Token, error) {
	args := m.Called(username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Token), args.Error(1)
}

func (m *MockSessionManager) Logout(ctx context.Context, claims *auth.Claims) error {
	return m.Called(ctx, claims).Error(0)
}

func newAuthAPI(sessions SessionManager, claims *auth.Claims) *testAPI {
	h := NewAuthHandler(sessions)
	router := gin.New()
	router.POST("/api/v1/auth/login", h.Login)
	router.POST("/api/v1/auth/logout", func(c *gin.Context) {
		if claims != nil {
			c.Set(middleware.JWTClaimsKey, claims)
		}
		c.Next()
	}, h.Logout)
	return &testAPI{router: router}
}

func TestAuthHandler_Login(t *testing.T) {
	sessions := new(MockSessionManager)
	expires := time.Date(2025, 6, 10, 23, 0, 0, 0, time.UTC)
	sessions.On("Login", "admin", "s3cret").Return(&auth.Token{AccessToken: "tok", ExpiresAt: expires, TokenType: "Bearer"}, nil)
	sessions.On("Login", "admin", "wrong").Return(nil, auth.ErrInvalidCredentials)
	api := newAuthAPI(sessions, nil)

	w := api.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"username": "admin", "password": "s3cret"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tok", decode[auth.Token](t, w).Data.AccessToken)

	w = api.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"username": "admin", "password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeUnauthorized, decode[any](t, w).Error.Code)

	w = api.do(t, http.MethodPost, "/api/v1/auth/login", map[string]string{"username": "admin"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	sessions.AssertExpectations(t)
}

func TestAuthHandler_Logout(t *testing.T) {
	claims := &auth.Claims{Username: "admin"}
	sessions := new(MockSessionManager)
	sessions.On("Logout", mock.Anything, claims).Return(nil)

	w := newAuthAPI(sessions, claims).do(t, http.MethodPost, "/api/v1/auth/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Logged out", decode[dto.MessageResponse](t, w).Data.Message)
	sessions.AssertExpectations(t)

	w = newAuthAPI(new(MockSessionManager), nil).do(t, http.MethodPost, "/api/v1/auth/logout", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
