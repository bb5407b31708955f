package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/tileshop/backend/internal/infrastructure/config"
)

// ErrInvalidCredentials is returned for any failed login
var ErrInvalidCredentials = errors.New("invalid username or password")

// AdminAuthenticator checks the single configured admin account and manages
// its sessions
type AdminAuthenticator struct {
	username     string
	passwordHash []byte
	jwt          *JWTService
	blacklist    TokenBlacklist
}

// NewAdminAuthenticator validates that the configured hash is a bcrypt hash
func NewAdminAuthenticator(cfg config.AuthConfig, jwtService *JWTService, blacklist TokenBlacklist) (*AdminAuthenticator, error) {
	if _, err := bcrypt.Cost([]byte(cfg.AdminPasswordHash)); err != nil {
		return nil, fmt.Errorf("auth.admin_password_hash is not a bcrypt hash: %w", err)
	}
	if blacklist == nil {
		blacklist = NewInMemoryTokenBlacklist()
	}
	return &AdminAuthenticator{
		username:     cfg.AdminUser,
		passwordHash: []byte(cfg.AdminPasswordHash),
		jwt:          jwtService,
		blacklist:    blacklist,
	}, nil
}

// Login returns a token when username and password match
func (a *AdminAuthenticator) Login(username, password string) (*Token, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	// always run bcrypt so a wrong username costs the same as a wrong password
	passErr := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password))
	if !userOK || passErr != nil {
		return nil, ErrInvalidCredentials
	}
	return a.jwt.GenerateToken(username)
}

// Authenticate validates a bearer token and rejects revoked ones
func (a *AdminAuthenticator) Authenticate(ctx context.Context, token string) (*Claims, error) {
	claims, err := a.jwt.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	revoked, err := a.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, ErrTokenBlacklisted
	}
	return claims, nil
}

// Logout revokes the token for the rest of its lifetime
func (a *AdminAuthenticator) Logout(ctx context.Context, claims *Claims) error {
	return a.blacklist.Add(ctx, claims.ID, claims.ExpiresIn())
}
