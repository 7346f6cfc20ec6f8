// Package identity contains the account and session use cases.
package identity

import (
	"context"
	"time"

	"github.com/datascientist-hue/live-dashboard/internal/domain/identity"
	"github.com/datascientist-hue/live-dashboard/internal/domain/shared"
	"github.com/datascientist-hue/live-dashboard/internal/infrastructure/auth"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// dummyPasswordHash is compared against on the unknown-username path so the
// response time does not reveal whether the username exists.
var dummyPasswordHash, _ = bcrypt.GenerateFromPassword([]byte("timing-equalizer"), 12)

// AuthService handles login and logout.
type AuthService struct {
	accounts   identity.AccountRepository
	jwtService *auth.JWTService
	revoker    auth.TokenRevoker
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	accounts identity.AccountRepository,
	jwtService *auth.JWTService,
	revoker auth.TokenRevoker,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		accounts:   accounts,
		jwtService: jwtService,
		revoker:    revoker,
		logger:     logger,
	}
}

// LoginInput carries the credentials for a login attempt.
type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResult is the session granted to a successful login.
type LoginResult struct {
	Token       string        `json:"token"`
	ExpiresAt   time.Time     `json:"expires_at"`
	Username    string        `json:"username"`
	DisplayName string        `json:"display_name"`
	Role        identity.Role `json:"role"`
}

// Login verifies credentials and issues a session token. The failure message
// is identical for an unknown username and a wrong password so the endpoint
// cannot be used to probe which usernames exist.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	account, err := s.accounts.FindByUsername(ctx, input.Username)
	if err != nil {
		// Burn a comparison so this path costs the same as a wrong password.
		_ = bcrypt.CompareHashAndPassword(dummyPasswordHash, []byte(input.Password))
		s.logger.Warn("Login failed", zap.String("username", identity.NormalizeUsername(input.Username)))
		return nil, shared.ErrAuthFailed
	}

	if !account.VerifyPassword(input.Password) {
		s.logger.Warn("Login failed", zap.String("username", account.Username))
		return nil, shared.ErrAuthFailed
	}

	token, err := s.jwtService.Generate(account)
	if err != nil {
		s.logger.Error("Failed to generate session token", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create session")
	}

	s.logger.Info("Login succeeded",
		zap.String("username", account.Username),
		zap.String("role", string(account.Role)))

	return &LoginResult{
		Token:       token.Token,
		ExpiresAt:   token.ExpiresAt,
		Username:    account.Username,
		DisplayName: account.DisplayName,
		Role:        account.Role,
	}, nil
}

// Logout revokes the session token for the remainder of its lifetime.
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := s.revoker.Revoke(ctx, claims.ID, ttl); err != nil {
		s.logger.Error("Failed to revoke session token", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to end session")
	}
	s.logger.Info("Logout", zap.String("username", claims.Username))
	return nil
}
