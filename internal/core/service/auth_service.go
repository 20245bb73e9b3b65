package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/salesdesk/crm-api/internal/api/metrics"
	"github.com/salesdesk/crm-api/internal/auth"
	"github.com/salesdesk/crm-api/internal/core/domain"
	"github.com/salesdesk/crm-api/internal/core/ports"
)

// AuthService implements login and password change.
type AuthService struct {
	users  ports.UsersRepository
	tokens *auth.TokenService
	logger zerolog.Logger
}

func NewAuthService(users ports.UsersRepository, tokens *auth.TokenService, logger zerolog.Logger) *AuthService {
	return &AuthService{users: users, tokens: tokens, logger: logger}
}

// Login verifies the credentials and issues a bearer token. An unknown
// username and a wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.VerifyPassword(password, user.PasswordHash) {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.Username, user.Role)
	if err != nil {
		return nil, failedTo("issue token", err)
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.logger.Info().Str("username", user.Username).Str("role", string(user.Role)).Msg("login")

	return &ports.LoginResult{AccessToken: token, TokenType: "bearer"}, nil
}

// ChangePassword re-authenticates with the current password, stores the new
// hash and revokes the user's outstanding tokens when a revocation store is
// configured.
func (s *AuthService) ChangePassword(ctx context.Context, username, password, newPassword string) (*domain.User, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.VerifyPassword(password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	if err := validatePassword(newPassword); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return nil, failedTo("hash password", err)
	}

	updated, err := s.users.UpdatePassword(ctx, user.ID, hash)
	if err != nil {
		return nil, failedTo("change password", err)
	}

	if err := s.tokens.RevokeSubject(ctx, user.Username); err != nil {
		// The password change itself succeeded; old tokens stay valid
		// until natural expiry, which is the unrevoked baseline anyway.
		s.logger.Warn().Err(err).Str("username", user.Username).Msg("token revocation failed")
	}

	s.logger.Info().Str("username", user.Username).Msg("password changed")
	return updated, nil
}
