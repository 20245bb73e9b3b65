package ports

import (
	"context"

	"github.com/salesdesk/crm-api/internal/core/domain"
)

// LoginResult is the payload returned on a successful login.
type LoginResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// AuthService handles credential verification and the session-token
// lifecycle.
type AuthService interface {
	// Login verifies the credentials and issues a bearer token carrying
	// the user's role at issuance time.
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	// ChangePassword re-authenticates with the current password before
	// storing a new hash. Previously issued tokens for the user are
	// revoked when a revocation store is configured.
	ChangePassword(ctx context.Context, username, password, newPassword string) (*domain.User, error)
}
