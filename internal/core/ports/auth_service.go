package ports

import (
	"context"

	"github.com/safecity/incident-api/internal/core/domain"
)

// AuthResult is returned by Register and Login: the persisted user plus a
// freshly issued token.
type AuthResult struct {
	User  *domain.User
	Token string
}

type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*AuthResult, error)
	Login(ctx context.Context, username, password string) (*AuthResult, error)
	// ResolveCurrentUser re-fetches the live user record for the token's
	// subject so role/ban changes since issuance are reflected. Returns
	// domain.ErrUserNotFound when the subject no longer exists.
	ResolveCurrentUser(ctx context.Context, userID string) (*domain.User, error)
}
