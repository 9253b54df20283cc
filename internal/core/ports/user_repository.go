package ports

import (
	"context"

	"github.com/safecity/incident-api/internal/core/domain"
)

// UserRepository defines the interface for user persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	// FindByEmail matches the stored (lower-cased) email.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// List returns a page of users ordered by created_at descending.
	List(ctx context.Context, limit, offset int) ([]*domain.User, error)
}
