package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/gobuddy/backend/internal/domain/entity"
)

// UserRepository defines the interface for admin account persistence.
type UserRepository interface {
	// FindByEmail retrieves an admin account by email.
	// Returns domain ErrUserNotFound when missing.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID retrieves an admin account by id.
	// Returns domain ErrUserNotFound when missing.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
}
