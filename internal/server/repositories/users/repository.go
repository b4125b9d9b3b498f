// Package users declares the user-directory contract the auth flows depend
// on, together with its PostgreSQL implementation.
package users

import (
	"context"

	"github.com/mkuzmins/authkeeper/internal/server/models"
)

// Repository is the directory of identities. Implementations must treat
// email case-insensitively (callers normalize to lowercase before calling).
type Repository interface {
	// Create stores a new identity and returns it with its assigned ID.
	// A duplicate email yields common.ErrorConflict.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetByEmail returns the identity for email, or common.ErrorNotFound.
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetByID returns the identity for id, or common.ErrorNotFound.
	GetByID(ctx context.Context, id string) (*models.User, error)

	// EmailExists reports whether an identity with email exists.
	EmailExists(ctx context.Context, email string) (bool, error)

	// UpdatePassword replaces the stored password hash for email.
	// Returns common.ErrorNotFound when the identity is absent.
	UpdatePassword(ctx context.Context, email, passwordHash string) error
}
