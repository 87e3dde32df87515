// Package store defines the persistence interfaces consumed by the auth
// service and gate. Implementations return pkg/platform/sentinel errors;
// services translate those into domain errors.
package store

import (
	"context"

	"github.com/google/uuid"

	"daystack/internal/auth/models"
)

// UserStore is the identity lookup and creation surface the auth core needs.
// The auth core reads users and creates them only on first OAuth login and
// local registration; everything else about user persistence belongs to the
// surrounding application.
type UserStore interface {
	// FindByID returns the user with the given id, or sentinel.ErrNotFound.
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// FindByEmail returns the user with the given (lower-cased) email, or
	// sentinel.ErrNotFound.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// Create persists a new user, returning sentinel.ErrConflict when the
	// email is already taken.
	Create(ctx context.Context, user *models.User) error
}
