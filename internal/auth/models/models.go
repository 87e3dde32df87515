// Package models holds the identity records and DTOs shared by the auth
// service, its stores, and the HTTP layer.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Supported identity providers. Provider tags what credential a user signs
// in with; a user registered through one provider never authenticates
// through another.
const (
	ProviderLocal  = "local"
	ProviderGoogle = "google"
)

// User is the identity record. PasswordHash is present only for the local
// provider and is never serialized.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Name         string
	Photo        string
	Role         string
	Verified     bool
	Provider     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the client-facing projection of User.
type PublicUser struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Photo     string    `json:"photo,omitempty"`
	Role      string    `json:"role"`
	Verified  bool      `json:"verified"`
	Provider  string    `json:"provider"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Public returns the serializable projection of u.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Photo:     u.Photo,
		Role:      u.Role,
		Verified:  u.Verified,
		Provider:  u.Provider,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// RegisterRequest is the payload for POST /api/auth/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the payload for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
