// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values. Middleware sets them; services and handlers read
// them without pulling in net/http.
package requestcontext

import (
	"context"
	"time"

	"github.com/google/uuid"

	"daystack/internal/auth/models"
)

// Context key types (unexported for encapsulation).
type (
	userKey        struct{}
	tokenUUIDKey   struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// User retrieves the authenticated user from the context. Returns nil when
// the request did not pass the auth gate.
func User(ctx context.Context) *models.User {
	if u, ok := ctx.Value(userKey{}).(*models.User); ok {
		return u
	}
	return nil
}

// WithUser injects the authenticated user into the context.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// AccessTokenUUID retrieves the verified access token's unique identifier.
// Returns uuid.Nil when unset.
func AccessTokenUUID(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(tokenUUIDKey{}).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// WithAccessTokenUUID injects the access token UUID into the context.
func WithAccessTokenUUID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, tokenUUIDKey{}, id)
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Now retrieves the request-scoped time, falling back to time.Now for
// non-HTTP contexts (tests, CLI).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a fixed time into a context. Useful for tests that need
// deterministic issuance timestamps.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
