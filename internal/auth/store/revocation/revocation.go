// Package revocation implements the server-side token revocation list.
// Logout adds the access token's jti with a TTL bounded by the token's
// remaining lifetime; the auth gate consults the list after signature
// verification so a revoked-but-unexpired token stops working immediately.
package revocation

import (
	"context"
	"fmt"
	"time"

	"daystack/pkg/platform/sentinel"
)

// List is the revocation surface consumed by the auth gate and service.
type List interface {
	// Revoke marks jti as revoked for ttl. A zero or negative ttl is
	// rejected: an already-expired token needs no revocation entry.
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	// IsRevoked reports whether jti is on the list.
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

func validateTTL(ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive: %w", sentinel.ErrInvalidState)
	}
	return nil
}
