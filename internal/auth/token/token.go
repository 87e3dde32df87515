// Package token signs and verifies access and refresh tokens. The engine is
// pure and stateless: keys arrive as explicit PEM parameters so access and
// refresh tokens can use distinct pairs, and so tests can supply their own.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Classified verification failures. The auth gate logs the class and returns
// a generic message to the client.
var (
	ErrKeyInvalid  = errors.New("signing key invalid")
	ErrSignature   = errors.New("token signature invalid")
	ErrExpired     = errors.New("token expired")
	ErrNotYetValid = errors.New("token not yet valid")
	ErrMalformed   = errors.New("token malformed")
)

// Details is the engine's boundary object. Token holds the encoded string
// after signing and is empty after a verify, which never re-emits it.
type Details struct {
	Token     string
	TokenUUID uuid.UUID
	UserID    uuid.UUID
	MaxAge    int // lifetime in minutes; zero on verify
}

// Sign issues a token for userID with the given lifetime, signed RS256 with
// privatePEM. Every call generates a fresh token UUID (the jti claim), so an
// access/refresh pair and successive issuances never share one.
func Sign(userID uuid.UUID, ttlMinutes int, privatePEM []byte) (*Details, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM(privatePEM)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrKeyInvalid, err)
	}

	now := time.Now().UTC()
	tokenUUID := uuid.New()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		ID:        tokenUUID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(ttlMinutes) * time.Minute)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &Details{
		Token:     signed,
		TokenUUID: tokenUUID,
		UserID:    userID,
		MaxAge:    ttlMinutes,
	}, nil
}

// Verify checks the signature and time-based claims of tokenString against
// publicPEM and returns the subject and token UUID. Failures are classified:
// ErrSignature, ErrExpired, ErrNotYetValid, or ErrMalformed. Claims are
// attacker-influenced input even though signed, so the subject and jti must
// both parse as UUIDs.
func Verify(publicPEM []byte, tokenString string) (*Details, error) {
	key, err := jwt.ParseRSAPublicKeyFromPEM(publicPEM)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrKeyInvalid, err)
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, jwt.ErrTokenUnverifiable
			}
			return key, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, fmt.Errorf("%w: %w", ErrExpired, err)
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, fmt.Errorf("%w: %w", ErrNotYetValid, err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, fmt.Errorf("%w: %w", ErrSignature, err)
		default:
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid {
		return nil, ErrMalformed
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: subject is not a UUID", ErrMalformed)
	}
	tokenUUID, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: jti is not a UUID", ErrMalformed)
	}

	return &Details{
		TokenUUID: tokenUUID,
		UserID:    userID,
	}, nil
}
