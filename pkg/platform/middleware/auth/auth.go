// Package auth is the gate in front of protected routes. It accepts the
// access token from the session cookie or, for non-browser clients, a Bearer
// header, verifies it, consults the revocation list, and loads the owning
// user into the request context.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"daystack/internal/auth/models"
	"daystack/internal/auth/session"
	"daystack/internal/auth/token"
	dErrors "daystack/pkg/domain-errors"
	"daystack/pkg/platform/httputil"
	"daystack/pkg/platform/sentinel"
	"daystack/pkg/requestcontext"
)

// Client-safe messages. Verification failures share one message so the
// response does not reveal whether a token was expired, tampered, or revoked.
const (
	msgNotLoggedIn  = "you are not logged in"
	msgTokenInvalid = "token invalid or session expired"
	msgUserGone     = "the user belonging to this token no longer exists"
)

// UserLoader resolves the token subject to a live user record.
type UserLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// RevocationChecker reports whether a token's jti has been revoked.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Gate returns the middleware protecting authenticated routes.
func Gate(accessPublicPEM []byte, revoker RevocationChecker, users UserLoader, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			raw, ok := extractToken(r)
			if !ok {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, msgNotLoggedIn))
				return
			}

			details, err := token.Verify(accessPublicPEM, raw)
			if err != nil {
				// The class of failure is for the logs only.
				logger.WarnContext(ctx, "access token rejected",
					slog.String("reason", err.Error()),
					slog.String("request_id", requestcontext.RequestID(ctx)),
				)
				httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnauthorized, msgTokenInvalid))
				return
			}

			revoked, err := revoker.IsRevoked(ctx, details.TokenUUID.String())
			if err != nil {
				logger.ErrorContext(ctx, "revocation check failed",
					slog.String("error", err.Error()),
					slog.String("request_id", requestcontext.RequestID(ctx)),
				)
				httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "could not validate session"))
				return
			}
			if revoked {
				logger.WarnContext(ctx, "revoked token presented",
					slog.String("jti", details.TokenUUID.String()),
					slog.String("request_id", requestcontext.RequestID(ctx)),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, msgTokenInvalid))
				return
			}

			user, err := users.FindByID(ctx, details.UserID)
			if err != nil {
				if errors.Is(err, sentinel.ErrNotFound) {
					httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeNotFound, msgUserGone))
					return
				}
				logger.ErrorContext(ctx, "user lookup failed",
					slog.String("error", err.Error()),
					slog.String("request_id", requestcontext.RequestID(ctx)),
				)
				httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "could not validate session"))
				return
			}

			ctx = requestcontext.WithUser(ctx, user)
			ctx = requestcontext.WithAccessTokenUUID(ctx, details.TokenUUID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken pulls the access token from the session cookie, falling back
// to an Authorization Bearer header.
func extractToken(r *http.Request) (string, bool) {
	if c, err := r.Cookie(session.AccessTokenCookie); err == nil && c.Value != "" {
		return c.Value, true
	}
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok && after != "" {
		return after, true
	}
	return "", false
}
