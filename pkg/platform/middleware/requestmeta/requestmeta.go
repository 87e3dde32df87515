// Package requestmeta stamps each request with an ID and a request-scoped
// "now", and captures the client's User-Agent for the audit trail. Applied
// first in the chain so every later log line can carry the request ID.
package requestmeta

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"daystack/pkg/requestcontext"
)

type contextKeyUserAgent struct{}

// Middleware injects request ID, request time, and client metadata.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ctx = requestcontext.WithRequestID(ctx, uuid.NewString())
		ctx = requestcontext.WithTime(ctx, time.Now())
		ctx = context.WithValue(ctx, contextKeyUserAgent{}, r.Header.Get("User-Agent"))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserAgent retrieves the raw User-Agent captured from the request.
func UserAgent(ctx context.Context) string {
	if ua, ok := ctx.Value(contextKeyUserAgent{}).(string); ok {
		return ua
	}
	return ""
}

// WithUserAgent injects a User-Agent into a context. Useful for service
// tests that skip the HTTP middleware chain.
func WithUserAgent(ctx context.Context, userAgent string) context.Context {
	return context.WithValue(ctx, contextKeyUserAgent{}, userAgent)
}
