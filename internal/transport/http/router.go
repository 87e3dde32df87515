// Package httptransport wires the chi router: public auth endpoints,
// gated session and content endpoints, and the operational surface.
package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"daystack/internal/content"
	"daystack/internal/platform/metrics"
	"daystack/pkg/platform/httputil"
	"daystack/pkg/platform/middleware/requestmeta"
)

// NewRouter assembles the full route tree. The gate middleware protects
// everything that requires an authenticated session.
func NewRouter(auth *AuthHandler, contentHandler *content.Handler, gate func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestmeta.Middleware)
	r.Use(metrics.Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteSuccess(w, http.StatusOK, nil)
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", auth.handleRegister)
		r.Post("/auth/login", auth.handleLogin)
		r.Get("/auth/refresh", auth.handleRefresh)
		r.Get("/sessions/oauth/google", auth.handleGoogleOAuth)

		r.Group(func(r chi.Router) {
			r.Use(gate)
			r.Delete("/auth/logout", auth.handleLogout)
			r.Get("/users/me", auth.handleMe)
			contentHandler.Routes(r)
		})
	})

	return r
}
