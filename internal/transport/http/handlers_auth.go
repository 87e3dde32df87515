package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"daystack/internal/auth/device"
	"daystack/internal/auth/models"
	"daystack/internal/auth/service"
	"daystack/internal/auth/session"
	"daystack/internal/auth/token"
	dErrors "daystack/pkg/domain-errors"
	"daystack/pkg/platform/httputil"
	"daystack/pkg/platform/middleware/requestmeta"
	"daystack/pkg/requestcontext"
)

// AuthService is the domain surface the auth handlers delegate to,
// satisfied by service.Service.
type AuthService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req models.LoginRequest, device string) (*service.Session, error)
	GoogleLogin(ctx context.Context, code, device string) (*service.Session, error)
	Refresh(ctx context.Context, refreshToken string) (*token.Details, *models.User, error)
	Logout(ctx context.Context, user *models.User, tokenUUID uuid.UUID, device string) error
	CookieConfig() session.Config
}

// AuthHandler is the thin HTTP layer over the auth service. It owns cookie
// application and redirects; all decisions live in the service.
type AuthHandler struct {
	svc            AuthService
	frontendOrigin string
	logger         *slog.Logger
}

func NewAuthHandler(svc AuthService, frontendOrigin string, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, frontendOrigin: frontendOrigin, logger: logger}
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.DecodeJSON[models.RegisterRequest](w, r, h.logger, ctx)
	if !ok {
		return
	}

	user, err := h.svc.Register(ctx, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteSuccess(w, http.StatusCreated, map[string]any{"user": user.Public()})
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.DecodeJSON[models.LoginRequest](w, r, h.logger, ctx)
	if !ok {
		return
	}

	sess, err := h.svc.Login(ctx, req, device.ParseUserAgent(requestmeta.UserAgent(ctx)))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.applySession(w, sess)
	httputil.WriteSuccess(w, http.StatusOK, map[string]any{
		"access_token": sess.Access.Token,
		"user":         sess.User.Public(),
	})
}

// handleRefresh mints a new access token from the refresh cookie. The
// refresh token is not rotated: its cookie is re-applied unchanged so the
// cookie attributes stay consistent with login.
func (h *AuthHandler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cookie, err := r.Cookie(session.RefreshTokenCookie)
	if err != nil || cookie.Value == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "could not refresh access token"))
		return
	}

	access, user, err := h.svc.Refresh(ctx, cookie.Value)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	session.Apply(w, session.Build(true, access.Token, cookie.Value, h.svc.CookieConfig()))
	httputil.WriteSuccess(w, http.StatusOK, map[string]any{
		"access_token": access.Token,
		"user":         user.Public(),
	})
}

// handleGoogleOAuth is the provider redirect target. On success the session
// cookies are applied and the browser is sent back to the frontend at the
// path carried in state.
func (h *AuthHandler) handleGoogleOAuth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	code := r.URL.Query().Get("code")
	sess, err := h.svc.GoogleLogin(ctx, code, device.ParseUserAgent(requestmeta.UserAgent(ctx)))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	h.applySession(w, sess)
	http.Redirect(w, r, h.frontendOrigin+sanitizeState(r.URL.Query().Get("state")), http.StatusTemporaryRedirect)
}

func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := requestcontext.User(ctx)
	tokenUUID := requestcontext.AccessTokenUUID(ctx)

	if err := h.svc.Logout(ctx, user, tokenUUID, device.ParseUserAgent(requestmeta.UserAgent(ctx))); err != nil {
		httputil.WriteError(w, err)
		return
	}

	session.Apply(w, session.Build(false, "", "", h.svc.CookieConfig()))
	httputil.WriteSuccess(w, http.StatusOK, nil)
}

func (h *AuthHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	user := requestcontext.User(r.Context())
	httputil.WriteSuccess(w, http.StatusOK, map[string]any{"user": user.Public()})
}

func (h *AuthHandler) applySession(w http.ResponseWriter, sess *service.Session) {
	session.Apply(w, session.Build(true, sess.Access.Token, sess.Refresh.Token, h.svc.CookieConfig()))
}

// sanitizeState keeps the post-login redirect on the frontend origin. Only
// an absolute path is accepted; anything else falls back to the root.
func sanitizeState(state string) string {
	if strings.HasPrefix(state, "/") && !strings.HasPrefix(state, "//") {
		return state
	}
	return "/"
}
