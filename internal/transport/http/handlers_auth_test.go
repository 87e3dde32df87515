package httptransport

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daystack/internal/audit"
	"daystack/internal/auth/oauth"
	"daystack/internal/auth/service"
	"daystack/internal/auth/session"
	"daystack/internal/auth/store/revocation"
	"daystack/internal/auth/store/user"
	"daystack/internal/content"
	authmw "daystack/pkg/platform/middleware/auth"
	"daystack/pkg/testutil"
)

type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AccessToken string `json:"access_token"`
		User        struct {
			ID       string `json:"id"`
			Email    string `json:"email"`
			Provider string `json:"provider"`
		} `json:"user"`
	} `json:"data"`
}

type apiFixture struct {
	router  http.Handler
	users   *user.MemoryStore
	revoker *revocation.MemoryList
	google  *stubProvider
}

type stubProvider struct {
	info *oauth.UserInfo
}

func (s *stubProvider) Exchange(_ context.Context, code string) (string, error) {
	return "provider-token-" + code, nil
}

func (s *stubProvider) FetchUser(_ context.Context, _ string) (*oauth.UserInfo, error) {
	return s.info, nil
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	genPair := func() (priv, pub []byte) {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		priv = pem.EncodeToMemory(&pem.Block{
			Type:  "RSA PRIVATE KEY",
			Bytes: x509.MarshalPKCS1PrivateKey(key),
		})
		pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
		require.NoError(t, err)
		pub = pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})
		return priv, pub
	}
	accessPriv, accessPub := genPair()
	refreshPriv, refreshPub := genPair()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := user.NewMemory()
	revoker := revocation.NewMemory()
	google := &stubProvider{info: &oauth.UserInfo{
		ID:            "google-123",
		Email:         "oauth@x.com",
		VerifiedEmail: true,
		Name:          "OAuth User",
	}}

	svc := service.New(
		users,
		revoker,
		google,
		service.Keys{
			AccessPrivate:  accessPriv,
			AccessPublic:   accessPub,
			RefreshPrivate: refreshPriv,
			RefreshPublic:  refreshPub,
		},
		session.Config{AccessMaxAgeMin: 15, RefreshMaxAgeMin: 60},
		audit.NewPublisher(audit.NewMemoryStore(), logger),
		logger,
	)

	authHandler := NewAuthHandler(svc, "http://localhost:3000", logger)
	contentHandler := content.NewHandler(content.NewMemoryStore[content.Task](), content.NewMemoryTagStore(), logger)
	gate := authmw.Gate(accessPub, revoker, users, logger)

	return &apiFixture{
		router:  NewRouter(authHandler, contentHandler, gate),
		users:   users,
		revoker: revoker,
		google:  google,
	}
}

func cookieByName(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (f *apiFixture) register(t *testing.T, email string) *httptest.ResponseRecorder {
	t.Helper()
	return testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/register",
		map[string]string{"name": "Test User", "email": email, "password": "correct-horse"}))
}

func (f *apiFixture) login(t *testing.T, email, password string) *httptest.ResponseRecorder {
	t.Helper()
	return testutil.DoRequest(f.router, testutil.NewJSONRequest(t, http.MethodPost, "/api/auth/login",
		map[string]string{"email": email, "password": password}))
}

func TestRegisterLoginRefreshLogoutScenario(t *testing.T) {
	f := newAPIFixture(t)

	// Register.
	rec := f.register(t, "a@x.com")
	require.Equal(t, http.StatusCreated, rec.Code)
	body := testutil.DecodeBody[envelope](t, rec)
	assert.Equal(t, "success", body.Status)
	assert.Equal(t, "a@x.com", body.Data.User.Email)
	assert.Empty(t, rec.Result().Cookies(), "register must not establish a session")

	// Login sets the three session cookies.
	rec = f.login(t, "a@x.com", "correct-horse")
	require.Equal(t, http.StatusOK, rec.Code)

	access := cookieByName(rec, session.AccessTokenCookie)
	refresh := cookieByName(rec, session.RefreshTokenCookie)
	loggedIn := cookieByName(rec, session.LoggedInCookie)
	require.NotNil(t, access)
	require.NotNil(t, refresh)
	require.NotNil(t, loggedIn)
	assert.True(t, access.HttpOnly)
	assert.True(t, refresh.HttpOnly)
	assert.False(t, loggedIn.HttpOnly)
	assert.Equal(t, "true", loggedIn.Value)
	assert.Equal(t, 15*60, access.MaxAge)
	assert.Equal(t, 60*60, refresh.MaxAge)

	// Authenticated /users/me via the access cookie.
	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.AddCookie(access)
	rec = testutil.DoRequest(f.router, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a@x.com", testutil.DecodeBody[envelope](t, rec).Data.User.Email)

	// Refresh mints a new access token and re-applies the refresh cookie
	// unchanged.
	req = httptest.NewRequest(http.MethodGet, "/api/auth/refresh", nil)
	req.AddCookie(refresh)
	rec = testutil.DoRequest(f.router, req)
	require.Equal(t, http.StatusOK, rec.Code)

	newAccess := cookieByName(rec, session.AccessTokenCookie)
	require.NotNil(t, newAccess)
	assert.NotEqual(t, access.Value, newAccess.Value)
	assert.Equal(t, refresh.Value, cookieByName(rec, session.RefreshTokenCookie).Value)

	// Logout clears all three cookies.
	req = httptest.NewRequest(http.MethodDelete, "/api/auth/logout", nil)
	req.AddCookie(newAccess)
	rec = testutil.DoRequest(f.router, req)
	require.Equal(t, http.StatusOK, rec.Code)
	for _, name := range []string{session.AccessTokenCookie, session.RefreshTokenCookie, session.LoggedInCookie} {
		cleared := cookieByName(rec, name)
		require.NotNil(t, cleared, name)
		assert.Empty(t, cleared.Value, name)
		assert.Negative(t, cleared.MaxAge, name)
	}

	// The revoked access token no longer passes the gate.
	req = httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.AddCookie(newAccess)
	rec = testutil.DoRequest(f.router, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginFailureEnvelope(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.register(t, "a@x.com")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.login(t, "a@x.com", "wrong-password")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := testutil.DecodeBody[envelope](t, rec)
	assert.Equal(t, "fail", body.Status)
	assert.Equal(t, "invalid email or password", body.Message)
	assert.Empty(t, rec.Result().Cookies(), "no partial session on failed login")
}

func TestRegisterConflict(t *testing.T) {
	f := newAPIFixture(t)

	require.Equal(t, http.StatusCreated, f.register(t, "a@x.com").Code)
	assert.Equal(t, http.StatusConflict, f.register(t, "a@x.com").Code)
}

func TestRefreshWithoutCookie(t *testing.T) {
	f := newAPIFixture(t)

	rec := testutil.DoRequest(f.router, httptest.NewRequest(http.MethodGet, "/api/auth/refresh", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "could not refresh access token", testutil.DecodeBody[envelope](t, rec).Message)
}

func TestGoogleOAuthRedirectsToFrontend(t *testing.T) {
	f := newAPIFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/oauth/google?code=auth-code&state=/dashboard", nil)
	rec := testutil.DoRequest(f.router, req)

	require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "http://localhost:3000/dashboard", rec.Header().Get("Location"))
	require.NotNil(t, cookieByName(rec, session.AccessTokenCookie))
	require.NotNil(t, cookieByName(rec, session.RefreshTokenCookie))
}

func TestGoogleOAuthSanitizesState(t *testing.T) {
	f := newAPIFixture(t)

	cases := []struct {
		name  string
		query string
	}{
		{"empty state", "code=auth-code"},
		{"absolute URL", "code=auth-code&state=https://evil.example"},
		{"protocol-relative", "code=auth-code&state=//evil.example"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/sessions/oauth/google?"+tc.query, nil)
			rec := testutil.DoRequest(f.router, req)
			require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
			assert.Equal(t, "http://localhost:3000/", rec.Header().Get("Location"))
		})
	}
}

func TestGoogleOAuthMissingCode(t *testing.T) {
	f := newAPIFixture(t)

	rec := testutil.DoRequest(f.router, httptest.NewRequest(http.MethodGet, "/api/sessions/oauth/google", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "authorization code not provided", testutil.DecodeBody[envelope](t, rec).Message)
}

func TestContentRoutesRequireAuth(t *testing.T) {
	f := newAPIFixture(t)

	rec := testutil.DoRequest(f.router, httptest.NewRequest(http.MethodGet, "/api/tasks", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealthz(t *testing.T) {
	f := newAPIFixture(t)

	rec := testutil.DoRequest(f.router, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
