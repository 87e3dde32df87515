package auth_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daystack/internal/auth/models"
	"daystack/internal/auth/session"
	"daystack/internal/auth/store/revocation"
	"daystack/internal/auth/store/user"
	"daystack/internal/auth/token"
	"daystack/pkg/platform/middleware/auth"
	"daystack/pkg/requestcontext"
)

type gateFixture struct {
	handler    http.Handler
	users      *user.MemoryStore
	revoker    *revocation.MemoryList
	user       *models.User
	accessPriv []byte

	seenUser *models.User
	seenJTI  uuid.UUID
}

func newGateFixture(t *testing.T) *gateFixture {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})

	f := &gateFixture{
		users:      user.NewMemory(),
		revoker:    revocation.NewMemory(),
		accessPriv: privPEM,
	}

	f.user = &models.User{
		ID:       uuid.New(),
		Email:    "a@x.com",
		Name:     "Test User",
		Role:     "user",
		Provider: models.ProviderLocal,
	}
	require.NoError(t, f.users.Create(context.Background(), f.user))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gate := auth.Gate(pubPEM, f.revoker, f.users, logger)
	f.handler = gate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.seenUser = requestcontext.User(r.Context())
		f.seenJTI = requestcontext.AccessTokenUUID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	return f
}

func (f *gateFixture) signToken(t *testing.T, userID uuid.UUID, ttlMinutes int) *token.Details {
	t.Helper()
	details, err := token.Sign(userID, ttlMinutes, f.accessPriv)
	require.NoError(t, err)
	return details
}

func do(f *gateFixture, configure func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	if configure != nil {
		configure(req)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestGateAcceptsCookieToken(t *testing.T) {
	f := newGateFixture(t)
	details := f.signToken(t, f.user.ID, 15)

	rec := do(f, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: session.AccessTokenCookie, Value: details.Token})
	})

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, f.seenUser)
	assert.Equal(t, f.user.ID, f.seenUser.ID)
	assert.Equal(t, details.TokenUUID, f.seenJTI)
}

func TestGateAcceptsBearerHeader(t *testing.T) {
	f := newGateFixture(t)
	details := f.signToken(t, f.user.ID, 15)

	rec := do(f, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+details.Token)
	})

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGateCookieTakesPrecedenceOverHeader(t *testing.T) {
	f := newGateFixture(t)
	details := f.signToken(t, f.user.ID, 15)

	rec := do(f, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: session.AccessTokenCookie, Value: details.Token})
		r.Header.Set("Authorization", "Bearer garbage")
	})

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGateMissingToken(t *testing.T) {
	f := newGateFixture(t)

	rec := do(f, nil)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.Equal(t, "fail", body["status"])
	assert.Equal(t, "you are not logged in", body["message"])
}

func TestGateRejectionsShareOneMessage(t *testing.T) {
	f := newGateFixture(t)

	expired := f.signToken(t, f.user.ID, -1)
	valid := f.signToken(t, f.user.ID, 15)
	require.NoError(t, f.revoker.Revoke(context.Background(), valid.TokenUUID.String(), time.Minute))

	cases := []struct {
		name  string
		token string
	}{
		{"expired", expired.Token},
		{"garbage", "not.a.token"},
		{"revoked", valid.Token},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(f, func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: session.AccessTokenCookie, Value: tc.token})
			})
			require.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "token invalid or session expired", decodeEnvelope(t, rec)["message"])
		})
	}
}

func TestGateDeletedUser(t *testing.T) {
	f := newGateFixture(t)
	details := f.signToken(t, f.user.ID, 15)
	require.NoError(t, f.users.Delete(context.Background(), f.user.ID))

	rec := do(f, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: session.AccessTokenCookie, Value: details.Token})
	})

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "the user belonging to this token no longer exists", decodeEnvelope(t, rec)["message"])
}

func TestGateRejectsTokenForUnknownSubject(t *testing.T) {
	f := newGateFixture(t)
	details := f.signToken(t, uuid.New(), 15)

	rec := do(f, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: session.AccessTokenCookie, Value: details.Token})
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
