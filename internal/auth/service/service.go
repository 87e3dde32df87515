// Package service implements the authentication flows: local registration
// and login, the Google OAuth code flow, token refresh, and logout. It owns
// the translation from store sentinels and provider failures into domain
// errors; handlers only map codes to HTTP statuses.
package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"daystack/internal/audit"
	"daystack/internal/auth/models"
	"daystack/internal/auth/oauth"
	"daystack/internal/auth/password"
	"daystack/internal/auth/session"
	"daystack/internal/auth/store"
	"daystack/internal/auth/store/revocation"
	"daystack/internal/auth/token"
	dErrors "daystack/pkg/domain-errors"
	"daystack/pkg/platform/sentinel"
	"daystack/pkg/requestcontext"
)

const minPasswordLength = 8

// Client-safe messages. Credential failures are deliberately
// indistinguishable: the response never reveals whether the email exists.
const (
	msgInvalidCredentials = "invalid email or password"
	msgUserGone           = "the user belonging to this token no longer exists"
	msgRefreshFailed      = "could not refresh access token"
)

// Keys holds the PEM-encoded RSA key material for both token families.
// Access and refresh tokens use distinct pairs so one leaked public key
// cannot validate the other family.
type Keys struct {
	AccessPrivate  []byte
	AccessPublic   []byte
	RefreshPrivate []byte
	RefreshPublic  []byte
}

// ProviderClient is the outbound OAuth surface, satisfied by oauth.Client.
type ProviderClient interface {
	Exchange(ctx context.Context, code string) (string, error)
	FetchUser(ctx context.Context, accessToken string) (*oauth.UserInfo, error)
}

// Session is the outcome of a successful authentication: the user plus a
// freshly signed access/refresh pair ready for the cookie builder.
type Session struct {
	User    *models.User
	Access  *token.Details
	Refresh *token.Details
}

// Service wires the auth stores, the token engine, and the Google client.
type Service struct {
	users   store.UserStore
	revoker revocation.List
	google  ProviderClient
	keys    Keys
	cookies session.Config
	trail   audit.Trail
	logger  *slog.Logger
}

func New(
	users store.UserStore,
	revoker revocation.List,
	google ProviderClient,
	keys Keys,
	cookies session.Config,
	trail audit.Trail,
	logger *slog.Logger,
) *Service {
	return &Service{
		users:   users,
		revoker: revoker,
		google:  google,
		keys:    keys,
		cookies: cookies,
		trail:   trail,
		logger:  logger,
	}
}

// CookieConfig exposes the session cookie attributes for the HTTP layer.
func (s *Service) CookieConfig() session.Config { return s.cookies }

// Register creates a local-provider account. The password is hashed before
// the user record ever exists; the plaintext is not retained.
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if err := validateRegistration(req); err != nil {
		recordAuthOp("register", outcomeRejected)
		return nil, err
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		recordAuthOp("register", outcomeError)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not create user")
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
		Role:         "user",
		Provider:     models.ProviderLocal,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			recordAuthOp("register", outcomeRejected)
			return nil, dErrors.Wrap(err, dErrors.CodeConflict, "user with that email already exists")
		}
		recordAuthOp("register", outcomeError)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not create user")
	}

	s.emit(ctx, audit.TypeRegister, user, "")
	recordAuthOp("register", outcomeOK)
	return user, nil
}

// Login verifies a local credential and establishes a session. Lookup
// failures and password mismatches produce the same error; accounts created
// through an external provider have no hash and always fail the check.
func (s *Service) Login(ctx context.Context, req models.LoginRequest, device string) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.emitFailed(ctx, email, device)
			recordAuthOp("login", outcomeRejected)
			return nil, dErrors.New(dErrors.CodeBadRequest, msgInvalidCredentials)
		}
		recordAuthOp("login", outcomeError)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not log in")
	}

	if user.Provider != models.ProviderLocal {
		recordAuthOp("login", outcomeRejected)
		return nil, wrongProviderError(user.Provider)
	}

	if !password.Verify(req.Password, user.PasswordHash) {
		s.emitFailed(ctx, email, device)
		recordAuthOp("login", outcomeRejected)
		return nil, dErrors.New(dErrors.CodeBadRequest, msgInvalidCredentials)
	}

	sess, err := s.establishSession(user)
	if err != nil {
		recordAuthOp("login", outcomeError)
		return nil, err
	}

	s.emit(ctx, audit.TypeLogin, user, device)
	recordAuthOp("login", outcomeOK)
	return sess, nil
}

// GoogleLogin completes the OAuth code flow: exchange the code, fetch the
// external profile, create the account on first login, and establish a
// session. An email already registered through another provider is refused.
func (s *Service) GoogleLogin(ctx context.Context, code, device string) (*Session, error) {
	if strings.TrimSpace(code) == "" {
		recordAuthOp("oauth_login", outcomeRejected)
		return nil, dErrors.New(dErrors.CodeBadRequest, "authorization code not provided")
	}

	providerToken, err := s.google.Exchange(ctx, code)
	if err != nil {
		s.logUpstream(ctx, "code exchange failed", err)
		recordAuthOp("oauth_login", outcomeError)
		return nil, dErrors.Wrap(err, dErrors.CodeUpstream, "could not retrieve token from google")
	}

	info, err := s.google.FetchUser(ctx, providerToken)
	if err != nil {
		s.logUpstream(ctx, "userinfo fetch failed", err)
		recordAuthOp("oauth_login", outcomeError)
		return nil, dErrors.Wrap(err, dErrors.CodeUpstream, "could not retrieve user from google")
	}

	user, err := s.findOrCreateGoogleUser(ctx, info)
	if err != nil {
		recordAuthOp("oauth_login", outcomeRejected)
		return nil, err
	}

	sess, err := s.establishSession(user)
	if err != nil {
		recordAuthOp("oauth_login", outcomeError)
		return nil, err
	}

	s.emit(ctx, audit.TypeOAuthLogin, user, device)
	recordAuthOp("oauth_login", outcomeOK)
	return sess, nil
}

// Refresh mints a new access token from a valid refresh token. The refresh
// token itself is not rotated; it rides along unchanged until it expires.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*token.Details, *models.User, error) {
	details, err := token.Verify(s.keys.RefreshPublic, refreshToken)
	if err != nil {
		s.logger.InfoContext(ctx, "refresh token rejected", slog.String("reason", err.Error()))
		recordAuthOp("refresh", outcomeRejected)
		return nil, nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, msgRefreshFailed)
	}

	user, err := s.users.FindByID(ctx, details.UserID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			recordAuthOp("refresh", outcomeRejected)
			return nil, nil, dErrors.Wrap(err, dErrors.CodeNotFound, msgUserGone)
		}
		recordAuthOp("refresh", outcomeError)
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, msgRefreshFailed)
	}

	access, err := token.Sign(user.ID, s.cookies.AccessMaxAgeMin, s.keys.AccessPrivate)
	if err != nil {
		recordAuthOp("refresh", outcomeError)
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, msgRefreshFailed)
	}

	s.emit(ctx, audit.TypeRefresh, user, "")
	recordAuthOp("refresh", outcomeOK)
	return access, user, nil
}

// Logout revokes the presented access token's jti for the remainder of the
// access lifetime. The refresh token is not tracked server-side; clearing
// its cookie is the handler's job.
func (s *Service) Logout(ctx context.Context, user *models.User, tokenUUID uuid.UUID, device string) error {
	if err := s.revoker.Revoke(ctx, tokenUUID.String(), s.cookies.AccessLifetime()); err != nil {
		recordAuthOp("logout", outcomeError)
		return dErrors.Wrap(err, dErrors.CodeInternal, "could not log out")
	}

	s.emit(ctx, audit.TypeLogout, user, device)
	recordAuthOp("logout", outcomeOK)
	return nil
}

func (s *Service) findOrCreateGoogleUser(ctx context.Context, info *oauth.UserInfo) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(info.Email))
	if email == "" {
		return nil, dErrors.New(dErrors.CodeUpstream, "could not retrieve user from google")
	}

	user, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if user.Provider != models.ProviderGoogle {
			return nil, wrongProviderError(user.Provider)
		}
		return user, nil
	case errors.Is(err, sentinel.ErrNotFound):
		// First login creates the account. No password hash: local login
		// must never succeed for this user.
		now := time.Now().UTC()
		user = &models.User{
			ID:        uuid.New(),
			Email:     email,
			Name:      info.Name,
			Photo:     info.Picture,
			Role:      "user",
			Verified:  info.VerifiedEmail,
			Provider:  models.ProviderGoogle,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if createErr := s.users.Create(ctx, user); createErr != nil {
			if errors.Is(createErr, sentinel.ErrConflict) {
				// Lost a race with a concurrent first login; the winner's
				// record is authoritative.
				return s.findOrCreateGoogleUser(ctx, info)
			}
			return nil, dErrors.Wrap(createErr, dErrors.CodeInternal, "could not create user")
		}
		return user, nil
	default:
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not log in")
	}
}

func (s *Service) establishSession(user *models.User) (*Session, error) {
	access, err := token.Sign(user.ID, s.cookies.AccessMaxAgeMin, s.keys.AccessPrivate)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not establish session")
	}
	refresh, err := token.Sign(user.ID, s.cookies.RefreshMaxAgeMin, s.keys.RefreshPrivate)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "could not establish session")
	}
	return &Session{User: user, Access: access, Refresh: refresh}, nil
}

func (s *Service) emit(ctx context.Context, eventType string, user *models.User, device string) {
	s.trail.Record(ctx, audit.Event{
		Type:      eventType,
		UserID:    user.ID,
		Email:     user.Email,
		Device:    device,
		RequestID: requestcontext.RequestID(ctx),
	})
}

func (s *Service) emitFailed(ctx context.Context, email, device string) {
	s.trail.Record(ctx, audit.Event{
		Type:      audit.TypeLoginFailed,
		Email:     email,
		Device:    device,
		RequestID: requestcontext.RequestID(ctx),
	})
}

func (s *Service) logUpstream(ctx context.Context, msg string, err error) {
	attrs := []any{slog.String("error", err.Error())}
	var upstream *oauth.UpstreamError
	if errors.As(err, &upstream) {
		attrs = append(attrs,
			slog.String("stage", upstream.Stage),
			slog.Int("upstream_status", upstream.Status),
		)
	}
	s.logger.ErrorContext(ctx, msg, attrs...)
}

func wrongProviderError(provider string) error {
	return dErrors.New(dErrors.CodeForbidden,
		"account was registered with "+provider+", sign in with that provider")
}

func validateRegistration(req models.RegisterRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(req.Email)); err != nil {
		return dErrors.New(dErrors.CodeValidation, "a valid email is required")
	}
	if len(req.Password) < minPasswordLength {
		return dErrors.New(dErrors.CodeValidation, "password must be at least 8 characters")
	}
	return nil
}
