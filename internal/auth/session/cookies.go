// Package session turns a pair of signed tokens into the outbound cookie set
// that carries them. Login and logout share one builder so the cookie
// attributes can never drift apart between the two paths.
package session

import (
	"net/http"
	"time"
)

// Cookie names. The two token cookies are the actual credentials and stay
// HttpOnly; logged_in is a UI hint readable by client script and is never
// trusted for authorization.
const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
	LoggedInCookie     = "logged_in"
)

// Config carries the cookie attributes shared by all three cookies.
type Config struct {
	Domain           string
	Secure           bool
	AccessMaxAgeMin  int
	RefreshMaxAgeMin int
}

// Build returns the three session cookies. With login=true the token values
// are set with max-ages equal to their token lifetimes; with login=false the
// values are emptied and max-age forced negative so clients delete them
// immediately. Callers pass empty token strings on logout.
func Build(login bool, accessToken, refreshToken string, cfg Config) []*http.Cookie {
	accessMaxAge := cfg.AccessMaxAgeMin * 60
	refreshMaxAge := cfg.RefreshMaxAgeMin * 60
	loggedIn := "true"
	if !login {
		accessToken = ""
		refreshToken = ""
		accessMaxAge = -1
		refreshMaxAge = -1
		loggedIn = ""
	}

	return []*http.Cookie{
		{
			Name:     AccessTokenCookie,
			Value:    accessToken,
			Path:     "/",
			Domain:   cfg.Domain,
			MaxAge:   accessMaxAge,
			Secure:   cfg.Secure,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		},
		{
			Name:     RefreshTokenCookie,
			Value:    refreshToken,
			Path:     "/",
			Domain:   cfg.Domain,
			MaxAge:   refreshMaxAge,
			Secure:   cfg.Secure,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		},
		{
			Name:     LoggedInCookie,
			Value:    loggedIn,
			Path:     "/",
			Domain:   cfg.Domain,
			MaxAge:   accessMaxAge,
			Secure:   cfg.Secure,
			HttpOnly: false,
			SameSite: http.SameSiteLaxMode,
		},
	}
}

// Apply writes the cookie set onto a response.
func Apply(w http.ResponseWriter, cookies []*http.Cookie) {
	for _, c := range cookies {
		http.SetCookie(w, c)
	}
}

// AccessLifetime converts the configured access max-age into a duration,
// used as the revocation TTL upper bound on logout.
func (c Config) AccessLifetime() time.Duration {
	return time.Duration(c.AccessMaxAgeMin) * time.Minute
}
