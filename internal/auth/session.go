// Package auth handles password digests, the session cookie and the
// middleware that turns a cookie into a logged-in nick.
package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// CookieName is the one cookie Psst! sets. Its value is the opaque session
// token stored in the sessions table.
const CookieName = "sessionid"

// NewSessionToken returns a fresh, unguessable session token.
//
// uuid.NewRandom draws its 122 random bits from crypto/rand. The hyphens are
// dropped, so a token is 32 hex characters.
func NewSessionToken() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("auth: generating session token: %w", err)
	}
	return strings.ReplaceAll(id.String(), "-", ""), nil
}

// SetSessionCookie appends a Set-Cookie header carrying token to header.
//
// header is usually w.Header() of the outgoing response. The cookie is
// scoped to the site root and has no Max-Age: sessions last until logout.
func SetSessionCookie(header http.Header, token string) {
	c := &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	header.Add("Set-Cookie", c.String())
}

// ClearSessionCookie appends a Set-Cookie header telling the browser to
// drop the session cookie.
func ClearSessionCookie(header http.Header) {
	c := &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	header.Add("Set-Cookie", c.String())
}

// TokenFromCookies returns the session token among cookies, if any.
// An empty value counts as absent.
func TokenFromCookies(cookies []*http.Cookie) (string, bool) {
	for _, c := range cookies {
		if c.Name == CookieName && c.Value != "" {
			return c.Value, true
		}
	}
	return "", false
}
