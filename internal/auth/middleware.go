package auth

import (
	"context"
	"log/slog"
	"net/http"
)

// contextKey is an unexported type so no other package can read or
// overwrite the values this package stores in a request context.
type contextKey string

const nickKey contextKey = "nick"

// SessionResolver maps the cookies of an incoming request to the nick of
// the logged-in user. service.SessionService implements it.
type SessionResolver interface {
	SessionUser(ctx context.Context, cookies []*http.Cookie) (string, bool, error)
}

// LoadUser is a middleware that looks up the session cookie and, when it
// belongs to a live session, stores the owner's nick in the request context.
//
// Anonymous requests always continue. A storage failure while resolving the
// session is a real error and ends the request with 500.
//
// Chi applies middlewares in a chain: req → M1 → M2 → Handler → M2 → M1 → resp
func LoadUser(sessions SessionResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			nick, ok, err := sessions.SessionUser(r.Context(), r.Cookies())
			if err != nil {
				logger.Error("resolving session failed", slog.String("error", err.Error()))
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				return
			}
			if ok {
				r = r.WithContext(WithNick(r.Context(), nick))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireUser lets the request through only when LoadUser found a user;
// otherwise it hands the request to unauthorized.
func RequireUser(unauthorized http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := NickFromContext(r.Context()); !ok {
				unauthorized.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithNick returns a copy of ctx carrying the logged-in nick.
func WithNick(ctx context.Context, nick string) context.Context {
	return context.WithValue(ctx, nickKey, nick)
}

// NickFromContext returns ("", false) for anonymous requests.
//
// Usage in handlers:
//
//	nick, ok := auth.NickFromContext(r.Context())
//	if !ok {
//	    // anonymous visitor
//	}
func NickFromContext(ctx context.Context) (string, bool) {
	nick, ok := ctx.Value(nickKey).(string)
	return nick, ok && nick != ""
}
