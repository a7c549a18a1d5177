package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/psst/internal/auth"
	"github.com/sakif/psst/internal/service"
)

// SessionService is the part of service.SessionService the handlers use.
type SessionService interface {
	CheckLogin(ctx context.Context, nick, password string) (bool, error)
	GenerateSession(ctx context.Context, header http.Header, nick string) (string, bool, error)
	DeleteSession(ctx context.Context, nick string) error
}

var _ SessionService = (*service.SessionService)(nil)

// AuthHandler handles the login and logout forms.
//
//   - HandleLogin  → check the password, start a session, set the cookie
//   - HandleLogout → end the session, expire the cookie
//
// A failed login re-renders the home page, so the handler borrows the
// PageHandler to do that.
type AuthHandler struct {
	sessions SessionService
	pages    *PageHandler
	logger   *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(sessions SessionService, pages *PageHandler, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		pages:    pages,
		logger:   logger,
	}
}

// LoginFailedMessage is shown above the login form after a bad login.
const LoginFailedMessage = "Login Failed, please try again"

// HandleLogin checks the submitted credentials.
//
// HTTP: POST /login (form fields "nick", "password")
//
// Success sets the session cookie and redirects to / with 303 See Other, so
// a browser refresh does not resubmit the form. Failure shows the home page
// again with LoginFailedMessage and sets no cookie.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	nick := r.PostFormValue("nick")
	password := r.PostFormValue("password")

	ok, err := h.sessions.CheckLogin(r.Context(), nick, password)
	if err != nil {
		h.logger.Error("login check failed",
			slog.String("nick", nick),
			slog.String("error", err.Error()),
		)
		h.pages.templates.RenderError(w, r, http.StatusInternalServerError, "Login is unavailable right now.")
		return
	}
	if !ok {
		h.logger.Info("login failed", slog.String("nick", nick))
		h.pages.renderHome(w, r, http.StatusOK, LoginFailedMessage)
		return
	}

	// GenerateSession appends Set-Cookie to w.Header(); it must run before
	// the redirect writes the status line.
	if _, _, err := h.sessions.GenerateSession(r.Context(), w.Header(), nick); err != nil {
		h.logger.Error("starting session failed",
			slog.String("nick", nick),
			slog.String("error", err.Error()),
		)
		h.pages.templates.RenderError(w, r, http.StatusInternalServerError, "Login is unavailable right now.")
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleLogout ends the current session, if any, and expires the cookie.
//
// HTTP: POST /logout
//
// POST rather than GET: logging out changes state, and a GET could be
// triggered by a prefetch or a third-party <img>.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if nick, ok := nickFrom(r); ok {
		if err := h.sessions.DeleteSession(r.Context(), nick); err != nil {
			h.logger.Error("logout failed",
				slog.String("nick", nick),
				slog.String("error", err.Error()),
			)
			h.pages.templates.RenderError(w, r, http.StatusInternalServerError, "Logout failed.")
			return
		}
	}

	auth.ClearSessionCookie(w.Header())
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
