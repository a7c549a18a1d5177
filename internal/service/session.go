// Login and session business logic.
//
// SessionService sits between the HTTP handlers and storage:
//
//	Handler (HTTP) → SessionService → UserRepository / SessionRepository (DB)
//	                                ↘ auth (digest, token, cookie)
//
// Request and response state is passed in explicitly: callers hand over the
// request's cookies and the header map of the response they are building.
// Nothing here reads or writes globals.

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sakif/psst/internal/apperror"
	"github.com/sakif/psst/internal/auth"
	"github.com/sakif/psst/internal/model"
	"github.com/sakif/psst/internal/repository"
)

// SessionService checks credentials and manages login sessions.
// It keeps no state of its own; every call goes to the repositories.
type SessionService struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	logger   *slog.Logger
}

var _ auth.SessionResolver = (*SessionService)(nil)

// NewSessionService creates a SessionService.
func NewSessionService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	logger *slog.Logger,
) *SessionService {
	return &SessionService{
		users:    users,
		sessions: sessions,
		logger:   logger,
	}
}

// CheckLogin reports whether nick exists and password matches its stored
// digest. An unknown nick is simply false; only storage failures error.
func (s *SessionService) CheckLogin(ctx context.Context, nick, password string) (bool, error) {
	user, found, err := s.lookupUser(ctx, nick)
	if err != nil || !found {
		return false, err
	}
	return auth.VerifyPassword(user.PasswordHash, password), nil
}

// GenerateSession logs nick in and appends the session cookie to header.
//
// If nick is not a known user it returns ("", false, nil) and header is left
// untouched. If nick already has a session, that session's token is reused,
// so logging in twice yields the same token.
func (s *SessionService) GenerateSession(ctx context.Context, header http.Header, nick string) (string, bool, error) {
	if _, found, err := s.lookupUser(ctx, nick); err != nil || !found {
		return "", false, err
	}

	fresh, err := auth.NewSessionToken()
	if err != nil {
		return "", false, fmt.Errorf("service/session: %w", err)
	}

	// The repository keeps an existing token if there is one, so the token
	// we get back is not necessarily the one we generated.
	token, err := s.sessions.CreateOrGetSession(ctx, fresh, nick)
	if err != nil {
		return "", false, fmt.Errorf("service/session: creating session for %s: %w", nick, err)
	}

	if token == fresh {
		s.logger.Info("session created", slog.String("nick", nick))
	} else {
		s.logger.Debug("session reused", slog.String("nick", nick))
	}

	auth.SetSessionCookie(header, token)
	return token, true, nil
}

// DeleteSession removes every session nick owns. It is a no-op for a user
// who is not logged in.
func (s *SessionService) DeleteSession(ctx context.Context, nick string) error {
	if err := s.sessions.DeleteSessions(ctx, nick); err != nil {
		return fmt.Errorf("service/session: deleting sessions for %s: %w", nick, err)
	}
	s.logger.Info("session deleted", slog.String("nick", nick))
	return nil
}

// SessionUser returns the nick owning the session cookie among cookies.
// No cookie, or a token that matches no session, gives ("", false, nil).
func (s *SessionService) SessionUser(ctx context.Context, cookies []*http.Cookie) (string, bool, error) {
	token, ok := auth.TokenFromCookies(cookies)
	if !ok {
		return "", false, nil
	}

	nick, ok, err := s.sessions.SessionNick(ctx, token)
	if err != nil {
		return "", false, fmt.Errorf("service/session: %w", err)
	}
	return nick, ok, nil
}

// lookupUser turns the repository's NotFound into found=false.
func (s *SessionService) lookupUser(ctx context.Context, nick string) (*model.User, bool, error) {
	user, err := s.users.GetUser(ctx, nick)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("service/session: looking up %s: %w", nick, err)
	}
	return user, true, nil
}
