// Package repository declares the storage contracts the service layer depends on.
// internal/repository/sqlite provides the production implementation.
package repository

import (
	"context"
	"time"

	"github.com/sakif/psst/internal/model"
)

// PostFilter narrows a post listing.
// An empty Nick means every author; Limit <= 0 means no limit.
type PostFilter struct {
	Nick  string
	Limit int
}

// UserRepository is read-only: accounts are created by the sample-data
// loader, never through the application.
type UserRepository interface {
	// GetUser returns apperror.ErrNotFound when no user has that nick.
	GetUser(ctx context.Context, nick string) (*model.User, error)
}

type SessionRepository interface {
	// CreateOrGetSession stores (token, nick) unless nick already owns a
	// session, and returns whichever token is stored afterwards.
	CreateOrGetSession(ctx context.Context, token, nick string) (string, error)
	// SessionNick returns ("", false, nil) when the token is unknown.
	SessionNick(ctx context.Context, token string) (string, bool, error)
	DeleteSessions(ctx context.Context, nick string) error
}

type PostRepository interface {
	ListPosts(ctx context.Context, filter PostFilter) ([]model.Post, error)
	ListMentions(ctx context.Context, nick string) ([]model.Post, error)
	CreatePost(ctx context.Context, nick, content string, at time.Time) (int64, error)
}
