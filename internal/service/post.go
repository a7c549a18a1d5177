// Package service contains the business logic layer of the application.
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes to the database
//
// Services take repository interfaces, never *sqlite.DB, so tests can run
// them against an in-memory database or a fake.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/sakif/psst/internal/apperror"
	"github.com/sakif/psst/internal/model"
	"github.com/sakif/psst/internal/repository"
)

const (
	// MaxPostLength is counted in characters (code points), not bytes.
	MaxPostLength = 140
	// HomeTimelineLimit is how many posts the home page shows.
	HomeTimelineLimit = 50
)

// PostService reads and writes posts and the user profiles they belong to.
type PostService struct {
	posts  repository.PostRepository
	users  repository.UserRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewPostService creates a PostService.
func NewPostService(posts repository.PostRepository, users repository.UserRepository, logger *slog.Logger) *PostService {
	return &PostService{
		posts:  posts,
		users:  users,
		logger: logger,
		now:    time.Now,
	}
}

// List returns posts newest-first. filter.Nick restricts to one author (an
// author with no posts, or no account, yields an empty slice); filter.Limit
// caps the count, and a limit above the number of posts returns them all.
func (s *PostService) List(ctx context.Context, filter repository.PostFilter) ([]model.Post, error) {
	posts, err := s.posts.ListPosts(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list posts",
			slog.String("nick", filter.Nick),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	return posts, nil
}

// ListMentions returns posts containing "@"+nick, newest-first.
func (s *PostService) ListMentions(ctx context.Context, nick string) ([]model.Post, error) {
	posts, err := s.posts.ListMentions(ctx, nick)
	if err != nil {
		s.logger.Error("failed to list mentions",
			slog.String("nick", nick),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing mentions of %s: %w", nick, err)
	}
	return posts, nil
}

// Add stores a new post by nick, stamped with the current time, and returns
// its id. Content over MaxPostLength characters is rejected with
// apperror.ErrValidation and nothing is stored.
func (s *PostService) Add(ctx context.Context, nick, content string) (int64, error) {
	if n := utf8.RuneCountInString(content); n > MaxPostLength {
		return 0, apperror.ValidationFailed("content",
			fmt.Sprintf("post must be %d characters or less (got %d)", MaxPostLength, n))
	}

	id, err := s.posts.CreatePost(ctx, nick, content, s.now())
	if err != nil {
		s.logger.Error("failed to add post",
			slog.String("nick", nick),
			slog.String("error", err.Error()),
		)
		return 0, fmt.Errorf("adding post: %w", err)
	}

	s.logger.Info("post added",
		slog.Int64("id", id),
		slog.String("nick", nick),
	)
	return id, nil
}

// GetUser returns the profile for nick, or apperror.ErrNotFound.
func (s *PostService) GetUser(ctx context.Context, nick string) (*model.User, error) {
	return s.users.GetUser(ctx, nick)
}
