package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/psst/internal/apperror"
	"github.com/sakif/psst/internal/model"
	"github.com/sakif/psst/internal/repository"
	"github.com/sakif/psst/internal/repository/sqlite"
)

func newTestPostService(t *testing.T) *PostService {
	t.Helper()
	db := newTestDB(t)
	return NewPostService(db, db, testLogger())
}

func postIDs(posts []model.Post) []int64 {
	ids := make([]int64, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return ids
}

// =========================================================================
// List TESTS
// =========================================================================

func TestList_All(t *testing.T) {
	svc := newTestPostService(t)

	posts, err := svc.List(context.Background(), repository.PostFilter{})
	require.NoError(t, err)
	require.Len(t, posts, len(sqlite.FixedPosts))

	for i, p := range posts {
		want := sqlite.FixedPosts[i]
		assert.Equal(t, want.ID, p.ID)
		assert.Equal(t, want.Nick, p.Nick)
		assert.Equal(t, want.Content, p.Content)
		assert.Equal(t, want.Stamp(), p.Stamp())
		assert.True(t, want.Timestamp.Equal(p.Timestamp))
	}
}

func TestList_NewestFirst(t *testing.T) {
	svc := newTestPostService(t)

	posts, err := svc.List(context.Background(), repository.PostFilter{})
	require.NoError(t, err)

	for i := 1; i < len(posts); i++ {
		assert.False(t, posts[i].Timestamp.After(posts[i-1].Timestamp),
			"post %d is newer than the one before it", posts[i].ID)
	}
}

func TestList_Limit(t *testing.T) {
	svc := newTestPostService(t)

	for _, limit := range []int{1, 3, 10, 100} {
		posts, err := svc.List(context.Background(), repository.PostFilter{Limit: limit})
		require.NoError(t, err)
		assert.Len(t, posts, min(limit, len(sqlite.FixedPosts)), "limit %d", limit)
	}
}

func TestList_ByUser(t *testing.T) {
	svc := newTestPostService(t)
	ctx := context.Background()

	posts, err := svc.List(ctx, repository.PostFilter{Nick: "Mandible"})
	require.NoError(t, err)
	require.Len(t, posts, 3)
	for _, p := range posts {
		assert.Equal(t, "Mandible", p.Nick)
	}

	// An unknown author is not an error, just no posts.
	posts, err = svc.List(ctx, repository.PostFilter{Nick: "jb@up.com"})
	require.NoError(t, err)
	assert.Empty(t, posts)
	assert.NotNil(t, posts)
}

func TestListMentions(t *testing.T) {
	svc := newTestPostService(t)

	posts, err := svc.ListMentions(context.Background(), "Contrary")
	require.NoError(t, err)
	assert.Equal(t, []int64{2, 5}, postIDs(posts))
	for _, p := range posts {
		assert.Contains(t, p.Content, "@Contrary")
	}

	posts, err = svc.ListMentions(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, posts)
}

// =========================================================================
// Add TESTS
// =========================================================================

func TestAdd(t *testing.T) {
	svc := newTestPostService(t)
	ctx := context.Background()

	content := "one two three"
	id, err := svc.Add(ctx, "Bean", content)
	require.NoError(t, err)
	assert.Greater(t, id, int64(len(sqlite.FixedPosts)))

	posts, err := svc.List(ctx, repository.PostFilter{Nick: "Bean"})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, id, posts[0].ID)
	assert.Equal(t, content, posts[0].Content)
	assert.Equal(t, "Bean", posts[0].Nick)

	// The new post is the newest overall.
	all, err := svc.List(ctx, repository.PostFilter{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, id, all[0].ID)
}

func TestAdd_UsesClock(t *testing.T) {
	svc := newTestPostService(t)
	at := time.Date(2031, 5, 6, 7, 8, 9, 0, time.UTC)
	svc.now = func() time.Time { return at }

	_, err := svc.Add(context.Background(), "Bean", "tick")
	require.NoError(t, err)

	posts, err := svc.List(context.Background(), repository.PostFilter{Nick: "Bean"})
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "2031-05-06 07:08:09", posts[0].Stamp())
}

func TestAdd_TooLong(t *testing.T) {
	svc := newTestPostService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, "Bean", strings.Repeat("x", 170))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "content", appErr.Field)

	posts, err := svc.List(ctx, repository.PostFilter{Nick: "Bean"})
	require.NoError(t, err)
	assert.Empty(t, posts, "rejected post must not be stored")
}

func TestAdd_LengthCountsCharacters(t *testing.T) {
	svc := newTestPostService(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"exactly the limit", strings.Repeat("a", MaxPostLength), false},
		{"one over", strings.Repeat("a", MaxPostLength+1), true},
		{"multibyte at the limit", strings.Repeat("é", MaxPostLength), false},
		{"multibyte one over", strings.Repeat("é", MaxPostLength+1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Add(ctx, "Jimbulator", tt.content)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperror.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// =========================================================================
// GetUser TESTS
// =========================================================================

func TestGetUser(t *testing.T) {
	svc := newTestPostService(t)
	ctx := context.Background()

	for _, u := range sqlite.SampleUsers {
		user, err := svc.GetUser(ctx, u.Nick)
		require.NoError(t, err)
		assert.Equal(t, u.Nick, user.Nick)
		assert.Equal(t, u.Avatar, user.AvatarURL)
	}

	_, err := svc.GetUser(ctx, "nobody")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
