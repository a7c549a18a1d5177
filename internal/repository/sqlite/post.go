package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sakif/psst/internal/model"
	"github.com/sakif/psst/internal/repository"
)

var _ repository.PostRepository = (*DB)(nil)

// newestFirst orders posts by time, then by id so posts sharing a
// timestamp still come back in reverse insertion order.
const newestFirst = `ORDER BY p.timestamp DESC, p.id DESC`

const selectPosts = `SELECT p.id, p.timestamp, p.usernick, p.content, coalesce(u.avatar, '')
	FROM posts p LEFT JOIN users u ON u.nick = p.usernick `

// CreatePost inserts a post stamped with at (converted to UTC) and returns
// the id SQLite assigned to it.
func (db *DB) CreatePost(ctx context.Context, nick, content string, at time.Time) (int64, error) {
	return db.insertPost(ctx, db.conn, nick, content, at)
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (db *DB) insertPost(ctx context.Context, ex execer, nick, content string, at time.Time) (int64, error) {
	result, err := ex.ExecContext(ctx,
		`INSERT INTO posts (timestamp, usernick, content) VALUES (?, ?, ?)`,
		at.UTC().Format(model.TimestampLayout),
		nick,
		content,
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: inserting post by %s: %w", nick, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("sqlite: reading new post id: %w", err)
	}
	return id, nil
}

// ListPosts returns posts newest-first, optionally restricted to one author
// and capped at filter.Limit rows.
func (db *DB) ListPosts(ctx context.Context, filter repository.PostFilter) ([]model.Post, error) {
	// SQLite treats a negative LIMIT as "no limit".
	limit := filter.Limit
	if limit <= 0 {
		limit = -1
	}

	query := selectPosts
	args := []any{}
	if filter.Nick != "" {
		query += `WHERE p.usernick = ? `
		args = append(args, filter.Nick)
	}
	query += newestFirst + ` LIMIT ?`
	args = append(args, limit)

	return db.queryPosts(ctx, query, args...)
}

// ListMentions returns posts whose content contains "@"+nick, newest-first.
//
// instr() is a plain case-sensitive substring test; LIKE would be
// case-insensitive and would treat '_' in nicks as a wildcard.
func (db *DB) ListMentions(ctx context.Context, nick string) ([]model.Post, error) {
	return db.queryPosts(ctx,
		selectPosts+`WHERE instr(p.content, ?) > 0 `+newestFirst,
		"@"+nick,
	)
}

func (db *DB) queryPosts(ctx context.Context, query string, args ...any) ([]model.Post, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts: %w", err)
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		var (
			p     model.Post
			stamp string
		)
		if err := rows.Scan(&p.ID, &stamp, &p.Nick, &p.Content, &p.Avatar); err != nil {
			return nil, fmt.Errorf("sqlite: scanning post row: %w", err)
		}
		p.Timestamp, err = time.Parse(model.TimestampLayout, stamp)
		if err != nil {
			return nil, fmt.Errorf("sqlite: parsing timestamp of post %d: %w", p.ID, err)
		}
		posts = append(posts, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating posts: %w", err)
	}

	return posts, nil
}
