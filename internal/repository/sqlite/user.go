package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sakif/psst/internal/apperror"
	"github.com/sakif/psst/internal/model"
	"github.com/sakif/psst/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// CreateUser inserts a user. PasswordHash must already be a digest.
// A duplicate nick fails with the driver's UNIQUE constraint error.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (nick, password, avatar) VALUES (?, ?, ?)`,
		user.Nick,
		user.PasswordHash,
		user.AvatarURL,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting user %s: %w", user.Nick, err)
	}
	return nil
}

// GetUser retrieves a user by nick.
// Returns apperror.ErrNotFound if no user exists with that nick.
func (db *DB) GetUser(ctx context.Context, nick string) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT nick, password, avatar FROM users WHERE nick = ?`,
		nick,
	).Scan(&u.Nick, &u.PasswordHash, &u.AvatarURL)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", nick)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", nick, err)
	}

	return &u, nil
}
