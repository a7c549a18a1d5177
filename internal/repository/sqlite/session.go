package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sakif/psst/internal/repository"
)

var _ repository.SessionRepository = (*DB)(nil)

// CreateOrGetSession stores (token, nick) as a new session unless nick already
// owns one, then returns the token that is actually stored.
//
// The UNIQUE constraint on sessions.usernick makes this race-free: of two
// concurrent logins for the same user, one INSERT wins and the other becomes
// a no-op, so both callers read back the same token.
func (db *DB) CreateOrGetSession(ctx context.Context, token, nick string) (string, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("sqlite: beginning session tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (sessionid, usernick) VALUES (?, ?)
		 ON CONFLICT(usernick) DO NOTHING`,
		token, nick,
	)
	if err != nil {
		return "", fmt.Errorf("sqlite: inserting session for %s: %w", nick, err)
	}

	var stored string
	err = tx.QueryRowContext(ctx,
		`SELECT sessionid FROM sessions WHERE usernick = ?`, nick,
	).Scan(&stored)
	if err != nil {
		return "", fmt.Errorf("sqlite: reading session for %s: %w", nick, err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("sqlite: committing session for %s: %w", nick, err)
	}

	return stored, nil
}

// SessionNick returns the nick that owns token.
// An unknown token is not an error: it returns ("", false, nil).
func (db *DB) SessionNick(ctx context.Context, token string) (string, bool, error) {
	var nick string
	err := db.conn.QueryRowContext(ctx,
		`SELECT usernick FROM sessions WHERE sessionid = ?`, token,
	).Scan(&nick)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("sqlite: looking up session: %w", err)
	}
	return nick, true, nil
}

// DeleteSessions removes every session owned by nick. Deleting nothing is fine.
func (db *DB) DeleteSessions(ctx context.Context, nick string) error {
	if _, err := db.conn.ExecContext(ctx,
		`DELETE FROM sessions WHERE usernick = ?`, nick,
	); err != nil {
		return fmt.Errorf("sqlite: deleting sessions for %s: %w", nick, err)
	}
	return nil
}
