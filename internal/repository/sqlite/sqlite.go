// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// modernc.org/sqlite is a pure Go translation of SQLite, so the binary builds
// without a C toolchain. Use ":memory:" for throwaway databases in tests.
//
// The pattern is always:
//  1. sql.Open(driverName, dataSourceName) → creates a pool
//  2. db.QueryContext / db.ExecContext     → runs queries
//  3. rows.Scan(&field1, &field2)          → reads results into Go variables
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	// Registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements the
// User, Session and Post repositories.
type DB struct {
	conn *sql.DB
}

// New opens the SQLite database at dbPath and creates any missing tables.
//
// dbPath examples:
//   - "data/psst.db" → file-based database (persistent)
//   - ":memory:"     → in-memory database (tests)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// One connection: SQLite allows a single writer, and an in-memory
	// database lives on exactly one connection.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets readers proceed while a write is in progress.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(context.Background()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: creating tables: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// schema is the full table layout. Every statement is idempotent.
//
// sessions.usernick is UNIQUE: a user can own at most one session, and the
// session repository relies on that constraint for its upsert.
// posts.timestamp is TEXT in TimestampLayout so it sorts lexically.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	nick     TEXT NOT NULL PRIMARY KEY,
	password TEXT NOT NULL,
	avatar   TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS sessions (
	sessionid TEXT NOT NULL PRIMARY KEY,
	usernick  TEXT NOT NULL UNIQUE REFERENCES users(nick)
);

CREATE TABLE IF NOT EXISTS posts (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
	usernick  TEXT NOT NULL REFERENCES users(nick),
	content   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_posts_usernick ON posts(usernick);
CREATE INDEX IF NOT EXISTS idx_posts_timestamp ON posts(timestamp);

CREATE TABLE IF NOT EXISTS votes (
	post     INTEGER REFERENCES posts(id),
	usernick TEXT REFERENCES users(nick)
);

CREATE TABLE IF NOT EXISTS follows (
	follower TEXT REFERENCES users(nick),
	followed TEXT REFERENCES users(nick)
);
`

// migrate creates any tables that don't exist yet.
func (db *DB) migrate(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}

// Reset drops every table and recreates the empty schema.
// Children are dropped before parents so foreign keys never block the drop.
func (db *DB) Reset(ctx context.Context) error {
	for _, table := range []string{"votes", "follows", "sessions", "posts", "users"} {
		if _, err := db.conn.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return fmt.Errorf("sqlite: dropping %s: %w", table, err)
		}
	}
	if err := db.migrate(ctx); err != nil {
		return fmt.Errorf("sqlite: recreating tables: %w", err)
	}
	return nil
}
