// Package model defines the data structures used throughout the application.
package model

// User is a registered Psst! account.
//
// Nick is the primary key and the handle other users @mention.
// PasswordHash is a fixed-length hex digest (see auth.HashPassword); the
// plaintext password is never stored. It is excluded from JSON output.
type User struct {
	Nick         string `json:"nick"      db:"nick"`
	PasswordHash string `json:"-"         db:"password"`
	AvatarURL    string `json:"avatarUrl" db:"avatar"`
}

// Session ties an opaque token (the cookie value) to the user who owns it.
// Storage guarantees at most one Session per Nick.
type Session struct {
	ID   string `db:"sessionid"`
	Nick string `db:"usernick"`
}
