package model

import "time"

// TimestampLayout is how post timestamps are stored and displayed,
// e.g. "2015-02-20 01:45:06". Timestamps are always UTC.
const TimestampLayout = "2006-01-02 15:04:05"

// Post is a single short message. Posts are immutable once created.
// Avatar is the author's avatar URL, joined in when posts are listed.
type Post struct {
	ID        int64     `json:"id"        db:"id"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
	Nick      string    `json:"nick"      db:"usernick"`
	Content   string    `json:"content"   db:"content"`
	Avatar    string    `json:"avatar"    db:"avatar"`
}

// Stamp formats the post time the way it is stored.
func (p Post) Stamp() string {
	return p.Timestamp.UTC().Format(TimestampLayout)
}
