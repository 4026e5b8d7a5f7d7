// Package forum is the client for the remote gossip store. It defines the
// entity snapshots the store returns and one method per store operation.
// The client never caches: every call is a fresh round trip, and ids and
// timestamps are only ever assigned by the store.
package forum

import "time"

// Topic is a named discussion circle, the root of the hierarchy.
type Topic struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Post belongs to exactly one topic.
type Post struct {
	ID          int       `json:"id"`
	TopicID     int       `json:"topic_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Username    string    `json:"username"`
	CreatedAt   time.Time `json:"created_at"`
}

// Comment belongs to exactly one post. Username may be empty for comments
// posted without an identity claim.
type Comment struct {
	ID        int       `json:"id"`
	PostID    int       `json:"post_id"`
	Content   string    `json:"content"`
	Username  string    `json:"username,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Author returns the display name for a comment.
func (c Comment) Author() string {
	if c.Username == "" {
		return "Anonymous"
	}
	return c.Username
}

// PostDraft is the client-supplied part of a post. The store assigns the
// id and timestamp.
type PostDraft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	TopicID     int    `json:"topic_id"`
	Username    string `json:"username"`
}

// CommentDraft is the client-supplied part of a comment.
type CommentDraft struct {
	Content  string `json:"content"`
	Username string `json:"username,omitempty"`
}
