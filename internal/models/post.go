package models

import "time"

// Post is a feed item. The text and author never change after creation;
// engagement lists are append-only.
type Post struct {
	ID        string       `json:"id" db:"id"`
	AuthorID  string       `json:"author_id" db:"author_id"`
	Text      string       `json:"text" db:"text"`
	Likes     []Engagement `json:"likes,omitempty"`
	Comments  []Engagement `json:"comments,omitempty"`
	Shares    []Engagement `json:"shares,omitempty"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
}

// Engagement records one actor's like, comment, or share on a post.
// Text is set for comments only.
type Engagement struct {
	ActorID   string    `json:"actor_id"`
	Text      string    `json:"text,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// EngagementKind identifies the engagement list an entry belongs to.
type EngagementKind string

const (
	EngagementLike    EngagementKind = "like"
	EngagementComment EngagementKind = "comment"
	EngagementShare   EngagementKind = "share"
)

// AgeDays returns the post age in whole days at the given instant.
func (p *Post) AgeDays(now time.Time) float64 {
	return now.Sub(p.CreatedAt).Hours() / 24
}
